// Package main provides the report CLI: it prints any report page as a terminal table.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/godilite/termosti/internal/app"
	"github.com/godilite/termosti/internal/config"
	"github.com/godilite/termosti/internal/service"
)

// openFunc yields a report service and a function releasing its store.
type openFunc func(ctx context.Context, verbose bool) (*service.ReportService, func(context.Context) error, error)

func main() {
	if err := newRootCmd(openFromEnv).Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func openFromEnv(ctx context.Context, verbose bool) (*service.ReportService, func(context.Context) error, error) {
	cfg := config.LoadFromEnv()

	logger := zap.NewNop()
	if verbose {
		var err error
		if logger, err = config.NewLogger(cfg); err != nil {
			return nil, nil, fmt.Errorf("init logger: %w", err)
		}
	}

	store, err := app.OpenStore(ctx, cfg, logger)
	if err != nil {
		return nil, nil, err
	}

	reports, err := app.NewReportService(cfg, logger, store)
	if err != nil {
		_ = store.Close(ctx)
		return nil, nil, err
	}
	return reports, store.Close, nil
}

func newRootCmd(open openFunc) *cobra.Command {
	var (
		envFile string
		format  string
		verbose bool
	)

	cmd := &cobra.Command{
		Use:       "report <name>",
		Short:     "Print a survey report as a table",
		Long:      "Print one of the survey reports served by the web application as a terminal table.\n\nReports: " + reportNamesHelp(),
		Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		ValidArgs: reportNames(),
		RunE: func(cmd *cobra.Command, args []string) error {
			render, err := rendererFor(format)
			if err != nil {
				return err
			}
			if envFile != "" {
				_ = godotenv.Load(envFile)
			}

			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}

			reports, closeStore, err := open(ctx, verbose)
			if err != nil {
				return err
			}
			defer closeStore(ctx)

			tables, err := reportBuilders[args[0]](ctx, reports)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for i, tbl := range tables {
				if i > 0 {
					fmt.Fprintln(out)
				}
				fmt.Fprintln(out, render(tbl))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&envFile, "env-file", ".env", "dotenv file loaded before reading the environment")
	cmd.Flags().StringVarP(&format, "format", "f", formatTable, "output format: table, csv, markdown or html")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "log store access")

	return cmd
}
