package main

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/godilite/termosti/internal/repository/models"
	"github.com/godilite/termosti/internal/service"
)

const (
	formatTable    = "table"
	formatCSV      = "csv"
	formatMarkdown = "markdown"
	formatHTML     = "html"
)

type builder func(ctx context.Context, reports *service.ReportService) ([]table.Writer, error)

var reportBuilders = map[string]builder{
	"listing":          listingTables,
	"desempenho":       inCurriculumTables,
	"fora-do-tsi":      januaryTables,
	"comparativo":      comparisonTables,
	"ranking":          rankingTables,
	"frontend-backend": totalsTables,
	"bancos-de-dados":  databaseTables,
	"categorias":       categoryTables,
}

func reportNames() []string {
	names := make([]string, 0, len(reportBuilders))
	for name := range reportBuilders {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func reportNamesHelp() string {
	return strings.Join(reportNames(), ", ")
}

func rendererFor(format string) (func(table.Writer) string, error) {
	switch format {
	case formatTable:
		return table.Writer.Render, nil
	case formatCSV:
		return table.Writer.RenderCSV, nil
	case formatMarkdown:
		return table.Writer.RenderMarkdown, nil
	case formatHTML:
		return table.Writer.RenderHTML, nil
	}
	return nil, fmt.Errorf("unknown format %q", format)
}

func newTable(title string, header table.Row) table.Writer {
	tbl := table.NewWriter()
	tbl.SetStyle(table.StyleLight)
	tbl.SetTitle(title)
	tbl.AppendHeader(header)
	return tbl
}

func pct(v float64) string {
	return fmt.Sprintf("%.2f", v)
}

func recordTable(title string, records []models.SurveyRecord) table.Writer {
	tbl := newTable(title, table.Row{"Termo", "Mensuração", "Participação"})
	for _, r := range records {
		tbl.AppendRow(table.Row{r.Term, r.Period, r.Participation})
	}
	tbl.AppendFooter(table.Row{"Total", humanize.Comma(int64(len(records))), ""})
	return tbl
}

func listingTables(ctx context.Context, reports *service.ReportService) ([]table.Writer, error) {
	records, err := reports.Listing(ctx)
	if err != nil {
		return nil, err
	}
	return []table.Writer{recordTable("Termos de TI", records)}, nil
}

func inCurriculumTables(ctx context.Context, reports *service.ReportService) ([]table.Writer, error) {
	records, err := reports.InCurriculum(ctx)
	if err != nil {
		return nil, err
	}
	return []table.Writer{recordTable("Desempenho das tecnologias do TSI", records)}, nil
}

func januaryTables(ctx context.Context, reports *service.ReportService) ([]table.Writer, error) {
	rows, err := reports.OutOfCurriculumJanuary(ctx)
	if err != nil {
		return nil, err
	}
	tbl := newTable("Tecnologias fora do TSI (janeiro)", table.Row{"Tecnologia", "Ano", "Participação"})
	for _, r := range rows {
		tbl.AppendRow(table.Row{r.Term, r.Year, r.Participation})
	}
	return []table.Writer{tbl}, nil
}

func comparisonTables(ctx context.Context, reports *service.ReportService) ([]table.Writer, error) {
	rows, err := reports.TechnologyComparison(ctx)
	if err != nil {
		return nil, err
	}
	tbl := newTable("Comparativo de tecnologias", table.Row{"Categoria", "Tecnologia", "Média geral", "Status"})
	for _, r := range rows {
		status := "Concorrente"
		if r.Principal {
			status = "Principal"
		}
		tbl.AppendRow(table.Row{r.Group, r.Term, pct(r.AverageParticipation) + "%", status})
	}
	return []table.Writer{tbl}, nil
}

func rankingTables(ctx context.Context, reports *service.ReportService) ([]table.Writer, error) {
	years, err := reports.Rankings(ctx)
	if err != nil {
		return nil, err
	}

	tables := make([]table.Writer, 0, len(years))
	for _, y := range years {
		tbl := newTable("Ranking "+y.Year, table.Row{"#", "Frontend", "Média", "Backend", "Média"})
		n := max(len(y.Frontend), len(y.Backend))
		for i := 0; i < n; i++ {
			row := table.Row{i + 1, "", "", "", ""}
			if i < len(y.Frontend) {
				row[1], row[2] = y.Frontend[i].Term, pct(y.Frontend[i].AverageParticipation)
			}
			if i < len(y.Backend) {
				row[3], row[4] = y.Backend[i].Term, pct(y.Backend[i].AverageParticipation)
			}
			tbl.AppendRow(row)
		}
		tables = append(tables, tbl)
	}
	return tables, nil
}

func totalsTables(ctx context.Context, reports *service.ReportService) ([]table.Writer, error) {
	report, err := reports.FrontendBackendTotals(ctx)
	if err != nil {
		return nil, err
	}

	tbl := newTable("Frontend x Backend",
		table.Row{"Ano", "Frontend", "Backend", "Total", "% Frontend", "% Backend", "Vencedor"})
	for _, y := range report.Years {
		tbl.AppendRow(table.Row{
			y.Year, pct(y.FrontendTotal), pct(y.BackendTotal), pct(y.GrandTotal),
			pct(y.FrontendShare), pct(y.BackendShare), string(y.Leader),
		})
	}
	s := report.Summary
	tbl.AppendFooter(table.Row{"Geral", pct(s.FrontendTotal), pct(s.BackendTotal), "", "", "", string(s.Leader)})

	trend := newTable("Tendência", table.Row{"Grupo", "Variação"})
	trend.AppendRow(table.Row{string(s.FrontendTrend.Group), pct(s.FrontendTrend.Delta)})
	trend.AppendRow(table.Row{string(s.BackendTrend.Group), pct(s.BackendTrend.Delta)})

	return []table.Writer{tbl, trend}, nil
}

func databaseTables(ctx context.Context, reports *service.ReportService) ([]table.Writer, error) {
	report, err := reports.DatabaseEngines(ctx)
	if err != nil {
		return nil, err
	}
	tbl := newTable("Bancos de dados", table.Row{"Banco", "Ano", "Média"})
	for _, r := range report.Rows {
		tbl.AppendRow(table.Row{r.Term, r.Year, pct(r.AverageParticipation)})
	}
	return []table.Writer{tbl}, nil
}

func categoryTables(ctx context.Context, reports *service.ReportService) ([]table.Writer, error) {
	report, err := reports.CategoryAnalysis(ctx)
	if err != nil {
		return nil, err
	}

	summary := newTable("Categorias", table.Row{"Categoria", "Termos", "Registros", "Média"})
	for _, s := range report.Summaries {
		summary.AppendRow(table.Row{
			s.Category, strings.Join(s.Terms, ", "), humanize.Comma(int64(s.RecordCount)), pct(s.AverageParticipation),
		})
	}

	yearly := newTable("Categorias por ano", table.Row{"Categoria", "Ano", "Média", "Termos"})
	for _, r := range report.Rows {
		yearly.AppendRow(table.Row{r.Category, r.Year, pct(r.AverageParticipation), r.TermCount})
	}

	top := newTable("Termos mais frequentes", table.Row{"#", "Termo", "Registros", "Média"})
	for i, t := range report.TopTerms {
		top.AppendRow(table.Row{i + 1, t.Term, humanize.Comma(t.Count), pct(t.AvgParticipation)})
	}

	return []table.Writer{summary, yearly, top}, nil
}
