package main

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/godilite/termosti/internal/catalog"
	"github.com/godilite/termosti/internal/repository/models"
	"github.com/godilite/termosti/internal/service"
	"github.com/godilite/termosti/internal/service/mocks"
)

func testRecords() []models.SurveyRecord {
	return []models.SurveyRecord{
		{Term: "javascript", Period: "01/2020", Participation: "30"},
		{Term: "java", Period: "01/2020", Participation: "20"},
		{Term: "python", Period: "01/2021", Participation: "12"},
		{Term: "mysql", Period: "06/2021", Participation: "7"},
	}
}

func staticOpener(store service.RecordStore) openFunc {
	return func(ctx context.Context, verbose bool) (*service.ReportService, func(context.Context) error, error) {
		svc := service.NewReportService(store, catalog.Default(), zap.NewNop())
		return svc, func(context.Context) error { return nil }, nil
	}
}

func execute(t *testing.T, open openFunc, args ...string) (string, error) {
	t.Helper()

	cmd := newRootCmd(open)
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs(append(args, "--env-file", ""))

	err := cmd.Execute()
	return buf.String(), err
}

func TestReportCLI_Reports(t *testing.T) {
	top := []models.TermFrequency{{Term: "java", Count: 12345, AvgParticipation: 20}}
	open := staticOpener(mocks.StaticStore(testRecords(), top))

	tests := []struct {
		name    string
		wantOut []string
	}{
		{"listing", []string{"TERMOS DE TI", "javascript", "01/2020"}},
		{"desempenho", []string{"java", "javascript"}},
		{"fora-do-tsi", []string{"python", "2021"}},
		{"comparativo", []string{"Principal", "Concorrente", "Banco de Dados"}},
		{"ranking", []string{"RANKING 2020", "javascript"}},
		{"frontend-backend", []string{"VENCEDOR", "TENDÊNCIA"}},
		{"bancos-de-dados", []string{"mysql", "7.00"}},
		{"categorias", []string{"12,345", "TERMOS MAIS FREQUENTES"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := execute(t, open, tt.name)

			require.NoError(t, err)
			for _, want := range tt.wantOut {
				assert.Contains(t, strings.ToUpper(out), strings.ToUpper(want))
			}
		})
	}
}

func TestReportCLI_Formats(t *testing.T) {
	open := staticOpener(mocks.StaticStore(testRecords(), nil))

	t.Run("csv", func(t *testing.T) {
		out, err := execute(t, open, "listing", "--format", "csv")

		require.NoError(t, err)
		assert.Contains(t, out, "javascript,01/2020,30")
	})

	t.Run("markdown", func(t *testing.T) {
		out, err := execute(t, open, "listing", "-f", "markdown")

		require.NoError(t, err)
		assert.Contains(t, out, "| javascript | 01/2020 | 30 |")
	})

	t.Run("unknown format", func(t *testing.T) {
		_, err := execute(t, open, "listing", "--format", "xml")

		assert.EqualError(t, err, `unknown format "xml"`)
	})
}

func TestReportCLI_Errors(t *testing.T) {
	t.Run("unknown report", func(t *testing.T) {
		_, err := execute(t, staticOpener(mocks.StaticStore(nil, nil)), "nope")

		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid argument")
	})

	t.Run("missing report name", func(t *testing.T) {
		_, err := execute(t, staticOpener(mocks.StaticStore(nil, nil)))

		assert.Error(t, err)
	})

	t.Run("store cannot be opened", func(t *testing.T) {
		open := func(ctx context.Context, verbose bool) (*service.ReportService, func(context.Context) error, error) {
			return nil, nil, errors.New("mongodb init failed")
		}

		_, err := execute(t, open, "listing")

		assert.EqualError(t, err, "mongodb init failed")
	})

	t.Run("storage failure", func(t *testing.T) {
		store := &mocks.MockRecordStore{
			QueryFunc: func(ctx context.Context, f models.RecordFilter) ([]models.SurveyRecord, error) {
				return nil, errors.New("connection refused")
			},
		}

		_, err := execute(t, staticOpener(store), "ranking")

		assert.ErrorIs(t, err, service.ErrStorageFailure)
	})
}

func TestReportNames(t *testing.T) {
	assert.Equal(t, []string{
		"bancos-de-dados", "categorias", "comparativo", "desempenho",
		"fora-do-tsi", "frontend-backend", "listing", "ranking",
	}, reportNames())
}
