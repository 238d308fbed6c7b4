//go:build e2e

package e2e

import (
	"context"
	"database/sql"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/godilite/termosti/internal/catalog"
	"github.com/godilite/termosti/internal/repository"
	"github.com/godilite/termosti/internal/repository/models"
	"github.com/godilite/termosti/internal/service"
	"github.com/godilite/termosti/internal/web"
	dbbuilder "github.com/godilite/termosti/pkg/database"
	"github.com/godilite/termosti/pkg/httpserver"
)

func seedRecords() []models.SurveyRecord {
	return []models.SurveyRecord{
		{Term: "javascript", Period: "01/2020", Participation: "30"},
		{Term: "typescript", Period: "01/2020", Participation: "50"},
		{Term: "python", Period: "01/2020", Participation: "20"},
		{Term: "python", Period: "06/2020", Participation: "40"},
		{Term: "java", Period: "01/2020", Participation: "20"},
		{Term: "php", Period: "03/2021", Participation: "8.5%"},
		{Term: "javascript", Period: "01/2021", Participation: "10"},
		{Term: "mysql", Period: "01/2020", Participation: "12"},
		{Term: "mysql", Period: "01/2021", Participation: "14"},
		{Term: "postgresql", Period: "01/2021", Participation: "9"},
		{Term: "tdd", Period: "jan", Participation: "3"},
		{Term: "Java", Period: "01/2022", Participation: "99"},
	}
}

func setupTestDB(t *testing.T) (*sql.DB, *repository.SQLRecordStore) {
	t.Helper()
	ctx := context.Background()

	db, err := dbbuilder.New(ctx,
		dbbuilder.WithDriver("sqlite3"),
		dbbuilder.WithDataSource(":memory:"),
		dbbuilder.WithMaxOpenConns(1),
	)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	store := repository.NewSQLRecordStore(db)
	require.NoError(t, store.EnsureSchema(ctx))

	for _, r := range seedRecords() {
		_, err := db.ExecContext(ctx,
			`INSERT INTO survey_records (term, period, participation) VALUES (?, ?, ?)`,
			r.Term, r.Period, r.Participation)
		require.NoError(t, err)
	}

	return db, store
}

func setupServer(t *testing.T) *httptest.Server {
	t.Helper()

	_, store := setupTestDB(t)
	logger := zap.NewNop()

	reports := service.NewReportService(store, catalog.Default(), logger, service.WithStoreTimeout(5*time.Second))
	handlers := web.NewHandlers(reports, logger, 5*time.Second)
	metrics := httpserver.NewMetrics("termosti")
	router := web.NewRouter(handlers,
		web.WithMiddleware(httpserver.RequestLogger(logger), metrics.Middleware),
		web.WithMetricsHandler(metrics.Handler()),
	)

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return srv
}

func get(t *testing.T, srv *httptest.Server, path string) (int, string) {
	t.Helper()

	resp, err := http.Get(srv.URL + path)
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, string(body)
}

func TestReports_E2E(t *testing.T) {
	srv := setupServer(t)

	t.Run("listing shows every record", func(t *testing.T) {
		code, body := get(t, srv, "/")

		require.Equal(t, http.StatusOK, code)
		assert.Contains(t, body, "Java")
		assert.Contains(t, body, "8.5%")
	})

	t.Run("in curriculum skips other spellings", func(t *testing.T) {
		code, body := get(t, srv, "/desempenho")

		require.Equal(t, http.StatusOK, code)
		assert.Contains(t, body, "tech-javascript")
		assert.NotContains(t, body, "99")
	})

	t.Run("out of curriculum january with undated rows", func(t *testing.T) {
		code, body := get(t, srv, "/fora-do-tsi")

		require.Equal(t, http.StatusOK, code)
		assert.Contains(t, body, "python")
		assert.Contains(t, body, "tdd")
		assert.Contains(t, body, "N/A")
		assert.NotContains(t, body, "40")
	})

	t.Run("comparison", func(t *testing.T) {
		code, body := get(t, srv, "/comparativo-tecnologias")

		require.Equal(t, http.StatusOK, code)
		assert.Contains(t, body, "Principal")
		assert.Contains(t, body, "30.00%")
	})

	t.Run("ranking", func(t *testing.T) {
		code, body := get(t, srv, "/ranking")

		require.Equal(t, http.StatusOK, code)
		assert.Contains(t, body, "2020")
		assert.Contains(t, body, "2021")
	})

	t.Run("frontend backend", func(t *testing.T) {
		code, body := get(t, srv, "/frontend-backend")

		require.Equal(t, http.StatusOK, code)
		assert.Contains(t, body, "Frontend")
	})

	t.Run("category analysis", func(t *testing.T) {
		code, body := get(t, srv, "/categorias")

		require.Equal(t, http.StatusOK, code)
		assert.Contains(t, body, "Databases")
	})

	t.Run("database chart series", func(t *testing.T) {
		code, body := get(t, srv, "/api/bancos-de-dados/series")
		require.Equal(t, http.StatusOK, code)

		var chart service.ChartData
		require.NoError(t, json.Unmarshal([]byte(body), &chart))
		assert.Equal(t, []string{"2020", "2021"}, chart.Years)

		byName := map[string][]*float64{}
		for _, s := range chart.Series {
			byName[s.Name] = s.Values
		}
		require.Contains(t, byName, "mysql")
		require.Contains(t, byName, "postgresql")
		assert.Equal(t, 12.0, *byName["mysql"][0])
		assert.Nil(t, byName["postgresql"][0])
		assert.Equal(t, 9.0, *byName["postgresql"][1])
	})

	t.Run("database chart page", func(t *testing.T) {
		code, body := get(t, srv, "/bancos-de-dados/grafico")

		require.Equal(t, http.StatusOK, code)
		assert.Contains(t, body, "mysql")
	})

	t.Run("metrics record served routes", func(t *testing.T) {
		code, body := get(t, srv, "/metrics")

		require.Equal(t, http.StatusOK, code)
		assert.Contains(t, body, `route="/ranking"`)
	})
}

func TestReports_E2E_StoreDown(t *testing.T) {
	db, store := setupTestDB(t)
	require.NoError(t, db.Close())

	logger := zap.NewNop()
	reports := service.NewReportService(store, catalog.Default(), logger)
	srv := httptest.NewServer(web.NewRouter(web.NewHandlers(reports, logger, time.Second)))
	defer srv.Close()

	code, body := get(t, srv, "/desempenho")

	assert.Equal(t, http.StatusInternalServerError, code)
	assert.Contains(t, body, "Erro ao buscar dados de desempenho.")
}
