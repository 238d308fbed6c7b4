package web

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/godilite/termosti/internal/repository/models"
	"github.com/godilite/termosti/internal/service"
)

// Failure messages shown to the user when a report cannot be fetched.
const (
	msgListing      = "Erro ao buscar dados."
	msgInCurriculum = "Erro ao buscar dados de desempenho."
	msgJanuary      = "Erro ao buscar dados de tecnologias fora do curso."
	msgComparison   = "Erro ao buscar dados do comparativo."
	msgRanking      = "Erro ao buscar dados do ranking."
	msgTotals       = "Erro ao buscar dados de frontend e backend."
	msgDatabases    = "Erro ao buscar dados de bancos de dados."
	msgCategories   = "Erro ao buscar dados de categorias."
)

type Handlers struct {
	reports      ReportService
	logger       *zap.Logger
	pages        *pageSet
	fetchTimeout time.Duration
}

// NewHandlers initializes the report handlers.
func NewHandlers(reports ReportService, logger *zap.Logger, fetchTimeout time.Duration) *Handlers {
	if reports == nil {
		panic("nil ReportService provided to NewHandlers")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if fetchTimeout <= 0 {
		fetchTimeout = defaultFetchTimeout
	}
	return &Handlers{
		reports:      reports,
		logger:       logger.Named("web-handler"),
		pages:        mustLoadPages(),
		fetchTimeout: fetchTimeout,
	}
}

func fetch[T any](h *Handlers, r *http.Request, fn FetchFunc[T]) (T, error) {
	return fetchReport(r.Context(), h.fetchTimeout, fn)
}

func (h *Handlers) handleError(w http.ResponseWriter, r *http.Request, op, message string, err error) {
	switch r.Context().Err() {
	case context.Canceled:
		h.logger.Warn("request canceled", zap.String("op", op))
		http.Error(w, "request canceled", http.StatusServiceUnavailable)
		return
	case context.DeadlineExceeded:
		h.logger.Warn("request timeout", zap.String("op", op))
		http.Error(w, "request timed out", http.StatusGatewayTimeout)
		return
	}

	switch {
	case errors.Is(err, service.ErrStorageFailure):
		h.logger.Error("storage failure", zap.String("op", op), zap.Error(err))
	default:
		h.logger.Error("unexpected error", zap.String("op", op), zap.Error(err))
	}
	http.Error(w, message, http.StatusInternalServerError)
}

func (h *Handlers) Listing(w http.ResponseWriter, r *http.Request) {
	records, err := fetch(h, r, h.reports.Listing)
	if err != nil {
		h.handleError(w, r, "Listing", msgListing, err)
		return
	}
	h.render(w, r, pageListing, recordsPage{Records: records})
}

func (h *Handlers) InCurriculum(w http.ResponseWriter, r *http.Request) {
	records, err := fetch(h, r, h.reports.InCurriculum)
	if err != nil {
		h.handleError(w, r, "InCurriculum", msgInCurriculum, err)
		return
	}
	h.render(w, r, pageInCurriculum, recordsPage{Records: records})
}

func (h *Handlers) OutOfCurriculumJanuary(w http.ResponseWriter, r *http.Request) {
	rows, err := fetch(h, r, h.reports.OutOfCurriculumJanuary)
	if err != nil {
		h.handleError(w, r, "OutOfCurriculumJanuary", msgJanuary, err)
		return
	}
	h.render(w, r, pageJanuary, rows)
}

func (h *Handlers) TechnologyComparison(w http.ResponseWriter, r *http.Request) {
	rows, err := fetch(h, r, h.reports.TechnologyComparison)
	if err != nil {
		h.handleError(w, r, "TechnologyComparison", msgComparison, err)
		return
	}
	h.render(w, r, pageComparison, rows)
}

func (h *Handlers) Rankings(w http.ResponseWriter, r *http.Request) {
	years, err := fetch(h, r, h.reports.Rankings)
	if err != nil {
		h.handleError(w, r, "Rankings", msgRanking, err)
		return
	}
	h.render(w, r, pageRanking, years)
}

func (h *Handlers) FrontendBackendTotals(w http.ResponseWriter, r *http.Request) {
	report, err := fetch(h, r, h.reports.FrontendBackendTotals)
	if err != nil {
		h.handleError(w, r, "FrontendBackendTotals", msgTotals, err)
		return
	}
	h.render(w, r, pageTotals, report)
}

func (h *Handlers) DatabaseEngines(w http.ResponseWriter, r *http.Request) {
	report, err := fetch(h, r, h.reports.DatabaseEngines)
	if err != nil {
		h.handleError(w, r, "DatabaseEngines", msgDatabases, err)
		return
	}
	h.render(w, r, pageDatabases, report)
}

// DatabaseSeries serves the database chart series as JSON.
func (h *Handlers) DatabaseSeries(w http.ResponseWriter, r *http.Request) {
	report, err := fetch(h, r, h.reports.DatabaseEngines)
	if err != nil {
		h.handleError(w, r, "DatabaseSeries", msgDatabases, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(report.Chart); err != nil {
		h.logger.Warn("failed to write chart series", zap.Error(err))
	}
}

// DatabaseChart serves a standalone chart page for the database series.
func (h *Handlers) DatabaseChart(w http.ResponseWriter, r *http.Request) {
	report, err := fetch(h, r, h.reports.DatabaseEngines)
	if err != nil {
		h.handleError(w, r, "DatabaseChart", msgDatabases, err)
		return
	}
	h.renderChart(w, r, buildDatabaseChart(report.Chart))
}

func (h *Handlers) CategoryAnalysis(w http.ResponseWriter, r *http.Request) {
	report, err := fetch(h, r, h.reports.CategoryAnalysis)
	if err != nil {
		h.handleError(w, r, "CategoryAnalysis", msgCategories, err)
		return
	}
	h.render(w, r, pageCategories, report)
}

type recordsPage struct {
	Records []models.SurveyRecord
}
