package web

import (
	"context"

	"github.com/godilite/termosti/internal/repository/models"
	"github.com/godilite/termosti/internal/service"
)

type ReportService interface {
	Listing(ctx context.Context) ([]models.SurveyRecord, error)
	InCurriculum(ctx context.Context) ([]models.SurveyRecord, error)
	OutOfCurriculumJanuary(ctx context.Context) ([]service.JanuarySnapshot, error)
	TechnologyComparison(ctx context.Context) ([]service.ComparisonRow, error)
	Rankings(ctx context.Context) ([]service.YearRanking, error)
	FrontendBackendTotals(ctx context.Context) (service.TotalsReport, error)
	DatabaseEngines(ctx context.Context) (service.DatabaseReport, error)
	CategoryAnalysis(ctx context.Context) (service.CategoryReport, error)
}
