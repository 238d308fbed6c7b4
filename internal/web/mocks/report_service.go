package mocks

import (
	"context"
	"errors"

	"github.com/godilite/termosti/internal/repository/models"
	"github.com/godilite/termosti/internal/service"
)

// MockReportService is a mock implementation of the ReportService interface
// for testing the handler layer. It uses function-based mocking for flexibility.
type MockReportService struct {
	ListingFunc                func(ctx context.Context) ([]models.SurveyRecord, error)
	InCurriculumFunc           func(ctx context.Context) ([]models.SurveyRecord, error)
	OutOfCurriculumJanuaryFunc func(ctx context.Context) ([]service.JanuarySnapshot, error)
	TechnologyComparisonFunc   func(ctx context.Context) ([]service.ComparisonRow, error)
	RankingsFunc               func(ctx context.Context) ([]service.YearRanking, error)
	FrontendBackendTotalsFunc  func(ctx context.Context) (service.TotalsReport, error)
	DatabaseEnginesFunc        func(ctx context.Context) (service.DatabaseReport, error)
	CategoryAnalysisFunc       func(ctx context.Context) (service.CategoryReport, error)
}

// Listing implements the ReportService interface
func (m *MockReportService) Listing(ctx context.Context) ([]models.SurveyRecord, error) {
	if m.ListingFunc != nil {
		return m.ListingFunc(ctx)
	}
	return nil, errors.New("ListingFunc not implemented")
}

// InCurriculum implements the ReportService interface
func (m *MockReportService) InCurriculum(ctx context.Context) ([]models.SurveyRecord, error) {
	if m.InCurriculumFunc != nil {
		return m.InCurriculumFunc(ctx)
	}
	return nil, errors.New("InCurriculumFunc not implemented")
}

// OutOfCurriculumJanuary implements the ReportService interface
func (m *MockReportService) OutOfCurriculumJanuary(ctx context.Context) ([]service.JanuarySnapshot, error) {
	if m.OutOfCurriculumJanuaryFunc != nil {
		return m.OutOfCurriculumJanuaryFunc(ctx)
	}
	return nil, errors.New("OutOfCurriculumJanuaryFunc not implemented")
}

// TechnologyComparison implements the ReportService interface
func (m *MockReportService) TechnologyComparison(ctx context.Context) ([]service.ComparisonRow, error) {
	if m.TechnologyComparisonFunc != nil {
		return m.TechnologyComparisonFunc(ctx)
	}
	return nil, errors.New("TechnologyComparisonFunc not implemented")
}

// Rankings implements the ReportService interface
func (m *MockReportService) Rankings(ctx context.Context) ([]service.YearRanking, error) {
	if m.RankingsFunc != nil {
		return m.RankingsFunc(ctx)
	}
	return nil, errors.New("RankingsFunc not implemented")
}

// FrontendBackendTotals implements the ReportService interface
func (m *MockReportService) FrontendBackendTotals(ctx context.Context) (service.TotalsReport, error) {
	if m.FrontendBackendTotalsFunc != nil {
		return m.FrontendBackendTotalsFunc(ctx)
	}
	return service.TotalsReport{}, errors.New("FrontendBackendTotalsFunc not implemented")
}

// DatabaseEngines implements the ReportService interface
func (m *MockReportService) DatabaseEngines(ctx context.Context) (service.DatabaseReport, error) {
	if m.DatabaseEnginesFunc != nil {
		return m.DatabaseEnginesFunc(ctx)
	}
	return service.DatabaseReport{}, errors.New("DatabaseEnginesFunc not implemented")
}

// CategoryAnalysis implements the ReportService interface
func (m *MockReportService) CategoryAnalysis(ctx context.Context) (service.CategoryReport, error) {
	if m.CategoryAnalysisFunc != nil {
		return m.CategoryAnalysisFunc(ctx)
	}
	return service.CategoryReport{}, errors.New("CategoryAnalysisFunc not implemented")
}
