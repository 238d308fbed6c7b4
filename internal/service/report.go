package service

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/godilite/termosti/internal/catalog"
	"github.com/godilite/termosti/internal/repository/models"
)

const (
	defaultStoreTimeout  = 5 * time.Second
	defaultTopTermsLimit = 80
)

var ErrStorageFailure = errors.New("storage failure")

type Option func(*ReportService)

// WithStoreTimeout bounds every call to the record store.
func WithStoreTimeout(d time.Duration) Option {
	return func(s *ReportService) {
		if d > 0 {
			s.timeout = d
		}
	}
}

// WithTopTermsLimit sets how many frequent terms the category analysis reads.
func WithTopTermsLimit(n int) Option {
	return func(s *ReportService) {
		if n > 0 {
			s.topTerms = n
		}
	}
}

// ReportService computes the report tables. Each call fetches from the
// store and computes from scratch; the service holds no mutable state.
type ReportService struct {
	storage  RecordStore
	catalog  *catalog.Catalog
	logger   *zap.Logger
	timeout  time.Duration
	topTerms int
}

// NewReportService creates a new ReportService instance.
func NewReportService(storage RecordStore, cat *catalog.Catalog, logger *zap.Logger, opts ...Option) *ReportService {
	if storage == nil {
		panic("storage must not be nil")
	}
	if cat == nil {
		panic("catalog must not be nil")
	}
	if logger == nil {
		l, _ := zap.NewProduction()
		logger = l
	}
	s := &ReportService{
		storage:  storage,
		catalog:  cat,
		logger:   logger.Named("reports"),
		timeout:  defaultStoreTimeout,
		topTerms: defaultTopTermsLimit,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *ReportService) query(ctx context.Context, report string, filter models.RecordFilter) ([]models.SurveyRecord, error) {
	dbCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	records, err := s.storage.Query(dbCtx, filter)
	if err != nil {
		s.logger.Error("record query failed", zap.String("report", report), zap.Error(err))
		return nil, fmt.Errorf("%w: %v", ErrStorageFailure, err)
	}

	s.logger.Debug("records fetched",
		zap.String("report", report),
		zap.Int("terms", len(filter.Terms)),
		zap.Int("records", len(records)))

	if filter.Terms == nil {
		return records, nil
	}
	return FilterByTerms(records, filter.Terms), nil
}

// Listing returns every stored record as is.
func (s *ReportService) Listing(ctx context.Context) ([]models.SurveyRecord, error) {
	return s.query(ctx, "listing", models.RecordFilter{})
}

// InCurriculum returns the records of the in-curriculum terms sorted by term, then period.
// Terms are matched exactly, so "Java" does not match the configured "java".
func (s *ReportService) InCurriculum(ctx context.Context) ([]models.SurveyRecord, error) {
	return s.query(ctx, "in-curriculum", models.RecordFilter{
		Terms: s.catalog.InCurriculum(),
		Sort:  models.SortByTermPeriod,
	})
}

// OutOfCurriculumJanuary keeps the first January record of each (term, year)
// for the out-of-curriculum terms, ordered by year then term.
func (s *ReportService) OutOfCurriculumJanuary(ctx context.Context) ([]JanuarySnapshot, error) {
	records, err := s.query(ctx, "out-of-curriculum", models.RecordFilter{Terms: s.catalog.OutOfCurriculum()})
	if err != nil {
		return nil, err
	}

	type termYear struct{ term, year string }
	seen := make(map[termYear]struct{})
	out := []JanuarySnapshot{}

	for _, r := range records {
		if !IsJanuary(r.Period) {
			continue
		}
		k := termYear{term: r.Term, year: ExtractYear(r.Period)}
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, JanuarySnapshot{Term: k.term, Year: k.year, Participation: r.Participation})
	}

	slices.SortStableFunc(out, func(a, b JanuarySnapshot) int {
		if c := cmp.Compare(a.Year, b.Year); c != 0 {
			return c
		}
		return cmp.Compare(a.Term, b.Term)
	})
	return out, nil
}

// TechnologyComparison averages each group member per year, then averages the
// yearly means. Records without a year form their own "N/A" bucket.
func (s *ReportService) TechnologyComparison(ctx context.Context) ([]ComparisonRow, error) {
	records, err := s.query(ctx, "comparison", models.RecordFilter{Terms: s.catalog.ComparisonTerms()})
	if err != nil {
		return nil, err
	}

	type techYear struct{ tech, year string }
	groups, order := GroupAverage(records, func(r models.SurveyRecord) (techYear, bool) {
		return techYear{tech: strings.ToLower(r.Term), year: ExtractYear(r.Period)}, true
	})

	yearly := make(map[string][]YearAverage)
	for _, k := range order {
		yearly[k.tech] = append(yearly[k.tech], YearAverage{Year: k.year, Average: groups[k].Average})
	}

	rows := []ComparisonRow{}
	for _, g := range s.catalog.ComparisonGroups() {
		for _, tech := range g.Terms() {
			years, ok := yearly[strings.ToLower(tech)]
			if !ok {
				continue
			}
			years = slices.Clone(years)
			slices.SortFunc(years, func(a, b YearAverage) int { return cmp.Compare(a.Year, b.Year) })

			means := make([]float64, len(years))
			for i, y := range years {
				means[i] = y.Average
			}

			rows = append(rows, ComparisonRow{
				Group:                g.Name,
				Term:                 tech,
				Principal:            tech == g.Principal,
				AverageParticipation: mean(means),
				Years:                years,
			})
		}
	}
	return rows, nil
}

// Rankings ranks the frontend and backend lists separately for every year.
func (s *ReportService) Rankings(ctx context.Context) ([]YearRanking, error) {
	frontend, backend := s.catalog.FrontendRanking(), s.catalog.BackendRanking()

	records, err := s.query(ctx, "ranking", models.RecordFilter{Terms: union(frontend, backend)})
	if err != nil {
		return nil, err
	}

	byYear, years := yearlyTermAverages(records)

	out := make([]YearRanking, len(years))
	for i, y := range years {
		out[i] = YearRanking{
			Year:     y,
			Frontend: Rank(byYear[y], frontend),
			Backend:  Rank(byYear[y], backend),
		}
	}
	return out, nil
}

// FrontendBackendTotals sums, per year, the yearly averages of each side's terms.
func (s *ReportService) FrontendBackendTotals(ctx context.Context) (TotalsReport, error) {
	frontend, backend := s.catalog.FrontendRanking(), s.catalog.BackendRanking()

	records, err := s.query(ctx, "frontend-backend", models.RecordFilter{Terms: union(frontend, backend)})
	if err != nil {
		return TotalsReport{}, err
	}

	byYear, years := yearlyTermAverages(records)

	frontSums := make(map[string]float64, len(years))
	backSums := make(map[string]float64, len(years))
	for _, y := range years {
		frontSums[y] = sumOf(byYear[y], frontend)
		backSums[y] = sumOf(byYear[y], backend)
	}

	totals := ComputeYearlyTotals(frontSums, backSums)

	var summary TotalsSummary
	for _, t := range totals {
		summary.FrontendTotal += t.FrontendTotal
		summary.BackendTotal += t.BackendTotal
	}
	summary.Leader = leader(summary.FrontendTotal, summary.BackendTotal)
	summary.FrontendTrend = Trend(totals, SideFrontend)
	summary.BackendTrend = Trend(totals, SideBackend)

	return TotalsReport{Years: totals, Summary: summary}, nil
}

// DatabaseEngines averages each database per year and lays the same numbers
// out as chart series.
func (s *ReportService) DatabaseEngines(ctx context.Context) (DatabaseReport, error) {
	databases := s.catalog.Databases()

	records, err := s.query(ctx, "databases", models.RecordFilter{Terms: databases})
	if err != nil {
		return DatabaseReport{}, err
	}

	byYear, years := yearlyTermAverages(records)

	report := DatabaseReport{
		Rows:  []TechYearAverage{},
		Chart: ChartData{Years: years, Series: []ChartSeries{}},
	}
	if report.Chart.Years == nil {
		report.Chart.Years = []string{}
	}

	for _, db := range databases {
		values := make([]*float64, len(years))
		found := false
		for i, y := range years {
			avg, ok := byYear[y][db]
			if !ok {
				continue
			}
			found = true
			values[i] = &avg
			report.Rows = append(report.Rows, TechYearAverage{Term: db, Year: y, AverageParticipation: avg})
		}
		if found {
			report.Chart.Series = append(report.Chart.Series, ChartSeries{Name: db, Values: values})
		}
	}
	return report, nil
}

// CategoryAnalysis categorizes the most frequent terms and averages each
// category per year.
func (s *ReportService) CategoryAnalysis(ctx context.Context) (CategoryReport, error) {
	dbCtx, cancel := context.WithTimeout(ctx, s.timeout)
	top, err := s.storage.TopTerms(dbCtx, s.topTerms)
	cancel()
	if err != nil {
		s.logger.Error("top terms aggregation failed", zap.String("report", "categories"), zap.Error(err))
		return CategoryReport{}, fmt.Errorf("%w: %v", ErrStorageFailure, err)
	}

	terms := make([]string, len(top))
	for i, t := range top {
		terms[i] = t.Term
	}

	records, err := s.query(ctx, "categories", models.RecordFilter{Terms: terms})
	if err != nil {
		return CategoryReport{}, err
	}

	type categoryYear struct{ category, year string }
	keyOf := func(r models.SurveyRecord) (categoryYear, bool) {
		y := ExtractYear(r.Period)
		if y == NoYear {
			return categoryYear{}, false
		}
		return categoryYear{category: s.catalog.Categorize(r.Term), year: y}, true
	}

	groups, _ := GroupAverage(records, keyOf)

	termsPerGroup := make(map[categoryYear]map[string]struct{})
	termsPerCategory := make(map[string][]string)
	for _, r := range records {
		k, ok := keyOf(r)
		if !ok {
			continue
		}
		if termsPerGroup[k] == nil {
			termsPerGroup[k] = make(map[string]struct{})
		}
		termsPerGroup[k][r.Term] = struct{}{}
		if !slices.Contains(termsPerCategory[k.category], r.Term) {
			termsPerCategory[k.category] = append(termsPerCategory[k.category], r.Term)
		}
	}

	report := CategoryReport{
		Rows:      make([]CategoryYearAverage, 0, len(groups)),
		Summaries: []CategorySummary{},
		TopTerms:  top,
	}
	values := make(map[string][]float64)
	for k, g := range groups {
		report.Rows = append(report.Rows, CategoryYearAverage{
			Category:             k.category,
			Year:                 k.year,
			AverageParticipation: g.Average,
			TermCount:            len(termsPerGroup[k]),
		})
		values[k.category] = append(values[k.category], g.Values...)
	}
	slices.SortFunc(report.Rows, func(a, b CategoryYearAverage) int {
		if c := cmp.Compare(a.Category, b.Category); c != 0 {
			return c
		}
		return cmp.Compare(a.Year, b.Year)
	})

	for category, vals := range values {
		report.Summaries = append(report.Summaries, CategorySummary{
			Category:             category,
			Terms:                termsPerCategory[category],
			RecordCount:          len(vals),
			AverageParticipation: mean(vals),
		})
	}
	slices.SortFunc(report.Summaries, func(a, b CategorySummary) int {
		return cmp.Compare(a.Category, b.Category)
	})

	return report, nil
}

func union(lists ...[]string) []string {
	var out []string
	for _, l := range lists {
		for _, t := range l {
			if !slices.Contains(out, t) {
				out = append(out, t)
			}
		}
	}
	return out
}

// sumOf adds the averages of terms in list order.
func sumOf(averages map[string]float64, terms []string) float64 {
	var sum float64
	for _, t := range terms {
		sum += averages[t]
	}
	return sum
}
