package service

import "github.com/godilite/termosti/internal/repository/models"

// NoYear marks a period with no four-digit year in it.
const NoYear = "N/A"

type Side string

const (
	SideFrontend Side = "frontend"
	SideBackend  Side = "backend"
	SideTie      Side = "tie"
)

type JanuarySnapshot struct {
	Term          string
	Year          string
	Participation string
}

type YearAverage struct {
	Year    string
	Average float64
}

type ComparisonRow struct {
	Group                string
	Term                 string
	Principal            bool
	AverageParticipation float64
	Years                []YearAverage
}

type TechYearAverage struct {
	Term                 string
	Year                 string
	AverageParticipation float64
}

type CategoryYearAverage struct {
	Category             string
	Year                 string
	AverageParticipation float64
	TermCount            int
}

type RankedEntry struct {
	Term                 string
	AverageParticipation float64
	Rank                 int
}

type YearRanking struct {
	Year     string
	Frontend []RankedEntry
	Backend  []RankedEntry
}

// YearlyTotals shares are percentages of GrandTotal.
type YearlyTotals struct {
	Year          string
	FrontendTotal float64
	BackendTotal  float64
	GrandTotal    float64
	FrontendShare float64
	BackendShare  float64
	Leader        Side
}

type TrendDelta struct {
	Group Side
	Delta float64
}

type TotalsSummary struct {
	FrontendTotal float64
	BackendTotal  float64
	Leader        Side
	FrontendTrend TrendDelta
	BackendTrend  TrendDelta
}

type TotalsReport struct {
	Years   []YearlyTotals
	Summary TotalsSummary
}

// ChartSeries holds one value per ChartData year; nil where the term has no data.
type ChartSeries struct {
	Name   string     `json:"name"`
	Values []*float64 `json:"values"`
}

type ChartData struct {
	Years  []string      `json:"years"`
	Series []ChartSeries `json:"series"`
}

type DatabaseReport struct {
	Rows  []TechYearAverage
	Chart ChartData
}

type CategorySummary struct {
	Category             string
	Terms                []string
	RecordCount          int
	AverageParticipation float64
}

type CategoryReport struct {
	Rows      []CategoryYearAverage
	Summaries []CategorySummary
	TopTerms  []models.TermFrequency
}
