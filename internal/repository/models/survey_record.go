package models

// SurveyRecord is one stored measurement of a term's participation.
// Participation keeps the stored text; numeric values are rendered with
// strconv's shortest representation.
type SurveyRecord struct {
	Term          string `json:"term"`
	Period        string `json:"period"`
	Participation string `json:"participation"`
}

type SortOrder int

const (
	SortNone SortOrder = iota
	SortByTermPeriod
)

// RecordFilter selects records by exact term. A nil Terms slice selects
// every record; an empty non-nil slice selects none.
type RecordFilter struct {
	Terms []string
	Sort  SortOrder
}

// TermFrequency is one row of the top-terms aggregation.
type TermFrequency struct {
	Term             string  `json:"term"`
	Count            int64   `json:"count"`
	AvgParticipation float64 `json:"avg_participation"`
}
