package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/godilite/termosti/internal/repository/models"
)

const schema = `
	CREATE TABLE IF NOT EXISTS survey_records (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		term TEXT NOT NULL,
		period TEXT NOT NULL,
		participation TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_survey_records_term ON survey_records(term);
`

// SQLRecordStore reads survey records from a database/sql pool.
type SQLRecordStore struct {
	db *sql.DB
}

func NewSQLRecordStore(db *sql.DB) *SQLRecordStore {
	return &SQLRecordStore{db: db}
}

// EnsureSchema creates the survey_records table when it does not exist.
func (s *SQLRecordStore) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("exec EnsureSchema: %w", err)
	}
	return nil
}

// Query returns records whose term is in filter.Terms, compared exactly.
// Unsorted results come back in insertion order.
func (s *SQLRecordStore) Query(ctx context.Context, filter models.RecordFilter) ([]models.SurveyRecord, error) {
	if filter.Terms != nil && len(filter.Terms) == 0 {
		return []models.SurveyRecord{}, nil
	}

	var (
		query strings.Builder
		args  []any
	)
	query.WriteString(`SELECT term, period, participation FROM survey_records`)

	if filter.Terms != nil {
		placeholders := make([]string, len(filter.Terms))
		for i, t := range filter.Terms {
			placeholders[i] = "?"
			args = append(args, t)
		}
		fmt.Fprintf(&query, ` WHERE term IN (%s)`, strings.Join(placeholders, ", "))
	}

	switch filter.Sort {
	case models.SortByTermPeriod:
		query.WriteString(` ORDER BY term, period`)
	default:
		query.WriteString(` ORDER BY id`)
	}

	rows, err := s.db.QueryContext(ctx, query.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("query Query: %w", err)
	}
	defer rows.Close()

	results := []models.SurveyRecord{}
	for rows.Next() {
		var r models.SurveyRecord
		if err := rows.Scan(&r.Term, &r.Period, &r.Participation); err != nil {
			return nil, fmt.Errorf("scan Query row: %w", err)
		}
		results = append(results, r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate Query: %w", err)
	}
	return results, nil
}

// TopTerms counts records per stored term and averages their participation in SQL.
// Ties on count keep first-seen order.
func (s *SQLRecordStore) TopTerms(ctx context.Context, limit int) ([]models.TermFrequency, error) {
	const query = `
		SELECT
			term,
			COUNT(id) AS record_count,
			AVG(CAST(participation AS REAL)) AS avg_participation
		FROM survey_records
		GROUP BY term
		ORDER BY record_count DESC, MIN(id) ASC
		LIMIT ?
	`

	rows, err := s.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("query TopTerms: %w", err)
	}
	defer rows.Close()

	results := []models.TermFrequency{}
	for rows.Next() {
		var (
			tf  models.TermFrequency
			avg sql.NullFloat64
		)
		if err := rows.Scan(&tf.Term, &tf.Count, &avg); err != nil {
			return nil, fmt.Errorf("scan TopTerms row: %w", err)
		}
		if avg.Valid {
			tf.AvgParticipation = avg.Float64
		}
		results = append(results, tf)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate TopTerms: %w", err)
	}
	return results, nil
}
