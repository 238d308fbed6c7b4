package mocks

import (
	"context"
	"errors"

	"github.com/godilite/termosti/internal/repository/models"
)

// MockRecordStore is a mock implementation of the RecordStore interface
// for testing the service layer.
type MockRecordStore struct {
	QueryFunc    func(ctx context.Context, filter models.RecordFilter) ([]models.SurveyRecord, error)
	TopTermsFunc func(ctx context.Context, limit int) ([]models.TermFrequency, error)
}

// Query implements the RecordStore interface
func (m *MockRecordStore) Query(ctx context.Context, filter models.RecordFilter) ([]models.SurveyRecord, error) {
	if m.QueryFunc != nil {
		return m.QueryFunc(ctx, filter)
	}
	return nil, errors.New("QueryFunc not implemented")
}

// TopTerms implements the RecordStore interface
func (m *MockRecordStore) TopTerms(ctx context.Context, limit int) ([]models.TermFrequency, error) {
	if m.TopTermsFunc != nil {
		return m.TopTermsFunc(ctx, limit)
	}
	return nil, errors.New("TopTermsFunc not implemented")
}

// StaticStore answers Query from a fixed record set, applying the term filter
// the way a real store would, and TopTerms from a fixed list.
func StaticStore(records []models.SurveyRecord, top []models.TermFrequency) *MockRecordStore {
	return &MockRecordStore{
		QueryFunc: func(ctx context.Context, filter models.RecordFilter) ([]models.SurveyRecord, error) {
			if filter.Terms == nil {
				return records, nil
			}
			var out []models.SurveyRecord
			for _, r := range records {
				for _, t := range filter.Terms {
					if r.Term == t {
						out = append(out, r)
						break
					}
				}
			}
			return out, nil
		},
		TopTermsFunc: func(ctx context.Context, limit int) ([]models.TermFrequency, error) {
			if limit < len(top) {
				return top[:limit], nil
			}
			return top, nil
		},
	}
}
