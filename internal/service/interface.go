package service

import (
	"context"

	"github.com/godilite/termosti/internal/repository/models"
)

// RecordStore is the read-only survey record collaborator. Implementations
// must tolerate concurrent calls.
type RecordStore interface {
	Query(ctx context.Context, filter models.RecordFilter) ([]models.SurveyRecord, error)
	TopTerms(ctx context.Context, limit int) ([]models.TermFrequency, error)
}
