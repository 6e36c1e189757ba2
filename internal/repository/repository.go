package repository

import (
	"context"
	"time"

	"growdash/internal/models"
)

type ListTradesParams struct {
	Limit  int
	Offset int
}

// TradeRepository is the storage boundary for the ingestion and analytics
// services. Trades are append-only: nothing ever updates or deletes a row.
type TradeRepository interface {
	// InsertTradesIgnoringDuplicates appends the batch, skipping any trade
	// whose fingerprint is already stored, and returns the number actually
	// inserted. The skip happens inside the insert itself so two concurrent
	// uploads of the same file cannot both accept a fingerprint.
	InsertTradesIgnoringDuplicates(ctx context.Context, items []models.Trade) (int64, error)

	// ListTradesForAnalytics returns every trade ordered by executed time
	// ascending with the insertion id as tie-break, optionally windowed.
	ListTradesForAnalytics(ctx context.Context, from, to *time.Time) ([]models.Trade, error)

	ListTrades(ctx context.Context, params ListTradesParams) ([]models.Trade, error)
	CountTrades(ctx context.Context) (int64, error)
}
