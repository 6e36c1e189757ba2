package ingest

import (
	"context"

	"go.uber.org/zap"

	"growdash/internal/models"
	"growdash/internal/repository"
)

// Result reports one upload. TotalRows = ImportedRows + SkippedRows always
// holds; skips cover unparseable rows, in-batch duplicates and fingerprints
// already stored.
type Result struct {
	TotalRows    int   `json:"total_rows"`
	ImportedRows int64 `json:"imported_rows"`
	SkippedRows  int64 `json:"skipped_rows"`
}

type Service struct {
	Repo   repository.TradeRepository
	Logger *zap.Logger
}

// ImportCSV parses, deduplicates and stores one uploaded tradebook. Row-level
// parse failures never abort the batch; only an unusable file (no recognizable
// layout) is an error.
func (s *Service) ImportCSV(ctx context.Context, data []byte) (Result, error) {
	book, err := ParseTradebook(data)
	if err != nil {
		return Result{}, err
	}
	if book.Attempted == 0 {
		return Result{}, nil
	}

	// Drop duplicates inside the batch first so a row appearing twice in the
	// same file is rejected deterministically on its second appearance.
	seen := make(map[string]bool, len(book.Candidates))
	unique := make([]models.Trade, 0, len(book.Candidates))
	for _, trade := range book.Candidates {
		if seen[trade.TradeHash] {
			continue
		}
		seen[trade.TradeHash] = true
		unique = append(unique, trade)
	}

	imported, err := s.Repo.InsertTradesIgnoringDuplicates(ctx, unique)
	if err != nil {
		return Result{}, err
	}

	result := Result{
		TotalRows:    book.Attempted,
		ImportedRows: imported,
		SkippedRows:  int64(book.Attempted) - imported,
	}
	if s.Logger != nil {
		s.Logger.Info("tradebook imported",
			zap.Int("total_rows", result.TotalRows),
			zap.Int64("imported_rows", result.ImportedRows),
			zap.Int64("skipped_rows", result.SkippedRows),
		)
	}
	return result, nil
}
