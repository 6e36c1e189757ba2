package analytics

import (
	"context"
	"time"

	"go.uber.org/zap"

	"growdash/internal/repository"
)

type Service struct {
	Repo   repository.TradeRepository
	Logger *zap.Logger
}

// Snapshot recomputes the full analytics over the stored trades, optionally
// windowed by executed time. Either a complete, internally consistent
// snapshot comes back or an error does; never a partial one.
func (s *Service) Snapshot(ctx context.Context, from, to *time.Time) (Snapshot, error) {
	trades, err := s.Repo.ListTradesForAnalytics(ctx, from, to)
	if err != nil {
		return Snapshot{}, err
	}
	snapshot, err := Compute(trades)
	if err != nil {
		if s.Logger != nil {
			s.Logger.Error("analytics computation failed", zap.Error(err))
		}
		return Snapshot{}, err
	}
	return snapshot, nil
}

// LogSummary is the nightly heartbeat: recompute and log headline figures.
func (s *Service) LogSummary(ctx context.Context) {
	snapshot, err := s.Snapshot(ctx, nil, nil)
	if err != nil {
		if s.Logger != nil {
			s.Logger.Warn("analytics summary job failed", zap.Error(err))
		}
		return
	}
	if s.Logger != nil {
		s.Logger.Info("analytics summary",
			zap.Float64("total_pnl", snapshot.Summary.TotalProfitLoss),
			zap.Float64("win_rate", snapshot.Summary.WinRate),
			zap.Float64("max_drawdown", snapshot.Summary.MaxDrawdown),
			zap.Int("closed_lots", snapshot.TradeStats.ClosedLots),
		)
	}
}
