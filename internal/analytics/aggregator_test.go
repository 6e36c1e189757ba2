package analytics

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"growdash/internal/match"
	"growdash/internal/models"
)

var base = time.Date(2026, 5, 4, 9, 30, 0, 0, time.UTC)

func lotAt(pnl float64, closedAt time.Time) match.ClosedLot {
	return match.ClosedLot{
		Symbol:      "X",
		OpenedAt:    closedAt.Add(-10 * time.Minute),
		ClosedAt:    closedAt,
		Quantity:    1,
		RealizedPnL: decimal.NewFromFloat(pnl),
	}
}

func roundTrip(symbol string, qty int64, open, close float64, openedAt time.Time, hold time.Duration) []models.Trade {
	return []models.Trade{
		{Symbol: symbol, Side: models.SideBuy, Quantity: qty, Price: decimal.NewFromFloat(open), TradedAt: openedAt},
		{Symbol: symbol, Side: models.SideSell, Quantity: qty, Price: decimal.NewFromFloat(close), TradedAt: openedAt.Add(hold)},
	}
}

func TestMaxDrawdown_Curve(t *testing.T) {
	// Equity curve 100, 80, 120, 50: peaks 100,100,120,120 and drawdowns
	// 0,20,0,70.
	lots := []match.ClosedLot{
		lotAt(100, base),
		lotAt(-20, base.Add(time.Minute)),
		lotAt(40, base.Add(2*time.Minute)),
		lotAt(-70, base.Add(3*time.Minute)),
	}
	if got := maxDrawdown(lots); !got.Equal(decimal.NewFromInt(70)) {
		t.Fatalf("maxDrawdown=%s want 70", got.String())
	}
}

func TestMaxDrawdown_NonDecreasingCurveIsZero(t *testing.T) {
	lots := []match.ClosedLot{
		lotAt(10, base),
		lotAt(5, base.Add(time.Minute)),
		lotAt(0, base.Add(2*time.Minute)),
	}
	if got := maxDrawdown(lots); !got.IsZero() {
		t.Fatalf("maxDrawdown=%s want 0", got.String())
	}
}

func TestMaxDrawdown_OrdersByCloseTime(t *testing.T) {
	// Losing lot closed first even though it appears last in the slice.
	lots := []match.ClosedLot{
		lotAt(100, base.Add(time.Hour)),
		lotAt(-30, base),
	}
	if got := maxDrawdown(lots); !got.Equal(decimal.NewFromInt(30)) {
		t.Fatalf("maxDrawdown=%s want 30", got.String())
	}
}

func TestCompute_EmptyTradeSet(t *testing.T) {
	snapshot, err := Compute(nil)
	if err != nil {
		t.Fatalf("err=%v", err)
	}
	if snapshot.Summary.WinRate != 0 {
		t.Fatalf("winRate=%v want 0", snapshot.Summary.WinRate)
	}
	if snapshot.Summary.RiskRewardRatio != nil {
		t.Fatalf("riskRewardRatio=%v want nil", *snapshot.Summary.RiskRewardRatio)
	}
	if snapshot.HoldingTime.HasData {
		t.Fatalf("holding time should report no data")
	}
	if snapshot.DailyPnL == nil || snapshot.CEvsPE == nil {
		t.Fatalf("facet slices must be empty, not nil")
	}
}

func TestCompute_AllWinningLotsHaveNoRatio(t *testing.T) {
	trades := append(
		roundTrip("INFY", 1, 100, 110, base, 10*time.Minute),
		roundTrip("SBIN", 1, 50, 60, base.Add(time.Hour), 10*time.Minute)...,
	)
	snapshot, err := Compute(trades)
	if err != nil {
		t.Fatalf("err=%v", err)
	}
	if snapshot.Summary.WinRate != 100 {
		t.Fatalf("winRate=%v want 100", snapshot.Summary.WinRate)
	}
	if snapshot.Summary.AverageLoss != 0 {
		t.Fatalf("averageLoss=%v want 0", snapshot.Summary.AverageLoss)
	}
	if snapshot.Summary.RiskRewardRatio != nil {
		t.Fatalf("riskRewardRatio must be nil when there are no losses")
	}
}

func TestCompute_SummaryAndBuckets(t *testing.T) {
	day1 := time.Date(2026, 5, 4, 10, 0, 0, 0, time.UTC)
	day2 := time.Date(2026, 6, 1, 10, 0, 0, 0, time.UTC)
	trades := append(
		roundTrip("INFY", 2, 100, 110, day1, 30*time.Minute), // +20
		roundTrip("SBIN", 1, 50, 40, day2, 30*time.Minute)..., // -10
	)
	snapshot, err := Compute(trades)
	if err != nil {
		t.Fatalf("err=%v", err)
	}
	if snapshot.Summary.TotalProfitLoss != 10 {
		t.Fatalf("totalPnL=%v want 10", snapshot.Summary.TotalProfitLoss)
	}
	if snapshot.Summary.WinRate != 50 {
		t.Fatalf("winRate=%v want 50", snapshot.Summary.WinRate)
	}
	if snapshot.Summary.AverageProfit != 20 || snapshot.Summary.AverageLoss != 10 {
		t.Fatalf("avgProfit=%v avgLoss=%v want 20/10", snapshot.Summary.AverageProfit, snapshot.Summary.AverageLoss)
	}
	if snapshot.Summary.RiskRewardRatio == nil || *snapshot.Summary.RiskRewardRatio != 2 {
		t.Fatalf("riskRewardRatio=%v want 2", snapshot.Summary.RiskRewardRatio)
	}

	if len(snapshot.DailyPnL) != 2 {
		t.Fatalf("daily buckets=%d want 2 (sparse, no zero fill)", len(snapshot.DailyPnL))
	}
	if snapshot.DailyPnL[0].Date != "2026-05-04" || snapshot.DailyPnL[1].Date != "2026-06-01" {
		t.Fatalf("daily order wrong: %+v", snapshot.DailyPnL)
	}
	if len(snapshot.MonthlyPnL) != 2 || snapshot.MonthlyPnL[0].Month != "2026-05" {
		t.Fatalf("monthly buckets wrong: %+v", snapshot.MonthlyPnL)
	}
	if snapshot.TradeStats.TotalTrades != 4 || snapshot.TradeStats.ClosedLots != 2 {
		t.Fatalf("tradeStats=%+v want 4 trades, 2 lots", snapshot.TradeStats)
	}
}

func TestCompute_OptionSplitExcludesEquities(t *testing.T) {
	ce := models.OptionCall
	pe := models.OptionPut
	strike := decimal.NewFromInt(22500)
	trades := []models.Trade{
		{Symbol: "NIFTY24MAY22500CE", Side: models.SideBuy, Quantity: 1, Price: decimal.NewFromInt(100), TradedAt: base, OptionType: &ce, Strike: &strike},
		{Symbol: "NIFTY24MAY22500CE", Side: models.SideSell, Quantity: 1, Price: decimal.NewFromInt(130), TradedAt: base.Add(time.Minute), OptionType: &ce, Strike: &strike},
		{Symbol: "NIFTY24MAY22500PE", Side: models.SideBuy, Quantity: 1, Price: decimal.NewFromInt(80), TradedAt: base, OptionType: &pe, Strike: &strike},
		{Symbol: "NIFTY24MAY22500PE", Side: models.SideSell, Quantity: 1, Price: decimal.NewFromInt(70), TradedAt: base.Add(time.Minute), OptionType: &pe, Strike: &strike},
	}
	trades = append(trades, roundTrip("RELIANCE", 1, 2000, 2050, base, time.Hour)...)

	snapshot, err := Compute(trades)
	if err != nil {
		t.Fatalf("err=%v", err)
	}
	if len(snapshot.CEvsPE) != 2 {
		t.Fatalf("ce_vs_pe=%+v want CE and PE only", snapshot.CEvsPE)
	}
	if snapshot.CEvsPE[0].OptionType != "CE" || snapshot.CEvsPE[0].PnL != 30 {
		t.Fatalf("CE point=%+v want pnl 30", snapshot.CEvsPE[0])
	}
	if snapshot.CEvsPE[1].OptionType != "PE" || snapshot.CEvsPE[1].PnL != -10 {
		t.Fatalf("PE point=%+v want pnl -10", snapshot.CEvsPE[1])
	}
}

func TestCompute_StrikeActivityByQuantity(t *testing.T) {
	ce := models.OptionCall
	low := decimal.NewFromInt(22000)
	high := decimal.NewFromInt(22500)
	trades := []models.Trade{
		{Symbol: "A22000CE", Side: models.SideBuy, Quantity: 5, Price: decimal.NewFromInt(10), TradedAt: base, OptionType: &ce, Strike: &low},
		{Symbol: "A22500CE", Side: models.SideBuy, Quantity: 50, Price: decimal.NewFromInt(10), TradedAt: base, OptionType: &ce, Strike: &high},
		{Symbol: "A22500CE", Side: models.SideSell, Quantity: 50, Price: decimal.NewFromInt(11), TradedAt: base.Add(time.Minute), OptionType: &ce, Strike: &high},
	}
	trades = append(trades, roundTrip("RELIANCE", 99, 2000, 2001, base, time.Minute)...)

	snapshot, err := Compute(trades)
	if err != nil {
		t.Fatalf("err=%v", err)
	}
	if len(snapshot.MostTradedStrike) != 2 {
		t.Fatalf("strikes=%+v want 2 (no-strike trades excluded)", snapshot.MostTradedStrike)
	}
	if snapshot.MostTradedStrike[0].Strike != "22500.00" || snapshot.MostTradedStrike[0].Quantity != 100 {
		t.Fatalf("top strike=%+v want 22500.00 qty 100 (both sides counted)", snapshot.MostTradedStrike[0])
	}
}

func TestCompute_HoldingTime(t *testing.T) {
	trades := append(
		roundTrip("INFY", 1, 100, 101, base, 10*time.Minute),
		roundTrip("SBIN", 1, 100, 101, base.Add(time.Hour), 30*time.Minute)...,
	)
	snapshot, err := Compute(trades)
	if err != nil {
		t.Fatalf("err=%v", err)
	}
	ht := snapshot.HoldingTime
	if !ht.HasData {
		t.Fatalf("expected holding-time data")
	}
	if ht.MinMinutes != 10 || ht.MaxMinutes != 30 || ht.AverageMinutes != 20 || ht.MedianMinutes != 20 {
		t.Fatalf("holding=%+v want min 10 max 30 avg 20 median 20", ht)
	}
}
