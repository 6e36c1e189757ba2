package analytics

import (
	"sort"

	"github.com/shopspring/decimal"

	"growdash/internal/match"
	"growdash/internal/models"
)

const (
	dayLayout   = "2006-01-02"
	monthLayout = "2006-01"
	topStrikes  = 10
)

// Compute derives the full snapshot from trades sorted ascending by executed
// time (insertion order as tie-break). It is pure: safe to call concurrently,
// never mutates its input. A matcher invariant violation fails the whole
// snapshot; partially correct numbers are worse than no numbers.
func Compute(trades []models.Trade) (Snapshot, error) {
	lots, err := match.Match(trades)
	if err != nil {
		return Snapshot{}, err
	}

	snapshot := Snapshot{
		DailyPnL:         []DailyPnLPoint{},
		MonthlyPnL:       []MonthlyPnLPoint{},
		CEvsPE:           []OptionTypePnL{},
		MostTradedStrike: []StrikeActivity{},
		TradeStats: TradeStats{
			TotalTrades: len(trades),
			ClosedLots:  len(lots),
		},
	}
	snapshot.MostTradedStrike = strikeActivity(trades)
	snapshot.Summary = summarize(lots)
	snapshot.DailyPnL, snapshot.MonthlyPnL = bucketPnL(lots)
	snapshot.CEvsPE = optionTypeSplit(lots)
	snapshot.HoldingTime = holdingTime(lots)
	return snapshot, nil
}

func summarize(lots []match.ClosedLot) Summary {
	total := decimal.Zero
	winSum, lossSum := decimal.Zero, decimal.Zero
	winCount, lossCount := 0, 0

	for _, lot := range lots {
		total = total.Add(lot.RealizedPnL)
		switch {
		case lot.RealizedPnL.IsPositive():
			winSum = winSum.Add(lot.RealizedPnL)
			winCount++
		case lot.RealizedPnL.IsNegative():
			lossSum = lossSum.Add(lot.RealizedPnL.Abs())
			lossCount++
		}
	}

	summary := Summary{
		TotalProfitLoss: round2(total),
		MaxDrawdown:     round2(maxDrawdown(lots)),
	}
	if len(lots) > 0 {
		summary.WinRate = roundFloat2(float64(winCount) / float64(len(lots)) * 100.0)
	}
	if winCount > 0 {
		summary.AverageProfit = round2(winSum.Div(decimal.NewFromInt(int64(winCount))))
	}
	if lossCount > 0 {
		avgLoss := lossSum.Div(decimal.NewFromInt(int64(lossCount)))
		summary.AverageLoss = round2(avgLoss)
		if avgLoss.IsPositive() {
			avgProfit := decimal.Zero
			if winCount > 0 {
				avgProfit = winSum.Div(decimal.NewFromInt(int64(winCount)))
			}
			ratio := round2(avgProfit.Div(avgLoss))
			summary.RiskRewardRatio = &ratio
		}
	}
	return summary
}

// maxDrawdown walks the equity curve of realized PnL in close order and
// returns the deepest peak-to-trough decline. Zero for a non-decreasing
// curve or no lots.
func maxDrawdown(lots []match.ClosedLot) decimal.Decimal {
	ordered := make([]match.ClosedLot, len(lots))
	copy(ordered, lots)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].ClosedAt.Before(ordered[j].ClosedAt)
	})

	equity, peak, worst := decimal.Zero, decimal.Zero, decimal.Zero
	for _, lot := range ordered {
		equity = equity.Add(lot.RealizedPnL)
		if equity.GreaterThan(peak) {
			peak = equity
		}
		if dd := peak.Sub(equity); dd.GreaterThan(worst) {
			worst = dd
		}
	}
	return worst
}

// bucketPnL groups realized PnL by the calendar day and month the lot
// closed. Buckets are sparse: periods without closed lots are absent.
func bucketPnL(lots []match.ClosedLot) ([]DailyPnLPoint, []MonthlyPnLPoint) {
	daily := make(map[string]decimal.Decimal)
	monthly := make(map[string]decimal.Decimal)
	for _, lot := range lots {
		day := lot.ClosedAt.Format(dayLayout)
		month := lot.ClosedAt.Format(monthLayout)
		daily[day] = daily[day].Add(lot.RealizedPnL)
		monthly[month] = monthly[month].Add(lot.RealizedPnL)
	}

	dailyPoints := make([]DailyPnLPoint, 0, len(daily))
	for day, pnl := range daily {
		dailyPoints = append(dailyPoints, DailyPnLPoint{Date: day, PnL: round2(pnl)})
	}
	sort.Slice(dailyPoints, func(i, j int) bool { return dailyPoints[i].Date < dailyPoints[j].Date })

	monthlyPoints := make([]MonthlyPnLPoint, 0, len(monthly))
	for month, pnl := range monthly {
		monthlyPoints = append(monthlyPoints, MonthlyPnLPoint{Month: month, PnL: round2(pnl)})
	}
	sort.Slice(monthlyPoints, func(i, j int) bool { return monthlyPoints[i].Month < monthlyPoints[j].Month })

	return dailyPoints, monthlyPoints
}

// optionTypeSplit sums realized PnL per CE/PE. Equity lots carry no option
// type and stay out of this breakdown.
func optionTypeSplit(lots []match.ClosedLot) []OptionTypePnL {
	byType := make(map[string]decimal.Decimal)
	for _, lot := range lots {
		if lot.OptionType == "" {
			continue
		}
		byType[lot.OptionType] = byType[lot.OptionType].Add(lot.RealizedPnL)
	}

	points := make([]OptionTypePnL, 0, len(byType))
	for optionType, pnl := range byType {
		points = append(points, OptionTypePnL{OptionType: optionType, PnL: round2(pnl)})
	}
	sort.Slice(points, func(i, j int) bool { return points[i].OptionType < points[j].OptionType })
	return points
}

// strikeActivity ranks strikes by traded quantity across raw fills, both
// sides counted. This measures where the activity was, not where the profit
// was, so it reads trades rather than closed lots.
func strikeActivity(trades []models.Trade) []StrikeActivity {
	byStrike := make(map[string]int64)
	for i := range trades {
		if trades[i].Strike == nil {
			continue
		}
		byStrike[trades[i].Strike.StringFixed(2)] += trades[i].Quantity
	}

	points := make([]StrikeActivity, 0, len(byStrike))
	for strike, quantity := range byStrike {
		points = append(points, StrikeActivity{Strike: strike, Quantity: quantity})
	}
	sort.Slice(points, func(i, j int) bool {
		if points[i].Quantity != points[j].Quantity {
			return points[i].Quantity > points[j].Quantity
		}
		return points[i].Strike < points[j].Strike
	})
	if len(points) > topStrikes {
		points = points[:topStrikes]
	}
	return points
}

func holdingTime(lots []match.ClosedLot) HoldingTime {
	if len(lots) == 0 {
		return HoldingTime{}
	}

	samples := make([]float64, 0, len(lots))
	for _, lot := range lots {
		minutes := lot.ClosedAt.Sub(lot.OpenedAt).Minutes()
		if minutes < 0 {
			minutes = 0
		}
		samples = append(samples, minutes)
	}
	sort.Float64s(samples)

	sum := 0.0
	for _, v := range samples {
		sum += v
	}
	mid := len(samples) / 2
	median := samples[mid]
	if len(samples)%2 == 0 {
		median = (samples[mid-1] + samples[mid]) / 2
	}

	return HoldingTime{
		AverageMinutes: roundFloat2(sum / float64(len(samples))),
		MedianMinutes:  roundFloat2(median),
		MinMinutes:     roundFloat2(samples[0]),
		MaxMinutes:     roundFloat2(samples[len(samples)-1]),
		HasData:        true,
	}
}

func round2(d decimal.Decimal) float64 {
	f, _ := d.Round(2).Float64()
	return f
}

func roundFloat2(f float64) float64 {
	return round2(decimal.NewFromFloat(f))
}
