package analytics

// Snapshot is the full analytics payload, recomputed on demand over the
// current trade set and never persisted. All monetary values are rounded to
// two decimals for presentation.
type Snapshot struct {
	Summary          Summary           `json:"summary"`
	DailyPnL         []DailyPnLPoint   `json:"daily_pnl"`
	MonthlyPnL       []MonthlyPnLPoint `json:"monthly_pnl"`
	CEvsPE           []OptionTypePnL   `json:"ce_vs_pe"`
	MostTradedStrike []StrikeActivity  `json:"most_traded_strike"`
	HoldingTime      HoldingTime       `json:"holding_time"`
	TradeStats       TradeStats        `json:"trade_stats"`
}

type Summary struct {
	TotalProfitLoss float64 `json:"total_profit_loss"`
	WinRate         float64 `json:"win_rate"`
	AverageProfit   float64 `json:"average_profit"`
	AverageLoss     float64 `json:"average_loss"`
	// RiskRewardRatio is null when there are no losing lots: a ratio over a
	// zero average loss is undefined, not infinite.
	RiskRewardRatio *float64 `json:"risk_reward_ratio"`
	MaxDrawdown     float64  `json:"max_drawdown"`
}

type DailyPnLPoint struct {
	Date string  `json:"date"`
	PnL  float64 `json:"pnl"`
}

type MonthlyPnLPoint struct {
	Month string  `json:"month"`
	PnL   float64 `json:"pnl"`
}

type OptionTypePnL struct {
	OptionType string  `json:"option_type"`
	PnL        float64 `json:"pnl"`
}

type StrikeActivity struct {
	Strike   string `json:"strike"`
	Quantity int64  `json:"quantity"`
}

type HoldingTime struct {
	AverageMinutes float64 `json:"average_minutes"`
	MedianMinutes  float64 `json:"median_minutes"`
	MinMinutes     float64 `json:"min_minutes"`
	MaxMinutes     float64 `json:"max_minutes"`
	// HasData distinguishes "every lot closed instantly" from "no closed
	// lots at all", which the zero values alone cannot.
	HasData bool `json:"has_data"`
}

type TradeStats struct {
	TotalTrades int `json:"total_trades"`
	ClosedLots  int `json:"closed_lots"`
}
