package advisor

import (
	"fmt"
	"strings"

	"growdash/internal/analytics"
)

const (
	maxListedItems = 5

	minTradesForConfidence = 20
	winRateFloorPct        = 45.0
)

// Guidance is the rule battery's output; it is also handed to the
// generative backend as grounding so both modes argue from the same numbers.
type Guidance struct {
	Answer      string   `json:"answer"`
	ActionItems []string `json:"action_items"`
	RiskFlags   []string `json:"risk_flags"`
}

// buildRuleGuidance applies fixed threshold checks against the snapshot and
// composes a templated answer slanted toward whatever the question asks
// about. Zero external dependencies: this path always works.
func buildRuleGuidance(question string, snapshot analytics.Snapshot, drawdownFraction float64) Guidance {
	summary := snapshot.Summary

	var actions, flags []string

	if snapshot.TradeStats.TotalTrades < minTradesForConfidence {
		actions = append(actions, "Collect at least 20-30 closed trades before changing strategy aggressively.")
	}
	if summary.WinRate < winRateFloorPct && snapshot.TradeStats.ClosedLots > 0 {
		actions = append(actions, "Tighten your entry filter; avoid low-conviction setups to improve hit rate.")
		flags = append(flags, fmt.Sprintf("Win rate below %.0f%% indicates selection quality risk.", winRateFloorPct))
	}
	if summary.AverageLoss > summary.AverageProfit {
		actions = append(actions, "Use a stricter stop-loss and partial profit booking to improve average R-multiple.")
		flags = append(flags, "Average loss is larger than average profit.")
	}
	if summary.RiskRewardRatio != nil && *summary.RiskRewardRatio < 1.0 {
		actions = append(actions, "Target trades with at least 1:1.2 risk-reward profile before execution.")
		flags = append(flags, "Risk-reward ratio is below 1.")
	}
	if drawdownFraction <= 0 {
		drawdownFraction = 0.6
	}
	pnlScale := summary.TotalProfitLoss
	if pnlScale < 0 {
		pnlScale = -pnlScale
	}
	if pnlScale < 1 {
		pnlScale = 1
	}
	if summary.MaxDrawdown > pnlScale*drawdownFraction {
		actions = append(actions, "Reduce position size by 20-30% until equity curve stabilizes.")
		flags = append(flags, "Drawdown is too high relative to realized PnL.")
	}
	if len(actions) == 0 {
		actions = append(actions, "Keep current process but review setup quality weekly with a trade journal.")
	}

	answer := fmt.Sprintf(
		"Based on your uploaded trades: total PnL is %.2f, win rate is %.2f%%, max drawdown is %.2f, "+
			"and average holding time is %.2f minutes. %s %s For your question '%s', focus first on execution "+
			"consistency, risk-per-trade limits, and eliminating low edge entries.",
		summary.TotalProfitLoss,
		summary.WinRate,
		summary.MaxDrawdown,
		snapshot.HoldingTime.AverageMinutes,
		optionBiasText(snapshot.CEvsPE),
		focusText(question, snapshot),
	)

	return Guidance{
		Answer:      strings.Join(strings.Fields(answer), " "),
		ActionItems: capItems(actions),
		RiskFlags:   capItems(flags),
	}
}

func optionBiasText(split []analytics.OptionTypePnL) string {
	if len(split) == 0 {
		return "CE/PE split is not yet available."
	}
	leader := split[0]
	for _, point := range split[1:] {
		if point.PnL > leader.PnL {
			leader = point
		}
	}
	return fmt.Sprintf("Best side currently is %s with realized PnL %.2f.", leader.OptionType, leader.PnL)
}

// focusText picks one extra sentence keyed off loose containment of the
// question's terms, so the answer visibly engages with what was asked.
func focusText(question string, snapshot analytics.Snapshot) string {
	q := strings.ToLower(question)
	switch {
	case strings.Contains(q, "drawdown"):
		return fmt.Sprintf("On drawdown specifically: the deepest equity decline so far is %.2f.", snapshot.Summary.MaxDrawdown)
	case strings.Contains(q, "win rate") || strings.Contains(q, "winrate"):
		return fmt.Sprintf("On win rate specifically: %d of %d closed lots were profitable.",
			winningLots(snapshot), snapshot.TradeStats.ClosedLots)
	case hasToken(q, "ce") || hasToken(q, "pe") || strings.Contains(q, "call") || strings.Contains(q, "put"):
		return "The CE/PE split above is the place to look for option-side bias."
	case strings.Contains(q, "holding") || strings.Contains(q, "time"):
		return fmt.Sprintf("On holding time specifically: the median hold is %.2f minutes.", snapshot.HoldingTime.MedianMinutes)
	default:
		return ""
	}
}

// hasToken matches whole words only; "ce" inside "process" is not a CE
// question.
func hasToken(question, token string) bool {
	for _, field := range strings.Fields(question) {
		if strings.Trim(field, ".,!?'\"") == token {
			return true
		}
	}
	return false
}

func winningLots(snapshot analytics.Snapshot) int {
	// WinRate is a percentage of closed lots; reverse it for a count.
	return int(snapshot.Summary.WinRate*float64(snapshot.TradeStats.ClosedLots)/100.0 + 0.5)
}

func capItems(items []string) []string {
	if items == nil {
		return []string{}
	}
	if len(items) > maxListedItems {
		return items[:maxListedItems]
	}
	return items
}
