package match

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"growdash/internal/models"
)

// ClosedLot is one matched quantity: an opening fill (or part of one) closed
// by a later opposite-side fill. Realized PnL is signed from the opener's
// perspective: long positions profit when close > open, shorts the reverse.
type ClosedLot struct {
	Symbol      string
	OptionType  string // "CE", "PE" or "" for equity/futures
	OpenedAt    time.Time
	ClosedAt    time.Time
	Quantity    int64
	OpenPrice   decimal.Decimal
	ClosePrice  decimal.Decimal
	RealizedPnL decimal.Decimal
}

// InvariantViolation is a fatal matcher defect (negative remaining quantity
// or a non-positive fill reaching the matcher). It aborts the affected
// computation rather than let wrong PnL escape.
type InvariantViolation struct {
	Symbol string
	Detail string
}

func (e *InvariantViolation) Error() string {
	return fmt.Sprintf("match invariant violated for %s: %s", e.Symbol, e.Detail)
}

// openLot is pending open quantity in a group's FIFO queue.
type openLot struct {
	side     string
	quantity int64
	price    decimal.Decimal
	openedAt time.Time
}

// groupKey identifies one matchable instrument. Symbol alone is not enough
// for derivatives: different strikes or expiries of the same underlying are
// separate positions.
type groupKey struct {
	symbol     string
	strike     string
	optionType string
	expiry     string
}

func keyFor(t *models.Trade) groupKey {
	key := groupKey{
		symbol:     t.Symbol,
		optionType: NormalizeOptionType(t),
	}
	if t.Strike != nil {
		key.strike = t.Strike.StringFixed(2)
	}
	if t.Expiry != nil {
		key.expiry = t.Expiry.Format("2006-01-02")
	}
	return key
}

// optionSuffixRe requires a strike digit before the CE/PE suffix so equity
// symbols that merely end in those letters (RELIANCE, HDFCLIFE) stay equities.
var optionSuffixRe = regexp.MustCompile(`\d\s*(CE|PE)$`)

// NormalizeOptionType resolves a trade's CE/PE classification, falling back
// to the symbol suffix when the column was absent. Empty means equity/future.
func NormalizeOptionType(t *models.Trade) string {
	if t.OptionType != nil {
		switch strings.ToUpper(*t.OptionType) {
		case models.OptionCall:
			return models.OptionCall
		case models.OptionPut:
			return models.OptionPut
		}
	}
	if m := optionSuffixRe.FindStringSubmatch(strings.ToUpper(t.Symbol)); m != nil {
		return m[1]
	}
	return ""
}

// Match converts trades, already sorted ascending by executed time with
// stable input order as tie-break, into closed lots. Matching runs
// independently per instrument group; leftover open quantity produces no lot.
func Match(trades []models.Trade) ([]ClosedLot, error) {
	groups := make(map[groupKey][]models.Trade)
	var order []groupKey
	for i := range trades {
		key := keyFor(&trades[i])
		if _, ok := groups[key]; !ok {
			order = append(order, key)
		}
		groups[key] = append(groups[key], trades[i])
	}

	var lots []ClosedLot
	for _, key := range order {
		groupLots, err := matchGroup(groups[key])
		if err != nil {
			return nil, err
		}
		lots = append(lots, groupLots...)
	}
	return lots, nil
}

// matchGroup runs strict FIFO matching for one instrument. The queue holds
// open quantity of a single direction at any time: a same-side fill extends
// it, an opposite-side fill consumes from the front, and any surplus after
// the queue empties flips the position.
func matchGroup(trades []models.Trade) ([]ClosedLot, error) {
	var queue []openLot
	var lots []ClosedLot

	for i := range trades {
		trade := &trades[i]
		if trade.Quantity <= 0 {
			return nil, &InvariantViolation{
				Symbol: trade.Symbol,
				Detail: fmt.Sprintf("non-positive quantity %d reached matcher", trade.Quantity),
			}
		}
		optionType := NormalizeOptionType(trade)

		remaining := trade.Quantity
		for remaining > 0 && len(queue) > 0 && queue[0].side != trade.Side {
			front := &queue[0]
			matched := remaining
			if front.quantity < matched {
				matched = front.quantity
			}

			pnl := trade.Price.Sub(front.price).Mul(decimal.NewFromInt(matched))
			if front.side == models.SideSell {
				pnl = pnl.Neg()
			}
			lots = append(lots, ClosedLot{
				Symbol:      trade.Symbol,
				OptionType:  optionType,
				OpenedAt:    front.openedAt,
				ClosedAt:    trade.TradedAt,
				Quantity:    matched,
				OpenPrice:   front.price,
				ClosePrice:  trade.Price,
				RealizedPnL: pnl,
			})

			front.quantity -= matched
			remaining -= matched
			if front.quantity < 0 || remaining < 0 {
				return nil, &InvariantViolation{
					Symbol: trade.Symbol,
					Detail: "remaining quantity went negative",
				}
			}
			if front.quantity == 0 {
				queue = queue[1:]
			}
		}

		// Opening fill, position add, or the reversal remainder after the
		// opposite-side queue drained.
		if remaining > 0 {
			queue = append(queue, openLot{
				side:     trade.Side,
				quantity: remaining,
				price:    trade.Price,
				openedAt: trade.TradedAt,
			})
		}
	}

	return lots, nil
}
