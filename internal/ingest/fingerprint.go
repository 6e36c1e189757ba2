package ingest

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"growdash/internal/models"
)

// fingerprintTimeLayout is a naive local timestamp, matching how tradebook
// exports carry execution times. Keeping the zone out makes re-uploads of the
// same file hash identically regardless of server timezone.
const fingerprintTimeLayout = "2006-01-02T15:04:05"

// Fingerprint derives the stable dedup identity of a trade from
// (order id, symbol, side, quantity, price, executed-at). Two trades with the
// same fingerprint are the same execution.
func Fingerprint(t *models.Trade) string {
	orderID := ""
	if t.OrderID != nil {
		orderID = *t.OrderID
	}
	basis := fmt.Sprintf("%s|%s|%s|%d|%s|%s",
		orderID,
		t.Symbol,
		t.Side,
		t.Quantity,
		t.Price.StringFixed(8),
		t.TradedAt.Format(fingerprintTimeLayout),
	)
	sum := sha256.Sum256([]byte(basis))
	return hex.EncodeToString(sum[:])
}
