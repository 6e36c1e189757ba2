package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// Trade side values as stored in the side column.
const (
	SideBuy  = "BUY"
	SideSell = "SELL"
)

// Option type values. Absent (nil) means equity/future.
const (
	OptionCall = "CE"
	OptionPut  = "PE"
)

// Trade is one executed fill from an uploaded tradebook. Rows are immutable:
// they are inserted once and never updated, a re-upload of the same export is
// rejected by the unique trade_hash index.
type Trade struct {
	ID uint64 `gorm:"primaryKey;autoIncrement" json:"id"`

	// TradeHash is the dedup fingerprint over (order id, symbol, side,
	// quantity, price, executed-at).
	TradeHash string  `gorm:"type:varchar(64);not null;uniqueIndex" json:"-"`
	OrderID   *string `gorm:"type:varchar(64);index" json:"order_id"`

	Symbol   string  `gorm:"type:varchar(128);not null;index" json:"symbol"`
	Exchange *string `gorm:"type:varchar(32)" json:"exchange"`
	Segment  *string `gorm:"type:varchar(32)" json:"segment"`
	Side     string  `gorm:"type:varchar(8);not null;index" json:"side"`

	Quantity int64           `gorm:"not null" json:"quantity"`
	Price    decimal.Decimal `gorm:"type:numeric(20,8);not null" json:"price"`
	TradedAt time.Time       `gorm:"type:timestamp;not null;index" json:"traded_at"`

	Strike     *decimal.Decimal `gorm:"type:numeric(20,8);index" json:"strike"`
	OptionType *string          `gorm:"type:varchar(8);index" json:"option_type"`
	Expiry     *time.Time       `gorm:"type:date;index" json:"expiry"`

	// RawPayload keeps the original row for audit. No computation reads it.
	RawPayload datatypes.JSON `gorm:"type:jsonb" json:"-"`

	CreatedAt time.Time `gorm:"type:timestamp;autoCreateTime" json:"-"`
}

func (Trade) TableName() string {
	return "trades"
}

// IsOption reports whether the trade carries a CE/PE classification.
func (t *Trade) IsOption() bool {
	return t.OptionType != nil && (*t.OptionType == OptionCall || *t.OptionType == OptionPut)
}
