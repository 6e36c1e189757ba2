package ingest

import (
	"encoding/json"
	"regexp"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"growdash/internal/models"
)

// columnAliases maps each canonical field to the header spellings brokers use
// for it. Matching is done on headers normalized by normalizeColumn, so case,
// spaces and punctuation never matter.
var columnAliases = map[string][]string{
	"order_id":    {"orderid", "order id", "orderno", "order number", "exchange order id"},
	"symbol":      {"tradingsymbol", "symbol", "instrument", "scrip", "security"},
	"exchange":    {"exchange"},
	"segment":     {"segment", "product", "product type"},
	"side":        {"side", "trade type", "transaction type", "type", "action"},
	"quantity":    {"quantity", "qty", "filled quantity", "traded qty"},
	"price":       {"price", "average price", "trade price", "executed price"},
	"datetime":    {"datetime", "trade time", "order executed time", "order execution time", "timestamp"},
	"date":        {"date", "trade date"},
	"time":        {"time"},
	"strike":      {"strike", "strike price"},
	"option_type": {"option type", "optiontype", "type cepe"},
	"expiry":      {"expiry", "expiry date"},
}

var requiredColumns = []string{"symbol", "side", "quantity", "price"}

var (
	nonAlnumRe       = regexp.MustCompile(`[^a-z0-9]+`)
	compactOptionRe  = regexp.MustCompile(`(\d+(?:\.\d+)?)(CE|PE)\b`)
	spelledOptionRe  = regexp.MustCompile(`(\d+(?:\.\d+)?)\s*(CALL|PUT)\b`)
	symbolExpiryRe   = regexp.MustCompile(`\b(\d{1,2}) ([A-Z]{3}) (\d{2,4})\b`)
	whitespaceRe     = regexp.MustCompile(`\s+`)
	timestampLayouts = []string{
		"2006-01-02 15:04:05",
		"2006-01-02T15:04:05",
		time.RFC3339,
		"2006-01-02 15:04",
		"02-01-2006 15:04:05",
		"02/01/2006 15:04:05",
		"2006-01-02",
		"02-01-2006",
		"02/01/2006",
	}
	dateLayouts = []string{
		"2006-01-02",
		"02-01-2006",
		"02/01/2006",
		"2 Jan 2006",
		"02 Jan 2006",
		"2-Jan-2006",
	}
)

func normalizeColumn(name string) string {
	return nonAlnumRe.ReplaceAllString(strings.ToLower(strings.TrimSpace(name)), "")
}

// mapColumns resolves the canonical field -> column index mapping for one
// header row. Unknown headers are ignored, the first matching alias wins.
func mapColumns(header []string) map[string]int {
	normalized := make(map[string]int, len(header))
	for idx, col := range header {
		key := normalizeColumn(col)
		if key == "" {
			continue
		}
		if _, ok := normalized[key]; !ok {
			normalized[key] = idx
		}
	}

	mapped := make(map[string]int)
	for canonical, aliases := range columnAliases {
		for _, alias := range aliases {
			if idx, ok := normalized[normalizeColumn(alias)]; ok {
				mapped[canonical] = idx
				break
			}
		}
	}
	return mapped
}

func missingRequired(colmap map[string]int) []string {
	var missing []string
	for _, name := range requiredColumns {
		if _, ok := colmap[name]; !ok {
			missing = append(missing, name)
		}
	}
	return missing
}

func cell(record []string, colmap map[string]int, field string) string {
	idx, ok := colmap[field]
	if !ok || idx >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[idx])
}

// parseNumber accepts plain decimals with optional thousands separators.
// Empty input returns ok=false without an error so optional fields stay unset.
func parseNumber(raw string) (decimal.Decimal, bool, error) {
	text := strings.ReplaceAll(strings.TrimSpace(raw), ",", "")
	if text == "" {
		return decimal.Zero, false, nil
	}
	d, err := decimal.NewFromString(text)
	if err != nil {
		return decimal.Zero, false, err
	}
	return d, true, nil
}

func parseSide(raw string) (string, error) {
	side := strings.ToUpper(strings.TrimSpace(raw))
	switch {
	case side == "":
		return "", parseErr(ReasonMissingField, "side", "")
	case strings.HasPrefix(side, "B"):
		return models.SideBuy, nil
	case strings.HasPrefix(side, "S"):
		return models.SideSell, nil
	default:
		return "", parseErr(ReasonInvalidSide, "side", raw)
	}
}

func parseTimestamp(raw string) (time.Time, bool) {
	text := strings.TrimSpace(raw)
	if text == "" {
		return time.Time{}, false
	}
	for _, layout := range timestampLayouts {
		if ts, err := time.Parse(layout, text); err == nil {
			return ts, true
		}
	}
	return time.Time{}, false
}

func parseDate(raw string) (time.Time, bool) {
	text := strings.TrimSpace(raw)
	if text == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if ts, err := time.Parse(layout, text); err == nil {
			return ts, true
		}
	}
	return time.Time{}, false
}

// extractOptionMeta infers strike and option type from symbols like
// "NIFTY 23 MAY 24 22500CE" or "BANKNIFTY 48000 CALL". Returns nils for
// equity symbols.
func extractOptionMeta(symbol string) (*decimal.Decimal, *string) {
	if symbol == "" {
		return nil, nil
	}
	upper := strings.ToUpper(symbol)
	compact := whitespaceRe.ReplaceAllString(upper, "")

	if m := compactOptionRe.FindStringSubmatch(compact); m != nil {
		if strike, err := decimal.NewFromString(m[1]); err == nil {
			optionType := m[2]
			return &strike, &optionType
		}
	}
	if m := spelledOptionRe.FindStringSubmatch(upper); m != nil {
		if strike, err := decimal.NewFromString(m[1]); err == nil {
			optionType := models.OptionCall
			if m[2] == "PUT" {
				optionType = models.OptionPut
			}
			return &strike, &optionType
		}
	}
	return nil, nil
}

// extractExpiry pulls a "23 MAY 24" style expiry token out of the symbol.
func extractExpiry(symbol string) *time.Time {
	if symbol == "" {
		return nil
	}
	m := symbolExpiryRe.FindStringSubmatch(strings.ToUpper(symbol))
	if m == nil {
		return nil
	}
	year := m[3]
	if len(year) == 2 {
		year = "20" + year
	}
	month := m[2][:1] + strings.ToLower(m[2][1:])
	text := m[1] + " " + month + " " + year
	if ts, ok := parseDate(text); ok {
		return &ts
	}
	return nil
}

// NormalizeRow converts one tradebook record into a canonical Trade. It is
// purely functional: nothing outside the record and header mapping is read.
func NormalizeRow(colmap map[string]int, header, record []string) (models.Trade, error) {
	symbol := cell(record, colmap, "symbol")
	if symbol == "" {
		return models.Trade{}, parseErr(ReasonMissingField, "symbol", "")
	}

	side, err := parseSide(cell(record, colmap, "side"))
	if err != nil {
		return models.Trade{}, err
	}

	quantityRaw := cell(record, colmap, "quantity")
	quantityNum, ok, numErr := parseNumber(quantityRaw)
	if numErr != nil || !ok {
		return models.Trade{}, parseErr(ReasonInvalidNumber, "quantity", quantityRaw)
	}
	quantity := quantityNum.Abs().IntPart()
	if quantity <= 0 {
		return models.Trade{}, parseErr(ReasonInvalidNumber, "quantity", quantityRaw)
	}

	priceRaw := cell(record, colmap, "price")
	price, ok, numErr := parseNumber(priceRaw)
	if numErr != nil || !ok || price.IsNegative() {
		return models.Trade{}, parseErr(ReasonInvalidNumber, "price", priceRaw)
	}

	tradedAt, ok := parseTimestamp(cell(record, colmap, "datetime"))
	if !ok {
		dateText := cell(record, colmap, "date")
		timeText := cell(record, colmap, "time")
		if dateText != "" && timeText != "" {
			tradedAt, ok = parseTimestamp(dateText + " " + timeText)
		}
		if !ok {
			tradedAt, ok = parseDate(dateText)
		}
	}
	if !ok {
		return models.Trade{}, parseErr(ReasonInvalidDate, "traded_at", "no parsable date/time columns")
	}

	trade := models.Trade{
		Symbol:   symbol,
		Side:     side,
		Quantity: quantity,
		Price:    price,
		TradedAt: tradedAt,
	}
	if v := cell(record, colmap, "order_id"); v != "" {
		trade.OrderID = &v
	}
	if v := cell(record, colmap, "exchange"); v != "" {
		trade.Exchange = &v
	}
	if v := cell(record, colmap, "segment"); v != "" {
		trade.Segment = &v
	}

	// Option metadata: explicit columns win over symbol inference, and
	// nothing is fabricated for equity rows.
	strike, optionType := extractOptionMeta(symbol)
	if raw := cell(record, colmap, "strike"); raw != "" {
		if d, ok, err := parseNumber(raw); err == nil && ok {
			strike = &d
		}
	}
	if raw := strings.ToUpper(cell(record, colmap, "option_type")); raw == models.OptionCall || raw == models.OptionPut {
		optionType = &raw
	}
	expiry := extractExpiry(symbol)
	if raw := cell(record, colmap, "expiry"); raw != "" {
		if ts, ok := parseDate(raw); ok {
			expiry = &ts
		}
	}
	trade.Strike = strike
	trade.OptionType = optionType
	trade.Expiry = expiry

	trade.RawPayload = rawPayload(header, record)
	trade.TradeHash = Fingerprint(&trade)
	return trade, nil
}

func rawPayload(header, record []string) []byte {
	payload := make(map[string]string, len(header))
	for idx, col := range header {
		name := strings.TrimSpace(col)
		if name == "" {
			continue
		}
		if idx < len(record) {
			payload[name] = strings.TrimSpace(record[idx])
		} else {
			payload[name] = ""
		}
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil
	}
	return raw
}
