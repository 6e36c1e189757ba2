package ingest

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"strings"
	"time"

	"growdash/internal/models"
)

// statementStopTokens end a statement section: totals, charges and
// disclaimer rows that follow the trade table.
var statementStopTokens = map[string]bool{
	"total":                       true,
	"summary":                     true,
	"charges":                     true,
	"disclaimer":                  true,
	"realisedtradestradelevel":    true,
	"realisedtradescontractlevel": true,
}

// Synthetic fill times for statement rows: statements carry dates, not
// execution times, so the buy leg is pinned to market open and the sell leg
// to late session.
var (
	statementOpenClock  = [2]int{9, 15}
	statementCloseClock = [2]int{15, 15}
)

// parseRealizedStatement parses realized-PnL statements, which interleave
// section headers and trade tables in one file. Each table row becomes a
// synthetic BUY/SELL pair so the matcher sees ordinary opposing fills.
func parseRealizedStatement(content []byte) (ParsedBook, error) {
	reader := csv.NewReader(bytes.NewReader(content))
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	rows, err := reader.ReadAll()
	if err != nil {
		return ParsedBook{}, err
	}

	book := ParsedBook{}
	rowIndex := 0

	for rowIndex < len(rows) {
		headerRow := rows[rowIndex]
		headerMap := make(map[string]int, len(headerRow))
		for idx, cell := range headerRow {
			if key := normalizeColumn(cell); key != "" {
				if _, ok := headerMap[key]; !ok {
					headerMap[key] = idx
				}
			}
		}

		symbolIdx, hasSymbol := headerMap["scripname"]
		quantityIdx, hasQuantity := headerMap["quantity"]
		buyPriceIdx, hasBuyPrice := headerMap["buyprice"]
		if !hasBuyPrice {
			buyPriceIdx, hasBuyPrice = headerMap["avgbuyprice"]
		}
		sellPriceIdx, hasSellPrice := headerMap["sellprice"]
		if !hasSellPrice {
			sellPriceIdx, hasSellPrice = headerMap["avgsellprice"]
		}
		if !hasSymbol || !hasQuantity || !hasBuyPrice || !hasSellPrice {
			rowIndex++
			continue
		}

		buyDateIdx, hasBuyDate := headerMap["buydate"]
		sellDateIdx, hasSellDate := headerMap["selldate"]
		sourceFormat := "contract_level"
		if hasBuyDate && hasSellDate {
			sourceFormat = "trade_level"
		}

		dataIndex := rowIndex + 1
		for dataIndex < len(rows) {
			dataRow := rows[dataIndex]
			if isBlankRecord(dataRow) {
				break
			}

			symbol := statementCell(dataRow, symbolIdx)
			token := normalizeColumn(symbol)
			if symbol == "" || token == "scripname" || token == "futures" || token == "options" {
				dataIndex++
				continue
			}
			if statementStopTokens[token] {
				break
			}

			book.Attempted++
			quantityNum, okQty, errQty := parseNumber(statementCell(dataRow, quantityIdx))
			buyPrice, okBuy, errBuy := parseNumber(statementCell(dataRow, buyPriceIdx))
			sellPrice, okSell, errSell := parseNumber(statementCell(dataRow, sellPriceIdx))
			if errQty != nil || errBuy != nil || errSell != nil || !okQty || !okBuy || !okSell {
				dataIndex++
				continue
			}
			quantity := quantityNum.Abs().IntPart()
			if quantity <= 0 {
				dataIndex++
				continue
			}
			// One statement row yields two candidate fills.
			book.Attempted++

			strike, optionType := extractOptionMeta(symbol)
			expiry := extractExpiry(symbol)
			var segment *string
			if optionType != nil {
				s := "OPTIONS"
				segment = &s
			}

			fallbackDate := time.Now().Truncate(24 * time.Hour)
			if expiry != nil {
				fallbackDate = *expiry
			}
			buyDate := fallbackDate
			if hasBuyDate {
				if ts, ok := parseDate(statementCell(dataRow, buyDateIdx)); ok {
					buyDate = ts
				}
			}
			sellDate := buyDate
			if hasSellDate {
				if ts, ok := parseDate(statementCell(dataRow, sellDateIdx)); ok {
					sellDate = ts
				}
			}

			buyAt := atClock(buyDate, statementOpenClock)
			sellAt := atClock(sellDate, statementCloseClock)
			if !sellAt.After(buyAt) {
				sellAt = buyAt.Add(time.Minute)
			}

			payload := statementPayload(headerRow, dataRow, sourceFormat)

			buy := models.Trade{
				Symbol:     symbol,
				Side:       models.SideBuy,
				Quantity:   quantity,
				Price:      buyPrice,
				TradedAt:   buyAt,
				Segment:    segment,
				Strike:     strike,
				OptionType: optionType,
				Expiry:     expiry,
				RawPayload: payload,
			}
			buy.TradeHash = Fingerprint(&buy)

			sell := models.Trade{
				Symbol:     symbol,
				Side:       models.SideSell,
				Quantity:   quantity,
				Price:      sellPrice,
				TradedAt:   sellAt,
				Segment:    segment,
				Strike:     strike,
				OptionType: optionType,
				Expiry:     expiry,
				RawPayload: payload,
			}
			sell.TradeHash = Fingerprint(&sell)

			book.Candidates = append(book.Candidates, buy, sell)
			dataIndex++
		}
		rowIndex = dataIndex
		if rowIndex < len(rows) {
			rowIndex++
		}
	}

	return book, nil
}

func statementCell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

func atClock(day time.Time, clock [2]int) time.Time {
	return time.Date(day.Year(), day.Month(), day.Day(), clock[0], clock[1], 0, 0, time.UTC)
}

func statementPayload(headerRow, dataRow []string, sourceFormat string) []byte {
	payload := make(map[string]string, len(headerRow)+1)
	for idx, cell := range headerRow {
		name := strings.TrimSpace(cell)
		if name == "" {
			continue
		}
		payload[name] = statementCell(dataRow, idx)
	}
	payload["source_format"] = sourceFormat
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil
	}
	return raw
}
