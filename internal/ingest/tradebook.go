package ingest

import (
	"bytes"
	"encoding/csv"
	"errors"
	"strings"

	"growdash/internal/models"
)

// ParsedBook is the outcome of parsing one uploaded file. Candidates holds
// every trade that normalized cleanly, Attempted counts candidate records
// including the ones that failed (so Attempted - len(Candidates) rows were
// skipped at parse time).
type ParsedBook struct {
	Candidates []models.Trade
	Attempted  int
}

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// ParseTradebook parses a brokerage CSV export. It first tries the standard
// tradebook layout (one fill per row); if the header does not carry the
// required columns it falls back to the realized-PnL statement layout some
// brokers export instead.
func ParseTradebook(data []byte) (ParsedBook, error) {
	content := bytes.TrimPrefix(data, utf8BOM)

	book, stdErr := parseStandardTradebook(content)
	if stdErr == nil && len(book.Candidates) > 0 {
		return book, nil
	}

	statement, stmtErr := parseRealizedStatement(content)
	if stmtErr == nil && len(statement.Candidates) > 0 {
		return statement, nil
	}

	if stdErr != nil {
		return ParsedBook{}, stdErr
	}
	return book, nil
}

func parseStandardTradebook(content []byte) (ParsedBook, error) {
	reader := csv.NewReader(bytes.NewReader(content))
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	records, err := reader.ReadAll()
	if err != nil {
		return ParsedBook{}, err
	}
	if len(records) == 0 {
		return ParsedBook{}, nil
	}

	header := records[0]
	colmap := mapColumns(header)
	if missing := missingRequired(colmap); len(missing) > 0 {
		return ParsedBook{}, parseErr(ReasonMissingField, strings.Join(missing, ","), "required columns absent")
	}

	book := ParsedBook{}
	for _, record := range records[1:] {
		if isBlankRecord(record) {
			continue
		}
		book.Attempted++
		trade, err := NormalizeRow(colmap, header, record)
		if err != nil {
			var pe *ParseError
			if errors.As(err, &pe) {
				continue
			}
			return ParsedBook{}, err
		}
		book.Candidates = append(book.Candidates, trade)
	}
	return book, nil
}

func isBlankRecord(record []string) bool {
	for _, cell := range record {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
