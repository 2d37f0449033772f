package statement

import (
	"strconv"
	"strings"
)

// MissingValue is emitted for a date or description the model never supplied.
// A literal "N/A" in the source text is indistinguishable from the sentinel;
// consumers of the JSON contract already expect this.
const MissingValue = "N/A"

// Normalize converts a raw extract into a clean Statement. It is a pure
// function with no failure path: malformed rows are dropped, not rejected.
//
// Rows are walked in document order with a carried-forward date. A row that
// names a date updates it; a row without one inherits the last date seen, or
// MissingValue if none has appeared yet. Rows where neither debit nor credit
// parses to a number are non-transaction lines (running totals, headers
// misread as rows) and are skipped. When both sides parse and are non-zero,
// debit wins.
func Normalize(raw *RawStatementExtract) *Statement {
	if raw == nil {
		return &Statement{Transactions: []Transaction{}}
	}
	out := &Statement{
		AccountHolder:   raw.AccountHolder,
		StatementPeriod: raw.StatementPeriod,
		Transactions:    make([]Transaction, 0, len(raw.Transactions)),
	}

	currentDate := ""
	for _, row := range raw.Transactions {
		if row.Date != "" {
			currentDate = row.Date
		}

		debit := cleanValue(row.Debit)
		credit := cleanValue(row.Credit)
		balance := cleanValue(row.Balance)

		if debit == nil && credit == nil {
			continue
		}

		txType := Credit
		var amount float64
		if debit != nil && *debit != 0 {
			txType = Debit
			amount = *debit
		} else if credit != nil {
			amount = *credit
		}
		if amount < 0 {
			amount = -amount
		}

		date := currentDate
		if date == "" {
			date = MissingValue
		}
		desc := strings.TrimSpace(row.Description)
		if desc == "" {
			desc = MissingValue
		}

		out.Transactions = append(out.Transactions, Transaction{
			Date:            date,
			Description:     desc,
			Amount:          amount,
			TransactionType: txType,
			Balance:         balance,
		})
	}

	return out
}

// cleanValue coerces a raw numeric string to a float. Thousands separators
// are stripped and a colon used as a decimal separator becomes a period.
// Absent or unparsable values return nil, never zero.
func cleanValue(s string) *float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	s = strings.ReplaceAll(s, ",", "")
	s = strings.ReplaceAll(s, ":", ".")
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	return &v
}
