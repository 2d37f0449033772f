package statement

// TransactionType says which side of the ledger a transaction falls on.
type TransactionType string

const (
	// Debit is money out of the account.
	Debit TransactionType = "Debit"
	// Credit is money into the account.
	Credit TransactionType = "Credit"
)

// RawTransactionRow is one unvalidated transaction candidate as the model
// extracted it. Every field is optional because the model may omit any of
// them, and the numeric fields stay strings because the source document's
// formatting (thousands separators, colons as decimal points, currency
// symbols) has not been cleaned yet.
type RawTransactionRow struct {
	Date        string `json:"date,omitempty"`
	Description string `json:"description,omitempty"`
	Debit       string `json:"debit,omitempty"`
	Credit      string `json:"credit,omitempty"`
	Balance     string `json:"balance,omitempty"`
}

// RawStatementExtract is the model's raw output for one document. Row order
// is document order; normalization relies on it for date carry-forward.
type RawStatementExtract struct {
	AccountHolder   string              `json:"account_holder,omitempty"`
	StatementPeriod string              `json:"statement_period,omitempty"`
	Transactions    []RawTransactionRow `json:"transactions"`
}

// Transaction is one normalized ledger entry. Amount is the absolute
// magnitude of whichever of debit/credit was present on the raw row.
type Transaction struct {
	Date            string          `json:"date"`
	Description     string          `json:"description"`
	Amount          float64         `json:"amount"`
	TransactionType TransactionType `json:"transaction_type"`
	Balance         *float64        `json:"balance"`
}

// Statement is the terminal result of one extraction: a clean, ordered
// ledger plus the optional header fields. It is built once per request and
// never mutated afterwards.
type Statement struct {
	AccountHolder   string        `json:"account_holder,omitempty"`
	StatementPeriod string        `json:"statement_period,omitempty"`
	Transactions    []Transaction `json:"transactions"`
}
