package model

// TransactionType is the sign of a transaction. Amounts are always stored positive.
type TransactionType string

const (
	Income  TransactionType = "income"
	Expense TransactionType = "expense"
)

func (t TransactionType) Valid() bool {
	return t == Income || t == Expense
}

// UncategorizedName is denormalised onto a transaction whose categoryId matches no category.
const UncategorizedName = "Uncategorized"

// Transaction is one income or expense entry at users/{uid}/transactions/{id}.
type Transaction struct {
	ID         string          `json:"id"`
	Amount     float64         `json:"amount"`
	Type       TransactionType `json:"type"`
	Category   string          `json:"category"`
	CategoryID string          `json:"categoryId"`
	Date       string          `json:"date"`
	Notes      string          `json:"notes,omitempty"`
	Currency   Currency        `json:"currency"`
	CreatedAt  string          `json:"createdAt,omitempty"`
	UpdatedAt  string          `json:"updatedAt,omitempty"`
}

// TransactionInput is what a caller supplies; category name and currency are
// filled in by the service.
type TransactionInput struct {
	Amount     float64         `json:"amount"`
	Type       TransactionType `json:"type"`
	CategoryID string          `json:"categoryId"`
	Date       string          `json:"date"`
	Notes      string          `json:"notes,omitempty"`
}

func (in TransactionInput) Validate() error {
	v := validator{record: "transaction"}
	v.check(in.Amount > 0, "amount", "must be greater than zero")
	v.check(in.Type.Valid(), "type", "must be income or expense")
	v.check(in.CategoryID != "", "categoryId", "is required")
	_, err := ParseDate(in.Date)
	v.check(err == nil, "date", "must be an ISO-8601 date")
	return v.err()
}

// TypeFilter narrows a transaction listing.
type TypeFilter string

const (
	FilterAll     TypeFilter = "all"
	FilterIncome  TypeFilter = "income"
	FilterExpense TypeFilter = "expense"
)

// Matches reports whether t passes the filter. The zero filter matches everything.
func (f TypeFilter) Matches(t TransactionType) bool {
	switch f {
	case FilterIncome:
		return t == Income
	case FilterExpense:
		return t == Expense
	default:
		return true
	}
}
