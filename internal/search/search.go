// Package search finds a user's transactions by free text and filters.
package search

import (
	"context"
	"math"
	"strings"
	"time"

	"github.com/budgetbolt/backend/internal/model"
)

const (
	defaultPageSize = 25
	maxPageSize     = 100
)

// Params defines the input for a search.
type Params struct {
	Query    string
	UserID   string
	Category string
	Type     model.TypeFilter
	// Amount range, ignored when zero
	AmountMin float64
	AmountMax float64
	StartDate *time.Time
	EndDate   *time.Time
	// Pagination (offset-based, zero-indexed)
	Page     int
	PageSize int
}

// Response holds one page of results.
type Response struct {
	Results    []model.Transaction
	TotalCount int
	TotalPages int
	Page       int
}

// Searcher runs a search scoped to Params.UserID.
type Searcher interface {
	Search(ctx context.Context, params Params) (*Response, error)
}

// Indexer keeps an external index in step with stored transactions.
type Indexer interface {
	Index(ctx context.Context, uid string, tx model.Transaction) error
	Remove(ctx context.Context, id string) error
}

func pageBounds(params Params) (page, size int) {
	size = params.PageSize
	if size <= 0 {
		size = defaultPageSize
	}
	if size > maxPageSize {
		size = maxPageSize
	}
	page = max(params.Page, 0)
	return page, size
}

// ToRecord converts a transaction into its index record. The user id is
// stored for filtering only.
func ToRecord(uid string, tx model.Transaction) map[string]any {
	record := map[string]any{
		"objectID":    tx.ID,
		"userId":      uid,
		"notes":       tx.Notes,
		"category":    tx.Category,
		"categoryId":  tx.CategoryID,
		"type":        string(tx.Type),
		"amount":      tx.Amount,
		"amountCents": int64(math.Round(tx.Amount * 100)),
		"currency":    string(tx.Currency),
		"date":        tx.Date,
	}
	if t, err := model.ParseDate(tx.Date); err == nil {
		record["dateUnix"] = t.Unix()
	}
	return record
}

// fromRecord converts an index hit back into a transaction.
func fromRecord(props map[string]any) (model.Transaction, bool) {
	var tx model.Transaction

	tx.ID, _ = props["objectID"].(string)
	if tx.ID == "" {
		return tx, false
	}
	tx.Notes, _ = props["notes"].(string)
	tx.Category, _ = props["category"].(string)
	tx.CategoryID, _ = props["categoryId"].(string)
	tx.Date, _ = props["date"].(string)

	if v, ok := props["type"].(string); ok {
		tx.Type = model.TransactionType(strings.ToLower(v))
	}
	if v, ok := props["currency"].(string); ok {
		tx.Currency = model.Currency(v)
	}

	// prefer cents, which survive float formatting in the index
	if v, ok := props["amountCents"].(float64); ok && v != 0 {
		tx.Amount = v / 100
	} else if v, ok := props["amount"].(float64); ok {
		tx.Amount = v
	}

	if tx.Date == "" {
		if v, ok := props["dateUnix"].(float64); ok && v > 0 {
			tx.Date = model.Timestamp(time.Unix(int64(v), 0))
		}
	}

	return tx, true
}
