package search

import (
	"context"
	"fmt"
	"strings"

	"github.com/budgetbolt/backend/internal/metrics"
	"github.com/budgetbolt/backend/internal/model"
)

// Source returns every transaction of a user.
type Source func(ctx context.Context, uid string) ([]model.Transaction, error)

// Local searches transactions already held in memory. It is used when no
// external index is configured.
type Local struct {
	source Source
}

// NewLocal creates a searcher over src.
func NewLocal(src Source) *Local {
	return &Local{source: src}
}

// Search matches every query term against notes and category name,
// case-insensitively, then applies the filters. Results are newest first.
func (l *Local) Search(ctx context.Context, params Params) (*Response, error) {
	if params.UserID == "" {
		return nil, fmt.Errorf("local search: user id is required")
	}
	txs, err := l.source(ctx, params.UserID)
	if err != nil {
		return nil, fmt.Errorf("local search: %w", err)
	}

	terms := strings.Fields(strings.ToLower(params.Query))
	var matched []model.Transaction
	for _, tx := range metrics.SortByDateDesc(txs) {
		if matches(params, terms, tx) {
			matched = append(matched, tx)
		}
	}

	page, size := pageBounds(params)
	out := &Response{
		Results:    []model.Transaction{},
		TotalCount: len(matched),
		TotalPages: (len(matched) + size - 1) / size,
		Page:       page,
	}
	if start := page * size; start < len(matched) {
		out.Results = matched[start:min(start+size, len(matched))]
	}
	return out, nil
}

func matches(params Params, terms []string, tx model.Transaction) bool {
	if !params.Type.Matches(tx.Type) {
		return false
	}
	if params.Category != "" && !strings.EqualFold(params.Category, tx.Category) {
		return false
	}
	if params.AmountMin > 0 && tx.Amount < params.AmountMin {
		return false
	}
	if params.AmountMax > 0 && tx.Amount > params.AmountMax {
		return false
	}

	if params.StartDate != nil || params.EndDate != nil {
		when, err := model.ParseDate(tx.Date)
		if err != nil {
			return false
		}
		if params.StartDate != nil && when.Before(*params.StartDate) {
			return false
		}
		if params.EndDate != nil && when.After(*params.EndDate) {
			return false
		}
	}

	haystack := strings.ToLower(tx.Notes + " " + tx.Category)
	for _, term := range terms {
		if !strings.Contains(haystack, term) {
			return false
		}
	}
	return true
}
