package service

import (
	"context"
	"fmt"
	"time"

	"connectrpc.com/connect"
	"github.com/budgetbolt/backend/internal/api"
	"github.com/budgetbolt/backend/internal/auth"
	"github.com/budgetbolt/backend/internal/dispatch"
	"github.com/budgetbolt/backend/internal/metrics"
	"github.com/budgetbolt/backend/internal/model"
	"github.com/budgetbolt/backend/internal/search"
	"github.com/budgetbolt/backend/internal/session"
	"github.com/budgetbolt/backend/internal/store"
)

const indexTimeout = 10 * time.Second

// ListTransactions lists the caller's transactions newest first
func (s *BudgetService) ListTransactions(ctx context.Context, req *connect.Request[api.ListTransactionsRequest]) (*connect.Response[api.ListTransactionsResponse], error) {
	_, sess, err := s.userSession(ctx)
	if err != nil {
		return nil, err
	}

	txs := metrics.FilterByType(sess.Transactions.Items(), req.Msg.Type)
	if limit := int(auth.NormalizePageSize(req.Msg.Limit)); len(txs) > limit {
		txs = txs[:limit]
	}

	return connect.NewResponse(&api.ListTransactionsResponse{
		Transactions: txs,
		Loaded:       sess.Transactions.Loaded(),
	}), nil
}

// CreateTransaction records a transaction and returns before the store confirms it
func (s *BudgetService) CreateTransaction(ctx context.Context, req *connect.Request[api.CreateTransactionRequest]) (*connect.Response[api.CreateTransactionResponse], error) {
	claims, sess, err := s.userSession(ctx)
	if err != nil {
		return nil, err
	}
	in := req.Msg.Transaction
	if err := in.Validate(); err != nil {
		return nil, toConnectError(err)
	}

	tx := denormalize(sess, in)
	tx.CreatedAt = s.timestamp()
	tx.UpdatedAt = tx.CreatedAt

	data, err := store.ToData(tx)
	if err != nil {
		return nil, toConnectError(err)
	}
	p := s.writes.Create(ctx, claims.UID, store.UserCollection(claims.UID, store.Transactions), data)
	tx.ID = p.ID
	sess.Transactions.Upsert(tx)
	s.indexWhenSettled(claims.UID, p, tx)

	return connect.NewResponse(&api.CreateTransactionResponse{Transaction: tx}), nil
}

// UpdateTransaction replaces a transaction, re-reading its category name and currency
func (s *BudgetService) UpdateTransaction(ctx context.Context, req *connect.Request[api.UpdateTransactionRequest]) (*connect.Response[api.UpdateTransactionResponse], error) {
	claims, sess, err := s.userSession(ctx)
	if err != nil {
		return nil, err
	}
	if err := requireID(req.Msg.ID); err != nil {
		return nil, err
	}
	in := req.Msg.Transaction
	if err := in.Validate(); err != nil {
		return nil, toConnectError(err)
	}

	existing, ok := sess.Transactions.Get(req.Msg.ID)
	if !ok {
		return nil, notFound("transaction", req.Msg.ID)
	}

	tx := denormalize(sess, in)
	tx.ID = existing.ID
	tx.CreatedAt = existing.CreatedAt
	tx.UpdatedAt = s.timestamp()

	data, err := store.ToData(tx)
	if err != nil {
		return nil, toConnectError(err)
	}
	p := s.writes.Replace(ctx, claims.UID, store.DocPath(store.UserCollection(claims.UID, store.Transactions), tx.ID), data)
	sess.Transactions.Upsert(tx)
	s.indexWhenSettled(claims.UID, p, tx)

	return connect.NewResponse(&api.UpdateTransactionResponse{Transaction: tx}), nil
}

// DeleteTransaction removes a transaction
func (s *BudgetService) DeleteTransaction(ctx context.Context, req *connect.Request[api.DeleteTransactionRequest]) (*connect.Response[api.DeleteTransactionResponse], error) {
	claims, sess, err := s.userSession(ctx)
	if err != nil {
		return nil, err
	}
	if err := requireID(req.Msg.ID); err != nil {
		return nil, err
	}
	if !sess.Transactions.Remove(req.Msg.ID) {
		return nil, notFound("transaction", req.Msg.ID)
	}

	p := s.writes.Delete(ctx, claims.UID, store.DocPath(store.UserCollection(claims.UID, store.Transactions), req.Msg.ID))
	if s.indexer != nil {
		id := req.Msg.ID
		s.whenSettled(claims.UID, p, func(ctx context.Context) error {
			return s.indexer.Remove(ctx, id)
		})
	}

	return connect.NewResponse(&api.DeleteTransactionResponse{}), nil
}

// SearchTransactions searches notes and category names
func (s *BudgetService) SearchTransactions(ctx context.Context, req *connect.Request[api.SearchTransactionsRequest]) (*connect.Response[api.SearchTransactionsResponse], error) {
	claims, sess, err := s.userSession(ctx)
	if err != nil {
		return nil, err
	}

	params := search.Params{
		Query:     req.Msg.Query,
		UserID:    claims.UID,
		Category:  req.Msg.Category,
		Type:      req.Msg.Type,
		AmountMin: req.Msg.AmountMin,
		AmountMax: req.Msg.AmountMax,
		Page:      int(req.Msg.Page),
		PageSize:  int(req.Msg.PageSize),
	}
	if params.StartDate, err = optionalDate("startDate", req.Msg.StartDate); err != nil {
		return nil, err
	}
	if params.EndDate, err = optionalDate("endDate", req.Msg.EndDate); err != nil {
		return nil, err
	}

	searcher := s.searcher
	if searcher == nil {
		searcher = search.NewLocal(func(context.Context, string) ([]model.Transaction, error) {
			return sess.Transactions.Items(), nil
		})
	}

	res, err := searcher.Search(ctx, params)
	if err != nil {
		s.userLog(claims.UID).Error().Err(err).Msg("search failed")
		return nil, connect.NewError(connect.CodeUnavailable, fmt.Errorf("failed to search transactions: %w", err))
	}

	return connect.NewResponse(&api.SearchTransactionsResponse{
		Results:    res.Results,
		TotalCount: int32(res.TotalCount),
		TotalPages: int32(res.TotalPages),
		Page:       int32(res.Page),
	}), nil
}

// ExportTransactions renders the caller's transactions as CSV
func (s *BudgetService) ExportTransactions(ctx context.Context, req *connect.Request[api.ExportTransactionsRequest]) (*connect.Response[api.ExportTransactionsResponse], error) {
	claims, sess, err := s.userSession(ctx)
	if err != nil {
		return nil, err
	}

	res, err := s.exporter.Export(ctx, claims.UID, metrics.FilterByType(sess.Transactions.Items(), req.Msg.Type))
	if err != nil {
		return nil, toConnectError(fmt.Errorf("failed to export transactions: %w", err))
	}

	return connect.NewResponse(&api.ExportTransactionsResponse{
		Filename:    res.Filename,
		ContentType: res.ContentType,
		Data:        res.Data,
		Rows:        int32(res.Rows),
		ObjectPath:  res.ObjectPath,
	}), nil
}

// denormalize copies the category name and the user's currency onto a
// transaction. An unknown category id is kept and shown as uncategorized.
func denormalize(sess *session.Session, in model.TransactionInput) model.Transaction {
	name := model.UncategorizedName
	if c, ok := sess.Categories.Get(in.CategoryID); ok {
		name = c.Name
	}
	return model.Transaction{
		Amount:     in.Amount,
		Type:       in.Type,
		Category:   name,
		CategoryID: in.CategoryID,
		Date:       in.Date,
		Notes:      in.Notes,
		Currency:   sess.Settings.Settings().Currency,
	}
}

func optionalDate(field, value string) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	t, err := model.ParseDate(value)
	if err != nil {
		return nil, connect.NewError(connect.CodeInvalidArgument, fmt.Errorf("%s: %w", field, err))
	}
	return &t, nil
}

func (s *BudgetService) indexWhenSettled(uid string, p *dispatch.Pending, tx model.Transaction) {
	if s.indexer == nil {
		return
	}
	s.whenSettled(uid, p, func(ctx context.Context) error {
		return s.indexer.Index(ctx, uid, tx)
	})
}

// whenSettled runs fn once the write has been confirmed. Failed writes are
// already reported by the dispatcher and skip fn.
func (s *BudgetService) whenSettled(uid string, p *dispatch.Pending, fn func(context.Context) error) {
	go func() {
		<-p.Done()
		if p.Err() != nil {
			return
		}
		ctx, cancel := context.WithTimeout(context.Background(), indexTimeout)
		defer cancel()
		if err := fn(ctx); err != nil {
			s.userLog(uid).Warn().Err(err).Str("path", p.Path).Msg("failed to update search index")
		}
	}()
}
