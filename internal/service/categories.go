package service

import (
	"context"

	"connectrpc.com/connect"
	"github.com/budgetbolt/backend/internal/api"
	"github.com/budgetbolt/backend/internal/model"
	"github.com/budgetbolt/backend/internal/store"
)

// ListCategories lists the caller's categories, also split by type
func (s *BudgetService) ListCategories(ctx context.Context, req *connect.Request[api.ListCategoriesRequest]) (*connect.Response[api.ListCategoriesResponse], error) {
	_, sess, err := s.userSession(ctx)
	if err != nil {
		return nil, err
	}

	all := sess.Categories.Items()
	resp := &api.ListCategoriesResponse{
		Categories: all,
		Income:     []model.Category{},
		Expense:    []model.Category{},
	}
	for _, c := range all {
		switch c.Type {
		case model.Income:
			resp.Income = append(resp.Income, c)
		case model.Expense:
			resp.Expense = append(resp.Expense, c)
		}
	}
	return connect.NewResponse(resp), nil
}

// CreateCategory creates a category
func (s *BudgetService) CreateCategory(ctx context.Context, req *connect.Request[api.CreateCategoryRequest]) (*connect.Response[api.CreateCategoryResponse], error) {
	claims, sess, err := s.userSession(ctx)
	if err != nil {
		return nil, err
	}
	in := req.Msg.Category
	if err := in.Validate(); err != nil {
		return nil, toConnectError(err)
	}

	c := categoryFrom(in)
	data, err := store.ToData(c)
	if err != nil {
		return nil, toConnectError(err)
	}
	p := s.writes.Create(ctx, claims.UID, store.UserCollection(claims.UID, store.Categories), data)
	c.ID = p.ID
	sess.Categories.Upsert(c)

	return connect.NewResponse(&api.CreateCategoryResponse{Category: c}), nil
}

// UpdateCategory replaces a category. Transactions keep the name they were saved with.
func (s *BudgetService) UpdateCategory(ctx context.Context, req *connect.Request[api.UpdateCategoryRequest]) (*connect.Response[api.UpdateCategoryResponse], error) {
	claims, sess, err := s.userSession(ctx)
	if err != nil {
		return nil, err
	}
	if err := requireID(req.Msg.ID); err != nil {
		return nil, err
	}
	in := req.Msg.Category
	if err := in.Validate(); err != nil {
		return nil, toConnectError(err)
	}
	if _, ok := sess.Categories.Get(req.Msg.ID); !ok {
		return nil, notFound("category", req.Msg.ID)
	}

	c := categoryFrom(in)
	c.ID = req.Msg.ID
	data, err := store.ToData(c)
	if err != nil {
		return nil, toConnectError(err)
	}
	s.writes.Replace(ctx, claims.UID, store.DocPath(store.UserCollection(claims.UID, store.Categories), c.ID), data)
	sess.Categories.Upsert(c)

	return connect.NewResponse(&api.UpdateCategoryResponse{Category: c}), nil
}

// DeleteCategory deletes a category. Transactions referencing it are left alone.
func (s *BudgetService) DeleteCategory(ctx context.Context, req *connect.Request[api.DeleteCategoryRequest]) (*connect.Response[api.DeleteCategoryResponse], error) {
	claims, sess, err := s.userSession(ctx)
	if err != nil {
		return nil, err
	}
	if err := requireID(req.Msg.ID); err != nil {
		return nil, err
	}
	if !sess.Categories.Remove(req.Msg.ID) {
		return nil, notFound("category", req.Msg.ID)
	}

	s.writes.Delete(ctx, claims.UID, store.DocPath(store.UserCollection(claims.UID, store.Categories), req.Msg.ID))
	return connect.NewResponse(&api.DeleteCategoryResponse{}), nil
}

func categoryFrom(in model.CategoryInput) model.Category {
	return model.Category{
		Name:          in.Name,
		Type:          in.Type,
		Color:         in.Color,
		Icon:          model.ParseIcon(in.Icon),
		MonthlyBudget: in.MonthlyBudget,
	}
}
