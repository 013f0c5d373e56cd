package service

import (
	"context"

	"connectrpc.com/connect"
	"github.com/budgetbolt/backend/internal/api"
	"github.com/budgetbolt/backend/internal/metrics"
	"github.com/budgetbolt/backend/internal/model"
	"github.com/budgetbolt/backend/internal/store"
)

func goalView(g model.Goal) api.GoalView {
	return api.GoalView{Goal: g, Progress: metrics.GoalProgress(g)}
}

func goalViews(goals []model.Goal) []api.GoalView {
	out := make([]api.GoalView, 0, len(goals))
	for _, g := range goals {
		out = append(out, goalView(g))
	}
	return out
}

// ListGoals lists the caller's goals with their progress
func (s *BudgetService) ListGoals(ctx context.Context, req *connect.Request[api.ListGoalsRequest]) (*connect.Response[api.ListGoalsResponse], error) {
	_, sess, err := s.userSession(ctx)
	if err != nil {
		return nil, err
	}
	return connect.NewResponse(&api.ListGoalsResponse{Goals: goalViews(sess.Goals.Items())}), nil
}

// CreateGoal creates a goal in the caller's currency
func (s *BudgetService) CreateGoal(ctx context.Context, req *connect.Request[api.CreateGoalRequest]) (*connect.Response[api.CreateGoalResponse], error) {
	claims, sess, err := s.userSession(ctx)
	if err != nil {
		return nil, err
	}
	in := req.Msg.Goal.WithDefaults()
	if err := in.Validate(); err != nil {
		return nil, toConnectError(err)
	}

	g := goalFrom(in, sess.Settings.Settings().Currency)
	data, err := store.ToData(g)
	if err != nil {
		return nil, toConnectError(err)
	}
	p := s.writes.Create(ctx, claims.UID, store.UserCollection(claims.UID, store.Goals), data)
	g.ID = p.ID
	sess.Goals.Upsert(g)

	return connect.NewResponse(&api.CreateGoalResponse{Goal: goalView(g)}), nil
}

// UpdateGoal replaces a goal. Empty priority and status keep the stored values.
func (s *BudgetService) UpdateGoal(ctx context.Context, req *connect.Request[api.UpdateGoalRequest]) (*connect.Response[api.UpdateGoalResponse], error) {
	claims, sess, err := s.userSession(ctx)
	if err != nil {
		return nil, err
	}
	if err := requireID(req.Msg.ID); err != nil {
		return nil, err
	}
	in := req.Msg.Goal
	if err := in.Validate(); err != nil {
		return nil, toConnectError(err)
	}
	existing, ok := sess.Goals.Get(req.Msg.ID)
	if !ok {
		return nil, notFound("goal", req.Msg.ID)
	}
	if in.Priority == "" {
		in.Priority = existing.Priority
	}
	if in.Status == "" {
		in.Status = existing.Status
	}

	g := goalFrom(in.WithDefaults(), existing.Currency)
	g.ID = existing.ID
	data, err := store.ToData(g)
	if err != nil {
		return nil, toConnectError(err)
	}
	s.writes.Replace(ctx, claims.UID, store.DocPath(store.UserCollection(claims.UID, store.Goals), g.ID), data)
	sess.Goals.Upsert(g)

	return connect.NewResponse(&api.UpdateGoalResponse{Goal: goalView(g)}), nil
}

// DeleteGoal deletes a goal
func (s *BudgetService) DeleteGoal(ctx context.Context, req *connect.Request[api.DeleteGoalRequest]) (*connect.Response[api.DeleteGoalResponse], error) {
	claims, sess, err := s.userSession(ctx)
	if err != nil {
		return nil, err
	}
	if err := requireID(req.Msg.ID); err != nil {
		return nil, err
	}
	if !sess.Goals.Remove(req.Msg.ID) {
		return nil, notFound("goal", req.Msg.ID)
	}

	s.writes.Delete(ctx, claims.UID, store.DocPath(store.UserCollection(claims.UID, store.Goals), req.Msg.ID))
	return connect.NewResponse(&api.DeleteGoalResponse{}), nil
}

// ContributeToGoal adds to or withdraws from a goal's saved amount. A
// withdrawal larger than the saved amount is rejected before any write.
func (s *BudgetService) ContributeToGoal(ctx context.Context, req *connect.Request[api.ContributeToGoalRequest]) (*connect.Response[api.ContributeToGoalResponse], error) {
	claims, sess, err := s.userSession(ctx)
	if err != nil {
		return nil, err
	}
	if err := requireID(req.Msg.ID); err != nil {
		return nil, err
	}
	g, ok := sess.Goals.Get(req.Msg.ID)
	if !ok {
		return nil, notFound("goal", req.Msg.ID)
	}

	next, err := model.ApplyContribution(g, req.Msg.Kind, req.Msg.Amount)
	if err != nil {
		return nil, toConnectError(err)
	}
	g.CurrentAmount = next

	s.writes.Merge(ctx, claims.UID, store.DocPath(store.UserCollection(claims.UID, store.Goals), g.ID), map[string]any{
		"currentAmount": next,
	})
	sess.Goals.Update(g.ID, func(cur model.Goal) model.Goal {
		cur.CurrentAmount = next
		return cur
	})

	return connect.NewResponse(&api.ContributeToGoalResponse{Goal: goalView(g)}), nil
}

func goalFrom(in model.GoalInput, currency model.Currency) model.Goal {
	return model.Goal{
		Title:         in.Title,
		TargetAmount:  in.TargetAmount,
		CurrentAmount: in.CurrentAmount,
		Deadline:      in.Deadline,
		Currency:      currency,
		Priority:      in.Priority,
		Status:        in.Status,
	}
}
