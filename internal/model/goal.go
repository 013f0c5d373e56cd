package model

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

func (p Priority) Valid() bool {
	return p == PriorityLow || p == PriorityMedium || p == PriorityHigh
}

type GoalStatus string

const (
	GoalActive    GoalStatus = "active"
	GoalCompleted GoalStatus = "completed"
)

func (s GoalStatus) Valid() bool {
	return s == GoalActive || s == GoalCompleted
}

// Goal is a savings target at users/{uid}/goals/{id}.
type Goal struct {
	ID            string     `json:"id"`
	Title         string     `json:"title"`
	TargetAmount  float64    `json:"targetAmount"`
	CurrentAmount float64    `json:"currentAmount"`
	Deadline      string     `json:"deadline"`
	Currency      Currency   `json:"currency"`
	Priority      Priority   `json:"priority"`
	Status        GoalStatus `json:"status"`
}

// GoalInput is the writable part of a goal. Empty priority and status take
// the creation defaults.
type GoalInput struct {
	Title         string     `json:"title"`
	TargetAmount  float64    `json:"targetAmount"`
	CurrentAmount float64    `json:"currentAmount"`
	Deadline      string     `json:"deadline"`
	Priority      Priority   `json:"priority,omitempty"`
	Status        GoalStatus `json:"status,omitempty"`
}

// WithDefaults fills priority and status the way new goals start out.
func (in GoalInput) WithDefaults() GoalInput {
	if in.Priority == "" {
		in.Priority = PriorityMedium
	}
	if in.Status == "" {
		in.Status = GoalActive
	}
	return in
}

func (in GoalInput) Validate() error {
	v := validator{record: "goal"}
	v.check(in.Title != "", "title", "is required")
	v.check(in.TargetAmount > 0, "targetAmount", "must be greater than zero")
	v.check(in.CurrentAmount >= 0, "currentAmount", "must not be negative")
	_, err := ParseDate(in.Deadline)
	v.check(err == nil, "deadline", "must be an ISO-8601 date")
	v.check(in.Priority == "" || in.Priority.Valid(), "priority", "must be low, medium or high")
	v.check(in.Status == "" || in.Status.Valid(), "status", "must be active or completed")
	return v.err()
}

// ContributionKind selects the direction of a goal contribution.
type ContributionKind string

const (
	Deposit  ContributionKind = "add"
	Withdraw ContributionKind = "withdraw"
)

// ErrInsufficientFunds is returned when a withdrawal exceeds the saved amount.
var ErrInsufficientFunds = errors.New("withdrawal exceeds current amount")

// ApplyContribution returns the goal's current amount after the contribution.
// The goal itself is not modified.
func ApplyContribution(g Goal, kind ContributionKind, amount float64) (float64, error) {
	v := validator{record: "contribution"}
	v.check(amount > 0, "amount", "must be greater than zero")
	v.check(kind == Deposit || kind == Withdraw, "kind", "must be add or withdraw")
	if err := v.err(); err != nil {
		return g.CurrentAmount, err
	}

	current, delta := decimal.NewFromFloat(g.CurrentAmount), decimal.NewFromFloat(amount)
	next := current.Add(delta)
	if kind == Withdraw {
		next = current.Sub(delta)
	}
	if next.IsNegative() {
		return g.CurrentAmount, fmt.Errorf("%w: have %.2f, withdrawing %.2f", ErrInsufficientFunds, g.CurrentAmount, amount)
	}
	return next.InexactFloat64(), nil
}
