package services

import (
	"context"

	"fintrack/internal/core"
	"fintrack/internal/store"
)

// GoalService manages savings goals and contributions.
type GoalService struct {
	goals store.GoalStore
}

func NewGoalService(goals store.GoalStore) *GoalService {
	return &GoalService{goals: goals}
}

// Create stores a new goal. Status starts active unless the initial amount
// already covers the target.
func (s *GoalService) Create(ctx context.Context, g *core.Goal) error {
	if g.Status == "" {
		g.Status = core.GoalActive
	}
	if err := g.Validate(); err != nil {
		return err
	}
	g.RecomputeCompletion()
	return s.goals.CreateGoal(ctx, g)
}

// Get returns one goal owned by the user.
func (s *GoalService) Get(ctx context.Context, id, userID int64) (*core.Goal, error) {
	return s.goals.GetGoal(ctx, id, userID)
}

// List returns the user's goals, optionally filtered by status.
func (s *GoalService) List(ctx context.Context, userID int64, status core.GoalStatus) ([]core.Goal, error) {
	if status != "" && !status.Valid() {
		return nil, core.Invalid("status", "must be active or completed")
	}
	return s.goals.ListGoals(ctx, userID, status)
}

// Update replaces a goal's fields. A direct edit that raises the current
// amount past the target completes the goal; it never reactivates one.
func (s *GoalService) Update(ctx context.Context, g *core.Goal) error {
	existing, err := s.goals.GetGoal(ctx, g.ID, g.UserID)
	if err != nil {
		return err
	}
	if g.Status == "" {
		g.Status = existing.Status
	}
	if err := g.Validate(); err != nil {
		return err
	}
	g.RecomputeCompletion()
	return s.goals.UpdateGoal(ctx, g)
}

// Contribute adds a positive amount to the goal's saved total. Completion
// flips automatically in both directions through contributions.
func (s *GoalService) Contribute(ctx context.Context, id, userID int64, amount core.Money) (*core.Goal, error) {
	if !amount.IsPositive() {
		return nil, core.Invalid("amount", "must be greater than 0")
	}
	return s.goals.ContributeToGoal(ctx, id, userID, amount.Cents)
}

// Withdraw removes an amount from the goal's saved total, clamping at zero.
func (s *GoalService) Withdraw(ctx context.Context, id, userID int64, amount core.Money) (*core.Goal, error) {
	if !amount.IsPositive() {
		return nil, core.Invalid("amount", "must be greater than 0")
	}
	return s.goals.ContributeToGoal(ctx, id, userID, -amount.Cents)
}

// Delete removes a goal owned by the user.
func (s *GoalService) Delete(ctx context.Context, id, userID int64) error {
	return s.goals.DeleteGoal(ctx, id, userID)
}
