package http

import (
	"context"
	"encoding/json"
	"net/http"

	"fintrack/internal/core"
)

type goalRequest struct {
	Name          string          `json:"name"`
	TargetAmount  core.Money      `json:"targetAmount"`
	CurrentAmount core.Money      `json:"currentAmount"`
	Deadline      core.Date       `json:"deadline"`
	Note          string          `json:"note"`
	Status        core.GoalStatus `json:"status"`
}

func (req *goalRequest) toGoal(userID int64) core.Goal {
	return core.Goal{
		UserID:        userID,
		Name:          sanitizeInput(req.Name),
		TargetAmount:  req.TargetAmount,
		CurrentAmount: req.CurrentAmount,
		Deadline:      req.Deadline,
		Note:          sanitizeInput(req.Note),
		Status:        req.Status,
	}
}

func (s *Server) handleCreateGoal(w http.ResponseWriter, r *http.Request) {
	var req goalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid request body")
		return
	}

	g := req.toGoal(userID(r))
	if err := s.goals.Create(r.Context(), &g); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, g)
}

func (s *Server) handleGetGoal(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeBadRequest(w, "invalid id")
		return
	}
	g, err := s.goals.Get(r.Context(), id, userID(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, g)
}

func (s *Server) handleListGoals(w http.ResponseWriter, r *http.Request) {
	status := core.GoalStatus(queryString(r, "status"))
	goals, err := s.goals.List(r.Context(), userID(r), status)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if goals == nil {
		goals = []core.Goal{}
	}
	writeJSON(w, http.StatusOK, goals)
}

func (s *Server) handleUpdateGoal(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeBadRequest(w, "invalid id")
		return
	}
	var req goalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid request body")
		return
	}

	g := req.toGoal(userID(r))
	g.ID = id
	if err := s.goals.Update(r.Context(), &g); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, g)
}

func (s *Server) handleDeleteGoal(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeBadRequest(w, "invalid id")
		return
	}
	if err := s.goals.Delete(r.Context(), id, userID(r)); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}

type contributionRequest struct {
	Amount core.Money `json:"amount"`
}

func (s *Server) handleContributeGoal(w http.ResponseWriter, r *http.Request) {
	s.handleGoalDelta(w, r, s.goals.Contribute)
}

func (s *Server) handleWithdrawGoal(w http.ResponseWriter, r *http.Request) {
	s.handleGoalDelta(w, r, s.goals.Withdraw)
}

func (s *Server) handleGoalDelta(w http.ResponseWriter, r *http.Request,
	apply func(ctx context.Context, id, userID int64, amount core.Money) (*core.Goal, error)) {
	id, ok := pathID(r)
	if !ok {
		writeBadRequest(w, "invalid id")
		return
	}
	var req contributionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid request body")
		return
	}

	g, err := apply(r.Context(), id, userID(r), req.Amount)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, g)
}
