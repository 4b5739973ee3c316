package http

import (
	"encoding/json"
	"net/http"

	"fintrack/internal/alerts"
	"fintrack/internal/core"
)

type budgetRequest struct {
	Category string     `json:"category"`
	Amount   core.Money `json:"amount"`
	Month    int        `json:"month"`
	Year     int        `json:"year"`
}

func (s *Server) handleUpsertBudget(w http.ResponseWriter, r *http.Request) {
	var req budgetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid request body")
		return
	}

	b := core.Budget{
		UserID:   userID(r),
		Category: sanitizeInput(req.Category),
		Amount:   req.Amount,
		Month:    req.Month,
		Year:     req.Year,
	}
	if err := s.budgets.Upsert(r.Context(), &b); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, b)
}

func (s *Server) handleListBudgets(w http.ResponseWriter, r *http.Request) {
	month, ok := queryInt(r, "month", 0)
	if !ok {
		writeBadRequest(w, "invalid month")
		return
	}
	year, ok := queryInt(r, "year", 0)
	if !ok {
		writeBadRequest(w, "invalid year")
		return
	}

	budgets, err := s.budgets.List(r.Context(), userID(r), month, year)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if budgets == nil {
		budgets = []core.Budget{}
	}
	writeJSON(w, http.StatusOK, budgets)
}

func (s *Server) handleBudgetProgress(w http.ResponseWriter, r *http.Request) {
	month, ok := queryInt(r, "month", 0)
	if !ok {
		writeBadRequest(w, "invalid month")
		return
	}
	year, ok := queryInt(r, "year", 0)
	if !ok {
		writeBadRequest(w, "invalid year")
		return
	}

	progress, err := s.budgets.Progress(r.Context(), userID(r), month, year)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if progress == nil {
		progress = []alerts.BudgetProgress{}
	}
	writeJSON(w, http.StatusOK, progress)
}

func (s *Server) handleDeleteBudget(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeBadRequest(w, "invalid id")
		return
	}
	if err := s.budgets.Delete(r.Context(), id, userID(r)); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}
