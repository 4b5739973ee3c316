package http

import (
	"encoding/json"
	"net/http"

	"fintrack/internal/core"
	"fintrack/internal/store"
)

type transactionRequest struct {
	Amount             core.Money           `json:"amount"`
	Type               core.TransactionType `json:"type"`
	Category           string               `json:"category"`
	Date               core.Date            `json:"date"`
	Note               string               `json:"note"`
	IsRecurring        bool                 `json:"isRecurring"`
	RecurringFrequency core.Frequency       `json:"recurringFrequency"`
}

func (req *transactionRequest) toTransaction(userID int64) core.Transaction {
	return core.Transaction{
		UserID:             userID,
		Amount:             req.Amount,
		Type:               req.Type,
		Category:           sanitizeInput(req.Category),
		Date:               req.Date,
		Note:               sanitizeInput(req.Note),
		IsRecurring:        req.IsRecurring,
		RecurringFrequency: req.RecurringFrequency,
	}
}

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	var req transactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid request body")
		return
	}

	t := req.toTransaction(userID(r))
	if err := s.transactions.Create(r.Context(), &t); err != nil {
		writeError(w, r, err)
		return
	}

	s.invalidateStats(t.UserID)
	writeJSON(w, http.StatusCreated, t)
}

func (s *Server) handleGetTransaction(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeBadRequest(w, "invalid id")
		return
	}
	t, err := s.transactions.Get(r.Context(), id, userID(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, t)
}

func (s *Server) handleUpdateTransaction(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeBadRequest(w, "invalid id")
		return
	}
	var req transactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid request body")
		return
	}

	t := req.toTransaction(userID(r))
	t.ID = id
	if err := s.transactions.Update(r.Context(), &t); err != nil {
		writeError(w, r, err)
		return
	}

	s.invalidateStats(t.UserID)
	writeJSON(w, http.StatusOK, t)
}

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeBadRequest(w, "invalid id")
		return
	}
	uid := userID(r)
	if err := s.transactions.Delete(r.Context(), id, uid); err != nil {
		writeError(w, r, err)
		return
	}

	s.invalidateStats(uid)
	writeJSON(w, http.StatusNoContent, nil)
}

type transactionListResponse struct {
	Transactions []core.Transaction `json:"transactions"`
	Total        int                `json:"total"`
	Page         int                `json:"page"`
	Limit        int                `json:"limit"`
}

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
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
	page, ok := queryInt(r, "page", 1)
	if !ok || page < 1 {
		writeBadRequest(w, "invalid page")
		return
	}
	limit, ok := queryInt(r, "limit", 50)
	if !ok || limit < 1 || limit > 500 {
		writeBadRequest(w, "invalid limit")
		return
	}

	filter := store.TransactionFilter{
		Type:     core.TransactionType(queryString(r, "type")),
		Category: queryString(r, "category"),
		Page:     page,
		Limit:    limit,
		SortAsc:  queryString(r, "sort") == "asc",
	}
	// month implies a month range; year alone means the whole year.
	if month > 0 || year > 0 {
		if month > 0 {
			m, y, err := core.ResolveMonth(core.SystemClock{}, month, year)
			if err != nil {
				writeError(w, r, err)
				return
			}
			p := core.MonthRange(y, m)
			filter.Period = &p
		} else {
			p := core.YearRange(year)
			filter.Period = &p
		}
	}

	items, total, err := s.transactions.List(r.Context(), userID(r), filter)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if items == nil {
		items = []core.Transaction{}
	}
	writeJSON(w, http.StatusOK, transactionListResponse{
		Transactions: items,
		Total:        total,
		Page:         page,
		Limit:        limit,
	})
}
