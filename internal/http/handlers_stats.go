package http

import (
	"log/slog"
	"net/http"

	"fintrack/internal/core"
	"fintrack/internal/stats"
)

func (s *Server) handleStatsSummary(w http.ResponseWriter, r *http.Request) {
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

	uid := userID(r)
	key := statsCacheKey(uid, month, year)
	if cached, found := s.summaryCache.Get(key); found {
		slog.DebugContext(r.Context(), "summary cache hit", "user_id", uid)
		writeJSON(w, http.StatusOK, cached)
		return
	}

	summary, err := s.statsEngine.Summary(r.Context(), uid, month, year)
	if err != nil {
		writeError(w, r, err)
		return
	}
	s.summaryCache.Set(key, summary)
	writeJSON(w, http.StatusOK, summary)
}

func (s *Server) handleStatsByCategory(w http.ResponseWriter, r *http.Request) {
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
	typ := core.TransactionType(queryString(r, "type"))
	if typ == "" {
		typ = core.Expense
	}

	byCategory, err := s.statsEngine.ByCategory(r.Context(), userID(r), month, year, typ)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, byCategory)
}

func (s *Server) handleStatsMonthly(w http.ResponseWriter, r *http.Request) {
	year, ok := queryInt(r, "year", 0)
	if !ok {
		writeBadRequest(w, "invalid year")
		return
	}
	dense := queryString(r, "dense") == "1" || queryString(r, "dense") == "true"

	uid := userID(r)
	key := statsCacheKey(uid, year)
	breakdown, found := s.monthlyCache.Get(key)
	if found {
		slog.DebugContext(r.Context(), "monthly cache hit", "user_id", uid)
	} else {
		var err error
		breakdown, err = s.statsEngine.Monthly(r.Context(), uid, year)
		if err != nil {
			writeError(w, r, err)
			return
		}
		s.monthlyCache.Set(key, breakdown)
	}

	if dense {
		densified := *breakdown
		densified.Data = stats.DensifyMonthly(breakdown.Data)
		writeJSON(w, http.StatusOK, &densified)
		return
	}
	writeJSON(w, http.StatusOK, breakdown)
}

func (s *Server) handleStatsCategoryUsage(w http.ResponseWriter, r *http.Request) {
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
	scope := stats.Scope(queryString(r, "scope"))
	if scope == "" {
		scope = stats.ScopeMonth
	}

	usage, err := s.statsEngine.CategoryUsage(r.Context(), userID(r), scope, month, year)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, usage)
}
