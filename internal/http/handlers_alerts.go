package http

import (
	"net/http"

	"fintrack/internal/core"
)

func (s *Server) handleAlertFeed(w http.ResponseWriter, r *http.Request) {
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

	feed, err := s.alertFeed.Feed(r.Context(), userID(r), month, year)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, feed)
}

func (s *Server) handleListNotifications(w http.ResponseWriter, r *http.Request) {
	unreadOnly := queryString(r, "unread") == "1" || queryString(r, "unread") == "true"

	notifications, err := s.notifications.ListNotifications(r.Context(), userID(r), unreadOnly)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if notifications == nil {
		notifications = []core.Notification{}
	}
	writeJSON(w, http.StatusOK, notifications)
}

func (s *Server) handleMarkNotificationRead(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeBadRequest(w, "invalid id")
		return
	}
	if err := s.notifications.MarkNotificationRead(r.Context(), id, userID(r)); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}
