package api

import (
	"errors"
	"net/http"

	"github.com/go-chi/render"

	"github.com/smartdom/crm-bot/internal/auth"
	"github.com/smartdom/crm-bot/internal/domain/reports"
)

// requestUserReport — админ запрашивает сводный отчёт по монтажнику.
// Документ приходит админу в Telegram, поэтому отвечаем 202, а не телом отчёта.
func (s *Server) requestUserReport(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(r)
	if !ok {
		respondError(w, r, http.StatusNotFound, "User not found")
		return
	}
	admin := auth.FromContext(r.Context())

	err := s.reports.RequestUserReport(r.Context(), id, admin.TelegramID)
	switch {
	case err == nil:
		render.Status(r, http.StatusAccepted)
		render.JSON(w, r, map[string]bool{"success": true})
	case errors.Is(err, reports.ErrUserNotFound):
		respondError(w, r, http.StatusNotFound, "User not found")
	case errors.Is(err, reports.ErrChannelUnavailable):
		respondError(w, r, http.StatusBadGateway, "Report delivery failed")
	default:
		s.log.Error("request user report", "err", err)
		respondError(w, r, http.StatusInternalServerError, "Internal server error")
	}
}
