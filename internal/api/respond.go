package api

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/render"

	"github.com/smartdom/crm-bot/internal/domain/schedule"
)

func respondError(w http.ResponseWriter, r *http.Request, status int, msg string) {
	render.Status(r, status)
	render.JSON(w, r, map[string]string{"error": msg})
}

// scheduleError переводит ошибки ядра в HTTP-статусы.
func (s *Server) scheduleError(w http.ResponseWriter, r *http.Request, err error) {
	var ve *schedule.ValidationError
	var te *schedule.TransitionError
	switch {
	case errors.As(err, &ve):
		respondError(w, r, http.StatusBadRequest, ve.Error())
	case errors.As(err, &te):
		respondError(w, r, http.StatusBadRequest, te.Error())
	case errors.Is(err, schedule.ErrInvalidWorkLog):
		respondError(w, r, http.StatusBadRequest, "Invalid work log items")
	case errors.Is(err, schedule.ErrAccessDenied):
		respondError(w, r, http.StatusForbidden, "Access denied")
	case errors.Is(err, schedule.ErrNotFound):
		respondError(w, r, http.StatusNotFound, "Report not found")
	default:
		s.log.Error("schedule operation failed", "err", err)
		respondError(w, r, http.StatusInternalServerError, "Internal server error")
	}
}

/* Гибкие JSON-поля. WebApp исторически шлёт id и числом, и строкой;
   нормализация происходит здесь, один раз, до ядра. */

// flexID принимает 7 и "7"; всё остальное становится 0 и отбраковывается ниже.
type flexID int64

func (f *flexID) UnmarshalJSON(b []byte) error {
	s := strings.Trim(strings.TrimSpace(string(b)), `"`)
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		*f = 0
		return nil
	}
	*f = flexID(n)
	return nil
}

// looseInt принимает только целые JSON-числа; прочее становится 0
// (ядро молча поднимет его до 1 — задокументированный fail-safe).
type looseInt int

func (f *looseInt) UnmarshalJSON(b []byte) error {
	n, err := strconv.Atoi(strings.TrimSpace(string(b)))
	if err != nil {
		*f = 0
		return nil
	}
	*f = looseInt(n)
	return nil
}

// optMoney отличает «не распарсилось» от нуля: мусорный earnings
// игнорируется, а не превращается в 0.
type optMoney struct {
	Val int64
	OK  bool
}

func (o *optMoney) UnmarshalJSON(b []byte) error {
	s := strings.Trim(strings.TrimSpace(string(b)), `"`)
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		o.OK = false
		return nil
	}
	o.Val, o.OK = n, true
	return nil
}
