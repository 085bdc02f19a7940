package bot

import (
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInternalHandler_WrongSecret(t *testing.T) {
	b := &Bot{log: slog.Default()}
	h := b.InternalHandler("top-secret")

	req := httptest.NewRequest(http.MethodPost, "/internal/report/user", strings.NewReader(`{}`))
	req.Header.Set("X-Report-Secret", "wrong")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestInternalHandler_MissingAdminID(t *testing.T) {
	b := &Bot{log: slog.Default()}
	h := b.InternalHandler("top-secret")

	req := httptest.NewRequest(http.MethodPost, "/internal/report/user",
		strings.NewReader(`{"user":{"id":2,"name":"Пётр"},"days":[]}`))
	req.Header.Set("X-Report-Secret", "top-secret")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestInternalHandler_BadJSON(t *testing.T) {
	b := &Bot{log: slog.Default()}
	h := b.InternalHandler("top-secret")

	req := httptest.NewRequest(http.MethodPost, "/internal/report/user", strings.NewReader(`{broken`))
	req.Header.Set("X-Report-Secret", "top-secret")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
}
