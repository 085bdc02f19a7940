package schedule

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound       = errors.New("report not found")
	ErrAccessDenied   = errors.New("access denied")
	ErrInvalidWorkLog = errors.New("invalid work log items")
)

// ValidationError — ошибка входных данных с привязкой к полю.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

func invalidField(field, reason string) *ValidationError {
	return &ValidationError{Field: field, Reason: reason}
}

// TransitionError — попытка нелегального перехода статуса.
// Содержит операцию, текущий и требуемый статус, чтобы ответ был
// пригоден для аудита, а не общим отказом.
type TransitionError struct {
	Op       string
	Current  Status
	Required Status
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("cannot %s report with status %q, must be %q", e.Op, e.Current, e.Required)
}
