package schedule

import (
	"regexp"
	"time"

	"github.com/smartdom/crm-bot/internal/domain/users"
)

// Status — жизненный цикл отчёта за день.
type Status string

const (
	StatusDraft                   Status = "draft"
	StatusPendingApproval         Status = "pending_approval"
	StatusApprovedWaitingPayment  Status = "approved_waiting_payment"
	StatusPaidWaitingConfirmation Status = "paid_waiting_confirmation"
	StatusCompleted               Status = "completed"
)

func ValidStatus(s Status) bool {
	switch s {
	case StatusDraft, StatusPendingApproval, StatusApprovedWaitingPayment,
		StatusPaidWaitingConfirmation, StatusCompleted:
		return true
	}
	return false
}

var dateRe = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

func ValidDate(date string) bool { return dateRe.MatchString(date) }

// Report — отчёт монтажника за одну дату. Пара (UserID, Date) уникальна.
type Report struct {
	ID        int64
	UserID    int64
	Date      string // YYYY-MM-DD
	ObjectID  *int64
	Status    Status
	Earnings  int64
	Completed bool // всегда производное от Status == completed
	WorkLog   []WorkLogEntry
	CreatedAt time.Time
}

type WorkLogEntry struct {
	PriceItemID int64
	Quantity    int
	Coefficient float64
}

// CatalogPrice — снимок позиции прайс-листа на момент расчёта.
type CatalogPrice struct {
	UnitPrice   int64
	Coefficient float64
}

// Actor — аутентифицированный инициатор операции. Передаётся явно,
// никакого глобального "текущего пользователя" в ядре нет.
type Actor struct {
	ID   int64
	Role users.Role
}

func (a Actor) IsAdmin() bool { return a.Role == users.RoleAdmin }
