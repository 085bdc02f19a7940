package schedule

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/smartdom/crm-bot/internal/domain/users"
)

func TestCanEdit(t *testing.T) {
	admin := Actor{ID: 1, Role: users.RoleAdmin}
	owner := Actor{ID: 2, Role: users.RoleInstaller}
	other := Actor{ID: 3, Role: users.RoleInstaller}

	cases := []struct {
		name   string
		status Status
		actor  Actor
		want   bool
	}{
		{"админ правит любой статус", StatusCompleted, admin, true},
		{"владелец правит черновик", StatusDraft, owner, true},
		{"владелец правит отчёт на утверждении", StatusPendingApproval, owner, true},
		{"владелец не правит утверждённый", StatusApprovedWaitingPayment, owner, false},
		{"владелец не правит оплаченный", StatusPaidWaitingConfirmation, owner, false},
		{"владелец не правит завершённый", StatusCompleted, owner, false},
		{"чужой монтажник не правит даже черновик", StatusDraft, other, false},
		{"пустой статус считается черновиком", "", owner, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := &Report{UserID: 2, Status: tc.status}
			assert.Equal(t, tc.want, CanEdit(r, tc.actor))
		})
	}
}
