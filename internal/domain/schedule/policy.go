package schedule

// CanEdit — право редактирования отчёта.
//
// Админ редактирует любой отчёт в любом статусе. Монтажник — только свой
// и только пока отчёт не ушёл дальше pending_approval.
func CanEdit(r *Report, actor Actor) bool {
	if actor.IsAdmin() {
		return true
	}
	if r.UserID != actor.ID {
		return false
	}
	switch r.Status {
	case StatusDraft, StatusPendingApproval, "":
		return true
	}
	return false
}
