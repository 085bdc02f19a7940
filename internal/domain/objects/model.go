package objects

import "time"

type Status string

const (
	StatusActive      Status = "active"
	StatusCompleted   Status = "completed"
	StatusMaintenance Status = "maintenance"
)

func ValidStatus(s Status) bool {
	switch s {
	case StatusActive, StatusCompleted, StatusMaintenance:
		return true
	}
	return false
}

type Object struct {
	ID        int64
	Name      string
	Address   string
	Status    Status
	CreatedAt time.Time
}
