package users

import "time"

type Role string

const (
	RoleInstaller Role = "installer"
	RoleAdmin     Role = "admin"
)

type User struct {
	ID         int64
	TelegramID int64
	Name       string
	Role       Role
	CreatedAt  time.Time
}
