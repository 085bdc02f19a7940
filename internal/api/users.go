package api

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/render"

	"github.com/smartdom/crm-bot/internal/auth"
	"github.com/smartdom/crm-bot/internal/domain/users"
)

// UsersRepo — операции с пользователями, нужные API-слою.
type UsersRepo interface {
	GetByTelegramID(ctx context.Context, tgID int64) (*users.User, error)
	List(ctx context.Context) ([]users.User, error)
	Create(ctx context.Context, tgID int64, name string, role users.Role) (*users.User, error)
	Update(ctx context.Context, id int64, name *string, role *users.Role) (*users.User, error)
	SetAdminByTelegramID(ctx context.Context, tgID int64) (*users.User, error)
	AdminExists(ctx context.Context) (bool, error)
}

type userJSON struct {
	ID         int64  `json:"id"`
	TelegramID int64  `json:"telegramId"`
	Name       string `json:"name"`
	Role       string `json:"role"`
}

func toUserJSON(u *users.User) userJSON {
	return userJSON{ID: u.ID, TelegramID: u.TelegramID, Name: u.Name, Role: string(u.Role)}
}

func (s *Server) currentUser(w http.ResponseWriter, r *http.Request) {
	u := auth.FromContext(r.Context())
	render.JSON(w, r, toUserJSON(u))
}

func (s *Server) listUsers(w http.ResponseWriter, r *http.Request) {
	list, err := s.users.List(r.Context())
	if err != nil {
		s.log.Error("list users", "err", err)
		respondError(w, r, http.StatusInternalServerError, "Internal server error")
		return
	}
	out := make([]userJSON, 0, len(list))
	for i := range list {
		out = append(out, toUserJSON(&list[i]))
	}
	render.JSON(w, r, out)
}

type createUserReq struct {
	TelegramID flexID `json:"telegramId"`
	Name       string `json:"name"`
	Role       string `json:"role"`
}

// createUser — регистрация из WebApp. Роль admin из тела принимается
// только если запрос делает уже авторизованный админ.
func (s *Server) createUser(w http.ResponseWriter, r *http.Request) {
	var body createUserReq
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		respondError(w, r, http.StatusBadRequest, "No data provided")
		return
	}
	if body.TelegramID <= 0 {
		respondError(w, r, http.StatusBadRequest, "telegramId is required")
		return
	}
	name := strings.TrimSpace(body.Name)
	if name == "" {
		respondError(w, r, http.StatusBadRequest, "name is required")
		return
	}

	role := users.RoleInstaller
	if body.Role == string(users.RoleAdmin) {
		caller := auth.FromContext(r.Context())
		if caller == nil || caller.Role != users.RoleAdmin {
			role = users.RoleInstaller
		} else {
			role = users.RoleAdmin
		}
	}

	existing, err := s.users.GetByTelegramID(r.Context(), int64(body.TelegramID))
	if err != nil {
		s.log.Error("create user lookup", "err", err)
		respondError(w, r, http.StatusInternalServerError, "Internal server error")
		return
	}
	if existing != nil {
		render.Status(r, http.StatusConflict)
		render.JSON(w, r, map[string]any{
			"error": "User already exists",
			"user":  toUserJSON(existing),
		})
		return
	}

	u, err := s.users.Create(r.Context(), int64(body.TelegramID), name, role)
	if err != nil {
		s.log.Error("create user", "err", err)
		respondError(w, r, http.StatusInternalServerError, "Internal server error")
		return
	}
	render.Status(r, http.StatusCreated)
	render.JSON(w, r, toUserJSON(u))
}

type updateUserReq struct {
	Name *string `json:"name"`
	Role *string `json:"role"`
}

func (s *Server) updateUser(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(r)
	if !ok {
		respondError(w, r, http.StatusNotFound, "User not found")
		return
	}
	var body updateUserReq
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		respondError(w, r, http.StatusBadRequest, "No data provided")
		return
	}

	if body.Name != nil && strings.TrimSpace(*body.Name) == "" {
		respondError(w, r, http.StatusBadRequest, "name must not be empty")
		return
	}
	var role *users.Role
	if body.Role != nil {
		rl := users.Role(*body.Role)
		if rl != users.RoleAdmin && rl != users.RoleInstaller {
			respondError(w, r, http.StatusBadRequest, "role must be admin or installer")
			return
		}
		role = &rl
	}

	u, err := s.users.Update(r.Context(), id, body.Name, role)
	if err != nil {
		s.log.Error("update user", "err", err)
		respondError(w, r, http.StatusInternalServerError, "Internal server error")
		return
	}
	if u == nil {
		respondError(w, r, http.StatusNotFound, "User not found")
		return
	}
	render.JSON(w, r, toUserJSON(u))
}

type setAdminReq struct {
	TelegramID flexID `json:"telegramId"`
}

// setAdmin — бутстрап первого админа. Пока админов нет, маршрут открыт;
// после появления первого — только для админов.
func (s *Server) setAdmin(w http.ResponseWriter, r *http.Request) {
	var body setAdminReq
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		respondError(w, r, http.StatusBadRequest, "No data provided")
		return
	}
	if body.TelegramID <= 0 {
		respondError(w, r, http.StatusBadRequest, "telegramId is required")
		return
	}

	exists, err := s.users.AdminExists(r.Context())
	if err != nil {
		s.log.Error("set admin check", "err", err)
		respondError(w, r, http.StatusInternalServerError, "Internal server error")
		return
	}
	if exists {
		caller := auth.FromContext(r.Context())
		if caller == nil || caller.Role != users.RoleAdmin {
			respondError(w, r, http.StatusForbidden, "Admin access required")
			return
		}
	}

	u, err := s.users.SetAdminByTelegramID(r.Context(), int64(body.TelegramID))
	if err != nil {
		s.log.Error("set admin", "err", err)
		respondError(w, r, http.StatusInternalServerError, "Internal server error")
		return
	}
	if u == nil {
		respondError(w, r, http.StatusNotFound, "User not found")
		return
	}
	render.JSON(w, r, toUserJSON(u))
}

func (s *Server) checkAdmin(w http.ResponseWriter, r *http.Request) {
	exists, err := s.users.AdminExists(r.Context())
	if err != nil {
		s.log.Error("check admin", "err", err)
		respondError(w, r, http.StatusInternalServerError, "Internal server error")
		return
	}
	render.JSON(w, r, map[string]bool{"adminExists": exists})
}
