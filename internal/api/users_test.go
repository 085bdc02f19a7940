package api

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/smartdom/crm-bot/internal/domain/users"
)

type MockUsersRepo struct {
	mock.Mock
}

func (m *MockUsersRepo) user(args mock.Arguments) (*users.User, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*users.User), args.Error(1)
}

func (m *MockUsersRepo) GetByTelegramID(ctx context.Context, tgID int64) (*users.User, error) {
	return m.user(m.Called(ctx, tgID))
}

func (m *MockUsersRepo) List(ctx context.Context) ([]users.User, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]users.User), args.Error(1)
}

func (m *MockUsersRepo) Create(ctx context.Context, tgID int64, name string, role users.Role) (*users.User, error) {
	return m.user(m.Called(ctx, tgID, name, role))
}

func (m *MockUsersRepo) Update(ctx context.Context, id int64, name *string, role *users.Role) (*users.User, error) {
	return m.user(m.Called(ctx, id, name, role))
}

func (m *MockUsersRepo) SetAdminByTelegramID(ctx context.Context, tgID int64) (*users.User, error) {
	return m.user(m.Called(ctx, tgID))
}

func (m *MockUsersRepo) AdminExists(ctx context.Context) (bool, error) {
	args := m.Called(ctx)
	return args.Bool(0), args.Error(1)
}

func usersRouter(repo UsersRepo) *chi.Mux {
	s := &Server{log: slog.Default(), users: repo}
	r := chi.NewRouter()
	r.Get("/users/check-admin", s.checkAdmin)
	r.Post("/users", s.createUser)
	r.Post("/users/set-admin", s.setAdmin)
	r.Put("/users/{id}", s.updateUser)
	return r
}

func TestCheckAdmin(t *testing.T) {
	repo := new(MockUsersRepo)
	repo.On("AdminExists", mock.Anything).Return(true, nil)

	rr := httptest.NewRecorder()
	usersRouter(repo).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/users/check-admin", nil))

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"adminExists":true}`, rr.Body.String())
}

// Бутстрап: пока нет ни одного админа, set-admin доступен без авторизации.
func TestSetAdmin_BootstrapAllowed(t *testing.T) {
	repo := new(MockUsersRepo)
	repo.On("AdminExists", mock.Anything).Return(false, nil)
	repo.On("SetAdminByTelegramID", mock.Anything, int64(200)).
		Return(&users.User{ID: 2, TelegramID: 200, Name: "Пётр", Role: users.RoleAdmin}, nil)

	req := httptest.NewRequest(http.MethodPost, "/users/set-admin", strings.NewReader(`{"telegramId":200}`))
	rr := httptest.NewRecorder()
	usersRouter(repo).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	repo.AssertExpectations(t)
}

// После появления первого админа маршрут закрывается для анонимов.
func TestSetAdmin_ForbiddenWhenAdminExists(t *testing.T) {
	repo := new(MockUsersRepo)
	repo.On("AdminExists", mock.Anything).Return(true, nil)

	req := httptest.NewRequest(http.MethodPost, "/users/set-admin", strings.NewReader(`{"telegramId":200}`))
	rr := httptest.NewRecorder()
	usersRouter(repo).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusForbidden, rr.Code)
	repo.AssertNotCalled(t, "SetAdminByTelegramID")
}

func TestSetAdmin_AllowedForAdminCaller(t *testing.T) {
	repo := new(MockUsersRepo)
	repo.On("AdminExists", mock.Anything).Return(true, nil)
	repo.On("SetAdminByTelegramID", mock.Anything, int64(200)).
		Return(&users.User{ID: 2, TelegramID: 200, Role: users.RoleAdmin}, nil)

	req := asUser(httptest.NewRequest(http.MethodPost, "/users/set-admin",
		strings.NewReader(`{"telegramId":200}`)), testAdmin)
	rr := httptest.NewRecorder()
	usersRouter(repo).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestCreateUser_Duplicate(t *testing.T) {
	existing := &users.User{ID: 2, TelegramID: 200, Name: "Пётр", Role: users.RoleInstaller}
	repo := new(MockUsersRepo)
	repo.On("GetByTelegramID", mock.Anything, int64(200)).Return(existing, nil)

	req := httptest.NewRequest(http.MethodPost, "/users",
		strings.NewReader(`{"telegramId":200,"name":"Пётр"}`))
	rr := httptest.NewRecorder()
	usersRouter(repo).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusConflict, rr.Code)
	assert.Contains(t, rr.Body.String(), "User already exists")
	repo.AssertNotCalled(t, "Create")
}

// Роль admin из тела игнорируется, если создатель — не админ.
func TestCreateUser_RoleForcedToInstaller(t *testing.T) {
	repo := new(MockUsersRepo)
	repo.On("GetByTelegramID", mock.Anything, int64(300)).Return(nil, nil)
	repo.On("Create", mock.Anything, int64(300), "Вася", users.RoleInstaller).
		Return(&users.User{ID: 3, TelegramID: 300, Name: "Вася", Role: users.RoleInstaller}, nil)

	req := httptest.NewRequest(http.MethodPost, "/users",
		strings.NewReader(`{"telegramId":300,"name":"Вася","role":"admin"}`))
	rr := httptest.NewRecorder()
	usersRouter(repo).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusCreated, rr.Code)
	repo.AssertExpectations(t)
}

func TestUpdateUser_BadRole(t *testing.T) {
	repo := new(MockUsersRepo)
	req := httptest.NewRequest(http.MethodPut, "/users/2", strings.NewReader(`{"role":"owner"}`))
	rr := httptest.NewRecorder()
	usersRouter(repo).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	repo.AssertNotCalled(t, "Update")
}
