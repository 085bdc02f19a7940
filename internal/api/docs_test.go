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
	"github.com/stretchr/testify/require"

	"github.com/smartdom/crm-bot/internal/domain/docs"
)

type MockDocsRepo struct {
	mock.Mock
}

func (m *MockDocsRepo) doc(args mock.Arguments) (*docs.Doc, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*docs.Doc), args.Error(1)
}

func (m *MockDocsRepo) docList(args mock.Arguments) ([]docs.Doc, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]docs.Doc), args.Error(1)
}

func (m *MockDocsRepo) List(ctx context.Context, objectID *int64) ([]docs.Doc, error) {
	return m.docList(m.Called(ctx, objectID))
}

func (m *MockDocsRepo) ListAll(ctx context.Context) ([]docs.Doc, error) {
	return m.docList(m.Called(ctx))
}

func (m *MockDocsRepo) GetByID(ctx context.Context, id int64) (*docs.Doc, error) {
	return m.doc(m.Called(ctx, id))
}

func (m *MockDocsRepo) Create(ctx context.Context, d docs.Doc) (*docs.Doc, error) {
	return m.doc(m.Called(ctx, d))
}

func (m *MockDocsRepo) Update(ctx context.Context, id int64, u docs.Update) (*docs.Doc, error) {
	return m.doc(m.Called(ctx, id, u))
}

func (m *MockDocsRepo) Delete(ctx context.Context, id int64) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

func docsRouter(repo DocsRepo) *chi.Mux {
	s := &Server{log: slog.Default(), docs: repo}
	r := chi.NewRouter()
	r.Get("/docs", s.listDocs)
	r.Get("/docs/{id}", s.getDoc)
	r.Post("/docs", s.createDoc)
	r.Put("/docs/{id}", s.updateDoc)
	r.Delete("/docs/{id}", s.deleteDoc)
	return r
}

// Без параметров отдаётся вся база знаний, а не только общие документы.
func TestListDocs_DefaultReturnsAll(t *testing.T) {
	repo := new(MockDocsRepo)
	objID := int64(5)
	repo.On("ListAll", mock.Anything).Return([]docs.Doc{
		{ID: 1, Title: "Регламент монтажа", Type: docs.TypePDF, URL: "https://example.com/r.pdf"},
		{ID: 2, Title: "Схема щита", Type: docs.TypeImg, ObjectID: &objID},
	}, nil)

	rr := httptest.NewRecorder()
	docsRouter(repo).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/docs", nil))

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "Регламент монтажа")
	assert.Contains(t, rr.Body.String(), "Схема щита")
	repo.AssertExpectations(t)
}

func TestListDocs_GeneralOnly(t *testing.T) {
	repo := new(MockDocsRepo)
	repo.On("List", mock.Anything, (*int64)(nil)).Return([]docs.Doc{
		{ID: 1, Title: "Регламент монтажа", Type: docs.TypePDF},
	}, nil)

	rr := httptest.NewRecorder()
	docsRouter(repo).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/docs?generalOnly=1", nil))

	assert.Equal(t, http.StatusOK, rr.Code)
	repo.AssertExpectations(t)
}

func TestListDocs_BadObjectID(t *testing.T) {
	repo := new(MockDocsRepo)
	rr := httptest.NewRecorder()
	docsRouter(repo).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/docs?objectId=abc", nil))

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, rr.Body.String(), "Invalid objectId")
	repo.AssertNotCalled(t, "List")
	repo.AssertNotCalled(t, "ListAll")
}

func TestUpdateDoc(t *testing.T) {
	repo := new(MockDocsRepo)
	repo.On("Update", mock.Anything, int64(7), mock.MatchedBy(func(u docs.Update) bool {
		return u.Title != nil && *u.Title == "Паспорт объекта" &&
			u.Type != nil && *u.Type == docs.TypeLink &&
			u.URL != nil && *u.URL == "https://example.com/p" &&
			!u.ObjectSet
	})).Return(&docs.Doc{
		ID: 7, Title: "Паспорт объекта", Type: docs.TypeLink, URL: "https://example.com/p",
	}, nil)

	req := httptest.NewRequest(http.MethodPut, "/docs/7",
		strings.NewReader(`{"title":"Паспорт объекта","type":"link","url":"https://example.com/p"}`))
	rr := httptest.NewRecorder()
	docsRouter(repo).ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "Паспорт объекта")
	repo.AssertExpectations(t)
}

// objectId: 0 присутствует в теле — документ отвязывается от объекта.
func TestUpdateDoc_DetachObject(t *testing.T) {
	repo := new(MockDocsRepo)
	repo.On("Update", mock.Anything, int64(7), mock.MatchedBy(func(u docs.Update) bool {
		return u.ObjectSet && u.ObjectID == nil
	})).Return(&docs.Doc{ID: 7, Title: "Схема щита", Type: docs.TypeImg}, nil)

	req := httptest.NewRequest(http.MethodPut, "/docs/7", strings.NewReader(`{"objectId":0}`))
	rr := httptest.NewRecorder()
	docsRouter(repo).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	repo.AssertExpectations(t)
}

func TestUpdateDoc_EmptyTitle(t *testing.T) {
	repo := new(MockDocsRepo)
	req := httptest.NewRequest(http.MethodPut, "/docs/7", strings.NewReader(`{"title":"  "}`))
	rr := httptest.NewRecorder()
	docsRouter(repo).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	repo.AssertNotCalled(t, "Update")
}

func TestUpdateDoc_BadType(t *testing.T) {
	repo := new(MockDocsRepo)
	req := httptest.NewRequest(http.MethodPut, "/docs/7", strings.NewReader(`{"type":"doc"}`))
	rr := httptest.NewRecorder()
	docsRouter(repo).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, rr.Body.String(), "type must be")
	repo.AssertNotCalled(t, "Update")
}

func TestUpdateDoc_NotFound(t *testing.T) {
	repo := new(MockDocsRepo)
	repo.On("Update", mock.Anything, int64(99), mock.Anything).Return(nil, nil)

	req := httptest.NewRequest(http.MethodPut, "/docs/99", strings.NewReader(`{"title":"X"}`))
	rr := httptest.NewRecorder()
	docsRouter(repo).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Contains(t, rr.Body.String(), "Document not found")
}
