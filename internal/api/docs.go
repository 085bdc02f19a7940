package api

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/render"

	"github.com/smartdom/crm-bot/internal/domain/docs"
)

// DocsRepo — операции базы знаний, нужные API-слою.
type DocsRepo interface {
	List(ctx context.Context, objectID *int64) ([]docs.Doc, error)
	ListAll(ctx context.Context) ([]docs.Doc, error)
	GetByID(ctx context.Context, id int64) (*docs.Doc, error)
	Create(ctx context.Context, d docs.Doc) (*docs.Doc, error)
	Update(ctx context.Context, id int64, u docs.Update) (*docs.Doc, error)
	Delete(ctx context.Context, id int64) (bool, error)
}

type docJSON struct {
	ID       int64   `json:"id"`
	Title    string  `json:"title"`
	Type     string  `json:"type"`
	URL      string  `json:"url,omitempty"`
	Content  string  `json:"content,omitempty"`
	ObjectID *string `json:"objectId"`
}

func toDocJSON(d *docs.Doc) docJSON {
	out := docJSON{
		ID:      d.ID,
		Title:   d.Title,
		Type:    string(d.Type),
		URL:     d.URL,
		Content: d.Content,
	}
	if d.ObjectID != nil {
		s := strconv.FormatInt(*d.ObjectID, 10)
		out.ObjectID = &s
	}
	return out
}

// listDocs: без параметров — вся база знаний, generalOnly=1 — только общие
// документы, objectId — документы конкретного объекта.
func (s *Server) listDocs(w http.ResponseWriter, r *http.Request) {
	var list []docs.Doc
	var err error

	switch {
	case r.URL.Query().Get("generalOnly") == "1":
		list, err = s.docs.List(r.Context(), nil)
	case r.URL.Query().Get("objectId") != "":
		id, perr := strconv.ParseInt(r.URL.Query().Get("objectId"), 10, 64)
		if perr != nil || id <= 0 {
			respondError(w, r, http.StatusBadRequest, "Invalid objectId")
			return
		}
		list, err = s.docs.List(r.Context(), &id)
	default:
		list, err = s.docs.ListAll(r.Context())
	}
	if err != nil {
		s.log.Error("list docs", "err", err)
		respondError(w, r, http.StatusInternalServerError, "Internal server error")
		return
	}
	out := make([]docJSON, 0, len(list))
	for i := range list {
		out = append(out, toDocJSON(&list[i]))
	}
	render.JSON(w, r, out)
}

func (s *Server) getDoc(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(r)
	if !ok {
		respondError(w, r, http.StatusNotFound, "Document not found")
		return
	}
	d, err := s.docs.GetByID(r.Context(), id)
	if err != nil {
		s.log.Error("get doc", "err", err)
		respondError(w, r, http.StatusInternalServerError, "Internal server error")
		return
	}
	if d == nil {
		respondError(w, r, http.StatusNotFound, "Document not found")
		return
	}
	render.JSON(w, r, toDocJSON(d))
}

type createDocReq struct {
	Title    string  `json:"title"`
	Type     string  `json:"type"`
	URL      string  `json:"url"`
	Content  string  `json:"content"`
	ObjectID *flexID `json:"objectId"`
}

func (s *Server) createDoc(w http.ResponseWriter, r *http.Request) {
	var body createDocReq
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		respondError(w, r, http.StatusBadRequest, "No data provided")
		return
	}
	title := strings.TrimSpace(body.Title)
	if title == "" {
		respondError(w, r, http.StatusBadRequest, "title is required")
		return
	}
	docType := docs.Type(body.Type)
	if !docs.ValidType(docType) {
		respondError(w, r, http.StatusBadRequest, "type must be pdf, img, text or link")
		return
	}

	d := docs.Doc{
		Title:   title,
		Type:    docType,
		URL:     strings.TrimSpace(body.URL),
		Content: body.Content,
	}
	if body.ObjectID != nil && *body.ObjectID > 0 {
		id := int64(*body.ObjectID)
		d.ObjectID = &id
	}

	created, err := s.docs.Create(r.Context(), d)
	if err != nil {
		s.log.Error("create doc", "err", err)
		respondError(w, r, http.StatusInternalServerError, "Internal server error")
		return
	}
	render.Status(r, http.StatusCreated)
	render.JSON(w, r, toDocJSON(created))
}

type updateDocReq struct {
	Title    *string `json:"title"`
	Type     *string `json:"type"`
	URL      *string `json:"url"`
	Content  *string `json:"content"`
	ObjectID *flexID `json:"objectId"`
}

func (s *Server) updateDoc(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(r)
	if !ok {
		respondError(w, r, http.StatusNotFound, "Document not found")
		return
	}
	var body updateDocReq
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		respondError(w, r, http.StatusBadRequest, "No data provided")
		return
	}

	if body.Title != nil && strings.TrimSpace(*body.Title) == "" {
		respondError(w, r, http.StatusBadRequest, "title must not be empty")
		return
	}
	var docType *docs.Type
	if body.Type != nil {
		dt := docs.Type(*body.Type)
		if !docs.ValidType(dt) {
			respondError(w, r, http.StatusBadRequest, "type must be pdf, img, text or link")
			return
		}
		docType = &dt
	}

	u := docs.Update{
		Title:   body.Title,
		Type:    docType,
		URL:     body.URL,
		Content: body.Content,
	}
	if body.ObjectID != nil {
		u.ObjectSet = true
		if *body.ObjectID > 0 {
			objID := int64(*body.ObjectID)
			u.ObjectID = &objID
		}
	}

	d, err := s.docs.Update(r.Context(), id, u)
	if err != nil {
		s.log.Error("update doc", "err", err)
		respondError(w, r, http.StatusInternalServerError, "Internal server error")
		return
	}
	if d == nil {
		respondError(w, r, http.StatusNotFound, "Document not found")
		return
	}
	render.JSON(w, r, toDocJSON(d))
}

func (s *Server) deleteDoc(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(r)
	if !ok {
		respondError(w, r, http.StatusNotFound, "Document not found")
		return
	}
	deleted, err := s.docs.Delete(r.Context(), id)
	if err != nil {
		s.log.Error("delete doc", "err", err)
		respondError(w, r, http.StatusInternalServerError, "Internal server error")
		return
	}
	if !deleted {
		respondError(w, r, http.StatusNotFound, "Document not found")
		return
	}
	render.JSON(w, r, map[string]bool{"success": true})
}
