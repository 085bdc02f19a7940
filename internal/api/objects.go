package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/render"

	"github.com/smartdom/crm-bot/internal/domain/objects"
)

type objectJSON struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Address string `json:"address"`
	Status  string `json:"status"`
}

func toObjectJSON(o *objects.Object) objectJSON {
	return objectJSON{
		ID:      strconv.FormatInt(o.ID, 10),
		Name:    o.Name,
		Address: o.Address,
		Status:  string(o.Status),
	}
}

func (s *Server) listObjects(w http.ResponseWriter, r *http.Request) {
	list, err := s.objects.List(r.Context())
	if err != nil {
		s.log.Error("list objects", "err", err)
		respondError(w, r, http.StatusInternalServerError, "Internal server error")
		return
	}
	out := make([]objectJSON, 0, len(list))
	for i := range list {
		out = append(out, toObjectJSON(&list[i]))
	}
	render.JSON(w, r, out)
}

func (s *Server) getObject(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(r)
	if !ok {
		respondError(w, r, http.StatusNotFound, "Object not found")
		return
	}
	o, err := s.objects.GetByID(r.Context(), id)
	if err != nil {
		s.log.Error("get object", "err", err)
		respondError(w, r, http.StatusInternalServerError, "Internal server error")
		return
	}
	if o == nil {
		respondError(w, r, http.StatusNotFound, "Object not found")
		return
	}
	render.JSON(w, r, toObjectJSON(o))
}

type createObjectReq struct {
	Name    string `json:"name"`
	Address string `json:"address"`
	Status  string `json:"status"`
}

func (s *Server) createObject(w http.ResponseWriter, r *http.Request) {
	var body createObjectReq
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		respondError(w, r, http.StatusBadRequest, "No data provided")
		return
	}
	name := strings.TrimSpace(body.Name)
	address := strings.TrimSpace(body.Address)
	if name == "" || address == "" {
		respondError(w, r, http.StatusBadRequest, "name and address are required")
		return
	}
	status := objects.StatusActive
	if body.Status != "" {
		status = objects.Status(body.Status)
		if !objects.ValidStatus(status) {
			respondError(w, r, http.StatusBadRequest, "unknown status value")
			return
		}
	}

	o, err := s.objects.Create(r.Context(), name, address, status)
	if err != nil {
		s.log.Error("create object", "err", err)
		respondError(w, r, http.StatusInternalServerError, "Internal server error")
		return
	}
	render.Status(r, http.StatusCreated)
	render.JSON(w, r, toObjectJSON(o))
}

type updateObjectReq struct {
	Name    *string `json:"name"`
	Address *string `json:"address"`
	Status  *string `json:"status"`
}

func (s *Server) updateObject(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(r)
	if !ok {
		respondError(w, r, http.StatusNotFound, "Object not found")
		return
	}
	var body updateObjectReq
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		respondError(w, r, http.StatusBadRequest, "No data provided")
		return
	}
	if body.Name != nil && strings.TrimSpace(*body.Name) == "" {
		respondError(w, r, http.StatusBadRequest, "name must not be empty")
		return
	}
	var status *objects.Status
	if body.Status != nil {
		st := objects.Status(*body.Status)
		if !objects.ValidStatus(st) {
			respondError(w, r, http.StatusBadRequest, "unknown status value")
			return
		}
		status = &st
	}

	o, err := s.objects.Update(r.Context(), id, body.Name, body.Address, status)
	if err != nil {
		s.log.Error("update object", "err", err)
		respondError(w, r, http.StatusInternalServerError, "Internal server error")
		return
	}
	if o == nil {
		respondError(w, r, http.StatusNotFound, "Object not found")
		return
	}
	render.JSON(w, r, toObjectJSON(o))
}

func (s *Server) deleteObject(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(r)
	if !ok {
		respondError(w, r, http.StatusNotFound, "Object not found")
		return
	}
	deleted, err := s.objects.Delete(r.Context(), id)
	if err != nil {
		s.log.Error("delete object", "err", err)
		respondError(w, r, http.StatusInternalServerError, "Internal server error")
		return
	}
	if !deleted {
		respondError(w, r, http.StatusNotFound, "Object not found")
		return
	}
	render.JSON(w, r, map[string]bool{"success": true})
}
