package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/render"
)

type priceJSON struct {
	ID          string  `json:"id"`
	Category    string  `json:"category"`
	Name        string  `json:"name"`
	Price       int64   `json:"price"`
	Coefficient float64 `json:"coefficient"`
}

func (s *Server) listPrices(w http.ResponseWriter, r *http.Request) {
	list, err := s.prices.List(r.Context())
	if err != nil {
		s.log.Error("list prices", "err", err)
		respondError(w, r, http.StatusInternalServerError, "Internal server error")
		return
	}
	out := make([]priceJSON, 0, len(list))
	for _, it := range list {
		out = append(out, priceJSON{
			ID:          strconv.FormatInt(it.ID, 10),
			Category:    it.Category,
			Name:        it.Name,
			Price:       it.Price,
			Coefficient: it.Coefficient,
		})
	}
	render.JSON(w, r, out)
}

func (s *Server) getPrice(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(r)
	if !ok {
		respondError(w, r, http.StatusNotFound, "Price item not found")
		return
	}
	it, err := s.prices.GetByID(r.Context(), id)
	if err != nil {
		s.log.Error("get price", "err", err)
		respondError(w, r, http.StatusInternalServerError, "Internal server error")
		return
	}
	if it == nil {
		respondError(w, r, http.StatusNotFound, "Price item not found")
		return
	}
	render.JSON(w, r, priceJSON{
		ID:          strconv.FormatInt(it.ID, 10),
		Category:    it.Category,
		Name:        it.Name,
		Price:       it.Price,
		Coefficient: it.Coefficient,
	})
}

type createPriceReq struct {
	Category    string    `json:"category"`
	Name        string    `json:"name"`
	Price       *optMoney `json:"price"`
	Coefficient *float64  `json:"coefficient"`
}

func (s *Server) createPrice(w http.ResponseWriter, r *http.Request) {
	var body createPriceReq
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		respondError(w, r, http.StatusBadRequest, "No data provided")
		return
	}
	category := strings.TrimSpace(body.Category)
	name := strings.TrimSpace(body.Name)
	if category == "" || name == "" {
		respondError(w, r, http.StatusBadRequest, "category and name are required")
		return
	}
	if body.Price == nil || !body.Price.OK || body.Price.Val < 0 {
		respondError(w, r, http.StatusBadRequest, "price must be a non-negative integer")
		return
	}
	coef := 1.0
	if body.Coefficient != nil {
		if *body.Coefficient <= 0 {
			respondError(w, r, http.StatusBadRequest, "coefficient must be positive")
			return
		}
		coef = *body.Coefficient
	}

	it, err := s.prices.Create(r.Context(), category, name, body.Price.Val, coef)
	if err != nil {
		s.log.Error("create price", "err", err)
		respondError(w, r, http.StatusInternalServerError, "Internal server error")
		return
	}
	render.Status(r, http.StatusCreated)
	render.JSON(w, r, priceJSON{
		ID:          strconv.FormatInt(it.ID, 10),
		Category:    it.Category,
		Name:        it.Name,
		Price:       it.Price,
		Coefficient: it.Coefficient,
	})
}

type updatePriceReq struct {
	Category    *string   `json:"category"`
	Name        *string   `json:"name"`
	Price       *optMoney `json:"price"`
	Coefficient *float64  `json:"coefficient"`
}

func (s *Server) updatePrice(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(r)
	if !ok {
		respondError(w, r, http.StatusNotFound, "Price item not found")
		return
	}
	var body updatePriceReq
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		respondError(w, r, http.StatusBadRequest, "No data provided")
		return
	}
	if body.Name != nil && strings.TrimSpace(*body.Name) == "" {
		respondError(w, r, http.StatusBadRequest, "name must not be empty")
		return
	}
	var price *int64
	if body.Price != nil {
		if !body.Price.OK || body.Price.Val < 0 {
			respondError(w, r, http.StatusBadRequest, "price must be a non-negative integer")
			return
		}
		price = &body.Price.Val
	}
	if body.Coefficient != nil && *body.Coefficient <= 0 {
		respondError(w, r, http.StatusBadRequest, "coefficient must be positive")
		return
	}

	it, err := s.prices.Update(r.Context(), id, body.Category, body.Name, price, body.Coefficient)
	if err != nil {
		s.log.Error("update price", "err", err)
		respondError(w, r, http.StatusInternalServerError, "Internal server error")
		return
	}
	if it == nil {
		respondError(w, r, http.StatusNotFound, "Price item not found")
		return
	}
	render.JSON(w, r, priceJSON{
		ID:          strconv.FormatInt(it.ID, 10),
		Category:    it.Category,
		Name:        it.Name,
		Price:       it.Price,
		Coefficient: it.Coefficient,
	})
}

func (s *Server) deletePrice(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(r)
	if !ok {
		respondError(w, r, http.StatusNotFound, "Price item not found")
		return
	}
	deleted, err := s.prices.Delete(r.Context(), id)
	if err != nil {
		s.log.Error("delete price", "err", err)
		respondError(w, r, http.StatusInternalServerError, "Internal server error")
		return
	}
	if !deleted {
		respondError(w, r, http.StatusNotFound, "Price item not found")
		return
	}
	render.JSON(w, r, map[string]bool{"success": true})
}
