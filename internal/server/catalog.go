package server

import (
	"net/http"

	"github.com/MrEthical07/fittrack/internal/stores"
	"github.com/MrEthical07/fittrack/middleware"
)

// handleListFoods is the handler for the GET /foods HTTP API.
func (s *Server) handleListFoods(w http.ResponseWriter, r *http.Request) {
	foods, err := s.store.ListFoods(r.Context())
	if err != nil {
		s.writeError(w, r, "listing foods", err)

		return
	}

	middleware.WriteJSON(w, http.StatusOK, foods)
}

type createFoodRequest struct {
	Name        string  `json:"name" validate:"required,min=1,max=255"`
	Brand       string  `json:"brand" validate:"max=255"`
	Category    string  `json:"category" validate:"max=100"`
	ServingSize float64 `json:"servingSize" validate:"gt=0"`
	ServingUnit string  `json:"servingUnit" validate:"required,max=16"`
	Calories    float64 `json:"calories" validate:"gte=0"`
	Protein     float64 `json:"protein" validate:"gte=0"`
	Fat         float64 `json:"fat" validate:"gte=0"`
	Carbs       float64 `json:"carbs" validate:"gte=0"`
	Picture     string  `json:"picture" validate:"omitempty,url"`
	Barcode     *string `json:"barcode" validate:"omitempty,min=1,max=64"`
}

// handleCreateFood is the handler for the POST /foods HTTP API.  The caller
// becomes the creator.
func (s *Server) handleCreateFood(w http.ResponseWriter, r *http.Request) {
	req := &createFoodRequest{}
	if !s.decode(w, r, req) {
		return
	}

	ac, _ := middleware.AuthFromContext(r.Context())
	f := &stores.Food{
		Name:        req.Name,
		Brand:       req.Brand,
		Category:    req.Category,
		ServingSize: req.ServingSize,
		ServingUnit: req.ServingUnit,
		Calories:    req.Calories,
		Protein:     req.Protein,
		Fat:         req.Fat,
		Carbs:       req.Carbs,
		Picture:     req.Picture,
		Barcode:     req.Barcode,
		CreatedBy:   ac.User.ID,
	}
	if err := s.store.CreateFood(r.Context(), f); err != nil {
		s.writeError(w, r, "creating food", err)

		return
	}

	middleware.WriteJSON(w, http.StatusOK, f)
}

// handleListExercises is the handler for the GET /exercises HTTP API.  The
// name query parameter filters by substring.
func (s *Server) handleListExercises(w http.ResponseWriter, r *http.Request) {
	exs, err := s.store.ListExercises(r.Context(), r.URL.Query().Get("name"))
	if err != nil {
		s.writeError(w, r, "listing exercises", err)

		return
	}

	middleware.WriteJSON(w, http.StatusOK, exs)
}

type createExerciseRequest struct {
	Name        string `json:"name" validate:"required,min=3,max=300"`
	Notes       string `json:"notes" validate:"omitempty,min=1,max=400"`
	Alternative string `json:"alternative" validate:"omitempty,min=1,max=100"`
	Video       string `json:"video" validate:"omitempty,url"`
}

// handleCreateExercise is the handler for the POST /exercises HTTP API.
func (s *Server) handleCreateExercise(w http.ResponseWriter, r *http.Request) {
	req := &createExerciseRequest{}
	if !s.decode(w, r, req) {
		return
	}

	e := &stores.Exercise{
		Name:        req.Name,
		Notes:       req.Notes,
		Alternative: req.Alternative,
		Video:       req.Video,
	}
	if err := s.store.CreateExercise(r.Context(), e); err != nil {
		s.writeError(w, r, "creating exercise", err)

		return
	}

	middleware.WriteJSON(w, http.StatusOK, e)
}
