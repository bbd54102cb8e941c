package server

import (
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/MrEthical07/fittrack/internal/stores"
	"github.com/MrEthical07/fittrack/middleware"
)

// dateLayout is the day-only form accepted by the date query parameters.
const dateLayout = time.DateOnly

// handleListWeights is the handler for the GET /users/{userId}/weights HTTP
// API.
func (s *Server) handleListWeights(w http.ResponseWriter, r *http.Request) {
	id, ok := selfOrAdmin(w, r)
	if !ok {
		return
	}

	f, iss := weightFilter(r.URL.Query())
	if iss != nil {
		writeValidation(w, []issue{*iss})

		return
	}

	if !s.userExists(w, r, id) {
		return
	}

	entries, err := s.store.ListWeights(r.Context(), id, f)
	if err != nil {
		s.writeError(w, r, "listing weights", err)

		return
	}

	middleware.WriteJSON(w, http.StatusOK, entries)
}

// weightFilter parses the startDate, endDate, source and limit parameters.
// An endDate without a time covers the whole day.
func weightFilter(q url.Values) (f stores.WeightFilter, iss *issue) {
	var err error
	if v := q.Get("startDate"); v != "" {
		if f.Start, err = parseDate(v); err != nil {
			return f, &issue{Code: "invalid_date", Path: []string{"startDate"}, Message: "startDate must be a date"}
		}
	}

	if v := q.Get("endDate"); v != "" {
		if f.End, err = parseDate(v); err != nil {
			return f, &issue{Code: "invalid_date", Path: []string{"endDate"}, Message: "endDate must be a date"}
		}
		if len(v) == len(dateLayout) {
			f.End = f.End.Add(24*time.Hour - time.Nanosecond)
		}
	}

	switch src := stores.WeightSource(q.Get("source")); src {
	case "", stores.WeightSourceManual, stores.WeightSourceProgress, stores.WeightSourceProfileUpdate:
		f.Source = src
	default:
		return f, &issue{
			Code:    "invalid_enum_value",
			Path:    []string{"source"},
			Message: "source must be one of: MANUAL PROGRESS PROFILE_UPDATE",
		}
	}

	if v := q.Get("limit"); v != "" {
		f.Limit, err = strconv.Atoi(v)
		if err != nil || f.Limit < 1 {
			return f, &issue{Code: "too_small", Path: []string{"limit"}, Message: "limit must be a positive integer"}
		}
	}

	return f, nil
}

func parseDate(v string) (t time.Time, err error) {
	if t, err = time.Parse(dateLayout, v); err == nil {
		return t, nil
	}

	return time.Parse(time.RFC3339, v)
}

type addWeightRequest struct {
	Weight float64             `json:"weight" validate:"gt=0,lt=700"`
	Date   time.Time           `json:"date"`
	Source stores.WeightSource `json:"source" validate:"omitempty,oneof=MANUAL PROGRESS PROFILE_UPDATE"`
	Notes  string              `json:"notes" validate:"max=500"`
}

// handleAddWeight is the handler for the POST /users/{userId}/weights HTTP
// API.
func (s *Server) handleAddWeight(w http.ResponseWriter, r *http.Request) {
	id, ok := selfOrAdmin(w, r)
	if !ok {
		return
	}

	req := &addWeightRequest{}
	if !s.decode(w, r, req) || !s.userExists(w, r, id) {
		return
	}

	e := &stores.WeightEntry{
		UserID: id,
		Weight: req.Weight,
		Date:   req.Date,
		Source: req.Source,
		Notes:  req.Notes,
	}
	if err := s.store.AddWeight(r.Context(), e); err != nil {
		s.writeError(w, r, "adding weight", err)

		return
	}

	middleware.WriteJSON(w, http.StatusCreated, e)
}

// handleListWorkouts is the handler for the GET /users/{userId}/workouts
// HTTP API.
func (s *Server) handleListWorkouts(w http.ResponseWriter, r *http.Request) {
	id, ok := selfOrAdmin(w, r)
	if !ok || !s.userExists(w, r, id) {
		return
	}

	ws, err := s.store.ListWorkouts(r.Context(), id)
	if err != nil {
		s.writeError(w, r, "listing workouts", err)

		return
	}

	middleware.WriteJSON(w, http.StatusOK, ws)
}

type createWorkoutRequest struct {
	Name           string    `json:"name" validate:"required,min=1,max=255"`
	Date           time.Time `json:"date"`
	Duration       int       `json:"duration" validate:"gte=0,lte=1440"`
	CaloriesBurned float64   `json:"caloriesBurned" validate:"gte=0"`
	Notes          string    `json:"notes" validate:"max=1000"`
	Rating         *int      `json:"rating" validate:"omitempty,min=1,max=5"`
	Completed      bool      `json:"completed"`
}

// handleCreateWorkout is the handler for the POST /users/{userId}/workouts
// HTTP API.
func (s *Server) handleCreateWorkout(w http.ResponseWriter, r *http.Request) {
	id, ok := selfOrAdmin(w, r)
	if !ok {
		return
	}

	req := &createWorkoutRequest{}
	if !s.decode(w, r, req) || !s.userExists(w, r, id) {
		return
	}

	wo := &stores.Workout{
		UserID:         id,
		Name:           req.Name,
		Date:           req.Date,
		Duration:       req.Duration,
		CaloriesBurned: req.CaloriesBurned,
		Notes:          req.Notes,
		Rating:         req.Rating,
		Completed:      req.Completed,
	}
	if err := s.store.CreateWorkout(r.Context(), wo); err != nil {
		s.writeError(w, r, "creating workout", err)

		return
	}

	middleware.WriteJSON(w, http.StatusCreated, wo)
}

// userExists writes 404 and returns false when no user has id.
func (s *Server) userExists(w http.ResponseWriter, r *http.Request, id int64) (ok bool) {
	if _, err := s.store.User(r.Context(), id); err != nil {
		s.writeError(w, r, "reading user", err)

		return false
	}

	return true
}
