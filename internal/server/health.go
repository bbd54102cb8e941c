package server

import (
	"net/http"

	"github.com/MrEthical07/fittrack/middleware"
)

type healthResponse struct {
	Status string `json:"status"`
}

// handleHealth is the handler for the GET /healthz HTTP API.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if err := s.store.Ping(r.Context()); err != nil {
		s.writeError(w, r, "pinging database", err)

		return
	}

	middleware.WriteJSON(w, http.StatusOK, &healthResponse{Status: "ok"})
}
