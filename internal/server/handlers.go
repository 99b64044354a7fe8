package server

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/jonathan/formation-finder/internal/types"
)

// Request body limits
const (
	maxSearchBodyBytes = 16 << 10
	maxPlaceBodyBytes  = 1 << 20
)

// handleSearch answers a search posted as JSON
func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	var req types.SearchRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxSearchBodyBytes)).Decode(&req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	s.search(w, r, req)
}

// handleSearchQuery answers a search given as query parameters
func (s *Server) handleSearchQuery(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	s.search(w, r, types.SearchRequest{
		Occupation: q.Get("occupation"),
		City:       q.Get("city"),
		Level:      q.Get("level"),
	})
}

func (s *Server) search(w http.ResponseWriter, r *http.Request, req types.SearchRequest) {
	resp, err := s.service.Search(r.Context(), req)
	if err != nil {
		s.serviceError(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, resp)
}

// handlePlace fills map coordinates for already-ranked records
func (s *Server) handlePlace(w http.ResponseWriter, r *http.Request) {
	var req types.PlaceRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxPlaceBodyBytes)).Decode(&req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	resp, err := s.service.Place(r.Context(), req)
	if err != nil {
		s.serviceError(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, resp)
}

// handleOccupations lists the supported occupations
func (s *Server) handleOccupations(w http.ResponseWriter, _ *http.Request) {
	s.jsonResponse(w, http.StatusOK, map[string]any{"occupations": s.service.Occupations()})
}

// serviceError maps a service failure to its status. Unexpected errors are logged
// and reported without detail.
func (s *Server) serviceError(w http.ResponseWriter, r *http.Request, err error) {
	status := HTTPStatus(err)
	if status == http.StatusInternalServerError {
		s.logger.Error("request failed",
			zap.String("path", r.URL.Path),
			zap.String("request_id", RequestID(r.Context())),
			zap.Error(err))
		s.errorResponse(w, status, "internal server error")
		return
	}
	s.logger.Info("request rejected",
		zap.String("path", r.URL.Path),
		zap.String("request_id", RequestID(r.Context())),
		zap.Int("status", status),
		zap.Error(err))
	s.errorResponse(w, status, err.Error())
}
