package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/sightline/sightline/internal/scanner"
)

type errorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind,omitempty"`
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("Encoding response failed", "error", err)
	}
}

func (s *Server) respondError(w http.ResponseWriter, status int, message, kind string) {
	s.respondJSON(w, status, errorResponse{Error: message, Kind: kind})
}

// respondScanError maps scan failures onto HTTP statuses: caller
// mistakes are 4xx, unreachable or broken pages are gateway errors,
// everything else is a 500.
func (s *Server) respondScanError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case scanner.IsInvalidInput(err):
		status = http.StatusBadRequest
	case scanner.IsNavigationTimeout(err) || errors.Is(err, context.DeadlineExceeded):
		status = http.StatusGatewayTimeout
	case scanner.IsNavigationError(err) || scanner.IsEngineFailure(err):
		status = http.StatusBadGateway
	}

	if status >= http.StatusInternalServerError {
		s.logger.Error("Scan failed", "kind", string(scanner.KindOf(err)), "error", err)
	}
	s.respondError(w, status, err.Error(), string(scanner.KindOf(err)))
}
