package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/sightline/sightline/internal/database"
	"github.com/sightline/sightline/internal/models"
	"github.com/sightline/sightline/internal/scanner"
	"github.com/sightline/sightline/internal/suggest"
)

// ownerHeader carries the authenticated user from the fronting proxy.
const ownerHeader = "X-Forwarded-User"

type scanRequest struct {
	URL string `json:"url"`
}

type listScansResponse struct {
	Scans []models.ScanRecord `json:"scans"`
	Count int                 `json:"count"`
}

type suggestionRequest struct {
	HTML  string       `json:"html"`
	Issue models.Issue `json:"issue"`
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	if s.store != nil {
		if err := s.store.Ping(r.Context()); err != nil {
			s.logger.Error("Health check failed", "error", err)
			s.respondJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "degraded"})
			return
		}
	}
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleCreateScan(w http.ResponseWriter, r *http.Request) {
	var req scanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body", "")
		return
	}

	ctx := r.Context()
	if s.scanTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.scanTimeout)
		defer cancel()
	}

	result, err := s.scans.Scan(ctx, req.URL)
	if err != nil {
		s.respondScanError(w, err)
		return
	}

	record := models.NewScanRecord(req.URL, scanner.RegistrableDomain(req.URL), r.Header.Get(ownerHeader), result)
	if s.store != nil {
		if err := s.store.SaveScan(r.Context(), record); err != nil {
			s.logger.Error("Persisting scan failed", "scan_id", record.ID.String(), "error", err)
			s.respondError(w, http.StatusInternalServerError, "persisting scan", "")
			return
		}
	}

	s.respondJSON(w, http.StatusCreated, record)
}

func (s *Server) handleGetScan(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		s.respondError(w, http.StatusServiceUnavailable, "scan storage is not configured", "")
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid scan id", "")
		return
	}

	record, err := s.store.GetScan(r.Context(), id)
	if errors.Is(err, database.ErrNotFound) {
		s.respondError(w, http.StatusNotFound, "scan not found", "")
		return
	}
	if err != nil {
		s.logger.Error("Loading scan failed", "scan_id", id.String(), "error", err)
		s.respondError(w, http.StatusInternalServerError, "loading scan", "")
		return
	}

	s.respondJSON(w, http.StatusOK, record)
}

func (s *Server) handleListScans(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		s.respondError(w, http.StatusServiceUnavailable, "scan storage is not configured", "")
		return
	}

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			s.respondError(w, http.StatusBadRequest, "invalid limit", "")
			return
		}
		limit = parsed
	}

	records, err := s.store.ListScans(r.Context(), r.URL.Query().Get("domain"), limit)
	if err != nil {
		s.logger.Error("Listing scans failed", "error", err)
		s.respondError(w, http.StatusInternalServerError, "listing scans", "")
		return
	}

	s.respondJSON(w, http.StatusOK, listScansResponse{Scans: records, Count: len(records)})
}

func (s *Server) handleCreateSuggestion(w http.ResponseWriter, r *http.Request) {
	if s.suggestions == nil {
		s.respondError(w, http.StatusServiceUnavailable, "suggestions are not configured", "")
		return
	}

	var req suggestionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body", "")
		return
	}

	suggestion, err := s.suggestions.Suggest(r.Context(), req.Issue, req.HTML)
	if errors.Is(err, suggest.ErrInvalidInput) {
		s.respondError(w, http.StatusBadRequest, err.Error(), "")
		return
	}
	if err != nil {
		s.logger.Error("Suggestion failed", "issue_code", req.Issue.Code, "error", err)
		s.respondError(w, http.StatusInternalServerError, "generating suggestion", "")
		return
	}

	s.respondJSON(w, http.StatusOK, suggestion)
}
