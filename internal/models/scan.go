package models

import (
	"time"

	"github.com/google/uuid"
)

// Scan phases, in the order a healthy scan moves through them.
const (
	PhaseIdle           = "idle"
	PhaseBrowserOpening = "browser_opening"
	PhaseNavigating     = "navigating"
	PhaseDetecting      = "detecting"
	PhaseTesting        = "testing"
	PhaseEnriching      = "enriching"
	PhaseScoring        = "scoring"
	PhaseComplete       = "complete"
	PhaseFailed         = "failed"
)

// ScanResult is the outcome of a single page scan.
type ScanResult struct {
	StartTime     time.Time `json:"start_time"`
	EndTime       time.Time `json:"end_time"`
	DocumentTitle string    `json:"document_title"`
	PageURL       string    `json:"page_url"`
	Issues        []Issue   `json:"issues"`
	Score         int       `json:"score"`
	HasForm       bool      `json:"has_form"`
}

// Duration reports how long the scan took.
func (r *ScanResult) Duration() time.Duration {
	return r.EndTime.Sub(r.StartTime)
}

// ScanRecord is a persisted scan with its request context.
type ScanRecord struct {
	CreatedAt     time.Time `json:"created_at"`
	URL           string    `json:"url"`
	Domain        string    `json:"domain"`
	DocumentTitle string    `json:"document_title"`
	PageURL       string    `json:"page_url"`
	OwnerID       string    `json:"owner_id,omitempty"`
	Issues        []Issue   `json:"issues"`
	Score         int       `json:"score"`
	ID            uuid.UUID `json:"id"`
	HasForm       bool      `json:"has_form"`
}

// NewScanRecord builds a record for a completed scan.
func NewScanRecord(url, domain, ownerID string, result *ScanResult) *ScanRecord {
	return &ScanRecord{
		ID:            uuid.New(),
		URL:           url,
		Domain:        domain,
		DocumentTitle: result.DocumentTitle,
		PageURL:       result.PageURL,
		Score:         result.Score,
		HasForm:       result.HasForm,
		Issues:        result.Issues,
		OwnerID:       ownerID,
		CreatedAt:     time.Now().UTC(),
	}
}

// Summary provides high-level statistics for a scan result.
type Summary struct {
	Errors   int `json:"errors"`
	Warnings int `json:"warnings"`
	Notices  int `json:"notices"`
	Total    int `json:"total"`
}

// Summarize tallies a result's issues.
func (r *ScanResult) Summarize() Summary {
	e, w, n := CountByType(r.Issues)
	return Summary{
		Errors:   e,
		Warnings: w,
		Notices:  n,
		Total:    len(r.Issues),
	}
}
