package models

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSummarize(t *testing.T) {
	result := &ScanResult{
		Issues: []Issue{
			{Code: "a", Type: IssueTypeError, Message: "m"},
			{Code: "b", Type: IssueTypeError, Message: "m"},
			{Code: "c", Type: IssueTypeWarning, Message: "m"},
			{Code: "d", Type: IssueTypeNotice, Message: "m"},
		},
	}

	summary := result.Summarize()
	assert.Equal(t, 2, summary.Errors)
	assert.Equal(t, 1, summary.Warnings)
	assert.Equal(t, 1, summary.Notices)
	assert.Equal(t, 4, summary.Total)
}

func TestSummarizeEmpty(t *testing.T) {
	summary := (&ScanResult{}).Summarize()
	assert.Zero(t, summary.Errors)
	assert.Zero(t, summary.Total)
}

func TestDuration(t *testing.T) {
	start := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	result := &ScanResult{StartTime: start, EndTime: start.Add(3 * time.Second)}
	assert.Equal(t, 3*time.Second, result.Duration())
}

func TestNewScanRecord(t *testing.T) {
	result := &ScanResult{
		DocumentTitle: "Example Domain",
		PageURL:       "https://example.com/",
		Score:         93,
		HasForm:       true,
		Issues:        []Issue{{Code: "a", Type: IssueTypeError, Message: "m"}},
	}

	record := NewScanRecord("https://example.com", "example.com", "alice", result)

	require.NotNil(t, record)
	assert.NotEqual(t, uuid.Nil, record.ID)
	assert.Equal(t, "https://example.com", record.URL)
	assert.Equal(t, "example.com", record.Domain)
	assert.Equal(t, "alice", record.OwnerID)
	assert.Equal(t, "Example Domain", record.DocumentTitle)
	assert.Equal(t, "https://example.com/", record.PageURL)
	assert.Equal(t, 93, record.Score)
	assert.True(t, record.HasForm)
	assert.Equal(t, result.Issues, record.Issues)
	assert.WithinDuration(t, time.Now().UTC(), record.CreatedAt, time.Second)
}

func TestNewScanRecordsGetDistinctIDs(t *testing.T) {
	result := &ScanResult{Score: 100}
	first := NewScanRecord("https://example.com", "example.com", "", result)
	second := NewScanRecord("https://example.com", "example.com", "", result)
	assert.NotEqual(t, first.ID, second.ID)
}
