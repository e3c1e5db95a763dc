package ui

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sightline/sightline/internal/models"
)

func TestIssueTag(t *testing.T) {
	tests := []struct {
		issueType string
		want      string
	}{
		{issueType: models.IssueTypeError, want: "Error"},
		{issueType: models.IssueTypeWarning, want: "Warning"},
		{issueType: models.IssueTypeNotice, want: "Notice"},
		{issueType: "WARNING", want: "Warning"},
		{issueType: "bogus", want: "Notice"},
	}

	for _, tt := range tests {
		t.Run(tt.issueType, func(t *testing.T) {
			assert.Contains(t, IssueTag(tt.issueType), tt.want)
		})
	}
}

func TestScoreBadge(t *testing.T) {
	assert.Contains(t, ScoreBadge(100), "100/100")
	assert.Contains(t, ScoreBadge(0), "0/100")
}

func TestRenderScanResult(t *testing.T) {
	result := &models.ScanResult{
		StartTime:     time.Now().Add(-3 * time.Second),
		EndTime:       time.Now(),
		DocumentTitle: "Example Domain",
		PageURL:       "https://example.com/",
		Score:         93,
		HasForm:       true,
		Issues: []models.Issue{
			{Code: "WCAG2AA.Principle1.Guideline1_1.1_1_1.H37", Type: models.IssueTypeError, Message: "Img element missing an alt attribute.", Selector: "html > body > img"},
		},
	}

	out := RenderScanResult("https://example.com/", result)

	assert.Contains(t, out, "Example Domain")
	assert.Contains(t, out, "https://example.com/")
	assert.Contains(t, out, "93/100")
	assert.Contains(t, out, "1 errors, 0 warnings, 0 notices")
	assert.Contains(t, out, "Img element missing an alt attribute.")
	assert.Contains(t, out, "WCAG2AA.Principle1.Guideline1_1.1_1_1.H37")
	assert.Contains(t, out, "html > body > img")
	assert.Contains(t, out, "detected")
}

func TestRenderScanResultUntitled(t *testing.T) {
	out := RenderScanResult("https://example.com/", &models.ScanResult{Score: 100})
	assert.Contains(t, out, "(untitled page)")
}

func TestRenderSuggestion(t *testing.T) {
	out := RenderSuggestion(&models.FixSuggestion{
		RuleCode: "WCAG2AA.Principle1.Guideline1_4.1_4_3.G18",
		Text:     "Increase the contrast.",
		Provider: models.SuggestionSourceTemplate,
	})

	assert.Contains(t, out, "WCAG2AA.Principle1.Guideline1_4.1_4_3.G18")
	assert.Contains(t, out, "rule-based")
	assert.Contains(t, out, "Increase the contrast.")
}

func TestRenderScanList(t *testing.T) {
	records := []models.ScanRecord{
		*models.NewScanRecord("https://example.com/", "example.com", "", &models.ScanResult{Score: 88}),
		*models.NewScanRecord("https://other.org/", "other.org", "", &models.ScanResult{
			Score:  42,
			Issues: []models.Issue{{Code: "X", Type: models.IssueTypeError, Message: "m"}},
		}),
	}

	out, err := RenderScanList(records)
	require.NoError(t, err)

	assert.Contains(t, out, "DOMAIN")
	assert.Contains(t, out, "example.com")
	assert.Contains(t, out, "other.org")
	assert.Contains(t, out, "88")
	assert.Contains(t, out, "42")
	assert.Contains(t, out, records[0].ID.String())
}

func TestRenderJSON(t *testing.T) {
	out, err := RenderJSON(map[string]int{"score": 93})
	require.NoError(t, err)
	assert.JSONEq(t, `{"score": 93}`, out)
	assert.True(t, strings.HasSuffix(out, "\n"))
}

func TestFormatTimeAgo(t *testing.T) {
	now := time.Now()
	tests := []struct {
		name string
		t    time.Time
		want string
	}{
		{name: "seconds", t: now.Add(-20 * time.Second), want: "just now"},
		{name: "one minute", t: now.Add(-70 * time.Second), want: "1 minute ago"},
		{name: "minutes", t: now.Add(-10 * time.Minute), want: "10 minutes ago"},
		{name: "one hour", t: now.Add(-90 * time.Minute), want: "1 hour ago"},
		{name: "days", t: now.Add(-49 * time.Hour), want: "2 days ago"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, formatTimeAgo(tt.t))
		})
	}
}
