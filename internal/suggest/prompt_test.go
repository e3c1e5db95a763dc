package suggest

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"

	"github.com/sightline/sightline/internal/models"
)

func TestBuildPrompt(t *testing.T) {
	issue := models.Issue{
		Code:     "WCAG2AA.Principle1.Guideline1_1.1_1_1.H37",
		Type:     models.IssueTypeError,
		Message:  "Img element missing an alt attribute.",
		Selector: "html > body > img:nth-child(2)",
		Context:  `<img src="logo.png">`,
	}

	prompt := BuildPrompt(issue, "<html><body><img src=\"logo.png\"></body></html>", 2048)

	assert.Contains(t, prompt, "## Issue")
	assert.Contains(t, prompt, "## Page HTML")
	assert.Contains(t, prompt, "## Instructions")
	assert.Contains(t, prompt, issue.Code)
	assert.Contains(t, prompt, issue.Message)
	assert.Contains(t, prompt, issue.Selector)
	assert.Contains(t, prompt, issue.Context)
	assert.Contains(t, prompt, "Severity: error")
}

func TestBuildPromptOmitsEmptyFields(t *testing.T) {
	issue := models.Issue{
		Code:    "WCAG2AA.Principle1.Guideline1_4.1_4_3.G18",
		Type:    models.IssueTypeWarning,
		Message: "Insufficient contrast.",
	}

	prompt := BuildPrompt(issue, "<html></html>", 2048)
	assert.NotContains(t, prompt, "Selector:")
	assert.NotContains(t, prompt, "Element:")
}

func TestBuildPromptTruncatesHTML(t *testing.T) {
	issue := models.Issue{Code: "X", Type: models.IssueTypeError, Message: "m"}
	html := strings.Repeat("<div>padding</div>", 1000)

	prompt := BuildPrompt(issue, html, 100)

	assert.Less(t, len(prompt), 1000)
	assert.Contains(t, prompt, "...")
	assert.Contains(t, prompt, "## Instructions", "the trailing sections survive truncation")
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		name string
		in   string
		max  int
		want string
	}{
		{name: "under limit", in: "short", max: 100, want: "short"},
		{name: "exact limit", in: "12345", max: 5, want: "12345"},
		{name: "over limit", in: "1234567890", max: 4, want: "1234..."},
		{name: "zero max means unlimited", in: "anything", max: 0, want: "anything"},
		{name: "negative max means unlimited", in: "anything", max: -1, want: "anything"},
		{name: "empty", in: "", max: 10, want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, truncate(tt.in, tt.max))
		})
	}
}

func TestTruncateNeverSplitsRunes(t *testing.T) {
	in := strings.Repeat("é", 50)
	for max := 1; max < len(in); max++ {
		got := truncate(in, max)
		assert.True(t, utf8.ValidString(got), "max=%d produced invalid UTF-8", max)
	}
}
