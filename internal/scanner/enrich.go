package scanner

import (
	"strings"

	"github.com/sightline/sightline/internal/models"
)

// FormDetectedCode is the code of the synthetic notice appended when a
// page has forms but no form-related issue was reported.
const FormDetectedCode = "WCAG2AA.info.form-detected"

// formDetectedMessage mentions "form" on purpose: a second enrichment
// pass sees it and will not append another notice.
const formDetectedMessage = "Form elements detected on this page. Automated checks found no form-specific issues; manually verify that every form control has a programmatically associated label."

// formTokens are the substrings that mark an issue as form-related.
var formTokens = []string{"form", "input", "select", "label"}

// EnrichIssues appends a synthetic advisory notice when the page has
// forms but none of the reported issues reference them. Existing issues
// are never mutated, removed or reordered; at most one notice is added.
func EnrichIssues(issues []models.Issue, hasForm bool) []models.Issue {
	if !hasForm {
		return issues
	}

	for _, issue := range issues {
		if referencesForm(issue) {
			return issues
		}
	}

	enriched := make([]models.Issue, 0, len(issues)+1)
	enriched = append(enriched, issues...)
	enriched = append(enriched, models.Issue{
		Code:    FormDetectedCode,
		Type:    models.IssueTypeNotice,
		Message: formDetectedMessage,
		Runner:  "sightline",
	})
	return enriched
}

func referencesForm(issue models.Issue) bool {
	selector := strings.ToLower(issue.Selector)
	message := strings.ToLower(issue.Message)
	for _, token := range formTokens {
		if strings.Contains(selector, token) || strings.Contains(message, token) {
			return true
		}
	}
	return false
}
