package suggest

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/sightline/sightline/internal/models"
)

// BuildPrompt renders the fixed prompt both AI providers receive. The
// HTML context is truncated to maxContext bytes so oversized pages do
// not blow the provider's input limits.
func BuildPrompt(issue models.Issue, html string, maxContext int) string {
	var sb strings.Builder

	sb.WriteString("You are a web accessibility expert. ")
	sb.WriteString("Propose a concrete fix for the following issue found on a scanned page.\n\n")

	sb.WriteString("## Issue\n")
	sb.WriteString(fmt.Sprintf("Code: %s\n", issue.Code))
	sb.WriteString(fmt.Sprintf("Severity: %s\n", issue.Type))
	sb.WriteString(fmt.Sprintf("Message: %s\n", issue.Message))
	if issue.Selector != "" {
		sb.WriteString(fmt.Sprintf("Selector: %s\n", issue.Selector))
	}
	if issue.Context != "" {
		sb.WriteString(fmt.Sprintf("Element: %s\n", truncate(issue.Context, maxContext)))
	}

	sb.WriteString("\n## Page HTML (may be truncated)\n")
	sb.WriteString(truncate(html, maxContext))

	sb.WriteString("\n\n## Instructions\n")
	sb.WriteString("Reply with the corrected markup or a short, specific remediation step. ")
	sb.WriteString("No preamble, no restating the problem.\n")

	return sb.String()
}

// truncate cuts s to at most max bytes without splitting a rune.
func truncate(s string, max int) string {
	if max <= 0 || len(s) <= max {
		return s
	}
	cut := s[:max]
	for len(cut) > 0 && !utf8.ValidString(cut) {
		cut = cut[:len(cut)-1]
	}
	return cut + "..."
}
