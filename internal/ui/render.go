// Package ui renders scan results and listings for the terminal.
package ui

import (
	"encoding/json"
	"fmt"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/sightline/sightline/internal/models"
)

// Style definitions.
var (
	// Colors for the three issue severities.
	ErrorColor   = lipgloss.Color("#FF5F56")
	WarningColor = lipgloss.Color("#FFBD2E")
	NoticeColor  = lipgloss.Color("#808080")

	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#00FFFF"))

	scoreGood = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#27C93F"))
	scoreWarn = lipgloss.NewStyle().Bold(true).Foreground(WarningColor)
	scoreBad  = lipgloss.NewStyle().Bold(true).Foreground(ErrorColor)

	labelStyle = lipgloss.NewStyle().Bold(true).Width(10)
	dimStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))

	issueStyles = map[string]lipgloss.Style{
		models.IssueTypeError:   lipgloss.NewStyle().Bold(true).Foreground(ErrorColor),
		models.IssueTypeWarning: lipgloss.NewStyle().Bold(true).Foreground(WarningColor),
		models.IssueTypeNotice:  lipgloss.NewStyle().Foreground(NoticeColor),
	}

	titleCaser = cases.Title(language.English)
)

// IssueTag renders a colored severity label, e.g. "Error".
func IssueTag(issueType string) string {
	canonical := models.NormalizeIssueType(issueType)
	label := titleCaser.String(canonical)
	if style, ok := issueStyles[canonical]; ok {
		return style.Render(label)
	}
	return label
}

// ScoreBadge renders the score colored by band: 90 and above is
// healthy, 50 and above needs work, below that is failing.
func ScoreBadge(score int) string {
	text := fmt.Sprintf("%d/100", score)
	switch {
	case score >= 90:
		return scoreGood.Render(text)
	case score >= 50:
		return scoreWarn.Render(text)
	default:
		return scoreBad.Render(text)
	}
}

// RenderScanResult renders one scan for human eyes.
func RenderScanResult(url string, result *models.ScanResult) string {
	var sb strings.Builder

	title := result.DocumentTitle
	if title == "" {
		title = "(untitled page)"
	}
	sb.WriteString(TitleStyle.Render(title) + "\n")
	sb.WriteString(labelStyle.Render("URL") + url + "\n")
	sb.WriteString(labelStyle.Render("Score") + ScoreBadge(result.Score) + "\n")

	summary := result.Summarize()
	sb.WriteString(labelStyle.Render("Issues") + fmt.Sprintf("%d errors, %d warnings, %d notices",
		summary.Errors, summary.Warnings, summary.Notices) + "\n")
	if result.HasForm {
		sb.WriteString(labelStyle.Render("Forms") + "detected\n")
	}
	sb.WriteString(labelStyle.Render("Duration") + result.Duration().Round(time.Millisecond).String() + "\n")

	if len(result.Issues) > 0 {
		sb.WriteString("\n")
		for _, issue := range result.Issues {
			sb.WriteString(fmt.Sprintf("  %s  %s\n", IssueTag(issue.Type), issue.Message))
			sb.WriteString("    " + dimStyle.Render(issue.Code) + "\n")
			if issue.Selector != "" {
				sb.WriteString("    " + dimStyle.Render(issue.Selector) + "\n")
			}
		}
	}

	return sb.String()
}

// RenderSuggestion renders one fix suggestion for human eyes.
func RenderSuggestion(suggestion *models.FixSuggestion) string {
	var sb strings.Builder
	sb.WriteString(TitleStyle.Render("Suggested fix") + "\n")
	sb.WriteString(labelStyle.Render("Rule") + suggestion.RuleCode + "\n")
	sb.WriteString(labelStyle.Render("Provider") + suggestion.Provider + "\n\n")
	sb.WriteString(suggestion.Text + "\n")
	return sb.String()
}

// RenderScanList renders stored scans as a table.
func RenderScanList(records []models.ScanRecord) (string, error) {
	var sb strings.Builder
	w := tabwriter.NewWriter(&sb, 0, 0, 2, ' ', 0)

	if _, err := fmt.Fprintln(w, "ID\tDOMAIN\tSCORE\tISSUES\tSCANNED"); err != nil {
		return "", fmt.Errorf("writing header: %w", err)
	}

	for _, record := range records {
		if _, err := fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%s\n",
			record.ID,
			record.Domain,
			record.Score,
			len(record.Issues),
			formatTimeAgo(record.CreatedAt),
		); err != nil {
			return "", fmt.Errorf("writing row: %w", err)
		}
	}

	if err := w.Flush(); err != nil {
		return "", fmt.Errorf("flushing table: %w", err)
	}
	return sb.String(), nil
}

// RenderJSON pretty-prints any value for --format json output.
func RenderJSON(v any) (string, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encoding json: %w", err)
	}
	return string(data) + "\n", nil
}

func formatTimeAgo(t time.Time) string {
	duration := time.Since(t)

	switch {
	case duration < time.Minute:
		return "just now"
	case duration < time.Hour:
		minutes := int(duration.Minutes())
		if minutes == 1 {
			return "1 minute ago"
		}
		return fmt.Sprintf("%d minutes ago", minutes)
	case duration < 24*time.Hour:
		hours := int(duration.Hours())
		if hours == 1 {
			return "1 hour ago"
		}
		return fmt.Sprintf("%d hours ago", hours)
	case duration < 7*24*time.Hour:
		days := int(duration.Hours() / 24)
		if days == 1 {
			return "1 day ago"
		}
		return fmt.Sprintf("%d days ago", days)
	default:
		return t.Format("Jan 2, 2006")
	}
}
