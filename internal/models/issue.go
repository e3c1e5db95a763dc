// Package models contains data structures for Sightline accessibility scans.
package models

import (
	"fmt"
	"strings"
)

// Issue types as constants for type safety and consistency.
const (
	IssueTypeError   = "error"
	IssueTypeWarning = "warning"
	IssueTypeNotice  = "notice"
)

// Issue represents a single accessibility problem found on a page.
type Issue struct {
	// Code is the rule identifier, e.g. "WCAG2AA.Principle1.Guideline1_1.1_1_1.H37".
	Code string `json:"code"`

	// Type classifies the issue as error, warning or notice.
	Type string `json:"type"`

	// Message is the human-readable description of the problem.
	Message string `json:"message"`

	// Context is the HTML fragment surrounding the offending node.
	Context string `json:"context,omitempty"`

	// Selector is a CSS selector locating the offending node.
	Selector string `json:"selector,omitempty"`

	// Runner names the rule engine that produced the issue.
	Runner string `json:"runner,omitempty"`
}

// ValidIssueTypes returns all valid issue types for validation.
func ValidIssueTypes() []string {
	return []string{IssueTypeError, IssueTypeWarning, IssueTypeNotice}
}

// IsValidIssueType checks if an issue type is valid.
func IsValidIssueType(issueType string) bool {
	switch issueType {
	case IssueTypeError, IssueTypeWarning, IssueTypeNotice:
		return true
	default:
		return false
	}
}

// NormalizeIssueType maps rule-engine type codes onto the canonical names.
// Engines report numeric codes (1=error, 2=warning, 3=notice) or strings;
// anything unrecognized is treated as a notice so it is never dropped
// silently but also never hurts the score more than a notice would.
func NormalizeIssueType(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "1", "error", "err":
		return IssueTypeError
	case "2", "warning", "warn":
		return IssueTypeWarning
	case "3", "notice", "info":
		return IssueTypeNotice
	default:
		return IssueTypeNotice
	}
}

// Validate checks that an issue has all required fields.
func (i *Issue) Validate() error {
	if i.Code == "" {
		return fmt.Errorf("issue missing required field: code")
	}
	if i.Message == "" {
		return fmt.Errorf("issue missing required field: message")
	}
	if !IsValidIssueType(i.Type) {
		return fmt.Errorf("issue has invalid type: %q", i.Type)
	}
	return nil
}

// CountByType tallies issues per canonical type.
func CountByType(issues []Issue) (errors, warnings, notices int) {
	for _, issue := range issues {
		switch issue.Type {
		case IssueTypeError:
			errors++
		case IssueTypeWarning:
			warnings++
		case IssueTypeNotice:
			notices++
		}
	}
	return errors, warnings, notices
}
