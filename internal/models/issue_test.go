package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeIssueType(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{name: "numeric error", raw: "1", want: IssueTypeError},
		{name: "numeric warning", raw: "2", want: IssueTypeWarning},
		{name: "numeric notice", raw: "3", want: IssueTypeNotice},
		{name: "string error", raw: "error", want: IssueTypeError},
		{name: "string warning", raw: "warning", want: IssueTypeWarning},
		{name: "string notice", raw: "notice", want: IssueTypeNotice},
		{name: "uppercase", raw: "ERROR", want: IssueTypeError},
		{name: "padded", raw: " warning ", want: IssueTypeWarning},
		{name: "info alias", raw: "info", want: IssueTypeNotice},
		{name: "unknown falls back to notice", raw: "critical", want: IssueTypeNotice},
		{name: "empty falls back to notice", raw: "", want: IssueTypeNotice},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeIssueType(tt.raw))
		})
	}
}

func TestIssueValidate(t *testing.T) {
	tests := []struct {
		name    string
		issue   Issue
		wantErr string
	}{
		{
			name: "valid issue",
			issue: Issue{
				Code:    "WCAG2AA.Principle1.Guideline1_1.1_1_1.H37",
				Type:    IssueTypeError,
				Message: "Img element missing an alt attribute",
			},
		},
		{
			name:    "missing code",
			issue:   Issue{Type: IssueTypeError, Message: "msg"},
			wantErr: "code",
		},
		{
			name:    "missing message",
			issue:   Issue{Code: "X", Type: IssueTypeError},
			wantErr: "message",
		},
		{
			name:    "invalid type",
			issue:   Issue{Code: "X", Type: "fatal", Message: "msg"},
			wantErr: "invalid type",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.issue.Validate()
			if tt.wantErr == "" {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestCountByType(t *testing.T) {
	issues := []Issue{
		{Code: "a", Type: IssueTypeError, Message: "m"},
		{Code: "b", Type: IssueTypeError, Message: "m"},
		{Code: "c", Type: IssueTypeWarning, Message: "m"},
		{Code: "d", Type: IssueTypeNotice, Message: "m"},
		{Code: "e", Type: IssueTypeNotice, Message: "m"},
		{Code: "f", Type: IssueTypeNotice, Message: "m"},
	}

	e, w, n := CountByType(issues)
	assert.Equal(t, 2, e)
	assert.Equal(t, 1, w)
	assert.Equal(t, 3, n)

	e, w, n = CountByType(nil)
	assert.Zero(t, e)
	assert.Zero(t, w)
	assert.Zero(t, n)
}

func TestScanResultSummarize(t *testing.T) {
	result := ScanResult{
		Issues: []Issue{
			{Code: "a", Type: IssueTypeError, Message: "m"},
			{Code: "b", Type: IssueTypeWarning, Message: "m"},
			{Code: "c", Type: IssueTypeWarning, Message: "m"},
		},
	}

	got := result.Summarize()
	assert.Equal(t, Summary{Errors: 1, Warnings: 2, Notices: 0, Total: 3}, got)
}
