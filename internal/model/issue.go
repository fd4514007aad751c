package model

import "strings"

// Severity is the tier of a detected data-quality issue
type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityWarning  Severity = "warning"
	SeverityInfo     Severity = "info"
)

// NormalizeSeverity maps any unrecognized value to info
func NormalizeSeverity(s string) Severity {
	switch Severity(strings.ToLower(strings.TrimSpace(s))) {
	case SeverityCritical:
		return SeverityCritical
	case SeverityWarning:
		return SeverityWarning
	default:
		return SeverityInfo
	}
}

// Rank orders severities critical > warning > info
func (s Severity) Rank() int {
	switch s {
	case SeverityCritical:
		return 2
	case SeverityWarning:
		return 1
	default:
		return 0
	}
}

// Issue is one detected defect on a column
type Issue struct {
	Severity string `json:"severity"`
	Issue    string `json:"issue"`
	Type     string `json:"type"`
}

// Level returns the normalized severity of the issue
func (i Issue) Level() Severity {
	return NormalizeSeverity(i.Severity)
}

// IssueHistogram counts issues per severity. It is always derived from a
// ProfileResult, never updated in place.
type IssueHistogram struct {
	Critical int `json:"critical"`
	Warning  int `json:"warning"`
	Info     int `json:"info"`
}

// Total returns the number of issues across all severities
func (h IssueHistogram) Total() int {
	return h.Critical + h.Warning + h.Info
}
