// ABOUTME: Diagnostic side-channel state holding the latest good report
// ABOUTME: Failures only record an error, the previous report is preserved

package domain

import "time"

// DiagnosticTopic is the side-channel topic carrying diagnostic reports
const DiagnosticTopic = "diagnostic_report"

// DiagnosticState is a snapshot of a consumer's state
type DiagnosticState struct {
	// LastReport is the most recent successfully decoded report, nil when empty
	LastReport *TextPayload `json:"report,omitempty"`

	// LastError describes the most recent decode failure, empty when none
	LastError string `json:"error,omitempty"`

	// UpdatedAt is when LastReport was last replaced
	UpdatedAt *time.Time `json:"updated_at,omitempty"`

	// Received counts every delivery, good or bad
	Received int `json:"received"`
}

// Populated reports whether a report has been received
func (s DiagnosticState) Populated() bool {
	return s.LastReport != nil
}
