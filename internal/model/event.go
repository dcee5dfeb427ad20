package model

import (
	"time"
	"unicode/utf8"
)

// Normalized application status constants produced by the upstream
// classifier and carried on every event.
const (
	StatusApplied            = "Applied"
	StatusAssessment         = "Assessment"
	StatusInterviewScheduled = "Interview Scheduled"
	StatusInterviewComplete  = "Interview Complete"
	StatusOffer              = "Offer"
	StatusRejected           = "Rejected"
)

// snippetLen is the maximum number of body bytes included in
// notification snippets.
const snippetLen = 300

// JobEvent is one inbound record representing a possible job-application
// signal. It is produced upstream (classifier over a raw email) and
// consumed exactly once by the resolver.
type JobEvent struct {
	// ID is the internal unique identifier for this event. Generated
	// on first sight if the producer did not assign one.
	ID string `json:"id"`

	// Subject is the email subject line.
	Subject string `json:"subject"`

	// From is the sender address.
	From string `json:"from"`

	// Body is the plain-text email body. Content hashing is computed
	// over this field only.
	Body string `json:"body"`

	// ApplicationID is the external application identifier extracted
	// from the email, if any (e.g. a requisition number).
	ApplicationID string `json:"application_id,omitempty"`

	// CompanyName is the company the application belongs to.
	CompanyName string `json:"company_name"`

	// JobTitle is the position the application is for.
	JobTitle string `json:"job_title"`

	// Status is the inferred application status (use Status* constants).
	Status string `json:"job_status"`

	// Date is when the email was sent.
	Date time.Time `json:"date"`
}

// Snippet returns up to the first 300 bytes of the body for use in
// notification payloads, trimmed back so a multi-byte rune is never
// split at the cut.
func (e JobEvent) Snippet() string {
	if len(e.Body) <= snippetLen {
		return e.Body
	}
	cut := snippetLen
	for cut > 0 && !utf8.RuneStart(e.Body[cut]) {
		cut--
	}
	return e.Body[:cut]
}
