package model

import "time"

// TrackedApplication is the durable ledger row for one uniquely hashed
// application event. At most one row exists per content hash. The row is
// created on first sighting and has its status mutated on every detected
// update; it is only ever deleted by retention cleanup.
type TrackedApplication struct {
	// Hash is the hex SHA-256 digest of the originating event body.
	// Primary key.
	Hash string `db:"hash" json:"hash"`

	// UserID identifies the owning user. All matching is scoped to it.
	UserID string `db:"user_id" json:"user_id"`

	// Fingerprint is the normalized title+company digest used for
	// fuzzy matching across differently worded emails.
	Fingerprint string `db:"fingerprint" json:"fingerprint"`

	// EmailAddress is the sender of the originating email.
	EmailAddress string `db:"email_address" json:"email_address"`

	// ApplicationID is the external application identifier, if known.
	ApplicationID string `db:"application_id" json:"application_id"`

	// CompanyName and JobTitle are the raw extracted values.
	CompanyName string `db:"company_name" json:"company_name"`
	JobTitle    string `db:"job_title" json:"job_title"`

	// NotificationMessageID is the id of the webhook message created
	// for this application, when delivery went through the webhook
	// channel. Nil when the application was archived instead.
	NotificationMessageID *string `db:"notification_message_id" json:"notification_message_id"`

	// CurrentStatus is the latest known application status.
	CurrentStatus string `db:"current_status" json:"current_status"`

	// LastUpdated is when the status last changed.
	LastUpdated time.Time `db:"last_updated" json:"last_updated"`
}

// PendingUpdate is an ephemeral unit of notification work queued when an
// existing application's status changes. A batch of these is flushed to
// the external bot endpoint once per batch-resolution call and then
// discarded.
type PendingUpdate struct {
	// TargetMessageID is the webhook message to edit.
	TargetMessageID string `json:"discord_msg_id"`

	// WebhookTarget is the webhook URL the original message lives on.
	WebhookTarget string `json:"discord_webhook"`

	NewStatus   string `json:"newStatus"`
	JobTitle    string `json:"jobTitle"`
	CompanyName string `json:"companyName"`

	// Snippet is the first 300 bytes of the triggering email body.
	Snippet string `json:"emailSnippet"`
}
