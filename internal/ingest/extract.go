// Package ingest turns raw RFC 822 messages into job events.
package ingest

import (
	"bytes"
	"io"
	"strings"

	"github.com/emersion/go-message/mail"

	"github.com/nhle/job-tracker/internal/model"
)

// ExtractEvent parses a raw RFC 822 message and builds a job event from
// its envelope and first text/plain part. Messages that do not parse as
// MIME are treated as bare plain text, so a malformed message still
// yields a hashable body rather than an error.
func ExtractEvent(raw []byte) model.JobEvent {
	var ev model.JobEvent

	mr, err := mail.CreateReader(bytes.NewReader(raw))
	if err != nil {
		ev.Body = string(raw)
		return ev
	}
	defer mr.Close()

	ev.ID = strings.Trim(mr.Header.Get("Message-Id"), "<>")
	ev.Subject, _ = mr.Header.Subject()
	if date, err := mr.Header.Date(); err == nil {
		ev.Date = date
	}
	if from, err := mr.Header.AddressList("From"); err == nil && len(from) > 0 {
		ev.From = from[0].Address
	}

	var htmlBody string
	for {
		part, err := mr.NextPart()
		if err == io.EOF {
			break
		}
		if err != nil {
			break
		}

		h, ok := part.Header.(*mail.InlineHeader)
		if !ok {
			continue
		}
		contentType, _, _ := h.ContentType()
		body, readErr := io.ReadAll(part.Body)
		if readErr != nil {
			continue
		}

		switch {
		case strings.HasPrefix(contentType, "text/plain"):
			ev.Body = string(body)
		case strings.HasPrefix(contentType, "text/html"):
			htmlBody = string(body)
		}
	}

	// Fall back to the HTML part when no plain-text alternative exists.
	if ev.Body == "" {
		ev.Body = htmlBody
	}
	return ev
}
