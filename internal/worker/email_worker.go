package worker

// email_worker.go
// Processes email jobs from QueueEmail: pending-restock and low-stock alerts
// to admins, optionally with a restock voucher PDF attached.

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/TheYates/bernat-medical-sub000/internal/infra"

	"github.com/rs/zerolog/log"
)

// EmailPayload is the job payload sent to QueueEmail.
type EmailPayload struct {
	To             []string `json:"to"`
	Subject        string   `json:"subject"`
	Body           string   `json:"body"`
	AttachmentPath string   `json:"attachment_path,omitempty"`
}

// Sender delivers one email. *infra.Mailer implements it.
type Sender interface {
	Send(to []string, subject, body, attachmentPath string) error
}

// EmailWorker sends queued emails through the circuit breaker so a dead SMTP
// relay is not hammered by retries.
type EmailWorker struct {
	sender Sender
	cb     *infra.CircuitBreaker
}

func NewEmailWorker(sender Sender, cb *infra.CircuitBreaker) *EmailWorker {
	return &EmailWorker{sender: sender, cb: cb}
}

var errEmptyRecipients = errors.New("email_worker: no recipients")

// Process sends one email. Malformed payloads are dropped without retry.
func (w *EmailWorker) Process(_ context.Context, raw json.RawMessage) error {
	var payload EmailPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		log.Error().Err(err).Msg("email_worker: invalid payload")
		return nil
	}
	if len(payload.To) == 0 {
		log.Warn().Err(errEmptyRecipients).Msg("email_worker: skipping")
		return nil
	}

	err := w.cb.Execute(func() error {
		return w.sender.Send(payload.To, payload.Subject, payload.Body, payload.AttachmentPath)
	})
	if err != nil {
		log.Error().Err(err).Strs("to", payload.To).Msg("email_worker: failed to send email")
		return err
	}
	log.Info().Strs("to", payload.To).Str("subject", payload.Subject).Msg("email_worker: sent")
	return nil
}
