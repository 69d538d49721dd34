// Package notify implements the background outbox dispatcher of
// spec.md §4.C10: claim a batch with FOR UPDATE SKIP LOCKED, render each
// entry into a mail, deliver it, and retry with exponential backoff on
// failure.
package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/beadhub/beadhub/internal/domain"
	"github.com/beadhub/beadhub/internal/messaging"
	"github.com/beadhub/beadhub/internal/store"
)

type Dispatcher struct {
	store *store.Store
	mail  *messaging.Mail
	log   zerolog.Logger

	batchSize   int
	maxAttempts int
	baseBackoff time.Duration
	maxBackoff  time.Duration
	pollEvery   time.Duration
}

func New(st *store.Store, mail *messaging.Mail, log zerolog.Logger, batchSize, maxAttempts int, baseBackoff, maxBackoff, pollEvery time.Duration) *Dispatcher {
	return &Dispatcher{
		store: st, mail: mail, log: log.With().Str("component", "notify").Logger(),
		batchSize: batchSize, maxAttempts: maxAttempts,
		baseBackoff: baseBackoff, maxBackoff: maxBackoff, pollEvery: pollEvery,
	}
}

// Run polls the outbox until ctx is cancelled, draining one batch per tick.
func (d *Dispatcher) Run(ctx context.Context) {
	ticker := time.NewTicker(d.pollEvery)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			d.log.Info().Msg("dispatcher stopping")
			return
		case <-ticker.C:
			if err := d.drainOnce(ctx); err != nil {
				d.log.Error().Err(err).Msg("drain batch failed")
			}
		}
	}
}

func (d *Dispatcher) drainOnce(ctx context.Context) error {
	batch, err := d.store.ClaimOutboxBatch(ctx, d.batchSize, d.maxAttempts)
	if err != nil {
		return err
	}
	for _, entry := range batch {
		d.deliver(ctx, entry)
	}
	return nil
}

func (d *Dispatcher) deliver(ctx context.Context, entry domain.OutboxEntry) {
	systemWSID, err := d.store.EnsureSystemWorkspace(ctx, entry.ProjectID)
	if err != nil {
		d.log.Error().Err(err).Str("outbox_id", entry.ID).Msg("failed to ensure system workspace")
		return
	}
	subject, body := render(entry)
	sent, err := d.mail.Send(ctx, messaging.SendMailRequest{
		ProjectID: entry.ProjectID,
		FromWSID:  systemWSID,
		FromAlias: "beadhub",
		ToWSID:    entry.RecipientWSID,
		Subject:   subject,
		Body:      body,
		Priority:  domain.MailNormal,
		ThreadID:  entry.Fingerprint,
	})
	if err != nil {
		d.log.Warn().Err(err).Str("outbox_id", entry.ID).Int("attempts", entry.Attempts+1).Msg("notification delivery failed")
		if retryErr := d.store.MarkOutboxRetry(ctx, entry.ID, entry.Attempts+1, err.Error(), d.maxAttempts, d.baseBackoff, d.maxBackoff); retryErr != nil {
			d.log.Error().Err(retryErr).Str("outbox_id", entry.ID).Msg("failed to schedule retry")
		}
		return
	}
	if err := d.store.MarkOutboxCompleted(ctx, entry.ID, sent.ID); err != nil {
		d.log.Error().Err(err).Str("outbox_id", entry.ID).Msg("failed to mark outbox completed")
	}
}

// render templates an outbox entry's JSON payload into a mail subject and
// body; the dedup fingerprint rides along in the thread id so a recipient
// who sees a duplicate can match it against one they already acknowledged
// (spec.md §4.C10 "dedup by fingerprint in the rendered body metadata").
func render(entry domain.OutboxEntry) (string, string) {
	var fields map[string]any
	_ = json.Unmarshal(entry.Payload, &fields)
	subject := fmt.Sprintf("[%s] notification", entry.EventType)
	body := fmt.Sprintf("event=%s fingerprint=%s fields=%v", entry.EventType, entry.Fingerprint, fields)
	return subject, body
}
