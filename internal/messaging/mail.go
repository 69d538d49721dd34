// Package messaging implements the mail and chat surfaces of spec.md
// §4.C8: durable asynchronous mail with at-least-once delivery, and
// synchronous chat sessions with wait/leave semantics over the ephemeral
// store's signal channels.
package messaging

import (
	"context"
	"time"

	"github.com/beadhub/beadhub/internal/apperr"
	"github.com/beadhub/beadhub/internal/domain"
	"github.com/beadhub/beadhub/internal/ephemeral"
	"github.com/beadhub/beadhub/internal/store"
)

type Mail struct {
	store     *store.Store
	ephemeral *ephemeral.Store
}

func NewMail(st *store.Store, eph *ephemeral.Store) *Mail {
	return &Mail{store: st, ephemeral: eph}
}

type SendMailRequest struct {
	ProjectID string
	FromWSID  string
	FromAlias string
	ToWSID    string
	Subject   string
	Body      string
	Priority  domain.MailPriority
	ThreadID  string
}

var validPriorities = map[domain.MailPriority]bool{
	domain.MailLow: true, domain.MailNormal: true, domain.MailHigh: true, domain.MailUrgent: true,
}

// Send writes the mail row, publishes message.delivered, and wakes the
// recipient's inbox wait channel — the "at-least-once" delivery path of
// spec.md §4.C8.
func (m *Mail) Send(ctx context.Context, req SendMailRequest) (*domain.Mail, error) {
	if len(req.Subject) > 200 {
		return nil, apperr.ValidationError("subject must be at most 200 characters")
	}
	if len(req.Body) == 0 {
		return nil, apperr.ValidationError("body must not be empty")
	}
	if len(req.Body) > 64*1024 {
		return nil, apperr.ValidationError("body must be at most 64 KiB")
	}
	if req.Priority == "" {
		req.Priority = domain.MailNormal
	}
	if !validPriorities[req.Priority] {
		return nil, apperr.ValidationError("invalid mail priority %q", req.Priority)
	}

	mail, err := m.store.SendMail(ctx, &domain.Mail{
		ProjectID: req.ProjectID,
		FromWSID:  req.FromWSID,
		FromAlias: req.FromAlias,
		ToWSID:    req.ToWSID,
		Subject:   req.Subject,
		Body:      req.Body,
		Priority:  req.Priority,
		ThreadID:  req.ThreadID,
	})
	if err != nil {
		return nil, err
	}

	_ = m.ephemeral.Publish(ctx, domain.Event{
		Type:      domain.EventMessageDelivered,
		Project:   req.ProjectID,
		Workspace: req.ToWSID,
		Timestamp: time.Now().UTC(),
		Fields:    map[string]any{"message_id": mail.ID, "from_alias": req.FromAlias, "subject": req.Subject},
	})
	_ = m.ephemeral.NotifyInbox(ctx, req.ProjectID, req.ToWSID)

	return mail, nil
}

func (m *Mail) ListInbox(ctx context.Context, projectID, workspaceID string, opts store.ListInboxOpts) ([]domain.Mail, error) {
	return m.store.ListInbox(ctx, projectID, workspaceID, opts)
}

func (m *Mail) Acknowledge(ctx context.Context, projectID, messageID, workspaceID string) (*domain.Mail, error) {
	mail, err := m.store.AcknowledgeMail(ctx, projectID, messageID, workspaceID)
	if err != nil {
		return nil, err
	}
	_ = m.ephemeral.Publish(ctx, domain.Event{
		Type:      domain.EventMessageAcknowledged,
		Project:   projectID,
		Workspace: workspaceID,
		Timestamp: time.Now().UTC(),
		Fields:    map[string]any{"message_id": messageID},
	})
	return mail, nil
}

// WaitForMail blocks (up to wait) for a new inbox message to arrive,
// backing a long-poll variant of list_inbox some clients use instead of
// the event stream.
func (m *Mail) WaitForMail(ctx context.Context, projectID, workspaceID string, wait time.Duration) (bool, error) {
	return m.ephemeral.WaitForInbox(ctx, projectID, workspaceID, wait)
}
