package messaging

import (
	"context"
	"time"

	"github.com/beadhub/beadhub/internal/apperr"
	"github.com/beadhub/beadhub/internal/domain"
	"github.com/beadhub/beadhub/internal/ephemeral"
	"github.com/beadhub/beadhub/internal/store"
)

type Chat struct {
	store     *store.Store
	ephemeral *ephemeral.Store

	waitDefault      time.Duration
	waitConversation time.Duration
	waitMax          time.Duration
}

func NewChat(st *store.Store, eph *ephemeral.Store, waitDefault, waitConversation, waitMax time.Duration) *Chat {
	return &Chat{store: st, ephemeral: eph, waitDefault: waitDefault, waitConversation: waitConversation, waitMax: waitMax}
}

type StartRequest struct {
	ProjectID string
	FromWSID  string
	FromAlias string
	ToWSIDs   []string
	Body      string
}

type StartResult struct {
	Session          *domain.ChatSession
	InitialMessageID string
}

// Start opens a session implicitly — the first send binds its
// participants — per spec.md §4.C8.
func (c *Chat) Start(ctx context.Context, req StartRequest) (*StartResult, error) {
	participants := append([]string{req.FromWSID}, req.ToWSIDs...)
	session, err := c.store.CreateChatSession(ctx, req.ProjectID, participants)
	if err != nil {
		return nil, err
	}
	msg, err := c.store.AppendChatMessage(ctx, &domain.ChatMessage{
		SessionID: session.ID,
		ProjectID: req.ProjectID,
		FromWSID:  req.FromWSID,
		FromAlias: req.FromAlias,
		Body:      req.Body,
	})
	if err != nil {
		return nil, err
	}
	c.publishMessage(ctx, req.ProjectID, session.ID, req.FromAlias, msg.ID)
	return &StartResult{Session: session, InitialMessageID: msg.ID}, nil
}

type SendRequest struct {
	ProjectID   string
	SessionID   string
	WorkspaceID string
	Alias       string
	Body        string
	Leaving     bool
}

type SendResult struct {
	MessageID string
	Delivered bool
}

// Send appends a message and wakes any waiter in the session. Delivered
// reports whether, at send time, any client is blocked in a wait on this
// session or any live event-stream subscription exists on the project's
// event channel (spec.md §4.C8 "Delivery flag"). Neither count is matched
// against the session's participants: a stream subscriber who takes no part
// in the session also makes Delivered true, and it is false only when
// nothing waits on the session and nothing is subscribed to the project.
func (c *Chat) Send(ctx context.Context, req SendRequest) (*SendResult, error) {
	if len(req.Body) > 64*1024 {
		return nil, apperr.ValidationError("body must be at most 64 KiB")
	}
	session, err := c.store.GetChatSession(ctx, req.ProjectID, req.SessionID)
	if err != nil {
		return nil, err
	}
	if !contains(session.Participants, req.WorkspaceID) {
		if _, err := c.store.AddChatParticipant(ctx, req.ProjectID, req.SessionID, req.WorkspaceID); err != nil {
			return nil, err
		}
	}

	msg, err := c.store.AppendChatMessage(ctx, &domain.ChatMessage{
		SessionID: req.SessionID,
		ProjectID: req.ProjectID,
		FromWSID:  req.WorkspaceID,
		FromAlias: req.Alias,
		Body:      req.Body,
		Leaving:   req.Leaving,
	})
	if err != nil {
		return nil, err
	}

	c.publishMessage(ctx, req.ProjectID, req.SessionID, req.Alias, msg.ID)
	waiters, err := c.ephemeral.NotifyChatMessage(ctx, req.ProjectID, req.SessionID)
	if err != nil {
		return nil, err
	}
	subscribers, err := c.ephemeral.EventSubscriberCount(ctx, req.ProjectID)
	if err != nil {
		return nil, err
	}
	if req.Leaving {
		_ = c.ephemeral.MarkChatLeaving(ctx, req.ProjectID, req.SessionID, req.WorkspaceID)
	}

	return &SendResult{MessageID: msg.ID, Delivered: waiters > 0 || subscribers > 0}, nil
}

// Wait blocks the sender ("send-and-wait") for the next message in the
// session or until the deadline. startConversation selects the 300s
// default instead of 60s (spec.md §4.C8 "Wait semantics").
func (c *Chat) Wait(ctx context.Context, projectID, sessionID string, startConversation bool) (bool, error) {
	d := c.waitDefault
	if startConversation {
		d = c.waitConversation
	}
	return c.ephemeral.WaitForChatMessage(ctx, projectID, sessionID, d)
}

// MaxWait is the hard cap on a single chat wait (waitMax). Wait itself only
// picks the default or start-conversation tier; the extend-wait handler
// waits up to MaxWait directly.
func (c *Chat) MaxWait() time.Duration {
	return c.waitMax
}

func (c *Chat) ListPending(ctx context.Context, projectID string, limit int) ([]domain.ChatSession, error) {
	return c.store.ListChatSessions(ctx, projectID, limit)
}

func (c *Chat) History(ctx context.Context, projectID, sessionID, since string) ([]domain.ChatMessage, error) {
	return c.store.ChatHistory(ctx, projectID, sessionID, since)
}

func (c *Chat) AdminListSessions(ctx context.Context, projectID string, limit int) ([]domain.ChatSession, error) {
	return c.store.ListChatSessions(ctx, projectID, limit)
}

// AdminJoin adds a dashboard user to a session as an observer; joining is
// idempotent (spec.md §4.C8 "Admin join").
func (c *Chat) AdminJoin(ctx context.Context, projectID, sessionID, workspaceID, alias string) (*domain.ChatSession, error) {
	session, err := c.store.GetChatSession(ctx, projectID, sessionID)
	if err != nil {
		return nil, err
	}
	if contains(session.Participants, workspaceID) {
		return session, nil
	}
	session, err = c.store.AddChatParticipant(ctx, projectID, sessionID, workspaceID)
	if err != nil {
		return nil, err
	}
	if _, err := c.store.AppendChatMessage(ctx, &domain.ChatMessage{
		SessionID: sessionID,
		ProjectID: projectID,
		FromWSID:  workspaceID,
		FromAlias: alias,
		Body:      "",
		Observer:  true,
	}); err != nil {
		return nil, err
	}
	return session, nil
}

func (c *Chat) publishMessage(ctx context.Context, projectID, sessionID, alias, messageID string) {
	_ = c.ephemeral.Publish(ctx, domain.Event{
		Type:      domain.EventChatMessageSent,
		Project:   projectID,
		Timestamp: time.Now().UTC(),
		Fields:    map[string]any{"session_id": sessionID, "alias": alias, "message_id": messageID},
	})
}

func contains(ss []string, v string) bool {
	for _, s := range ss {
		if s == v {
			return true
		}
	}
	return false
}
