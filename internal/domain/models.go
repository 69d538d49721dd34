// Package domain holds the wire- and storage-level shapes described in
// spec.md §3 (Data Model). It has no dependency on the store or transport
// layers so every component can share one vocabulary.
package domain

import "time"

// Visibility controls public-reader access to a project.
type Visibility string

const (
	VisibilityPrivate Visibility = "private"
	VisibilityPublic  Visibility = "public"
)

type Project struct {
	ID             string     `json:"id"`
	TenantID       *string    `json:"tenant_id,omitempty"`
	Slug           string     `json:"slug"`
	Visibility     Visibility `json:"visibility"`
	ActivePolicyID *string    `json:"active_policy_id,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
	DeletedAt      *time.Time `json:"deleted_at,omitempty"`
}

func (p *Project) Active() bool { return p.DeletedAt == nil }

type Repo struct {
	ID              string     `json:"id"`
	ProjectID       string     `json:"project_id"`
	CanonicalOrigin string     `json:"canonical_origin"`
	CreatedAt       time.Time  `json:"created_at"`
	DeletedAt       *time.Time `json:"deleted_at,omitempty"`
}

// WorkspaceClass distinguishes agent identities (bound to a repo) from
// dashboard identities (no repo).
type WorkspaceClass string

const (
	WorkspaceClassAgent     WorkspaceClass = "agent"
	WorkspaceClassDashboard WorkspaceClass = "dashboard"
)

type Workspace struct {
	ID          string         `json:"id"` // equals the agent id from the auth layer
	ProjectID   string         `json:"project_id"`
	RepoID      *string        `json:"repo_id,omitempty"` // nil for dashboard class
	Class       WorkspaceClass `json:"class"`
	Alias       string         `json:"alias"`
	HumanName   string         `json:"human_name,omitempty"`
	MemberEmail string         `json:"member_email,omitempty"`
	Role        string         `json:"role,omitempty"`
	Branch      string         `json:"branch,omitempty"`
	Focus       string         `json:"focus,omitempty"` // apex bead id currently worked
	Host        string         `json:"host,omitempty"`
	Path        string         `json:"path,omitempty"`
	Timezone    string         `json:"timezone,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	LastSeenAt  time.Time      `json:"last_seen_at"`
	DeletedAt   *time.Time     `json:"deleted_at,omitempty"`
}

func (w *Workspace) Active() bool { return w.DeletedAt == nil }

// PresenceState is derived, never stored: Active/Idle/Offline relative to
// the presence TTL (spec.md §4.C4).
type PresenceState string

const (
	PresenceActive  PresenceState = "active"
	PresenceIdle    PresenceState = "idle"
	PresenceOffline PresenceState = "offline"
)

// BeadRef identifies a bead possibly in another repo (parent/blocked_by
// tuples are cross-repo capable per spec.md §3).
type BeadRef struct {
	Repo   string `json:"repo,omitempty"`
	Branch string `json:"branch,omitempty"`
	BeadID string `json:"bead_id"`
}

type Bead struct {
	ProjectID string    `json:"project_id"`
	BeadID    string    `json:"bead_id"`
	Title     string    `json:"title"`
	Body      string    `json:"body,omitempty"`
	Status    string    `json:"status"`
	Priority  int       `json:"priority"`
	Assignee  string    `json:"assignee,omitempty"`
	Creator   string    `json:"creator,omitempty"`
	Labels    []string  `json:"labels,omitempty"`
	Parent    *BeadRef  `json:"parent,omitempty"`
	BlockedBy []BeadRef `json:"blocked_by,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type Claim struct {
	ProjectID   string    `json:"project_id"`
	BeadID      string    `json:"bead_id"`
	WorkspaceID string    `json:"workspace_id"`
	Alias       string    `json:"alias"`
	HumanName   string    `json:"human_name,omitempty"`
	Apex        string    `json:"apex,omitempty"`
	ClaimedAt   time.Time `json:"claimed_at"`
}

type Reservation struct {
	ProjectID   string    `json:"project_id"`
	Path        string    `json:"path"`
	WorkspaceID string    `json:"workspace_id"`
	Alias       string    `json:"alias"`
	AcquiredAt  time.Time `json:"acquired_at"`
	ExpiresAt   time.Time `json:"expires_at"`
	Reason      string    `json:"reason,omitempty"`
}

// SubscriptionEventType enumerates event kinds a subscription can request.
type SubscriptionEventType string

const (
	EventStatusChange SubscriptionEventType = "status_change"
)

type Subscription struct {
	ID          string                  `json:"id"`
	ProjectID   string                  `json:"project_id"`
	WorkspaceID string                  `json:"workspace_id"`
	BeadID      string                  `json:"bead_id"`
	Repo        string                  `json:"repo,omitempty"` // empty means repo-agnostic
	EventTypes  []SubscriptionEventType `json:"event_types"`
	CreatedAt   time.Time               `json:"created_at"`
}

type OutboxStatus string

const (
	OutboxPending    OutboxStatus = "pending"
	OutboxProcessing OutboxStatus = "processing"
	OutboxCompleted  OutboxStatus = "completed"
	OutboxFailed     OutboxStatus = "failed"
)

type OutboxEntry struct {
	ID             string       `json:"id"`
	ProjectID      string       `json:"project_id"`
	RecipientWSID  string       `json:"recipient_workspace_id"`
	RecipientAlias string       `json:"recipient_alias,omitempty"`
	EventType      string       `json:"event_type"`
	Payload        []byte       `json:"payload,omitempty"` // JSON
	Fingerprint    string       `json:"fingerprint,omitempty"`
	Attempts       int          `json:"attempts"`
	LastError      string       `json:"last_error,omitempty"`
	Status         OutboxStatus `json:"status"`
	CreatedAt      time.Time    `json:"created_at"`
	UpdatedAt      time.Time    `json:"updated_at"`
	NextAttemptAt  time.Time    `json:"next_attempt_at"`
	DeliveredMsgID string       `json:"delivered_message_id,omitempty"`
}

type AuditEntry struct {
	ID        string    `json:"id"`
	ProjectID string    `json:"project_id"`
	Actor     string    `json:"actor"` // workspace id or principal id
	Action    string    `json:"action"`
	Detail    string    `json:"detail,omitempty"` // JSON
	CreatedAt time.Time `json:"created_at"`
}

type Policy struct {
	ID        string    `json:"id"`
	ProjectID string    `json:"project_id"`
	Version   int       `json:"version"`
	Bundle    []byte    `json:"bundle"` // JSON {invariants:[...], roles:{...}, adapters:{...}}
	CreatedAt time.Time `json:"created_at"`
}

type ApiKey struct {
	ID         string    `json:"id"`
	ProjectID  string    `json:"project_id"`
	AgentID    string    `json:"agent_id,omitempty"` // empty for project-scoped keys
	SecretHash string    `json:"-"`                  // sha256 hex, never serialized
	CreatedAt  time.Time `json:"created_at"`
}

type ChatSession struct {
	ID           string    `json:"id"`
	ProjectID    string    `json:"project_id"`
	Participants []string  `json:"participants"` // workspace ids, unordered
	CreatedAt    time.Time `json:"created_at"`
}

type ChatMessage struct {
	ID        string    `json:"id"`
	SessionID string    `json:"session_id"`
	ProjectID string    `json:"project_id"`
	FromWSID  string    `json:"from_workspace_id"`
	FromAlias string    `json:"from_alias"`
	Body      string    `json:"body"`
	Leaving   bool      `json:"leaving,omitempty"`
	Observer  bool      `json:"observer,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

type MailPriority string

const (
	MailLow    MailPriority = "low"
	MailNormal MailPriority = "normal"
	MailHigh   MailPriority = "high"
	MailUrgent MailPriority = "urgent"
)

type Mail struct {
	ID        string       `json:"id"`
	ProjectID string       `json:"project_id"`
	FromWSID  string       `json:"from_workspace_id"`
	FromAlias string       `json:"from_alias"`
	ToWSID    string       `json:"to_workspace_id"`
	Subject   string       `json:"subject,omitempty"`
	Body      string       `json:"body"`
	Priority  MailPriority `json:"priority"`
	ThreadID  string       `json:"thread_id,omitempty"`
	Read      bool         `json:"read"`
	ReadAt    *time.Time   `json:"read_at,omitempty"`
	CreatedAt time.Time    `json:"created_at"`
}

type EscalationStatus string

const (
	EscalationPending   EscalationStatus = "pending"
	EscalationResponded EscalationStatus = "responded"
	EscalationExpired   EscalationStatus = "expired"
)

type Escalation struct {
	ID           string           `json:"id"`
	ProjectID    string           `json:"project_id"`
	WorkspaceID  string           `json:"workspace_id"`
	Subject      string           `json:"subject"`
	Situation    string           `json:"situation,omitempty"`
	Options      []string         `json:"options,omitempty"`
	Status       EscalationStatus `json:"status"`
	Response     string           `json:"response,omitempty"`
	ResponseNote string           `json:"response_note,omitempty"`
	CreatedAt    time.Time        `json:"created_at"`
	ExpiresAt    time.Time        `json:"expires_at"`
	RespondedAt  *time.Time       `json:"responded_at,omitempty"`
}
