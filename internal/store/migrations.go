package store

// migrations is the forward-only, ordered list of schema statements applied
// at startup (spec.md §6 "Migrations are versioned, forward-only, applied
// at startup."). Table names are prefixed by logical namespace — auth,
// domain, issues — all inside the one database spec.md §2/C1 describes;
// there is no cross-database boundary, the prefix is purely organizational.
//
// Reservations are intentionally NOT a durable table: spec.md §4.C6 is
// explicit that reservations live in the ephemeral store with TTL-based
// expiry, and §5's ephemeral-store recovery story (presence rebuilt from
// last_seen_at, chat waits dropped) never mentions reconstructing
// reservations from durable state. The one mention of "reservations" in the
// §6 namespace table is treated as imprecise against the more detailed
// component description in §4.C6.
var migrations = []string{
	`CREATE EXTENSION IF NOT EXISTS pg_trgm`,
	`CREATE EXTENSION IF NOT EXISTS pgcrypto`,

	// --- domain namespace --------------------------------------------------
	`CREATE TABLE IF NOT EXISTS domain_projects (
		id              UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		tenant_id       TEXT,
		slug            TEXT NOT NULL,
		visibility      TEXT NOT NULL DEFAULT 'private',
		active_policy_id UUID,
		created_at      TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at      TIMESTAMPTZ NOT NULL DEFAULT now(),
		deleted_at      TIMESTAMPTZ
	)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS domain_projects_slug_active_uniq
		ON domain_projects (COALESCE(tenant_id, ''), slug)
		WHERE deleted_at IS NULL`,

	`CREATE TABLE IF NOT EXISTS domain_repos (
		id               UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		project_id       UUID NOT NULL REFERENCES domain_projects(id),
		canonical_origin TEXT NOT NULL,
		created_at       TIMESTAMPTZ NOT NULL DEFAULT now(),
		deleted_at       TIMESTAMPTZ
	)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS domain_repos_origin_uniq
		ON domain_repos (canonical_origin)`,

	`CREATE TABLE IF NOT EXISTS domain_workspaces (
		id           UUID PRIMARY KEY,
		project_id   UUID NOT NULL REFERENCES domain_projects(id),
		repo_id      UUID REFERENCES domain_repos(id),
		class        TEXT NOT NULL,
		alias        TEXT NOT NULL,
		human_name   TEXT NOT NULL DEFAULT '',
		member_email TEXT NOT NULL DEFAULT '',
		role         TEXT NOT NULL DEFAULT '',
		branch       TEXT NOT NULL DEFAULT '',
		focus        TEXT NOT NULL DEFAULT '',
		host         TEXT NOT NULL DEFAULT '',
		path         TEXT NOT NULL DEFAULT '',
		timezone     TEXT NOT NULL DEFAULT '',
		created_at   TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at   TIMESTAMPTZ NOT NULL DEFAULT now(),
		last_seen_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		deleted_at   TIMESTAMPTZ
	)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS domain_workspaces_alias_active_uniq
		ON domain_workspaces (project_id, alias)
		WHERE deleted_at IS NULL`,

	`CREATE TABLE IF NOT EXISTS domain_claims (
		project_id   UUID NOT NULL REFERENCES domain_projects(id),
		bead_id      TEXT NOT NULL,
		workspace_id UUID NOT NULL REFERENCES domain_workspaces(id),
		alias        TEXT NOT NULL,
		human_name   TEXT NOT NULL DEFAULT '',
		apex         TEXT NOT NULL DEFAULT '',
		claimed_at   TIMESTAMPTZ NOT NULL DEFAULT now(),
		PRIMARY KEY (project_id, bead_id, workspace_id)
	)`,

	`CREATE TABLE IF NOT EXISTS domain_subscriptions (
		id           UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		project_id   UUID NOT NULL REFERENCES domain_projects(id),
		workspace_id UUID NOT NULL REFERENCES domain_workspaces(id),
		bead_id      TEXT NOT NULL,
		repo         TEXT NOT NULL DEFAULT '',
		event_types  TEXT[] NOT NULL DEFAULT '{status_change}',
		created_at   TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS domain_subscriptions_uniq
		ON domain_subscriptions (project_id, workspace_id, bead_id, repo)`,

	`CREATE TABLE IF NOT EXISTS domain_outbox (
		id               UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		project_id       UUID NOT NULL REFERENCES domain_projects(id),
		recipient_ws_id  UUID NOT NULL REFERENCES domain_workspaces(id),
		recipient_alias  TEXT NOT NULL,
		event_type       TEXT NOT NULL,
		payload          JSONB NOT NULL,
		fingerprint      TEXT NOT NULL,
		attempts         INT NOT NULL DEFAULT 0,
		last_error       TEXT NOT NULL DEFAULT '',
		status           TEXT NOT NULL DEFAULT 'pending',
		delivered_msg_id TEXT NOT NULL DEFAULT '',
		created_at       TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at       TIMESTAMPTZ NOT NULL DEFAULT now(),
		next_attempt_at  TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS domain_outbox_fingerprint_recipient_uniq
		ON domain_outbox (recipient_ws_id, fingerprint)`,
	`CREATE INDEX IF NOT EXISTS domain_outbox_drain_idx
		ON domain_outbox (project_id, status, next_attempt_at)`,

	`CREATE TABLE IF NOT EXISTS domain_audit_log (
		id         UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		project_id UUID NOT NULL REFERENCES domain_projects(id),
		actor      TEXT NOT NULL DEFAULT '',
		action     TEXT NOT NULL,
		detail     JSONB,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE INDEX IF NOT EXISTS domain_audit_log_project_idx
		ON domain_audit_log (project_id, created_at DESC)`,

	`CREATE TABLE IF NOT EXISTS domain_policies (
		id         UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		project_id UUID NOT NULL REFERENCES domain_projects(id),
		version    INT NOT NULL,
		bundle     JSONB NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS domain_policies_project_version_uniq
		ON domain_policies (project_id, version)`,

	`CREATE TABLE IF NOT EXISTS domain_escalations (
		id            UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		project_id    UUID NOT NULL REFERENCES domain_projects(id),
		workspace_id  UUID NOT NULL REFERENCES domain_workspaces(id),
		subject       TEXT NOT NULL,
		situation     TEXT NOT NULL,
		options       TEXT[] NOT NULL DEFAULT '{}',
		status        TEXT NOT NULL DEFAULT 'pending',
		response      TEXT NOT NULL DEFAULT '',
		response_note TEXT NOT NULL DEFAULT '',
		created_at    TIMESTAMPTZ NOT NULL DEFAULT now(),
		expires_at    TIMESTAMPTZ NOT NULL,
		responded_at  TIMESTAMPTZ
	)`,

	// --- issues namespace ----------------------------------------------------
	`CREATE TABLE IF NOT EXISTS issues_beads (
		project_id UUID NOT NULL REFERENCES domain_projects(id),
		bead_id    TEXT NOT NULL,
		title      TEXT NOT NULL DEFAULT '',
		body       TEXT NOT NULL DEFAULT '',
		status     TEXT NOT NULL DEFAULT 'open',
		priority   INT NOT NULL DEFAULT 0,
		assignee   TEXT NOT NULL DEFAULT '',
		creator    TEXT NOT NULL DEFAULT '',
		labels     TEXT[] NOT NULL DEFAULT '{}',
		parent     JSONB,
		blocked_by JSONB NOT NULL DEFAULT '[]',
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		PRIMARY KEY (project_id, bead_id)
	)`,
	`CREATE INDEX IF NOT EXISTS issues_beads_title_trgm_idx
		ON issues_beads USING GIN (title gin_trgm_ops)`,
	`CREATE INDEX IF NOT EXISTS issues_beads_body_trgm_idx
		ON issues_beads USING GIN (body gin_trgm_ops)`,

	// --- auth namespace --------------------------------------------------
	`CREATE TABLE IF NOT EXISTS auth_agents (
		id         UUID PRIMARY KEY,
		project_id UUID NOT NULL REFERENCES domain_projects(id),
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS auth_api_keys (
		id          UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		project_id  UUID NOT NULL REFERENCES domain_projects(id),
		agent_id    UUID REFERENCES auth_agents(id),
		secret_hash TEXT NOT NULL,
		created_at  TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS auth_api_keys_hash_uniq
		ON auth_api_keys (secret_hash)`,

	`CREATE TABLE IF NOT EXISTS auth_messages (
		id         UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		project_id UUID NOT NULL REFERENCES domain_projects(id),
		from_ws_id UUID NOT NULL REFERENCES domain_workspaces(id),
		from_alias TEXT NOT NULL,
		to_ws_id   UUID NOT NULL REFERENCES domain_workspaces(id),
		subject    TEXT NOT NULL,
		body       TEXT NOT NULL,
		priority   TEXT NOT NULL DEFAULT 'normal',
		thread_id  TEXT NOT NULL DEFAULT '',
		read       BOOLEAN NOT NULL DEFAULT false,
		read_at    TIMESTAMPTZ,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE INDEX IF NOT EXISTS auth_messages_inbox_idx
		ON auth_messages (project_id, to_ws_id, created_at DESC)`,

	`CREATE TABLE IF NOT EXISTS auth_chat_sessions (
		id           UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		project_id   UUID NOT NULL REFERENCES domain_projects(id),
		participants UUID[] NOT NULL DEFAULT '{}',
		created_at   TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS auth_chat_messages (
		id         UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		session_id UUID NOT NULL REFERENCES auth_chat_sessions(id),
		project_id UUID NOT NULL REFERENCES domain_projects(id),
		from_ws_id UUID NOT NULL,
		from_alias TEXT NOT NULL,
		body       TEXT NOT NULL,
		leaving    BOOLEAN NOT NULL DEFAULT false,
		observer   BOOLEAN NOT NULL DEFAULT false,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE INDEX IF NOT EXISTS auth_chat_messages_session_idx
		ON auth_chat_messages (session_id, created_at)`,
}
