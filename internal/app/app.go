// Package app wires every component into one application value passed
// explicitly to handlers — no implicit process-wide globals beyond
// logging (spec.md §9 "Global mutable state").
package app

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/beadhub/beadhub/internal/claim"
	"github.com/beadhub/beadhub/internal/config"
	"github.com/beadhub/beadhub/internal/ephemeral"
	"github.com/beadhub/beadhub/internal/escalation"
	"github.com/beadhub/beadhub/internal/eventbus"
	"github.com/beadhub/beadhub/internal/messaging"
	"github.com/beadhub/beadhub/internal/notify"
	"github.com/beadhub/beadhub/internal/policy"
	"github.com/beadhub/beadhub/internal/reservation"
	"github.com/beadhub/beadhub/internal/store"
	"github.com/beadhub/beadhub/internal/sync"
	"github.com/beadhub/beadhub/internal/workspace"
)

type App struct {
	Config      config.Config
	Log         zerolog.Logger
	Store       *store.Store
	Ephemeral   *ephemeral.Store
	Workspace   *workspace.Registry
	Claim       *claim.Engine
	Reservation *reservation.Engine
	Sync        *sync.Engine
	Mail        *messaging.Mail
	Chat        *messaging.Chat
	EventBus    *eventbus.Bus
	Dispatcher  *notify.Dispatcher
	Policy      *policy.Engine
	Escalation  *escalation.Engine
}

func New(cfg config.Config, log zerolog.Logger, st *store.Store, eph *ephemeral.Store) *App {
	mail := messaging.NewMail(st, eph)
	return &App{
		Config:      cfg,
		Log:         log,
		Store:       st,
		Ephemeral:   eph,
		Workspace:   workspace.New(st),
		Claim:       claim.New(st, eph),
		Reservation: reservation.New(eph, cfg.ReservationTTL),
		Sync:        sync.New(st, eph),
		Mail:        mail,
		Chat:        messaging.NewChat(st, eph, cfg.ChatWaitDefault, cfg.ChatWaitConversation, cfg.ChatWaitMax),
		EventBus:    eventbus.New(eph, cfg.StreamHeartbeat, cfg.StreamBufferSize),
		Dispatcher: notify.New(st, mail, log, cfg.OutboxBatchSize, cfg.OutboxMaxAttempts,
			cfg.OutboxBaseBackoff, cfg.OutboxMaxBackoff, 2*time.Second),
		Policy:     policy.New(st),
		Escalation: escalation.New(st, eph, cfg.EscalationDefaultExpiry),
	}
}

// Healthy checks every durable dependency, backing GET /health.
func (a *App) Healthy(ctx context.Context) error {
	if err := a.Store.Healthy(ctx); err != nil {
		return err
	}
	return a.Ephemeral.Healthy(ctx)
}
