package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/beadhub/beadhub/internal/app"
	"github.com/beadhub/beadhub/internal/auth"
)

type Server struct {
	app *app.App
	mw  *auth.Middleware
}

func New(a *app.App) *Server {
	secret := []byte(a.Config.ProxySecret())
	mw := &auth.Middleware{
		ProxySecret: secret,
		Keys:        a.Store,
		WriteError:  writeError,
	}
	return &Server{app: a, mw: mw}
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	// No blanket chimw.Timeout: chat/mail long-polls legitimately run up to
	// ChatWaitMax (600s per spec.md §4.C8), far past RequestTimeout. Each
	// wait-capable handler bounds its own wait via the component's own
	// duration parameter instead.
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PATCH", "DELETE"},
		AllowedHeaders: []string{"Authorization", "Content-Type", "X-BH-Auth", "X-Project-ID", "X-API-Key", "X-User-ID", "X-Aweb-Actor-ID"},
		MaxAge:         300,
	}))

	r.Get("/health", s.handleHealth)
	r.Post("/v1/init", s.handleInit)

	r.Route("/v1", func(r chi.Router) {
		r.Use(s.mw.Authenticate)

		r.Route("/workspaces", func(r chi.Router) {
			r.Post("/register", s.handleWorkspaceRegister)
			r.Get("/", s.handleWorkspaceList)
			r.Get("/{id}", s.handleWorkspaceGet)
			r.Patch("/{id}", s.handleWorkspaceUpdate)
			r.Delete("/{id}", s.handleWorkspaceDelete)
			r.Post("/{id}/restore", s.handleWorkspaceRestore)
		})

		r.Route("/repos", func(r chi.Router) {
			r.Get("/", s.handleRepoList)
			r.Post("/", s.handleRepoCreate)
			r.Delete("/{id}", s.handleRepoDelete)
		})

		r.Route("/bdh", func(r chi.Router) {
			r.Post("/sync", s.handleSync)
			r.Post("/check", s.handleSyncCheck)
		})

		r.Route("/beads", func(r chi.Router) {
			r.Get("/issues", s.handleBeadsList)
			r.Get("/issues/{bead_id}", s.handleBeadGet)
			r.Get("/ready", s.handleBeadsReady)
		})

		r.Route("/claims", func(r chi.Router) {
			r.Get("/", s.handleClaimsList)
			r.Post("/", s.handleClaimAcquire)
			r.Post("/check", s.handleClaimCheck)
			r.Delete("/{bead_id}", s.handleClaimRelease)
		})

		r.Get("/status", s.handleStatus)
		r.Get("/status/stream", s.handleStatusStream)

		r.Route("/messages", func(r chi.Router) {
			r.Post("/", s.handleMailSend)
			r.Get("/inbox", s.handleMailInbox)
			r.Post("/{id}/ack", s.handleMailAck)
		})

		r.Route("/chat", func(r chi.Router) {
			r.Post("/sessions", s.handleChatStart)
			r.Get("/sessions", s.handleChatSessionsList)
			r.Post("/sessions/{id}/messages", s.handleChatSend)
			r.Get("/sessions/{id}/messages", s.handleChatHistory)
			r.Get("/pending", s.handleChatPending)
			r.Post("/sessions/{id}/extend-wait", s.handleChatExtendWait)
			r.Get("/admin/sessions", s.handleChatAdminSessions)
			r.Post("/admin/sessions/{id}/join", s.handleChatAdminJoin)
			r.Get("/admin/sessions/{id}/messages", s.handleChatHistory)
		})

		r.Route("/reservations", func(r chi.Router) {
			r.Post("/", s.handleReservationAcquire)
			r.Get("/", s.handleReservationList)
			r.Delete("/*", s.handleReservationRelease)
		})

		r.Route("/policies", func(r chi.Router) {
			r.Get("/active", s.handlePolicyActive)
			r.Get("/history", s.handlePolicyHistory)
			r.Get("/{id}", s.handlePolicyGet)
			r.Post("/", s.handlePolicyCreate)
			r.Post("/{id}/activate", s.handlePolicyActivate)
			r.Post("/reset", s.handlePolicyReset)
		})

		r.Route("/escalations", func(r chi.Router) {
			r.Post("/", s.handleEscalationCreate)
			r.Get("/", s.handleEscalationList)
			r.Get("/{id}", s.handleEscalationGet)
			r.Post("/{id}/respond", s.handleEscalationRespond)
		})

		r.Route("/subscriptions", func(r chi.Router) {
			r.Post("/", s.handleSubscriptionCreate)
			r.Delete("/{id}", s.handleSubscriptionDelete)
			r.Get("/", s.handleSubscriptionList)
		})

		r.Route("/dashboard", func(r chi.Router) {
			r.Get("/config", s.handleDashboardConfig)
			r.Post("/identity", s.handleDashboardIdentity)
		})
	})

	return r
}
