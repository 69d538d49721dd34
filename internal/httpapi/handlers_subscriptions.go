package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/beadhub/beadhub/internal/apperr"
	"github.com/beadhub/beadhub/internal/domain"
)

type subscriptionCreateRequest struct {
	BeadID     string   `json:"bead_id"`
	Repo       string   `json:"repo"`
	EventTypes []string `json:"event_types"`
}

func (s *Server) handleSubscriptionCreate(w http.ResponseWriter, r *http.Request) {
	id := mustIdentity(r)
	wsID, err := callerWorkspaceID(id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req subscriptionCreateRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if req.BeadID == "" {
		writeError(w, r, apperr.ValidationError("bead_id is required"))
		return
	}
	types := make([]domain.SubscriptionEventType, 0, len(req.EventTypes))
	for _, t := range req.EventTypes {
		types = append(types, domain.SubscriptionEventType(t))
	}
	sub, err := s.app.Store.CreateSubscription(r.Context(), &domain.Subscription{
		ProjectID:   id.ProjectID,
		WorkspaceID: wsID,
		BeadID:      req.BeadID,
		Repo:        req.Repo,
		EventTypes:  types,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, sub)
}

func (s *Server) handleSubscriptionDelete(w http.ResponseWriter, r *http.Request) {
	id := mustIdentity(r)
	if err := s.app.Store.DeleteSubscription(r.Context(), id.ProjectID, chi.URLParam(r, "id")); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}

func (s *Server) handleSubscriptionList(w http.ResponseWriter, r *http.Request) {
	id := mustIdentity(r)
	wsID := r.URL.Query().Get("workspace_id")
	if wsID == "" {
		if callerID, err := callerWorkspaceID(id); err == nil {
			wsID = callerID
		}
	}
	subs, err := s.app.Store.ListSubscriptions(r.Context(), id.ProjectID, wsID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"subscriptions": subs})
}
