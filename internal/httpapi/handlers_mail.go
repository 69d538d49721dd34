package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/beadhub/beadhub/internal/apperr"
	"github.com/beadhub/beadhub/internal/domain"
	"github.com/beadhub/beadhub/internal/messaging"
	"github.com/beadhub/beadhub/internal/store"
)

type mailSendRequest struct {
	FromAlias string `json:"from_alias"`
	ToWSID    string `json:"to_workspace_id"`
	Subject   string `json:"subject"`
	Body      string `json:"body"`
	Priority  string `json:"priority"`
	ThreadID  string `json:"thread_id"`
}

func (s *Server) handleMailSend(w http.ResponseWriter, r *http.Request) {
	id := mustIdentity(r)
	wsID, err := callerWorkspaceID(id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req mailSendRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if req.ToWSID == "" {
		writeError(w, r, apperr.ValidationError("to_workspace_id is required"))
		return
	}
	mail, err := s.app.Mail.Send(r.Context(), messaging.SendMailRequest{
		ProjectID: id.ProjectID,
		FromWSID:  wsID,
		FromAlias: req.FromAlias,
		ToWSID:    req.ToWSID,
		Subject:   req.Subject,
		Body:      req.Body,
		Priority:  domain.MailPriority(req.Priority),
		ThreadID:  req.ThreadID,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, mail)
}

// handleMailInbox lists a workspace's inbox, optionally long-polling for a
// fixed window when wait_seconds is given and the inbox is currently empty
// (spec.md §4.C8's long-poll alternative to the event stream).
func (s *Server) handleMailInbox(w http.ResponseWriter, r *http.Request) {
	id := mustIdentity(r)
	wsID, err := callerWorkspaceID(id)
	if err != nil {
		writeError(w, r, err)
		return
	}

	q := r.URL.Query()
	opts := store.ListInboxOpts{
		UnreadOnly: q.Get("unread_only") == "true",
		Limit:      parseLimit(r),
	}
	if c, ok := decodeCursor(q.Get("cursor")); ok {
		opts.AfterID = c.ID
		opts.AfterCreated = &c.SortKey
	}

	mail, err := s.app.Mail.ListInbox(r.Context(), id.ProjectID, wsID, opts)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if len(mail) == 0 {
		if waitSeconds := q.Get("wait_seconds"); waitSeconds != "" {
			d, perr := time.ParseDuration(waitSeconds + "s")
			if perr == nil && d > 0 {
				if woke, werr := s.app.Mail.WaitForMail(r.Context(), id.ProjectID, wsID, d); werr == nil && woke {
					mail, err = s.app.Mail.ListInbox(r.Context(), id.ProjectID, wsID, opts)
					if err != nil {
						writeError(w, r, err)
						return
					}
				}
			}
		}
	}

	resp := map[string]any{"messages": mail}
	if len(mail) > 0 {
		last := mail[len(mail)-1]
		resp["next_cursor"] = encodeCursor(cursor{SortKey: last.CreatedAt.Format(time.RFC3339Nano), ID: last.ID})
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleMailAck(w http.ResponseWriter, r *http.Request) {
	id := mustIdentity(r)
	wsID, err := callerWorkspaceID(id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	mail, err := s.app.Mail.Acknowledge(r.Context(), id.ProjectID, chi.URLParam(r, "id"), wsID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, mail)
}
