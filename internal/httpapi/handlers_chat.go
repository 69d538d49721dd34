package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/beadhub/beadhub/internal/apperr"
	"github.com/beadhub/beadhub/internal/auth"
	"github.com/beadhub/beadhub/internal/messaging"
)

type chatStartRequest struct {
	FromAlias string   `json:"from_alias"`
	ToWSIDs   []string `json:"to_workspace_ids"`
	Body      string   `json:"body"`
}

func (s *Server) handleChatStart(w http.ResponseWriter, r *http.Request) {
	id := mustIdentity(r)
	wsID, err := callerWorkspaceID(id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req chatStartRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	result, err := s.app.Chat.Start(r.Context(), messaging.StartRequest{
		ProjectID: id.ProjectID,
		FromWSID:  wsID,
		FromAlias: req.FromAlias,
		ToWSIDs:   req.ToWSIDs,
		Body:      req.Body,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{
		"session_id":         result.Session.ID,
		"initial_message_id": result.InitialMessageID,
		"participants":       result.Session.Participants,
	})
}

type chatSendRequest struct {
	Alias   string `json:"alias"`
	Body    string `json:"body"`
	Leaving bool   `json:"leaving"`
	Wait    bool   `json:"wait"`
	Start   bool   `json:"start_conversation"`
}

func (s *Server) handleChatSend(w http.ResponseWriter, r *http.Request) {
	id := mustIdentity(r)
	wsID, err := callerWorkspaceID(id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	sessionID := chi.URLParam(r, "id")
	var req chatSendRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	result, err := s.app.Chat.Send(r.Context(), messaging.SendRequest{
		ProjectID:   id.ProjectID,
		SessionID:   sessionID,
		WorkspaceID: wsID,
		Alias:       req.Alias,
		Body:        req.Body,
		Leaving:     req.Leaving,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	resp := map[string]any{"message_id": result.MessageID, "delivered": result.Delivered}
	if req.Wait && !req.Leaving {
		woke, werr := s.app.Chat.Wait(r.Context(), id.ProjectID, sessionID, req.Start)
		if werr != nil {
			writeError(w, r, werr)
			return
		}
		resp["reply_received"] = woke
		if woke {
			history, herr := s.app.Chat.History(r.Context(), id.ProjectID, sessionID, result.MessageID)
			if herr == nil {
				resp["messages"] = history
			}
		}
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (s *Server) handleChatHistory(w http.ResponseWriter, r *http.Request) {
	id := mustIdentity(r)
	history, err := s.app.Chat.History(r.Context(), id.ProjectID, chi.URLParam(r, "id"), r.URL.Query().Get("since"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"messages": history})
}

func (s *Server) handleChatSessionsList(w http.ResponseWriter, r *http.Request) {
	id := mustIdentity(r)
	sessions, err := s.app.Chat.ListPending(r.Context(), id.ProjectID, parseLimit(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"sessions": sessions})
}

func (s *Server) handleChatPending(w http.ResponseWriter, r *http.Request) {
	id := mustIdentity(r)
	sessions, err := s.app.Chat.ListPending(r.Context(), id.ProjectID, parseLimit(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"pending": sessions})
}

// handleChatExtendWait lets a sender who is still waiting ask for the
// longer 600s cap instead of the default wait (spec.md §4.C8 "extend-wait").
func (s *Server) handleChatExtendWait(w http.ResponseWriter, r *http.Request) {
	id := mustIdentity(r)
	sessionID := chi.URLParam(r, "id")

	ctx, cancel := withTimeout(r.Context(), s.app.Chat.MaxWait())
	defer cancel()
	woke, err := s.app.Ephemeral.WaitForChatMessage(ctx, id.ProjectID, sessionID, s.app.Chat.MaxWait())
	if err != nil {
		writeError(w, r, err)
		return
	}
	resp := map[string]any{"reply_received": woke}
	if woke {
		history, herr := s.app.Chat.History(r.Context(), id.ProjectID, sessionID, "")
		if herr == nil {
			resp["messages"] = history
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleChatAdminSessions(w http.ResponseWriter, r *http.Request) {
	id := mustIdentity(r)
	sessions, err := s.app.Chat.AdminListSessions(r.Context(), id.ProjectID, parseLimit(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"sessions": sessions})
}

type chatAdminJoinRequest struct {
	Alias string `json:"alias"`
}

func (s *Server) handleChatAdminJoin(w http.ResponseWriter, r *http.Request) {
	id := mustIdentity(r)
	wsID, err := callerWorkspaceID(id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req chatAdminJoinRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if id.PrincipalType != auth.PrincipalUser {
		writeError(w, r, apperr.Forbiddenf("only dashboard users may join a session as an observer"))
		return
	}
	session, err := s.app.Chat.AdminJoin(r.Context(), id.ProjectID, chi.URLParam(r, "id"), wsID, req.Alias)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, session)
}
