package httpapi

import (
	"net/http"

	"github.com/beadhub/beadhub/internal/auth"
	"github.com/beadhub/beadhub/internal/domain"
)

// publicReader reports whether id is a public-principal caller on a project
// whose visibility is "public" — the combination spec.md §4.C3 says gets
// redacted reads rather than full ones.
func (s *Server) publicReader(r *http.Request, id auth.Identity) (bool, error) {
	if !id.Public {
		return false, nil
	}
	project, err := s.app.Store.GetProjectByID(r.Context(), id.ProjectID)
	if err != nil {
		return false, err
	}
	return project.Visibility == domain.VisibilityPublic, nil
}

// redactWorkspace strips the fields public readers must never see (alias
// stays, human_name/member_email go) per spec.md §4.C3.
func redactWorkspace(ws domain.Workspace) domain.Workspace {
	ws.HumanName = ""
	ws.MemberEmail = ""
	return ws
}
