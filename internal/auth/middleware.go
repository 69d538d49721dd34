package auth

import (
	"net/http"

	"github.com/beadhub/beadhub/internal/apperr"
)

// Middleware resolves either auth mode into an Identity on the request
// context. When a proxy secret is configured, a request carrying X-BH-Auth
// is authenticated by that header alone and any bearer token is ignored
// (spec.md §4.C3); with no proxy secret, X-BH-Auth is ignored and bearer
// auth applies.
type Middleware struct {
	ProxySecret []byte
	Keys        KeyLookup
	WriteError  func(w http.ResponseWriter, r *http.Request, err error)
}

func (m *Middleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var (
			id  Identity
			err error
		)
		if proxy := HeaderFromRequest(r); proxy != "" && len(m.ProxySecret) > 0 {
			id, err = VerifyProxyHeader(proxy, m.ProxySecret)
		} else if bearer := r.Header.Get("Authorization"); bearer != "" {
			id, err = VerifyBearer(r.Context(), bearer, m.Keys)
		} else {
			err = apperr.Unauthenticatedf("missing credentials")
		}
		if err != nil {
			m.WriteError(w, r, err)
			return
		}
		next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), id)))
	})
}
