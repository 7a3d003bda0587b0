package handlers

import (
	"net/http"

	"github.com/zeptools/docforge/responses"
	"github.com/zeptools/docforge/routing"
	"github.com/zeptools/docforge/sec"
)

// AuthWrapper guards mutating endpoints with an HMAC-signed bearer token.
// With Enabled false it passes everything through, for local dev setups
// that run without an issuer.
type AuthWrapper struct {
	Secret  []byte
	Enabled bool
}

var _ routing.HandlerWrapper = (*AuthWrapper)(nil)

func (a *AuthWrapper) Wrap(inner http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !a.Enabled {
			inner.ServeHTTP(w, r)
			return
		}
		token := sec.ExtractBearerToken(r.Header.Get("Authorization"))
		if token == "" {
			responses.WriteSimpleErrorJSON(w, http.StatusUnauthorized, "missing bearer token")
			return
		}
		parsed, err := sec.ParseHMACSignedToken(token, a.Secret)
		if err != nil || !parsed.Valid {
			responses.WriteSimpleErrorJSON(w, http.StatusUnauthorized, "invalid token")
			return
		}
		inner.ServeHTTP(w, r)
	})
}
