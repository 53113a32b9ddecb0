package chi

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"go.uber.org/zap"

	logpkg "github.com/kailas-cloud/gitaverse/internal/logger"
)

// Probes stay reachable without a key.
var publicPaths = map[string]bool{
	"/health":  true,
	"/metrics": true,
}

// keyring holds the accepted API keys.
type keyring [][]byte

func newKeyring(keys []string) keyring {
	var kr keyring
	for _, k := range keys {
		if k = strings.TrimSpace(k); k != "" {
			kr = append(kr, []byte(k))
		}
	}
	return kr
}

// authorize returns an empty string when the header carries a known key,
// otherwise the rejection reason.
func (kr keyring) authorize(header string) string {
	if header == "" {
		return "missing authorization header"
	}
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "authorization header must use Bearer scheme"
	}
	match := 0
	for _, k := range kr {
		match |= subtle.ConstantTimeCompare(k, []byte(strings.TrimSpace(token)))
	}
	if match != 1 {
		return "invalid api key"
	}
	return ""
}

// BearerAuthMiddleware rejects /v1 requests without a valid Bearer key.
// No configured keys disables the check.
func BearerAuthMiddleware(apiKeys []string) func(http.Handler) http.Handler {
	kr := newKeyring(apiKeys)
	return func(next http.Handler) http.Handler {
		if len(kr) == 0 {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if publicPaths[r.URL.Path] {
				next.ServeHTTP(w, r)
				return
			}
			if reason := kr.authorize(r.Header.Get("Authorization")); reason != "" {
				logpkg.Annotate(r.Context(), zap.String("auth_rejected", reason))
				writeError(w, http.StatusUnauthorized, CodeUnauthorized, reason)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
