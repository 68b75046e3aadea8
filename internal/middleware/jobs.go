package middleware

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// RequireJobToken guards the scheduled-job trigger endpoints with a shared
// secret presented as a bearer token. A configured value starting with "$2"
// is treated as a bcrypt hash of the secret so the plaintext need not live
// in the environment; anything else is compared in constant time. An empty
// configured value disables the endpoints entirely.
func RequireJobToken(configured string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if configured == "" {
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			presented := bearerToken(r)
			if presented == "" || !jobTokenMatches(configured, presented) {
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func jobTokenMatches(configured, presented string) bool {
	if strings.HasPrefix(configured, "$2") {
		return bcrypt.CompareHashAndPassword([]byte(configured), []byte(presented)) == nil
	}
	return subtle.ConstantTimeCompare([]byte(configured), []byte(presented)) == 1
}
