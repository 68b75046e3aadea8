package middleware

import (
	"net/http"
	"strings"

	"github.com/stgabriel/parishhub/internal/auth"
	"github.com/stgabriel/parishhub/internal/store"
)

const sessionCookieName = "parishhub_session"

// RequireAuth verifies the identity provider's session token (Authorization
// bearer header or session cookie), mirrors the user row, and populates
// AuthContext. Role and digest preference come from our user row, not the
// token.
func RequireAuth(secret []byte, users *store.UserStore) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenString := bearerToken(r)
			if tokenString == "" {
				if cookie, err := r.Cookie(sessionCookieName); err == nil {
					tokenString = cookie.Value
				}
			}
			if tokenString == "" {
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			claims, err := auth.VerifyIdentityToken(tokenString, secret)
			if err != nil {
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			user, err := users.Upsert(claims.Email, claims.Name)
			if err != nil {
				http.Error(w, "Internal error", http.StatusInternalServerError)
				return
			}

			ac := auth.AuthContext{
				Email: user.Email,
				Name:  user.Name,
				Role:  user.Role,
			}

			ctx := auth.WithAuth(r.Context(), ac)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireAdmin checks that the authenticated user has the admin role.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !auth.IsAdmin(r.Context()) {
			http.Error(w, "Forbidden", http.StatusForbidden)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if len(header) > 7 && strings.EqualFold(header[:7], "Bearer ") {
		return strings.TrimSpace(header[7:])
	}
	return ""
}
