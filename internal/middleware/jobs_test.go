package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"golang.org/x/crypto/bcrypt"
)

func jobRequest(token string) *http.Request {
	r := httptest.NewRequest(http.MethodPost, "/api/jobs/generate-tasks", nil)
	if token != "" {
		r.Header.Set("Authorization", "Bearer "+token)
	}
	return r
}

func runJobToken(t *testing.T, configured, token string) int {
	t.Helper()
	var called bool
	handler := RequireJobToken(configured)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		w.WriteHeader(http.StatusOK)
	}))

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, jobRequest(token))
	if w.Code == http.StatusOK && !called {
		t.Fatal("handler reported ok without calling next")
	}
	return w.Code
}

func TestRequireJobTokenDisabledWhenUnset(t *testing.T) {
	if code := runJobToken(t, "", "anything"); code != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", code, http.StatusUnauthorized)
	}
}

func TestRequireJobTokenPlaintext(t *testing.T) {
	if code := runJobToken(t, "job-secret", "job-secret"); code != http.StatusOK {
		t.Errorf("status = %d, want %d", code, http.StatusOK)
	}
	if code := runJobToken(t, "job-secret", "wrong"); code != http.StatusUnauthorized {
		t.Errorf("wrong token status = %d, want %d", code, http.StatusUnauthorized)
	}
	if code := runJobToken(t, "job-secret", ""); code != http.StatusUnauthorized {
		t.Errorf("missing token status = %d, want %d", code, http.StatusUnauthorized)
	}
}

func TestRequireJobTokenBcrypt(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("job-secret"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("generate hash: %v", err)
	}

	if code := runJobToken(t, string(hash), "job-secret"); code != http.StatusOK {
		t.Errorf("status = %d, want %d", code, http.StatusOK)
	}
	if code := runJobToken(t, string(hash), "wrong"); code != http.StatusUnauthorized {
		t.Errorf("wrong token status = %d, want %d", code, http.StatusUnauthorized)
	}
}
