package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// IdentityClaims is the subset of the identity provider's session token the
// portal cares about.
type IdentityClaims struct {
	Email string `json:"email"`
	Name  string `json:"name"`
	jwt.RegisteredClaims
}

// VerifyIdentityToken validates a session token issued by the identity
// provider (HS256, shared secret) and returns its claims.
func VerifyIdentityToken(tokenString string, secret []byte) (*IdentityClaims, error) {
	var claims IdentityClaims
	_, err := jwt.ParseWithClaims(tokenString, &claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("verify token: %w", err)
	}
	if claims.Email == "" {
		return nil, fmt.Errorf("token has no email claim")
	}
	return &claims, nil
}

// commentLinkTTL bounds how long a submitter's public comment link stays
// valid after their submission.
const commentLinkTTL = 90 * 24 * time.Hour

type commentLinkClaims struct {
	RequestID string `json:"request_id"`
	jwt.RegisteredClaims
}

// SignCommentLink issues the token embedded in a submitter's public comment
// link. The token grants read access to comments on one request and nothing
// else.
func SignCommentLink(requestID string, secret []byte, now time.Time) (string, error) {
	claims := commentLinkClaims{
		RequestID: requestID,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(commentLinkTTL)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(secret)
	if err != nil {
		return "", fmt.Errorf("sign comment link: %w", err)
	}
	return signed, nil
}

// VerifyCommentLink validates a public comment-link token and returns the
// request id it grants access to.
func VerifyCommentLink(tokenString string, secret []byte) (string, error) {
	var claims commentLinkClaims
	_, err := jwt.ParseWithClaims(tokenString, &claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return secret, nil
	})
	if err != nil {
		return "", fmt.Errorf("verify comment link: %w", err)
	}
	if claims.RequestID == "" {
		return "", fmt.Errorf("token has no request id")
	}
	return claims.RequestID, nil
}
