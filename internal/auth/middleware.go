package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

// TokenCookie lets a browser carry the dashboard token without custom headers.
const TokenCookie = "dashboard_token"

type subjectKey struct{}

type Middleware struct {
	secretKey []byte
}

func NewMiddleware(secret string) *Middleware {
	return &Middleware{
		secretKey: []byte(secret),
	}
}

// ValidateToken requires an HMAC-signed JWT from the Authorization header or
// the dashboard_token cookie. The token's "sub" claim is stored in the context.
func (m *Middleware) ValidateToken(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tokenString, err := tokenFromRequest(r)
		if err != nil {
			http.Error(w, err.Error(), http.StatusUnauthorized)
			return
		}

		token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return m.secretKey, nil
		})

		if err != nil || !token.Valid {
			slog.Warn("Invalid token attempt", "error", err)
			http.Error(w, "Invalid or expired token", http.StatusUnauthorized)
			return
		}

		if claims, ok := token.Claims.(jwt.MapClaims); ok {
			if subject, ok := claims["sub"].(string); ok {
				ctx := context.WithValue(r.Context(), subjectKey{}, subject)
				next(w, r.WithContext(ctx))
				return
			}
		}

		next(w, r)
	}
}

func SubjectFromContext(ctx context.Context) string {
	if subject, ok := ctx.Value(subjectKey{}).(string); ok {
		return subject
	}
	return ""
}

func tokenFromRequest(r *http.Request) (string, error) {
	if authHeader := r.Header.Get("Authorization"); authHeader != "" {
		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			return "", errors.New("Invalid Authorization header format")
		}
		return parts[1], nil
	}
	if cookie, err := r.Cookie(TokenCookie); err == nil && cookie.Value != "" {
		return cookie.Value, nil
	}
	return "", errors.New("Missing Authorization header")
}
