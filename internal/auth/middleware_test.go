package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const secret = "test-secret"

func sign(t *testing.T, method jwt.SigningMethod, key any, claims jwt.MapClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(method, claims).SignedString(key)
	require.NoError(t, err)
	return token
}

func protected(subject *string) http.HandlerFunc {
	return NewMiddleware(secret).ValidateToken(func(w http.ResponseWriter, r *http.Request) {
		*subject = SubjectFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	})
}

func TestValidateToken_BearerHeader(t *testing.T) {
	var subject string
	token := sign(t, jwt.SigningMethodHS256, []byte(secret), jwt.MapClaims{"sub": "analyst"})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	protected(&subject)(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "analyst", subject)
}

func TestValidateToken_Cookie(t *testing.T) {
	var subject string
	token := sign(t, jwt.SigningMethodHS256, []byte(secret), jwt.MapClaims{"sub": "viewer"})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: TokenCookie, Value: token})
	rec := httptest.NewRecorder()
	protected(&subject)(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "viewer", subject)
}

func TestValidateToken_Rejects(t *testing.T) {
	expired := sign(t, jwt.SigningMethodHS256, []byte(secret), jwt.MapClaims{
		"sub": "old",
		"exp": time.Now().Add(-time.Hour).Unix(),
	})
	wrongKey := sign(t, jwt.SigningMethodHS256, []byte("other"), jwt.MapClaims{"sub": "x"})

	cases := map[string]string{
		"missing":      "",
		"wrong scheme": "Basic abc",
		"garbage":      "Bearer not-a-jwt",
		"expired":      "Bearer " + expired,
		"wrong key":    "Bearer " + wrongKey,
	}
	for name, header := range cases {
		t.Run(name, func(t *testing.T) {
			var subject string
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if header != "" {
				req.Header.Set("Authorization", header)
			}
			rec := httptest.NewRecorder()
			protected(&subject)(rec, req)

			assert.Equal(t, http.StatusUnauthorized, rec.Code)
			assert.Empty(t, subject)
		})
	}
}

func TestValidateToken_NoSubject(t *testing.T) {
	var subject string
	token := sign(t, jwt.SigningMethodHS256, []byte(secret), jwt.MapClaims{"role": "viewer"})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	protected(&subject)(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Empty(t, subject)
}
