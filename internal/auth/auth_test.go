package auth_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/budgetflow/internal/auth"
)

func TestTokens_IssueAndParse(t *testing.T) {
	tokens := auth.NewTokens("secret", "budgetflow", time.Hour)

	signed, err := tokens.Issue(17)
	require.NoError(t, err)

	id, err := tokens.Parse(signed)
	require.NoError(t, err)
	assert.Equal(t, int64(17), id)
}

func TestTokens_Parse_Rejects(t *testing.T) {
	tokens := auth.NewTokens("secret", "budgetflow", time.Hour)

	sign := func(claims jwt.Claims, secret string) string {
		s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
		require.NoError(t, err)

		return s
	}

	valid := func() jwt.RegisteredClaims {
		return jwt.RegisteredClaims{
			Subject:   "5",
			Issuer:    "budgetflow",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		}
	}

	expired := valid()
	expired.ExpiresAt = jwt.NewNumericDate(time.Now().Add(-time.Minute))

	noExpiry := valid()
	noExpiry.ExpiresAt = nil

	wrongIssuer := valid()
	wrongIssuer.Issuer = "someone-else"

	badSubject := valid()
	badSubject.Subject = "alice"

	type testCase struct {
		name  string
		token string
	}

	tests := []testCase{
		{name: "Garbage", token: "not.a.jwt"},
		{name: "WrongSecret", token: sign(valid(), "other")},
		{name: "Expired", token: sign(expired, "secret")},
		{name: "NoExpiry", token: sign(noExpiry, "secret")},
		{name: "WrongIssuer", token: sign(wrongIssuer, "secret")},
		{name: "NonNumericSubject", token: sign(badSubject, "secret")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tokens.Parse(tt.token)
			assert.ErrorIs(t, err, auth.ErrInvalidToken)
		})
	}
}

func TestMiddleware(t *testing.T) {
	tokens := auth.NewTokens("secret", "", time.Hour)

	signed, err := tokens.Issue(3)
	require.NoError(t, err)

	handler := auth.Middleware(tokens)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, ok := auth.UserID(r.Context())
		assert.True(t, ok)
		assert.Equal(t, int64(3), id)
		w.WriteHeader(http.StatusNoContent)
	}))

	type testCase struct {
		name   string
		header string
		want   int
	}

	tests := []testCase{
		{name: "Valid", header: "Bearer " + signed, want: http.StatusNoContent},
		{name: "LowercaseScheme", header: "bearer " + signed, want: http.StatusNoContent},
		{name: "Missing", header: "", want: http.StatusUnauthorized},
		{name: "WrongScheme", header: "Basic abc", want: http.StatusUnauthorized},
		{name: "Invalid", header: "Bearer abc", want: http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}

			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			assert.Equal(t, tt.want, rec.Code)
		})
	}
}
