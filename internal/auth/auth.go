package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/MrJamesThe3rd/budgetflow/internal/http/respond"
)

var ErrInvalidToken = errors.New("invalid token")

// Tokens signs and verifies HS256 bearer tokens whose subject is the numeric
// user id.
type Tokens struct {
	secret []byte
	issuer string
	ttl    time.Duration
	now    func() time.Time
}

func NewTokens(secret, issuer string, ttl time.Duration) *Tokens {
	if ttl <= 0 {
		ttl = time.Hour
	}

	return &Tokens{
		secret: []byte(secret),
		issuer: issuer,
		ttl:    ttl,
		now:    time.Now,
	}
}

func (t *Tokens) Issue(userID int64) (string, error) {
	if userID <= 0 {
		return "", fmt.Errorf("issuing token: user id must be positive, got %d", userID)
	}

	now := t.now()
	claims := jwt.RegisteredClaims{
		Subject:   strconv.FormatInt(userID, 10),
		Issuer:    t.issuer,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(t.ttl)),
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
	if err != nil {
		return "", fmt.Errorf("signing token: %w", err)
	}

	return signed, nil
}

// Parse verifies the token and returns its user id.
func (t *Tokens) Parse(token string) (int64, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(t.now),
	}

	if t.issuer != "" {
		opts = append(opts, jwt.WithIssuer(t.issuer))
	}

	var claims jwt.RegisteredClaims

	if _, err := jwt.ParseWithClaims(token, &claims, func(*jwt.Token) (any, error) {
		return t.secret, nil
	}, opts...); err != nil {
		return 0, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}

	userID, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil || userID <= 0 {
		return 0, fmt.Errorf("%w: subject %q is not a user id", ErrInvalidToken, claims.Subject)
	}

	return userID, nil
}

type ctxKey struct{}

// WithUserID returns a copy of ctx carrying the authenticated user.
func WithUserID(ctx context.Context, userID int64) context.Context {
	return context.WithValue(ctx, ctxKey{}, userID)
}

func UserID(ctx context.Context) (int64, bool) {
	id, ok := ctx.Value(ctxKey{}).(int64)
	return id, ok
}

// RequestUser returns the authenticated user of r, answering 401 when there
// is none.
func RequestUser(w http.ResponseWriter, r *http.Request) (int64, bool) {
	userID, ok := UserID(r.Context())
	if !ok {
		respond.Error(w, r, http.StatusUnauthorized, respond.CodeUnauthorized, "authentication required")
	}

	return userID, ok
}

// Middleware rejects requests without a valid bearer token.
func Middleware(tokens *Tokens) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			scheme, token, ok := strings.Cut(r.Header.Get("Authorization"), " ")
			if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
				respond.Error(w, r, http.StatusUnauthorized, respond.CodeUnauthorized, "missing bearer token")
				return
			}

			userID, err := tokens.Parse(strings.TrimSpace(token))
			if err != nil {
				respond.Error(w, r, http.StatusUnauthorized, respond.CodeUnauthorized, "invalid or expired token")
				return
			}

			next.ServeHTTP(w, r.WithContext(WithUserID(r.Context(), userID)))
		})
	}
}
