package middleware

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/hkdf"

	"github.com/soaringjerry/SheHuMaan/internal/nav"
	"github.com/soaringjerry/SheHuMaan/internal/utils"
)

type sessionCtxKey int

const sessionKey sessionCtxKey = 7

const keyInfo = "shehumaan session token v1"

type Claims struct {
	SID string `json:"sid"`
	jwt.RegisteredClaims
}

// Sessions issues and verifies bearer tokens naming an intake session.
type Sessions struct {
	key []byte
	ttl time.Duration
	now func() time.Time
}

// NewSessions derives the HMAC key from secret. An empty secret gets a
// random key, so tokens do not survive a restart.
func NewSessions(secret string, ttl time.Duration) (*Sessions, error) {
	ikm := []byte(secret)
	if secret == "" {
		ikm = make([]byte, 32)
		if _, err := rand.Read(ikm); err != nil {
			return nil, fmt.Errorf("generate session secret: %w", err)
		}
	}
	key := make([]byte, 32)
	if _, err := io.ReadFull(hkdf.New(sha256.New, ikm, nil, []byte(keyInfo)), key); err != nil {
		return nil, fmt.Errorf("derive session key: %w", err)
	}
	return &Sessions{key: key, ttl: ttl, now: time.Now}, nil
}

// TTL is the token lifetime.
func (s *Sessions) TTL() time.Duration { return s.ttl }

func (s *Sessions) Sign(sessionID string) (string, error) {
	now := s.now()
	claims := Claims{SID: sessionID, RegisteredClaims: jwt.RegisteredClaims{IssuedAt: jwt.NewNumericDate(now), ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl))}}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.key)
}

func (s *Sessions) Parse(tok string) (*Claims, error) {
	t, err := jwt.ParseWithClaims(tok, &Claims{}, func(*jwt.Token) (interface{}, error) { return s.key, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return nil, err
	}
	if c, ok := t.Claims.(*Claims); ok && t.Valid && c.SID != "" {
		return c, nil
	}
	return nil, errors.New("invalid token")
}

// WithSession attaches the session ID to the context when the request
// carries a valid bearer token.
func (s *Sessions) WithSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := r.Header.Get("Authorization")
		if strings.HasPrefix(h, "Bearer ") {
			tok := strings.TrimSpace(strings.TrimPrefix(h, "Bearer "))
			if c, err := s.Parse(tok); err == nil {
				next.ServeHTTP(w, r.WithContext(ContextWithSession(r.Context(), c.SID)))
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}

// UnauthorizedKey is the notification for a missing or invalid token.
const UnauthorizedKey = "error.unauthorized"

// RequireSession rejects requests without a session with the same JSON
// error body the API uses, localized by the Locale middleware.
func RequireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := SessionIDFromContext(r.Context()); !ok {
			locale := LocaleFromContext(r.Context())
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			_ = json.NewEncoder(w).Encode(map[string]any{
				"error": "unauthorized",
				"code":  "unauthorized",
				"notification": map[string]string{
					"level":   string(nav.LevelError),
					"key":     UnauthorizedKey,
					"message": utils.T(locale, UnauthorizedKey),
				},
			})
			return
		}
		next.ServeHTTP(w, r)
	})
}

// ContextWithSession stores sessionID the way WithSession does.
func ContextWithSession(ctx context.Context, sessionID string) context.Context {
	return context.WithValue(ctx, sessionKey, sessionID)
}

func SessionIDFromContext(ctx context.Context) (string, bool) {
	if id, ok := ctx.Value(sessionKey).(string); ok && id != "" {
		return id, true
	}
	return "", false
}
