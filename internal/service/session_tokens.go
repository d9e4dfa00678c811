package service

import (
	"errors"
	"fmt"
	"log"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
)

var (
	ErrInvalidSessionToken = errors.New("invalid session token")
	ErrTokenGeneration     = errors.New("failed to generate session token")
)

const tokenIssuer = "workout-tracker"

// sessionClaims is the JWT payload of a session token.
type sessionClaims struct {
	SessionID int64 `json:"sid"`
	jwt.RegisteredClaims
}

// SessionTokens issues and verifies HS256 tokens naming a workout session,
// so a client can carry its session explicitly instead of relying on the
// store's current-session pointer.
type SessionTokens struct {
	secret     []byte
	expiration time.Duration
	method     jwt.SigningMethod
	now        func() time.Time
}

// NewSessionTokens creates a token issuer. Without a secret a random one is
// generated, so tokens do not survive a restart.
func NewSessionTokens(secret string, expiration time.Duration) *SessionTokens {
	if secret == "" {
		log.Println("WARN: No JWT secret configured, session tokens will not survive a restart")
		secret = uuid.NewString() + uuid.NewString()
	}
	if expiration <= 0 {
		expiration = 24 * time.Hour
	}
	return &SessionTokens{
		secret:     []byte(secret),
		expiration: expiration,
		method:     jwt.SigningMethodHS256,
		now:        time.Now,
	}
}

// Issue signs a token for sessionID.
func (t *SessionTokens) Issue(sessionID int64) (string, error) {
	now := t.now()
	claims := &sessionClaims{
		SessionID: sessionID,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   strconv.FormatInt(sessionID, 10),
			ExpiresAt: jwt.NewNumericDate(now.Add(t.expiration)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    tokenIssuer,
		},
	}
	signed, err := jwt.NewWithClaims(t.method, claims).SignedString(t.secret)
	if err != nil {
		return "", ErrTokenGeneration
	}
	return signed, nil
}

// Parse verifies token and returns the session id it carries.
func (t *SessionTokens) Parse(token string) (int64, error) {
	claims := &sessionClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return t.secret, nil
	})
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrInvalidSessionToken, err)
	}
	if !parsed.Valid || claims.SessionID <= 0 || claims.Issuer != tokenIssuer {
		return 0, ErrInvalidSessionToken
	}
	return claims.SessionID, nil
}
