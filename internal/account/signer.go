package account

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/mesh-intelligence/moodlog/internal/logger"
	"github.com/mesh-intelligence/moodlog/pkg/types"
)

// MinSecretLength is the shortest signing secret NewJWTSigner accepts.
const MinSecretLength = 32

// Token errors.
var (
	ErrInvalidToken  = errors.New("invalid session token")
	ErrExpiredToken  = errors.New("session token has expired")
	ErrSigningSecret = errors.New("session signing secret is too short")
)

// SessionClaims is what a verified token says about its session.
type SessionClaims struct {
	AccountID string
	Email     string
	IssuedAt  time.Time
	ExpiresAt time.Time // zero when the token never expires
}

// SessionSigner issues and verifies session tokens.
type SessionSigner interface {
	Sign(ctx context.Context, session types.Session) (string, error)
	Verify(ctx context.Context, token string) (*SessionClaims, error)
}

type sessionJWTClaims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// JWTSigner signs sessions as HS256 JWTs.
type JWTSigner struct {
	key       []byte
	ttl       time.Duration
	clockSkew time.Duration
	timeFunc  func() time.Time
}

var _ SessionSigner = (*JWTSigner)(nil)

// NewJWTSigner creates a signer. A ttl of zero issues tokens without an
// expiry.
func NewJWTSigner(secret string, ttl time.Duration) (*JWTSigner, error) {
	if len(secret) < MinSecretLength {
		return nil, fmt.Errorf("%w: need at least %d characters", ErrSigningSecret, MinSecretLength)
	}
	return &JWTSigner{
		key:       []byte(secret),
		ttl:       ttl,
		clockSkew: 2 * time.Minute,
		timeFunc:  time.Now,
	}, nil
}

// Sign returns a token binding the session's account id and email.
func (s *JWTSigner) Sign(ctx context.Context, session types.Session) (string, error) {
	now := s.timeFunc()
	claims := sessionJWTClaims{
		Email: session.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:  session.ID,
			IssuedAt: jwt.NewNumericDate(now),
			ID:       uuid.NewString(),
		},
	}
	if s.ttl > 0 {
		claims.ExpiresAt = jwt.NewNumericDate(now.Add(s.ttl))
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.key)
	if err != nil {
		logger.FromContext(ctx).Error("failed to sign session token",
			"error", err,
			"account_id", session.ID)
		return "", fmt.Errorf("sign session token: %w", err)
	}
	return signed, nil
}

// Verify checks the signature and expiry of token.
func (s *JWTSigner) Verify(ctx context.Context, token string) (*SessionClaims, error) {
	log := logger.FromContext(ctx)
	now := s.timeFunc()

	parsed, err := jwt.ParseWithClaims(token, &sessionJWTClaims{},
		func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
			}
			return s.key, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Name}),
		jwt.WithLeeway(s.clockSkew),
		jwt.WithTimeFunc(func() time.Time { return now }),
		jwt.WithIssuedAt(),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			log.Debug("session token expired", "error", err)
			return nil, ErrExpiredToken
		}
		log.Debug("session token rejected", "error", err)
		return nil, ErrInvalidToken
	}

	claims, ok := parsed.Claims.(*sessionJWTClaims)
	if !ok || !parsed.Valid || claims.Subject == "" {
		return nil, ErrInvalidToken
	}

	out := &SessionClaims{AccountID: claims.Subject, Email: claims.Email}
	if claims.IssuedAt != nil {
		out.IssuedAt = claims.IssuedAt.Time
	}
	if claims.ExpiresAt != nil {
		out.ExpiresAt = claims.ExpiresAt.Time
	}
	return out, nil
}
