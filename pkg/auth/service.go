package auth

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/theapemachine/taskagent/pkg/errors"
)

var (
	ErrMissingToken = errors.New("missing authorization header")
	ErrInvalidToken = errors.New("invalid token")
	ErrRevoked      = errors.New("token revoked")
	ErrRateLimited  = errors.New("rate limit exceeded")
)

// Service issues and checks the bearer tokens that identify chat users.
type Service struct {
	mu            sync.RWMutex
	revoked       map[string]time.Time
	refreshTokens map[string]string
	limiters      *Limiters
	signingKey    []byte
	tokenTTL      time.Duration
	now           func() time.Time
}

// TokenInfo represents a JWT token and its metadata
type TokenInfo struct {
	Token        string    `json:"token"`
	ExpiresAt    time.Time `json:"expires_at"`
	RefreshToken string    `json:"refresh_token"`
	Scheme       string    `json:"scheme"`
}

type ServiceOption func(*Service)

// WithRateLimit allows rate requests per user per interval.
func WithRateLimit(rate int64, interval time.Duration) ServiceOption {
	return func(service *Service) {
		if rate > 0 && interval > 0 {
			service.limiters = NewLimiters(rate, interval)
		}
	}
}

func WithTokenTTL(ttl time.Duration) ServiceOption {
	return func(service *Service) {
		if ttl > 0 {
			service.tokenTTL = ttl
		}
	}
}

func NewService(signingKey []byte, options ...ServiceOption) *Service {
	service := &Service{
		revoked:       map[string]time.Time{},
		refreshTokens: map[string]string{},
		limiters:      NewLimiters(100, time.Minute),
		signingKey:    signingKey,
		tokenTTL:      time.Hour,
		now:           time.Now,
	}

	for _, option := range options {
		option(service)
	}

	return service
}

func (s *Service) getSigningKey(token *jwt.Token) (any, error) {
	if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
		return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
	}

	return s.signingKey, nil
}

/*
Authenticate validates an Authorization header value and returns the user
id carried in the sub claim.  Only valid tokens are charged against the
per-user rate limit.
*/
func (s *Service) Authenticate(header string) (string, error) {
	if header == "" {
		return "", ErrMissingToken
	}

	tokenStr := strings.TrimPrefix(header, "Bearer ")

	s.mu.RLock()
	_, revoked := s.revoked[tokenStr]
	s.mu.RUnlock()

	if revoked {
		return "", ErrRevoked
	}

	token, err := jwt.Parse(tokenStr, s.getSigningKey, jwt.WithTimeFunc(s.now))

	if err != nil || !token.Valid {
		return "", fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	userID, err := token.Claims.GetSubject()

	if err != nil || userID == "" {
		return "", fmt.Errorf("%w: missing subject", ErrInvalidToken)
	}

	if !s.limiters.Allow(userID) {
		return "", ErrRateLimited
	}

	return userID, nil
}

// GenerateToken signs an access token and a refresh token for userID.
func (s *Service) GenerateToken(userID string) (*TokenInfo, error) {
	now := s.now()
	expires := now.Add(s.tokenTTL)

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   userID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(expires),
	})

	tokenStr, err := token.SignedString(s.signingKey)

	if err != nil {
		return nil, fmt.Errorf("failed to sign token: %w", err)
	}

	refreshToken := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   userID,
		ID:        uuid.NewString(),
		ExpiresAt: jwt.NewNumericDate(now.Add(24 * time.Hour)),
	})

	refreshTokenStr, err := refreshToken.SignedString(s.signingKey)

	if err != nil {
		return nil, fmt.Errorf("failed to generate refresh token: %w", err)
	}

	s.mu.Lock()
	s.refreshTokens[refreshTokenStr] = userID
	s.mu.Unlock()

	return &TokenInfo{
		Token:        tokenStr,
		ExpiresAt:    expires,
		RefreshToken: refreshTokenStr,
		Scheme:       "Bearer",
	}, nil
}

// RefreshToken trades a refresh token for a new pair.  Refresh tokens are single use.
func (s *Service) RefreshToken(refreshToken string) (*TokenInfo, error) {
	s.mu.Lock()
	userID, exists := s.refreshTokens[refreshToken]
	delete(s.refreshTokens, refreshToken)
	s.mu.Unlock()

	if !exists {
		return nil, fmt.Errorf("%w: unknown refresh token", ErrInvalidToken)
	}

	if _, err := jwt.Parse(refreshToken, s.getSigningKey, jwt.WithTimeFunc(s.now)); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	return s.GenerateToken(userID)
}

// RevokeToken blocks an access token until it would have expired anyway.
func (s *Service) RevokeToken(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.revoked[token] = s.now().Add(s.tokenTTL)
}

// Prune forgets revocations that have outlived their token and idle rate buckets.
func (s *Service) Prune() {
	s.mu.Lock()
	now := s.now()

	for token, until := range s.revoked {
		if now.After(until) {
			delete(s.revoked, token)
		}
	}

	s.mu.Unlock()

	s.limiters.Prune()
}
