package service

import (
	"errors"
	"fmt"
	"time"

	"payment-terminal-bridge/internal/core/domain"
	"payment-terminal-bridge/internal/core/ports"

	"github.com/golang-jwt/jwt/v5"
)

// clientClaims is the JWT body issued to API clients.
type clientClaims struct {
	Role       domain.ClientRole `json:"role"`
	TerminalID *string           `json:"terminal_id,omitempty"`
	jwt.RegisteredClaims
}

// JWTTokenService implements ports.TokenService using HS256 JWT.
type JWTTokenService struct {
	secret []byte
	expiry time.Duration
	issuer string
	now    func() time.Time
}

// NewJWTTokenService creates a new JWT token service.
func NewJWTTokenService(secret string, expiry time.Duration, issuer string) *JWTTokenService {
	return &JWTTokenService{
		secret: []byte(secret),
		expiry: expiry,
		issuer: issuer,
		now:    time.Now,
	}
}

// Generate creates a signed JWT carrying the client's role and terminal scope.
func (s *JWTTokenService) Generate(client *domain.APIClient) (string, time.Time, error) {
	now := s.now()
	expiresAt := now.Add(s.expiry)

	claims := clientClaims{
		Role:       client.Role,
		TerminalID: client.TerminalID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   client.ID,
			Issuer:    s.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("signing token: %w", err)
	}

	return tokenString, expiresAt, nil
}

// Validate parses and validates a JWT token, returning the claims.
func (s *JWTTokenService) Validate(tokenString string) (*ports.TokenClaims, error) {
	claims := &clientClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secret, nil
	}, jwt.WithIssuer(s.issuer), jwt.WithTimeFunc(s.now))
	if err != nil {
		return nil, fmt.Errorf("parsing token: %w", err)
	}
	if !token.Valid {
		return nil, errors.New("invalid token claims")
	}

	if claims.Subject == "" {
		return nil, errors.New("missing subject claim")
	}
	switch claims.Role {
	case domain.RoleTerminal:
		if claims.TerminalID == nil || *claims.TerminalID == "" {
			return nil, errors.New("terminal token without terminal_id")
		}
	case domain.RoleOperator:
	default:
		return nil, fmt.Errorf("unknown role %q", claims.Role)
	}

	return &ports.TokenClaims{
		ClientID:   claims.Subject,
		Role:       claims.Role,
		TerminalID: claims.TerminalID,
	}, nil
}
