package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"payment-terminal-bridge/internal/core/domain"
	"payment-terminal-bridge/internal/core/ports"
	"payment-terminal-bridge/pkg/apperror"
)

// minSecretLength guards against trivially guessable client secrets.
const minSecretLength = 16

// AuthServiceImpl implements ports.AuthService.
type AuthServiceImpl struct {
	clientRepo ports.ClientRepository
	hashSvc    ports.HashService
	tokenSvc   ports.TokenService
}

// NewAuthService creates a new AuthServiceImpl.
func NewAuthService(
	clientRepo ports.ClientRepository,
	hashSvc ports.HashService,
	tokenSvc ports.TokenService,
) *AuthServiceImpl {
	return &AuthServiceImpl{
		clientRepo: clientRepo,
		hashSvc:    hashSvc,
		tokenSvc:   tokenSvc,
	}
}

// IssueToken validates client credentials and returns a JWT token.
func (s *AuthServiceImpl) IssueToken(ctx context.Context, clientID, secret string) (string, time.Time, error) {
	client, err := s.clientRepo.GetByID(ctx, clientID)
	if err != nil {
		return "", time.Time{}, apperror.InternalError(fmt.Errorf("find client: %w", err))
	}
	if client == nil {
		return "", time.Time{}, apperror.ErrInvalidCredentials()
	}

	valid, err := s.hashSvc.Verify(secret, client.SecretHash)
	if err != nil {
		return "", time.Time{}, apperror.InternalError(fmt.Errorf("verify secret: %w", err))
	}
	if !valid {
		return "", time.Time{}, apperror.ErrInvalidCredentials()
	}

	if client.Disabled {
		return "", time.Time{}, apperror.ErrClientDisabled()
	}

	token, expiry, err := s.tokenSvc.Generate(client)
	if err != nil {
		return "", time.Time{}, apperror.InternalError(fmt.Errorf("generate token: %w", err))
	}

	return token, expiry, nil
}

// CreateClient provisions an API client. Terminal clients must be scoped to
// exactly one terminal; operators must not be.
func (s *AuthServiceImpl) CreateClient(ctx context.Context, req ports.CreateClientRequest) (*domain.APIClient, error) {
	if req.ID == "" {
		return nil, apperror.Validation("client id is required")
	}
	if len(req.Secret) < minSecretLength {
		return nil, apperror.Validation(fmt.Sprintf("secret must be at least %d characters", minSecretLength))
	}
	switch req.Role {
	case domain.RoleTerminal:
		if req.TerminalID == nil || *req.TerminalID == "" {
			return nil, apperror.Validation("terminal clients require a terminal id")
		}
	case domain.RoleOperator:
		if req.TerminalID != nil {
			return nil, apperror.Validation("operator clients are not scoped to a terminal")
		}
	default:
		return nil, apperror.Validation(fmt.Sprintf("unknown role %q", req.Role))
	}

	secretHash, err := s.hashSvc.Hash(req.Secret)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("hash secret: %w", err))
	}

	client := &domain.APIClient{
		ID:         req.ID,
		SecretHash: secretHash,
		Role:       req.Role,
		TerminalID: req.TerminalID,
		CreatedAt:  time.Now().UTC(),
	}

	if err := s.clientRepo.Create(ctx, client); err != nil {
		if errors.Is(err, ports.ErrDuplicateClient) {
			return nil, apperror.ErrClientExists()
		}
		return nil, apperror.InternalError(fmt.Errorf("create client: %w", err))
	}

	return client, nil
}
