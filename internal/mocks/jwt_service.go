package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/tasko-app/tasko-api/internal/service/auth"
)

// MockJWTService implements auth.JWTService for testing. The default
// implementation issues opaque per-user tokens and resolves them back.
type MockJWTService struct {
	GenerateTokenFn        func(ctx context.Context, userID uuid.UUID) (string, error)
	ValidateTokenFn        func(ctx context.Context, tokenString string) (*auth.Claims, error)
	GenerateRefreshTokenFn func(ctx context.Context, userID uuid.UUID) (string, error)
	ValidateRefreshTokenFn func(ctx context.Context, tokenString string) (*auth.Claims, error)

	// tokens maps issued token strings to user IDs for the default behavior.
	tokens map[string]uuid.UUID
}

var _ auth.JWTService = (*MockJWTService)(nil)

// NewMockJWTService creates a new mock JWT service.
func NewMockJWTService() *MockJWTService {
	return &MockJWTService{
		tokens: make(map[string]uuid.UUID),
	}
}

// GenerateToken implements the JWTService interface.
func (m *MockJWTService) GenerateToken(ctx context.Context, userID uuid.UUID) (string, error) {
	if m.GenerateTokenFn != nil {
		return m.GenerateTokenFn(ctx, userID)
	}
	token := "access-" + uuid.NewString()
	m.tokens[token] = userID
	return token, nil
}

// ValidateToken implements the JWTService interface.
func (m *MockJWTService) ValidateToken(ctx context.Context, tokenString string) (*auth.Claims, error) {
	if m.ValidateTokenFn != nil {
		return m.ValidateTokenFn(ctx, tokenString)
	}
	userID, ok := m.tokens[tokenString]
	if !ok {
		return nil, auth.ErrInvalidToken
	}
	return &auth.Claims{UserID: userID, TokenType: "access"}, nil
}

// GenerateRefreshToken implements the JWTService interface.
func (m *MockJWTService) GenerateRefreshToken(ctx context.Context, userID uuid.UUID) (string, error) {
	if m.GenerateRefreshTokenFn != nil {
		return m.GenerateRefreshTokenFn(ctx, userID)
	}
	token := "refresh-" + uuid.NewString()
	m.tokens[token] = userID
	return token, nil
}

// ValidateRefreshToken implements the JWTService interface.
func (m *MockJWTService) ValidateRefreshToken(ctx context.Context, tokenString string) (*auth.Claims, error) {
	if m.ValidateRefreshTokenFn != nil {
		return m.ValidateRefreshTokenFn(ctx, tokenString)
	}
	userID, ok := m.tokens[tokenString]
	if !ok {
		return nil, auth.ErrInvalidRefreshToken
	}
	return &auth.Claims{UserID: userID, TokenType: "refresh"}, nil
}
