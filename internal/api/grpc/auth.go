package grpc

import (
	"context"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"farmhub-backend/internal/security"
)

// AuthHandler rotates token pairs. The interceptor has already validated
// the refresh token carried in the authorization header.
type AuthHandler struct {
	tokenManager security.TokenManager
}

func NewAuthHandler(tm security.TokenManager) *AuthHandler {
	return &AuthHandler{tokenManager: tm}
}

var _ AuthServer = (*AuthHandler)(nil)

func (h *AuthHandler) RefreshToken(ctx context.Context, _ *Empty) (*RefreshTokenResponse, error) {
	actor, err := GetActorFromContext(ctx)
	if err != nil {
		return nil, err
	}
	email := GetEmailFromContext(ctx)

	access, err := h.tokenManager.GenerateAccessToken(actor.ID, email, actor.Admin)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "failed to issue access token: %v", err)
	}
	refresh, err := h.tokenManager.GenerateRefreshToken(actor.ID, email, actor.Admin)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "failed to issue refresh token: %v", err)
	}
	return &RefreshTokenResponse{AccessToken: access, RefreshToken: refresh}, nil
}
