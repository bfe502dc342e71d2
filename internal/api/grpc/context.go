package grpc

import (
	"context"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	"farmhub-backend/internal/api/grpc/interceptor"
	"farmhub-backend/internal/domain"
)

// GetActorFromContext extracts the verified caller from the gRPC metadata.
// Only the auth interceptor writes these keys, after verifying the bearer
// token.
func GetActorFromContext(ctx context.Context) (domain.Actor, error) {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return domain.Actor{}, status.Errorf(codes.Unauthenticated, "metadata is not provided")
	}

	userIDs := md.Get(interceptor.MDUserID)
	if len(userIDs) == 0 || userIDs[0] == "" {
		return domain.Actor{}, status.Errorf(codes.Unauthenticated, "user_id is not provided in metadata")
	}

	admin := md.Get(interceptor.MDUserAdmin)
	return domain.Actor{
		ID:    userIDs[0],
		Admin: len(admin) > 0 && admin[0] == "true",
	}, nil
}

// GetUserIDFromContext extracts the caller's identity string.
func GetUserIDFromContext(ctx context.Context) (string, error) {
	actor, err := GetActorFromContext(ctx)
	if err != nil {
		return "", err
	}
	return actor.ID, nil
}

// GetEmailFromContext returns the caller's verified email, or "" when the
// token carried none.
func GetEmailFromContext(ctx context.Context) string {
	md, _ := metadata.FromIncomingContext(ctx)
	if v := md.Get(interceptor.MDUserEmail); len(v) > 0 {
		return v[0]
	}
	return ""
}
