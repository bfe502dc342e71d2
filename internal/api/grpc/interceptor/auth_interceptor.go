package interceptor

import (
	"context"
	"strconv"
	"strings"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	"farmhub-backend/internal/config"
	"farmhub-backend/internal/logger"
	"farmhub-backend/internal/security"
)

// Metadata keys carrying the verified caller to handlers. Only this
// interceptor writes them; values sent by clients are dropped.
const (
	MDUserID    = "user-id"
	MDUserAdmin = "user-admin"
	MDUserEmail = "user-email"
)

var identityKeys = []string{MDUserID, MDUserAdmin, MDUserEmail}

// requiredTokenType is the token type each protected level accepts.
var requiredTokenType = map[config.SecurityLevel]security.TokenType{
	config.SecurityAccess:  security.TokenTypeAccess,
	config.SecurityRefresh: security.TokenTypeRefresh,
}

// AuthInterceptor turns a bearer token into the caller identity the
// marketplace handlers act on.
type AuthInterceptor struct {
	verifier security.Verifier
}

func NewAuthInterceptor(v security.Verifier) *AuthInterceptor {
	return &AuthInterceptor{verifier: v}
}

func (i *AuthInterceptor) Unary() grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
		md := incoming(ctx)
		for _, k := range identityKeys {
			delete(md, k)
		}

		level := config.GetSecurityLevel(info.FullMethod)
		if level == config.SecurityPublic {
			return handler(metadata.NewIncomingContext(ctx, md), req)
		}

		token, err := bearerToken(md)
		if err != nil {
			return nil, err
		}
		claims, err := i.verifier.Verify(ctx, token)
		if err != nil {
			logger.Debug("Rejected bearer token", "method", info.FullMethod, "error", err)
			return nil, status.Errorf(codes.Unauthenticated, "invalid token: %v", err)
		}
		if want := requiredTokenType[level]; claims.Type != want {
			return nil, status.Errorf(codes.PermissionDenied, "%s token required", want)
		}

		md.Set(MDUserID, claims.Identity())
		md.Set(MDUserAdmin, strconv.FormatBool(claims.Admin))
		if claims.Email != "" {
			md.Set(MDUserEmail, claims.Email)
		}
		return handler(metadata.NewIncomingContext(ctx, md), req)
	}
}

// incoming returns a private copy of the request metadata.
func incoming(ctx context.Context) metadata.MD {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return metadata.MD{}
	}
	return md.Copy()
}

func bearerToken(md metadata.MD) (string, error) {
	values := md.Get("authorization")
	if len(values) == 0 || values[0] == "" {
		return "", status.Error(codes.Unauthenticated, "authorization token is not provided")
	}
	token := values[0]
	if scheme, rest, ok := strings.Cut(token, " "); ok && strings.EqualFold(scheme, "bearer") {
		token = strings.TrimSpace(rest)
	}
	return token, nil
}
