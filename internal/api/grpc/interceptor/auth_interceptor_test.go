package interceptor

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	"farmhub-backend/internal/security"
)

const testSecret = "interceptor-test-secret-0123456789abcdef"

type seen struct {
	md     metadata.MD
	called bool
}

func (s *seen) handler(ctx context.Context, req interface{}) (interface{}, error) {
	s.called = true
	s.md, _ = metadata.FromIncomingContext(ctx)
	return "ok", nil
}

func call(t *testing.T, i *AuthInterceptor, method string, md metadata.MD) (*seen, error) {
	t.Helper()
	s := &seen{}
	ctx := metadata.NewIncomingContext(context.Background(), md)
	_, err := i.Unary()(ctx, struct{}{}, &grpc.UnaryServerInfo{FullMethod: method}, s.handler)
	return s, err
}

func TestAuthInterceptor(t *testing.T) {
	tm := security.NewTokenManager(testSecret, time.Hour, 24*time.Hour)
	i := NewAuthInterceptor(tm)
	access, err := tm.GenerateAccessToken("uid-1", "olga@farm.test", true)
	require.NoError(t, err)
	refresh, err := tm.GenerateRefreshToken("uid-1", "olga@farm.test", false)
	require.NoError(t, err)

	t.Run("PublicStripsForgedIdentity", func(t *testing.T) {
		s, err := call(t, i, "/farmhub.api.v1.Marketplace/ListListings", metadata.Pairs("user-id", "forged", "user-admin", "true"))
		require.NoError(t, err)
		assert.True(t, s.called)
		assert.Empty(t, s.md.Get("user-id"))
		assert.Empty(t, s.md.Get("user-admin"))
	})

	t.Run("MissingToken", func(t *testing.T) {
		s, err := call(t, i, "/farmhub.api.v1.Marketplace/AcceptRequest", metadata.MD{})
		assert.Equal(t, codes.Unauthenticated, status.Code(err))
		assert.False(t, s.called)
	})

	t.Run("BadToken", func(t *testing.T) {
		_, err := call(t, i, "/farmhub.api.v1.Marketplace/AcceptRequest", metadata.Pairs("authorization", "Bearer nonsense"))
		assert.Equal(t, codes.Unauthenticated, status.Code(err))
	})

	t.Run("AccessTokenSetsIdentity", func(t *testing.T) {
		s, err := call(t, i, "/farmhub.api.v1.Marketplace/AcceptRequest", metadata.Pairs(
			"authorization", "Bearer "+access,
			"user-id", "forged",
		))
		require.NoError(t, err)
		assert.Equal(t, []string{"uid-1"}, s.md.Get("user-id"))
		assert.Equal(t, []string{"true"}, s.md.Get("user-admin"))
		assert.Equal(t, []string{"olga@farm.test"}, s.md.Get("user-email"))
	})

	t.Run("RefreshTokenOnAccessEndpoint", func(t *testing.T) {
		_, err := call(t, i, "/farmhub.api.v1.Marketplace/AcceptRequest", metadata.Pairs("authorization", "Bearer "+refresh))
		assert.Equal(t, codes.PermissionDenied, status.Code(err))
	})

	t.Run("AccessTokenOnRefreshEndpoint", func(t *testing.T) {
		_, err := call(t, i, "/farmhub.api.v1.AuthService/RefreshToken", metadata.Pairs("authorization", "Bearer "+access))
		assert.Equal(t, codes.PermissionDenied, status.Code(err))

		s, err := call(t, i, "/farmhub.api.v1.AuthService/RefreshToken", metadata.Pairs("authorization", "Bearer "+refresh))
		require.NoError(t, err)
		assert.Equal(t, []string{"false"}, s.md.Get("user-admin"))
	})

	t.Run("UnknownMethodNeedsAccess", func(t *testing.T) {
		_, err := call(t, i, "/farmhub.api.v1.Marketplace/Unlisted", metadata.MD{})
		assert.Equal(t, codes.Unauthenticated, status.Code(err))
	})
}

func TestMetricsInterceptorPassesThrough(t *testing.T) {
	s := &seen{}
	resp, err := Metrics()(context.Background(), struct{}{}, &grpc.UnaryServerInfo{FullMethod: "/x/y"}, s.handler)
	require.NoError(t, err)
	assert.Equal(t, "ok", resp)
	assert.True(t, s.called)
}
