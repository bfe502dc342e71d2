package security

import (
	"context"

	"firebase.google.com/go/v4/auth"

	"farmhub-backend/internal/logger"
)

type idTokenVerifier interface {
	VerifyIDToken(ctx context.Context, idToken string) (*auth.Token, error)
}

// FirebaseVerifier accepts Firebase Auth ID tokens. The identity is the
// Firebase UID; administrators carry an "admin" custom claim.
type FirebaseVerifier struct {
	client idTokenVerifier
}

func NewFirebaseVerifier(client *auth.Client) *FirebaseVerifier {
	return &FirebaseVerifier{client: client}
}

func (v *FirebaseVerifier) Verify(ctx context.Context, token string) (*UserClaims, error) {
	logger.ExternalServiceCall("firebase-auth", "VerifyIDToken")
	tok, err := v.client.VerifyIDToken(ctx, token)
	logger.ExternalServiceResult("firebase-auth", "VerifyIDToken", err)
	if err != nil {
		if auth.IsIDTokenExpired(err) {
			return nil, ErrExpiredToken
		}
		return nil, ErrInvalidToken
	}
	if tok.UID == "" {
		return nil, ErrInvalidToken
	}

	claims := &UserClaims{Type: TokenTypeAccess}
	claims.Subject = tok.UID
	if email, ok := tok.Claims["email"].(string); ok {
		claims.Email = email
	}
	if admin, ok := tok.Claims["admin"].(bool); ok {
		claims.Admin = admin
	}
	return claims, nil
}
