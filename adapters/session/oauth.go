package session

import (
	"context"
	"fmt"

	"github.com/lestrrat-go/jwx/v2/jwk"
	"github.com/lestrrat-go/jwx/v2/jwt"
	"google.golang.org/api/idtoken"

	"github.com/reclaimhq/reclaim/internal/config"
)

// OAuthVerifier validates a provider-issued ID token and returns the
// asserted email.
type OAuthVerifier interface {
	Verify(ctx context.Context, provider, idToken string) (email string, err error)
}

const appleIssuer = "https://appleid.apple.com"

type oauthVerifier struct {
	googleClientID string
	appleJWKSURL   string
	appleAudience  string
}

func NewOAuthVerifier(cfg config.Config) OAuthVerifier {
	return &oauthVerifier{
		googleClientID: cfg.OAuth.GoogleClientID,
		appleJWKSURL:   cfg.OAuth.AppleJWKSURL,
		appleAudience:  cfg.OAuth.AppleAudience,
	}
}

func (v *oauthVerifier) Verify(ctx context.Context, provider, token string) (string, error) {
	switch provider {
	case "google":
		return v.verifyGoogle(ctx, token)
	case "apple":
		return v.verifyApple(ctx, token)
	default:
		return "", fmt.Errorf("unsupported oauth provider %q", provider)
	}
}

func (v *oauthVerifier) verifyGoogle(ctx context.Context, token string) (string, error) {
	payload, err := idtoken.Validate(ctx, token, v.googleClientID)
	if err != nil {
		return "", fmt.Errorf("google id token validation: %w", err)
	}
	email, _ := payload.Claims["email"].(string)
	if email == "" {
		return "", fmt.Errorf("google id token has no email claim")
	}
	return email, nil
}

func (v *oauthVerifier) verifyApple(ctx context.Context, token string) (string, error) {
	set, err := jwk.Fetch(ctx, v.appleJWKSURL)
	if err != nil {
		return "", fmt.Errorf("apple jwks fetch: %w", err)
	}

	tok, err := jwt.Parse([]byte(token),
		jwt.WithKeySet(set),
		jwt.WithIssuer(appleIssuer),
		jwt.WithAudience(v.appleAudience),
		jwt.WithValidate(true),
	)
	if err != nil {
		return "", fmt.Errorf("apple id token validation: %w", err)
	}

	raw, ok := tok.Get("email")
	if !ok {
		return "", fmt.Errorf("apple id token has no email claim")
	}
	email, _ := raw.(string)
	if email == "" {
		return "", fmt.Errorf("apple id token has no email claim")
	}
	return email, nil
}
