package service

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
	"google.golang.org/api/idtoken"
	"google.golang.org/api/option"

	"github.com/theonesud/API-Template/internal/domain"
)

// CredentialVerifier valida una asercion emitida por el proveedor de identidad.
type CredentialVerifier interface {
	Verify(ctx context.Context, assertion string) (domain.Identity, error)
}

var googleIssuers = map[string]bool{
	"accounts.google.com":         true,
	"https://accounts.google.com": true,
}

type idTokenValidator interface {
	Validate(ctx context.Context, idToken string, audience string) (*idtoken.Payload, error)
}

// GoogleVerifier valida Google ID tokens contra las claves publicas de Google.
type GoogleVerifier struct {
	logger    *zap.Logger
	validator idTokenValidator
	clientID  string
}

func NewGoogleVerifier(ctx context.Context, logger *zap.Logger, clientID string) (*GoogleVerifier, error) {
	validator, err := idtoken.NewValidator(ctx, option.WithHTTPClient(&http.Client{Timeout: 10 * time.Second}))
	if err != nil {
		return nil, fmt.Errorf("google id token validator: %w", err)
	}
	return &GoogleVerifier{
		logger:    logger,
		validator: validator,
		clientID:  clientID,
	}, nil
}

func (v *GoogleVerifier) Verify(ctx context.Context, assertion string) (domain.Identity, error) {
	assertion = strings.TrimSpace(assertion)
	if assertion == "" {
		return domain.Identity{}, ErrInvalidAssertion
	}

	payload, err := v.validator.Validate(ctx, assertion, v.clientID)
	if err != nil {
		v.logger.Warn("google token verification failed", zap.Error(err))
		return domain.Identity{}, fmt.Errorf("%w: %v", ErrInvalidAssertion, err)
	}
	if !googleIssuers[payload.Issuer] {
		v.logger.Warn("google token has unexpected issuer", zap.String("iss", payload.Issuer))
		return domain.Identity{}, fmt.Errorf("%w: issuer %q", ErrInvalidAssertion, payload.Issuer)
	}

	email := claimString(payload.Claims, "email")
	if email == "" {
		return domain.Identity{}, fmt.Errorf("%w: missing email claim", ErrInvalidAssertion)
	}
	return domain.Identity{
		Email:   strings.ToLower(email),
		Name:    claimString(payload.Claims, "name"),
		Picture: claimString(payload.Claims, "picture"),
	}, nil
}

func claimString(claims map[string]interface{}, key string) string {
	v, _ := claims[key].(string)
	return strings.TrimSpace(v)
}

// StaticVerifier devuelve siempre la identidad del superusuario. Solo para ENV=local.
type StaticVerifier struct {
	logger   *zap.Logger
	identity domain.Identity
}

func NewStaticVerifier(logger *zap.Logger, email, name string) *StaticVerifier {
	return &StaticVerifier{
		logger: logger,
		identity: domain.Identity{
			Email:   strings.ToLower(strings.TrimSpace(email)),
			Name:    name,
			Picture: "https://asdasd",
		},
	}
}

func (v *StaticVerifier) Verify(_ context.Context, _ string) (domain.Identity, error) {
	v.logger.Warn("local auth bypass: identity assertion not verified", zap.String("email", v.identity.Email))
	return v.identity, nil
}
