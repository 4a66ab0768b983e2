package service

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"
	"google.golang.org/api/idtoken"
)

type mockIDTokenValidator struct {
	payload      *idtoken.Payload
	err          error
	lastToken    string
	lastAudience string
	calls        int
}

func (m *mockIDTokenValidator) Validate(_ context.Context, token string, audience string) (*idtoken.Payload, error) {
	m.calls++
	m.lastToken = token
	m.lastAudience = audience
	return m.payload, m.err
}

func newTestGoogleVerifier(v idTokenValidator) *GoogleVerifier {
	return &GoogleVerifier{logger: zap.NewNop(), validator: v, clientID: "client-id"}
}

func TestGoogleVerifier_Success(t *testing.T) {
	for _, iss := range []string{"accounts.google.com", "https://accounts.google.com"} {
		t.Run(iss, func(t *testing.T) {
			mock := &mockIDTokenValidator{payload: &idtoken.Payload{
				Issuer:   iss,
				Audience: "client-id",
				Claims: map[string]interface{}{
					"email":   "A@X.com",
					"name":    "A",
					"picture": "https://lh3.googleusercontent.com/a",
				},
			}}
			identity, err := newTestGoogleVerifier(mock).Verify(context.Background(), " google-token ")
			if err != nil {
				t.Fatalf("verify: %v", err)
			}
			if identity.Email != "a@x.com" || identity.Name != "A" || identity.Picture == "" {
				t.Fatalf("unexpected identity: %+v", identity)
			}
			if mock.lastToken != "google-token" || mock.lastAudience != "client-id" {
				t.Fatalf("unexpected validate args: %q %q", mock.lastToken, mock.lastAudience)
			}
		})
	}
}

func TestGoogleVerifier_Failures(t *testing.T) {
	tests := []struct {
		name      string
		assertion string
		mock      *mockIDTokenValidator
	}{
		{"empty assertion", "  ", &mockIDTokenValidator{}},
		{"signature or audience rejected", "tok", &mockIDTokenValidator{err: errors.New("idtoken: audience provided does not match aud claim")}},
		{"foreign issuer", "tok", &mockIDTokenValidator{payload: &idtoken.Payload{
			Issuer: "https://evil.example.com",
			Claims: map[string]interface{}{"email": "a@x.com"},
		}}},
		{"missing email", "tok", &mockIDTokenValidator{payload: &idtoken.Payload{
			Issuer: "accounts.google.com",
			Claims: map[string]interface{}{"name": "A"},
		}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := newTestGoogleVerifier(tt.mock).Verify(context.Background(), tt.assertion)
			if !errors.Is(err, ErrInvalidAssertion) {
				t.Fatalf("expected ErrInvalidAssertion, got %v", err)
			}
			if !IsAuthError(err) {
				t.Fatalf("expected auth error class")
			}
		})
	}
}

func TestGoogleVerifier_EmptyAssertionSkipsProvider(t *testing.T) {
	mock := &mockIDTokenValidator{}
	_, _ = newTestGoogleVerifier(mock).Verify(context.Background(), "")
	if mock.calls != 0 {
		t.Fatalf("expected no provider call, got %d", mock.calls)
	}
}

func TestStaticVerifier_ReturnsSuperuser(t *testing.T) {
	v := NewStaticVerifier(zap.NewNop(), " Root@Example.com ", "Root")
	identity, err := v.Verify(context.Background(), "anything")
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if identity.Email != "root@example.com" || identity.Name != "Root" {
		t.Fatalf("unexpected identity: %+v", identity)
	}
}
