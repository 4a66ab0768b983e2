package service

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func sampleClaims() Claims {
	return Claims{
		ID:        7,
		Email:     "a@x.com",
		Name:      "A",
		Image:     "https://example.com/a.png",
		CompanyID: 3,
		LoginTime: "2024-09-21T10:00:00Z",
	}
}

func TestTokenCodec_RoundTrip(t *testing.T) {
	codec := NewTokenCodec("secret", 15*time.Minute, 60*time.Minute)
	issuedAt := time.Now().UTC()

	for _, tc := range []struct {
		typ TokenType
		ttl time.Duration
	}{
		{TokenTypeAccess, 15 * time.Minute},
		{TokenTypeRefresh, 60 * time.Minute},
	} {
		t.Run(string(tc.typ), func(t *testing.T) {
			in := sampleClaims()
			token, err := codec.Issue(in, issuedAt, tc.typ)
			if err != nil {
				t.Fatalf("issue: %v", err)
			}
			if parts := strings.Split(token, "."); len(parts) != 3 {
				t.Fatalf("expected compact jws with 3 segments, got %d", len(parts))
			}

			out, err := codec.Verify(token)
			if err != nil {
				t.Fatalf("verify: %v", err)
			}
			if out.ID != in.ID || out.Email != in.Email || out.Name != in.Name ||
				out.Image != in.Image || out.CompanyID != in.CompanyID ||
				out.Deleted != in.Deleted || out.LoginTime != in.LoginTime {
				t.Fatalf("claims changed in round trip: in=%+v out=%+v", in, out)
			}
			if out.TokenType != tc.typ {
				t.Fatalf("expected token_type %q, got %q", tc.typ, out.TokenType)
			}
			wantExp := issuedAt.Add(tc.ttl).Truncate(time.Second)
			if out.ExpiresAt == nil || !out.ExpiresAt.Time.Equal(wantExp) {
				t.Fatalf("expected exp %v, got %v", wantExp, out.ExpiresAt)
			}
		})
	}
}

func TestTokenCodec_IssueDoesNotMutateInput(t *testing.T) {
	codec := NewTokenCodec("secret", time.Minute, time.Hour)
	in := sampleClaims()
	if _, err := codec.Issue(in, time.Now(), TokenTypeRefresh); err != nil {
		t.Fatalf("issue: %v", err)
	}
	if in.TokenType != "" || in.ExpiresAt != nil {
		t.Fatalf("expected caller claims untouched, got %+v", in)
	}
}

func TestTokenCodec_RejectsExpired(t *testing.T) {
	codec := NewTokenCodec("secret", 15*time.Minute, time.Hour)
	token, err := codec.Issue(sampleClaims(), time.Now().Add(-2*time.Hour), TokenTypeAccess)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if _, err := codec.Verify(token); !errors.Is(err, ErrMalformedToken) {
		t.Fatalf("expected ErrMalformedToken for expired token, got %v", err)
	}
}

func TestTokenCodec_RejectsBadSignature(t *testing.T) {
	issuer := NewTokenCodec("other-secret", time.Minute, time.Hour)
	codec := NewTokenCodec("secret", time.Minute, time.Hour)
	token, err := issuer.Issue(sampleClaims(), time.Now(), TokenTypeAccess)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if _, err := codec.Verify(token); !errors.Is(err, ErrMalformedToken) {
		t.Fatalf("expected ErrMalformedToken, got %v", err)
	}
	if _, err := codec.Verify("not.a.jwt"); !errors.Is(err, ErrMalformedToken) {
		t.Fatalf("expected ErrMalformedToken for garbage, got %v", err)
	}
	if _, err := codec.Verify("  "); !errors.Is(err, ErrMalformedToken) {
		t.Fatalf("expected ErrMalformedToken for empty token, got %v", err)
	}
}

func TestTokenCodec_PinsAlgorithm(t *testing.T) {
	codec := NewTokenCodec("secret", time.Minute, time.Hour)
	claims := sampleClaims()
	claims.TokenType = TokenTypeAccess
	claims.ExpiresAt = jwt.NewNumericDate(time.Now().Add(time.Minute))

	hs512, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString([]byte("secret"))
	if err != nil {
		t.Fatalf("sign hs512: %v", err)
	}
	if _, err := codec.Verify(hs512); !errors.Is(err, ErrMalformedToken) {
		t.Fatalf("expected HS512 token rejected, got %v", err)
	}

	none, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatalf("sign none: %v", err)
	}
	if _, err := codec.Verify(none); !errors.Is(err, ErrMalformedToken) {
		t.Fatalf("expected alg=none token rejected, got %v", err)
	}
}

func TestTokenCodec_RequiresExpiration(t *testing.T) {
	codec := NewTokenCodec("secret", time.Minute, time.Hour)
	claims := sampleClaims()
	claims.TokenType = TokenTypeAccess
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("secret"))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if _, err := codec.Verify(token); !errors.Is(err, ErrMalformedToken) {
		t.Fatalf("expected token without exp rejected, got %v", err)
	}
}

func TestTokenCodec_TypesAreNeverCrossAccepted(t *testing.T) {
	codec := NewTokenCodec("secret", time.Minute, time.Hour)
	now := time.Now()
	access, err := codec.Issue(sampleClaims(), now, TokenTypeAccess)
	if err != nil {
		t.Fatalf("issue access: %v", err)
	}
	refresh, err := codec.Issue(sampleClaims(), now, TokenTypeRefresh)
	if err != nil {
		t.Fatalf("issue refresh: %v", err)
	}

	if _, err := codec.ParseAccessToken(refresh); !errors.Is(err, ErrWrongTokenType) {
		t.Fatalf("expected refresh token rejected as access, got %v", err)
	}
	if _, err := codec.ParseRefreshToken(access); !errors.Is(err, ErrWrongTokenType) {
		t.Fatalf("expected access token rejected as refresh, got %v", err)
	}
	if _, err := codec.ParseAccessToken(access); err != nil {
		t.Fatalf("expected access token accepted, got %v", err)
	}
	if _, err := codec.ParseRefreshToken(refresh); err != nil {
		t.Fatalf("expected refresh token accepted, got %v", err)
	}
}

func TestTokenCodec_IssueErrors(t *testing.T) {
	if _, err := NewTokenCodec("", time.Minute, time.Hour).Issue(sampleClaims(), time.Now(), TokenTypeAccess); err == nil {
		t.Fatalf("expected error on empty secret")
	}
	if _, err := NewTokenCodec("secret", time.Minute, time.Hour).Issue(sampleClaims(), time.Now(), "id"); err == nil {
		t.Fatalf("expected error on unknown token type")
	}
}
