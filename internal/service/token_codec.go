package service

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

type TokenType string

const (
	TokenTypeAccess  TokenType = "access"
	TokenTypeRefresh TokenType = "refresh"
)

// Claims es el conjunto de claims firmado. No incluye created_at/updated_at:
// son artefactos de persistencia, no identidad.
type Claims struct {
	ID        int64     `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Image     string    `json:"image,omitempty"`
	CompanyID int64     `json:"company_id"`
	Deleted   bool      `json:"deleted"`
	LoginTime string    `json:"login_time,omitempty"`
	TokenType TokenType `json:"token_type"`
	jwt.RegisteredClaims
}

// TokenPair es la respuesta de login; refresh solo devuelve el access token.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token,omitempty"`
}

// TokenCodec emite y valida tokens HS256 con expiracion.
type TokenCodec struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
}

func NewTokenCodec(secret string, accessTTL, refreshTTL time.Duration) *TokenCodec {
	if accessTTL <= 0 {
		accessTTL = 15 * time.Minute
	}
	if refreshTTL <= 0 {
		refreshTTL = 7 * 24 * time.Hour
	}
	return &TokenCodec{
		secret:     []byte(secret),
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
	}
}

// Issue firma claims con token_type=typ y exp=issuedAt+TTL del tipo.
func (c *TokenCodec) Issue(claims Claims, issuedAt time.Time, typ TokenType) (string, error) {
	if len(c.secret) == 0 {
		return "", errors.New("token codec: empty secret")
	}
	ttl, err := c.ttl(typ)
	if err != nil {
		return "", err
	}
	claims.TokenType = typ
	claims.ExpiresAt = jwt.NewNumericDate(issuedAt.Add(ttl))

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(c.secret)
}

// Verify valida firma y expiracion. No comprueba el tipo de token.
func (c *TokenCodec) Verify(tokenString string) (Claims, error) {
	if len(c.secret) == 0 || strings.TrimSpace(tokenString) == "" {
		return Claims{}, ErrMalformedToken
	}
	var claims Claims
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	)
	_, err := parser.ParseWithClaims(tokenString, &claims, func(_ *jwt.Token) (any, error) {
		return c.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return Claims{}, fmt.Errorf("%w: expired", ErrMalformedToken)
		}
		return Claims{}, fmt.Errorf("%w: %v", ErrMalformedToken, err)
	}
	return claims, nil
}

// ParseAccessToken valida el token y exige token_type=access.
func (c *TokenCodec) ParseAccessToken(tokenString string) (Claims, error) {
	return c.parseTyped(tokenString, TokenTypeAccess)
}

// ParseRefreshToken valida el token y exige token_type=refresh.
func (c *TokenCodec) ParseRefreshToken(tokenString string) (Claims, error) {
	return c.parseTyped(tokenString, TokenTypeRefresh)
}

func (c *TokenCodec) parseTyped(tokenString string, want TokenType) (Claims, error) {
	claims, err := c.Verify(tokenString)
	if err != nil {
		return Claims{}, err
	}
	if err := RequireType(claims, want); err != nil {
		return Claims{}, err
	}
	return claims, nil
}

// RequireType devuelve ErrWrongTokenType si el token no es del tipo esperado.
func RequireType(claims Claims, want TokenType) error {
	if claims.TokenType != want {
		return fmt.Errorf("%w: got %q, want %q", ErrWrongTokenType, claims.TokenType, want)
	}
	return nil
}

func (c *TokenCodec) ttl(typ TokenType) (time.Duration, error) {
	switch typ {
	case TokenTypeAccess:
		return c.accessTTL, nil
	case TokenTypeRefresh:
		return c.refreshTTL, nil
	default:
		return 0, fmt.Errorf("token codec: unknown token type %q", typ)
	}
}
