package service

import (
	"strings"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

var googleLoginScopes = []string{"openid", "email", "profile"}

// GoogleLogin arma la URL de consentimiento de Google. Google devuelve al navegador
// a FRONTEND_URL y el frontend termina el login con POST /user/token.
type GoogleLogin struct {
	oauth *oauth2.Config
}

func NewGoogleLogin(clientID, clientSecret, frontendURL string) *GoogleLogin {
	return &GoogleLogin{oauth: &oauth2.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		RedirectURL:  frontendURL,
		Scopes:       googleLoginScopes,
		Endpoint:     google.Endpoint,
	}}
}

// AuthURL incluye state para que el frontend pueda validar la vuelta.
func (g *GoogleLogin) AuthURL(state string) string {
	return g.oauth.AuthCodeURL(state, oauth2.AccessTypeOnline)
}

// SecureCookie indica si la cookie de state debe marcarse Secure (frontend en https).
func (g *GoogleLogin) SecureCookie() bool {
	return strings.HasPrefix(strings.ToLower(g.oauth.RedirectURL), "https://")
}
