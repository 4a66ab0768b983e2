package http

import (
	"context"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/theonesud/API-Template/internal/notify"
	"github.com/theonesud/API-Template/internal/service"
)

// authService es lo que los handlers necesitan de service.AuthService.
type authService interface {
	Login(ctx context.Context, assertion string) (service.TokenPair, error)
	Refresh(ctx context.Context, refreshToken string) (service.TokenPair, error)
	Logout(ctx context.Context, accessToken string) error
	CurrentUser(ctx context.Context, accessToken string) (service.Claims, error)
}

// LoginRedirector arma la URL de login del proveedor (service.GoogleLogin).
type LoginRedirector interface {
	AuthURL(state string) string
	SecureCookie() bool
}

const oauthStateCookie = "oauth_state"

// AuthHandler mantiene dependencias para los endpoints de /user.
type AuthHandler struct {
	logger   *zap.Logger
	auth     authService
	redirect LoginRedirector
	limiter  service.LoginRateLimiter
	notifier notify.Notifier
}

// NewAuthHandler crea el handler. redirect y limiter pueden ser nil.
func NewAuthHandler(
	logger *zap.Logger,
	auth authService,
	redirect LoginRedirector,
	limiter service.LoginRateLimiter,
	notifier notify.Notifier,
) *AuthHandler {
	if notifier == nil {
		notifier = notify.NewDisabled()
	}
	return &AuthHandler{
		logger:   logger,
		auth:     auth,
		redirect: redirect,
		limiter:  limiter,
		notifier: notifier,
	}
}

// Health maneja GET /.
func (h *AuthHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"health": "ok"})
}

// GoogleLogin maneja GET /user/login: redirige al consentimiento de Google.
func (h *AuthHandler) GoogleLogin(c *gin.Context) {
	if h.redirect == nil {
		h.logger.Error("google login redirect not configured")
		h.notifier.Error(c.Request.Context(), "Error redirecting to Google login: not configured")
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"detail": "Error redirecting to Google login"})
		return
	}
	state := uuid.NewString()
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(oauthStateCookie, state, 600, "/", "", h.redirect.SecureCookie(), true)
	c.Redirect(http.StatusFound, h.redirect.AuthURL(state))
}

// Login maneja POST /user/token.
func (h *AuthHandler) Login(c *gin.Context) {
	if h.limiter != nil {
		if ok, retryAfter := h.limiter.Allow(c.Request.Context(), c.ClientIP()); !ok {
			h.logger.Warn("login rate limited", zap.String("client_ip", c.ClientIP()), zap.Duration("retry_after", retryAfter))
			c.Header("Retry-After", retryAfterSeconds(retryAfter))
			c.JSON(http.StatusTooManyRequests, gin.H{"detail": "Too many requests"})
			return
		}
	}

	var req struct {
		GoogleToken string `json:"google_token" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid login request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"detail": "Invalid request"})
		return
	}

	pair, err := h.auth.Login(c.Request.Context(), req.GoogleToken)
	if err != nil {
		h.fail(c, "login", err)
		return
	}
	c.JSON(http.StatusOK, pair)
}

// Refresh maneja POST /user/refresh con el refresh token en Authorization.
func (h *AuthHandler) Refresh(c *gin.Context) {
	pair, err := h.auth.Refresh(c.Request.Context(), GetBearerToken(c))
	if err != nil {
		h.fail(c, "refresh", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"access_token": pair.AccessToken})
}

// Logout maneja GET /user/logout.
func (h *AuthHandler) Logout(c *gin.Context) {
	if err := h.auth.Logout(c.Request.Context(), GetBearerToken(c)); err != nil {
		h.fail(c, "logout", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"msg": "Logged out successfully"})
}

// Me maneja GET /user/.
func (h *AuthHandler) Me(c *gin.Context) {
	claims, err := h.auth.CurrentUser(c.Request.Context(), GetBearerToken(c))
	if err != nil {
		h.fail(c, "current user", err)
		return
	}
	c.JSON(http.StatusOK, claims)
}

// fail traduce errores del servicio: auth -> 401 generico, el resto -> 500.
func (h *AuthHandler) fail(c *gin.Context, op string, err error) {
	if service.IsAuthError(err) {
		h.logger.Warn(op+" rejected", zap.Error(err), zap.String("request_id", c.GetString(requestIDKey)))
		abortUnauthorized(c)
		return
	}
	h.logger.Error(op+" failed", zap.Error(err), zap.String("request_id", c.GetString(requestIDKey)))
	h.notifier.Error(c.Request.Context(), fmt.Sprintf("%s failed: %v", op, err))
	c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"detail": "Internal server error"})
}

// retryAfterSeconds redondea hacia arriba; nunca menos de 1s.
func retryAfterSeconds(d time.Duration) string {
	secs := int(math.Ceil(d.Seconds()))
	if secs < 1 {
		secs = 1
	}
	return strconv.Itoa(secs)
}
