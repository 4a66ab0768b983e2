package http

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/theonesud/API-Template/internal/notify"
)

// NewRouter configura el router de Gin con middlewares y rutas.
// Sin trustedProxies, c.ClientIP() es la IP del socket y X-Forwarded-For se ignora.
func NewRouter(logger *zap.Logger, notifier notify.Notifier, trustedProxies []string, authH *AuthHandler) *gin.Engine {
	if notifier == nil {
		notifier = notify.NewDisabled()
	}
	r := gin.New()
	if len(trustedProxies) == 0 {
		trustedProxies = nil
	}
	if err := r.SetTrustedProxies(trustedProxies); err != nil {
		logger.Warn("invalid trusted proxies, trusting none", zap.Strings("proxies", trustedProxies), zap.Error(err))
		_ = r.SetTrustedProxies(nil)
	}

	r.Use(
		requestIDMiddleware(),
		zapLoggerMiddleware(logger),
		recoveryMiddleware(logger, notifier),
		jsonContentTypeMiddleware(),
	)

	r.GET("/", authH.Health)

	bearer := BearerTokenMiddleware(logger)
	user := r.Group("/user")
	user.GET("/login", authH.GoogleLogin)
	user.POST("/token", authH.Login)
	user.POST("/refresh", bearer, authH.Refresh)
	user.GET("/logout", bearer, authH.Logout)
	user.GET("/", bearer, authH.Me)

	return r
}
