package config

import (
	"errors"
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/caarlos0/env/v10"
)

const (
	EnvLocal      = "local"
	EnvProduction = "production"
)

// Config centraliza la configuración del servicio.
type Config struct {
	Env                string        `env:"ENV" envDefault:"development"`
	HTTPPort           string        `env:"HTTP_PORT" envDefault:"8080"`
	DatabaseURL        string        `env:"DATABASE_URL"`
	DBMaxConns         int32         `env:"DB_MAX_CONNS" envDefault:"30"`
	DBStatementTimeout time.Duration `env:"DB_STATEMENT_TIMEOUT" envDefault:"10s"`
	EmbeddedDB         bool          `env:"EMBEDDED_DB" envDefault:"false"`

	GoogleClientID     string `env:"GOOGLE_CLIENT_ID"`
	GoogleClientSecret string `env:"GOOGLE_CLIENT_SECRET"`
	FrontendURL        string `env:"FRONTEND_URL"`
	APISecretKey       string `env:"API_SECRET_KEY,required"`
	AccessTTLMins      int    `env:"ACCESS_TOKEN_EXPIRE_MINUTES" envDefault:"15"`
	RefreshTTLMins     int    `env:"REFRESH_TOKEN_EXPIRE_MINUTES" envDefault:"10080"`
	SuperuserEmail     string `env:"SUPERUSER_EMAIL"`
	SuperuserName      string `env:"SUPERUSER_NAME"`
	LocalAuthBypass    bool   `env:"LOCAL_AUTH_BYPASS" envDefault:"false"`

	SlackWebhookError string `env:"SLACK_WEBHOOK_URL_ERROR"`
	SlackWebhookInfo  string `env:"SLACK_WEBHOOK_URL_INFO"`
	SlackErrorChannel string `env:"SLACK_ERROR_CHANNEL"`
	SlackInfoChannel  string `env:"SLACK_INFO_CHANNEL"`

	RedisAddr       string        `env:"REDIS_ADDR"`
	RedisPassword   string        `env:"REDIS_PASSWORD"`
	RedisDB         int           `env:"REDIS_DB" envDefault:"0"`
	LoginRateLimit  int           `env:"LOGIN_RATE_LIMIT" envDefault:"20"`
	LoginRateWindow time.Duration `env:"LOGIN_RATE_WINDOW" envDefault:"1m"`

	CORSAllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envSeparator:"," envDefault:"*"`
	// Vacio: no se confia en X-Forwarded-For y la IP del cliente es la del socket.
	TrustedProxies []string `env:"TRUSTED_PROXIES" envSeparator:","`

	LogDir string `env:"LOG_DIR" envDefault:"logs"`
}

// LoadConfig carga la configuración desde variables de entorno y la valida.
func LoadConfig() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rechaza combinaciones inseguras o incompletas.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.APISecretKey) == "" {
		return errors.New("config: API_SECRET_KEY must be set")
	}
	if c.LocalAuthBypass && c.Env != EnvLocal {
		return errors.New("config: LOCAL_AUTH_BYPASS is only allowed when ENV=local")
	}
	if c.AuthBypassEnabled() && strings.TrimSpace(c.SuperuserEmail) == "" {
		return errors.New("config: SUPERUSER_EMAIL must be set when LOCAL_AUTH_BYPASS is enabled")
	}
	if !c.AuthBypassEnabled() && strings.TrimSpace(c.GoogleClientID) == "" {
		return errors.New("config: GOOGLE_CLIENT_ID must be set")
	}
	if c.EmbeddedDB && c.Env != EnvLocal {
		return errors.New("config: EMBEDDED_DB is only allowed when ENV=local")
	}
	if !c.EmbeddedDB && strings.TrimSpace(c.DatabaseURL) == "" {
		return errors.New("config: DATABASE_URL must be set")
	}
	if c.AccessTTLMins <= 0 || c.RefreshTTLMins <= 0 {
		return errors.New("config: token expiry minutes must be positive")
	}
	for _, p := range c.TrustedProxies {
		if !validProxy(p) {
			return fmt.Errorf("config: TRUSTED_PROXIES entry %q is not an IP or CIDR", p)
		}
	}
	return nil
}

// GoogleLoginEnabled indica si GET /user/login puede redirigir a Google.
func (c *Config) GoogleLoginEnabled() bool {
	return c.GoogleClientID != "" && c.GoogleClientSecret != "" && c.FrontendURL != ""
}

func validProxy(p string) bool {
	p = strings.TrimSpace(p)
	if strings.Contains(p, "/") {
		_, _, err := net.ParseCIDR(p)
		return err == nil
	}
	return net.ParseIP(p) != nil
}

// AuthBypassEnabled indica si el login acepta la identidad fija del superusuario.
func (c *Config) AuthBypassEnabled() bool {
	return c.Env == EnvLocal && c.LocalAuthBypass
}

func (c *Config) AccessTTL() time.Duration {
	return time.Duration(c.AccessTTLMins) * time.Minute
}

func (c *Config) RefreshTTL() time.Duration {
	return time.Duration(c.RefreshTTLMins) * time.Minute
}
