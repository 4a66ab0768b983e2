package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/go-chi/cors"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/theonesud/API-Template/internal/config"
	"github.com/theonesud/API-Template/internal/db"
	"github.com/theonesud/API-Template/internal/db/migrate"
	apihttp "github.com/theonesud/API-Template/internal/http"
	"github.com/theonesud/API-Template/internal/notify"
	"github.com/theonesud/API-Template/internal/repository"
	"github.com/theonesud/API-Template/internal/service"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := godotenv.Load(); err != nil {
		log.Printf("warning: loading .env: %v", err)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger := newLogger(cfg)
	defer logger.Sync()

	if cfg.EmbeddedDB {
		pg, err := db.StartEmbedded(cfg)
		if err != nil {
			logger.Fatal("embedded postgres", zap.Error(err))
		}
		defer func() {
			if err := pg.Stop(); err != nil {
				logger.Warn("stop embedded postgres", zap.Error(err))
			}
		}()
		if err := migrate.Run(cfg.DatabaseURL, migrate.DirectionUp); err != nil {
			logger.Fatal("migrate embedded postgres", zap.Error(err))
		}
		logger.Info("embedded postgres ready", zap.String("dsn", db.EmbeddedDSN()))
	}

	pool, err := db.NewPool(ctx, cfg)
	if err != nil {
		logger.Fatal("db connect", zap.Error(err))
	}
	defer pool.Close()

	if err := db.Ping(ctx, pool); err != nil {
		logger.Fatal("db ping", zap.Error(err))
	}

	if cfg.EmbeddedDB && cfg.SuperuserEmail != "" {
		userID, err := db.SeedSuperuser(ctx, pool, cfg.SuperuserEmail)
		if err != nil {
			logger.Fatal("seed superuser", zap.Error(err))
		}
		logger.Info("superuser ready", zap.String("email", cfg.SuperuserEmail), zap.Int64("user_id", userID))
	}

	userRepo := repository.NewPgUserRepository(pool)
	sessionRepo := repository.NewPgSessionRepository(pool)

	var verifier service.CredentialVerifier
	if cfg.AuthBypassEnabled() {
		logger.Warn("local auth bypass enabled: google token verification is skipped",
			zap.String("superuser", cfg.SuperuserEmail))
		verifier = service.NewStaticVerifier(logger, cfg.SuperuserEmail, cfg.SuperuserName)
	} else {
		googleVerifier, err := service.NewGoogleVerifier(ctx, logger, cfg.GoogleClientID)
		if err != nil {
			logger.Fatal("google verifier", zap.Error(err))
		}
		verifier = googleVerifier
	}

	codec := service.NewTokenCodec(cfg.APISecretKey, cfg.AccessTTL(), cfg.RefreshTTL())

	loginLimiter := service.NewLoginRateLimiter(cfg.LoginRateWindow, cfg.LoginRateLimit)
	if cfg.RedisAddr != "" {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		defer redisClient.Close()
		ctxPing, cancel := context.WithTimeout(ctx, 2*time.Second)
		if err := redisClient.Ping(ctxPing).Err(); err != nil {
			logger.Warn("redis ping failed, using in-memory login limiter", zap.Error(err))
		} else {
			loginLimiter = service.NewRedisLoginRateLimiter(logger, redisClient, cfg.LoginRateWindow, cfg.LoginRateLimit)
		}
		cancel()
	}

	notifier := notify.NewSlackNotifier(logger, cfg.Env,
		notify.Channel{WebhookURL: cfg.SlackWebhookError, Name: cfg.SlackErrorChannel},
		notify.Channel{WebhookURL: cfg.SlackWebhookInfo, Name: cfg.SlackInfoChannel},
	)

	// interfaz nil explicita si falta config: /user/login responde 500
	var loginRedirect apihttp.LoginRedirector
	if cfg.GoogleLoginEnabled() {
		loginRedirect = service.NewGoogleLogin(cfg.GoogleClientID, cfg.GoogleClientSecret, cfg.FrontendURL)
	} else {
		logger.Warn("google login redirect disabled: GOOGLE_CLIENT_SECRET or FRONTEND_URL missing")
	}

	authSvc := service.NewAuthService(logger, verifier, codec, userRepo, sessionRepo)
	authHandler := apihttp.NewAuthHandler(logger, authSvc, loginRedirect, loginLimiter, notifier)
	router := apihttp.NewRouter(logger, notifier, cfg.TrustedProxies, authHandler)

	corsHandler := cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSAllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	})

	server := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           corsHandler(router),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info("starting server", zap.String("port", cfg.HTTPPort), zap.String("env", cfg.Env))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server error", zap.Error(err))
		}
	}()
	notifier.Info(ctx, "api started")

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", zap.Error(err))
	}
}

func newLogger(cfg *config.Config) *zap.Logger {
	var (
		logger *zap.Logger
		err    error
	)
	if cfg.Env == config.EnvLocal {
		logger, err = zap.NewDevelopment()
	} else {
		logger, err = zap.NewProduction()
	}
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	if cfg.LogDir == "" {
		return logger
	}

	if err := os.MkdirAll(cfg.LogDir, 0o755); err != nil {
		log.Fatalf("logger: create %s: %v", cfg.LogDir, err)
	}
	// archivo JSON con rotacion diaria y 30 dias de retencion
	sink := &lumberjack.Logger{
		Filename:  filepath.Join(cfg.LogDir, "app.log"),
		MaxAge:    30,
		LocalTime: true,
		Compress:  true,
	}
	go rotateDaily(sink)

	fileCore := zapcore.NewCore(
		zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig()),
		zapcore.AddSync(sink),
		zap.InfoLevel,
	)
	return logger.WithOptions(zap.WrapCore(func(c zapcore.Core) zapcore.Core {
		return zapcore.NewTee(c, fileCore)
	}))
}

func rotateDaily(sink *lumberjack.Logger) {
	for {
		now := time.Now()
		next := time.Date(now.Year(), now.Month(), now.Day()+1, 0, 0, 0, 0, now.Location())
		time.Sleep(time.Until(next))
		if err := sink.Rotate(); err != nil {
			log.Printf("warning: rotate log file: %v", err)
		}
	}
}
