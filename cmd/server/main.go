package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/sirupsen/logrus"

	"session-portal/internal/auth"
	"session-portal/internal/config"
	apphttp "session-portal/internal/http"
	"session-portal/internal/logging"
	"session-portal/internal/metrics"
	"session-portal/internal/repository/sqlite"
	"session-portal/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("load config: %v", err)
	}

	logger := logging.New(cfg.Log.Level, cfg.Log.Format)
	if err := cfg.Validate(); err != nil {
		logger.Fatalf("invalid config: %v", err)
	}
	policy, _ := cfg.LookupPolicy()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := sqlite.Open(cfg.Database.Path)
	if err != nil {
		logger.Fatalf("open database: %v", err)
	}
	defer db.Close()

	userRepo := sqlite.NewUserRepository(db)
	if err := userRepo.Init(ctx); err != nil {
		logger.Fatalf("init user repository: %v", err)
	}

	userService := service.NewUserService(userRepo, policy, cfg.Auth.BcryptCost)

	tokens, err := auth.NewTokenCodec(cfg.Auth.JWTSecret, cfg.TokenTTL(), cfg.Auth.Issuer)
	if err != nil {
		logger.Fatalf("token codec: %v", err)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	recorder := metrics.NewRecorder()
	if err := recorder.Register(registry); err != nil {
		logger.Fatalf("register metrics: %v", err)
	}

	sessions := service.NewSessionService(service.SessionDeps{
		Credentials: userService,
		Users:       userService,
		Registrar:   userService,
		Tokens:      tokens,
		Observer:    recorder,
	})

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	handler := apphttp.NewHandler(apphttp.Options{
		Sessions: sessions,
		Cookies: auth.CookieConfig{
			Name:     cfg.Cookie.Name,
			Domain:   cfg.Cookie.Domain,
			SameSite: cfg.Cookie.SameSite,
			Secure:   cfg.Cookie.Secure,
		},
		Logger:       logger,
		Metrics:      recorder,
		Gatherer:     registry,
		AllowOrigins: cfg.CORS.AllowOrigins,
	})
	handler.RegisterRoutes(router)

	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.WithFields(logrus.Fields{
			"addr":             cfg.Server.Addr,
			"credential_match": policy.Match,
			"fold_case":        policy.FoldCase,
			"token_ttl":        tokens.TTL().String(),
		}).Info("listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("http server: %v", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warnf("http shutdown: %v", err)
	}

	logger.Info("bye")
}
