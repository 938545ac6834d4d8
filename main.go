package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/OmPrakash-X/Konnekt-sub001/config"
	"github.com/OmPrakash-X/Konnekt-sub001/controllers"
	"github.com/OmPrakash-X/Konnekt-sub001/middleware"
	"github.com/OmPrakash-X/Konnekt-sub001/ratelimit"
	"github.com/OmPrakash-X/Konnekt-sub001/services"
	"github.com/OmPrakash-X/Konnekt-sub001/store"
	"github.com/OmPrakash-X/Konnekt-sub001/utils"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	client, db, err := config.ConnectDB(cfg.MongoURI, cfg.MongoDB)
	if err != nil {
		log.Fatalf("mongo connect error: %v", err)
	}
	st := store.NewMongo(db)
	{
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		if err := st.EnsureIndexes(ctx); err != nil {
			log.Fatalf("mongo index error: %v", err)
		}
		cancel()
	}

	var limiter ratelimit.Limiter = ratelimit.Noop{}
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		limiter = ratelimit.NewRedis(rdb, cfg.OTPRateLimit, cfg.OTPRateWindow)
	}

	mailer := &utils.SMTPMailer{Host: cfg.SMTPHost, Port: cfg.SMTPPort, User: cfg.SMTPUser, Pass: cfg.SMTPPass}
	geocoder := utils.NewHTTPGeocoder(cfg.GeocoderURL)

	ledger := services.NewLedgerService(st, logger)
	sessions := services.NewSessionService(st, ledger, logger)
	auth := services.NewAuthService(st, mailer, limiter, ledger, services.AuthConfig{
		JWTSecret:     []byte(cfg.JWTSecret),
		TokenTTL:      cfg.TokenTTL,
		OTPTTL:        cfg.OTPTTL,
		SignupBonus:   cfg.SignupBonus,
		ReferralBonus: cfg.ReferralBonus,
	}, logger)

	controllers.Init(controllers.Deps{
		Auth:     auth,
		Sessions: sessions,
		Ledger:   ledger,
		Store:    st,
		Geocoder: geocoder,
		TokenTTL: cfg.TokenTTL,
	})

	router := gin.Default()
	router.Use(middleware.RequestID())
	controllers.RegisterRoutes(router, []byte(cfg.JWTSecret), st)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		logger.Info("server started", "port", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	// Wait for interrupt, then drain.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("forced shutdown", "err", err)
	}
	if err := client.Disconnect(ctx); err != nil {
		logger.Error("mongo disconnect", "err", err)
	}
	logger.Info("server exited")
}
