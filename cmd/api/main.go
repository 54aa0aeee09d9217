package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"

	"github.com/example/plantshop/internal/account"
	"github.com/example/plantshop/internal/api"
	"github.com/example/plantshop/internal/auth"
	"github.com/example/plantshop/internal/catalog"
	"github.com/example/plantshop/internal/comments"
	"github.com/example/plantshop/internal/config"
	"github.com/example/plantshop/internal/domain/order"
	"github.com/example/plantshop/internal/event"
	"github.com/example/plantshop/internal/infrastructure/kafka"
	"github.com/example/plantshop/internal/infrastructure/kvstore"
	"github.com/example/plantshop/internal/session"
)

const (
	accessTokenTTL  = 15 * time.Minute
	refreshTokenTTL = 7 * 24 * time.Hour
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger := config.NewLogger(cfg.Logger)
	logger.Info().Str("backend", cfg.Store.Backend).Msg("starting storefront API")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := catalog.ConnectPostgres(cfg.Database.URL)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to postgres")
	}
	defer db.Close()

	catalogStore, err := catalog.NewPostgresStore(db)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize catalog store")
	}

	accountStore, err := account.NewPostgresStore(db)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize account store")
	}

	commentStore, err := comments.NewPostgresStore(db)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize comment store")
	}

	var kv kvstore.Store
	switch cfg.Store.Backend {
	case "postgres":
		kv, err = kvstore.NewPostgresStore(db)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to initialize postgres kv store")
		}
	case "dynamo":
		awsCfg, err := awsconfig.LoadDefaultConfig(ctx)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to load AWS configuration")
		}
		kv = kvstore.NewDynamoStore(dynamodb.NewFromConfig(awsCfg), cfg.Dynamo.Table)
	default:
		kv = kvstore.NewMemoryStore()
	}

	producer := kafka.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.Topic)
	defer producer.Close()

	sessions := session.NewManager(kv, []event.Sink{producer.Sink}, logger, order.Options{
		ShippingFee: cfg.Checkout.ShippingFee,
		DeliveryDur: time.Duration(cfg.Checkout.DeliveryDays) * 24 * time.Hour,
	})

	tokens := auth.NewTokenService(cfg.Auth.JWTSecret, accessTokenTTL, refreshTokenTTL)

	router := api.NewRouter(api.RouterConfig{
		Handlers:     api.NewHandlers(sessions, catalogStore, comments.NewService(commentStore), logger),
		AuthHandlers: api.NewAuthHandlers(accountStore, tokens, logger),
		Tokens:       tokens,
		Logger:       logger,
	})

	srv := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info().Str("addr", srv.Addr).Msg("listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("server error")
		}
	}()

	<-ctx.Done()
	logger.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("graceful shutdown failed")
	}
	logger.Info().Msg("stopped")
}
