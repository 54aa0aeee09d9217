package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/example/plantshop/internal/account"
	"github.com/example/plantshop/internal/catalog"
	"github.com/example/plantshop/internal/config"
	"github.com/example/plantshop/internal/email"
	"github.com/example/plantshop/internal/infrastructure/kafka"
	"github.com/example/plantshop/internal/notifier"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger := config.NewLogger(cfg.Logger)
	logger.Info().
		Strs("brokers", cfg.Kafka.Brokers).
		Str("topic", cfg.Kafka.Topic).
		Msg("starting notifier worker")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := catalog.ConnectPostgres(cfg.Database.URL)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to postgres")
	}
	defer db.Close()

	accounts, err := account.NewPostgresStore(db)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize account store")
	}

	mailer := email.NewService(cfg.SMTP.Host, cfg.SMTP.Port, cfg.SMTP.From)
	handler := notifier.NewHandler(mailer, accounts, logger)

	consumer := kafka.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.Topic, cfg.Kafka.GroupID, logger)
	defer consumer.Close()

	if err := consumer.Consume(ctx, handler.HandleMessage); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error().Err(err).Msg("consumer stopped")
	}
	logger.Info().Msg("stopped")
}
