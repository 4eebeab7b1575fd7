package main

import (
	"context"
	"database/sql"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/tm-acme-shop/acme-shop-order-orchestrator/internal/clients"
	"github.com/tm-acme-shop/acme-shop-order-orchestrator/internal/config"
	"github.com/tm-acme-shop/acme-shop-order-orchestrator/internal/events"
	"github.com/tm-acme-shop/acme-shop-order-orchestrator/internal/handlers"
	"github.com/tm-acme-shop/acme-shop-order-orchestrator/internal/repository"
	"github.com/tm-acme-shop/acme-shop-order-orchestrator/internal/server"
	"github.com/tm-acme-shop/acme-shop-order-orchestrator/internal/service"

	_ "github.com/lib/pq"
)

func main() {
	cfg := config.Load()

	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	logger := log.With().Str("service", "order-orchestrator").Logger()

	logger.Info().Int("port", cfg.Server.Port).Msg("Starting order-orchestrator")

	db, err := initDatabase(cfg, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer db.Close()

	orderRepo := repository.NewPostgresOrderRepository(db, logger)
	orderCache := repository.NewRedisOrderCache(cfg.Redis, logger)
	defer orderCache.Close()

	catalogClient := clients.NewHTTPCatalogClient(cfg.CatalogService, logger)
	paymentClient := clients.NewHTTPPaymentClient(cfg.PaymentService, logger)

	eventPublisher := events.NewKafkaPublisher(cfg.Kafka, logger)
	defer eventPublisher.Close()

	orderService := service.NewOrderService(
		orderRepo,
		orderCache,
		catalogClient,
		paymentClient,
		eventPublisher,
		cfg,
		logger,
	)

	h := handlers.NewHandlers(orderService, cfg, logger)

	srv := server.New(h, cfg)

	go func() {
		logger.Info().
			Int("port", cfg.Server.Port).
			Bool("enable_order_caching", cfg.Features.EnableOrderCaching).
			Bool("enable_order_events", cfg.Features.EnableOrderEvents).
			Msg("Server starting")
		if err := srv.Start(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("Server failed to start")
		}
	}()

	eventConsumer := events.NewKafkaConsumer(cfg.Kafka, orderService, logger)
	go func() {
		if err := eventConsumer.Start(context.Background()); err != nil && err != context.Canceled {
			logger.Error().Err(err).Msg("Event consumer failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	eventConsumer.Stop()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error().Err(err).Msg("Server forced to shutdown")
	}

	logger.Info().Msg("Server exited")
}

func initDatabase(cfg *config.Config, logger zerolog.Logger) (*sql.DB, error) {
	db, err := sql.Open("postgres", cfg.Database.ConnectionString())
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	db.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.Database.MaxLifetime)

	if err := db.Ping(); err != nil {
		return nil, err
	}

	logger.Info().
		Str("host", cfg.Database.Host).
		Str("name", cfg.Database.Name).
		Msg("Database connected")

	return db, nil
}
