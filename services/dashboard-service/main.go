package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"

	"github.com/Rohianon/equishare-dashboard/pkg/backend"
	"github.com/Rohianon/equishare-dashboard/pkg/config"
	"github.com/Rohianon/equishare-dashboard/pkg/dashboard"
	"github.com/Rohianon/equishare-dashboard/pkg/events"
	"github.com/Rohianon/equishare-dashboard/pkg/layout"
	"github.com/Rohianon/equishare-dashboard/pkg/logger"
	"github.com/Rohianon/equishare-dashboard/pkg/metrics"
	"github.com/Rohianon/equishare-dashboard/pkg/middleware"
	"github.com/Rohianon/equishare-dashboard/pkg/response"
	"github.com/Rohianon/equishare-dashboard/pkg/telemetry"
	"github.com/Rohianon/equishare-dashboard/services/dashboard-service/internal/consumer"
	"github.com/Rohianon/equishare-dashboard/services/dashboard-service/internal/handler"
	ws "github.com/Rohianon/equishare-dashboard/services/dashboard-service/internal/websocket"
)

const serviceName = "dashboard-service"

func main() {
	cfg, err := config.Load("config")
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger.Init(serviceName, cfg.Log.Level, cfg.Log.Pretty)
	logger.Info().Msg("Starting Dashboard Service")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	tp, err := telemetry.Init(ctx, &telemetry.Config{
		ServiceName:  cfg.Telemetry.ServiceName,
		CollectorURL: cfg.Telemetry.CollectorURL,
		Environment:  cfg.Telemetry.Environment,
		Enabled:      cfg.Telemetry.Enabled,
		SampleRatio:  cfg.Telemetry.SampleRatio,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to initialize telemetry")
	}

	client := backend.NewClient(backend.Config{
		BaseURL:      cfg.Backend.BaseURL,
		SnapshotPath: cfg.Backend.SnapshotPath,
		HoldingsPath: cfg.Backend.HoldingsPath,
		AccountPath:  cfg.Backend.AccountPath,
		Timeout:      cfg.Backend.Timeout,
	}, nil)
	logger.Info().Str("backend", client.BaseURL()).Msg("Using portfolio backend")

	// Kafka is optional; without brokers events are dropped
	instanceID := uuid.New().String()[:8]
	source := serviceName + "/" + instanceID
	var publisher events.Publisher = events.NoopPublisher{}
	var subscriber *events.KafkaSubscriber
	if len(cfg.Kafka.Brokers) > 0 {
		publisher = events.NewKafkaPublisher(cfg.Kafka.Brokers)
		// One group per instance so every instance sees every write
		subscriber = events.NewKafkaSubscriber(cfg.Kafka.Brokers, cfg.Kafka.GroupID+"-"+instanceID)
		logger.Info().Strs("brokers", cfg.Kafka.Brokers).Str("topic", cfg.Kafka.Topic).Msg("Kafka enabled")
	} else {
		logger.Warn().Msg("No Kafka brokers configured, write events will not be published")
	}

	session := dashboard.NewSession(client, dashboard.Options{
		FallbackPrices: cfg.Portfolio.FallbackPrices,
		Identity:       cfg.Server.PublicURL,
		DevHosts:       cfg.Access.DevHosts,
		Publisher:      publisher,
		Topic:          cfg.Kafka.Topic,
		Source:         source,
	})
	logger.Info().
		Str("public_url", cfg.Server.PublicURL).
		Bool("writable", session.Writable()).
		Msg("Access gate evaluated")

	hub := ws.NewHub()
	go hub.Run()
	session.OnSwap(hub.BroadcastSnapshot)

	if subscriber != nil {
		reloader := consumer.NewReloader(session, source)
		if err := subscriber.Subscribe(ctx, cfg.Kafka.Topic, reloader.Handle); err != nil {
			logger.Fatal().Err(err).Msg("Failed to subscribe to dashboard writes")
		}
	}

	h := handler.NewHandler(session, layout.Config{
		Breakpoint:  cfg.Layout.Breakpoint,
		SettleDelay: cfg.Layout.SettleDelay,
	})

	// Setup Fiber app
	app := fiber.New(fiber.Config{
		AppName:      "EquiShare Dashboard Service",
		ErrorHandler: response.ErrorHandler,
	})

	// Middleware
	app.Use(recover.New())
	app.Use(middleware.RequestID())
	app.Use(middleware.Tracing())
	app.Use(middleware.Logger())
	app.Use(middleware.SecurityHeaders())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "Origin, Content-Type, Accept",
		AllowMethods: "GET, POST, PATCH, OPTIONS",
	}))
	app.Use(metrics.Middleware(metrics.Config{
		ServiceName: serviceName,
		SkipPaths:   []string{"/health", "/metrics", "/ws"},
	}))

	// Health check
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":   "healthy",
			"service":  serviceName,
			"writable": session.Writable(),
			"loading":  session.Loading(),
		})
	})
	app.Get("/metrics", metrics.Handler())

	// WebSocket endpoint for snapshot notifications
	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})

	app.Get("/ws", websocket.New(func(c *websocket.Conn) {
		client := ws.NewClient(uuid.New().String(), c, hub)
		hub.Register(client)

		go client.WritePump()
		client.ReadPump()
	}))

	h.Register(app)

	// Start server
	go func() {
		addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
		logger.Info().Str("addr", addr).Msg("Server listening")
		if err := app.Listen(addr); err != nil && !errors.Is(err, net.ErrClosed) {
			logger.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("Shutting down Dashboard Service")
	cancel()
	hub.Stop()

	if err := app.Shutdown(); err != nil {
		logger.Error().Err(err).Msg("Error during shutdown")
	}
	if subscriber != nil {
		if err := subscriber.Close(); err != nil {
			logger.Error().Err(err).Msg("Error closing Kafka subscriber")
		}
	}
	if err := publisher.Close(); err != nil {
		logger.Error().Err(err).Msg("Error closing Kafka publisher")
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := tp.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("Error shutting down telemetry")
	}
}
