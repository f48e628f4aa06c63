package main

import (
	"os"

	"github.com/gofiber/fiber/v2"

	"github.com/Rohianon/equishare-dashboard/pkg/logger"
	"github.com/Rohianon/equishare-dashboard/pkg/middleware"
)

func main() {
	logger.Init("portfolio-backend-mock", "debug", true)

	server := NewServer(os.Getenv("BALANCE_FIELD"))

	app := fiber.New(fiber.Config{
		AppName: "Portfolio Backend Mock Server",
	})
	app.Use(middleware.RequestID())
	app.Use(middleware.Logger())

	server.Routes(app)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8090"
	}

	logger.Info().Str("port", port).Str("balance_field", server.balanceField).Msg("Portfolio Backend Mock Server starting")
	if err := app.Listen(":" + port); err != nil {
		logger.Fatal().Err(err).Msg("Failed to start server")
	}
}
