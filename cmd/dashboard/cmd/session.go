package cmd

import (
	"github.com/spf13/viper"

	"github.com/Rohianon/equishare-dashboard/pkg/backend"
	"github.com/Rohianon/equishare-dashboard/pkg/config"
	"github.com/Rohianon/equishare-dashboard/pkg/dashboard"
	"github.com/Rohianon/equishare-dashboard/pkg/events"
	"github.com/Rohianon/equishare-dashboard/pkg/logger"
)

// newSession builds a session against the configured backend. The access
// gate is evaluated here, once per invocation, against the configured origin
// or the backend URL when no origin is set. The returned func flushes
// pending events and must be called before exiting.
func newSession() (*dashboard.Session, func()) {
	client := backend.NewClient(backend.Config{
		BaseURL:      viper.GetString("backend.base_url"),
		SnapshotPath: viper.GetString("backend.snapshot_path"),
		HoldingsPath: viper.GetString("backend.holdings_path"),
		AccountPath:  viper.GetString("backend.account_path"),
		Timeout:      viper.GetDuration("backend.timeout"),
	}, nil)

	origin := viper.GetString("origin")
	if origin == "" {
		origin = client.BaseURL()
	}

	var publisher events.Publisher = events.NoopPublisher{}
	if brokers := viper.GetStringSlice("kafka.brokers"); len(brokers) > 0 {
		publisher = events.NewKafkaPublisher(brokers)
	}

	prices := map[string]float64{}
	for sym := range viper.GetStringMap("portfolio.fallback_prices") {
		prices[sym] = viper.GetFloat64("portfolio.fallback_prices." + sym)
	}

	session := dashboard.NewSession(client, dashboard.Options{
		FallbackPrices: config.NormalizePrices(prices),
		Identity:       origin,
		DevHosts:       viper.GetStringSlice("access.dev_hosts"),
		Publisher:      publisher,
		Topic:          viper.GetString("kafka.topic"),
		Source:         "dashboard-cli",
	})
	logger.Debug().
		Str("backend", client.BaseURL()).
		Str("origin", origin).
		Bool("writable", session.Writable()).
		Msg("Session ready")

	return session, func() {
		session.Flush()
		if err := publisher.Close(); err != nil {
			logger.Warn().Err(err).Msg("Failed to close event publisher")
		}
	}
}
