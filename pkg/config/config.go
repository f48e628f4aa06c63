package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Backend   BackendConfig   `mapstructure:"backend"`
	Access    AccessConfig    `mapstructure:"access"`
	Layout    LayoutConfig    `mapstructure:"layout"`
	Portfolio PortfolioConfig `mapstructure:"portfolio"`
	Log       LogConfig       `mapstructure:"log"`
	Kafka     KafkaConfig     `mapstructure:"kafka"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
}

type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
	// PublicURL is the address browsers use to reach the service. Empty means
	// http://localhost:<port>.
	PublicURL string `mapstructure:"public_url"`
}

type BackendConfig struct {
	BaseURL      string        `mapstructure:"base_url"`
	SnapshotPath string        `mapstructure:"snapshot_path"`
	HoldingsPath string        `mapstructure:"holdings_path"`
	AccountPath  string        `mapstructure:"account_path"`
	Timeout      time.Duration `mapstructure:"timeout"`
}

type AccessConfig struct {
	DevHosts []string `mapstructure:"dev_hosts"`
}

type LayoutConfig struct {
	Breakpoint  int           `mapstructure:"breakpoint"`
	SettleDelay time.Duration `mapstructure:"settle_delay"`
}

type PortfolioConfig struct {
	// FallbackPrices maps symbol to price for holdings without current_price
	FallbackPrices map[string]float64 `mapstructure:"fallback_prices"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Pretty bool   `mapstructure:"pretty"`
}

type KafkaConfig struct {
	Brokers []string `mapstructure:"brokers"`
	Topic   string   `mapstructure:"topic"`
	GroupID string   `mapstructure:"group_id"`
}

type TelemetryConfig struct {
	ServiceName  string  `mapstructure:"service_name"`
	CollectorURL string  `mapstructure:"collector_url"`
	Environment  string  `mapstructure:"environment"`
	SampleRatio  float64 `mapstructure:"sample_ratio"`
	Enabled      bool    `mapstructure:"enabled"`
}

// Load reads <configName>.yaml from the usual locations, then DASHBOARD_*
// environment variables. A .env file in the working directory is loaded
// first if present.
func Load(configName string) (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()

	v.SetConfigName(configName)
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/equishare-dashboard/")

	v.SetEnvPrefix("DASHBOARD")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	SetDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if cfg.Server.PublicURL == "" {
		cfg.Server.PublicURL = fmt.Sprintf("http://localhost:%d", cfg.Server.Port)
	}
	cfg.Portfolio.FallbackPrices = NormalizePrices(cfg.Portfolio.FallbackPrices)

	return &cfg, nil
}

// SetDefaults registers the default for every key. The CLI shares it with
// its own global viper instance.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.public_url", "")

	v.SetDefault("backend.base_url", "http://localhost:8090")
	v.SetDefault("backend.snapshot_path", "/portfolio")
	v.SetDefault("backend.holdings_path", "/equities")
	v.SetDefault("backend.account_path", "/account")
	v.SetDefault("backend.timeout", time.Duration(0))

	v.SetDefault("access.dev_hosts", []string{"localhost", "127.0.0.1", "::1"})

	v.SetDefault("layout.breakpoint", 768)
	v.SetDefault("layout.settle_delay", 50*time.Millisecond)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.pretty", false)

	v.SetDefault("kafka.brokers", []string{})
	v.SetDefault("kafka.topic", "equishare.dashboard.writes")
	v.SetDefault("kafka.group_id", "dashboard-service")

	v.SetDefault("telemetry.service_name", "dashboard-service")
	v.SetDefault("telemetry.environment", "dev")
	v.SetDefault("telemetry.sample_ratio", 1.0)
	v.SetDefault("telemetry.enabled", false)
}

// NormalizePrices upper-cases symbols. Viper lower-cases map keys, symbols
// are conventionally upper case.
func NormalizePrices(in map[string]float64) map[string]float64 {
	out := make(map[string]float64, len(in))
	for sym, p := range in {
		out[strings.ToUpper(strings.TrimSpace(sym))] = p
	}
	return out
}
