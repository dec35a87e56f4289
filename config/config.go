package config

import (
	"fmt"
	"time"

	"github.com/Zubra14/verista-tracking/pkg/configparser"
)

// Config contains all configuration variables of the application
type (
	Config struct {
		ServiceName string `env:"SERVICE_NAME" default:"tracking-service"`
		LogLevel    string `env:"LOG_LEVEL" default:"DEBUG"`

		Server     ServerConfig
		Database   DatabaseConfig
		RabbitMQ   RabbitMQConfig
		Auth       AuthConfig
		Tracking   TrackingConfig
		LocationIQ LocationIQConfig
	}

	ServerConfig struct {
		Port string `env:"SERVER_PORT" default:"3000"`

		// IngestRatePerSecond limits location-update frames accepted per
		// driver credential; 0 disables the limiter.
		IngestRatePerSecond int `env:"SERVER_INGEST_RATE" default:"5"`
		IngestBurst         int `env:"SERVER_INGEST_BURST" default:"10"`
	}

	DatabaseConfig struct {
		Host     string `env:"DATABASE_HOST" default:"localhost"`
		Port     string `env:"DATABASE_PORT" default:"5432"`
		User     string `env:"DATABASE_USER" default:"verista_user"`
		Password string `env:"DATABASE_PASSWORD" default:"verista_pass"`
		Database string `env:"DATABASE_DATABASE" default:"verista_db"`

		MaxConns        int32         `env:"DATABASE_MAXCONNS" default:"20"`
		MinConns        int32         `env:"DATABASE_MINCONNS" default:"2"`
		MaxConnLifetime time.Duration `env:"DATABASE_MAXCONNLIFETIME" default:"30m"`
		MaxConnIdleTime time.Duration `env:"DATABASE_MAXCONNIDLETIME" default:"5m"`
	}

	RabbitMQConfig struct {
		Host     string `env:"RABBITMQ_HOST" default:"localhost"`
		Port     string `env:"RABBITMQ_PORT" default:"5672"`
		User     string `env:"RABBITMQ_USER" default:"guest"`
		Password string `env:"RABBITMQ_PASSWORD" default:"guest"`

		// Enabled toggles the external location fan-out exchange. The
		// realtime hub works without it.
		Enabled bool `env:"RABBITMQ_ENABLED" default:"true"`
	}

	AuthConfig struct {
		JWTSecret      string        `env:"AUTH_JWT_SECRET" default:"supersecretkey"`
		AccessTokenTTL time.Duration `env:"AUTH_ACCESS_TOKEN_TTL" default:"15m"`
	}

	TrackingConfig struct {
		// Fallback coordinates emitted when a driver device sensor fails.
		FallbackLatitude  float64 `env:"TRACKING_FALLBACK_LATITUDE" default:"-26.20"`
		FallbackLongitude float64 `env:"TRACKING_FALLBACK_LONGITUDE" default:"28.04"`

		// SensorRetryInterval is how often the client retries the real
		// sensor while fallback samples are being emitted.
		SensorRetryInterval time.Duration `env:"TRACKING_SENSOR_RETRY_INTERVAL" default:"5s"`
		SensorTimeout       time.Duration `env:"TRACKING_SENSOR_TIMEOUT" default:"3s"`
	}

	LocationIQConfig struct {
		// APIKey enables reverse geocoding of incident coordinates.
		// Empty disables the integration.
		APIKey string `env:"LOCATIONIQ_API_KEY" default:""`
	}
)

func (c DatabaseConfig) GetDSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=disable",
		c.User,
		c.Password,
		c.Host,
		c.Port,
		c.Database,
	)
}

// PoolSettings exposes the pgx pool knobs for pkg/postgres.
func (c DatabaseConfig) PoolSettings() (maxConns, minConns int32, maxLifetime, maxIdle time.Duration) {
	return c.MaxConns, c.MinConns, c.MaxConnLifetime, c.MaxConnIdleTime
}

func (c RabbitMQConfig) GetDSN() string {
	return fmt.Sprintf("amqp://%s:%s@%s:%s/",
		c.User,
		c.Password,
		c.Host,
		c.Port,
	)
}

func NewConfig(filepath string) (*Config, error) {
	cfg := &Config{}

	// Loading environment variables and parsing into the config struct.
	if err := configparser.LoadAndParseYaml(filepath, cfg); err != nil {
		return nil, fmt.Errorf("failed to load and parse config: %w", err)
	}

	return cfg, nil
}
