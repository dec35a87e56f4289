package config

import "fmt"

// PrintHelp prints usage information for the tracking service binary.
func PrintHelp() {
	fmt.Println(`Verista tracking service

Usage:
  tracking [flags]

Flags:
  -config-path string   Path to the config yaml file (default "config.yaml")
  -help                 Show this help message

Configuration is read from the yaml file, then overridden by .env and
process environment variables (see config/config.go for variable names).`)
}

// PrintConfig prints the effective configuration with secrets redacted.
func PrintConfig(cfg *Config) {
	fmt.Println("Configuration:")
	fmt.Printf("  service:      %s\n", cfg.ServiceName)
	fmt.Printf("  log level:    %s\n", cfg.LogLevel)
	fmt.Printf("  http port:    %s\n", cfg.Server.Port)
	fmt.Printf("  database:     %s@%s:%s/%s\n", cfg.Database.User, cfg.Database.Host, cfg.Database.Port, cfg.Database.Database)
	fmt.Printf("  rabbitmq:     %s:%s (enabled=%t)\n", cfg.RabbitMQ.Host, cfg.RabbitMQ.Port, cfg.RabbitMQ.Enabled)
	fmt.Printf("  ingest rate:  %d/s (burst %d)\n", cfg.Server.IngestRatePerSecond, cfg.Server.IngestBurst)
}
