// Package config defines the environment-driven configuration for the
// moderation service.
//
// Configuration is loaded from environment variables using the
// github.com/caarlos0/env library. See individual domain config files for the
// available variables:
//   - database.go: Postgres and cache configuration
//   - kafka.go: queue transport configuration
//   - http.go: HTTP server configuration
//   - services.go: service mode and worker configuration
package config

// AppConfig is the main application configuration struct that composes
// domain-specific configuration from separate files.
type AppConfig struct {
	// Database configuration
	Postgres DBConfig `envPrefix:"DB_"`
	Cache    CacheConfig

	// Queue transport configuration
	Kafka KafkaConfig `envPrefix:"KAFKA_"`

	// HTTP server configuration
	HTTP HTTPConfig `envPrefix:"HTTP_"`

	// Service mode configuration: comma-separated list of services to run
	// in this process ("http", "worker").
	Services string `env:"SERVICES" envDefault:"http"`

	// Worker configuration
	Worker WorkerConfig `envPrefix:"WORKER_"`
}

// Sanitize applies guardrails to configuration values loaded from env.
// This should be called after loading configuration from environment variables.
func (c *AppConfig) Sanitize() {
	c.Cache.Sanitize()
	c.Kafka.Sanitize()
	c.HTTP.Sanitize()
	c.Worker.Sanitize()
}

// GetEnabledServices returns the enabled services based on the Services field.
func (c *AppConfig) GetEnabledServices() (map[ServiceMode]bool, error) {
	return ParseServices(c.Services)
}

// IsHTTPServerEnabled returns true if the HTTP server service is enabled.
func (c *AppConfig) IsHTTPServerEnabled() bool {
	services, err := c.GetEnabledServices()
	if err != nil {
		return false
	}
	return services[ServiceModeHTTP]
}

// IsWorkerEnabled returns true if the moderation worker service is enabled.
func (c *AppConfig) IsWorkerEnabled() bool {
	services, err := c.GetEnabledServices()
	if err != nil {
		return false
	}
	return services[ServiceModeWorker]
}
