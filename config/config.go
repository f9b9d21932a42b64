package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	defaultHTTPAddress    = ":8080"
	defaultRateLimit      = 10.0
	defaultRateBurst      = 20
	defaultMaxTopN        = 100
	defaultStoreTimeout   = 5 * time.Second
	defaultRecentLimit    = 100
	defaultJWTIssuer      = "vtcade"
	defaultServiceName    = "vtcade-leaderboard"
	defaultEnvironment    = "development"
	productionEnvironment = "production"
)

// Config struct to hold the configuration settings
type Config struct {
	Postgres      PostgresConfig      `yaml:"postgres"`
	NATS          NATSConfig          `yaml:"nats"`
	HTTP          HTTPConfig          `yaml:"http"`
	JWT           JWTConfig           `yaml:"jwt"`
	Leaderboard   LeaderboardConfig   `yaml:"leaderboard"`
	Observability ObservabilityConfig `yaml:"observability"`
}

// PostgresConfig holds Postgres configuration. An empty DSN selects the
// in-memory store.
type PostgresConfig struct {
	DSN         string `yaml:"dsn"`
	AutoMigrate bool   `yaml:"auto_migrate"`
}

// NATSConfig holds NATS configuration. An empty URL disables event publishing.
type NATSConfig struct {
	URL string `yaml:"url"`
}

// HTTPConfig holds the HTTP listener settings.
type HTTPConfig struct {
	Address        string   `yaml:"address"`
	AllowedOrigins []string `yaml:"allowed_origins"`
	RateLimit      float64  `yaml:"rate_limit"`
	RateBurst      int      `yaml:"rate_burst"`
}

// JWTConfig holds JWT configuration.
type JWTConfig struct {
	Secret string `yaml:"secret"`
	Issuer string `yaml:"issuer"`
}

// LeaderboardConfig holds the knobs of the ranking engine and submission path.
type LeaderboardConfig struct {
	MaxTopN              int           `yaml:"max_top_n"`
	StoreTimeout         time.Duration `yaml:"store_timeout"`
	SubmissionLogEnabled bool          `yaml:"submission_log_enabled"`
	RecentLimit          int           `yaml:"recent_limit"`
	Games                []string      `yaml:"games"`
	Maintenance          bool          `yaml:"maintenance"`
}

// ObservabilityConfig holds configuration for observability components
type ObservabilityConfig struct {
	Environment    string `yaml:"environment"`
	MetricsAddress string `yaml:"metrics_address"`
	ServiceName    string `yaml:"service_name"`
}

// IsProduction reports whether the service runs in the production environment.
func (o ObservabilityConfig) IsProduction() bool {
	return strings.EqualFold(o.Environment, productionEnvironment)
}

// LoadConfig loads the configuration from a YAML file. A .env file in the
// working directory is loaded first when present.
func LoadConfig(filename string) (*Config, error) {
	_ = godotenv.Load()

	// Try reading configuration from the file first
	data, err := os.ReadFile(filename)
	if err != nil {
		// If the file is not found, try loading from environment variables
		return loadConfigFromEnv()
	}

	cfg := Config{
		Leaderboard: LeaderboardConfig{SubmissionLogEnabled: true},
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := applyEnvOverrides(&cfg); err != nil {
		return nil, err
	}
	cfg.applyDefaults()

	return &cfg, nil
}

// loadConfigFromEnv loads the configuration from environment variables.
func loadConfigFromEnv() (*Config, error) {
	cfg := Config{
		Leaderboard: LeaderboardConfig{SubmissionLogEnabled: true},
	}

	if err := applyEnvOverrides(&cfg); err != nil {
		return nil, err
	}

	if cfg.Postgres.DSN == "" {
		return nil, fmt.Errorf("DATABASE_URL environment variable not set")
	}
	if cfg.JWT.Secret == "" {
		return nil, fmt.Errorf("JWT_SECRET environment variable not set")
	}

	cfg.applyDefaults()
	return &cfg, nil
}

// applyEnvOverrides overrides cfg with any environment variables that are set.
func applyEnvOverrides(cfg *Config) error {
	if v := os.Getenv("DATABASE_URL"); v != "" {
		cfg.Postgres.DSN = v
	}
	if v := os.Getenv("DATABASE_AUTO_MIGRATE"); v != "" {
		cfg.Postgres.AutoMigrate = v == "true"
	}
	if v := os.Getenv("NATS_URL"); v != "" {
		cfg.NATS.URL = v
	}
	if v := os.Getenv("HTTP_ADDRESS"); v != "" {
		cfg.HTTP.Address = v
	}
	if v := os.Getenv("ALLOWED_ORIGINS"); v != "" {
		cfg.HTTP.AllowedOrigins = splitList(v)
	}
	if v := os.Getenv("RATE_LIMIT"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("invalid RATE_LIMIT value: %w", err)
		}
		cfg.HTTP.RateLimit = f
	}
	if v := os.Getenv("RATE_BURST"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid RATE_BURST value: %w", err)
		}
		cfg.HTTP.RateBurst = n
	}
	if v := os.Getenv("JWT_SECRET"); v != "" {
		cfg.JWT.Secret = v
	}
	if v := os.Getenv("JWT_ISSUER"); v != "" {
		cfg.JWT.Issuer = v
	}
	if v := os.Getenv("LEADERBOARD_MAX_TOP_N"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid LEADERBOARD_MAX_TOP_N value: %w", err)
		}
		cfg.Leaderboard.MaxTopN = n
	}
	if v := os.Getenv("LEADERBOARD_STORE_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid LEADERBOARD_STORE_TIMEOUT value: %w", err)
		}
		cfg.Leaderboard.StoreTimeout = d
	}
	if v := os.Getenv("LEADERBOARD_SUBMISSION_LOG_ENABLED"); v != "" {
		cfg.Leaderboard.SubmissionLogEnabled = v == "true"
	}
	if v := os.Getenv("LEADERBOARD_RECENT_LIMIT"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid LEADERBOARD_RECENT_LIMIT value: %w", err)
		}
		cfg.Leaderboard.RecentLimit = n
	}
	if v := os.Getenv("LEADERBOARD_GAMES"); v != "" {
		cfg.Leaderboard.Games = splitList(v)
	}
	if v := os.Getenv("MAINTENANCE_MODE"); v != "" {
		cfg.Leaderboard.Maintenance = v == "true"
	}
	if v := os.Getenv("ENV"); v != "" {
		cfg.Observability.Environment = v
	}
	if v := os.Getenv("METRICS_ADDRESS"); v != "" {
		cfg.Observability.MetricsAddress = v
	}
	if v := os.Getenv("SERVICE_NAME"); v != "" {
		cfg.Observability.ServiceName = v
	}
	return nil
}

func (c *Config) applyDefaults() {
	if c.HTTP.Address == "" {
		c.HTTP.Address = defaultHTTPAddress
	}
	if c.HTTP.RateLimit <= 0 {
		c.HTTP.RateLimit = defaultRateLimit
	}
	if c.HTTP.RateBurst <= 0 {
		c.HTTP.RateBurst = defaultRateBurst
	}
	if c.JWT.Issuer == "" {
		c.JWT.Issuer = defaultJWTIssuer
	}
	if c.Leaderboard.MaxTopN <= 0 {
		c.Leaderboard.MaxTopN = defaultMaxTopN
	}
	if c.Leaderboard.StoreTimeout <= 0 {
		c.Leaderboard.StoreTimeout = defaultStoreTimeout
	}
	if c.Leaderboard.RecentLimit <= 0 {
		c.Leaderboard.RecentLimit = defaultRecentLimit
	}
	if c.Observability.Environment == "" {
		c.Observability.Environment = defaultEnvironment
	}
	if c.Observability.ServiceName == "" {
		c.Observability.ServiceName = defaultServiceName
	}
}

func splitList(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
