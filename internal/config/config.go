package config // package config loads application configuration from environment variables

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Storage backends selectable with STORE.
const (
	StoreMySQL  = "mysql"
	StoreMemory = "memory"
)

// Config holds all runtime configuration values.  Each field corresponds to
// an environment variable.
type Config struct {
	Env       string // application environment (e.g. "dev", "prod")
	Port      string // HTTP port to listen on
	LogLevel  string // zerolog level name
	Store     string // "mysql" or "memory"
	DBUser    string // database username
	DBPass    string // database password (optional)
	DBHost    string // database host address
	DBPort    string // database port number
	DBName    string // database name
	DesksFile string // optional YAML desk inventory seeded at start-up
	AMQPURL   string // RabbitMQ URL; empty disables event publishing
	Consumer  bool   // run the booking.created audit consumer in-process
}

// Load reads configuration values from environment variables and returns a
// Config.  Database variables are required only for the mysql store; all
// missing required variables are reported together.
func Load() (Config, error) {
	var missing []string
	must := func(key string) string {
		v, ok := os.LookupEnv(key)
		if !ok || v == "" {
			missing = append(missing, key)
		}
		return v
	}

	cfg := Config{
		Env:       envStr("APP_ENV", "dev"),
		Port:      envStr("APP_PORT", "8080"),
		LogLevel:  envStr("LOG_LEVEL", "info"),
		Store:     strings.ToLower(envStr("STORE", StoreMySQL)),
		DBPass:    os.Getenv("DB_PASS"),
		DesksFile: os.Getenv("DESKS_FILE"),
		AMQPURL:   amqpURL(),
		Consumer:  envBool("BOOKING_CONSUMER_ENABLED", false),
	}

	switch cfg.Store {
	case StoreMySQL:
		cfg.DBUser = must("DB_USER")
		cfg.DBHost = must("DB_HOST")
		cfg.DBPort = must("DB_PORT")
		cfg.DBName = must("DB_NAME")
	case StoreMemory:
	default:
		return Config{}, fmt.Errorf("invalid STORE %q: want %s or %s", cfg.Store, StoreMySQL, StoreMemory)
	}
	if _, err := strconv.Atoi(cfg.Port); err != nil {
		return Config{}, fmt.Errorf("invalid int for APP_PORT: %q", cfg.Port)
	}
	if len(missing) > 0 {
		return Config{}, fmt.Errorf("missing required env vars: %s", strings.Join(missing, ", "))
	}
	return cfg, nil
}

// amqpURL honours RABBITMQ_URL and the AMQP_URL alias.
func amqpURL() string {
	if v := os.Getenv("RABBITMQ_URL"); v != "" {
		return v
	}
	return os.Getenv("AMQP_URL")
}
