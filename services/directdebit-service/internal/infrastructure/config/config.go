package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Store backends accepted by SEPA_STORE.
const (
	StoreFile     = "file"
	StorePostgres = "postgres"
)

// Config holds all service configuration loaded from environment variables.
type Config struct {
	HTTPPort  int
	GRPCPort  int
	DB        DBConfig
	Kafka     KafkaConfig
	Telemetry TelemetryConfig
	Auth      AuthConfig
	TLS       TLSConfig
	Sepa      SepaConfig
	LogLevel  string
	LogFormat string
}

type DBConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Name     string
	SSLMode  string
	MaxConns int32
	MinConns int32
}

type KafkaConfig struct {
	Brokers []string
	TLS     bool
	// SASL is enabled when a username is set.
	SASLMechanism string
	SASLUsername  string
	SASLPassword  string
}

type TelemetryConfig struct {
	OTLPEndpoint string
	ServiceName  string
}

type AuthConfig struct {
	PublicKeyFile string
	Secret        string
	Issuer        string
}

type TLSConfig struct {
	CertFile     string
	KeyFile      string
	ClientCAFile string
}

// SepaConfig controls message generation and storage.
type SepaConfig struct {
	OutputDir           string
	Store               string
	CollectionDelayDays int
	ValidateSchema      bool
	OutboxInterval      int // seconds between outbox relay polls
	OutboxBatchSize     int
}

// Validate checks required configuration values.
func (c Config) Validate() error {
	switch c.Sepa.Store {
	case StoreFile:
		if c.Sepa.OutputDir == "" {
			return fmt.Errorf("SEPA_OUTPUT_DIR is required when SEPA_STORE=%s", StoreFile)
		}
	case StorePostgres:
		if c.DB.Password == "" {
			return fmt.Errorf("DB_PASSWORD environment variable is required when SEPA_STORE=%s", StorePostgres)
		}
	default:
		return fmt.Errorf("unknown SEPA_STORE %q (want %s or %s)", c.Sepa.Store, StoreFile, StorePostgres)
	}
	if c.Sepa.CollectionDelayDays < 0 {
		return fmt.Errorf("SEPA_COLLECTION_DELAY_DAYS must not be negative, got %d", c.Sepa.CollectionDelayDays)
	}
	if c.Auth.PublicKeyFile == "" && c.Auth.Secret == "" {
		return fmt.Errorf("one of JWT_PUBLIC_KEY_FILE or JWT_SECRET is required")
	}
	if (c.TLS.CertFile == "") != (c.TLS.KeyFile == "") {
		return fmt.Errorf("TLS_CERT_FILE and TLS_KEY_FILE must be set together")
	}
	return nil
}

// Load reads configuration from environment variables with defaults.
func Load() Config {
	return Config{
		HTTPPort: getEnvInt("HTTP_PORT", 8090),
		GRPCPort: getEnvInt("GRPC_PORT", 9090),
		DB: DBConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnvInt("DB_PORT", 5432),
			User:     getEnv("DB_USER", "bib"),
			Password: getEnv("DB_PASSWORD", ""),
			Name:     getEnv("DB_NAME", "bib_directdebit"),
			SSLMode:  getEnv("DB_SSLMODE", "require"),
			MaxConns: int32(getEnvInt("DB_MAX_CONNS", 10)),
			MinConns: int32(getEnvInt("DB_MIN_CONNS", 2)),
		},
		Kafka: KafkaConfig{
			Brokers:       getEnvList("KAFKA_BROKERS", "localhost:9092"),
			TLS:           getEnvBool("KAFKA_TLS", false),
			SASLMechanism: getEnv("KAFKA_SASL_MECHANISM", "PLAIN"),
			SASLUsername:  getEnv("KAFKA_SASL_USERNAME", ""),
			SASLPassword:  getEnv("KAFKA_SASL_PASSWORD", ""),
		},
		Telemetry: TelemetryConfig{
			OTLPEndpoint: getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317"),
			ServiceName:  "directdebit-service",
		},
		Auth: AuthConfig{
			PublicKeyFile: getEnv("JWT_PUBLIC_KEY_FILE", ""),
			Secret:        getEnv("JWT_SECRET", ""),
			Issuer:        getEnv("JWT_ISSUER", "bib"),
		},
		TLS: TLSConfig{
			CertFile:     getEnv("TLS_CERT_FILE", ""),
			KeyFile:      getEnv("TLS_KEY_FILE", ""),
			ClientCAFile: getEnv("TLS_CLIENT_CA_FILE", ""),
		},
		Sepa: SepaConfig{
			OutputDir:           getEnv("SEPA_OUTPUT_DIR", "./out"),
			Store:               strings.ToLower(getEnv("SEPA_STORE", StoreFile)),
			CollectionDelayDays: getEnvInt("SEPA_COLLECTION_DELAY_DAYS", 10),
			ValidateSchema:      getEnvBool("SEPA_VALIDATE_SCHEMA", true),
			OutboxInterval:      getEnvInt("SEPA_OUTBOX_INTERVAL_SECONDS", 5),
			OutboxBatchSize:     getEnvInt("SEPA_OUTBOX_BATCH_SIZE", 100),
		},
		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "json"),
	}
}

// LoadEnvFile copies KEY=VALUE pairs from path into the process environment
// for local development. Variables already set win; a missing file is not
// an error.
func LoadEnvFile(path string) error {
	err := godotenv.Load(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("load env file %s: %w", path, err)
	}
	return nil
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return defaultVal
}

func getEnvBool(key string, defaultVal bool) bool {
	if val := os.Getenv(key); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			return b
		}
	}
	return defaultVal
}

// getEnvList splits a comma separated value, dropping empty items.
func getEnvList(key, defaultVal string) []string {
	var out []string
	for _, item := range strings.Split(getEnv(key, defaultVal), ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
