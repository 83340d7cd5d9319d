// Package config loads the catalog service configuration from defaults, an
// optional YAML file, an optional .env file and CATALOG_* environment
// variables, in increasing order of precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const envPrefix = "CATALOG"

// Config holds the application configuration
type Config struct {
	Service  ServiceConfig  `mapstructure:"service"`
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Kafka    KafkaConfig    `mapstructure:"kafka"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Tracing  TracingConfig  `mapstructure:"tracing"`
	Logging  LoggingConfig  `mapstructure:"logging"`
}

// ServiceConfig identifies the running service
type ServiceConfig struct {
	Name        string `mapstructure:"name"`
	Environment string `mapstructure:"environment"`
}

// ServerConfig holds HTTP and gRPC listener configuration
type ServerConfig struct {
	HTTPPort        int           `mapstructure:"http_port"`
	GRPCPort        int           `mapstructure:"grpc_port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// DatabaseConfig holds database connection configuration
type DatabaseConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	Name            string        `mapstructure:"name"`
	SSLMode         string        `mapstructure:"sslmode"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	// TxAttempts bounds how often a transaction is retried after a
	// serialization failure or deadlock
	TxAttempts int `mapstructure:"tx_attempts"`
}

// KafkaConfig holds broker and topic configuration
type KafkaConfig struct {
	Enabled     bool     `mapstructure:"enabled"`
	Brokers     []string `mapstructure:"brokers"`
	GroupID     string   `mapstructure:"group_id"`
	EventsTopic string   `mapstructure:"events_topic"`
	StockTopic  string   `mapstructure:"stock_topic"`
}

// RedisConfig holds the distributed lock backend configuration
type RedisConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Addr     string        `mapstructure:"addr"`
	Password string        `mapstructure:"password"`
	DB       int           `mapstructure:"db"`
	LockTTL  time.Duration `mapstructure:"lock_ttl"`
}

// TracingConfig holds OpenTelemetry exporter configuration
type TracingConfig struct {
	Enabled        bool    `mapstructure:"enabled"`
	JaegerEndpoint string  `mapstructure:"jaeger_endpoint"`
	SampleRatio    float64 `mapstructure:"sample_ratio"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Pretty bool   `mapstructure:"pretty"`
}

// Load reads configuration. configPath may be empty, in which case
// config.yaml is looked up in ./config and the working directory.
func Load(configPath string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./config")
		v.AddConfigPath(".")
	}

	// .env is optional; real environment variables win over it
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("error loading .env file: %w", err)
	}

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	bindEnvVars(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !(configPath == "" && errors.Is(err, os.ErrNotExist)) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks values viper cannot check on its own
func (c *Config) Validate() error {
	if c.Server.HTTPPort <= 0 || c.Server.GRPCPort <= 0 {
		return fmt.Errorf("invalid ports: http=%d grpc=%d", c.Server.HTTPPort, c.Server.GRPCPort)
	}
	if c.Database.TxAttempts < 1 {
		return fmt.Errorf("database.tx_attempts must be at least 1, got %d", c.Database.TxAttempts)
	}
	if c.Kafka.Enabled && len(c.Kafka.Brokers) == 0 {
		return errors.New("kafka is enabled but no brokers are configured")
	}
	if c.Redis.Enabled && c.Redis.LockTTL <= 0 {
		return errors.New("redis.lock_ttl must be positive")
	}
	if c.Tracing.SampleRatio < 0 || c.Tracing.SampleRatio > 1 {
		return fmt.Errorf("tracing.sample_ratio must be within [0, 1], got %g", c.Tracing.SampleRatio)
	}
	return nil
}

// bindEnvVars binds the unprefixed variables shared with the other services
// of the deployment
func bindEnvVars(v *viper.Viper) {
	v.BindEnv("database.host", envPrefix+"_DATABASE_HOST", "DB_HOST")
	v.BindEnv("database.port", envPrefix+"_DATABASE_PORT", "DB_PORT")
	v.BindEnv("database.user", envPrefix+"_DATABASE_USER", "DB_USER")
	v.BindEnv("database.password", envPrefix+"_DATABASE_PASSWORD", "DB_PASSWORD")
	v.BindEnv("database.name", envPrefix+"_DATABASE_NAME", "DB_NAME")
	v.BindEnv("tracing.jaeger_endpoint", envPrefix+"_TRACING_JAEGER_ENDPOINT", "JAEGER_ENDPOINT")
	v.BindEnv("kafka.brokers", envPrefix+"_KAFKA_BROKERS", "KAFKA_BROKERS")
	v.BindEnv("redis.addr", envPrefix+"_REDIS_ADDR", "REDIS_ADDR")
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("service.name", "catalog-service")
	v.SetDefault("service.environment", "development")

	v.SetDefault("server.http_port", 8081)
	v.SetDefault("server.grpc_port", 9091)
	v.SetDefault("server.read_timeout", 15*time.Second)
	v.SetDefault("server.write_timeout", 15*time.Second)
	v.SetDefault("server.shutdown_timeout", 10*time.Second)

	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.password", "postgres")
	v.SetDefault("database.name", "catalogdb")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.max_open_conns", 25)
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.conn_max_lifetime", 5*time.Minute)
	v.SetDefault("database.tx_attempts", 3)

	v.SetDefault("kafka.enabled", false)
	v.SetDefault("kafka.brokers", []string{"localhost:9092"})
	v.SetDefault("kafka.group_id", "catalog-service")
	v.SetDefault("kafka.events_topic", "catalog-events")
	v.SetDefault("kafka.stock_topic", "inventory-stock-changed")

	v.SetDefault("redis.enabled", false)
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.lock_ttl", 10*time.Second)

	v.SetDefault("tracing.enabled", true)
	v.SetDefault("tracing.jaeger_endpoint", "http://localhost:14268/api/traces")
	v.SetDefault("tracing.sample_ratio", 1.0)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.pretty", false)
}
