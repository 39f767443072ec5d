package config

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const defaultConfigPath = "config.yaml"

const (
	StorageMemory   = "memory"
	StoragePostgres = "postgres"
	StorageRedis    = "redis"
)

type Config struct {
	HTTP     HTTPConfig     `yaml:"http"`
	GRPC     GRPCConfig     `yaml:"grpc"`
	Storage  StorageConfig  `yaml:"storage"`
	Database DatabaseConfig `yaml:"database"`
	Redis    RedisConfig    `yaml:"redis"`
	Kafka    KafkaConfig    `yaml:"kafka"`
	Saga     SagaConfig     `yaml:"saga"`
	Cache    CacheConfig    `yaml:"cache"`
	Log      LogConfig      `yaml:"log"`
	Tracing  TracingConfig  `yaml:"tracing"`
}

type HTTPConfig struct {
	Address string `yaml:"address"`
}

type GRPCConfig struct {
	Address string `yaml:"address"`
}

type StorageConfig struct {
	Driver      string `yaml:"driver"`
	RedisPrefix string `yaml:"redis_prefix"`
	InitSchema  bool   `yaml:"init_schema"`
}

type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Name     string `yaml:"name"`
	SSLMode  string `yaml:"ssl_mode"`
}

// DSN returns a postgres:// URL with the credentials escaped.
func (d DatabaseConfig) DSN() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(d.User, d.Password),
		Host:     net.JoinHostPort(d.Host, strconv.Itoa(d.Port)),
		Path:     "/" + d.Name,
		RawQuery: url.Values{"sslmode": {d.SSLMode}}.Encode(),
	}
	return u.String()
}

type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type KafkaConfig struct {
	Brokers            []string `yaml:"brokers"`
	TripRequestsTopic  string   `yaml:"trip_requests_topic"`
	SagaEventsTopic    string   `yaml:"saga_events_topic"`
	NotificationsTopic string   `yaml:"notifications_topic"`
	GroupID            string   `yaml:"group_id"`
}

type SagaConfig struct {
	MaxAttempts     int `yaml:"max_attempts"`
	BaseDelayMillis int `yaml:"base_delay_ms"`
	MaxDelayMillis  int `yaml:"max_delay_ms"`
}

func (s SagaConfig) BaseDelay() time.Duration {
	return time.Duration(s.BaseDelayMillis) * time.Millisecond
}

func (s SagaConfig) MaxDelay() time.Duration {
	return time.Duration(s.MaxDelayMillis) * time.Millisecond
}

type CacheConfig struct {
	Enabled        bool `yaml:"enabled"`
	TripTTLSeconds int  `yaml:"trip_ttl_seconds"`
}

func (c CacheConfig) TripTTL() time.Duration {
	return time.Duration(c.TripTTLSeconds) * time.Second
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// TracingConfig switches on the OpenTelemetry SDK. Spans are written to
// stdout as JSON.
type TracingConfig struct {
	Enabled     bool    `yaml:"enabled"`
	ServiceName string  `yaml:"service_name"`
	SampleRatio float64 `yaml:"sample_ratio"`
}

// Load reads an optional .env file into the environment and then the YAML
// file named by CONFIG_PATH.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	path := os.Getenv("CONFIG_PATH")
	if path == "" {
		path = defaultConfigPath
	}
	return LoadConfig(path)
}

func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	return Parse(data)
}

// Parse decodes YAML, fills defaults, applies environment overrides and
// validates the result.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	cfg.applyDefaults()
	cfg.applyEnv()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.HTTP.Address == "" {
		c.HTTP.Address = ":8080"
	}
	if c.Storage.Driver == "" {
		c.Storage.Driver = StorageMemory
	}
	if c.Storage.RedisPrefix == "" {
		c.Storage.RedisPrefix = "tripsaga"
	}
	if c.Database.Port == 0 {
		c.Database.Port = 5432
	}
	if c.Database.SSLMode == "" {
		c.Database.SSLMode = "disable"
	}
	if c.Kafka.TripRequestsTopic == "" {
		c.Kafka.TripRequestsTopic = "trip_requests"
	}
	if c.Kafka.SagaEventsTopic == "" {
		c.Kafka.SagaEventsTopic = "saga_events"
	}
	if c.Kafka.GroupID == "" {
		c.Kafka.GroupID = "tripsaga-worker"
	}
	if c.Saga.MaxAttempts == 0 {
		c.Saga.MaxAttempts = 3
	}
	if c.Saga.BaseDelayMillis == 0 {
		c.Saga.BaseDelayMillis = 100
	}
	if c.Saga.MaxDelayMillis == 0 {
		c.Saga.MaxDelayMillis = 2000
	}
	if c.Cache.TripTTLSeconds == 0 {
		c.Cache.TripTTLSeconds = 60
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "json"
	}
	if c.Tracing.ServiceName == "" {
		c.Tracing.ServiceName = "tripsaga"
	}
	if c.Tracing.Enabled && c.Tracing.SampleRatio == 0 {
		c.Tracing.SampleRatio = 1
	}
}

// applyEnv lets secrets stay out of the config file.
func (c *Config) applyEnv() {
	if v := os.Getenv("DATABASE_PASSWORD"); v != "" {
		c.Database.Password = v
	}
	if v := os.Getenv("REDIS_PASSWORD"); v != "" {
		c.Redis.Password = v
	}
	if v := os.Getenv("STORAGE_DRIVER"); v != "" {
		c.Storage.Driver = v
	}
}

func (c *Config) Validate() error {
	var errs []error
	switch c.Storage.Driver {
	case StorageMemory:
	case StoragePostgres:
		if c.Database.Host == "" || c.Database.Name == "" {
			errs = append(errs, errors.New("database host and name are required for the postgres driver"))
		}
	case StorageRedis:
		if c.Redis.Addr == "" {
			errs = append(errs, errors.New("redis addr is required for the redis driver"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown storage driver %q", c.Storage.Driver))
	}
	if c.Cache.Enabled && c.Redis.Addr == "" {
		errs = append(errs, errors.New("redis addr is required when the cache is enabled"))
	}
	if c.Saga.MaxAttempts < 1 {
		errs = append(errs, errors.New("saga max_attempts must be at least 1"))
	}
	if c.Saga.BaseDelayMillis < 0 || c.Saga.MaxDelayMillis < 0 {
		errs = append(errs, errors.New("saga delays must not be negative"))
	}
	if c.Tracing.SampleRatio < 0 || c.Tracing.SampleRatio > 1 {
		errs = append(errs, errors.New("tracing sample_ratio must be between 0 and 1"))
	}
	if len(errs) > 0 {
		return fmt.Errorf("invalid config: %w", errors.Join(errs...))
	}
	return nil
}
