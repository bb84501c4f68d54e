// Package config loads service settings from catalog.yml, a .env file and CATALOG_* variables.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"go.uber.org/fx"
)

var Module = fx.Module("config", fx.Provide(Load))

const (
	DriverScylla  = "scylla"
	DriverSpanner = "spanner"
	DriverMemory  = "memory"
)

type Config struct {
	App     AppConfig     `mapstructure:"app"`
	HTTP    HTTPConfig    `mapstructure:"http"`
	GRPC    GRPCConfig    `mapstructure:"grpc"`
	Store   StoreConfig   `mapstructure:"store"`
	Catalog CatalogConfig `mapstructure:"catalog"`
	Log     LogConfig     `mapstructure:"log"`
	Otel    OtelConfig    `mapstructure:"otel"`
}

type AppConfig struct {
	Name    string `mapstructure:"name"`
	Env     string `mapstructure:"env"`
	Version string `mapstructure:"version"`
	NodeID  int64  `mapstructure:"node_id"`
}

type HTTPConfig struct {
	Addr            string        `mapstructure:"addr"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

type GRPCConfig struct {
	Addr string `mapstructure:"addr"`
}

type StoreConfig struct {
	Driver          string        `mapstructure:"driver"`
	Hosts           []string      `mapstructure:"hosts"`
	Keyspace        string        `mapstructure:"keyspace"`
	LocalDC         string        `mapstructure:"local_dc"`
	Consistency     string        `mapstructure:"consistency"`
	Timeout         time.Duration `mapstructure:"timeout"`
	ConnectTimeout  time.Duration `mapstructure:"connect_timeout"`
	Username        string        `mapstructure:"username"`
	Password        string        `mapstructure:"password"`
	SpannerDatabase string        `mapstructure:"spanner_database"`

	// ReplicationFactor is used when migrations create the keyspace.
	ReplicationFactor int `mapstructure:"replication_factor"`
}

type CatalogConfig struct {
	ScanWindow        int `mapstructure:"scan_window"`
	DistinctFetchSize int `mapstructure:"distinct_fetch_size"`
	DefaultPageSize   int `mapstructure:"default_page_size"`
	MaxPageSize       int `mapstructure:"max_page_size"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type OtelConfig struct {
	Enabled       bool    `mapstructure:"enabled"`
	Endpoint      string  `mapstructure:"endpoint"`
	SamplingRatio float64 `mapstructure:"sampling_ratio"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "storefront-catalog")
	v.SetDefault("app.env", "development")
	v.SetDefault("app.version", "0.1.0")
	v.SetDefault("app.node_id", 1)

	v.SetDefault("http.addr", ":8080")
	v.SetDefault("http.shutdown_timeout", 10*time.Second)
	v.SetDefault("grpc.addr", ":50051")

	v.SetDefault("store.driver", DriverScylla)
	v.SetDefault("store.hosts", []string{"localhost"})
	v.SetDefault("store.keyspace", "storefront")
	v.SetDefault("store.local_dc", "datacenter1")
	v.SetDefault("store.consistency", "LOCAL_QUORUM")
	v.SetDefault("store.timeout", 5*time.Second)
	v.SetDefault("store.connect_timeout", 10*time.Second)
	v.SetDefault("store.username", "")
	v.SetDefault("store.password", "")
	v.SetDefault("store.replication_factor", 1)
	v.SetDefault("store.spanner_database", "projects/test-project/instances/emulator-instance/databases/test-db")

	v.SetDefault("catalog.scan_window", 500)
	v.SetDefault("catalog.distinct_fetch_size", 10000)
	v.SetDefault("catalog.default_page_size", 10)
	v.SetDefault("catalog.max_page_size", 200)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	v.SetDefault("otel.enabled", false)
	v.SetDefault("otel.endpoint", "localhost:4317")
	v.SetDefault("otel.sampling_ratio", 0.1)
}

// Load reads the configuration. A missing catalog.yml or .env is not an error.
func Load() (Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigName("catalog")
	v.SetConfigType("yml")
	v.AddConfigPath("/etc/storefront")
	v.AddConfigPath(".")

	v.SetEnvPrefix("CATALOG")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("config: read: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("config: unmarshal: %w", err)
	}
	cfg.Store.Hosts = splitHosts(cfg.Store.Hosts)

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	var errs []error

	switch c.Store.Driver {
	case DriverScylla:
		if len(c.Store.Hosts) == 0 {
			errs = append(errs, errors.New("store.hosts cannot be empty"))
		}
		if strings.TrimSpace(c.Store.Keyspace) == "" {
			errs = append(errs, errors.New("store.keyspace cannot be empty"))
		}
		if c.Store.ReplicationFactor < 1 {
			errs = append(errs, errors.New("store.replication_factor must be at least 1"))
		}
	case DriverSpanner:
		if strings.TrimSpace(c.Store.SpannerDatabase) == "" {
			errs = append(errs, errors.New("store.spanner_database cannot be empty"))
		}
	case DriverMemory:
	default:
		errs = append(errs, fmt.Errorf("store.driver %q is not one of scylla, spanner, memory", c.Store.Driver))
	}

	if c.Catalog.ScanWindow <= 0 {
		errs = append(errs, errors.New("catalog.scan_window must be positive"))
	}
	if c.Catalog.DistinctFetchSize <= 0 {
		errs = append(errs, errors.New("catalog.distinct_fetch_size must be positive"))
	}
	if c.Catalog.DefaultPageSize <= 0 {
		errs = append(errs, errors.New("catalog.default_page_size must be positive"))
	}
	if c.Catalog.MaxPageSize < c.Catalog.DefaultPageSize {
		errs = append(errs, errors.New("catalog.max_page_size must be at least catalog.default_page_size"))
	}
	if c.App.NodeID < 0 || c.App.NodeID > 1023 {
		errs = append(errs, errors.New("app.node_id must be between 0 and 1023"))
	}

	if len(errs) > 0 {
		return fmt.Errorf("config: %w", errors.Join(errs...))
	}
	return nil
}

// Debug reports whether verbose diagnostics should be on.
func (c Config) Debug() bool {
	if strings.EqualFold(strings.TrimSpace(c.Log.Level), "debug") {
		return true
	}
	switch strings.ToLower(strings.TrimSpace(c.App.Env)) {
	case "dev", "development", "local", "test":
		return true
	}
	return false
}

// splitHosts accepts both a list and a single comma separated entry.
func splitHosts(in []string) []string {
	out := make([]string, 0, len(in))
	for _, h := range in {
		for _, part := range strings.Split(h, ",") {
			if p := strings.TrimSpace(part); p != "" {
				out = append(out, p)
			}
		}
	}
	return out
}
