// Package config loads and validates ytfleet configuration via Viper.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config captures all service configuration knobs loaded via Viper.
type Config struct {
	Proxy     ProxyConfig     `mapstructure:"proxy"`
	HTTP      HTTPConfig      `mapstructure:"http"`
	Container ContainerConfig `mapstructure:"container"`
	Fleet     FleetConfig     `mapstructure:"fleet"`
	Catalog   CatalogConfig   `mapstructure:"catalog"`
	Store     StoreConfig     `mapstructure:"store"`
	Logging   LoggingConfig   `mapstructure:"logging"`
	Metrics   MetricsConfig   `mapstructure:"metrics"`
	Env       string          `mapstructure:"env"`
}

// ProxyConfig carries the outbound proxy endpoint and its credentials.
// Every scrape request is routed through this proxy.
type ProxyConfig struct {
	Host     string `mapstructure:"host"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
}

// URL renders the proxy endpoint with embedded credentials, or "" when
// no proxy host is configured.
func (p ProxyConfig) URL() string {
	if p.Host == "" {
		return ""
	}
	if p.User == "" {
		return fmt.Sprintf("http://%s", p.Host)
	}
	return fmt.Sprintf("http://%s:%s@%s", p.User, p.Password, p.Host)
}

// HTTPConfig configures HTTP client timeout and retry behavior.
type HTTPConfig struct {
	TimeoutSeconds   int `mapstructure:"timeout_seconds"`
	MaxAttempts      int `mapstructure:"max_attempts"`
	BackoffInitialMs int `mapstructure:"backoff_initial_ms"`
	BackoffMaxMs     int `mapstructure:"backoff_max_ms"`
}

// Timeout converts the configured timeout into a duration.
func (c HTTPConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// ContainerConfig describes the worker container image and its placement.
type ContainerConfig struct {
	Name           string  `mapstructure:"name"`
	ResourceGroup  string  `mapstructure:"resource_group"`
	Image          string  `mapstructure:"image"`
	Registry       string  `mapstructure:"registry"`
	RegistryUser   string  `mapstructure:"registry_user"`
	RegistrySecret string  `mapstructure:"registry_secret"`
	Cores          int     `mapstructure:"cores"`
	MemoryGB       float64 `mapstructure:"memory_gb"`
	SubscriptionID string  `mapstructure:"subscription_id"`
	TenantID       string  `mapstructure:"tenant_id"`
	ClientID       string  `mapstructure:"client_id"`
	ClientSecret   string  `mapstructure:"client_secret"`
}

// FleetConfig governs batch planning and launch concurrency.
type FleetConfig struct {
	ChannelsPerContainer int      `mapstructure:"channels_per_container"`
	Regions              []string `mapstructure:"regions"`
	PrecheckParallel     int      `mapstructure:"precheck_parallel"`
	CreateParallel       int      `mapstructure:"create_parallel"`
	UpdateParallel       int      `mapstructure:"update_parallel"`
}

// CatalogConfig selects the channel catalog source.
type CatalogConfig struct {
	ChannelIDs []string `mapstructure:"channel_ids"`
	CSVPath    string   `mapstructure:"csv_path"`
}

// StoreConfig holds the storage connection string handed to workers.
type StoreConfig struct {
	ConnectionString string `mapstructure:"connection_string"`
}

// LoggingConfig selects the log encoder and level.
type LoggingConfig struct {
	Development bool   `mapstructure:"development"`
	Level       string `mapstructure:"level"`
}

// MetricsConfig enables the Prometheus exposition endpoint on workers.
// An empty Addr keeps it off.
type MetricsConfig struct {
	Addr string `mapstructure:"addr"`
}

// Load builds a Config from disk/environment.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("YTFLEET")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("env", "dev")
	v.SetDefault("proxy.host", "")
	v.SetDefault("http.timeout_seconds", 20)
	v.SetDefault("http.max_attempts", 5)
	v.SetDefault("http.backoff_initial_ms", 250)
	v.SetDefault("http.backoff_max_ms", 30000)
	v.SetDefault("container.name", "ytfleet")
	v.SetDefault("container.cores", 1)
	v.SetDefault("container.memory_gb", 3.5)
	v.SetDefault("fleet.channels_per_container", 40)
	v.SetDefault("fleet.regions", []string{
		"eastus", "westus", "westus2", "eastus2", "southcentralus",
	})
	v.SetDefault("fleet.precheck_parallel", 4)
	v.SetDefault("fleet.create_parallel", 4)
	v.SetDefault("fleet.update_parallel", 4)
	v.SetDefault("logging.development", true)
	v.SetDefault("logging.level", "info")
	v.SetDefault("metrics.addr", "")
}

// Validate enforces required values and reasonable limits.
func (c Config) Validate() error {
	if c.HTTP.TimeoutSeconds <= 0 {
		return fmt.Errorf("http.timeout_seconds must be > 0")
	}
	if c.HTTP.MaxAttempts <= 0 {
		return fmt.Errorf("http.max_attempts must be > 0")
	}
	if c.Fleet.ChannelsPerContainer <= 0 {
		return fmt.Errorf("fleet.channels_per_container must be > 0")
	}
	if len(c.Fleet.Regions) == 0 {
		return fmt.Errorf("fleet.regions must include at least one region")
	}
	if c.Fleet.PrecheckParallel <= 0 {
		return fmt.Errorf("fleet.precheck_parallel must be > 0")
	}
	if c.Fleet.CreateParallel <= 0 {
		return fmt.Errorf("fleet.create_parallel must be > 0")
	}
	if c.Fleet.UpdateParallel <= 0 {
		return fmt.Errorf("fleet.update_parallel must be > 0")
	}
	if c.Container.Name == "" {
		return fmt.Errorf("container.name must be set")
	}
	return nil
}
