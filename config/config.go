package config

import (
	"log/slog"
	"net"
	"net/url"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"github.com/spf13/viper"
)

const (
	EnvDev     = "dev"
	EnvStaging = "staging"
	EnvProd    = "prod"
)

const (
	LogLevelDebug = "debug"
	LogLevelInfo  = "info"
	LogLevelWarn  = "warn"
	LogLevelError = "error"
)

// SourceKinds lists the kinds a configured content source may declare.
var SourceKinds = []interface{}{
	"content-addressed-gateway",
	"cdn",
	"origin",
	"durable-storage",
}

type ServerConfig struct {
	Address     string `mapstructure:"address"`
	Environment string `mapstructure:"environment"`
}

type HealthCheckConfig struct {
	Interval string `mapstructure:"interval"`
	Timeout  string `mapstructure:"timeout"`
}

type FetchConfig struct {
	Timeout string `mapstructure:"timeout"`
}

type SourceConfig struct {
	Kind     string `mapstructure:"kind"`
	Endpoint string `mapstructure:"endpoint"`
	Priority int    `mapstructure:"priority"`
	Region   string `mapstructure:"region"`
}

type NameConfig struct {
	Name        string `mapstructure:"name"`
	Path        string `mapstructure:"path"`
	ContentHash string `mapstructure:"content_hash"`
}

type LoggingConfig struct {
	Level string `mapstructure:"level"`
}

type Config struct {
	Server      ServerConfig      `mapstructure:"server"`
	HealthCheck HealthCheckConfig `mapstructure:"health_check"`
	Fetch       FetchConfig       `mapstructure:"fetch"`
	Sources     []SourceConfig    `mapstructure:"sources"`
	Names       []NameConfig      `mapstructure:"names"`
	Logging     LoggingConfig     `mapstructure:"logging"`
}

func Load() (*Config, error) {
	viper.SetDefault("server.environment", EnvDev)
	viper.SetDefault("server.address", ":8080")
	viper.SetDefault("health_check.interval", "30s")
	viper.SetDefault("health_check.timeout", "5s")
	viper.SetDefault("fetch.timeout", "10s")
	viper.SetDefault("logging.level", LogLevelInfo)

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./config")
	viper.AddConfigPath(".")

	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			slog.Error("failed to read config file", slog.String("error", err.Error()))
			return nil, err
		}
		slog.Error("config file not found, using defaults and environment variables")
	} else {
		slog.Info("loaded config file", slog.String("file", viper.ConfigFileUsed()))
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		slog.Error("failed to unmarshal config", slog.String("error", err.Error()))
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		slog.Error("invalid configuration", slog.String("error", err.Error()))
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Server,
			validation.Required,
			validation.By(func(value interface{}) error {
				sc, ok := value.(ServerConfig)
				if !ok {
					return validation.NewError("validation_invalid_type", "must be a ServerConfig")
				}
				return validation.ValidateStruct(&sc,
					validation.Field(&sc.Environment,
						validation.Required,
						validation.In(EnvDev, EnvStaging, EnvProd),
					),
					validation.Field(&sc.Address,
						validation.Required,
						validation.By(validateHostPort),
					),
				)
			}),
		),
		validation.Field(&c.Logging,
			validation.Required,
			validation.By(func(value interface{}) error {
				lc, ok := value.(LoggingConfig)
				if !ok {
					return validation.NewError("validation_invalid_type", "must be a LoggingConfig")
				}
				return validation.ValidateStruct(&lc,
					validation.Field(&lc.Level,
						validation.Required,
						validation.In(LogLevelDebug, LogLevelInfo, LogLevelWarn, LogLevelError),
					),
				)
			}),
		),
		validation.Field(&c.HealthCheck,
			validation.Required,
			validation.By(func(value interface{}) error {
				hc, ok := value.(HealthCheckConfig)
				if !ok {
					return validation.NewError("validation_invalid_type", "must be a HealthCheckConfig")
				}
				return validation.ValidateStruct(&hc,
					validation.Field(&hc.Interval,
						validation.Required,
						validation.By(validateDuration),
					),
					validation.Field(&hc.Timeout,
						validation.Required,
						validation.By(validateDuration),
					),
				)
			}),
		),
		validation.Field(&c.Fetch,
			validation.Required,
			validation.By(func(value interface{}) error {
				fc, ok := value.(FetchConfig)
				if !ok {
					return validation.NewError("validation_invalid_type", "must be a FetchConfig")
				}
				return validation.ValidateStruct(&fc,
					validation.Field(&fc.Timeout,
						validation.Required,
						validation.By(validateDuration),
					),
				)
			}),
		),
		validation.Field(&c.Sources,
			validation.Required,
			validation.Length(1, 0),
			validation.Each(validation.By(validateSourceConfig)),
		),
		validation.Field(&c.Names,
			validation.Each(validation.By(validateNameConfig)),
		),
	)
}

func validateHostPort(value interface{}) error {
	addr, ok := value.(string)
	if !ok {
		return validation.NewError("validation_invalid_type", "must be a string")
	}

	host, port, err := net.SplitHostPort(addr)
	if err != nil {
		return validation.NewError("validation_invalid_hostport", "must be in host:port format")
	}

	if port == "" {
		return validation.NewError("validation_invalid_port", "port cannot be empty")
	}

	if host != "" {
		if err := is.Host.Validate(host); err != nil {
			return validation.NewError("validation_invalid_host", "invalid host")
		}
	}

	return nil
}

func validateDuration(value interface{}) error {
	durationStr, ok := value.(string)
	if !ok {
		return validation.NewError("validation_invalid_type", "must be a string")
	}

	if _, err := time.ParseDuration(durationStr); err != nil {
		return validation.NewError("validation_invalid_duration", "must be a valid duration (e.g., 5s, 30s, 1m)")
	}

	return nil
}

func validateSourceConfig(value interface{}) error {
	src, ok := value.(SourceConfig)
	if !ok {
		return validation.NewError("validation_invalid_type", "must be a SourceConfig")
	}

	if err := validation.Validate(src.Kind, validation.Required, validation.In(SourceKinds...)); err != nil {
		return validation.NewError("validation_invalid_kind", "kind must be one of content-addressed-gateway, cdn, origin, durable-storage")
	}

	if src.Endpoint == "" {
		return validation.NewError("validation_empty_endpoint", "source endpoint cannot be empty")
	}

	parsedURL, err := url.Parse(src.Endpoint)
	if err != nil {
		return validation.NewError("validation_invalid_endpoint", "must be a valid URL")
	}

	if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
		return validation.NewError("validation_invalid_scheme", "endpoint must use http or https scheme")
	}

	if parsedURL.Host == "" {
		return validation.NewError("validation_missing_host", "endpoint must have a host")
	}

	if src.Priority < 0 {
		return validation.NewError("validation_invalid_priority", "priority cannot be negative")
	}

	return nil
}

func validateNameConfig(value interface{}) error {
	name, ok := value.(NameConfig)
	if !ok {
		return validation.NewError("validation_invalid_type", "must be a NameConfig")
	}

	if name.Name == "" {
		return validation.NewError("validation_empty_name", "name cannot be empty")
	}

	if name.Path != "" && !strings.HasPrefix(name.Path, "/") {
		return validation.NewError("validation_invalid_path", "path must start with /")
	}

	return nil
}

// ProbeInterval returns the parsed health check interval.
func (c *Config) ProbeInterval() (time.Duration, error) {
	return time.ParseDuration(c.HealthCheck.Interval)
}

// ProbeTimeout returns the parsed health probe timeout.
func (c *Config) ProbeTimeout() (time.Duration, error) {
	return time.ParseDuration(c.HealthCheck.Timeout)
}

// FetchTimeout returns the parsed per-attempt fetch timeout.
func (c *Config) FetchTimeout() (time.Duration, error) {
	return time.ParseDuration(c.Fetch.Timeout)
}
