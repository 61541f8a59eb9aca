// Package config handles configuration loading for the yadis command.
//
// Configuration is loaded from a YAML file with support for environment
// variable expansion (${VAR} or $VAR syntax), so that proxy URLs and the
// like can be injected at runtime.
//
// # Configuration Sections
//
//   - discovery: XRI proxy, redirect policy and bound, result cache TTL
//   - namespaces: extra XML namespace prefixes for extension lookups
//   - http: client timeout, user agent, body limit, HTTP/2 and TLS
//   - log: level and format
//   - observability: metrics and tracing
//
// # Example Configuration
//
//	discovery:
//	  proxy: ${XRI_PROXY}
//	  redirectPolicy: lenient
//	  maxRedirects: 3
//	  cacheTTL: 5m
//
//	namespaces:
//	  openid: http://openid.net/xmlns/1.0
//
//	http:
//	  timeout: 10s
//	  http2: true
//	  tls:
//	    minVersion: "1.3"
//
//	log:
//	  level: debug
//	  format: json
//
// See [Load] for loading configuration from a file.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/sirosfoundation/go-yadis/internal/uri"
)

// Defaults
const (
	DefaultProxy          = "http://xri.net/"
	DefaultRedirectPolicy = "strict"
	DefaultMaxRedirects   = 5
	DefaultTimeout        = 30 * time.Second
	DefaultMaxBodyBytes   = 1 << 20
	DefaultTLSMinVersion  = "1.2"
)

// reservedPrefixes are bound by every namespace registry
var reservedPrefixes = []string{"xrds", "xrd"}

// Config is the root configuration structure
type Config struct {
	Discovery     DiscoveryConfig     `yaml:"discovery"`
	Namespaces    map[string]string   `yaml:"namespaces" validate:"dive,keys,required,endkeys,namespace_uri"`
	HTTP          HTTPConfig          `yaml:"http"`
	Log           LogConfig           `yaml:"log"`
	Observability ObservabilityConfig `yaml:"observability"`
}

// DiscoveryConfig holds discovery settings
type DiscoveryConfig struct {
	Proxy          string        `yaml:"proxy" validate:"required,yadis_uri"`
	RedirectPolicy string        `yaml:"redirectPolicy" validate:"oneof=strict lenient"`
	MaxRedirects   int           `yaml:"maxRedirects" validate:"min=1,max=100"`
	CacheTTL       time.Duration `yaml:"cacheTTL"` // zero disables the cache
}

// HTTPConfig holds HTTP client settings
type HTTPConfig struct {
	Timeout      time.Duration `yaml:"timeout"`
	UserAgent    string        `yaml:"userAgent"`
	MaxBodyBytes int64         `yaml:"maxBodyBytes" validate:"gte=0"`
	HTTP2        bool          `yaml:"http2"`
	TLS          struct {
		MinVersion         string `yaml:"minVersion" validate:"oneof=1.2 1.3"`
		InsecureSkipVerify bool   `yaml:"insecureSkipVerify"`
	} `yaml:"tls"`
}

// LogConfig holds logging settings
type LogConfig struct {
	Level  string `yaml:"level" validate:"oneof=debug info warn error"`
	Format string `yaml:"format" validate:"oneof=text json"`
}

// ObservabilityConfig holds metrics and tracing settings
type ObservabilityConfig struct {
	Metrics struct {
		Enabled bool `yaml:"enabled"`
	} `yaml:"metrics"`
	Tracing struct {
		Enabled bool `yaml:"enabled"`
	} `yaml:"tracing"`
}

// Default returns a configuration with all defaults applied
func Default() *Config {
	var cfg Config
	cfg.applyDefaults()
	return &cfg
}

// Load reads configuration from a YAML file
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	return Parse(data)
}

// Parse parses YAML configuration, expanding environment variables first
func Parse(data []byte) (*Config, error) {
	expanded := os.ExpandEnv(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Discovery.Proxy == "" {
		c.Discovery.Proxy = DefaultProxy
	}
	if c.Discovery.RedirectPolicy == "" {
		c.Discovery.RedirectPolicy = DefaultRedirectPolicy
	}
	if c.Discovery.MaxRedirects == 0 {
		c.Discovery.MaxRedirects = DefaultMaxRedirects
	}
	if c.HTTP.Timeout == 0 {
		c.HTTP.Timeout = DefaultTimeout
	}
	if c.HTTP.MaxBodyBytes == 0 {
		c.HTTP.MaxBodyBytes = DefaultMaxBodyBytes
	}
	if c.HTTP.TLS.MinVersion == "" {
		c.HTTP.TLS.MinVersion = DefaultTLSMinVersion
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}
}

// Validate checks field constraints and cross-field rules
func (c *Config) Validate() error {
	if err := newValidator().Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				msgs = append(msgs, fmt.Sprintf("%s failed %q", fe.Namespace(), fe.Tag()))
			}
			return errors.New(strings.Join(msgs, "; "))
		}
		return err
	}

	for _, prefix := range reservedPrefixes {
		if _, ok := c.Namespaces[prefix]; ok {
			return fmt.Errorf("namespaces.%s: prefix is reserved", prefix)
		}
	}
	if c.Discovery.CacheTTL < 0 {
		return fmt.Errorf("discovery.cacheTTL must not be negative, got %s", c.Discovery.CacheTTL)
	}
	if c.HTTP.Timeout < 0 {
		return fmt.Errorf("http.timeout must not be negative, got %s", c.HTTP.Timeout)
	}
	return nil
}

// SlogLevel returns the configured level as a slog.Level
func (l LogConfig) SlogLevel() slog.Level {
	switch l.Level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func newValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("yadis_uri", func(fl validator.FieldLevel) bool {
		return uri.Valid(fl.Field().String())
	})
	_ = v.RegisterValidation("namespace_uri", func(fl validator.FieldLevel) bool {
		return uri.ValidNamespace(fl.Field().String())
	})
	return v
}
