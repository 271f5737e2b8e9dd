package config

import (
	"errors"
	"fmt"
	"time"
)

// Config holds runtime settings for the LogMiner client.
type Config struct {
	// APIURL is the base URL of the REST backend.
	APIURL string `env:"LOGMINER_API_URL"`
	// StreamURL is the raw WebSocket URL of the STOMP broker.
	StreamURL string `env:"LOGMINER_STREAM_URL"`

	AuthorizeURL string `env:"LOGMINER_AUTHORIZE_URL"`
	TokenURL     string `env:"LOGMINER_TOKEN_URL"`
	ClientID     string `env:"LOGMINER_CLIENT_ID"`
	RedirectURL  string `env:"LOGMINER_REDIRECT_URL"`
	Scope        string `env:"LOGMINER_SCOPE"`

	DatabasePath string `env:"LOGMINER_DB"`
	LogLevel     string `env:"LOGMINER_LOG_LEVEL"`
	LogBackend   string `env:"LOGMINER_LOG_BACKEND"`
	// MetricsAddr enables the Prometheus endpoint when non-empty.
	MetricsAddr string `env:"LOGMINER_METRICS_ADDR"`

	RequestTimeout   time.Duration `env:"LOGMINER_REQUEST_TIMEOUT"`
	RefreshMargin    time.Duration `env:"LOGMINER_REFRESH_MARGIN"`
	FallbackInterval time.Duration `env:"LOGMINER_FALLBACK_INTERVAL"`

	MaxRecords        int           `env:"LOGMINER_MAX_RECORDS"`
	HeartBeat         time.Duration `env:"LOGMINER_HEARTBEAT"`
	ReconnectBase     time.Duration `env:"LOGMINER_RECONNECT_BASE"`
	ReconnectMax      time.Duration `env:"LOGMINER_RECONNECT_MAX"`
	ReconnectAttempts int           `env:"LOGMINER_RECONNECT_ATTEMPTS"`
}

// LoadDefaults populates c with defaults suitable for a local backend.
func (c *Config) LoadDefaults() {
	c.APIURL = "http://localhost:8080"
	c.StreamURL = "ws://localhost:8080/ws-logs/websocket"

	c.AuthorizeURL = "https://login.microsoftonline.com/common/oauth2/v2.0/authorize"
	c.TokenURL = "https://login.microsoftonline.com/common/oauth2/v2.0/token"
	c.RedirectURL = "http://127.0.0.1:8765/callback"
	c.Scope = "openid profile email offline_access"

	c.DatabasePath = "logminer.db"
	c.LogLevel = "info"
	c.LogBackend = "slog"

	c.RequestTimeout = 15 * time.Second
	c.RefreshMargin = time.Minute
	c.FallbackInterval = time.Hour

	c.MaxRecords = 1000
	c.HeartBeat = 10 * time.Second
	c.ReconnectBase = time.Second
	c.ReconnectMax = 30 * time.Second
	c.ReconnectAttempts = 5
}

// Validate reports every setting that cannot work.
func (c *Config) Validate() error {
	var errs []error
	if c.APIURL == "" {
		errs = append(errs, errors.New("api url is required"))
	}
	if c.StreamURL == "" {
		errs = append(errs, errors.New("stream url is required"))
	}
	if c.DatabasePath == "" {
		errs = append(errs, errors.New("database path is required"))
	}
	if c.RefreshMargin < 0 {
		errs = append(errs, fmt.Errorf("refresh margin must not be negative, got %s", c.RefreshMargin))
	}
	if c.FallbackInterval <= 0 {
		errs = append(errs, fmt.Errorf("fallback interval must be positive, got %s", c.FallbackInterval))
	}
	if c.MaxRecords <= 0 {
		errs = append(errs, fmt.Errorf("max records must be positive, got %d", c.MaxRecords))
	}
	if c.ReconnectAttempts <= 0 {
		errs = append(errs, fmt.Errorf("reconnect attempts must be positive, got %d", c.ReconnectAttempts))
	}
	if c.ReconnectBase <= 0 || c.ReconnectMax < c.ReconnectBase {
		errs = append(errs, fmt.Errorf("reconnect backoff %s..%s is invalid", c.ReconnectBase, c.ReconnectMax))
	}
	return errors.Join(errs...)
}

// LoadConfig constructs a Config from defaults, then the config file, then
// the environment, then args. Later sources take precedence.
func LoadConfig(args []string) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()

	fl, err := parseFlags(args)
	if err != nil {
		return nil, err
	}

	if fl.configPath != "" {
		if err := loadFile(cfg, fl.configPath); err != nil {
			return nil, err
		}
	}

	if err := loadEnv(cfg, fl.envFile); err != nil {
		return nil, err
	}

	fl.apply(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}
