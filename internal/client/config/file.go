package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dmitrijs2005/logminer/internal/timex"
	"gopkg.in/yaml.v3"
)

// fileConfig is a DTO used only for decoding config files. Durations use
// timex.Duration so files may write "90s" or integer nanoseconds; zero
// values leave the current setting alone.
type fileConfig struct {
	APIURL    string `json:"api_url" yaml:"api_url"`
	StreamURL string `json:"stream_url" yaml:"stream_url"`

	AuthorizeURL string `json:"authorize_url" yaml:"authorize_url"`
	TokenURL     string `json:"token_url" yaml:"token_url"`
	ClientID     string `json:"client_id" yaml:"client_id"`
	RedirectURL  string `json:"redirect_url" yaml:"redirect_url"`
	Scope        string `json:"scope" yaml:"scope"`

	DatabasePath string `json:"database_path" yaml:"database_path"`
	LogLevel     string `json:"log_level" yaml:"log_level"`
	LogBackend   string `json:"log_backend" yaml:"log_backend"`
	MetricsAddr  string `json:"metrics_addr" yaml:"metrics_addr"`

	RequestTimeout   timex.Duration `json:"request_timeout" yaml:"request_timeout"`
	RefreshMargin    timex.Duration `json:"refresh_margin" yaml:"refresh_margin"`
	FallbackInterval timex.Duration `json:"fallback_interval" yaml:"fallback_interval"`

	MaxRecords        int            `json:"max_records" yaml:"max_records"`
	HeartBeat         timex.Duration `json:"heartbeat" yaml:"heartbeat"`
	ReconnectBase     timex.Duration `json:"reconnect_base" yaml:"reconnect_base"`
	ReconnectMax      timex.Duration `json:"reconnect_max" yaml:"reconnect_max"`
	ReconnectAttempts int            `json:"reconnect_attempts" yaml:"reconnect_attempts"`
}

func loadFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}

	var fc fileConfig
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &fc)
	default:
		err = json.Unmarshal(data, &fc)
	}
	if err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}

	fc.overlay(cfg)
	return nil
}

func (fc *fileConfig) overlay(cfg *Config) {
	setString(&cfg.APIURL, fc.APIURL)
	setString(&cfg.StreamURL, fc.StreamURL)
	setString(&cfg.AuthorizeURL, fc.AuthorizeURL)
	setString(&cfg.TokenURL, fc.TokenURL)
	setString(&cfg.ClientID, fc.ClientID)
	setString(&cfg.RedirectURL, fc.RedirectURL)
	setString(&cfg.Scope, fc.Scope)
	setString(&cfg.DatabasePath, fc.DatabasePath)
	setString(&cfg.LogLevel, fc.LogLevel)
	setString(&cfg.LogBackend, fc.LogBackend)
	setString(&cfg.MetricsAddr, fc.MetricsAddr)

	setDuration(&cfg.RequestTimeout, fc.RequestTimeout)
	setDuration(&cfg.RefreshMargin, fc.RefreshMargin)
	setDuration(&cfg.FallbackInterval, fc.FallbackInterval)
	setDuration(&cfg.HeartBeat, fc.HeartBeat)
	setDuration(&cfg.ReconnectBase, fc.ReconnectBase)
	setDuration(&cfg.ReconnectMax, fc.ReconnectMax)

	if fc.MaxRecords != 0 {
		cfg.MaxRecords = fc.MaxRecords
	}
	if fc.ReconnectAttempts != 0 {
		cfg.ReconnectAttempts = fc.ReconnectAttempts
	}
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func setDuration(dst *time.Duration, v timex.Duration) {
	if v.Duration != 0 {
		*dst = v.Duration
	}
}
