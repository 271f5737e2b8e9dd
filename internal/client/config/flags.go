package config

import (
	"io"

	"github.com/spf13/pflag"
)

type flagValues struct {
	fs         *pflag.FlagSet
	configPath string
	envFile    string
	v          Config
}

func newFlagSet(fv *flagValues) *pflag.FlagSet {
	fs := pflag.NewFlagSet("logminer", pflag.ContinueOnError)
	fs.SortFlags = false
	fs.SetOutput(io.Discard)

	var d Config
	d.LoadDefaults()

	fs.StringVarP(&fv.configPath, "config", "c", "", "path to a JSON or YAML config file")
	fs.StringVar(&fv.envFile, "env-file", ".env", "dotenv file loaded before reading the environment")

	fs.StringVarP(&fv.v.APIURL, "api-url", "a", d.APIURL, "base URL of the LogMiner REST API")
	fs.StringVar(&fv.v.StreamURL, "stream-url", d.StreamURL, "WebSocket URL of the log stream broker")
	fs.StringVar(&fv.v.AuthorizeURL, "authorize-url", d.AuthorizeURL, "identity provider authorization endpoint")
	fs.StringVar(&fv.v.TokenURL, "token-url", d.TokenURL, "identity provider token endpoint")
	fs.StringVar(&fv.v.ClientID, "client-id", "", "OAuth client id")
	fs.StringVar(&fv.v.RedirectURL, "redirect-url", d.RedirectURL, "loopback redirect URL for the login callback")
	fs.StringVar(&fv.v.Scope, "scope", d.Scope, "space separated OAuth scopes")
	fs.StringVar(&fv.v.DatabasePath, "db", d.DatabasePath, "path of the local SQLite database")
	fs.StringVar(&fv.v.LogLevel, "log-level", d.LogLevel, "debug, info, warn or error")
	fs.StringVar(&fv.v.LogBackend, "log-backend", d.LogBackend, "slog or logrus")
	fs.StringVar(&fv.v.MetricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address")
	fs.DurationVar(&fv.v.RequestTimeout, "request-timeout", d.RequestTimeout, "timeout of REST and token requests")
	fs.DurationVar(&fv.v.RefreshMargin, "refresh-margin", d.RefreshMargin, "refresh the access token this long before it expires")
	fs.DurationVar(&fv.v.FallbackInterval, "fallback-interval", d.FallbackInterval, "unconditional token refresh interval")
	fs.IntVar(&fv.v.MaxRecords, "max-records", d.MaxRecords, "records kept per stream")
	fs.DurationVar(&fv.v.HeartBeat, "heartbeat", d.HeartBeat, "STOMP heart-beat interval, 0 disables")
	fs.DurationVar(&fv.v.ReconnectBase, "reconnect-base", d.ReconnectBase, "first reconnect delay")
	fs.DurationVar(&fv.v.ReconnectMax, "reconnect-max", d.ReconnectMax, "maximum reconnect delay")
	fs.IntVar(&fv.v.ReconnectAttempts, "reconnect-attempts", d.ReconnectAttempts, "connect attempts before the stream gives up")

	return fs
}

// parseFlags parses args. Values are applied later, by apply, so that flags
// win over the file and the environment.
func parseFlags(args []string) (*flagValues, error) {
	fv := &flagValues{}
	fv.fs = newFlagSet(fv)
	if err := fv.fs.Parse(args); err != nil {
		return nil, err
	}
	return fv, nil
}

// apply copies every flag that was set explicitly onto cfg.
func (fv *flagValues) apply(cfg *Config) {
	fv.fs.Visit(func(f *pflag.Flag) {
		switch f.Name {
		case "api-url":
			cfg.APIURL = fv.v.APIURL
		case "stream-url":
			cfg.StreamURL = fv.v.StreamURL
		case "authorize-url":
			cfg.AuthorizeURL = fv.v.AuthorizeURL
		case "token-url":
			cfg.TokenURL = fv.v.TokenURL
		case "client-id":
			cfg.ClientID = fv.v.ClientID
		case "redirect-url":
			cfg.RedirectURL = fv.v.RedirectURL
		case "scope":
			cfg.Scope = fv.v.Scope
		case "db":
			cfg.DatabasePath = fv.v.DatabasePath
		case "log-level":
			cfg.LogLevel = fv.v.LogLevel
		case "log-backend":
			cfg.LogBackend = fv.v.LogBackend
		case "metrics-addr":
			cfg.MetricsAddr = fv.v.MetricsAddr
		case "request-timeout":
			cfg.RequestTimeout = fv.v.RequestTimeout
		case "refresh-margin":
			cfg.RefreshMargin = fv.v.RefreshMargin
		case "fallback-interval":
			cfg.FallbackInterval = fv.v.FallbackInterval
		case "max-records":
			cfg.MaxRecords = fv.v.MaxRecords
		case "heartbeat":
			cfg.HeartBeat = fv.v.HeartBeat
		case "reconnect-base":
			cfg.ReconnectBase = fv.v.ReconnectBase
		case "reconnect-max":
			cfg.ReconnectMax = fv.v.ReconnectMax
		case "reconnect-attempts":
			cfg.ReconnectAttempts = fv.v.ReconnectAttempts
		}
	})
}

// Usage returns the flag help text.
func Usage() string {
	return newFlagSet(&flagValues{}).FlagUsages()
}
