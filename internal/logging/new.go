package logging

import (
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/sirupsen/logrus"
)

// Supported values for the log_backend setting.
const (
	BackendSlog   = "slog"
	BackendLogrus = "logrus"
)

// New builds a Logger writing to w. backend selects the implementation
// (empty means slog) and level is one of debug, info, warn, error.
func New(backend, level string, w io.Writer) (Logger, error) {
	switch strings.ToLower(backend) {
	case "", BackendSlog:
		var lvl slog.Level
		if err := lvl.UnmarshalText([]byte(level)); err != nil {
			return nil, fmt.Errorf("parse log level %q: %w", level, err)
		}
		h := slog.NewTextHandler(w, &slog.HandlerOptions{Level: lvl})
		return NewSlogLogger(slog.New(h)), nil

	case BackendLogrus:
		lvl, err := logrus.ParseLevel(level)
		if err != nil {
			return nil, fmt.Errorf("parse log level %q: %w", level, err)
		}
		l := logrus.New()
		l.SetOutput(w)
		setupLogrus(l, lvl)
		return NewLogrusLogger(l), nil

	default:
		return nil, fmt.Errorf("unknown log backend %q", backend)
	}
}
