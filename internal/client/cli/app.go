package cli

import (
	"bufio"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"sync"

	"github.com/dmitrijs2005/logminer/internal/client/auth"
	"github.com/dmitrijs2005/logminer/internal/client/client"
	"github.com/dmitrijs2005/logminer/internal/client/config"
	"github.com/dmitrijs2005/logminer/internal/client/storage"
	"github.com/dmitrijs2005/logminer/internal/client/stream"
	"github.com/dmitrijs2005/logminer/internal/client/view"
	"github.com/dmitrijs2005/logminer/internal/logging"
	"github.com/dmitrijs2005/logminer/internal/metrics"
)

type tokenManager interface {
	Login(ctx context.Context, code, verifier string) error
	Logout(ctx context.Context) error
	Restore(ctx context.Context) error
	Run(ctx context.Context) error
	Stop()
}

type streamWatcher interface {
	Watch(ctx context.Context, serverID string, autoRefresh bool) (*stream.Session, error)
	Stop()
}

type App struct {
	log     logging.Logger
	db      *sql.DB
	session *auth.Session
	tokens  tokenManager
	api     client.Client
	monitor streamWatcher
	render  *view.Renderer
	oauth   auth.OAuthConfig
	scanner *bufio.Scanner

	watchMu   sync.Mutex
	watching  string
	live      bool
	watermark int64
}

// NewApp opens local storage and wires every client component from cfg.
func NewApp(ctx context.Context, cfg *config.Config, log logging.Logger, counters *metrics.Counters) (*App, error) {
	db, err := storage.Open(ctx, cfg.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("error initializing database: %w", err)
	}

	httpClient := &http.Client{Timeout: cfg.RequestTimeout}
	oauth := auth.OAuthConfig{
		AuthorizeURL: cfg.AuthorizeURL,
		TokenURL:     cfg.TokenURL,
		ClientID:     cfg.ClientID,
		RedirectURL:  cfg.RedirectURL,
		Scope:        cfg.Scope,
	}

	a := &App{
		log:     log,
		db:      db,
		session: auth.NewSession(),
		render:  view.New(os.Stdout),
		oauth:   oauth,
		scanner: bufio.NewScanner(os.Stdin),
	}

	a.tokens = auth.NewManager(a.session,
		auth.NewHTTPEndpoint(oauth, httpClient),
		auth.NewSQLiteStore(db),
		auth.WithLogger(log.With("component", "auth")),
		auth.WithRefreshMargin(cfg.RefreshMargin),
		auth.WithFallbackInterval(cfg.FallbackInterval),
		auth.WithRefreshCounter(counters.TokenRefreshes),
		auth.WithOnCleared(a.onSessionCleared),
	)

	a.api = client.NewRESTClient(cfg.APIURL, a.session, httpClient)

	dialer := &stream.STOMPDialer{URL: cfg.StreamURL, HeartBeat: cfg.HeartBeat}
	a.monitor = stream.NewMonitor(dialer, a.session,
		stream.WithLogger(log.With("component", "stream")),
		stream.WithCounters(counters),
		stream.WithMaxRecords(cfg.MaxRecords),
		stream.WithReconnect(cfg.ReconnectBase, cfg.ReconnectMax, cfg.ReconnectAttempts),
		stream.WithRecordHook(a.onRecord),
		stream.WithStateHook(a.onState),
	)

	return a, nil
}

// Run restores a persisted session, keeps tokens fresh in the background and
// runs the REPL until the user exits or ctx is done.
func (a *App) Run(ctx context.Context) error {
	defer a.Close()

	if err := a.tokens.Restore(ctx); err != nil && !errors.Is(err, auth.ErrNoSession) {
		a.log.Warn(ctx, "could not restore session", "error", err)
	}

	go func() {
		if err := a.tokens.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			a.log.Error(ctx, "token refresh loop stopped", "error", err)
		}
	}()

	printlnFn("Welcome to LogMiner CLI (type 'help' for commands)")
	runREPL(ctx, a, a.status, a.scanner)
	return nil
}

// Close stops streaming and background refresh and closes local storage.
func (a *App) Close() {
	a.monitor.Stop()
	a.tokens.Stop()
	if a.db != nil {
		_ = a.db.Close()
	}
}

func (a *App) isLoggedIn() bool {
	return a.session.Active()
}

func (a *App) status() string {
	token := a.session.AccessToken()
	if token == "" {
		return "(logged out)"
	}
	email, err := auth.Email(token)
	if err != nil {
		return "(logged in)"
	}
	return "(" + email + ")"
}

func (a *App) onSessionCleared(cause error) {
	a.monitor.Stop()
	printlnFn("Session expired, please login again:", cause)
}
