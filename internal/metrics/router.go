package metrics

import (
	"context"
	"errors"
	"net/http"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
)

func ConfigureRouter(handler *echo.Echo) {
	handler.GET("/metrics", echoprometheus.NewHandler())
}

// Server exposes /metrics over HTTP.
type Server struct {
	e      *echo.Echo
	notify chan error
}

// StartServer starts listening on addr in the background.
func StartServer(addr string) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	ConfigureRouter(e)

	s := &Server{e: e, notify: make(chan error, 1)}
	go func() {
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.notify <- err
		}
		close(s.notify)
	}()
	return s
}

// Notify reports a listener failure. It is closed once the server stops.
func (s *Server) Notify() <-chan error {
	return s.notify
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.e.Shutdown(ctx)
}
