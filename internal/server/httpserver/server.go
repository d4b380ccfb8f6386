// Package httpserver exposes the JSON API over HTTP using echo.
package httpserver

import (
	"context"
	"errors"
	"net"
	"net/http"
	"slices"
	"time"

	"github.com/dmitrijs2005/gradekeeper/internal/common"
	"github.com/dmitrijs2005/gradekeeper/internal/logging"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

const shutdownTimeout = 5 * time.Second

type HTTPServer struct {
	address string
	echo    *echo.Echo
	logger  logging.Logger
}

// NewRouter builds the echo instance with middleware and routes.
func NewRouter(h *Handler, corsOrigins []string, l logging.Logger) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	if len(corsOrigins) == 0 {
		corsOrigins = common.DefaultCORSOrigins
	}

	e.Use(requestLogger(l))
	e.Use(middleware.Recover())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     corsOrigins,
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowHeaders:     []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept},
		AllowCredentials: true,

		// "*" with credentials reflects the caller's origin; only on explicit opt-in
		UnsafeWildcardOriginWithAllowCredentials: slices.Contains(corsOrigins, "*"),
	}))
	e.Use(sessionLoader(h.signer, h.sessions, l))

	h.Routes(e)
	return e
}

func NewHTTPServer(address string, h *Handler, corsOrigins []string, l logging.Logger) *HTTPServer {
	logger := l.With("module", "http_server")
	return &HTTPServer{
		address: address,
		echo:    NewRouter(h, corsOrigins, logger),
		logger:  logger,
	}
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *HTTPServer) Run(ctx context.Context) error {

	listener, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}
	s.echo.Listener = listener

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := s.echo.Shutdown(shutdownCtx); err != nil {
			s.logger.Error(ctx, "HTTP shutdown error", "error", err)
		}
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", listener.Addr().String())

	if err := s.echo.Start(s.address); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return nil
}
