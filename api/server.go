package api

import (
	"context"
	"net/http"
	"time"

	"github.com/TheRealPress1/roamiii-backend/pkg/logger"
)

const shutdownGrace = 10 * time.Second

// Server wraps http.Server with graceful shutdown.
type Server struct {
	srv  *http.Server
	logg *logger.Logger
}

// NewServer builds a server bound to addr serving handler.
func NewServer(addr string, handler http.Handler, logg *logger.Logger) *Server {
	return &Server{
		srv: &http.Server{
			Addr:              addr,
			Handler:           handler,
			ReadHeaderTimeout: 10 * time.Second,
		},
		logg: logg,
	}
}

// Run serves until the context is canceled, then drains in-flight requests.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		if err := s.srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
			return
		}
		errCh <- nil
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.logg.Info(ctx, "shutting down http server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
	defer cancel()
	return s.srv.Shutdown(shutdownCtx)
}
