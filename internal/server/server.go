package server

import (
	"context"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/gamepark/rules-server-go/internal/config"
)

// Server is the websocket endpoint of the rules engine.
type Server struct {
	cfg  config.ServerConfig
	hub  *Hub
	log  *zap.Logger
	http *http.Server
}

// NewServer wires the hub behind /ws.
func NewServer(cfg config.ServerConfig, hub *Hub, log *zap.Logger) *Server {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", hub.ServeWS)
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	return &Server{
		cfg: cfg,
		hub: hub,
		log: log,
		http: &http.Server{
			Addr:    cfg.Address,
			Handler: mux,
		},
	}
}

// Run serves until the context ends, then shuts down gracefully within the
// configured timeout.
func (s *Server) Run(ctx context.Context) error {
	go s.hub.Run(ctx)

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("websocket server listening", zap.String("address", s.cfg.Address))
		if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
	defer cancel()
	return s.http.Shutdown(shutdownCtx)
}
