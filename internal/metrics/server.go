package metrics

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
)

type Config struct {
	Enabled bool   `envconfig:"METRICS_ENABLED" default:"true"`
	Port    string `envconfig:"METRICS_PORT" default:"9090"`
}

// Server exposes /metrics on its own port, separate from the API server.
type Server struct {
	httpServer *http.Server
	logger     *logrus.Logger
}

// StartMetricsServer registers collectors for the given services and serves
// them. Returns nil when metrics are disabled.
func StartMetricsServer(cfg Config, services []string, logger *logrus.Logger) *Server {
	if !cfg.Enabled {
		return nil
	}

	RegisterMetrics(services, logger)

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	srv := &Server{
		httpServer: &http.Server{
			Addr:              ":" + cfg.Port,
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
		},
		logger: logger,
	}

	go func() {
		logger.Infof("metrics server listening on :%s", cfg.Port)
		if err := srv.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Errorf("metrics server stopped: %v", err)
		}
	}()

	return srv
}

func (s *Server) Stop(ctx context.Context) error {
	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shut down metrics server: %w", err)
	}
	return nil
}
