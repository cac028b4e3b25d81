package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/sirupsen/logrus"

	solanago "github.com/gagliardetto/solana-go"

	"github.com/SuperteamDAO/earn-sub007/internal/audit"
	"github.com/SuperteamDAO/earn-sub007/internal/metrics"
	"github.com/SuperteamDAO/earn-sub007/internal/types"
	"github.com/SuperteamDAO/earn-sub007/internal/userdir"
)

// Withdrawer constructs a partially signed withdrawal transaction for a
// sender. Implemented by solana.Network.
type Withdrawer interface {
	Withdraw(ctx context.Context, sender solanago.PublicKey, req types.WithdrawalRequest) (types.WithdrawalEnvelope, error)
}

type Config struct {
	Port string `envconfig:"SERVER_PORT" default:"8080"`

	// Outer budget for one construction request. Must cover the worst case:
	// a full confirmation poll for fee payer provisioning.
	RequestTimeout time.Duration `envconfig:"SERVER_REQUEST_TIMEOUT" default:"90s"`
}

type Server struct {
	cfg     Config
	echo    *echo.Echo
	network Withdrawer
	users   userdir.Directory
	auditor audit.Recorder
	logger  *logrus.Logger
}

func NewServer(
	cfg Config,
	network Withdrawer,
	users userdir.Directory,
	auditor audit.Recorder,
	logger *logrus.Logger,
) *Server {
	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Recover())
	e.Use(metrics.HTTPMiddleware())

	s := &Server{
		cfg:     cfg,
		echo:    e,
		network: network,
		users:   users,
		auditor: auditor,
		logger:  logger,
	}

	e.POST("/v1/withdraw", s.handleWithdraw)
	e.GET("/healthz", s.handleHealth)

	return s
}

func (s *Server) Start(ctx context.Context) error {
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := s.echo.Shutdown(shutdownCtx); err != nil {
			s.logger.Errorf("failed to shut down server: %v", err)
		}
	}()

	err := s.echo.Start(":" + s.cfg.Port)
	if err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server stopped: %w", err)
	}
	return nil
}
