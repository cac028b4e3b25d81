package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"github.com/SuperteamDAO/earn-sub007/internal/audit"
	"github.com/SuperteamDAO/earn-sub007/internal/types"
)

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleWithdraw(c echo.Context) error {
	requestID := uuid.New()

	authToken := c.Request().Header.Get("Authorization")
	if authToken == "" {
		return c.JSON(http.StatusUnauthorized, errorResponse{Error: "missing Authorization header"})
	}

	var req types.WithdrawalRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "malformed request body"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), s.cfg.RequestTimeout)
	defer cancel()

	log := s.logger.WithFields(logrus.Fields{
		"request_id": requestID.String(),
		"recipient":  req.RecipientAddress,
		"asset":      req.AssetAddress,
		"amount":     req.Amount,
	})

	senderAddress, err := s.users.WalletAddress(ctx, authToken)
	if err != nil {
		log.WithError(err).Error("failed to resolve sender wallet")
		return s.errorJSON(c, err)
	}

	sender, err := solana.PublicKeyFromBase58(senderAddress)
	if err != nil {
		log.WithError(err).Error("user directory returned malformed wallet address")
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "sender has no valid wallet address"})
	}

	entry := audit.Entry{
		RequestID: requestID,
		UserID:    senderAddress,
		Sender:    senderAddress,
		Recipient: req.RecipientAddress,
		Asset:     req.AssetAddress,
		Amount:    req.Amount,
	}

	envelope, err := s.network.Withdraw(ctx, sender, req)
	if err != nil {
		log.WithError(err).Error("withdrawal construction failed")
		s.record(entry, statusFor(err), err.Error())
		return s.errorJSON(c, err)
	}

	s.record(entry, audit.StatusBuilt, "")
	log.WithField("receiver_existed", envelope.ReceiverAccountExisted).Info("withdrawal transaction ready")

	return c.JSON(http.StatusOK, envelope)
}

// record writes the audit row on its own deadline. The request context may
// already be dead here (the timeout path is the one where an indeterminate
// side effect most needs an audit trail), so it must not gate the insert.
func (s *Server) record(entry audit.Entry, status, detail string) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	entry.Status = status
	entry.Detail = detail
	if err := s.auditor.Record(ctx, entry); err != nil {
		// The envelope is already built; losing the audit row is bad but
		// not a reason to fail the withdrawal.
		s.logger.WithError(err).Error("failed to write audit record")
	}
}

func statusFor(err error) string {
	if isClientError(err) {
		return audit.StatusRejected
	}
	return audit.StatusFailed
}

func isClientError(err error) bool {
	var validationErr *types.ValidationError
	var insufficientErr *types.InsufficientAmountError
	return errors.As(err, &validationErr) ||
		errors.As(err, &insufficientErr) ||
		errors.Is(err, types.ErrAssetNotFound)
}

// errorJSON maps the error taxonomy onto HTTP statuses: validation and
// business-rule failures are client errors, upstream dependency failures are
// gateway errors, anything else is a plain server error.
func (s *Server) errorJSON(c echo.Context, err error) error {
	switch {
	case isClientError(err):
		return c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
	case errors.Is(err, types.ErrUpstreamUnavailable),
		errors.Is(err, types.ErrPriceUnavailable),
		errors.Is(err, types.ErrConfirmationTimeout):
		return c.JSON(http.StatusBadGateway, errorResponse{Error: err.Error()})
	case errors.Is(err, context.DeadlineExceeded):
		return c.JSON(http.StatusGatewayTimeout, errorResponse{Error: "request timed out"})
	default:
		return c.JSON(http.StatusInternalServerError, errorResponse{Error: err.Error()})
	}
}
