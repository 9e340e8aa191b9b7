package handler

import (
	"io"
	"net/http"

	"edemy-backend/internal/service"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// PaymentHandler receives the asynchronous callbacks from the payment
// collaborator. Deliveries may be duplicated or delayed; the service dedups
// them by event id.
type PaymentHandler struct {
	purchaseService service.PurchaseService
	logger          *zap.Logger
}

func NewPaymentHandler(purchaseService service.PurchaseService, logger *zap.Logger) *PaymentHandler {
	return &PaymentHandler{
		purchaseService: purchaseService,
		logger:          logger,
	}
}

func (h *PaymentHandler) Webhook(c echo.Context) error {
	ctx := c.Request().Context()

	body, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "read webhook body")
	}

	if err := h.purchaseService.HandleWebhook(ctx, c.Request().Header, body); err != nil {
		h.logger.Error("webhook processing failed", zap.Error(err))
		return err
	}

	return c.NoContent(http.StatusOK)
}
