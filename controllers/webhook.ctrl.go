package controllers

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/letsco/splithub/db/models"
	"github.com/letsco/splithub/lib/responses"
	"github.com/letsco/splithub/lib/service"
)

const signatureHeader = "Stripe-Signature"

type WebhookVerifier interface {
	VerifyWebhook(payload []byte, signature string) error
}

// WebhookController : receives gateway events. This endpoint is public.
type WebhookController struct {
	svc      *service.SplithubService
	verifier WebhookVerifier
}

func NewWebhookController(svc *service.SplithubService, verifier WebhookVerifier) *WebhookController {
	return &WebhookController{svc: svc, verifier: verifier}
}

type WebhookResponseBody struct {
	Success   bool                     `json:"success"`
	Transfers []models.SettledTransfer `json:"transfers,omitempty"`
}

// Webhook godoc
// @Summary      Gateway webhook
// @Description  Dispatches gateway events. charge.succeeded settles the charge, other events are acknowledged.
// @Tags         Webhook
// @Accept       json
// @Produce      json
// @Param        Stripe-Signature  header    string  false  "Webhook signature"
// @Success      200               {object}  WebhookResponseBody
// @Failure      400               {object}  responses.ErrorResponse
// @Failure      404
// @Failure      502               {object}  responses.ErrorResponse
// @Router       /webhook [post]
func (controller *WebhookController) Webhook(c echo.Context) error {
	payload, err := io.ReadAll(c.Request().Body)
	if err != nil {
		c.Logger().Errorf("Failed to read webhook body: %v", err)
		return c.JSON(http.StatusBadRequest, responses.BadArgumentsError)
	}
	if controller.verifier != nil {
		if err := controller.verifier.VerifyWebhook(payload, c.Request().Header.Get(signatureHeader)); err != nil {
			c.Logger().Warnf("Rejected webhook with invalid signature: %v", err)
			return c.JSON(http.StatusBadRequest, responses.BadArgumentsError.WithMessage("invalid signature"))
		}
	}

	var event service.GatewayEvent
	if err := json.Unmarshal(payload, &event); err != nil || event.Type == "" {
		return c.JSON(http.StatusBadRequest, responses.BadArgumentsError.WithMessage("malformed event"))
	}

	transfers, err := controller.svc.HandleGatewayEvent(c.Request().Context(), event)
	if err != nil {
		return respondWithError(c, err)
	}
	return c.JSON(http.StatusOK, &WebhookResponseBody{Success: true, Transfers: transfers})
}
