package controllers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/letsco/splithub/db/models"
	"github.com/letsco/splithub/lib/responses"
	"github.com/letsco/splithub/lib/service"
)

const idempotencyKeyHeader = "Idempotency-Key"

// PaymentController : split charges and their settlement
type PaymentController struct {
	svc *service.SplithubService
}

func NewPaymentController(svc *service.SplithubService) *PaymentController {
	return &PaymentController{svc: svc}
}

type PaymentAccount struct {
	ID     string `json:"id"`
	Amount int64  `json:"amount"`
}

type CreatePaymentRequestBody struct {
	TotalAmount int64             `json:"total_amount"`
	Customer    string            `json:"customer"`
	Description string            `json:"description"`
	Meta        map[string]string `json:"meta"`
	Accounts    []PaymentAccount  `json:"accounts"`
}

type CreatePaymentResponseBody struct {
	Success bool    `json:"success"`
	Charge  string  `json:"charge"`
	Fees    float64 `json:"fees"`
}

type PaymentResponseBody struct {
	Success bool   `json:"success"`
	Charge  string `json:"charge"`
}

type SettlePaymentResponseBody struct {
	Success   bool                     `json:"success"`
	Transfers []models.SettledTransfer `json:"transfers"`
}

// GetPayment godoc
// @Summary      Get a payment
// @Description  Echoes the charge id back to the caller.
// @Tags         Payment
// @Produce      json
// @Param        id   path      string  true  "Charge id"
// @Success      200  {object}  PaymentResponseBody
// @Router       /payment/{id} [get]
// @Security     BearerAuth
func (controller *PaymentController) GetPayment(c echo.Context) error {
	return c.JSON(http.StatusOK, &PaymentResponseBody{Success: true, Charge: c.Param("id")})
}

// CreatePayment godoc
// @Summary      Create a split payment
// @Description  Charges the customer for total_amount and records one waiting transfer per account.
// @Tags         Payment
// @Accept       json
// @Produce      json
// @Param        Idempotency-Key           header    string                    false  "Forwarded to the gateway charge"
// @Param        CreatePaymentRequestBody  body      CreatePaymentRequestBody  true   "Split payment"
// @Success      200                       {object}  CreatePaymentResponseBody
// @Failure      400                       {object}  responses.ErrorResponse
// @Failure      404
// @Failure      502                       {object}  responses.ErrorResponse
// @Failure      500                       {object}  responses.ErrorResponse
// @Router       /payment [post]
// @Security     BearerAuth
func (controller *PaymentController) CreatePayment(c echo.Context) error {
	var body CreatePaymentRequestBody
	if err := c.Bind(&body); err != nil {
		c.Logger().Errorf("Failed to load create payment request body: %v", err)
		return c.JSON(http.StatusBadRequest, responses.BadArgumentsError)
	}

	splits := make([]service.Split, 0, len(body.Accounts))
	for _, account := range body.Accounts {
		splits = append(splits, service.Split{AccountID: account.ID, Amount: account.Amount})
	}

	result, err := controller.svc.CreateSplitCharge(c.Request().Context(), service.SplitChargeRequest{
		CustomerID:     body.Customer,
		TotalAmount:    body.TotalAmount,
		Description:    body.Description,
		Metadata:       body.Meta,
		Splits:         splits,
		IdempotencyKey: c.Request().Header.Get(idempotencyKeyHeader),
	})
	if err != nil {
		return respondWithError(c, err)
	}

	return c.JSON(http.StatusOK, &CreatePaymentResponseBody{
		Success: true,
		Charge:  result.ChargeID,
		Fees:    result.Fees.InexactFloat64(),
	})
}

// SettlePayment godoc
// @Summary      Settle a payment
// @Description  Pays every waiting transfer of the charge. Only transfers made by this call are listed.
// @Tags         Payment
// @Produce      json
// @Param        id   path      string  true  "Charge id"
// @Success      200  {object}  SettlePaymentResponseBody
// @Failure      404
// @Failure      502  {object}  responses.ErrorResponse
// @Failure      500  {object}  responses.ErrorResponse
// @Router       /payment/{id} [put]
// @Security     BearerAuth
func (controller *PaymentController) SettlePayment(c echo.Context) error {
	transfers, err := controller.svc.SettleCharge(c.Request().Context(), c.Param("id"))
	if err != nil {
		return respondWithError(c, err)
	}
	return c.JSON(http.StatusOK, &SettlePaymentResponseBody{Success: true, Transfers: transfers})
}
