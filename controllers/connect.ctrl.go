package controllers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/letsco/splithub/gateway"
	"github.com/letsco/splithub/lib/responses"
	"github.com/letsco/splithub/lib/service"
)

// ConnectController : payee (connected account) lookups and creation
type ConnectController struct {
	svc *service.SplithubService
}

func NewConnectController(svc *service.SplithubService) *ConnectController {
	return &ConnectController{svc: svc}
}

type CreateAccountRequestBody struct {
	Country string `json:"country" validate:"omitempty,iso3166_1_alpha2"`
	Email   string `json:"email" validate:"omitempty,email"`
}

type AccountResponseBody struct {
	Success bool             `json:"success"`
	Account *gateway.Account `json:"account"`
}

// GetAccount godoc
// @Summary      Get a connected account
// @Tags         Connect
// @Produce      json
// @Param        id   path      string  true  "Account id"
// @Success      200  {object}  AccountResponseBody
// @Failure      404
// @Failure      502  {object}  responses.ErrorResponse
// @Router       /connect/{id} [get]
// @Security     BearerAuth
func (controller *ConnectController) GetAccount(c echo.Context) error {
	account, err := controller.svc.Gateway.GetAccount(c.Request().Context(), c.Param("id"))
	if err != nil {
		return respondWithError(c, err)
	}
	return c.JSON(http.StatusOK, &AccountResponseBody{Success: true, Account: account})
}

// CreateAccount godoc
// @Summary      Create a connected account
// @Tags         Connect
// @Accept       json
// @Produce      json
// @Param        CreateAccountRequestBody  body      CreateAccountRequestBody  false  "Account details"
// @Success      200                       {object}  AccountResponseBody
// @Failure      400                       {object}  responses.ErrorResponse
// @Failure      502                       {object}  responses.ErrorResponse
// @Router       /connect [post]
// @Security     BearerAuth
func (controller *ConnectController) CreateAccount(c echo.Context) error {
	var body CreateAccountRequestBody
	if err := c.Bind(&body); err != nil {
		c.Logger().Errorf("Failed to load create account request body: %v", err)
		return c.JSON(http.StatusBadRequest, responses.BadArgumentsError)
	}
	if err := c.Validate(&body); err != nil {
		return c.JSON(http.StatusBadRequest, responses.BadArgumentsError)
	}

	account, err := controller.svc.Gateway.CreateAccount(c.Request().Context(), gateway.AccountRequest{
		Country: body.Country,
		Email:   body.Email,
	})
	if err != nil {
		return respondWithError(c, err)
	}
	return c.JSON(http.StatusOK, &AccountResponseBody{Success: true, Account: account})
}
