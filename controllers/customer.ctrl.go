package controllers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/letsco/splithub/gateway"
	"github.com/letsco/splithub/lib/responses"
	"github.com/letsco/splithub/lib/service"
)

// CustomerController : payer lookups and creation on the gateway
type CustomerController struct {
	svc *service.SplithubService
}

func NewCustomerController(svc *service.SplithubService) *CustomerController {
	return &CustomerController{svc: svc}
}

type CreateCustomerRequestBody struct {
	Email       string `json:"email" validate:"omitempty,email"`
	Description string `json:"description"`
}

type CustomerResponseBody struct {
	Success  bool              `json:"success"`
	Customer *gateway.Customer `json:"customer"`
}

// GetCustomer godoc
// @Summary      Get a customer
// @Tags         Customer
// @Produce      json
// @Param        id   path      string  true  "Customer id"
// @Success      200  {object}  CustomerResponseBody
// @Failure      404
// @Failure      502  {object}  responses.ErrorResponse
// @Router       /customer/{id} [get]
// @Security     BearerAuth
func (controller *CustomerController) GetCustomer(c echo.Context) error {
	customer, err := controller.svc.Gateway.GetCustomer(c.Request().Context(), c.Param("id"))
	if err != nil {
		return respondWithError(c, err)
	}
	return c.JSON(http.StatusOK, &CustomerResponseBody{Success: true, Customer: customer})
}

// CreateCustomer godoc
// @Summary      Create a customer
// @Tags         Customer
// @Accept       json
// @Produce      json
// @Param        CreateCustomerRequestBody  body      CreateCustomerRequestBody  false  "Customer details"
// @Success      200                        {object}  CustomerResponseBody
// @Failure      400                        {object}  responses.ErrorResponse
// @Failure      502                        {object}  responses.ErrorResponse
// @Router       /customer [post]
// @Security     BearerAuth
func (controller *CustomerController) CreateCustomer(c echo.Context) error {
	var body CreateCustomerRequestBody
	if err := c.Bind(&body); err != nil {
		c.Logger().Errorf("Failed to load create customer request body: %v", err)
		return c.JSON(http.StatusBadRequest, responses.BadArgumentsError)
	}
	if err := c.Validate(&body); err != nil {
		return c.JSON(http.StatusBadRequest, responses.BadArgumentsError)
	}

	customer, err := controller.svc.Gateway.CreateCustomer(c.Request().Context(), gateway.CustomerRequest{
		Email:       body.Email,
		Description: body.Description,
	})
	if err != nil {
		return respondWithError(c, err)
	}
	return c.JSON(http.StatusOK, &CustomerResponseBody{Success: true, Customer: customer})
}
