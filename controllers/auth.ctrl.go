package controllers

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/letsco/splithub/lib/responses"
	"github.com/letsco/splithub/lib/service"
)

// AuthController : AuthController struct
type AuthController struct {
	svc *service.SplithubService
}

func NewAuthController(svc *service.SplithubService) *AuthController {
	return &AuthController{
		svc: svc,
	}
}

type AuthRequestBody struct {
	ClientID     string `json:"clientId" validate:"required"`
	ClientSecret string `json:"clientSecret" validate:"required"`
}

type AuthResponseBody struct {
	Success bool   `json:"success"`
	Token   string `json:"token,omitempty"`
}

// Auth godoc
// @Summary      Authenticate
// @Description  Exchanges API client credentials for a bearer token. Wrong credentials answer 200 with success false.
// @Accept       json
// @Produce      json
// @Tags         Auth
// @Param        AuthRequestBody  body      AuthRequestBody  true  "Client credentials"
// @Success      200              {object}  AuthResponseBody
// @Failure      400              {object}  responses.ErrorResponse
// @Failure      500              {object}  responses.ErrorResponse
// @Router       /auth [post]
func (controller *AuthController) Auth(c echo.Context) error {
	var body AuthRequestBody

	if err := c.Bind(&body); err != nil {
		c.Logger().Errorf("Failed to load auth request body: %v", err)
		return c.JSON(http.StatusBadRequest, responses.BadArgumentsError)
	}
	if err := c.Validate(&body); err != nil {
		return c.JSON(http.StatusBadRequest, responses.BadArgumentsError)
	}

	token, err := controller.svc.GenerateToken(c.Request().Context(), body.ClientID, body.ClientSecret)
	if errors.Is(err, service.ErrBadAuth) {
		return c.JSON(http.StatusOK, &AuthResponseBody{Success: false})
	}
	if err != nil {
		return respondWithError(c, err)
	}

	return c.JSON(http.StatusOK, &AuthResponseBody{
		Success: true,
		Token:   token,
	})
}
