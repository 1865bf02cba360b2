package controllers

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/letsco/splithub/gateway"
	"github.com/letsco/splithub/lib/responses"
	"github.com/letsco/splithub/lib/service"
)

// respondWithError turns service and gateway errors into the api's error
// responses. Anything unexpected goes to the echo error handler.
func respondWithError(c echo.Context, err error) error {
	var validationErr *service.ValidationError
	var gatewayErr *gateway.Error
	switch {
	case errors.Is(err, service.ErrChargeNotFound), errors.Is(err, gateway.ErrNotFound):
		return c.NoContent(http.StatusNotFound)
	case errors.As(err, &validationErr):
		return c.JSON(http.StatusBadRequest, responses.BadArgumentsError.WithMessage(validationErr.Error()))
	case errors.Is(err, service.ErrBadAuth):
		return c.JSON(http.StatusUnauthorized, responses.BadAuthError)
	case errors.As(err, &gatewayErr):
		return echo.NewHTTPError(responses.GatewayError.HttpStatusCode, responses.GatewayError).SetInternal(err)
	}
	return err
}
