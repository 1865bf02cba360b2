package responses

import (
	"net/http"

	"github.com/getsentry/sentry-go"
	sentryecho "github.com/getsentry/sentry-go/echo"
	"github.com/labstack/echo/v4"
)

type ErrorResponse struct {
	Error          bool   `json:"error"`
	Code           int    `json:"code"`
	Message        string `json:"message"`
	HttpStatusCode int    `json:"-"`
}

var GeneralServerError = ErrorResponse{
	Error:          true,
	Code:           6,
	Message:        "Something went wrong. Please try again later",
	HttpStatusCode: 500,
}

var BadArgumentsError = ErrorResponse{
	Error:          true,
	Code:           8,
	Message:        "Bad arguments",
	HttpStatusCode: 400,
}

var BadAuthError = ErrorResponse{
	Error:          true,
	Code:           1,
	Message:        "bad auth",
	HttpStatusCode: 401,
}

var GatewayError = ErrorResponse{
	Error:          true,
	Code:           9,
	Message:        "payment gateway error",
	HttpStatusCode: 502,
}

// WithMessage returns a copy of the response carrying a more specific message.
func (e ErrorResponse) WithMessage(message string) ErrorResponse {
	e.Message = message
	return e
}

func HTTPErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}
	c.Logger().Error(err)
	if hub := sentryecho.GetHubFromContext(c); hub != nil && isErrAllowedForSentry(err) {
		hub.WithScope(func(scope *sentry.Scope) {
			scope.SetExtra("ClientID", c.Get("ClientID"))
			hub.CaptureException(err)
		})
	}
	if he, ok := err.(*echo.HTTPError); ok {
		c.JSON(he.Code, he.Message)
		return
	}
	c.JSON(GeneralServerError.HttpStatusCode, GeneralServerError)
}

// bad auth and not-found errors are client noise
func isErrAllowedForSentry(err error) bool {
	he, ok := err.(*echo.HTTPError)
	if !ok {
		return true
	}
	if he.Code == http.StatusNotFound || he.Code == http.StatusMethodNotAllowed {
		return false
	}
	switch msg := he.Message.(type) {
	case echo.Map:
		if code, ok := msg["code"].(int); ok && code == BadAuthError.Code {
			return false
		}
	case ErrorResponse:
		if msg.Code == BadAuthError.Code {
			return false
		}
	}
	return true
}
