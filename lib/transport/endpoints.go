package transport

import (
	"time"

	"github.com/labstack/echo/v4"
	"github.com/letsco/splithub/controllers"
	"github.com/letsco/splithub/lib/middlewares"
	"github.com/letsco/splithub/lib/service"
)

func RegisterEndpoints(svc *service.SplithubService, e *echo.Echo, verifier controllers.WebhookVerifier, logMw echo.MiddlewareFunc) {
	strictRateLimitMiddleware := CreateRateLimitMiddleware(svc.Config.StrictRateLimit, svc.Config.BurstRateLimit)

	// Public endpoints
	e.POST("/auth", controllers.NewAuthController(svc).Auth, strictRateLimitMiddleware, logMw)
	e.POST("/webhook", controllers.NewWebhookController(svc, verifier).Webhook, logMw)
	e.GET("/health", controllers.NewHealthController().Check)

	// Secured endpoints which require a bearer token
	secured := e.Group("", middlewares.Authorized(svc.Config.JWTSecret), logMw)
	securedWithStrictRateLimit := e.Group("", middlewares.Authorized(svc.Config.JWTSecret), strictRateLimitMiddleware, logMw)

	// gateway lookups are cached, the gateway rate limits us
	lookupCache := CreateCacheClient(time.Duration(svc.Config.GatewayCacheTTL) * time.Second).Middleware()

	customerController := controllers.NewCustomerController(svc)
	secured.GET("/customer/:id", customerController.GetCustomer, lookupCache)
	securedWithStrictRateLimit.POST("/customer", customerController.CreateCustomer)

	connectController := controllers.NewConnectController(svc)
	secured.GET("/connect/:id", connectController.GetAccount, lookupCache)
	securedWithStrictRateLimit.POST("/connect", connectController.CreateAccount)

	paymentController := controllers.NewPaymentController(svc)
	secured.GET("/payment/:id", paymentController.GetPayment)
	securedWithStrictRateLimit.POST("/payment", paymentController.CreatePayment)
	secured.PUT("/payment/:id", paymentController.SettlePayment)
}
