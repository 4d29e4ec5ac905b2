package routes

import (
	"github.com/gofiber/adaptor/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/jimmiewester/skippy/internal/handlers"
)

// SetupRoutes configures all application routes with dependencies
func SetupRoutes(
	app *fiber.App,
	health *handlers.HealthHandler,
	sms *handlers.SMSHandler,
	webhooks *handlers.WebhookHandler,
) {
	app.Get("/health", health.HealthCheck)
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	// 46elks inbound SMS webhook
	app.Post("/elks/sms", sms.ReceiveSMS)

	app.Get("/sms", sms.ListSMS)
	app.Get("/sms/:id", sms.GetSMS)
	app.Post("/sms/:id/reply", sms.ReplySMS)
	app.Delete("/sms/:id", sms.DeleteSMS)

	app.Post("/webhooks", webhooks.CreateWebhook)
	app.Get("/webhooks", webhooks.ListWebhooks)
	app.Get("/webhooks/:id", webhooks.GetWebhook)
	app.Put("/webhooks/:id", webhooks.UpdateWebhook)
	app.Delete("/webhooks/:id", webhooks.DeleteWebhook)
	app.Post("/webhooks/:id/process", webhooks.ProcessWebhook)
}
