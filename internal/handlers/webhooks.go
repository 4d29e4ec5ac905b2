package handlers

import (
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/jimmiewester/skippy/internal/metrics"
	"github.com/jimmiewester/skippy/internal/models"
	"github.com/jimmiewester/skippy/internal/queue"
	"github.com/jimmiewester/skippy/internal/services"
	"github.com/jimmiewester/skippy/internal/utils"
)

// WebhookHandler handles generic webhook CRUD endpoints.
type WebhookHandler struct {
	svc       *services.WebhookService
	publisher queue.Publisher
	validate  *validator.Validate
	secret    string
	logger    *zap.Logger
}

// NewWebhookHandler creates the handler. A non-empty secret enables HMAC
// signature verification on ingestion.
func NewWebhookHandler(svc *services.WebhookService, publisher queue.Publisher, secret string, logger *zap.Logger) *WebhookHandler {
	return &WebhookHandler{
		svc:       svc,
		publisher: publisher,
		validate:  validator.New(),
		secret:    secret,
		logger:    logger,
	}
}

// CreateWebhook handles POST /webhooks: persists the record and enqueues
// asynchronous processing.
func (h *WebhookHandler) CreateWebhook(c *fiber.Ctx) error {
	if h.secret != "" {
		signature := c.Get("X-Skippy-Signature")
		if !utils.VerifyHMACSignature(c.Body(), signature, h.secret) {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Invalid signature",
			})
		}
	}

	var input models.WebhookCreate
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}
	if err := h.validate.Struct(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error":   "Validation failed",
			"details": validationDetails(err),
		})
	}

	webhook, err := h.svc.Create(c.Context(), input)
	if err != nil {
		h.logger.Error("Failed to create webhook", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to store webhook",
		})
	}

	metrics.IncReceived("webhook")
	h.logger.Info("Webhook stored",
		zap.String("webhook_id", webhook.ID),
		zap.String("event_type", webhook.EventType),
	)

	task := models.Task{Type: models.TaskProcessWebhook, RecordID: webhook.ID}
	if err := h.publisher.EnqueueTask(c.Context(), task); err != nil {
		// Stored but not queued; POST /webhooks/{id}/process re-triggers.
		h.logger.Error("Failed to enqueue webhook processing",
			zap.String("webhook_id", webhook.ID),
			zap.Error(err),
		)
	}

	return c.JSON(webhook)
}

// ListWebhooks handles GET /webhooks
func (h *WebhookHandler) ListWebhooks(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", services.DefaultListLimit)

	webhooks, err := h.svc.List(c.Context(), limit)
	if err != nil {
		h.logger.Error("Failed to list webhooks", zap.Error(err))
		return recordErrorResponse(c, err, "Webhook")
	}
	return c.JSON(webhooks)
}

// GetWebhook handles GET /webhooks/:id
func (h *WebhookHandler) GetWebhook(c *fiber.Ctx) error {
	webhook, err := h.svc.Get(c.Context(), c.Params("id"))
	if err != nil {
		return recordErrorResponse(c, err, "Webhook")
	}
	return c.JSON(webhook)
}

// UpdateWebhook handles PUT /webhooks/:id: merges only the provided fields.
func (h *WebhookHandler) UpdateWebhook(c *fiber.Ctx) error {
	var update models.WebhookUpdate
	if err := c.BodyParser(&update); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	webhook, err := h.svc.Update(c.Context(), c.Params("id"), update)
	if err != nil {
		return recordErrorResponse(c, err, "Webhook")
	}
	return c.JSON(webhook)
}

// DeleteWebhook handles DELETE /webhooks/:id
func (h *WebhookHandler) DeleteWebhook(c *fiber.Ctx) error {
	if err := h.svc.Delete(c.Context(), c.Params("id")); err != nil {
		return recordErrorResponse(c, err, "Webhook")
	}
	return c.JSON(fiber.Map{"message": "Webhook deleted"})
}

// ProcessWebhook handles POST /webhooks/:id/process, a manual re-trigger.
func (h *WebhookHandler) ProcessWebhook(c *fiber.Ctx) error {
	webhook, err := h.svc.Get(c.Context(), c.Params("id"))
	if err != nil {
		return recordErrorResponse(c, err, "Webhook")
	}

	task := models.Task{Type: models.TaskProcessWebhook, RecordID: webhook.ID}
	if err := h.publisher.EnqueueTask(c.Context(), task); err != nil {
		h.logger.Error("Failed to enqueue webhook processing",
			zap.String("webhook_id", webhook.ID),
			zap.Error(err),
		)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to queue processing",
		})
	}

	return c.JSON(fiber.Map{"message": "queued"})
}
