package handlers

import (
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/jimmiewester/skippy/internal/metrics"
	"github.com/jimmiewester/skippy/internal/models"
	"github.com/jimmiewester/skippy/internal/queue"
	"github.com/jimmiewester/skippy/internal/services"
)

// SMSHandler handles SMS ingestion and CRUD endpoints.
type SMSHandler struct {
	svc       *services.SMSService
	publisher queue.Publisher
	validate  *validator.Validate
	logger    *zap.Logger
}

func NewSMSHandler(svc *services.SMSService, publisher queue.Publisher, logger *zap.Logger) *SMSHandler {
	return &SMSHandler{
		svc:       svc,
		publisher: publisher,
		validate:  validator.New(),
		logger:    logger,
	}
}

// ReceiveSMS handles POST /elks/sms, the 46elks inbound webhook.
//
// The gateway interprets the webhook response body as an outbound message to
// send back, so the auto-reply text is returned synchronously as plain text.
// All internal failures collapse into a plain-text 500: the gateway only
// understands 200 vs failure.
func (h *SMSHandler) ReceiveSMS(c *fiber.Ctx) error {
	// The gateway's "from"/"to" form fields collide with reserved names
	// downstream; rename them on the way in.
	incoming := models.IncomingSMS{
		ID:         c.FormValue("id"),
		FromNumber: c.FormValue("from"),
		ToNumber:   c.FormValue("to"),
		Message:    c.FormValue("message"),
		Direction:  c.FormValue("direction"),
		Created:    c.FormValue("created"),
	}

	if err := h.validate.Struct(&incoming); err != nil {
		h.logger.Error("Invalid SMS webhook payload", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).SendString("Error processing SMS")
	}

	sms, err := h.svc.Store(c.Context(), incoming)
	if err != nil {
		h.logger.Error("Failed to store SMS",
			zap.String("sms_id", incoming.ID),
			zap.Error(err),
		)
		return c.Status(fiber.StatusInternalServerError).SendString("Error processing SMS")
	}

	metrics.IncReceived("sms")
	h.logger.Info("SMS stored",
		zap.String("sms_id", sms.ID),
		zap.String("from_number", sms.FromNumber),
	)

	task := models.Task{Type: models.TaskProcessSMS, RecordID: sms.ID}
	if err := h.publisher.EnqueueTask(c.Context(), task); err != nil {
		// The record is stored and can be re-triggered manually; the reply
		// still goes back to the gateway.
		h.logger.Error("Failed to enqueue SMS processing",
			zap.String("sms_id", sms.ID),
			zap.Error(err),
		)
	}

	return c.Status(fiber.StatusOK).SendString(h.svc.GenerateReply(sms.Message))
}

// ListSMS handles GET /sms
func (h *SMSHandler) ListSMS(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", services.DefaultListLimit)

	messages, err := h.svc.List(c.Context(), limit)
	if err != nil {
		h.logger.Error("Failed to list SMS", zap.Error(err))
		return recordErrorResponse(c, err, "SMS")
	}
	return c.JSON(messages)
}

// GetSMS handles GET /sms/:id
func (h *SMSHandler) GetSMS(c *fiber.Ctx) error {
	sms, err := h.svc.Get(c.Context(), c.Params("id"))
	if err != nil {
		return recordErrorResponse(c, err, "SMS")
	}
	return c.JSON(sms)
}

// ReplySMS handles POST /sms/:id/reply, queueing an outbound reply. The
// destination defaults to the original sender.
func (h *SMSHandler) ReplySMS(c *fiber.Ctx) error {
	var reply models.SMSReply
	if err := c.BodyParser(&reply); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}
	if err := h.validate.Struct(&reply); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error":   "Validation failed",
			"details": validationDetails(err),
		})
	}

	sms, err := h.svc.Get(c.Context(), c.Params("id"))
	if err != nil {
		return recordErrorResponse(c, err, "SMS")
	}

	toNumber := reply.ToNumber
	if toNumber == "" {
		toNumber = sms.FromNumber
	}

	task := models.Task{
		Type:     models.TaskSendReply,
		RecordID: sms.ID,
		ToNumber: toNumber,
		Message:  reply.Message,
	}
	if err := h.publisher.EnqueueTask(c.Context(), task); err != nil {
		h.logger.Error("Failed to enqueue SMS reply",
			zap.String("sms_id", sms.ID),
			zap.Error(err),
		)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to queue reply",
		})
	}

	return c.JSON(fiber.Map{"message": "queued"})
}

// DeleteSMS handles DELETE /sms/:id
func (h *SMSHandler) DeleteSMS(c *fiber.Ctx) error {
	id := c.Params("id")
	if err := h.svc.Delete(c.Context(), id); err != nil {
		return recordErrorResponse(c, err, "SMS")
	}
	return c.JSON(fiber.Map{"message": "SMS deleted"})
}
