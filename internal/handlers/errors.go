package handlers

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/jimmiewester/skippy/internal/store"
)

// recordErrorResponse maps store-layer errors onto the HTTP taxonomy:
// missing records are 404, everything else (including an unreachable store)
// is 500.
func recordErrorResponse(c *fiber.Ctx, err error, resource string) error {
	if errors.Is(err, store.ErrNotFound) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": resource + " not found",
		})
	}
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"error": "Internal server error",
	})
}

// validationDetails renders field-level detail for a validator error.
func validationDetails(err error) []string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []string{err.Error()}
	}

	details := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		details = append(details, fmt.Sprintf("field %s failed on %s", fe.Field(), fe.Tag()))
	}
	return details
}
