package handlers

import (
	"strings"

	"github.com/anjiri1684/excursion_booking/database"
	"github.com/anjiri1684/excursion_booking/models"
	"github.com/gofiber/fiber/v2"
)

type ContactRequest struct {
	Name        string `json:"name" form:"name" validate:"required,max=255"`
	Email       string `json:"email" form:"email" validate:"required,email"`
	Comment     string `json:"comment" form:"comment" validate:"required"`
	PhoneNumber string `json:"phone_number" form:"phone_number" validate:"omitempty,max=50"`
}

// clientIP prefers the first X-Forwarded-For entry over the connection address.
func clientIP(c *fiber.Ctx) string {
	if forwarded := c.Get(fiber.HeaderXForwardedFor); forwarded != "" {
		first := strings.TrimSpace(strings.SplitN(forwarded, ",", 2)[0])
		if first != "" {
			return first
		}
	}
	return c.Context().RemoteIP().String()
}

func CreateContact(c *fiber.Ctx) error {
	var req ContactRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	contact := models.Contact{
		Name:        req.Name,
		Email:       req.Email,
		Comment:     req.Comment,
		PhoneNumber: req.PhoneNumber,
		IP:          clientIP(c),
	}
	if err := database.DB.Create(&contact).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to save contact"})
	}

	return c.Status(fiber.StatusCreated).JSON(contact)
}
