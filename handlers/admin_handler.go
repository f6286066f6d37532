package handlers

import (
	"strconv"

	"github.com/anjiri1684/excursion_booking/database"
	"github.com/anjiri1684/excursion_booking/models"
	"github.com/gofiber/fiber/v2"
)

type GalleryImageRequest struct {
	Caption  string `json:"caption" validate:"max=255"`
	ImageURL string `json:"image_url" validate:"required,url"`
}

type ExperienceVideoRequest struct {
	Title    string `json:"title" validate:"required,max=255"`
	VideoURL string `json:"video_url" validate:"required,url"`
}

func CreateGalleryImage(c *fiber.Ctx) error {
	var req GalleryImageRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	image := models.ExperienceGallery{Caption: req.Caption, ImageURL: req.ImageURL}
	if err := database.DB.Create(&image).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to save image"})
	}
	return c.Status(fiber.StatusCreated).JSON(image)
}

func CreateExperienceVideo(c *fiber.Ctx) error {
	var req ExperienceVideoRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	video := models.ExperienceVideo{Title: req.Title, VideoURL: req.VideoURL}
	if err := database.DB.Create(&video).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to save video"})
	}
	return c.Status(fiber.StatusCreated).JSON(video)
}

// ListAllBookings pages through every booking, newest first.
func ListAllBookings(c *fiber.Ctx) error {
	page, _ := strconv.Atoi(c.Query("page", "1"))
	if page < 1 {
		page = 1
	}
	limit, _ := strconv.Atoi(c.Query("limit", "20"))
	if limit < 1 || limit > 100 {
		limit = 20
	}

	var total int64
	if err := database.DB.Model(&models.Booking{}).Count(&total).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Database error"})
	}

	var bookings []models.Booking
	err := database.DB.
		Preload("User").
		Preload("Excursion.ExcursionType").
		Order("created_at desc").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&bookings).Error
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Database error"})
	}

	return c.JSON(fiber.Map{
		"data":  bookings,
		"page":  page,
		"limit": limit,
		"total": total,
	})
}

func ListContacts(c *fiber.Ctx) error {
	var contacts []models.Contact
	if err := database.DB.Order("created_at desc").Find(&contacts).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Database error"})
	}
	return c.JSON(contacts)
}
