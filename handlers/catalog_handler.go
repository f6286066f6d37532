package handlers

import (
	"errors"

	"github.com/anjiri1684/excursion_booking/database"
	"github.com/anjiri1684/excursion_booking/models"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

func ListExcursionTypes(c *fiber.Ctx) error {
	var excursionTypes []models.ExcursionType
	if err := database.DB.Order("id").Find(&excursionTypes).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Database error"})
	}
	return c.JSON(excursionTypes)
}

func GetExcursionType(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Excursion not found"})
	}

	var excursionType models.ExcursionType
	if err := database.DB.First(&excursionType, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Excursion not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Database error"})
	}
	return c.JSON(excursionType)
}

func ListEmployments(c *fiber.Ctx) error {
	var employments []models.Employment
	if err := database.DB.Order("created_at desc").Find(&employments).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Database error"})
	}
	return c.JSON(employments)
}

func ListExperienceVideos(c *fiber.Ctx) error {
	var videos []models.ExperienceVideo
	if err := database.DB.Order("id").Find(&videos).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Database error"})
	}
	return c.JSON(videos)
}

// GetExperienceGallery returns the gallery images together with the videos.
func GetExperienceGallery(c *fiber.Ctx) error {
	var images []models.ExperienceGallery
	if err := database.DB.Order("id").Find(&images).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Database error"})
	}
	var videos []models.ExperienceVideo
	if err := database.DB.Order("id").Find(&videos).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Database error"})
	}
	return c.JSON(fiber.Map{"images": images, "videos": videos})
}

func ListFaqs(c *fiber.Ctx) error {
	var categories []models.FaqCategory
	err := database.DB.
		Preload("Faqs", func(db *gorm.DB) *gorm.DB { return db.Order("id") }).
		Order("position").Order("id").
		Find(&categories).Error
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Database error"})
	}
	return c.JSON(categories)
}

func GetAffiliateInfo(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"template": "core/affiliate.html",
		"message":  "Partner accounts get partner pricing on every booking. Contact us to join.",
	})
}

type RegionResponse struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
}

// ListRegions returns the regions of ?country=<id>, or [] when no country is given.
func ListRegions(c *fiber.Ctx) error {
	regions := []RegionResponse{}

	countryID := c.Query("country")
	if countryID == "" {
		return c.JSON(regions)
	}

	var country models.Country
	if err := database.DB.Where("id = ?", countryID).First(&country).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Country not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Database error"})
	}

	err := database.DB.Model(&models.Region{}).
		Select("id", "name").
		Where("country_id = ?", country.ID).
		Order("id").
		Scan(&regions).Error
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Database error"})
	}
	return c.JSON(regions)
}
