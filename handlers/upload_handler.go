package handlers

import (
	"net/url"
	"strconv"
	"time"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"github.com/gofiber/fiber/v2"
)

const galleryFolder = "excursion_gallery"

// GenerateUploadSignature signs a direct browser upload to the gallery folder.
func GenerateUploadSignature(cloudinaryURL string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if cloudinaryURL == "" {
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"error": "Uploads are not configured"})
		}

		cld, err := cloudinary.NewFromURL(cloudinaryURL)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to initialize Cloudinary"})
		}

		parsedURL, err := url.Parse(cloudinaryURL)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to parse Cloudinary URL"})
		}
		secret, _ := parsedURL.User.Password()

		paramsToSign, err := api.StructToParams(uploader.UploadParams{
			Folder: galleryFolder,
		})
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to prepare signature params"})
		}

		timestamp := time.Now().Unix()
		paramsToSign.Set("timestamp", strconv.FormatInt(timestamp, 10))

		signature, err := api.SignParameters(paramsToSign, secret)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to sign upload params"})
		}

		return c.JSON(fiber.Map{
			"signature":  signature,
			"timestamp":  timestamp,
			"api_key":    cld.Config.Cloud.APIKey,
			"cloud_name": cld.Config.Cloud.CloudName,
			"folder":     galleryFolder,
		})
	}
}
