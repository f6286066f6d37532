package routes

import (
	"github.com/anjiri1684/excursion_booking/handlers"
	"github.com/gofiber/fiber/v2"
)

func PublicRoutes(app *fiber.App) {
	api := app.Group("/api/v1")

	api.Get("/excursions", handlers.ListExcursionTypes)
	api.Get("/excursions/:id", handlers.GetExcursionType)
	api.Get("/employments", handlers.ListEmployments)
	api.Get("/experiences/videos", handlers.ListExperienceVideos)
	api.Get("/experiences/gallery", handlers.GetExperienceGallery)
	api.Get("/faqs", handlers.ListFaqs)
	api.Get("/affiliate", handlers.GetAffiliateInfo)
	api.Get("/regions", handlers.ListRegions)
	api.Post("/contacts", handlers.CreateContact)
}
