package routes

import (
	"github.com/anjiri1684/excursion_booking/handlers"
	"github.com/anjiri1684/excursion_booking/middleware"
	"github.com/gofiber/fiber/v2"
)

func AdminRoutes(app *fiber.App, d Deps) {
	api := app.Group("/api/v1")

	admin := api.Group("/admin", middleware.Protected(d.Config.JWTSecret), middleware.AdminRequired())

	admin.Get("/bookings", handlers.ListAllBookings)
	admin.Get("/contacts", handlers.ListContacts)

	admin.Get("/uploads/signature", handlers.GenerateUploadSignature(d.Config.CloudinaryURL))
	admin.Post("/gallery", handlers.CreateGalleryImage)
	admin.Post("/videos", handlers.CreateExperienceVideo)
}
