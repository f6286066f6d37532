package routes

import (
	"github.com/anjiri1684/excursion_booking/handlers"
	"github.com/anjiri1684/excursion_booking/middleware"
	"github.com/gofiber/fiber/v2"
)

func ProfileRoutes(app *fiber.App, d Deps) {
	api := app.Group("/api/v1")

	profile := api.Group("/profile/me", middleware.Protected(d.Config.JWTSecret))
	profile.Get("", handlers.GetProfile)
	profile.Put("", handlers.UpdateProfile)
	profile.Delete("/cards/:id", handlers.DeleteCreditCard)
}
