package routes

import (
	"github.com/anjiri1684/excursion_booking/handlers"
	"github.com/anjiri1684/excursion_booking/middleware"
	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
)

func BookingRoutes(app *fiber.App, d Deps) {
	api := app.Group("/api/v1")

	bookingWizard := handlers.BookingWizard(d.Sessions, d.Wizard, d.Records)
	booking := api.Group("/booking", middleware.OptionalAuth(d.Config.JWTSecret))
	booking.Get("/:step?", bookingWizard)
	booking.Post("/:step?", bookingWizard)

	api.Get("/dashboard", middleware.Protected(d.Config.JWTSecret), handlers.GetDashboard(d.Records))

	api.Use("/ws", func(c *fiber.Ctx) error {
		if !websocket.IsWebSocketUpgrade(c) {
			return fiber.ErrUpgradeRequired
		}
		return c.Next()
	})
	api.Get("/ws/dashboard", websocket.New(handlers.ServeDashboardWs(d.Hub, d.Config.JWTSecret)))
}
