package routes

import (
	"github.com/anjiri1684/excursion_booking/handlers"
	"github.com/gofiber/fiber/v2"
)

func AuthRoutes(app *fiber.App, d Deps) {
	api := app.Group("/api/v1")

	auth := api.Group("/auth")
	auth.Get("/signup", handlers.SignupForm(d.Sessions))
	auth.Post("/signup", handlers.RegisterUser(d.Config.JWTSecret, d.Sessions))
	auth.Post("/login", handlers.LoginUser(d.Config.JWTSecret, d.Sessions))
}
