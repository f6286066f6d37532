package routes

import (
	config "github.com/anjiri1684/excursion_booking/configs"
	"github.com/anjiri1684/excursion_booking/database"
	"github.com/anjiri1684/excursion_booking/websocket"
	"github.com/anjiri1684/excursion_booking/wizard"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/session"
)

// Deps is what the route groups need beyond the global database handle.
type Deps struct {
	Config   *config.Config
	Sessions *session.Store
	Wizard   *wizard.Controller
	Records  *database.Records
	Hub      *websocket.Hub
}

func (d Deps) Register(app *fiber.App) {
	PublicRoutes(app)
	AuthRoutes(app, d)
	BookingRoutes(app, d)
	ProfileRoutes(app, d)
	AdminRoutes(app, d)
}
