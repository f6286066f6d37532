package main

import (
	"context"
	"log"
	"time"

	config "github.com/anjiri1684/excursion_booking/configs"
	"github.com/anjiri1684/excursion_booking/database"
	"github.com/anjiri1684/excursion_booking/events"
	"github.com/anjiri1684/excursion_booking/jobs"
	"github.com/anjiri1684/excursion_booking/models"
	"github.com/anjiri1684/excursion_booking/notifications"
	"github.com/anjiri1684/excursion_booking/payments"
	"github.com/anjiri1684/excursion_booking/routes"
	"github.com/anjiri1684/excursion_booking/services"
	"github.com/anjiri1684/excursion_booking/websocket"
	"github.com/anjiri1684/excursion_booking/wizard"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/session"
	"github.com/robfig/cron/v3"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("🔥 Failed to load configuration: %v", err)
	}
	if cfg.JWTSecret == "" {
		log.Fatal("🔥 JWT_SECRET must be set")
	}

	database.ConnectDB(cfg)
	database.Migrate()
	database.SeedAdmin(cfg)
	notifications.InitEmailService(cfg)

	var authorizer payments.Authorizer
	if cfg.PaymentGatewayConfigured() {
		authorizer = payments.NewGateway(cfg.PaymentGatewayURL, cfg.PaymentGatewayKey, cfg.PaymentGatewaySecret)
		log.Println("✅ Card payments go through the configured gateway")
	} else {
		authorizer = payments.NewSandbox()
		log.Println("⚠️ PAYMENT_GATEWAY_* not set, using the sandbox authorizer")
	}

	var publisher *events.Publisher
	if cfg.RabbitMQURL != "" {
		publisher, err = events.Dial(cfg.RabbitMQURL, 5, 3*time.Second)
		if err != nil {
			log.Printf("⚠️ Booking events disabled: %v", err)
			publisher = nil
		}
	}
	defer publisher.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	hub := websocket.NewHub()
	go hub.Run(ctx)

	receipts := services.NewReceiptService(database.DB, cfg)
	records := database.NewRecords(database.DB)

	controller := wizard.NewController(records, authorizer)
	controller.Currency = cfg.Currency
	controller.OnConfirmed = func(booking models.Booking, user models.User) {
		hub.BookingConfirmed(booking)
		go publisher.BookingConfirmed(booking, user)
		go notifications.SendBookingConfirmation(booking, user)
		go receipts.GenerateReceipt(booking.ID.String())
	}
	controller.OnDeclined = func(invoice models.Invoice, user models.User) {
		go publisher.PaymentDeclined(invoice)
		go notifications.SendPaymentDeclined(invoice, user)
	}

	c := cron.New()
	if _, err := c.AddFunc("*/15 * * * *", jobs.ExpireStaleInvoices(cfg.InvoiceTTL)); err != nil {
		log.Fatalf("🔥 Failed to schedule invoice expiry: %v", err)
	}
	if _, err := c.AddFunc("@hourly", jobs.ReportOrphanedPayments(cfg.InvoiceTTL)); err != nil {
		log.Fatalf("🔥 Failed to schedule orphaned payment report: %v", err)
	}
	c.Start()
	defer c.Stop()
	log.Println("✅ Invoice jobs scheduled successfully.")

	sessions := session.New(session.Config{
		Expiration:     cfg.SessionTTL,
		KeyLookup:      "cookie:booking_session",
		CookieHTTPOnly: true,
		CookieSameSite: "Lax",
	})

	app := fiber.New(fiber.Config{
		Prefork:       false,
		AppName:       "Excursion Booking",
		CaseSensitive: true,
		StrictRouting: true,
		ReadTimeout:   15 * time.Second,
		WriteTimeout:  15 * time.Second,
		IdleTimeout:   60 * time.Second,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}

			log.Printf("[ERROR] %v | Path: %s | Method: %s", err, c.Path(), c.Method())
			return c.Status(code).JSON(fiber.Map{
				"status":  "error",
				"code":    code,
				"message": err.Error(),
			})
		},
	})

	app.Use(cors.New(cors.Config{
		AllowOrigins:  "*",
		AllowHeaders:  "Origin, Content-Type, Accept, Authorization, Sec-WebSocket-Key, Sec-WebSocket-Version",
		AllowMethods:  "GET, POST, PUT, PATCH, DELETE, OPTIONS",
		ExposeHeaders: "Content-Length, Authorization, Location, X-Booking-Id",
		MaxAge:        86400,
	}))

	app.Use(recover.New())
	app.Use(logger.New(logger.Config{
		TimeFormat: "2006-01-02 15:04:05",
		Format:     "[${time}] ${status} - ${latency} ${method} ${path}\n",
	}))

	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "success",
			"message": "Welcome to Excursion Booking API",
		})
	})

	routes.Deps{
		Config:   cfg,
		Sessions: sessions,
		Wizard:   controller,
		Records:  records,
		Hub:      hub,
	}.Register(app)

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status": "ok",
		})
	})

	log.Printf("✅ Server is running on port %s", cfg.Port)
	if err := app.Listen(":" + cfg.Port); err != nil {
		log.Fatalf("🔥 Server failed to start: %v", err)
	}
}
