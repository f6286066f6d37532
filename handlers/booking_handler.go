package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/url"
	"strconv"

	"github.com/anjiri1684/excursion_booking/database"
	"github.com/anjiri1684/excursion_booking/middleware"
	"github.com/anjiri1684/excursion_booking/models"
	"github.com/anjiri1684/excursion_booking/wizard"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/session"
)

type StepResponse struct {
	Step     string                 `json:"step"`
	Template string                 `json:"template"`
	Values   url.Values             `json:"values"`
	Errors   map[string]string      `json:"errors,omitempty"`
	Context  map[string]interface{} `json:"context"`
}

// BookingWizard serves GET and POST for /booking/:step?.
func BookingWizard(store *session.Store, controller *wizard.Controller, records *database.Records) fiber.Handler {
	return func(c *fiber.Ctx) error {
		sess, err := store.Get(c)
		if err != nil {
			log.Printf("🔥 Failed to load session: %v", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Session unavailable"})
		}

		user, err := currentUser(c, records)
		if err != nil {
			log.Printf("🔥 Failed to load current user: %v", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to load user"})
		}

		fields, err := formValues(c)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse form"})
		}

		query, err := url.ParseQuery(string(c.Request().URI().QueryString()))
		if err != nil {
			log.Printf("⚠️ Malformed booking query %q, keeping the readable pairs: %v", c.Request().URI().QueryString(), err)
		}

		result, err := controller.Handle(c.UserContext(), wizard.Request{
			Step:    c.Params("step"),
			Method:  c.Method(),
			Fields:  fields,
			Query:   query,
			User:    user,
			Session: sess,
		})
		if saveErr := sess.Save(); saveErr != nil {
			log.Printf("🔥 Failed to save session: %v", saveErr)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Session unavailable"})
		}

		if errors.Is(err, wizard.ErrUnknownStep) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Booking step not found"})
		}
		if err != nil {
			log.Printf("🔥 Booking wizard failed on step %q: %v", c.Params("step"), err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to process booking"})
		}

		switch result.Outcome {
		case wizard.OutcomeRedirect:
			return c.Redirect(result.Location, fiber.StatusSeeOther)
		case wizard.OutcomeComplete:
			c.Set("X-Booking-Id", result.BookingID.String())
			return c.Redirect(result.Location, fiber.StatusSeeOther)
		}

		status := fiber.StatusOK
		if len(result.Errors) > 0 {
			status = fiber.StatusUnprocessableEntity
		}
		return c.Status(status).JSON(StepResponse{
			Step:     result.Step,
			Template: result.Template,
			Values:   result.Values,
			Errors:   result.Errors,
			Context:  result.Context,
		})
	}
}

// currentUser resolves the token's user. A token for a missing or inactive
// user counts as anonymous.
func currentUser(c *fiber.Ctx, records *database.Records) (*models.User, error) {
	id, ok := middleware.UserID(c)
	if !ok {
		return nil, nil
	}
	user, err := records.User(c.UserContext(), id)
	if errors.Is(err, database.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// formValues reads urlencoded, multipart or JSON bodies into url.Values.
func formValues(c *fiber.Ctx) (url.Values, error) {
	if c.Method() != fiber.MethodPost || len(c.Body()) == 0 {
		return url.Values{}, nil
	}

	if c.Is("json") {
		var body map[string]interface{}
		if err := json.Unmarshal(c.Body(), &body); err != nil {
			return nil, err
		}
		values := url.Values{}
		for key, raw := range body {
			switch v := raw.(type) {
			case []interface{}:
				for _, item := range v {
					values.Add(key, scalar(item))
				}
			default:
				values.Set(key, scalar(v))
			}
		}
		return values, nil
	}

	if form, err := c.MultipartForm(); err == nil {
		return url.Values(form.Value), nil
	}
	return url.ParseQuery(string(c.Body()))
}

func scalar(v interface{}) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case bool:
		return strconv.FormatBool(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	}
	return fmt.Sprint(v)
}

// GetDashboard lists the signed-in user's bookings and saved cards.
func GetDashboard(records *database.Records) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, ok := middleware.UserID(c)
		if !ok {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Unauthorized"})
		}

		var bookings []models.Booking
		err := database.DB.
			Preload("Excursion.ExcursionType").
			Preload("Cruises").
			Where("user_id = ?", userID).
			Order("created_at desc").
			Find(&bookings).Error
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to retrieve bookings"})
		}

		cards, err := records.CreditCards(c.UserContext(), userID)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to retrieve cards"})
		}

		return c.JSON(fiber.Map{"bookings": bookings, "cards": cards})
	}
}
