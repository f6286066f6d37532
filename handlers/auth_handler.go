package handlers

import (
	"errors"
	"log"
	"strings"
	"time"

	"github.com/anjiri1684/excursion_booking/database"
	"github.com/anjiri1684/excursion_booking/models"
	"github.com/anjiri1684/excursion_booking/notifications"
	"github.com/anjiri1684/excursion_booking/wizard"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/session"
	"github.com/golang-jwt/jwt/v4"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var validate = validator.New()

const tokenTTL = 72 * time.Hour

type RegisterRequest struct {
	FullName string `json:"full_name" form:"full_name" validate:"required,min=2"`
	Email    string `json:"email" form:"email" validate:"required,email"`
	Password string `json:"password" form:"password" validate:"required,min=8"`
}

type LoginRequest struct {
	Email    string `json:"email" form:"email" validate:"required,email"`
	Password string `json:"password" form:"password" validate:"required"`
}

type UserResponse struct {
	ID        string    `json:"id"`
	FullName  string    `json:"full_name"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	IsPartner bool      `json:"is_partner"`
	CreatedAt time.Time `json:"created_at"`
}

type AuthResponse struct {
	Token  string       `json:"token"`
	User   UserResponse `json:"user"`
	Resume string       `json:"resume,omitempty"`
}

func toUserResponse(user models.User) UserResponse {
	return UserResponse{
		ID:        user.ID.String(),
		FullName:  user.FullName,
		Email:     user.Email,
		Role:      user.Role,
		IsPartner: user.IsPartner,
		CreatedAt: user.CreatedAt,
	}
}

func issueToken(user models.User, secret string) (string, error) {
	claims := jwt.MapClaims{
		"user_id": user.ID.String(),
		"role":    user.Role,
		"exp":     time.Now().Add(tokenTTL).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// resumeLocation consumes the booking step remembered before sign-in.
func resumeLocation(c *fiber.Ctx, store *session.Store) string {
	sess, err := store.Get(c)
	if err != nil {
		log.Printf("⚠️ Could not load session for resume: %v", err)
		return ""
	}
	step, ok := sess.Get(wizard.ResumeStepKey).(string)
	if !ok || step == "" {
		return ""
	}
	sess.Delete(wizard.ResumeStepKey)
	if err := sess.Save(); err != nil {
		log.Printf("⚠️ Could not save session after resume: %v", err)
	}
	return "/api/v1/booking/" + step
}

func authenticated(c *fiber.Ctx, status int, user models.User, secret string, store *session.Store) error {
	t, err := issueToken(user, secret)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to create token"})
	}

	c.Cookie(&fiber.Cookie{
		Name:     "token",
		Value:    t,
		Expires:  time.Now().Add(tokenTTL),
		HTTPOnly: true,
		SameSite: "Lax",
	})

	return c.Status(status).JSON(AuthResponse{
		Token:  t,
		User:   toUserResponse(user),
		Resume: resumeLocation(c, store),
	})
}

// SignupForm is where anonymous visitors land when they try to pay.
func SignupForm(store *session.Store) fiber.Handler {
	return func(c *fiber.Ctx) error {
		resume := ""
		if sess, err := store.Get(c); err == nil {
			resume, _ = sess.Get(wizard.ResumeStepKey).(string)
		}
		return c.JSON(fiber.Map{
			"message":     "Create an account or sign in to continue",
			"fields":      []string{"full_name", "email", "password"},
			"resume_step": resume,
		})
	}
}

func RegisterUser(secret string, store *session.Store) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req RegisterRequest
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
		}
		req.Email = strings.ToLower(strings.TrimSpace(req.Email))
		if err := validate.Struct(req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
		}

		hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to hash password"})
		}

		newUser := models.User{
			FullName: req.FullName,
			Email:    req.Email,
			Password: string(hashedPassword),
			Role:     models.RoleCustomer,
		}

		var count int64
		if err := database.DB.Model(&models.User{}).Where("email = ?", req.Email).Count(&count).Error; err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to create user"})
		}
		if count > 0 {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "Email already exists"})
		}

		if err := database.DB.Create(&newUser).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "Email already exists"})
			}
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to create user"})
		}

		go notifications.SendEmail(newUser.FullName, newUser.Email, "Welcome!", "<h1>Welcome!</h1><p>Thank you for registering.</p>")

		return authenticated(c, fiber.StatusCreated, newUser, secret, store)
	}
}

func LoginUser(secret string, store *session.Store) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req LoginRequest
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
		}
		req.Email = strings.ToLower(strings.TrimSpace(req.Email))
		if err := validate.Struct(req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
		}

		var user models.User
		if err := database.DB.Where("email = ? AND is_active = ?", req.Email, true).First(&user).Error; err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid email or password"})
		}

		if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid email or password"})
		}

		return authenticated(c, fiber.StatusOK, user, secret, store)
	}
}
