package middleware

import (
	"strings"

	"github.com/anjiri1684/excursion_booking/models"
	"github.com/gofiber/fiber/v2"
	jwtware "github.com/gofiber/jwt/v3"
	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
)

// A custom TokenLookup leaves the scheme empty, so it is set explicitly
// for the header extractor. The cookie holds the bare token.
const (
	tokenLookup = "header:Authorization,cookie:token"
	authScheme  = "Bearer"
)

func Protected(secret string) fiber.Handler {
	return jwtware.New(jwtware.Config{
		SigningKey:   []byte(secret),
		TokenLookup:  tokenLookup,
		AuthScheme:   authScheme,
		ErrorHandler: jwtError,
	})
}

// OptionalAuth decodes a token when one is sent and lets anonymous visitors through.
func OptionalAuth(secret string) fiber.Handler {
	return jwtware.New(jwtware.Config{
		SigningKey:  []byte(secret),
		TokenLookup: tokenLookup,
		AuthScheme:  authScheme,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			c.Locals("user", nil)
			return c.Next()
		},
	})
}

func jwtError(c *fiber.Ctx, err error) error {
	if strings.EqualFold(err.Error(), "Missing or malformed JWT") {
		return c.Status(fiber.StatusBadRequest).
			JSON(fiber.Map{"status": "error", "message": "Missing or malformed JWT", "data": nil})
	}
	return c.Status(fiber.StatusUnauthorized).
		JSON(fiber.Map{"status": "error", "message": "Invalid or expired JWT", "data": nil})
}

func claims(c *fiber.Ctx) (jwt.MapClaims, bool) {
	token, ok := c.Locals("user").(*jwt.Token)
	if !ok || token == nil || !token.Valid {
		return nil, false
	}
	mapClaims, ok := token.Claims.(jwt.MapClaims)
	return mapClaims, ok
}

// UserID returns the authenticated user's id, if any.
func UserID(c *fiber.Ctx) (uuid.UUID, bool) {
	mapClaims, ok := claims(c)
	if !ok {
		return uuid.Nil, false
	}
	raw, ok := mapClaims["user_id"].(string)
	if !ok {
		return uuid.Nil, false
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}

func AdminRequired() fiber.Handler {
	return func(c *fiber.Ctx) error {
		mapClaims, ok := claims(c)
		role, _ := mapClaims["role"].(string)

		if !ok || role != models.RoleAdmin {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"error": "Forbidden: Admin access required",
			})
		}
		return c.Next()
	}
}
