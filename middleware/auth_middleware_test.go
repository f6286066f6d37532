package middleware

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/anjiri1684/excursion_booking/models"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const secret = "test-secret"

func signed(t *testing.T, userID uuid.UUID, role string) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": userID.String(),
		"role":    role,
		"exp":     time.Now().Add(time.Hour).Unix(),
	})
	s, err := token.SignedString([]byte(secret))
	require.NoError(t, err)
	return s
}

func whoAmI(c *fiber.Ctx) error {
	id, ok := UserID(c)
	if !ok {
		return c.SendString("anonymous")
	}
	return c.SendString(id.String())
}

func body(t *testing.T, resp *http.Response) string {
	t.Helper()
	b, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return string(b)
}

func TestOptionalAuthLetsAnonymousThrough(t *testing.T) {
	app := fiber.New()
	app.Get("/", OptionalAuth(secret), whoAmI)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "anonymous", body(t, resp))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer not-a-token")
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, "anonymous", body(t, resp))
}

func TestOptionalAuthReadsCookie(t *testing.T) {
	app := fiber.New()
	app.Get("/", OptionalAuth(secret), whoAmI)

	id := uuid.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: "token", Value: signed(t, id, models.RoleCustomer)})
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, id.String(), body(t, resp))
}

func TestProtectedRejectsMissingToken(t *testing.T) {
	app := fiber.New()
	app.Get("/", Protected(secret), whoAmI)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+signed(t, uuid.New(), models.RoleCustomer)+"x")
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestAdminRequired(t *testing.T) {
	app := fiber.New()
	app.Get("/", Protected(secret), AdminRequired(), whoAmI)
	app.Get("/open", AdminRequired(), whoAmI)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+signed(t, uuid.New(), models.RoleCustomer))
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+signed(t, uuid.New(), models.RoleAdmin))
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/open", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)
}

func TestOptionalAuthReadsBearerHeader(t *testing.T) {
	app := fiber.New()
	app.Get("/", OptionalAuth(secret), whoAmI)

	id := uuid.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+signed(t, id, models.RoleCustomer))
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, id.String(), body(t, resp))
}

func TestProtectedAcceptsBearerHeader(t *testing.T) {
	app := fiber.New()
	app.Get("/", Protected(secret), whoAmI)

	id := uuid.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+signed(t, id, models.RoleCustomer))
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, id.String(), body(t, resp))
}
