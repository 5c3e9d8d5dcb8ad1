package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/pod-grading-api/internal/service"
)

const testSecret = "test-secret"

func signToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(testSecret))
	require.NoError(t, err)
	return signed
}

func actorEcho(c *fiber.Ctx) error {
	actor, _ := service.ActorFromContext(c.UserContext())
	return c.JSON(fiber.Map{"id": actor.ID, "role": actor.Role})
}

func TestJWTProtectedAttachesActor(t *testing.T) {
	app := fiber.New()
	app.Get("/", JWTProtected(testSecret), actorEcho)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, jwt.MapClaims{
		"sub":   "teacher-7",
		"roles": []string{"Teacher"},
		"exp":   time.Now().Add(time.Hour).Unix(),
	}))
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var body map[string]string
	require.NoError(t, decodeJSON(resp, &body))
	require.Equal(t, "teacher-7", body["id"])
	require.Equal(t, "teacher", body["role"])
}

func TestJWTProtectedRejectsMissingAndExpiredTokens(t *testing.T) {
	app := fiber.New()
	app.Get("/", JWTProtected(testSecret), actorEcho)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, jwt.MapClaims{
		"sub": "teacher-7",
		"exp": time.Now().Add(-time.Hour).Unix(),
	}))
	resp, err = app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestJWTOptionalAllowsAnonymous(t *testing.T) {
	app := fiber.New()
	app.Get("/", JWTOptional(testSecret), actorEcho)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer not-a-token")
	resp, err = app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestNormalizeUserID(t *testing.T) {
	require.Equal(t, "42", normalizeUserID(float64(42)))
	require.Equal(t, "abc", normalizeUserID(" abc "))
	require.Empty(t, normalizeUserID(float64(-1)))
	require.Empty(t, normalizeUserID(true))
}
