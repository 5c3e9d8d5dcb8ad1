package handler_test

import (
	"net/http"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/pod-grading-api/internal/dto"
)

const jwtSecret = "handler-secret"

func bearer(t *testing.T, userID, role string) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":  userID,
		"role": role,
		"exp":  time.Now().Add(time.Hour).Unix(),
	})
	signed, err := token.SignedString([]byte(jwtSecret))
	require.NoError(t, err)
	return "Bearer " + signed
}

func TestMutationsRequireTokenWhenAuthEnabled(t *testing.T) {
	env := newTestEnv(t, withJWTSecret(jwtSecret))

	resp, _ := env.request(t, http.MethodGet, "/api/v1/students", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	create := dto.StudentCreateRequest{FirstName: "Eve", LastName: "Stone", Homeroom: "7D"}
	resp, _ = env.request(t, http.MethodPost, "/api/v1/students", create)
	require.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)

	resp, _ = env.request(t, http.MethodPost, "/api/v1/students", create, fiber.HeaderAuthorization, bearer(t, "s-1", "student"))
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	resp, _ = env.request(t, http.MethodPost, "/api/v1/students", create, fiber.HeaderAuthorization, "Bearer not-a-token")
	require.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestDestructiveRoutesRequireTeacher(t *testing.T) {
	env := newTestEnv(t, withJWTSecret(jwtSecret))

	resp, _ := env.request(t, http.MethodPost, "/api/v1/reset/all", nil, fiber.HeaderAuthorization, bearer(t, "s-1", "student"))
	require.Equal(t, fiber.StatusForbidden, resp.StatusCode)

	resp, _ = env.request(t, http.MethodDelete, "/api/v1/students/id-001", nil, fiber.HeaderAuthorization, bearer(t, "s-1", "student"))
	require.Equal(t, fiber.StatusForbidden, resp.StatusCode)
	require.Len(t, env.store.State().Students, 4)

	resp, _ = env.request(t, http.MethodDelete, "/api/v1/students/id-001", nil, fiber.HeaderAuthorization, bearer(t, "t-1", "teacher"))
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	require.Len(t, env.store.State().Students, 3)
}

func TestJournalRecordsActor(t *testing.T) {
	env := newTestEnv(t, withJWTSecret(jwtSecret))

	resp, _ := env.request(t, http.MethodPut, "/api/v1/students/id-002/pod",
		dto.PodAssignRequest{Period: 1, PodNumber: 5},
		fiber.HeaderAuthorization, bearer(t, "t-9", "teacher"))
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp, _ = env.request(t, http.MethodGet, "/api/v1/activity", nil, fiber.HeaderAuthorization, bearer(t, "s-1", "student"))
	require.Equal(t, fiber.StatusForbidden, resp.StatusCode)

	resp, body := env.request(t, http.MethodGet, "/api/v1/activity?actor_id=t-9", nil, fiber.HeaderAuthorization, bearer(t, "t-9", "teacher"))
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var page dto.ActivityListResponse
	decodeData(t, body, &page)
	require.Len(t, page.Items, 1)
	entry := page.Items[0]
	require.Equal(t, "assign_pod", entry.Action)
	require.Equal(t, "student", entry.EntityType)
	require.Equal(t, "id-002", entry.EntityID)
	require.Equal(t, "teacher", entry.ActorRole)
	require.Equal(t, int64(1), entry.Revision)
	require.Equal(t, int64(1), page.Pagination.TotalItems)
}
