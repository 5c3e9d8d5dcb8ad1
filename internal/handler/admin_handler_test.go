package handler_test

import (
	"net/http"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/pod-grading-api/internal/dto"
)

func TestAdminVerify(t *testing.T) {
	env := newTestEnv(t)

	resp, body := env.request(t, http.MethodPost, "/api/v1/admin/verify", dto.AdminVerifyRequest{Passcode: testPasscode})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var result dto.AdminVerifyResponse
	decodeData(t, body, &result)
	require.True(t, result.AdminView)

	resp, body = env.request(t, http.MethodPost, "/api/v1/admin/verify", dto.AdminVerifyRequest{Passcode: "guess"})
	require.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	require.False(t, body.Success)

	resp, _ = env.request(t, http.MethodPost, "/api/v1/admin/verify", dto.AdminVerifyRequest{})
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}
