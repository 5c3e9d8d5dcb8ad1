package handler_test

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/pod-grading-api/internal/dto"
	"github.com/noah-isme/pod-grading-api/internal/models"
)

const podCSV = "firstName,lastName,homeroom,podNumber,roles\n" +
	"Ana,Lopez,7C,2,Lead Researcher\n" +
	"Ben,Ray,7C,2,Script Writer; On-Camera Ambassador\n" +
	"Zed,Nobody,7C,1,\n"

func TestImportPodsFromRawBody(t *testing.T) {
	env := newTestEnv(t)

	resp, body := env.request(t, http.MethodPost, "/api/v1/import/pods", podCSV, fiber.HeaderContentType, "text/csv")
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var summary dto.ImportSummary
	decodeData(t, body, &summary)
	require.Equal(t, 3, summary.Rows)
	require.Equal(t, 2, summary.Matched)
	require.Equal(t, 1, summary.Skipped)
	require.Equal(t, []string{"Zed Nobody (7C)"}, summary.Unmatched)

	snapshot := env.store.State()
	require.ElementsMatch(t, []string{"id-001", "id-002"}, snapshot.Pods["1_2"].Members)
	student, _, ok := snapshot.FindStudent("id-002")
	require.True(t, ok)
	require.Equal(t, []string{"Script Writer", "On-Camera Ambassador"}, student.Roles)

	resp, body = env.request(t, http.MethodGet, "/api/v1/export/pods.csv", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	require.Contains(t, resp.Header.Get(fiber.HeaderContentDisposition), "pods.csv")
	lines := strings.Split(strings.TrimSpace(string(body.Data)), "\n")
	require.Len(t, lines, 3)
	require.Equal(t, "firstName,lastName,homeroom,period,podNumber,roles,sharedRoles", lines[0])
	require.Equal(t, "Ana,Lopez,7C,1,2,Lead Researcher,", lines[1])
}

func TestImportPodsFromMultipartUpload(t *testing.T) {
	env := newTestEnv(t)

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("file", "pods.csv")
	require.NoError(t, err)
	_, err = part.Write([]byte(podCSV))
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	resp, body := env.request(t, http.MethodPost, "/api/v1/import/pods", buf.Bytes(), fiber.HeaderContentType, writer.FormDataContentType())
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var summary dto.ImportSummary
	decodeData(t, body, &summary)
	require.Equal(t, 2, summary.Matched)
}

func TestImportPodsRejectsBadUploads(t *testing.T) {
	env := newTestEnv(t)

	resp, body := env.request(t, http.MethodPost, "/api/v1/import/pods", "firstName,lastName\nAna,Lopez\n", fiber.HeaderContentType, "text/csv")
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	require.Contains(t, body.Message, "homeroom")

	png := []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x06\x00\x00\x00")
	resp, _ = env.request(t, http.MethodPost, "/api/v1/import/pods", png, fiber.HeaderContentType, "application/octet-stream")
	require.Equal(t, fiber.StatusUnsupportedMediaType, resp.StatusCode)

	resp, _ = env.request(t, http.MethodPost, "/api/v1/import/pods", "firstName,lastName,homeroom,podNumber\n", fiber.HeaderContentType, "text/csv")
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	require.Equal(t, int64(0), env.store.State().Revision)
}

func TestExportGradesFiltersPeriod(t *testing.T) {
	env := newTestEnv(t)
	env.request(t, http.MethodPut, "/api/v1/students/id-001/pod", dto.PodAssignRequest{Period: 1, PodNumber: 1})
	env.request(t, http.MethodPut, "/api/v1/students/id-004/pod", dto.PodAssignRequest{Period: 8, PodNumber: 1})

	resp, body := env.request(t, http.MethodGet, "/api/v1/export/grades.csv?period=8", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	lines := strings.Split(strings.TrimSpace(string(body.Data)), "\n")
	require.Len(t, lines, 2)
	require.True(t, strings.HasPrefix(lines[1], "Dev,Shah,7A,8,1,"))
	require.True(t, strings.HasSuffix(lines[1], ",0"))
}

func TestBackupExportAndUpload(t *testing.T) {
	env := newTestEnv(t)

	resp, body := env.request(t, http.MethodGet, "/api/v1/export/backup.json", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var snapshot models.AppState
	require.NoError(t, json.Unmarshal(body.Data, &snapshot))
	require.Len(t, snapshot.Students, 4)

	resp, _ = env.request(t, http.MethodPost, "/api/v1/export/backup", nil)
	require.Equal(t, fiber.StatusServiceUnavailable, resp.StatusCode)

	uploader := &stubUploader{}
	env = newTestEnv(t, withUploader(uploader))
	resp, body = env.request(t, http.MethodPost, "/api/v1/export/backup", nil)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	var backup dto.BackupResponse
	decodeData(t, body, &backup)
	require.Len(t, uploader.names, 1)
	require.Equal(t, "https://cdn.example.com/backups/"+uploader.names[0], backup.URL)
	require.True(t, strings.HasPrefix(backup.Filename, "pod-grading-r0-"))
}
