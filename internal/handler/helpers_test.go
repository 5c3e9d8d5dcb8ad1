package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/noah-isme/pod-grading-api/internal/config"
	"github.com/noah-isme/pod-grading-api/internal/dto"
	"github.com/noah-isme/pod-grading-api/internal/handler"
	"github.com/noah-isme/pod-grading-api/internal/middleware"
	"github.com/noah-isme/pod-grading-api/internal/models"
	"github.com/noah-isme/pod-grading-api/internal/repository"
	"github.com/noah-isme/pod-grading-api/internal/router"
	"github.com/noah-isme/pod-grading-api/internal/service"
	"github.com/noah-isme/pod-grading-api/internal/state"
)

const testPasscode = "letmein"

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

type stubUploader struct {
	names []string
}

func (u *stubUploader) Upload(_ context.Context, name string, reader io.Reader) (string, error) {
	if _, err := io.Copy(io.Discard, reader); err != nil {
		return "", err
	}
	u.names = append(u.names, name)
	return "https://cdn.example.com/backups/" + name, nil
}

type testEnv struct {
	app   *fiber.App
	store *state.Store
}

type envOption func(*config.Config, *service.BackupUploader)

func withJWTSecret(secret string) envOption {
	return func(cfg *config.Config, _ *service.BackupUploader) {
		cfg.JWTSecret = secret
	}
}

func withUploader(u service.BackupUploader) envOption {
	return func(_ *config.Config, target *service.BackupUploader) {
		*target = u
	}
}

func testReducer() *state.Reducer {
	seq := 0
	return &state.Reducer{
		NewID: func() string {
			seq++
			return fmt.Sprintf("id-%03d", seq)
		},
		Now: func() time.Time { return time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC) },
		Seed: func() []models.StudentInput {
			return []models.StudentInput{
				{FirstName: "Ana", LastName: "Lopez", Homeroom: "7C"},
				{FirstName: "Ben", LastName: "Ray", Homeroom: "7C"},
				{FirstName: "Cy", LastName: "Moe", Homeroom: "7C"},
				{FirstName: "Dev", LastName: "Shah", Homeroom: "7A"},
			}
		},
	}
}

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:handler_%s?mode=memory&cache=shared", name)), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.ActivityLog{}))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

// newTestEnv wires the full HTTP surface over an in-memory store seeded with
// four students: id-001..id-003 in 7C (period 1) and id-004 in 7A (period 8).
func newTestEnv(t *testing.T, opts ...envOption) *testEnv {
	t.Helper()

	cfg := config.Config{
		AppName:       "pod-grading-test",
		AppEnv:        "test",
		AdminPasscode: testPasscode,
		SyncKeepAlive: time.Second,
	}
	var uploader service.BackupUploader
	for _, opt := range opts {
		opt(&cfg, &uploader)
	}

	logger := zerolog.Nop()
	reducer := testReducer()
	store := state.NewStore(reducer.Initial(), reducer, nil, logger)
	validate := dto.NewValidator()

	activity := service.NewActivityService(repository.NewActivityLogRepository(openTestDB(t)), logger)
	store.OnDispatch(activity.Hook())

	rosterService := service.NewRosterService(store, validate, logger)
	app := fiber.New()
	middleware.Register(app, middleware.Config{Logger: &logger})
	router.Register(app, cfg, router.Dependencies{
		StateHandler:      handler.NewStateHandler(store, logger),
		StudentHandler:    handler.NewStudentHandler(rosterService, logger),
		PodHandler:        handler.NewPodHandler(rosterService, logger),
		AssessmentHandler: handler.NewAssessmentHandler(service.NewAssessmentService(store, validate, logger), logger),
		GradeHandler:      handler.NewGradeHandler(service.NewReportService(store, nil, "test", time.Minute, logger), logger),
		TransferHandler: handler.NewTransferHandler(
			service.NewTransferService(store, logger),
			service.NewBackupService(store, uploader, logger),
			logger,
		),
		SyncHandler:     handler.NewSyncHandler(store, cfg.SyncKeepAlive, logger),
		ActivityHandler: handler.NewActivityHandler(activity, logger),
		AdminHandler:    handler.NewAdminHandler(cfg.AdminPasscode, validate, logger),
	})

	return &testEnv{app: app, store: store}
}

func (e *testEnv) request(t *testing.T, method, path string, body interface{}, headers ...string) (*http.Response, envelope) {
	t.Helper()

	var reader io.Reader
	switch v := body.(type) {
	case nil:
	case []byte:
		reader = bytes.NewReader(v)
	case string:
		reader = strings.NewReader(v)
	default:
		payload, err := json.Marshal(v)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}

	resp, err := e.app.Test(req, -1)
	require.NoError(t, err)

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	_ = resp.Body.Close()

	var env envelope
	isEnvelope := strings.HasPrefix(resp.Header.Get(fiber.HeaderContentType), fiber.MIMEApplicationJSON) &&
		resp.Header.Get(fiber.HeaderContentDisposition) == ""
	if isEnvelope && len(raw) > 0 {
		require.NoError(t, json.Unmarshal(raw, &env), string(raw))
	} else {
		env.Data = raw
	}
	return resp, env
}

func decodeData(t *testing.T, env envelope, target interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(env.Data, target))
}
