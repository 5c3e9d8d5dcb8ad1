package service

import (
	"fmt"
	"strings"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/noah-isme/pod-grading-api/internal/models"
	"github.com/noah-isme/pod-grading-api/internal/state"
)

func testLogger() zerolog.Logger {
	return zerolog.Nop()
}

// openTestDB opens a private in-memory SQLite database; suffix keeps two
// databases of the same test apart.
func openTestDB(t *testing.T, suffix string, tables ...interface{}) *gorm.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name()) + suffix
	db, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", name)), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(tables...))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

func newTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	server, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(server.Close)

	client := redis.NewClient(&redis.Options{Addr: server.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return server, client
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

func newTestStore(t *testing.T) *state.Store {
	t.Helper()
	r := testReducer()
	return state.NewStore(r.Initial(), r, nil, testLogger())
}
