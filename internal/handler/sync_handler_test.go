package handler_test

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/pod-grading-api/internal/handler"
	"github.com/noah-isme/pod-grading-api/internal/models"
	"github.com/noah-isme/pod-grading-api/internal/state"
)

func startFiberServer(t *testing.T, app *fiber.App) string {
	t.Helper()

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	done := make(chan struct{})
	go func() {
		if err := app.Listener(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			t.Logf("fiber listener stopped: %v", err)
		}
		close(done)
	}()

	time.Sleep(50 * time.Millisecond)

	t.Cleanup(func() {
		_ = app.ShutdownWithTimeout(2 * time.Second)
		_ = listener.Close()
		select {
		case <-done:
		case <-time.After(100 * time.Millisecond):
		}
	})

	return "http://" + listener.Addr().String()
}

func TestSyncWebsocketPushesSnapshots(t *testing.T) {
	env := newTestEnv(t)
	baseURL := startFiberServer(t, env.app)

	dialer := websocket.Dialer{HandshakeTimeout: 3 * time.Second}
	conn, resp, err := dialer.Dial("ws"+strings.TrimPrefix(baseURL, "http")+"/api/v1/sync/ws", nil)
	require.NoError(t, err)
	if resp != nil {
		_ = resp.Body.Close()
	}
	defer conn.Close()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(3*time.Second)))

	var msg handler.SnapshotMessage
	require.NoError(t, conn.ReadJSON(&msg))
	require.Equal(t, "snapshot", msg.Type)
	require.Equal(t, int64(0), msg.Revision)
	require.Len(t, msg.State.Students, 4)

	env.store.Dispatch(context.Background(), state.AssignPod("id-001", 1, 3))

	require.NoError(t, conn.ReadJSON(&msg))
	require.Equal(t, int64(1), msg.Revision)
	require.Contains(t, msg.State.Pods, "1_3")
}

func TestSyncWebsocketRequiresUpgrade(t *testing.T) {
	env := newTestEnv(t)

	resp, _ := env.request(t, http.MethodGet, "/api/v1/sync/ws", nil)
	require.Equal(t, fiber.StatusUpgradeRequired, resp.StatusCode)
}

func TestSyncStreamSendsCurrentAndNextSnapshot(t *testing.T) {
	env := newTestEnv(t)
	baseURL := startFiberServer(t, env.app)

	client := &http.Client{Timeout: 5 * time.Second}
	resp, err := client.Get(baseURL + "/api/v1/sync/stream")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, "text/event-stream", resp.Header.Get(fiber.HeaderContentType))

	reader := bufio.NewReader(resp.Body)
	readSnapshot := func() handler.SnapshotMessage {
		t.Helper()
		for {
			line, err := reader.ReadString('\n')
			require.NoError(t, err)
			if strings.HasPrefix(line, "data:") {
				var msg handler.SnapshotMessage
				require.NoError(t, json.Unmarshal([]byte(strings.TrimSpace(strings.TrimPrefix(line, "data:"))), &msg))
				return msg
			}
		}
	}

	first := readSnapshot()
	require.Equal(t, int64(0), first.Revision)

	env.store.Dispatch(context.Background(), state.AddStudent(models.StudentInput{FirstName: "Eve", LastName: "Stone", Homeroom: "7D"}))

	second := readSnapshot()
	require.Equal(t, int64(1), second.Revision)
	require.Len(t, second.State.Students, 5)
}
