package integration

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"ai_todo/internal/chat"
	"ai_todo/internal/client"
	"ai_todo/internal/config"
	"ai_todo/internal/db"
	"ai_todo/internal/domain"
	httpserver "ai_todo/internal/http"
	"ai_todo/internal/http/middleware"
	"ai_todo/internal/repository"
	"ai_todo/internal/ws"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"
)

// startServer runs the full HTTP stack over an in-memory SQLite store.
func startServer(t *testing.T, webhookURL string) *httptest.Server {
	t.Helper()
	gin.SetMode(gin.TestMode)

	conn, err := db.OpenSQLite("sqlite://:memory:")
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	store, err := repository.NewSQLiteTaskRepository(context.Background(), conn)
	require.NoError(t, err)

	cfg := &config.Config{
		AppVersion:         "e2e",
		ChatWebhookURL:     webhookURL,
		ChatWebhookTimeout: 2 * time.Second,
		APIRateLimit:       1000,
		APIRateWindow:      time.Minute,
		ChatRateLimit:      1000,
		ChatRateWindow:     time.Minute,
	}

	r := gin.New()
	r.Use(middleware.CORS(""), middleware.Metrics())
	hub := httpserver.RegisterRoutes(r, store, cfg)

	srv := httptest.NewServer(r)
	t.Cleanup(func() {
		hub.Close()
		srv.Close()
	})
	return srv
}

func dialFeed(t *testing.T, srv *httptest.Server, owner string) *websocket.Conn {
	t.Helper()
	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws?owner=" + owner
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	ev := readEvent(t, conn)
	require.Equal(t, ws.MsgReady, ev.Type)
	return conn
}

func readEvent(t *testing.T, conn *websocket.Conn) ws.Event {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(3*time.Second)))
	_, msg, err := conn.ReadMessage()
	require.NoError(t, err)

	var ev ws.Event
	require.NoError(t, json.Unmarshal(msg, &ev))
	return ev
}

func TestE2E_TasksAndChatOverHTTP(t *testing.T) {
	var (
		mu         sync.Mutex
		webhookSaw []string
	)
	webhook := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Message string `json:"message"`
		}
		_ = json.NewDecoder(r.Body).Decode(&body)
		mu.Lock()
		webhookSaw = append(webhookSaw, body.Message)
		mu.Unlock()
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"message":"Done, task completed."}`)
	}))
	defer webhook.Close()

	srv := startServer(t, webhook.URL)
	feed := dialFeed(t, srv, "alice")
	api := client.NewAPI(srv.URL)
	ctx := context.Background()

	walk, err := api.Create(ctx, "alice", "Walk dog", nil)
	require.NoError(t, err)
	ev := readEvent(t, feed)
	require.Equal(t, ws.MsgTasksChanged, ev.Type)
	require.Equal(t, ws.ReasonCreated, ev.Reason)
	require.Equal(t, walk.ID, ev.TaskID)

	_, err = api.Create(ctx, "alice", "  ", nil)
	require.True(t, domain.IsValidation(err))

	// other owners' changes never reach alice's feed
	_, err = api.Create(ctx, "bob", "Not alice's", nil)
	require.NoError(t, err)

	time.Sleep(2 * time.Millisecond)
	milk, err := api.Create(ctx, "alice", "Buy milk", nil)
	require.NoError(t, err)
	require.Equal(t, milk.ID, readEvent(t, feed).TaskID)

	tasks, err := api.List(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, tasks, 2)

	// the terminal resolves numbers locally, then relays through /chat
	relay := chat.NewRelay(api)
	text := chat.ResolveReferences("complete #2", tasks)
	out := relay.Send(ctx, "alice", text)
	require.True(t, out.OK())
	require.Equal(t, "Done, task completed.", out.Reply)
	require.True(t, out.Refresh)
	mu.Lock()
	require.Equal(t, []string{"complete task ID " + walk.ID}, webhookSaw)
	mu.Unlock()

	ev = readEvent(t, feed)
	require.Equal(t, ws.ReasonChat, ev.Reason)

	require.NoError(t, api.Delete(ctx, milk.ID))
	require.ErrorIs(t, api.Delete(ctx, milk.ID), domain.ErrNotFound)
	require.Equal(t, ws.ReasonDeleted, readEvent(t, feed).Reason)
}

func TestE2E_ChatWithoutWebhookFallsBack(t *testing.T) {
	srv := startServer(t, "")
	relay := chat.NewRelay(client.NewAPI(srv.URL))

	out := relay.Send(context.Background(), "alice", "hello")
	require.False(t, out.OK())
	require.False(t, out.Refresh)
	require.Equal(t, chat.FallbackReply, out.Reply)
}

func TestE2E_HealthAndFeedValidation(t *testing.T) {
	srv := startServer(t, "")

	resp, err := http.Get(srv.URL + "/health")
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = http.Get(srv.URL + "/ws")
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
}
