package websocket

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"github.com/yigit/deptportal/internal/app/models"
)

func startHub(t *testing.T) (*Hub, *httptest.Server, map[string]*models.Caller) {
	t.Helper()
	hub := NewHub(zerolog.Nop())
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go hub.Run(ctx)

	callers := map[string]*models.Caller{
		"admin":    {ID: "admin", Role: models.RoleAdmin},
		"student1": {ID: "student1", Role: models.RoleStudent},
		"student2": {ID: "student2", Role: models.RoleStudent},
	}
	up := NewUpgrader(hub, nil)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = up.Serve(w, r, callers[r.URL.Query().Get("as")])
	}))
	t.Cleanup(srv.Close)
	return hub, srv, callers
}

func dial(t *testing.T, hub *Hub, srv *httptest.Server, as string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/?as=" + as
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	require.Eventually(t, func() bool { return hub.ClientCount(as) == 1 }, time.Second, 10*time.Millisecond)
	return conn
}

func readEnvelope(t *testing.T, conn *websocket.Conn) *Envelope {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(time.Second)))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)
	var env Envelope
	require.NoError(t, json.Unmarshal(data, &env))
	return &env
}

func expectSilence(t *testing.T, conn *websocket.Conn) {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(100*time.Millisecond)))
	_, _, err := conn.ReadMessage()
	require.Error(t, err)
}

func TestPublishToUser(t *testing.T) {
	hub, srv, _ := startHub(t)
	s1 := dial(t, hub, srv, "student1")
	s2 := dial(t, hub, srv, "student2")

	target := "student1"
	hub.Publish(&models.Notification{ID: "n1", Title: "Access approved", UserID: &target})

	env := readEnvelope(t, s1)
	require.Equal(t, "notification", env.Type)
	require.Equal(t, "n1", env.Notification.ID)
	expectSilence(t, s2)
}

func TestPublishToRole(t *testing.T) {
	hub, srv, _ := startHub(t)
	admin := dial(t, hub, srv, "admin")
	student := dial(t, hub, srv, "student1")

	role := models.RoleAdmin
	hub.Publish(&models.Notification{ID: "n2", Title: "Quiz access request", TargetRole: &role})

	require.Equal(t, "n2", readEnvelope(t, admin).Notification.ID)
	expectSilence(t, student)
}

func TestDisconnectUnregisters(t *testing.T) {
	hub, srv, _ := startHub(t)
	conn := dial(t, hub, srv, "student1")
	require.NoError(t, conn.Close())
	require.Eventually(t, func() bool { return hub.ClientCount("student1") == 0 }, time.Second, 10*time.Millisecond)
}

func TestAddressedTo(t *testing.T) {
	user := "u1"
	role := models.RoleStudent
	require.True(t, (&Envelope{Notification: &models.Notification{UserID: &user}}).addressedTo("u1", models.RoleAdmin))
	require.False(t, (&Envelope{Notification: &models.Notification{UserID: &user}}).addressedTo("u2", models.RoleStudent))
	require.True(t, (&Envelope{Notification: &models.Notification{TargetRole: &role}}).addressedTo("u2", models.RoleStudent))
	require.False(t, (&Envelope{}).addressedTo("u1", models.RoleStudent))
}
