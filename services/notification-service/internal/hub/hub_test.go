package hub

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kiaorakahi/marketplace/pkg/auth"
	"github.com/kiaorakahi/marketplace/services/notification-service/internal/notifier"
)

func newServer(t *testing.T) (*Hub, string) {
	t.Helper()
	t.Setenv("JWT_SECRET", "hub-test-secret")
	gin.SetMode(gin.TestMode)
	h := New(nil)
	r := gin.New()
	h.Register(r)
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return h, "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
}

func connect(t *testing.T, h *Hub, url, sub, role string) *websocket.Conn {
	t.Helper()
	tok, err := auth.CreateAccessToken(sub, role, sub+"@example.com", sub, time.Minute)
	require.NoError(t, err)
	conn, _, err := websocket.DefaultDialer.Dial(url+"?token="+tok, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	require.Eventually(t, func() bool { return h.Connected(sub) > 0 }, time.Second, 10*time.Millisecond)
	return conn
}

func read(t *testing.T, conn *websocket.Conn) notifier.Message {
	t.Helper()
	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, b, err := conn.ReadMessage()
	require.NoError(t, err)
	var m notifier.Message
	require.NoError(t, json.Unmarshal(b, &m))
	return m
}

func TestServeRejectsMissingToken(t *testing.T) {
	_, url := newServer(t)
	_, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestNotifyReachesAddressedUser(t *testing.T) {
	h, url := newServer(t)
	fan := connect(t, h, url, "fan-1", auth.RoleFan)

	err := h.Notify(context.Background(), notifier.Message{
		Subject: "Booking accepted",
		Body:    "Order KOK-1 was accepted.",
		Key:     "booking.accepted",
		Ref:     "KOK-1",
		Users:   []string{"fan-1"},
	})
	require.NoError(t, err)

	m := read(t, fan)
	assert.Equal(t, "booking.accepted", m.Key)
	assert.Equal(t, "KOK-1", m.Ref)
	assert.Nil(t, m.Users)
}

func TestNotifyByRole(t *testing.T) {
	h, url := newServer(t)
	admin := connect(t, h, url, "admin-1", auth.RoleAdmin)
	fan := connect(t, h, url, "fan-2", auth.RoleFan)

	require.NoError(t, h.Notify(context.Background(), notifier.Message{
		Subject: "Support ticket opened",
		Key:     "support.created",
		Roles:   []string{auth.RoleAdmin},
	}))

	assert.Equal(t, "support.created", read(t, admin).Key)

	_ = fan.SetReadDeadline(time.Now().Add(150 * time.Millisecond))
	_, _, err := fan.ReadMessage()
	assert.Error(t, err)
}

func TestDisconnectUnregisters(t *testing.T) {
	h, url := newServer(t)
	conn := connect(t, h, url, "fan-3", auth.RoleFan)

	require.NoError(t, conn.Close())
	assert.Eventually(t, func() bool { return h.Connected("fan-3") == 0 }, 2*time.Second, 10*time.Millisecond)
}

func TestCheckOrigin(t *testing.T) {
	h := New([]string{"https://kiaorakahi.co.nz"})
	ok := httptest.NewRequest(http.MethodGet, "/ws", nil)
	ok.Header.Set("Origin", "https://kiaorakahi.co.nz")
	bad := httptest.NewRequest(http.MethodGet, "/ws", nil)
	bad.Header.Set("Origin", "https://evil.example")

	assert.True(t, h.upgrader.CheckOrigin(ok))
	assert.False(t, h.upgrader.CheckOrigin(bad))
}
