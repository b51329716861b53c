package ws

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bolsas/internal/model"
	"bolsas/internal/service"
)

func issue(t *testing.T, auth *service.AuthService, role model.Role) string {
	t.Helper()
	token, err := auth.IssueToken(&model.User{ID: "user-" + string(role), Role: role, FullName: "Test"})
	require.NoError(t, err)
	return token
}

func newFeedServer(t *testing.T) (*Hub, *service.AuthService, *httptest.Server) {
	t.Helper()
	hub := NewHub()
	t.Cleanup(hub.Close)
	auth := service.NewAuthService(nil, "ws-secret", time.Hour)
	srv := httptest.NewServer(http.HandlerFunc(NewHandler(hub, auth, nil).ReviewWS))
	t.Cleanup(srv.Close)
	return hub, auth, srv
}

func dial(t *testing.T, srv *httptest.Server, token string) (*websocket.Conn, *http.Response, error) {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "?token=" + token
	return websocket.DefaultDialer.Dial(url, nil)
}

func readMessage(t *testing.T, conn *websocket.Conn) Message {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)
	var msg Message
	require.NoError(t, json.Unmarshal(data, &msg))
	return msg
}

func TestReviewFeedDeliversEvents(t *testing.T) {
	hub, auth, srv := newFeedServer(t)

	conn, _, err := dial(t, srv, issue(t, auth, model.RoleStaff))
	require.NoError(t, err)
	defer conn.Close()

	assert.Equal(t, MsgConnected, readMessage(t, conn).Type)
	require.Eventually(t, func() bool { return hub.ConnectedCount() == 1 }, time.Second, 10*time.Millisecond)

	hub.BroadcastToStaff(service.EventApplicationSubmitted, map[string]string{"applicationId": "app-1"})

	msg := readMessage(t, conn)
	assert.Equal(t, MessageType(service.EventApplicationSubmitted), msg.Type)
	assert.JSONEq(t, `{"applicationId":"app-1"}`, string(msg.Payload))
}

func TestReviewFeedRejectsStudentsAndBadTokens(t *testing.T) {
	_, auth, srv := newFeedServer(t)

	_, resp, err := dial(t, srv, issue(t, auth, model.RoleStudent))
	require.Error(t, err)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	_, resp, err = dial(t, srv, "garbage")
	require.Error(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	_, resp, err = dial(t, srv, "")
	require.Error(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestHubUnregister(t *testing.T) {
	hub := NewHub()
	defer hub.Close()

	conn := &Connection{UserID: "staff-1", Send: make(chan []byte, 1), Hub: hub}
	hub.Register(conn)
	require.Eventually(t, func() bool { return hub.ConnectedCount() == 1 }, time.Second, 5*time.Millisecond)

	hub.Unregister(conn)
	_, open := <-conn.Send
	assert.False(t, open, "send channel is closed on unregister")
	assert.Equal(t, 0, hub.ConnectedCount())
}

func TestHubCloseIsIdempotent(t *testing.T) {
	hub := NewHub()

	assert.NotPanics(t, func() {
		hub.Close()
		hub.Close()
	})
	// broadcasting after close must not block or panic
	assert.NotPanics(t, func() { hub.BroadcastToStaff("application_submitted", map[string]string{"id": "1"}) })
}
