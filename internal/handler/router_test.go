package handler

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

	"eventchat/internal/app/chat"
	"eventchat/internal/app/history"
	"eventchat/internal/configs"
	"eventchat/internal/pkg/errs"
)

type nopRecorder struct{}

func (nopRecorder) Record(history.Message) error { return nil }

func newTestDeps(env string, origins ...string) *AppDeps {
	return &AppDeps{
		Gateway: chat.NewGateway(chat.NewRegistry(16), chat.NewDirectory(), nopRecorder{}),
		Config:  &configs.AppConfig{Environment: env, AllowedOrigins: origins},
	}
}

type envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func getJSON(t *testing.T, h http.Handler, path string) (int, envelope) {
	t.Helper()

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))

	var body envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return rec.Code, body
}

func TestHealth(t *testing.T) {
	deps := newTestDeps("development")
	c := deps.Gateway.Connect()
	deps.Gateway.HandleFrame(c, []byte(`{"event":"join","data":{"room":"r","username":"A"}}`))

	status, body := getJSON(t, Router(deps), "/health")
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, 0, body.Code)

	var data struct {
		Status      string `json:"status"`
		Connections int    `json:"connections"`
		Rooms       int    `json:"rooms"`
	}
	require.NoError(t, json.Unmarshal(body.Data, &data))
	assert.Equal(t, "ok", data.Status)
	assert.Equal(t, 1, data.Connections)
	assert.Equal(t, 1, data.Rooms)
}

func TestListRooms(t *testing.T) {
	deps := newTestDeps("development")
	for _, join := range []string{
		`{"event":"join","data":{"room":"b","username":"A"}}`,
		`{"event":"join","data":{"room":"a","username":"B"}}`,
		`{"event":"join","data":{"room":"b","username":"C"}}`,
	} {
		deps.Gateway.HandleFrame(deps.Gateway.Connect(), []byte(join))
	}

	status, body := getJSON(t, Router(deps), "/api/rooms")
	assert.Equal(t, http.StatusOK, status)

	var data struct {
		Rooms []chat.RoomStat `json:"rooms"`
	}
	require.NoError(t, json.Unmarshal(body.Data, &data))
	assert.Equal(t, []chat.RoomStat{{Room: "a", Members: 1}, {Room: "b", Members: 2}}, data.Rooms)
}

func TestNotFound(t *testing.T) {
	status, body := getJSON(t, Router(newTestDeps("development")), "/nope")
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, errs.ErrNotFound, body.Code)
}

func wsURL(srv *httptest.Server) string {
	return "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
}

func TestWebSocketRelay(t *testing.T) {
	deps := newTestDeps("development")
	srv := httptest.NewServer(Router(deps))
	t.Cleanup(srv.Close)

	a, _, err := websocket.DefaultDialer.Dial(wsURL(srv), nil)
	require.NoError(t, err)
	defer a.Close()

	b, _, err := websocket.DefaultDialer.Dial(wsURL(srv), nil)
	require.NoError(t, err)
	defer b.Close()

	require.NoError(t, a.WriteMessage(websocket.TextMessage, []byte(`{"event":"join","data":{"room":"evt-42","username":"A"}}`)))
	require.Eventually(t, func() bool {
		return deps.Gateway.Directory().Len() == 1
	}, 2*time.Second, 10*time.Millisecond)

	require.NoError(t, b.WriteMessage(websocket.TextMessage, []byte(`{"event":"join","data":{"room":"evt-42","username":"B"}}`)))
	require.Eventually(t, func() bool {
		return len(deps.Gateway.Directory().Members("evt-42")) == 2
	}, 2*time.Second, 10*time.Millisecond)

	require.NoError(t, a.WriteMessage(websocket.TextMessage, []byte(`{"event":"message","data":{"room":"evt-42","message":"hello"}}`)))

	require.NoError(t, b.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, raw, err := b.ReadMessage()
	require.NoError(t, err)

	var got chat.Envelope
	require.NoError(t, json.Unmarshal(raw, &got))
	assert.Equal(t, chat.EventMessage, got.Event)

	var payload chat.ChatPayload
	require.NoError(t, json.Unmarshal(got.Data, &payload))
	assert.Equal(t, "A", payload.Username)
	assert.Equal(t, "hello", payload.Message)
}

func TestWebSocketOriginCheck(t *testing.T) {
	srv := httptest.NewServer(Router(newTestDeps("production", "https://chat.example")))
	t.Cleanup(srv.Close)

	header := http.Header{"Origin": []string{"https://evil.example"}}
	_, res, err := websocket.DefaultDialer.Dial(wsURL(srv), header)
	require.Error(t, err)
	require.NotNil(t, res)
	assert.Equal(t, http.StatusForbidden, res.StatusCode)

	header = http.Header{"Origin": []string{"https://chat.example"}}
	ws, _, err := websocket.DefaultDialer.Dial(wsURL(srv), header)
	require.NoError(t, err)
	ws.Close()
}
