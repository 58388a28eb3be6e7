package chat

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"eventchat/internal/pkg/errs"
)

func newWSServer(t *testing.T, g *Gateway) *httptest.Server {
	t.Helper()

	upgrader := websocket.Upgrader{CheckOrigin: func(*http.Request) bool { return true }}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ws, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		g.Serve(ws)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func dial(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	ws, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = ws.Close() })
	return ws
}

func readFrame(t *testing.T, ws *websocket.Conn) frame {
	t.Helper()

	require.NoError(t, ws.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, raw, err := ws.ReadMessage()
	require.NoError(t, err)
	return decodeFrame(t, raw)
}

func writeFrame(t *testing.T, ws *websocket.Conn, raw string) {
	t.Helper()
	require.NoError(t, ws.WriteMessage(websocket.TextMessage, []byte(raw)))
}

func waitForMembers(t *testing.T, g *Gateway, room string, n int) {
	t.Helper()
	require.Eventually(t, func() bool {
		return len(g.Directory().Members(room)) == n
	}, 2*time.Second, 10*time.Millisecond)
}

func TestSessionEndToEnd(t *testing.T) {
	rec := &captureRecorder{}
	g := NewGateway(NewRegistry(16), NewDirectory(), rec)
	srv := newWSServer(t, g)

	a := dial(t, srv)
	b := dial(t, srv)

	writeFrame(t, a, `{"event":"join","data":{"room":"evt-42","username":"A"}}`)
	waitForMembers(t, g, "evt-42", 1)

	writeFrame(t, b, `{"event":"join","data":{"room":"evt-42","username":"B"}}`)

	joined := readFrame(t, a)
	assert.Equal(t, EventJoin, joined.Event)
	assert.Equal(t, "B", joined.Data["username"])

	writeFrame(t, a, `{"event":"message","data":{"room":"evt-42","username":"A","message":"hello"}}`)

	msg := readFrame(t, b)
	assert.Equal(t, EventMessage, msg.Event)
	assert.Equal(t, "A", msg.Data["username"])
	assert.Equal(t, "hello", msg.Data["message"])

	require.NoError(t, b.Close())

	left := readFrame(t, a)
	assert.Equal(t, EventLeave, left.Event)
	assert.Equal(t, "B", left.Data["username"])

	waitForMembers(t, g, "evt-42", 1)
	require.Eventually(t, func() bool { return g.Registry().Len() == 1 }, 2*time.Second, 10*time.Millisecond)

	msgs := rec.Messages()
	require.Len(t, msgs, 1)
	assert.Equal(t, "hello", msgs[0].Body)
}

func TestSessionErrorKeepsConnectionOpen(t *testing.T) {
	g := NewGateway(NewRegistry(16), NewDirectory(), &captureRecorder{})
	srv := newWSServer(t, g)

	a := dial(t, srv)
	writeFrame(t, a, `{"event":"message","data":{"message":"too early"}}`)

	errFrame := readFrame(t, a)
	assert.Equal(t, EventError, errFrame.Event)

	writeFrame(t, a, `{"event":"join","data":{"room":"r","username":"A"}}`)
	waitForMembers(t, g, "r", 1)
}

func TestSessionShutdownClosesClients(t *testing.T) {
	g := NewGateway(NewRegistry(16), NewDirectory(), &captureRecorder{})
	srv := newWSServer(t, g)

	a := dial(t, srv)
	writeFrame(t, a, `{"event":"join","data":{"room":"r","username":"A"}}`)
	waitForMembers(t, g, "r", 1)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, g.Shutdown(ctx))

	require.NoError(t, a.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, _, err := a.ReadMessage()
	require.Error(t, err)

	assert.Equal(t, 0, g.Directory().Len())
	assert.Equal(t, 0, g.Registry().Len())
}

func TestSessionEscapedBodyWithinLimit(t *testing.T) {
	rec := &captureRecorder{}
	g := NewGateway(NewRegistry(16), NewDirectory(), rec)
	srv := newWSServer(t, g)

	a := dial(t, srv)
	b := dial(t, srv)
	writeFrame(t, a, `{"event":"join","data":{"room":"r","username":"A"}}`)
	waitForMembers(t, g, "r", 1)
	writeFrame(t, b, `{"event":"join","data":{"room":"r","username":"B"}}`)
	readFrame(t, a)

	// 4500 newlines decode to 4500 bytes but take 9000 on the wire
	body := strings.Repeat(`\n`, 4500)
	writeFrame(t, a, `{"event":"message","data":{"message":"`+body+`"}}`)

	msg := readFrame(t, b)
	assert.Equal(t, EventMessage, msg.Event)
	assert.Equal(t, strings.Repeat("\n", 4500), msg.Data["message"])

	msgs := rec.Messages()
	require.Len(t, msgs, 1)
	assert.Len(t, msgs[0].Body, 4500)
	assert.Len(t, g.Directory().Members("r"), 2)
}

func TestSessionEscapedBodyOverLimit(t *testing.T) {
	rec := &captureRecorder{}
	g := NewGateway(NewRegistry(16), NewDirectory(), rec)
	srv := newWSServer(t, g)

	a := dial(t, srv)
	writeFrame(t, a, `{"event":"join","data":{"room":"r","username":"A"}}`)
	waitForMembers(t, g, "r", 1)

	body := strings.Repeat(`A`, MaxContentBytes+1)
	writeFrame(t, a, `{"event":"message","data":{"message":"`+body+`"}}`)

	errFrame := readFrame(t, a)
	assert.Equal(t, EventError, errFrame.Event)
	assert.EqualValues(t, errs.ErrMessageContentTooLong, errFrame.Data["code"])

	assert.Empty(t, rec.Messages())
	assert.Len(t, g.Directory().Members("r"), 1)
}

func TestSessionRefusedAfterShutdown(t *testing.T) {
	g := NewGateway(NewRegistry(16), NewDirectory(), &captureRecorder{})
	srv := newWSServer(t, g)

	require.NoError(t, g.Shutdown(context.Background()))

	a := dial(t, srv)
	require.NoError(t, a.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, _, err := a.ReadMessage()
	assert.True(t, websocket.IsCloseError(err, websocket.CloseGoingAway), "got %v", err)
	assert.Equal(t, 0, g.Registry().Len())
}
