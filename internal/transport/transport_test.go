package transport

import (
	"bytes"
	"errors"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nativeaudio/internal/log"
	"nativeaudio/pkg/utils"
)

type event struct {
	Type   string `json:"type"`
	Stream string `json:"stream,omitempty"`
}

func TestMultiFansOut(t *testing.T) {
	a, b := &utils.MockTransport{}, &utils.MockTransport{}
	m := Multi{a, b}

	require.NoError(t, m.Send(event{Type: "recording_started"}))
	require.NoError(t, m.Close())

	assert.Len(t, a.Sent(), 1)
	assert.Len(t, b.Sent(), 1)
}

func TestMultiJoinsErrors(t *testing.T) {
	boom := errors.New("boom")
	failing := &utils.MockTransport{Err: boom}
	ok := &utils.MockTransport{}
	m := Multi{failing, ok}

	err := m.Send(event{Type: "engine_closed"})
	assert.ErrorIs(t, err, boom)
	assert.Len(t, ok.Sent(), 1, "a failing transport must not block the others")
}

func TestLoggingTransport(t *testing.T) {
	var buf bytes.Buffer
	log.SetOutput(&buf)
	t.Cleanup(func() { log.SetOutput(os.Stderr) })

	lt := NewLoggingTransport()
	require.NoError(t, lt.Send(event{Type: "playback_started", Stream: "buffer_playback"}))
	require.NoError(t, lt.Send(make(chan int)))
	require.NoError(t, lt.Close())

	out := buf.String()
	assert.Contains(t, out, "playback_started")
	assert.Contains(t, out, "buffer_playback")
}

func TestWebSocketBroadcast(t *testing.T) {
	wst := NewWebSocketTransport("")
	srv := httptest.NewServer(wst.Handler())
	defer srv.Close()
	defer wst.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	require.Eventually(t, func() bool { return wst.Clients() == 1 }, 2*time.Second, 5*time.Millisecond)

	require.NoError(t, wst.Send(event{Type: "sound_emitted", Stream: "notification"}))

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var got event
	require.NoError(t, conn.ReadJSON(&got))
	assert.Equal(t, event{Type: "sound_emitted", Stream: "notification"}, got)
}

func TestWebSocketClose(t *testing.T) {
	wst := NewWebSocketTransport("")
	srv := httptest.NewServer(wst.Handler())
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()
	require.Eventually(t, func() bool { return wst.Clients() == 1 }, 2*time.Second, 5*time.Millisecond)

	require.NoError(t, wst.Close())
	require.NoError(t, wst.Close())
	assert.Equal(t, 0, wst.Clients())
	assert.ErrorIs(t, wst.Send(event{Type: "late"}), ErrTransportClosed)

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, _, err = conn.ReadMessage()
	assert.Error(t, err, "client should be disconnected")
}
