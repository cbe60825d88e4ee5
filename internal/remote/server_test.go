package remote

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeTarget struct {
	calls    []string
	autoPlay bool
	accept   bool
}

func (f *fakeTarget) StartAnimation(autoPlay bool) bool {
	f.calls = append(f.calls, StartAnimation)
	f.autoPlay = autoPlay
	return f.accept
}

func (f *fakeTarget) StartCameraRotation() bool {
	f.calls = append(f.calls, StartCameraRotation)
	return f.accept
}

func (f *fakeTarget) StartRotationAndAnimation() bool {
	f.calls = append(f.calls, StartRotationAndAnimation)
	return f.accept
}

type stringer string

func (s stringer) String() string { return string(s) }

func TestDispatch(t *testing.T) {
	tests := []struct {
		cmd  Command
		want string
	}{
		{Command{Name: StartAnimation, AutoPlay: true}, StartAnimation},
		{Command{Name: StartCameraRotation}, StartCameraRotation},
		{Command{Name: StartRotationAndAnimation}, StartRotationAndAnimation},
	}
	for _, tt := range tests {
		t.Run(tt.cmd.Name, func(t *testing.T) {
			f := &fakeTarget{accept: true}
			ok, err := Dispatch(f, tt.cmd)
			require.NoError(t, err)
			assert.True(t, ok)
			assert.Equal(t, []string{tt.want}, f.calls)
		})
	}

	f := &fakeTarget{}
	_, err := Dispatch(f, Command{Name: StartAnimation, AutoPlay: true})
	require.NoError(t, err)
	assert.True(t, f.autoPlay)

	_, err = Dispatch(f, Command{Name: "explode"})
	assert.ErrorIs(t, err, ErrUnknownCommand)
}

func dial(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + Path
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readEvent(t *testing.T, conn *websocket.Conn) Event {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var ev Event
	require.NoError(t, conn.ReadJSON(&ev))
	return ev
}

func newTestServer(t *testing.T, queue int) (*Server, *httptest.Server) {
	t.Helper()
	s := NewServer(queue)
	ts := httptest.NewServer(s.Handler())
	t.Cleanup(func() {
		_ = s.Close(context.Background())
		ts.Close()
	})
	return s, ts
}

func TestCommandQueuedUntilDrain(t *testing.T) {
	s, ts := newTestServer(t, 4)
	conn := dial(t, ts)

	require.NoError(t, conn.WriteJSON(Command{Name: StartRotationAndAnimation}))

	f := &fakeTarget{accept: true}
	require.Eventually(t, func() bool { return s.Drain(f) > 0 }, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, []string{StartRotationAndAnimation}, f.calls)

	ev := readEvent(t, conn)
	assert.Equal(t, "result", ev.Event)
	assert.Equal(t, StartRotationAndAnimation, ev.Command)
	require.NotNil(t, ev.Accepted)
	assert.True(t, *ev.Accepted)
}

func TestDrainEmptyQueue(t *testing.T) {
	s := NewServer(1)
	assert.Zero(t, s.Drain(&fakeTarget{}))
}

func TestUnknownCommandReportsError(t *testing.T) {
	s, ts := newTestServer(t, 4)
	conn := dial(t, ts)

	require.NoError(t, conn.WriteJSON(Command{Name: "explode"}))
	f := &fakeTarget{}
	require.Eventually(t, func() bool { return s.Drain(f) > 0 }, 2*time.Second, 10*time.Millisecond)
	assert.Empty(t, f.calls)

	ev := readEvent(t, conn)
	assert.Equal(t, "result", ev.Event)
	require.NotNil(t, ev.Accepted)
	assert.False(t, *ev.Accepted)
	assert.Contains(t, ev.Error, "unknown command")
}

func TestMalformedMessage(t *testing.T) {
	_, ts := newTestServer(t, 4)
	conn := dial(t, ts)

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("{not json")))
	ev := readEvent(t, conn)
	assert.Equal(t, "error", ev.Event)
	assert.Equal(t, "malformed command", ev.Error)
}

func TestQueueFull(t *testing.T) {
	s, ts := newTestServer(t, 1)
	conn := dial(t, ts)

	require.NoError(t, conn.WriteJSON(Command{Name: StartCameraRotation}))
	require.NoError(t, conn.WriteJSON(Command{Name: StartAnimation}))

	ev := readEvent(t, conn)
	assert.Equal(t, "error", ev.Event)
	assert.Equal(t, StartAnimation, ev.Command)
	assert.Equal(t, "command queue full", ev.Error)

	f := &fakeTarget{}
	assert.Equal(t, 1, s.Drain(f))
	assert.Equal(t, []string{StartCameraRotation}, f.calls)
}

func TestBroadcastStateToAllClients(t *testing.T) {
	s, ts := newTestServer(t, 4)
	a := dial(t, ts)
	b := dial(t, ts)
	require.Eventually(t, func() bool { return s.Clients() == 2 }, 2*time.Second, 10*time.Millisecond)

	s.Broadcast(StateEvent(stringer("Rotating")))

	for _, conn := range []*websocket.Conn{a, b} {
		ev := readEvent(t, conn)
		assert.Equal(t, Event{Event: "intro", State: "Rotating"}, ev)
	}
}

func TestClientRemovedOnDisconnect(t *testing.T) {
	s, ts := newTestServer(t, 4)
	conn := dial(t, ts)
	require.Eventually(t, func() bool { return s.Clients() == 1 }, 2*time.Second, 10*time.Millisecond)

	conn.Close()
	require.Eventually(t, func() bool { return s.Clients() == 0 }, 2*time.Second, 10*time.Millisecond)
}

func TestStartAndClose(t *testing.T) {
	s := NewServer(4)
	require.NoError(t, s.Start("127.0.0.1:0"))
	assert.NotEmpty(t, s.Addr())

	conn, _, err := websocket.DefaultDialer.Dial("ws://"+s.Addr()+Path, nil)
	require.NoError(t, err)
	defer conn.Close()
	require.Eventually(t, func() bool { return s.Clients() == 1 }, 2*time.Second, 10*time.Millisecond)

	require.NoError(t, s.Close(context.Background()))
	assert.Zero(t, s.Clients())
}

func TestStalledClientDoesNotBlockBroadcast(t *testing.T) {
	s, ts := newTestServer(t, 4)
	dial(t, ts) // never reads
	require.Eventually(t, func() bool { return s.Clients() == 1 }, 2*time.Second, 10*time.Millisecond)

	// Large events fill the socket buffers, then the client queue.
	big := Event{Event: "error", Error: strings.Repeat("x", 64<<10)}
	start := time.Now()
	for range 400 {
		s.Broadcast(big)
	}
	assert.Less(t, time.Since(start), writeTimeout)
	require.Eventually(t, func() bool { return s.Clients() == 0 }, 5*time.Second, 10*time.Millisecond)

	conn := dial(t, ts)
	require.Eventually(t, func() bool { return s.Clients() == 1 }, 2*time.Second, 10*time.Millisecond)
	s.Broadcast(StateEvent(stringer("Interactive")))
	assert.Equal(t, Event{Event: "intro", State: "Interactive"}, readEvent(t, conn))
}

func TestEnqueueAfterCloseIsRejected(t *testing.T) {
	c := &client{out: make(chan Event, 1)}
	assert.True(t, c.enqueue(Event{Event: "a"}))
	assert.False(t, c.enqueue(Event{Event: "b"}), "queue full")
	c.close()
	c.close()
	assert.False(t, c.enqueue(Event{Event: "c"}))
}
