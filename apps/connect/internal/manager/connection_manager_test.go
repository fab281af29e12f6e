package manager

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeConn 读操作阻塞到关闭，写入的帧记录在 written 中
type fakeConn struct {
	mu      sync.Mutex
	written [][]byte
	closed  chan struct{}
	once    sync.Once
}

func newFakeConn() *fakeConn {
	return &fakeConn{closed: make(chan struct{})}
}

func (f *fakeConn) ReadMessage() (int, []byte, error) {
	<-f.closed
	return 0, nil, errors.New("closed")
}

func (f *fakeConn) WriteMessage(_ int, data []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.written = append(f.written, data)
	return nil
}

func (f *fakeConn) SetWriteDeadline(time.Time) error { return nil }

func (f *fakeConn) Close() error {
	f.once.Do(func() { close(f.closed) })
	return nil
}

func (f *fakeConn) frames() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, 0, len(f.written))
	for _, w := range f.written {
		out = append(out, string(w))
	}
	return out
}

func drain(c *Client) []string {
	var out []string
	for {
		select {
		case msg := <-c.send:
			out = append(out, string(msg))
		default:
			return out
		}
	}
}

func TestJoinAndBroadcastRoom(t *testing.T) {
	m := NewConnectionManager()
	alice := NewClient(newFakeConn(), "alice", "c1")
	bob := NewClient(newFakeConn(), "bob", "c2")
	carol := NewClient(newFakeConn(), "carol", "c3")
	for _, c := range []*Client{alice, bob, carol} {
		require.True(t, m.Register(c))
	}

	assert.True(t, m.Join(alice, "alice_bob"))
	assert.True(t, m.Join(bob, "alice_bob"))
	assert.False(t, m.Join(bob, "alice_bob"), "joining twice is a no-op")
	assert.Equal(t, 2, m.RoomSize("alice_bob"))

	sent := m.BroadcastRoom("alice_bob", []byte("hi"))
	assert.Equal(t, 2, sent)
	assert.Equal(t, []string{"hi"}, drain(alice))
	assert.Equal(t, []string{"hi"}, drain(bob))
	assert.Empty(t, drain(carol))

	assert.Equal(t, 0, m.BroadcastRoom("nobody_here", []byte("x")))
}

func TestLeaveRoom(t *testing.T) {
	m := NewConnectionManager()
	alice := NewClient(newFakeConn(), "alice", "c1")
	require.True(t, m.Register(alice))
	require.True(t, m.Join(alice, "alice_bob"))

	assert.True(t, m.Leave(alice, "alice_bob"))
	assert.False(t, m.Leave(alice, "alice_bob"))
	assert.Equal(t, 0, m.RoomSize("alice_bob"))
	assert.Empty(t, alice.Rooms())
}

func TestJoinRequiresRegistration(t *testing.T) {
	m := NewConnectionManager()
	ghost := NewClient(newFakeConn(), "ghost", "c9")
	assert.False(t, m.Join(ghost, "a_b"))
	assert.Equal(t, 0, m.RoomSize("a_b"))
}

func TestUnregisterLeavesAllRooms(t *testing.T) {
	m := NewConnectionManager()
	alice := NewClient(newFakeConn(), "alice", "c1")
	second := NewClient(newFakeConn(), "alice", "c2")
	require.True(t, m.Register(alice))
	require.True(t, m.Register(second))
	require.True(t, m.Join(alice, "alice_bob"))
	require.True(t, m.Join(alice, "alice_carol"))
	require.True(t, m.Join(second, "alice_bob"))

	m.Unregister(alice)

	assert.Equal(t, 1, m.Count())
	assert.Equal(t, 1, m.RoomSize("alice_bob"))
	assert.Equal(t, 0, m.RoomSize("alice_carol"))
	assert.Equal(t, 1, m.SendToUser("alice", []byte("x")))
}

func TestShutdownClosesAndRejects(t *testing.T) {
	m := NewConnectionManager()
	conn := newFakeConn()
	alice := NewClient(conn, "alice", "c1")
	require.True(t, m.Register(alice))
	require.True(t, m.Join(alice, "alice_bob"))

	m.Shutdown()

	select {
	case <-alice.Done():
	default:
		t.Fatal("client should be closed")
	}
	assert.Equal(t, 0, m.Count())
	assert.Equal(t, 0, m.RoomSize("alice_bob"))
	assert.False(t, m.Register(NewClient(newFakeConn(), "bob", "c2")))
}

func TestClientRunWritesQueuedFrames(t *testing.T) {
	conn := newFakeConn()
	client := NewClient(conn, "alice", "c1")

	closed := make(chan struct{})
	go client.Run(context.Background(), nil, func() { close(closed) })

	require.True(t, client.Enqueue([]byte("frame-1")))
	require.Eventually(t, func() bool {
		return len(conn.frames()) == 1
	}, time.Second, 5*time.Millisecond)
	assert.Equal(t, []string{"frame-1"}, conn.frames())

	client.Close()
	select {
	case <-closed:
	case <-time.After(time.Second):
		t.Fatal("onClose not called")
	}
	assert.False(t, client.Enqueue([]byte("late")))
}

func TestEnqueueFullQueue(t *testing.T) {
	client := NewClient(newFakeConn(), "alice", "c1")
	for i := 0; i < defaultSendQueueSize; i++ {
		require.True(t, client.Enqueue([]byte("x")))
	}
	assert.False(t, client.Enqueue([]byte("overflow")))
}
