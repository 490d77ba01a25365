package hub

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/Abduqodir7007/twitter-clone/internal/config"
)

func testWSConfig() config.WebSocketConfig {
	return config.WebSocketConfig{
		WriteWait:      10 * time.Second,
		PongWait:       60 * time.Second,
		PingInterval:   54 * time.Second,
		MaxMessageSize: 4096,
		SendBufferSize: 8,
	}
}

// newTestClient builds a client that is never pumped; tests read its send
// channel directly.
func newTestClient(room string) *Client {
	return NewClient(nil, room, testWSConfig())
}

func recvPayload(t *testing.T, c *Client) []byte {
	t.Helper()
	select {
	case p := <-c.send:
		return p
	default:
		t.Fatalf("client %s: no payload queued", c.ID)
		return nil
	}
}

func requireEmpty(t *testing.T, c *Client) {
	t.Helper()
	select {
	case p := <-c.send:
		t.Fatalf("client %s: unexpected payload %q", c.ID, p)
	default:
	}
}

func TestDispatchReachesOnlyRoomMembers(t *testing.T) {
	h := NewHub(testWSConfig())

	a := newTestClient("chat-1")
	b := newTestClient("chat-1")
	other := newTestClient("chat-2")
	feed := newTestClient("")

	h.Register("chat-1", a)
	h.Register("chat-1", b)
	h.Register("chat-2", other)
	h.RegisterGlobal(feed)

	h.Dispatch("chat-1", []byte("hello"))

	require.Equal(t, []byte("hello"), recvPayload(t, a))
	require.Equal(t, []byte("hello"), recvPayload(t, b))
	requireEmpty(t, other)
	requireEmpty(t, feed)
}

func TestDispatchUnknownRoomIsNoop(t *testing.T) {
	h := NewHub(testWSConfig())

	c := newTestClient("chat-1")
	h.Register("chat-1", c)

	h.Dispatch("no-such-room", []byte("x"))
	requireEmpty(t, c)
}

func TestUnregisterStopsDelivery(t *testing.T) {
	h := NewHub(testWSConfig())

	c := newTestClient("chat-1")
	h.Register("chat-1", c)
	h.Unregister("chat-1", c)

	h.Dispatch("chat-1", []byte("x"))
	requireEmpty(t, c)
	require.Equal(t, 0, h.RoomSize("chat-1"))
}

func TestUnregisterAbsentClientIsNoop(t *testing.T) {
	h := NewHub(testWSConfig())

	c := newTestClient("chat-1")
	h.Unregister("chat-1", c)
	h.Unregister("never-existed", c)
}

func TestRegisterSameClientToMultipleRooms(t *testing.T) {
	h := NewHub(testWSConfig())

	c := newTestClient("chat-1")
	h.Register("chat-1", c)
	h.Register("chat-2", c)

	h.Dispatch("chat-1", []byte("one"))
	h.Dispatch("chat-2", []byte("two"))

	require.Equal(t, []byte("one"), recvPayload(t, c))
	require.Equal(t, []byte("two"), recvPayload(t, c))
}

func TestBroadcastReachesFeedClientsOnly(t *testing.T) {
	h := NewHub(testWSConfig())

	feed1 := newTestClient("")
	feed2 := newTestClient("")
	room := newTestClient("chat-1")

	h.RegisterGlobal(feed1)
	h.RegisterGlobal(feed2)
	h.Register("chat-1", room)

	h.Broadcast([]byte("new_post"))

	require.Equal(t, []byte("new_post"), recvPayload(t, feed1))
	require.Equal(t, []byte("new_post"), recvPayload(t, feed2))
	requireEmpty(t, room)
}

func TestUnregisterGlobalCleansRoomsToo(t *testing.T) {
	h := NewHub(testWSConfig())

	c := newTestClient("")
	h.RegisterGlobal(c)
	h.Register("chat-1", c)
	h.Register("chat-2", c)

	h.UnregisterGlobal(c)

	require.Equal(t, 0, h.RoomSize("chat-1"))
	require.Equal(t, 0, h.RoomSize("chat-2"))

	h.Broadcast([]byte("x"))
	h.Dispatch("chat-1", []byte("y"))
	requireEmpty(t, c)
}

func TestFullBufferEvictsClientEverywhere(t *testing.T) {
	h := NewHub(testWSConfig())

	slow := newTestClient("chat-1")
	healthy := newTestClient("chat-1")
	h.Register("chat-1", slow)
	h.Register("chat-1", healthy)
	h.RegisterGlobal(slow)

	// Fill the slow client's buffer so the next delivery attempt fails.
	for i := 0; i < cap(slow.send); i++ {
		require.True(t, slow.trySend([]byte("fill")))
	}

	h.Dispatch("chat-1", []byte("overflow"))

	// The healthy client still got the payload.
	require.Equal(t, []byte("overflow"), recvPayload(t, healthy))

	// The slow client is gone from the room and the feed set, and its
	// send channel is closed so the write pump terminates.
	require.Equal(t, 1, h.RoomSize("chat-1"))
	h.Broadcast([]byte("after"))

	drained := 0
	for range slow.send {
		drained++
	}
	require.Equal(t, cap(slow.send), drained, "evicted client must receive nothing after eviction")
}

func TestSendAfterEvictionIsRejected(t *testing.T) {
	h := NewHub(testWSConfig())

	c := newTestClient("")
	h.RegisterGlobal(c)

	for i := 0; i < cap(c.send); i++ {
		require.True(t, c.trySend([]byte("fill")))
	}

	// The full buffer makes this broadcast evict the client and close
	// its send channel.
	h.Broadcast([]byte("overflow"))

	// A read pump callback may still be running and answer a pull after
	// the eviction; the attempt must fail cleanly, not panic.
	require.False(t, c.Send([]byte("late reply")))
	require.False(t, c.trySend([]byte("late reply")))
}

func TestEvictedClientSafeToUnregisterAgain(t *testing.T) {
	h := NewHub(testWSConfig())

	c := newTestClient("chat-1")
	h.Register("chat-1", c)

	for i := 0; i < cap(c.send); i++ {
		c.trySend([]byte("fill"))
	}
	h.Dispatch("chat-1", []byte("overflow"))

	// The connection handler still runs its own teardown afterwards.
	h.Unregister("chat-1", c)
	h.UnregisterGlobal(c)
	c.closeSend()
}

func TestConcurrentRegisterUnregisterDispatch(t *testing.T) {
	h := NewHub(testWSConfig())

	const workers = 16
	const rounds = 200

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			room := fmt.Sprintf("chat-%d", n%4)
			for j := 0; j < rounds; j++ {
				c := newTestClient(room)
				h.Register(room, c)
				h.Dispatch(room, []byte("m"))
				h.Unregister(room, c)
			}
		}(i)
	}
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c := newTestClient("")
			h.RegisterGlobal(c)
			for j := 0; j < rounds; j++ {
				h.Broadcast([]byte("b"))
				// Drain so the buffer never fills.
				for len(c.send) > 0 {
					<-c.send
				}
			}
			h.UnregisterGlobal(c)
		}()
	}
	wg.Wait()

	for i := 0; i < 4; i++ {
		require.Equal(t, 0, h.RoomSize(fmt.Sprintf("chat-%d", i)))
	}
}

func TestDispatchAfterRegisterIncludesClient(t *testing.T) {
	h := NewHub(testWSConfig())

	// Registration completing before a dispatch starts guarantees
	// inclusion in that dispatch.
	for i := 0; i < 100; i++ {
		c := newTestClient("chat-1")
		h.Register("chat-1", c)
		h.Dispatch("chat-1", []byte("m"))
		require.Equal(t, []byte("m"), recvPayload(t, c))
		h.Unregister("chat-1", c)
	}
}
