package notification

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// dialHub upgrades one server-side connection, registers it under userID and
// returns the client end for reading.
func dialHub(t *testing.T, hub *Hub, userID int64) *websocket.Conn {
	t.Helper()

	upgrader := websocket.Upgrader{}
	registered := make(chan struct{})

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		hub.Register(userID, conn)
		close(registered)
	}))
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}
	t.Cleanup(func() { conn.Close() })

	<-registered
	return conn
}

func TestBroadcast_ConcurrentWritersOneConnection(t *testing.T) {
	hub := NewHub()
	conn := dialHub(t, hub, 1)

	// Every submission and decision broadcasts from its own request
	// goroutine; all writes to the single connection must arrive intact.
	const writers = 32

	var wg sync.WaitGroup
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			hub.Broadcast(map[string]int{"seq": i})
		}(i)
	}

	seen := make(map[int]bool, writers)
	for i := 0; i < writers; i++ {
		var msg map[string]int
		require.NoError(t, conn.ReadJSON(&msg))
		seen[msg["seq"]] = true
	}
	wg.Wait()

	assert.Len(t, seen, writers)
	assert.Equal(t, 1, hub.Count())
}

func TestRegister_ReplacesExistingConnection(t *testing.T) {
	hub := NewHub()

	old := dialHub(t, hub, 1)
	dialHub(t, hub, 1)

	assert.Equal(t, 1, hub.Count())

	// The replaced connection was closed server-side; the client read fails.
	_, _, err := old.ReadMessage()
	assert.Error(t, err)
}

func TestUnregister(t *testing.T) {
	hub := NewHub()
	dialHub(t, hub, 1)
	dialHub(t, hub, 2)

	hub.Unregister(1)
	assert.Equal(t, 1, hub.Count())

	hub.Unregister(1) // already gone
	assert.Equal(t, 1, hub.Count())
}
