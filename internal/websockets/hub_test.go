package websockets

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oasis-cafe/oasis-service/internal/models"
)

func clientCount(h *Hub) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

func isAdmin(h *Hub, c *Client) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.adminClients[c]
}

func TestHubRoutesOrderEvents(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	admin := NewClient(hub, nil, "A0001", ClientTypeAdmin)
	owner := NewClient(hub, nil, "U0001", ClientTypeCustomer)
	other := NewClient(hub, nil, "U0002", ClientTypeCustomer)

	hub.register <- admin
	hub.register <- owner
	hub.register <- other

	require.Eventually(t, func() bool { return clientCount(hub) == 3 },
		time.Second, time.Millisecond)

	hub.NotifyOrderCreated(&models.Order{OrderID: "O0001", UserID: "U0001"})

	assert.Len(t, admin.send, 1, "admins see every order event")
	assert.Len(t, owner.send, 1, "the ordering customer sees their event")
	assert.Empty(t, other.send, "other customers see nothing")
}

func TestHubEvictsStalledClient(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	admin := NewClient(hub, nil, "A0001", ClientTypeAdmin)
	hub.register <- admin

	require.Eventually(t, func() bool { return clientCount(hub) == 1 },
		time.Second, time.Millisecond)

	for len(admin.send) < cap(admin.send) {
		admin.send <- []byte("backlog")
	}

	hub.NotifyOrderStatus(&models.Order{OrderID: "O0001", UserID: "U0001"})

	assert.False(t, isAdmin(hub, admin))
	assert.Equal(t, 0, clientCount(hub))

	// The evicted client's read pump will still report unregister; that
	// must be a no-op rather than a second close of the send channel.
	hub.unregister <- admin
	require.Eventually(t, func() bool { return clientCount(hub) == 0 },
		time.Second, time.Millisecond)
}

func TestHubConcurrentRegisterAndBroadcast(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	const n = 200

	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		for i := 0; i < n; i++ {
			client := NewClient(hub, nil, fmt.Sprintf("U%04d", i), ClientTypeCustomer)
			hub.register <- client
		}
	}()

	go func() {
		defer wg.Done()
		for i := 0; i < n; i++ {
			hub.NotifyOrderStatus(&models.Order{OrderID: "O0001", UserID: "U0001"})
		}
	}()

	wg.Wait()

	require.Eventually(t, func() bool { return clientCount(hub) == n },
		time.Second, time.Millisecond)
}
