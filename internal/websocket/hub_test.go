package websocket

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// mockClient is a test double for Client that captures sent messages
type mockClient struct {
	id       string
	userID   string
	messages [][]byte
	mu       sync.Mutex
	closed   bool
}

func newMockClient(id, userID string) *mockClient {
	return &mockClient{
		id:       id,
		userID:   userID,
		messages: make([][]byte, 0),
	}
}

func (m *mockClient) ID() string {
	return m.id
}

func (m *mockClient) UserID() string {
	return m.userID
}

func (m *mockClient) Send(data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrClientClosed
	}
	m.messages = append(m.messages, data)
	return nil
}

func (m *mockClient) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

func (m *mockClient) GetMessages() [][]byte {
	m.mu.Lock()
	defer m.mu.Unlock()
	copied := make([][]byte, len(m.messages))
	copy(copied, m.messages)
	return copied
}

func TestHub_RegisterUnregister(t *testing.T) {
	hub := NewHub()

	client1 := newMockClient("client-1", "auth0|alice")
	client2 := newMockClient("client-2", "auth0|alice")
	client3 := newMockClient("client-3", "auth0|bob")

	hub.Register(client1)
	hub.Register(client2)
	hub.Register(client3)

	assert.Equal(t, 2, hub.ClientCount("auth0|alice"))
	assert.Equal(t, 1, hub.ClientCount("auth0|bob"))
	assert.Equal(t, 0, hub.ClientCount("auth0|nobody"))
	assert.Equal(t, 3, hub.TotalClientCount())

	hub.Unregister(client1)
	assert.Equal(t, 1, hub.ClientCount("auth0|alice"))

	hub.Unregister(client2)
	hub.Unregister(client3)
	assert.Equal(t, 0, hub.ClientCount("auth0|alice"))
	assert.Equal(t, 0, hub.ClientCount("auth0|bob"))
	assert.Equal(t, 0, hub.TotalClientCount())
}

func TestHub_Broadcast_UserIsolation(t *testing.T) {
	hub := NewHub()

	// Two browser tabs for alice
	alice1 := newMockClient("client-1a", "auth0|alice")
	alice2 := newMockClient("client-1b", "auth0|alice")
	bob := newMockClient("client-2", "auth0|bob")

	hub.Register(alice1)
	hub.Register(alice2)
	hub.Register(bob)

	evt := NotificationCreated(map[string]interface{}{"message": "budget alert"})
	hub.Broadcast("auth0|alice", evt)

	// Give goroutines time to process
	time.Sleep(10 * time.Millisecond)

	assert.Len(t, alice1.GetMessages(), 1, "first alice client should receive 1 message")
	assert.Len(t, alice2.GetMessages(), 1, "second alice client should receive 1 message")
	assert.Len(t, bob.GetMessages(), 0, "bob should not receive alice's event")
}

func TestHub_Broadcast_NoClients(t *testing.T) {
	hub := NewHub()

	// Must not panic or block with nobody connected
	hub.Broadcast("auth0|alice", BudgetExpired(map[string]interface{}{"id": "b1"}))
}

func TestHub_Broadcast_MultipleFanOut(t *testing.T) {
	hub := NewHub()

	clients := make([]*mockClient, 5)
	for i := 0; i < 5; i++ {
		clients[i] = newMockClient(fmt.Sprintf("client-%d", i), "auth0|alice")
		hub.Register(clients[i])
	}

	evt := AccountUpdated(map[string]interface{}{"balance": "100.00"})
	hub.Broadcast("auth0|alice", evt)

	time.Sleep(10 * time.Millisecond)

	for i, c := range clients {
		assert.Len(t, c.GetMessages(), 1, "client %d should receive message", i)
	}
}

func TestHub_ConcurrentAccess(t *testing.T) {
	hub := NewHub()

	var wg sync.WaitGroup
	clientCount := 50

	clients := make([]*mockClient, clientCount)
	for i := 0; i < clientCount; i++ {
		clients[i] = newMockClient(fmt.Sprintf("client-%d", i), fmt.Sprintf("auth0|user%d", i%5))
	}

	for i := 0; i < clientCount; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			hub.Register(clients[idx])
		}(i)
	}

	wg.Wait()

	assert.Equal(t, clientCount, hub.TotalClientCount())

	for i := 0; i < clientCount; i++ {
		wg.Add(2)
		go func(idx int) {
			defer wg.Done()
			evt := NotificationCreated(map[string]interface{}{"id": float64(idx)})
			hub.Broadcast(fmt.Sprintf("auth0|user%d", idx%5), evt)
		}(i)
		go func(idx int) {
			defer wg.Done()
			hub.Unregister(clients[idx])
		}(i)
	}

	wg.Wait()

	assert.Equal(t, 0, hub.TotalClientCount())
}

func TestHub_SendToClosedClient(t *testing.T) {
	hub := NewHub()

	client := newMockClient("client-1", "auth0|alice")
	hub.Register(client)
	_ = client.Close()

	// A failed send is logged, never propagated
	hub.Broadcast("auth0|alice", NotificationCreated(map[string]interface{}{"id": "n1"}))
	time.Sleep(10 * time.Millisecond)

	assert.Len(t, client.GetMessages(), 0)
}
