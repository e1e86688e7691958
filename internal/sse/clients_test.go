package sse

import "testing"

func TestBroadcast(t *testing.T) {
	clients := NewSSEClients()
	a, b := NewClient(), NewClient()
	clients.Add(a)
	clients.Add(b)

	if clients.Len() != 2 {
		t.Fatalf("Expected 2 clients, got %d", clients.Len())
	}

	clients.Broadcast("reload")

	for i, c := range []*Client{a, b} {
		select {
		case msg := <-c.Msg:
			if msg != "reload" {
				t.Errorf("Client %d: expected 'reload', got %q", i, msg)
			}
		default:
			t.Errorf("Client %d: expected a message", i)
		}
	}
}

func TestBroadcastDoesNotBlockOnFullClient(t *testing.T) {
	clients := NewSSEClients()
	c := NewClient()
	clients.Add(c)

	for i := 0; i < 10; i++ {
		clients.Broadcast("reload")
	}

	if len(c.Msg) != cap(c.Msg) {
		t.Errorf("Expected a full buffer, got %d/%d", len(c.Msg), cap(c.Msg))
	}
}

func TestDelete(t *testing.T) {
	clients := NewSSEClients()
	c := NewClient()
	clients.Add(c)
	clients.Delete(c)

	if clients.Len() != 0 {
		t.Errorf("Expected no clients, got %d", clients.Len())
	}
	if _, ok := <-c.Msg; ok {
		t.Error("Expected the channel to be closed")
	}

	// A second delete is a no-op rather than a double close.
	clients.Delete(c)

	clients.Broadcast("reload")
}
