// Package sse keeps track of the browsers listening for preview reloads.
package sse

import (
	"sync"
)

type Client struct {
	Msg chan string
}

func NewClient() *Client {
	return &Client{Msg: make(chan string, 1)}
}

type SSEClients struct {
	clients map[*Client]bool
	mu      sync.RWMutex
}

func NewSSEClients() *SSEClients {
	return &SSEClients{
		clients: make(map[*Client]bool),
	}
}

func (s *SSEClients) Add(client *Client) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clients[client] = true
}

func (s *SSEClients) Delete(client *Client) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.clients[client] {
		return
	}
	delete(s.clients, client)
	close(client.Msg)
}

func (s *SSEClients) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.clients)
}

// Broadcast never blocks: a client whose buffer is full already has a
// pending reload and skips this one.
func (s *SSEClients) Broadcast(msg string) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for client := range s.clients {
		select {
		case client.Msg <- msg:
		default:
		}
	}
}
