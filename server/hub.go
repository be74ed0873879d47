package server

import (
	"context"
	"encoding/json"
	"log/slog"
)

// message is an event addressed to the subscribers of one job.
type message struct {
	job   string
	event Event
}

type subscription struct {
	client *Client
	job    string
}

// Hub maintains the set of active clients and broadcasts job events to them.
type Hub struct {
	// Registered clients and the job each one follows, "" for all jobs.
	clients map[*Client]string

	// Outbound job events.
	broadcast chan message

	// Register requests from the clients.
	register chan *Client

	// Unregister requests from clients.
	unregister chan *Client

	// Job filters requested by clients.
	subscribe chan subscription

	// Closed when Run returns.
	done chan struct{}

	logger *slog.Logger
}

// NewHub creates a new Hub.
func NewHub(logger *slog.Logger) *Hub {
	if logger == nil {
		logger = slog.Default()
	}
	return &Hub{
		clients:    make(map[*Client]string),
		broadcast:  make(chan message),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		subscribe:  make(chan subscription),
		done:       make(chan struct{}),
		logger:     logger,
	}
}

// Run serves the hub until ctx is done.
func (h *Hub) Run(ctx context.Context) {
	defer func() {
		for client := range h.clients {
			close(client.send)
			delete(h.clients, client)
		}
		close(h.done)
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case client := <-h.register:
			h.clients[client] = ""
		case client := <-h.unregister:
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
			}
		case sub := <-h.subscribe:
			if _, ok := h.clients[sub.client]; !ok {
				continue
			}
			h.clients[sub.client] = sub.job
			h.send(sub.client, Event{EventSubscribed, subscribeRequest{Job: sub.job}})
		case m := <-h.broadcast:
			for client, job := range h.clients {
				if job == "" || job == m.job {
					h.send(client, m.event)
				}
			}
		}
	}
}

// send queues an event for one client and drops clients that fall behind.
func (h *Hub) send(client *Client, e Event) {
	data, err := json.Marshal(e)
	if err != nil {
		h.logger.Error("failed to encode event", "event", e.Name, "error", err)
		return
	}
	select {
	case client.send <- data:
	default:
		h.logger.Warn("dropping slow websocket client")
		close(client.send)
		delete(h.clients, client)
	}
}

// Broadcast sends e to every client following job. It returns without
// sending once the hub has stopped.
func (h *Hub) Broadcast(job string, e Event) {
	select {
	case h.broadcast <- message{job, e}:
	case <-h.done:
	}
}
