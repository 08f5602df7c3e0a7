package core

import "sync"

const defaultClientBuffer = 64

// Client is one connection as seen by the core layer.
type Client struct {
	ID       ConnID
	Commands chan *Command
	Events   chan *Event

	done      chan struct{}
	closeOnce sync.Once
}

// NewClient constructs a client whose event queue holds buffer events.
func NewClient(id string, buffer int) *Client {
	if buffer <= 0 {
		buffer = defaultClientBuffer
	}
	return &Client{
		ID:       ConnID(id),
		Commands: make(chan *Command, 8),
		Events:   make(chan *Event, buffer),
		done:     make(chan struct{}),
	}
}

// Done is closed once the client has been unregistered.
func (c *Client) Done() <-chan struct{} {
	return c.done
}

func (c *Client) close() {
	c.closeOnce.Do(func() { close(c.done) })
}

// deliver queues an event without blocking. It reports false when the queue is full.
func (c *Client) deliver(event *Event) bool {
	select {
	case c.Events <- event:
		return true
	default:
		return false
	}
}
