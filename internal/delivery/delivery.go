// Package delivery fans new messages out to connected viewers. The service
// layer publishes through the Channel interface and never knows which
// backend is active: the push backend forwards over live websocket
// connections, the poll backend leaves delivery to cursor-based list calls.
package delivery

import (
	"github.com/impservers/impchat/internal/domain"
)

// Channel receives every successfully appended message exactly once, in
// append order. Publish must not block on slow viewers.
type Channel interface {
	Publish(msg domain.Message)
}

// PollChannel is the pull-model backend. Viewers poll GET /messages with a
// since cursor, so there is nothing to forward; the cursor comparison on the
// client side suppresses duplicates.
type PollChannel struct{}

func NewPollChannel() *PollChannel {
	return &PollChannel{}
}

func (c *PollChannel) Publish(domain.Message) {}
