// Package relay fans published journal events out to channel subscribers.
// It keeps no history: a subscriber only sees events published while it is
// attached.
package relay

import (
	"context"
	"sync"

	"google.golang.org/protobuf/types/known/structpb"

	"github.com/DikaaDK/Chronos-sub000/internal/logging"
	"github.com/DikaaDK/Chronos-sub000/internal/realtime"
)

// Message is one event delivered on a channel.
type Message struct {
	Event   string
	Payload *structpb.Struct
}

// Subscriber receives the messages of one channel.
type Subscriber struct {
	channel string
	ch      chan Message
}

// C returns the delivery channel. It is closed on unsubscribe.
func (s *Subscriber) C() <-chan Message { return s.ch }

// Channel returns the channel name the subscriber is attached to.
func (s *Subscriber) Channel() string { return s.channel }

// Hub routes messages by channel name.
type Hub struct {
	mu       sync.Mutex
	channels map[string]map[*Subscriber]struct{}
	buffer   int
	logger   logging.Logger
}

// NewHub returns a hub whose subscribers buffer up to buffer messages. A full
// buffer drops further messages for that subscriber.
func NewHub(buffer int, l logging.Logger) *Hub {
	if buffer < 1 {
		buffer = 1
	}
	return &Hub{
		channels: make(map[string]map[*Subscriber]struct{}),
		buffer:   buffer,
		logger:   l.With("module", "relay_hub"),
	}
}

// Authorize checks that userID owns channel.
func Authorize(channel, userID string) error {
	owner, ok := realtime.UserOf(channel)
	if !ok {
		return ErrInvalidChannel
	}
	if owner != userID {
		return ErrChannelForbidden
	}
	return nil
}

// Subscribe attaches a new subscriber to channel. The returned function
// detaches it and is safe to call more than once.
func (h *Hub) Subscribe(channel string) (*Subscriber, func()) {
	sub := &Subscriber{channel: channel, ch: make(chan Message, h.buffer)}

	h.mu.Lock()
	subs, ok := h.channels[channel]
	if !ok {
		subs = make(map[*Subscriber]struct{})
		h.channels[channel] = subs
	}
	subs[sub] = struct{}{}
	h.mu.Unlock()

	var once sync.Once
	return sub, func() {
		once.Do(func() { h.remove(sub) })
	}
}

func (h *Hub) remove(sub *Subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()

	subs := h.channels[sub.channel]
	delete(subs, sub)
	if len(subs) == 0 {
		delete(h.channels, sub.channel)
	}
	close(sub.ch)
}

// Publish delivers msg to every subscriber of channel and returns how many
// accepted it.
func (h *Hub) Publish(ctx context.Context, channel string, msg Message) int {
	h.mu.Lock()
	defer h.mu.Unlock()

	delivered := 0
	for sub := range h.channels[channel] {
		select {
		case sub.ch <- msg:
			delivered++
		default:
			h.logger.Warn(ctx, "subscriber buffer full, dropping event", "channel", channel, "event", msg.Event)
		}
	}
	return delivered
}

// Subscribers returns the number of subscribers attached to channel.
func (h *Hub) Subscribers(channel string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.channels[channel])
}
