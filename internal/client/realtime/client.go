// Package realtime subscribes the client to its private journal channel on
// the relay and hands every decoded change to a callback.
package realtime

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	"github.com/DikaaDK/Chronos-sub000/internal/journal"
	"github.com/DikaaDK/Chronos-sub000/internal/logging"
	contract "github.com/DikaaDK/Chronos-sub000/internal/realtime"
)

// Handler receives events in delivery order on the subscription goroutine.
type Handler func(name string, ev journal.Event)

type Client struct {
	conn      *grpc.ClientConn
	reconnect time.Duration
	logger    logging.Logger
}

// New prepares a client for the relay at addr. No connection is made until
// the first Subscribe.
func New(addr string, reconnect time.Duration, l logging.Logger, opts ...grpc.DialOption) (*Client, error) {
	opts = append([]grpc.DialOption{grpc.WithTransportCredentials(insecure.NewCredentials())}, opts...)
	conn, err := grpc.NewClient(addr, opts...)
	if err != nil {
		return nil, fmt.Errorf("realtime client: %w", err)
	}
	if reconnect <= 0 {
		reconnect = time.Second
	}
	return &Client{conn: conn, reconnect: reconnect, logger: l.With("module", "realtime")}, nil
}

func (c *Client) Close() error {
	return c.conn.Close()
}

func withAccessToken(ctx context.Context, token string) context.Context {
	md, _ := metadata.FromOutgoingContext(ctx)
	md = md.Copy()
	if md == nil {
		md = metadata.MD{}
	}
	md.Set(contract.AccessTokenKey, token)
	return metadata.NewOutgoingContext(ctx, md)
}

// Subscription is a running subscription to one user's channel.
type Subscription struct {
	channel string
	cancel  context.CancelFunc
	done    chan struct{}

	mu  sync.Mutex
	err error
}

func (s *Subscription) Channel() string { return s.channel }

// Done is closed when the subscription goroutine has exited.
func (s *Subscription) Done() <-chan struct{} { return s.done }

// Err returns the error that ended the subscription, or nil if it was closed.
func (s *Subscription) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// Close stops the subscription and waits for its goroutine. It is safe to
// call more than once.
func (s *Subscription) Close() {
	s.cancel()
	<-s.done
}

// Subscribe listens on userID's private channel until the subscription is
// closed or ctx ends. Dropped streams are reopened after the reconnect
// interval; a rejected token or channel ends the subscription.
func (c *Client) Subscribe(ctx context.Context, userID, token string, h Handler) (*Subscription, error) {
	if userID == "" {
		return nil, ErrNoUserID
	}
	if h == nil {
		return nil, ErrNoHandler
	}

	ctx, cancel := context.WithCancel(withAccessToken(ctx, token))
	sub := &Subscription{
		channel: contract.ChannelFor(userID),
		cancel:  cancel,
		done:    make(chan struct{}),
	}
	go c.run(ctx, sub, h)
	return sub, nil
}

func (c *Client) run(ctx context.Context, sub *Subscription, h Handler) {
	defer close(sub.done)
	logger := c.logger.With("channel", sub.channel)

	for {
		err := c.listen(ctx, sub.channel, h)
		if ctx.Err() != nil {
			return
		}
		if fatal(err) {
			logger.Error(ctx, "subscription rejected", "error", err)
			sub.mu.Lock()
			sub.err = err
			sub.mu.Unlock()
			return
		}
		logger.Warn(ctx, "stream dropped, reconnecting", "error", err, "after", c.reconnect)

		t := time.NewTimer(c.reconnect)
		select {
		case <-ctx.Done():
			t.Stop()
			return
		case <-t.C:
		}
	}
}

func (c *Client) listen(ctx context.Context, channel string, h Handler) error {
	stream, err := contract.OpenStream(ctx, c.conn, channel)
	if err != nil {
		return err
	}
	for {
		msg, err := stream.Recv()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return io.ErrUnexpectedEOF
			}
			return err
		}
		h(contract.DecodeDelivery(msg))
	}
}

func fatal(err error) bool {
	switch status.Code(err) {
	case codes.Unauthenticated, codes.PermissionDenied, codes.InvalidArgument:
		return true
	}
	return false
}
