package realtime

import (
	"context"
	"net"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/DikaaDK/Chronos-sub000/internal/auth"
	"github.com/DikaaDK/Chronos-sub000/internal/journal"
	"github.com/DikaaDK/Chronos-sub000/internal/logging"
	contract "github.com/DikaaDK/Chronos-sub000/internal/realtime"
	relaygrpc "github.com/DikaaDK/Chronos-sub000/internal/server/grpc"
	"github.com/DikaaDK/Chronos-sub000/internal/server/relay"
)

const (
	testSecret     = "secret"
	testPublishKey = "publish-key"
)

func bufDialer(lis *bufconn.Listener) grpc.DialOption {
	return grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
		return lis.DialContext(ctx)
	})
}

func newClient(t *testing.T, lis *bufconn.Listener) *Client {
	t.Helper()
	c, err := New("passthrough:///bufnet", 20*time.Millisecond, logging.Nop{}, bufDialer(lis))
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	return c
}

type recorder struct {
	mu     sync.Mutex
	events []journal.Event
}

func (r *recorder) handle(_ string, ev journal.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
}

func (r *recorder) snapshot() []journal.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]journal.Event(nil), r.events...)
}

func TestSubscribe_ReceivesFromRelay(t *testing.T) {
	lis := bufconn.Listen(1 << 20)
	hub := relay.NewHub(8, logging.Nop{})
	srv := relaygrpc.NewGRPCServer("bufnet", logging.Nop{}, hub, testSecret, testPublishKey)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = srv.Serve(ctx, lis) }()

	c := newClient(t, lis)
	token, err := auth.GenerateToken("4", []byte(testSecret), time.Hour)
	require.NoError(t, err)

	rec := &recorder{}
	sub, err := c.Subscribe(context.Background(), "4", token, rec.handle)
	require.NoError(t, err)
	defer sub.Close()
	assert.Equal(t, "private-journals.4", sub.Channel())

	require.Eventually(t, func() bool { return hub.Subscribers(sub.Channel()) == 1 }, 2*time.Second, 10*time.Millisecond)

	req, err := contract.PublishRequest(sub.Channel(), journal.Event{Action: journal.ActionDeleted, Journal: &journal.Entry{ID: "7"}})
	require.NoError(t, err)
	pubCtx := metadata.AppendToOutgoingContext(context.Background(), contract.PublishKeyKey, testPublishKey)
	require.NoError(t, contract.Publish(pubCtx, c.conn, req))

	require.Eventually(t, func() bool { return len(rec.snapshot()) == 1 }, 2*time.Second, 10*time.Millisecond)
	got := rec.snapshot()[0]
	assert.Equal(t, journal.ActionDeleted, got.Action)
	assert.Equal(t, journal.ID("7"), got.Journal.ID)

	sub.Close()
	require.Eventually(t, func() bool { return hub.Subscribers(sub.Channel()) == 0 }, 2*time.Second, 10*time.Millisecond)
	assert.NoError(t, sub.Err())
}

// flakyServer fails the first Subscribe call and serves one event on the next.
type flakyServer struct {
	calls  atomic.Int32
	tokens chan string
	reject codes.Code
}

func (f *flakyServer) Subscribe(req *structpb.Struct, stream grpc.ServerStream) error {
	md, _ := metadata.FromIncomingContext(stream.Context())
	if v := md.Get(contract.AccessTokenKey); len(v) > 0 {
		select {
		case f.tokens <- v[0]:
		default:
		}
	}
	if f.reject != codes.OK {
		return status.Error(f.reject, "rejected")
	}
	if f.calls.Add(1) == 1 {
		return status.Error(codes.Unavailable, "going away")
	}
	payload, err := contract.EncodeEvent(journal.Event{Action: journal.ActionCreated, Journal: &journal.Entry{ID: "1", Title: "again"}})
	if err != nil {
		return err
	}
	if err := stream.SendMsg(contract.Delivery(journal.EventName, payload)); err != nil {
		return err
	}
	<-stream.Context().Done()
	return nil
}

func (f *flakyServer) Publish(context.Context, *structpb.Struct) (*emptypb.Empty, error) {
	return &emptypb.Empty{}, nil
}

func startFake(t *testing.T, f *flakyServer) *bufconn.Listener {
	t.Helper()
	lis := bufconn.Listen(1 << 20)
	s := grpc.NewServer()
	contract.RegisterChannelsServer(s, f)
	go func() { _ = s.Serve(lis) }()
	t.Cleanup(s.Stop)
	return lis
}

func TestSubscribe_ReconnectsAfterDrop(t *testing.T) {
	f := &flakyServer{tokens: make(chan string, 4)}
	c := newClient(t, startFake(t, f))

	rec := &recorder{}
	sub, err := c.Subscribe(context.Background(), "1", "tok", rec.handle)
	require.NoError(t, err)
	defer sub.Close()

	require.Eventually(t, func() bool { return len(rec.snapshot()) == 1 }, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, "again", rec.snapshot()[0].Journal.Title)
	assert.GreaterOrEqual(t, f.calls.Load(), int32(2))
	assert.Equal(t, "tok", <-f.tokens)
}

func TestSubscribe_RejectedEndsSubscription(t *testing.T) {
	f := &flakyServer{tokens: make(chan string, 1), reject: codes.PermissionDenied}
	c := newClient(t, startFake(t, f))

	sub, err := c.Subscribe(context.Background(), "1", "tok", func(string, journal.Event) {})
	require.NoError(t, err)

	select {
	case <-sub.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("subscription did not stop")
	}
	assert.Equal(t, codes.PermissionDenied, status.Code(sub.Err()))
	sub.Close()
}

func TestSubscribe_Validation(t *testing.T) {
	c := newClient(t, bufconn.Listen(1024))

	_, err := c.Subscribe(context.Background(), "", "tok", func(string, journal.Event) {})
	assert.ErrorIs(t, err, ErrNoUserID)
	_, err = c.Subscribe(context.Background(), "1", "tok", nil)
	assert.ErrorIs(t, err, ErrNoHandler)
}

func TestSubscription_CloseWaitsAndIsIdempotent(t *testing.T) {
	f := &flakyServer{tokens: make(chan string, 4)}
	c := newClient(t, startFake(t, f))

	sub, err := c.Subscribe(context.Background(), "1", "tok", func(string, journal.Event) {})
	require.NoError(t, err)

	sub.Close()
	select {
	case <-sub.Done():
	default:
		t.Fatal("Close returned before the goroutine exited")
	}
	sub.Close()
}

func TestWithAccessTokenReplaces(t *testing.T) {
	ctx := metadata.AppendToOutgoingContext(context.Background(), contract.AccessTokenKey, "old", "x", "y")
	md, _ := metadata.FromOutgoingContext(withAccessToken(ctx, "new"))
	assert.Equal(t, []string{"new"}, md.Get(contract.AccessTokenKey))
	assert.Equal(t, []string{"y"}, md.Get("x"))
}
