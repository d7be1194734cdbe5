// Package realtime defines the gRPC contract of the journal change relay.
//
// The service is described by hand instead of generated code: every message
// is a google.protobuf.Struct, so the contract is the set of keys below.
//
//	Subscribe  {channel}                  -> stream {event, payload}
//	Publish    {channel, event, payload}  -> google.protobuf.Empty
package realtime

import (
	"context"
	"errors"
	"io"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
)

const (
	ServiceName     = "chronos.realtime.Channels"
	SubscribeMethod = "/" + ServiceName + "/Subscribe"
	PublishMethod   = "/" + ServiceName + "/Publish"

	// AccessTokenKey carries the subscriber's bearer token in request metadata.
	AccessTokenKey = "access_token"
	// PublishKeyKey carries the backend's publish key in request metadata.
	PublishKeyKey = "publish_key"
)

// ChannelsServer is implemented by the relay.
type ChannelsServer interface {
	Subscribe(req *structpb.Struct, stream grpc.ServerStream) error
	Publish(ctx context.Context, req *structpb.Struct) (*emptypb.Empty, error)
}

// ServiceDesc describes the Channels service for grpc.Server registration and
// for client stream construction.
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*ChannelsServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Publish", Handler: publishHandler},
	},
	Streams: []grpc.StreamDesc{
		{StreamName: "Subscribe", Handler: subscribeHandler, ServerStreams: true},
	},
	Metadata: "chronos/realtime/channels.proto",
}

// RegisterChannelsServer registers srv on s.
func RegisterChannelsServer(s grpc.ServiceRegistrar, srv ChannelsServer) {
	s.RegisterService(&ServiceDesc, srv)
}

func publishHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(ChannelsServer).Publish(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: PublishMethod}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(ChannelsServer).Publish(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, in, info, handler)
}

func subscribeHandler(srv any, stream grpc.ServerStream) error {
	in := new(structpb.Struct)
	if err := stream.RecvMsg(in); err != nil {
		return err
	}
	return srv.(ChannelsServer).Subscribe(in, stream)
}

// Publish invokes the unary Publish method over conn.
func Publish(ctx context.Context, conn grpc.ClientConnInterface, req *structpb.Struct, opts ...grpc.CallOption) error {
	return conn.Invoke(ctx, PublishMethod, req, new(emptypb.Empty), opts...)
}

// Stream is the client side of a Subscribe call.
type Stream struct {
	cs grpc.ClientStream
}

// OpenStream starts a Subscribe call for channel. The stream ends when ctx is
// canceled or the server closes it.
func OpenStream(ctx context.Context, conn grpc.ClientConnInterface, channel string, opts ...grpc.CallOption) (*Stream, error) {
	cs, err := conn.NewStream(ctx, &ServiceDesc.Streams[0], SubscribeMethod, opts...)
	if err != nil {
		return nil, err
	}
	// io.EOF means the server already ended the call; Recv reports its status.
	if err := cs.SendMsg(SubscribeRequest(channel)); err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}
	if err := cs.CloseSend(); err != nil {
		return nil, err
	}
	return &Stream{cs: cs}, nil
}

// Recv blocks for the next delivery.
func (s *Stream) Recv() (*structpb.Struct, error) {
	msg := new(structpb.Struct)
	if err := s.cs.RecvMsg(msg); err != nil {
		return nil, err
	}
	return msg, nil
}
