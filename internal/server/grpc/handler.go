package grpc

import (
	"context"
	"errors"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/DikaaDK/Chronos-sub000/internal/realtime"
	"github.com/DikaaDK/Chronos-sub000/internal/server/relay"
)

func (s *GRPCServer) Publish(ctx context.Context, req *structpb.Struct) (*emptypb.Empty, error) {

	channel, event, payload, err := realtime.ParsePublish(req)
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}

	n := s.hub.Publish(ctx, channel, relay.Message{Event: event, Payload: payload})
	s.logger.Debug(ctx, "Published", "channel", channel, "event", event, "delivered", n)

	return &emptypb.Empty{}, nil
}

func (s *GRPCServer) Subscribe(req *structpb.Struct, stream grpc.ServerStream) error {
	ctx := stream.Context()

	userID, ok := userIDFromContext(ctx)
	if !ok {
		return status.Error(codes.Unauthenticated, "unauthorized")
	}

	channel := realtime.ChannelOf(req)
	if err := relay.Authorize(channel, userID); err != nil {
		if errors.Is(err, relay.ErrChannelForbidden) {
			return status.Error(codes.PermissionDenied, err.Error())
		}
		return status.Error(codes.InvalidArgument, err.Error())
	}

	sub, unsubscribe := s.hub.Subscribe(channel)
	defer unsubscribe()

	s.logger.Info(ctx, "Subscribed", "channel", channel)
	defer s.logger.Info(ctx, "Unsubscribed", "channel", channel)

	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-sub.C():
			if !ok {
				return nil
			}
			if err := stream.SendMsg(realtime.Delivery(msg.Event, msg.Payload)); err != nil {
				return err
			}
		}
	}
}
