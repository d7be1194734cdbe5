package grpc

import (
	"context"
	"net"

	"google.golang.org/grpc"

	"github.com/DikaaDK/Chronos-sub000/internal/logging"
	"github.com/DikaaDK/Chronos-sub000/internal/realtime"
	"github.com/DikaaDK/Chronos-sub000/internal/server/relay"
)

type GRPCServer struct {
	address    string
	hub        *relay.Hub
	logger     logging.Logger
	jwtSecret  []byte
	publishKey string
}

func NewGRPCServer(a string, l logging.Logger, hub *relay.Hub, secretKey, publishKey string) *GRPCServer {
	return &GRPCServer{
		address:    a,
		logger:     l.With("module", "grpc_server"),
		hub:        hub,
		jwtSecret:  []byte(secretKey),
		publishKey: publishKey,
	}
}

func (s *GRPCServer) Run(ctx context.Context) error {

	// announces address
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}

	return s.Serve(ctx, listen)
}

// Serve runs the relay on an existing listener until ctx is canceled.
func (s *GRPCServer) Serve(ctx context.Context, listen net.Listener) error {
	srv := grpc.NewServer(
		grpc.ChainUnaryInterceptor(s.publishKeyInterceptor),
		grpc.ChainStreamInterceptor(s.accessTokenInterceptor),
	)

	realtime.RegisterChannelsServer(srv, s)

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping gRPC server...")
		srv.GracefulStop()
	}()

	s.logger.Info(ctx, "Starting gRPC server", "address", listen.Addr().String())

	// starts accepting incoming connections
	if err := srv.Serve(listen); err != nil {
		return err
	}

	return nil
}
