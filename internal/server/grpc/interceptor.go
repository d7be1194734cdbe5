package grpc

import (
	"context"
	"crypto/subtle"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	"github.com/DikaaDK/Chronos-sub000/internal/auth"
	"github.com/DikaaDK/Chronos-sub000/internal/realtime"
)

type ctxKey string

const userIDKey ctxKey = "userID"

func metadataValue(ctx context.Context, key string) string {
	if md, ok := metadata.FromIncomingContext(ctx); ok {
		if values := md.Get(key); len(values) > 0 {
			return values[0]
		}
	}
	return ""
}

func (s *GRPCServer) publishKeyInterceptor(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {

	if info.FullMethod == realtime.PublishMethod {
		key := metadataValue(ctx, realtime.PublishKeyKey)
		if key == "" {
			return nil, status.Error(codes.Unauthenticated, "missing publish key")
		}
		if subtle.ConstantTimeCompare([]byte(key), []byte(s.publishKey)) != 1 {
			return nil, status.Error(codes.PermissionDenied, "invalid publish key")
		}
	}

	return handler(ctx, req)
}

// authedStream overrides the stream context with one carrying the user id.
type authedStream struct {
	grpc.ServerStream
	ctx context.Context
}

func (s *authedStream) Context() context.Context { return s.ctx }

func (s *GRPCServer) accessTokenInterceptor(srv any, ss grpc.ServerStream, info *grpc.StreamServerInfo, handler grpc.StreamHandler) error {

	if info.FullMethod == realtime.SubscribeMethod {
		ctx := ss.Context()

		accessToken := metadataValue(ctx, realtime.AccessTokenKey)
		if accessToken == "" {
			return status.Error(codes.Unauthenticated, "missing token")
		}

		userID, err := auth.GetUserIDFromToken(accessToken, s.jwtSecret)
		if err != nil {
			return status.Error(codes.Unauthenticated, err.Error())
		}

		ss = &authedStream{ServerStream: ss, ctx: context.WithValue(ctx, userIDKey, userID)}
	}

	return handler(srv, ss)
}

func userIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(userIDKey).(string)
	return id, ok && id != ""
}
