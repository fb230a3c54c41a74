package grpc

import (
	"context"
	"strings"

	"github.com/joslsmit/ratm-app/internal/auth"
	"github.com/joslsmit/ratm-app/internal/logger"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

// AuthorizationMetadataKey carries "Bearer <session id>", the same id the
// HTTP session cookie holds
const AuthorizationMetadataKey = "authorization"

// SessionResolver maps a login session id to its user
type SessionResolver interface {
	UserForSession(id string) (*auth.User, bool)
}

// Identity decides who a call acts as. A bearer session always wins. Without
// one, TrustUserMetadata lets x-user-id (or DefaultUserID) stand in, which is
// only safe in development.
type Identity struct {
	Sessions          SessionResolver
	TrustUserMetadata bool
}

// ServerOptions returns the interceptors that attach the caller's user to
// every unary and streaming call
func (id Identity) ServerOptions() []grpc.ServerOption {
	return []grpc.ServerOption{
		grpc.ChainUnaryInterceptor(id.UnaryInterceptor()),
		grpc.ChainStreamInterceptor(id.StreamInterceptor()),
	}
}

// UnaryInterceptor rejects unauthenticated unary calls
func (id Identity) UnaryInterceptor() grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
		user, err := id.resolve(ctx)
		if err != nil {
			logger.Warn("gRPC: Rejected call", "method", info.FullMethod, "error", err)
			return nil, err
		}
		return handler(auth.WithUser(ctx, user), req)
	}
}

// StreamInterceptor rejects unauthenticated streams
func (id Identity) StreamInterceptor() grpc.StreamServerInterceptor {
	return func(srv interface{}, ss grpc.ServerStream, info *grpc.StreamServerInfo, handler grpc.StreamHandler) error {
		user, err := id.resolve(ss.Context())
		if err != nil {
			logger.Warn("gRPC: Rejected stream", "method", info.FullMethod, "error", err)
			return err
		}
		return handler(srv, &userStream{ServerStream: ss, ctx: auth.WithUser(ss.Context(), user)})
	}
}

func (id Identity) resolve(ctx context.Context) (*auth.User, error) {
	md, _ := metadata.FromIncomingContext(ctx)

	if token := bearerToken(md); token != "" {
		if id.Sessions == nil {
			return nil, status.Error(codes.Unauthenticated, "session authentication not configured")
		}
		user, ok := id.Sessions.UserForSession(token)
		if !ok || user == nil || user.ID == "" {
			return nil, status.Error(codes.Unauthenticated, "invalid or expired session")
		}
		return user, nil
	}

	if !id.TrustUserMetadata {
		return nil, status.Error(codes.Unauthenticated, "authentication required")
	}
	userID := DefaultUserID
	if v := md.Get(UserMetadataKey); len(v) > 0 && v[0] != "" {
		userID = v[0]
	}
	return &auth.User{ID: userID}, nil
}

func bearerToken(md metadata.MD) string {
	v := md.Get(AuthorizationMetadataKey)
	if len(v) == 0 {
		return ""
	}
	token, ok := strings.CutPrefix(v[0], "Bearer ")
	if !ok {
		return ""
	}
	return strings.TrimSpace(token)
}

type userStream struct {
	grpc.ServerStream
	ctx context.Context
}

func (s *userStream) Context() context.Context {
	return s.ctx
}
