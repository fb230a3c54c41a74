package grpc

import (
	"context"
	"errors"
	"fmt"
	"io"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// Client calls BoardService as a single user
type Client struct {
	conn      *grpc.ClientConn
	userID    string
	sessionID string
}

// Dial connects to target without transport security, naming the user in
// x-user-id metadata. Only development servers trust that. Extra options are
// appended after the defaults.
func Dial(target, userID string, opts ...grpc.DialOption) (*Client, error) {
	conn, err := dial(target, opts)
	if err != nil {
		return nil, err
	}
	return &Client{conn: conn, userID: userID}, nil
}

// DialSession connects to target and authenticates every call with a login
// session id, the value of the HTTP session cookie
func DialSession(target, sessionID string, opts ...grpc.DialOption) (*Client, error) {
	conn, err := dial(target, opts)
	if err != nil {
		return nil, err
	}
	return &Client{conn: conn, sessionID: sessionID}, nil
}

func dial(target string, opts []grpc.DialOption) (*grpc.ClientConn, error) {
	opts = append([]grpc.DialOption{grpc.WithTransportCredentials(insecure.NewCredentials())}, opts...)
	conn, err := grpc.NewClient(target, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create gRPC client: %w", err)
	}
	return conn, nil
}

// Close closes the underlying connection
func (c *Client) Close() error {
	return c.conn.Close()
}

func (c *Client) outgoing(ctx context.Context) context.Context {
	if c.sessionID != "" {
		ctx = metadata.AppendToOutgoingContext(ctx, AuthorizationMetadataKey, "Bearer "+c.sessionID)
	}
	if c.userID != "" {
		ctx = metadata.AppendToOutgoingContext(ctx, UserMetadataKey, c.userID)
	}
	return ctx
}

// GetBoard returns the board view
func (c *Client) GetBoard(ctx context.Context) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	err := c.conn.Invoke(c.outgoing(ctx), fullMethod("GetBoard"), &emptypb.Empty{}, out)
	return out, err
}

// SetRound overwrites one round and returns the new board view
func (c *Client) SetRound(ctx context.Context, round int, playerName string) (*structpb.Struct, error) {
	in, err := structpb.NewStruct(map[string]interface{}{"round": round, "playerName": playerName})
	if err != nil {
		return nil, err
	}
	out := new(structpb.Struct)
	err = c.conn.Invoke(c.outgoing(ctx), fullMethod("SetRound"), in, out)
	return out, err
}

// ClearRound empties one round and returns the new board view
func (c *Client) ClearRound(ctx context.Context, round int) (*structpb.Struct, error) {
	in, err := structpb.NewStruct(map[string]interface{}{"round": round})
	if err != nil {
		return nil, err
	}
	out := new(structpb.Struct)
	err = c.conn.Invoke(c.outgoing(ctx), fullMethod("ClearRound"), in, out)
	return out, err
}

// ResetBoard empties every round
func (c *Client) ResetBoard(ctx context.Context) error {
	return c.conn.Invoke(c.outgoing(ctx), fullMethod("ResetBoard"), &emptypb.Empty{}, new(emptypb.Empty))
}

// GetComposition returns per-position counts
func (c *Client) GetComposition(ctx context.Context) (map[string]int, error) {
	out := new(structpb.Struct)
	if err := c.conn.Invoke(c.outgoing(ctx), fullMethod("GetComposition"), &emptypb.Empty{}, out); err != nil {
		return nil, err
	}
	counts := make(map[string]int, len(out.GetFields()))
	for pos, v := range out.GetFields() {
		counts[pos] = int(v.GetNumberValue())
	}
	return counts, nil
}

// ListTargets returns the target list
func (c *Client) ListTargets(ctx context.Context) ([]string, error) {
	return c.names(ctx, "ListTargets", &emptypb.Empty{})
}

// AddTarget adds a player and returns the updated list
func (c *Client) AddTarget(ctx context.Context, name string) ([]string, error) {
	return c.names(ctx, "AddTarget", wrapperspb.String(name))
}

// RemoveTarget removes a player and returns the updated list
func (c *Client) RemoveTarget(ctx context.Context, name string) ([]string, error) {
	return c.names(ctx, "RemoveTarget", wrapperspb.String(name))
}

func (c *Client) names(ctx context.Context, method string, in interface{}) ([]string, error) {
	out := new(structpb.ListValue)
	if err := c.conn.Invoke(c.outgoing(ctx), fullMethod(method), in, out); err != nil {
		return nil, err
	}
	names := make([]string, 0, len(out.GetValues()))
	for _, v := range out.GetValues() {
		names = append(names, v.GetStringValue())
	}
	return names, nil
}

// EventStream receives events from StreamEvents
type EventStream struct {
	stream grpc.ClientStream
}

// Recv blocks for the next event
func (s *EventStream) Recv() (*structpb.Struct, error) {
	msg := new(structpb.Struct)
	if err := s.stream.RecvMsg(msg); err != nil {
		return nil, err
	}
	return msg, nil
}

// StreamEvents opens an event stream. Cancel ctx to close it.
func (c *Client) StreamEvents(ctx context.Context) (*EventStream, error) {
	stream, err := c.conn.NewStream(c.outgoing(ctx), &ServiceDesc.Streams[0], fullMethod("StreamEvents"))
	if err != nil {
		return nil, err
	}
	// io.EOF means the server already ended the stream; Recv reports its status
	if err := stream.SendMsg(&emptypb.Empty{}); err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}
	if err := stream.CloseSend(); err != nil {
		return nil, err
	}
	return &EventStream{stream: stream}, nil
}
