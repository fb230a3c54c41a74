package grpc

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"

	"github.com/joslsmit/ratm-app/internal/auth"
	"github.com/joslsmit/ratm-app/internal/board"
	"github.com/joslsmit/ratm-app/internal/logger"
	"github.com/joslsmit/ratm-app/internal/pubsub"
	"github.com/joslsmit/ratm-app/internal/session"
	"github.com/joslsmit/ratm-app/internal/targets"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// UserMetadataKey carries the caller's user ID when Identity trusts it
const UserMetadataKey = "x-user-id"

// DefaultUserID is used when a trusted call carries no user metadata
const DefaultUserID = "dev"

// Server implements BoardServiceServer over the session manager. The caller's
// user must already be on the context, as Identity's interceptors put it.
type Server struct {
	sessions *session.Manager
	pubsub   *pubsub.PubSub
}

// NewServer creates a new gRPC server. ps may be nil, which disables StreamEvents.
func NewServer(sessions *session.Manager, ps *pubsub.PubSub) *Server {
	return &Server{
		sessions: sessions,
		pubsub:   ps,
	}
}

func userID(ctx context.Context) (string, error) {
	user := auth.UserFromContext(ctx)
	if user == nil || user.ID == "" {
		return "", status.Error(codes.Unauthenticated, "authentication required")
	}
	return user.ID, nil
}

func (s *Server) session(ctx context.Context) (*session.Session, error) {
	id, err := userID(ctx)
	if err != nil {
		return nil, err
	}
	return s.sessions.Get(id), nil
}

// GetBoard returns the caller's board view
func (s *Server) GetBoard(ctx context.Context, _ *emptypb.Empty) (*structpb.Struct, error) {
	sess, err := s.session(ctx)
	if err != nil {
		return nil, err
	}
	logger.Debug("gRPC: Getting board", "user", sess.UserID)
	return toStruct(sess.View())
}

// SetRound overwrites one round. The request carries "round" and "playerName".
func (s *Server) SetRound(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	round, err := roundField(req)
	if err != nil {
		return nil, err
	}
	name := req.GetFields()["playerName"].GetStringValue()

	sess, err := s.session(ctx)
	if err != nil {
		return nil, err
	}
	logger.Info("gRPC: Setting round", "user", sess.UserID, "round", round, "player", name)
	if err := sess.Board.Set(round, name); err != nil {
		return nil, toStatus(err)
	}
	return toStruct(sess.View())
}

// ClearRound empties the round named by "round"
func (s *Server) ClearRound(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	round, err := roundField(req)
	if err != nil {
		return nil, err
	}

	sess, err := s.session(ctx)
	if err != nil {
		return nil, err
	}
	if err := sess.Editor.Clear(round); err != nil {
		return nil, toStatus(err)
	}
	return toStruct(sess.View())
}

// ResetBoard empties every round
func (s *Server) ResetBoard(ctx context.Context, _ *emptypb.Empty) (*emptypb.Empty, error) {
	sess, err := s.session(ctx)
	if err != nil {
		return nil, err
	}
	logger.Info("gRPC: Resetting board", "user", sess.UserID)
	sess.Editor.Reset()
	if err := sess.Board.ResetAll(); err != nil {
		return nil, toStatus(err)
	}
	return &emptypb.Empty{}, nil
}

// GetComposition returns per-position counts
func (s *Server) GetComposition(ctx context.Context, _ *emptypb.Empty) (*structpb.Struct, error) {
	sess, err := s.session(ctx)
	if err != nil {
		return nil, err
	}
	return toStruct(sess.Composition())
}

// ListTargets returns the target list in insertion order
func (s *Server) ListTargets(ctx context.Context, _ *emptypb.Empty) (*structpb.ListValue, error) {
	sess, err := s.session(ctx)
	if err != nil {
		return nil, err
	}
	return namesList(sess.Targets.Names())
}

// AddTarget adds a player to the target list
func (s *Server) AddTarget(ctx context.Context, req *wrapperspb.StringValue) (*structpb.ListValue, error) {
	sess, err := s.session(ctx)
	if err != nil {
		return nil, err
	}
	if _, err := sess.AddTarget(req.GetValue()); err != nil {
		return nil, toStatus(err)
	}
	return namesList(sess.Targets.Names())
}

// RemoveTarget removes a player from the target list
func (s *Server) RemoveTarget(ctx context.Context, req *wrapperspb.StringValue) (*structpb.ListValue, error) {
	sess, err := s.session(ctx)
	if err != nil {
		return nil, err
	}
	if _, err := sess.RemoveTarget(req.GetValue()); err != nil {
		return nil, toStatus(err)
	}
	return namesList(sess.Targets.Names())
}

// StreamEvents streams the caller's events. The first message has type "connected".
func (s *Server) StreamEvents(_ *emptypb.Empty, stream grpc.ServerStream) error {
	if s.pubsub == nil {
		return status.Error(codes.Unavailable, "events not available")
	}

	user, err := userID(stream.Context())
	if err != nil {
		return err
	}
	logger.Debug("gRPC: New client connected to event stream", "user", user)
	eventChan := s.pubsub.Subscribe()
	defer s.pubsub.Unsubscribe(eventChan)

	hello, err := structpb.NewStruct(map[string]interface{}{"type": "connected", "userId": user})
	if err != nil {
		return status.Error(codes.Internal, err.Error())
	}
	if err := stream.SendMsg(hello); err != nil {
		return err
	}

	for {
		select {
		case event, ok := <-eventChan:
			if !ok {
				return nil
			}
			if event.UserID != user {
				continue
			}
			msg, err := toStruct(event)
			if err != nil {
				logger.Error("gRPC: Failed to convert event", "error", err)
				continue
			}
			if err := stream.SendMsg(msg); err != nil {
				logger.Error("gRPC: Failed to send event to stream", "error", err)
				return err
			}
		case <-stream.Context().Done():
			logger.Debug("gRPC: Client disconnected from event stream", "user", user)
			return nil
		}
	}
}

func roundField(req *structpb.Struct) (int, error) {
	v, ok := req.GetFields()["round"]
	if !ok {
		return 0, status.Error(codes.InvalidArgument, "round is required")
	}
	n := v.GetNumberValue()
	if n != math.Trunc(n) {
		return 0, status.Errorf(codes.InvalidArgument, "round must be a whole number, got %v", n)
	}
	return int(n), nil
}

// toStruct converts any JSON-encodable value into a Struct
func toStruct(v interface{}) (*structpb.Struct, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, status.Error(codes.Internal, err.Error())
	}
	var m map[string]interface{}
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, status.Error(codes.Internal, err.Error())
	}
	out, err := structpb.NewStruct(m)
	if err != nil {
		return nil, status.Error(codes.Internal, err.Error())
	}
	return out, nil
}

func namesList(names []string) (*structpb.ListValue, error) {
	values := make([]interface{}, len(names))
	for i, n := range names {
		values[i] = n
	}
	out, err := structpb.NewList(values)
	if err != nil {
		return nil, status.Error(codes.Internal, err.Error())
	}
	return out, nil
}

func toStatus(err error) error {
	switch {
	case errors.Is(err, board.ErrInvalidRound), errors.Is(err, targets.ErrEmptyName):
		return status.Error(codes.InvalidArgument, err.Error())
	default:
		logger.Error("gRPC: Request failed", "error", err)
		return status.Error(codes.Internal, fmt.Sprintf("request failed: %v", err))
	}
}
