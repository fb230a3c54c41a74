package fuzz

import (
	"context"
	"testing"

	"github.com/joslsmit/ratm-app/internal/auth"
	grpcserver "github.com/joslsmit/ratm-app/internal/grpc"
	"github.com/joslsmit/ratm-app/internal/kv"
	"github.com/joslsmit/ratm-app/internal/pubsub"
	"github.com/joslsmit/ratm-app/internal/session"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

func newServer() *grpcserver.Server {
	ps := pubsub.New()
	return grpcserver.NewServer(session.NewManager(kv.NewMemoryStore(), nil, ps), ps)
}

// userContext stands in for the identity interceptor
func userContext() context.Context {
	return auth.WithUser(context.Background(), &auth.User{ID: "fuzz"})
}

// FuzzGRPCSetRound fuzzes the gRPC SetRound endpoint
func FuzzGRPCSetRound(f *testing.F) {
	// Seed corpus
	f.Add(1.0, "Christian McCaffrey")
	f.Add(16.0, "invalid")
	f.Add(2.5, "")
	f.Add(-1e308, "x")

	f.Fuzz(func(t *testing.T, round float64, playerName string) {
		server := newServer()

		req, err := structpb.NewStruct(map[string]interface{}{"round": round, "playerName": playerName})
		if err != nil {
			t.Skip()
		}

		// Should not panic
		_, _ = server.SetRound(userContext(), req)
		_, _ = server.ClearRound(userContext(), req)
	})
}

// FuzzGRPCAddTarget fuzzes the gRPC AddTarget endpoint
func FuzzGRPCAddTarget(f *testing.F) {
	// Seed corpus
	f.Add("Justin Jefferson")
	f.Add("")
	f.Add(string(make([]byte, 10000)))

	f.Fuzz(func(t *testing.T, name string) {
		server := newServer()

		_, _ = server.AddTarget(userContext(), wrapperspb.String(name))
		_, _ = server.RemoveTarget(userContext(), wrapperspb.String(name))
	})
}
