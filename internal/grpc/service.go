package grpc

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// ServiceName is the fully qualified gRPC service name
const ServiceName = "draftkit.v1.BoardService"

// BoardServiceServer is the server API for the board service. Messages are
// protobuf well-known types so no generated code is needed.
type BoardServiceServer interface {
	GetBoard(context.Context, *emptypb.Empty) (*structpb.Struct, error)
	SetRound(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ClearRound(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ResetBoard(context.Context, *emptypb.Empty) (*emptypb.Empty, error)
	GetComposition(context.Context, *emptypb.Empty) (*structpb.Struct, error)
	ListTargets(context.Context, *emptypb.Empty) (*structpb.ListValue, error)
	AddTarget(context.Context, *wrapperspb.StringValue) (*structpb.ListValue, error)
	RemoveTarget(context.Context, *wrapperspb.StringValue) (*structpb.ListValue, error)
	StreamEvents(*emptypb.Empty, grpc.ServerStream) error
}

// ServiceDesc describes BoardService for grpc.Server.RegisterService
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*BoardServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		unary("GetBoard", newEmpty, BoardServiceServer.GetBoard),
		unary("SetRound", newStruct, BoardServiceServer.SetRound),
		unary("ClearRound", newStruct, BoardServiceServer.ClearRound),
		unary("ResetBoard", newEmpty, BoardServiceServer.ResetBoard),
		unary("GetComposition", newEmpty, BoardServiceServer.GetComposition),
		unary("ListTargets", newEmpty, BoardServiceServer.ListTargets),
		unary("AddTarget", newString, BoardServiceServer.AddTarget),
		unary("RemoveTarget", newString, BoardServiceServer.RemoveTarget),
	},
	Streams: []grpc.StreamDesc{
		{
			StreamName:    "StreamEvents",
			ServerStreams: true,
			Handler: func(srv interface{}, stream grpc.ServerStream) error {
				in := new(emptypb.Empty)
				if err := stream.RecvMsg(in); err != nil {
					return err
				}
				return srv.(BoardServiceServer).StreamEvents(in, stream)
			},
		},
	},
	Metadata: "draftkit/v1/board.proto",
}

// RegisterBoardServiceServer registers srv on s
func RegisterBoardServiceServer(s grpc.ServiceRegistrar, srv BoardServiceServer) {
	s.RegisterService(&ServiceDesc, srv)
}

func fullMethod(name string) string {
	return "/" + ServiceName + "/" + name
}

func newEmpty() *emptypb.Empty           { return new(emptypb.Empty) }
func newStruct() *structpb.Struct        { return new(structpb.Struct) }
func newString() *wrapperspb.StringValue { return new(wrapperspb.StringValue) }

func unary[Req, Resp proto.Message](name string, newReq func() Req, call func(BoardServiceServer, context.Context, Req) (Resp, error)) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: name,
		Handler: func(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
			in := newReq()
			if err := dec(in); err != nil {
				return nil, err
			}
			server := srv.(BoardServiceServer)
			if interceptor == nil {
				return call(server, ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod(name)}
			handler := func(ctx context.Context, req interface{}) (interface{}, error) {
				return call(server, ctx, req.(Req))
			}
			return interceptor(ctx, in, info, handler)
		},
	}
}
