package syncpb

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
)

const ServiceName = "babylog.sync.v1.SyncService"

const (
	CreateProfileFullMethod  = "/" + ServiceName + "/CreateProfile"
	PushEntriesFullMethod    = "/" + ServiceName + "/PushEntries"
	PullEntriesFullMethod    = "/" + ServiceName + "/PullEntries"
	PhotoUploadURLFullMethod = "/" + ServiceName + "/PhotoUploadURL"
	PingFullMethod           = "/" + ServiceName + "/Ping"
	WatchFullMethod          = "/" + ServiceName + "/Watch"
)

// WatchStream is the server side of the Watch stream.
type WatchStream = grpc.ServerStreamingServer[structpb.Struct]

// SyncServiceServer is implemented by the sync server.
type SyncServiceServer interface {
	CreateProfile(context.Context, *structpb.Struct) (*structpb.Struct, error)
	PushEntries(context.Context, *structpb.Struct) (*structpb.Struct, error)
	PullEntries(context.Context, *structpb.Struct) (*structpb.Struct, error)
	PhotoUploadURL(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Ping(context.Context, *emptypb.Empty) (*structpb.Struct, error)
	Watch(*structpb.Struct, WatchStream) error
}

// UnimplementedSyncServiceServer answers codes.Unimplemented for every method.
type UnimplementedSyncServiceServer struct{}

func (UnimplementedSyncServiceServer) CreateProfile(context.Context, *structpb.Struct) (*structpb.Struct, error) {
	return nil, status.Error(codes.Unimplemented, "method CreateProfile not implemented")
}
func (UnimplementedSyncServiceServer) PushEntries(context.Context, *structpb.Struct) (*structpb.Struct, error) {
	return nil, status.Error(codes.Unimplemented, "method PushEntries not implemented")
}
func (UnimplementedSyncServiceServer) PullEntries(context.Context, *structpb.Struct) (*structpb.Struct, error) {
	return nil, status.Error(codes.Unimplemented, "method PullEntries not implemented")
}
func (UnimplementedSyncServiceServer) PhotoUploadURL(context.Context, *structpb.Struct) (*structpb.Struct, error) {
	return nil, status.Error(codes.Unimplemented, "method PhotoUploadURL not implemented")
}
func (UnimplementedSyncServiceServer) Ping(context.Context, *emptypb.Empty) (*structpb.Struct, error) {
	return nil, status.Error(codes.Unimplemented, "method Ping not implemented")
}
func (UnimplementedSyncServiceServer) Watch(*structpb.Struct, WatchStream) error {
	return status.Error(codes.Unimplemented, "method Watch not implemented")
}

// RegisterSyncServiceServer attaches srv to s.
func RegisterSyncServiceServer(s grpc.ServiceRegistrar, srv SyncServiceServer) {
	s.RegisterService(&ServiceDesc, srv)
}

type structMethod func(SyncServiceServer, context.Context, *structpb.Struct) (*structpb.Struct, error)

func structHandler(fullMethod string, call structMethod) grpc.MethodHandler {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(structpb.Struct)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(SyncServiceServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(SyncServiceServer), ctx, req.(*structpb.Struct))
		}
		return interceptor(ctx, in, info, handler)
	}
}

func pingHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(emptypb.Empty)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(SyncServiceServer).Ping(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: PingFullMethod}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(SyncServiceServer).Ping(ctx, req.(*emptypb.Empty))
	}
	return interceptor(ctx, in, info, handler)
}

func watchHandler(srv any, stream grpc.ServerStream) error {
	in := new(structpb.Struct)
	if err := stream.RecvMsg(in); err != nil {
		return err
	}
	return srv.(SyncServiceServer).Watch(in, &grpc.GenericServerStream[structpb.Struct, structpb.Struct]{ServerStream: stream})
}

// ServiceDesc describes babylog.sync.v1.SyncService.
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*SyncServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "CreateProfile",
			Handler: structHandler(CreateProfileFullMethod, func(s SyncServiceServer, ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
				return s.CreateProfile(ctx, in)
			}),
		},
		{
			MethodName: "PushEntries",
			Handler: structHandler(PushEntriesFullMethod, func(s SyncServiceServer, ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
				return s.PushEntries(ctx, in)
			}),
		},
		{
			MethodName: "PullEntries",
			Handler: structHandler(PullEntriesFullMethod, func(s SyncServiceServer, ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
				return s.PullEntries(ctx, in)
			}),
		},
		{
			MethodName: "PhotoUploadURL",
			Handler: structHandler(PhotoUploadURLFullMethod, func(s SyncServiceServer, ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
				return s.PhotoUploadURL(ctx, in)
			}),
		},
		{
			MethodName: "Ping",
			Handler:    pingHandler,
		},
	},
	Streams: []grpc.StreamDesc{
		{
			StreamName:    "Watch",
			Handler:       watchHandler,
			ServerStreams: true,
		},
	},
	Metadata: "babylog/sync/v1/sync.proto",
}

// SyncServiceClient is the client side of the contract.
type SyncServiceClient struct {
	cc grpc.ClientConnInterface
}

func NewSyncServiceClient(cc grpc.ClientConnInterface) *SyncServiceClient {
	return &SyncServiceClient{cc: cc}
}

func (c *SyncServiceClient) invoke(ctx context.Context, method string, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, method, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *SyncServiceClient) CreateProfile(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, CreateProfileFullMethod, in, opts...)
}

func (c *SyncServiceClient) PushEntries(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, PushEntriesFullMethod, in, opts...)
}

func (c *SyncServiceClient) PullEntries(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, PullEntriesFullMethod, in, opts...)
}

func (c *SyncServiceClient) PhotoUploadURL(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, PhotoUploadURLFullMethod, in, opts...)
}

func (c *SyncServiceClient) Ping(ctx context.Context, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, PingFullMethod, &emptypb.Empty{}, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

// Watch opens the server stream; the returned stream yields WatchEvent
// envelopes until the context ends or the server closes it.
func (c *SyncServiceClient) Watch(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (grpc.ServerStreamingClient[structpb.Struct], error) {
	stream, err := c.cc.NewStream(ctx, &ServiceDesc.Streams[0], WatchFullMethod, opts...)
	if err != nil {
		return nil, err
	}
	x := &grpc.GenericClientStream[structpb.Struct, structpb.Struct]{ClientStream: stream}
	if err := x.ClientStream.SendMsg(in); err != nil {
		return nil, err
	}
	if err := x.ClientStream.CloseSend(); err != nil {
		return nil, err
	}
	return x, nil
}
