package grpc

import (
	"context"

	grpclib "google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

const agendasServiceName = "interviewcal.v1.AgendasService"

// AgendasServiceServer is the server side of interviewcal.v1.AgendasService.
// Requests and responses travel as google.protobuf.Struct documents shaped
// like the HTTP JSON bodies.
type AgendasServiceServer interface {
	PublishAvailability(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
	SearchAvailability(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
}

var AgendasServiceDesc = grpclib.ServiceDesc{
	ServiceName: agendasServiceName,
	HandlerType: (*AgendasServiceServer)(nil),
	Methods: []grpclib.MethodDesc{
		{MethodName: "PublishAvailability", Handler: publishAvailabilityHandler},
		{MethodName: "SearchAvailability", Handler: searchAvailabilityHandler},
	},
	Streams:  []grpclib.StreamDesc{},
	Metadata: "interviewcal/v1/agendas.proto",
}

func RegisterAgendasServiceServer(s grpclib.ServiceRegistrar, srv AgendasServiceServer) {
	s.RegisterService(&AgendasServiceDesc, srv)
}

func publishAvailabilityHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpclib.UnaryServerInterceptor) (any, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(AgendasServiceServer).PublishAvailability(ctx, in)
	}
	info := &grpclib.UnaryServerInfo{Server: srv, FullMethod: "/" + agendasServiceName + "/PublishAvailability"}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(AgendasServiceServer).PublishAvailability(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, in, info, handler)
}

func searchAvailabilityHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpclib.UnaryServerInterceptor) (any, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(AgendasServiceServer).SearchAvailability(ctx, in)
	}
	info := &grpclib.UnaryServerInfo{Server: srv, FullMethod: "/" + agendasServiceName + "/SearchAvailability"}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(AgendasServiceServer).SearchAvailability(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, in, info, handler)
}

// AgendasClient calls interviewcal.v1.AgendasService over any client
// connection.
type AgendasClient struct {
	cc grpclib.ClientConnInterface
}

func NewAgendasClient(cc grpclib.ClientConnInterface) *AgendasClient {
	return &AgendasClient{cc: cc}
}

func (c *AgendasClient) PublishAvailability(ctx context.Context, in *structpb.Struct, opts ...grpclib.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, "/"+agendasServiceName+"/PublishAvailability", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *AgendasClient) SearchAvailability(ctx context.Context, in *structpb.Struct, opts ...grpclib.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, "/"+agendasServiceName+"/SearchAvailability", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}
