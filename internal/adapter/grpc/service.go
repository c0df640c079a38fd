package grpc

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

// ServiceName is the fully qualified gRPC service name
const ServiceName = "workledger.v1.LedgerService"

// Messages are google.protobuf.Struct values, so the service needs no generated code.
// Field names match the HTTP API's JSON bodies.

// LedgerServiceServer is the server API for the LedgerService service
type LedgerServiceServer interface {
	SetTaskStatus(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
	CreateCheckoutRequest(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
	ApproveCheckoutRequest(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
	RejectCheckoutRequest(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
	GetAccount(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
}

type ledgerCall func(srv LedgerServiceServer, ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)

func unaryMethod(name string, call ledgerCall) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: name,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := new(structpb.Struct)
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return call(srv.(LedgerServiceServer), ctx, in)
			}
			info := &grpc.UnaryServerInfo{
				Server:     srv,
				FullMethod: "/" + ServiceName + "/" + name,
			}
			handler := func(ctx context.Context, req any) (any, error) {
				return call(srv.(LedgerServiceServer), ctx, req.(*structpb.Struct))
			}
			return interceptor(ctx, in, info, handler)
		},
	}
}

var ledgerServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*LedgerServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		unaryMethod("SetTaskStatus", LedgerServiceServer.SetTaskStatus),
		unaryMethod("CreateCheckoutRequest", LedgerServiceServer.CreateCheckoutRequest),
		unaryMethod("ApproveCheckoutRequest", LedgerServiceServer.ApproveCheckoutRequest),
		unaryMethod("RejectCheckoutRequest", LedgerServiceServer.RejectCheckoutRequest),
		unaryMethod("GetAccount", LedgerServiceServer.GetAccount),
	},
	Streams: []grpc.StreamDesc{},
}

// RegisterLedgerServiceServer registers srv on s
func RegisterLedgerServiceServer(s grpc.ServiceRegistrar, srv LedgerServiceServer) {
	s.RegisterService(&ledgerServiceDesc, srv)
}

// LedgerServiceClient is a thin client for LedgerService
type LedgerServiceClient struct {
	cc grpc.ClientConnInterface
}

// NewLedgerServiceClient creates a client on an existing connection
func NewLedgerServiceClient(cc grpc.ClientConnInterface) *LedgerServiceClient {
	return &LedgerServiceClient{cc: cc}
}

// Call invokes method with req and returns the response struct
func (c *LedgerServiceClient) Call(ctx context.Context, method string, req map[string]any, opts ...grpc.CallOption) (*structpb.Struct, error) {
	in, err := structpb.NewStruct(req)
	if err != nil {
		return nil, err
	}
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, "/"+ServiceName+"/"+method, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}
