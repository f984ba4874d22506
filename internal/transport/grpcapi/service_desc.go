package grpcapi

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// The service only uses well-known message types, so its descriptor is
// written by hand instead of generated from a .proto file.
const ServiceName = "rental.finance.v1.FinanceService"

const (
	methodRecalculate        = "/" + ServiceName + "/Recalculate"
	methodGetEventFinancials = "/" + ServiceName + "/GetEventFinancials"
	methodGetStats           = "/" + ServiceName + "/GetStats"
)

// FinanceServiceServer is the server API of rental.finance.v1.FinanceService.
type FinanceServiceServer interface {
	// Recalculate recomputes and stores the financials of the event whose id
	// is the request value, returning the full breakdown.
	Recalculate(context.Context, *wrapperspb.StringValue) (*structpb.Struct, error)
	// GetEventFinancials returns the financials currently stored.
	GetEventFinancials(context.Context, *wrapperspb.StringValue) (*structpb.Struct, error)
	GetStats(context.Context, *emptypb.Empty) (*structpb.Struct, error)
}

func RegisterFinanceServiceServer(s grpc.ServiceRegistrar, srv FinanceServiceServer) {
	s.RegisterService(&financeServiceDesc, srv)
}

var financeServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*FinanceServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Recalculate", Handler: recalculateHandler},
		{MethodName: "GetEventFinancials", Handler: getEventFinancialsHandler},
		{MethodName: "GetStats", Handler: getStatsHandler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "rental/finance/v1/finance.proto",
}

func recalculateHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(wrapperspb.StringValue)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(FinanceServiceServer).Recalculate(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: methodRecalculate}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(FinanceServiceServer).Recalculate(ctx, req.(*wrapperspb.StringValue))
	}
	return interceptor(ctx, in, info, handler)
}

func getEventFinancialsHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(wrapperspb.StringValue)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(FinanceServiceServer).GetEventFinancials(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: methodGetEventFinancials}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(FinanceServiceServer).GetEventFinancials(ctx, req.(*wrapperspb.StringValue))
	}
	return interceptor(ctx, in, info, handler)
}

func getStatsHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(emptypb.Empty)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(FinanceServiceServer).GetStats(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: methodGetStats}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(FinanceServiceServer).GetStats(ctx, req.(*emptypb.Empty))
	}
	return interceptor(ctx, in, info, handler)
}

// FinanceServiceClient is a thin client over the same descriptor.
type FinanceServiceClient struct {
	cc grpc.ClientConnInterface
}

func NewFinanceServiceClient(cc grpc.ClientConnInterface) *FinanceServiceClient {
	return &FinanceServiceClient{cc: cc}
}

func (c *FinanceServiceClient) Recalculate(ctx context.Context, eventID string, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, methodRecalculate, wrapperspb.String(eventID), out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *FinanceServiceClient) GetEventFinancials(ctx context.Context, eventID string, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, methodGetEventFinancials, wrapperspb.String(eventID), out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *FinanceServiceClient) GetStats(ctx context.Context, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, methodGetStats, &emptypb.Empty{}, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}
