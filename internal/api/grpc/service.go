package grpc

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

const RentalServiceName = "agrirent.v1.RentalService"

// RentalServiceServer is the server API for agrirent.v1.RentalService. Payloads travel as
// google.protobuf.Struct and are mapped to typed requests by the handler.
type RentalServiceServer interface {
	GetAvailability(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ApplySelection(context.Context, *structpb.Struct) (*structpb.Struct, error)
	SubmitRentalRequest(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GetRentalRequest(context.Context, *structpb.Struct) (*structpb.Struct, error)
	CancelRentalRequest(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ListMyRentalRequests(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ApproveRentalRequest(context.Context, *structpb.Struct) (*structpb.Struct, error)
	RejectRentalRequest(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ConfirmPickup(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ConfirmReturn(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ListRentalRequests(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

type structMethod func(RentalServiceServer, context.Context, *structpb.Struct) (*structpb.Struct, error)

func unaryHandler(method string, call structMethod) grpc.MethodHandler {
	fullMethod := "/" + RentalServiceName + "/" + method
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(structpb.Struct)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(RentalServiceServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(RentalServiceServer), ctx, req.(*structpb.Struct))
		}
		return interceptor(ctx, in, info, handler)
	}
}

var RentalService_ServiceDesc = grpc.ServiceDesc{
	ServiceName: RentalServiceName,
	HandlerType: (*RentalServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "GetAvailability", Handler: unaryHandler("GetAvailability", RentalServiceServer.GetAvailability)},
		{MethodName: "ApplySelection", Handler: unaryHandler("ApplySelection", RentalServiceServer.ApplySelection)},
		{MethodName: "SubmitRentalRequest", Handler: unaryHandler("SubmitRentalRequest", RentalServiceServer.SubmitRentalRequest)},
		{MethodName: "GetRentalRequest", Handler: unaryHandler("GetRentalRequest", RentalServiceServer.GetRentalRequest)},
		{MethodName: "CancelRentalRequest", Handler: unaryHandler("CancelRentalRequest", RentalServiceServer.CancelRentalRequest)},
		{MethodName: "ListMyRentalRequests", Handler: unaryHandler("ListMyRentalRequests", RentalServiceServer.ListMyRentalRequests)},
		{MethodName: "ApproveRentalRequest", Handler: unaryHandler("ApproveRentalRequest", RentalServiceServer.ApproveRentalRequest)},
		{MethodName: "RejectRentalRequest", Handler: unaryHandler("RejectRentalRequest", RentalServiceServer.RejectRentalRequest)},
		{MethodName: "ConfirmPickup", Handler: unaryHandler("ConfirmPickup", RentalServiceServer.ConfirmPickup)},
		{MethodName: "ConfirmReturn", Handler: unaryHandler("ConfirmReturn", RentalServiceServer.ConfirmReturn)},
		{MethodName: "ListRentalRequests", Handler: unaryHandler("ListRentalRequests", RentalServiceServer.ListRentalRequests)},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "agrirent/v1/rental.proto",
}

func RegisterRentalServiceServer(s grpc.ServiceRegistrar, srv RentalServiceServer) {
	s.RegisterService(&RentalService_ServiceDesc, srv)
}
