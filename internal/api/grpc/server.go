package grpc

import (
	"agrirent-backend/internal/api/grpc/interceptor"
	"agrirent-backend/internal/security"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// NewServer builds a gRPC server carrying the rental service and the standard health service.
func NewServer(tm security.TokenManager, handler RentalServiceServer) *grpc.Server {
	auth := interceptor.NewAuthInterceptor(tm)
	s := grpc.NewServer(
		grpc.ChainUnaryInterceptor(interceptor.Logging(), auth.Unary()),
	)

	RegisterRentalServiceServer(s, handler)

	hs := health.NewServer()
	hs.SetServingStatus(RentalServiceName, healthpb.HealthCheckResponse_SERVING)
	healthpb.RegisterHealthServer(s, hs)
	return s
}
