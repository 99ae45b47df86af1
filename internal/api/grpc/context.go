package grpc

import (
	"context"
	"slices"
	"strconv"

	"agrirent-backend/internal/api/grpc/interceptor"
	"agrirent-backend/internal/security"
	"agrirent-backend/internal/service"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

// GetUserIDFromContext returns the caller id written by the auth interceptor.
func GetUserIDFromContext(ctx context.Context) (int32, error) {
	md, _ := metadata.FromIncomingContext(ctx)
	ids := md.Get(interceptor.UserIDKey)
	if len(ids) == 0 {
		return 0, status.Error(codes.Unauthenticated, "caller identity missing")
	}
	id, err := strconv.ParseInt(ids[0], 10, 32)
	if err != nil || id <= 0 {
		return 0, status.Errorf(codes.Unauthenticated, "malformed caller identity %q", ids[0])
	}
	return int32(id), nil
}

// GetActorFromContext adds the admin flag derived from the injected roles.
func GetActorFromContext(ctx context.Context) (service.Actor, error) {
	id, err := GetUserIDFromContext(ctx)
	if err != nil {
		return service.Actor{}, err
	}
	md, _ := metadata.FromIncomingContext(ctx)
	return service.Actor{
		UserID: id,
		Admin:  slices.Contains(md.Get(interceptor.UserRolesKey), string(security.RoleAdmin)),
	}, nil
}
