package interceptor

import (
	"context"
	"strconv"
	"strings"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	"agrirent-backend/internal/config"
	"agrirent-backend/internal/logger"
	"agrirent-backend/internal/security"
)

// Metadata keys the interceptor writes for handlers. Values sent by the client
// under these keys never reach a handler.
const (
	UserIDKey    = "user-id"
	UserRolesKey = "user-roles"
)

type AuthInterceptor struct {
	tokens security.TokenManager
}

func NewAuthInterceptor(tm security.TokenManager) *AuthInterceptor {
	return &AuthInterceptor{tokens: tm}
}

// Unary authenticates the bearer token and enforces the method's security level
// from config.EndpointSecurityConfig.
func (i *AuthInterceptor) Unary() grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
		level := config.GetSecurityLevel(info.FullMethod)
		if level == config.SecurityPublic {
			return handler(ctx, req)
		}

		md, _ := metadata.FromIncomingContext(ctx)
		claims, err := i.authenticate(md)
		if err != nil {
			return nil, err
		}
		if level == config.SecurityAdmin && !claims.IsAdmin() {
			logger.Warn("gRPC call denied", "method", info.FullMethod, "user_id", claims.UserID, "roles", claims.Roles)
			return nil, status.Error(codes.PermissionDenied, "admin role required")
		}

		return handler(metadata.NewIncomingContext(ctx, withIdentity(md, claims)), req)
	}
}

func (i *AuthInterceptor) authenticate(md metadata.MD) (*security.UserClaims, error) {
	values := md.Get("authorization")
	if len(values) == 0 || strings.TrimSpace(values[0]) == "" {
		return nil, status.Error(codes.Unauthenticated, "authorization token is not provided")
	}

	raw := strings.TrimSpace(values[0])
	if scheme, token, ok := strings.Cut(raw, " "); ok && strings.EqualFold(scheme, "bearer") {
		raw = strings.TrimSpace(token)
	}

	claims, err := i.tokens.ValidateToken(raw)
	if err != nil {
		return nil, status.Errorf(codes.Unauthenticated, "invalid token: %v", err)
	}
	return claims, nil
}

// withIdentity returns a copy of md with the identity keys replaced by the token's claims.
func withIdentity(md metadata.MD, claims *security.UserClaims) metadata.MD {
	out := md.Copy()
	if out == nil {
		out = metadata.MD{}
	}
	out.Set(UserIDKey, strconv.Itoa(int(claims.UserID)))
	out.Delete(UserRolesKey)
	if len(claims.Roles) > 0 {
		out.Set(UserRolesKey, claims.Roles...)
	}
	return out
}
