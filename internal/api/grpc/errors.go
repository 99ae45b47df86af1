package grpc

import (
	"errors"

	"agrirent-backend/internal/domain"
	"agrirent-backend/internal/logger"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
)

func errorCode(err error) codes.Code {
	switch {
	case errors.Is(err, domain.ErrDateRangeInvalid),
		errors.Is(err, domain.ErrValidation),
		errors.Is(err, domain.ErrCredentialInvalid):
		return codes.InvalidArgument
	case errors.Is(err, domain.ErrDateUnavailable),
		errors.Is(err, domain.ErrInvalidStateTransition):
		return codes.FailedPrecondition
	case errors.Is(err, domain.ErrCredentialAlreadyConsumed):
		return codes.Aborted
	case errors.Is(err, domain.ErrNotFound):
		return codes.NotFound
	case errors.Is(err, domain.ErrForbidden):
		return codes.PermissionDenied
	}
	return codes.Internal
}

// toStatus converts a service error into a gRPC status. Unavailable dates travel as a Struct detail
// keyed by date.
func toStatus(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := status.FromError(err); ok {
		return err
	}

	code := errorCode(err)
	if code == codes.Internal {
		logger.Error("RPC failed", "error", err)
		return status.Error(codes.Internal, "internal error")
	}

	st := status.New(code, err.Error())
	var unavailable *domain.UnavailableDatesError
	if errors.As(err, &unavailable) {
		reasons := make(map[string]any, len(unavailable.Dates))
		for _, d := range unavailable.Dates {
			reasons[d.String()] = unavailable.Reasons[d]
		}
		if detail, derr := structpb.NewStruct(reasons); derr == nil {
			if withDetail, werr := st.WithDetails(detail); werr == nil {
				st = withDetail
			}
		}
	}
	return st.Err()
}
