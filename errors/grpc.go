package errors

import (
	stderrors "errors"
	"fmt"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// MapToGRPCError turns a domain error into a status the client can decode with FromGRPCError.
func MapToGRPCError(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := status.FromError(err); ok && !isDomain(err) {
		return err
	}
	switch {
	case stderrors.Is(err, ErrDuplicateName):
		return status.Error(codes.AlreadyExists, err.Error())
	case stderrors.Is(err, ErrValidation):
		return status.Error(codes.InvalidArgument, err.Error())
	case stderrors.Is(err, ErrNotFound):
		return status.Error(codes.NotFound, err.Error())
	case stderrors.Is(err, ErrUnauthenticated):
		return status.Error(codes.Unauthenticated, err.Error())
	case stderrors.Is(err, ErrRejected):
		return status.Error(codes.PermissionDenied, err.Error())
	default:
		return status.Error(codes.Internal, "internal error")
	}
}

// FromGRPCError decodes a status returned by the data service for the operation op.
func FromGRPCError(op string, err error) error {
	if err == nil {
		return nil
	}
	st, ok := status.FromError(err)
	if !ok {
		return NewRemoteError(op, KindNetwork, err)
	}
	switch st.Code() {
	case codes.AlreadyExists:
		return NewValidationError("name", ReasonDuplicateName, "")
	case codes.NotFound:
		return fmt.Errorf("%s: %w", op, ErrNotFound)
	case codes.Unavailable, codes.DeadlineExceeded, codes.Canceled:
		return NewRemoteError(op, KindNetwork, stderrors.New(st.Message()))
	case codes.Unauthenticated:
		return NewRemoteError(op, KindRejected, stderrors.Join(ErrUnauthenticated, stderrors.New(st.Message())))
	default:
		return NewRemoteError(op, KindRejected, stderrors.New(st.Message()))
	}
}

func isDomain(err error) bool {
	return stderrors.Is(err, ErrValidation) ||
		stderrors.Is(err, ErrNotFound) ||
		stderrors.Is(err, ErrUnauthenticated) ||
		stderrors.Is(err, ErrRejected)
}
