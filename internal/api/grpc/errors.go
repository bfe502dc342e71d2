package grpc

import (
	"context"
	"errors"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"farmhub-backend/internal/repository"
	"farmhub-backend/internal/service"
)

// toStatus maps service errors onto gRPC status codes. Precondition
// failures keep their user-facing message; anything else is reported as
// a retryable or internal fault.
func toStatus(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := status.FromError(err); ok {
		return err
	}

	switch {
	case errors.Is(err, service.ErrListingUnavailable):
		return status.Error(codes.FailedPrecondition, service.ErrListingUnavailable.Error())
	case errors.Is(err, service.ErrInvalidActor):
		return status.Error(codes.PermissionDenied, service.ErrInvalidActor.Error())
	case errors.Is(err, service.ErrStaleRequest):
		return status.Error(codes.FailedPrecondition, service.ErrStaleRequest.Error())
	case errors.Is(err, service.ErrListingAlreadyLocked):
		return status.Error(codes.Aborted, service.ErrListingAlreadyLocked.Error())
	case errors.Is(err, service.ErrChatLocked):
		return status.Error(codes.FailedPrecondition, service.ErrChatLocked.Error())
	case errors.Is(err, service.ErrEmptyMessage):
		return status.Error(codes.InvalidArgument, service.ErrEmptyMessage.Error())
	case errors.Is(err, service.ErrInvalidInput):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, repository.ErrNotFound):
		return status.Error(codes.NotFound, "not found")
	case errors.Is(err, context.DeadlineExceeded):
		return status.Error(codes.DeadlineExceeded, err.Error())
	case errors.Is(err, context.Canceled):
		return status.Error(codes.Canceled, err.Error())
	case errors.Is(err, repository.ErrConflict):
		return status.Error(codes.Aborted, err.Error())
	}
	return status.Error(codes.Unavailable, err.Error())
}
