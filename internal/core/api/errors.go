package api

import (
	"context"
	"errors"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/solatis/subordinate/internal/types"
)

// invalidArgument lists the errors caused by the request content.
var invalidArgument = []error{
	types.ErrInvalidArgument,
	types.ErrSyntax,
	types.ErrNestedExpression,
	types.ErrBuild,
	types.ErrUnknownComponent,
	types.ErrUnknownGroup,
	types.ErrUnknownToken,
	types.ErrUnknownAction,
	types.ErrTooManyRules,
	types.ErrInvalidPath,
	types.ErrPathTooDeep,
	types.ErrTooManyWildcards,
}

// toStatus maps a domain error to a gRPC status. Authentication errors are
// mapped by the auth interceptor; anything unrecognized is treated as a
// storage failure.
func toStatus(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := status.FromError(err); ok {
		return err
	}
	switch {
	case errors.Is(err, types.ErrRuleSetNotFound):
		return status.Error(codes.NotFound, err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		return status.Error(codes.DeadlineExceeded, err.Error())
	case errors.Is(err, context.Canceled):
		return status.Error(codes.Canceled, err.Error())
	}
	for _, target := range invalidArgument {
		if errors.Is(err, target) {
			return status.Error(codes.InvalidArgument, err.Error())
		}
	}
	return status.Error(codes.Unavailable, err.Error())
}
