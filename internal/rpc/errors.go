// ABOUTME: gRPC status errors with machine-readable reasons
// ABOUTME: Each error carries an errdetails.ErrorInfo so clients can branch on Reason

package rpc

import (
	"context"
	"errors"

	"google.golang.org/genproto/googleapis/rpc/errdetails"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// ErrorDomain is set on every ErrorInfo warden returns.
const ErrorDomain = "warden"

// Reasons attached to status errors.
const (
	ReasonInvalidCredentials = "INVALID_CREDENTIALS"
	ReasonUnauthenticated    = "UNAUTHENTICATED"
	ReasonJailed             = "JAILED"
	ReasonNotFound           = "NOT_FOUND"
	ReasonInvalidArgument    = "INVALID_ARGUMENT"
)

// Error builds a status error with an ErrorInfo detail. metadata may be nil.
func Error(code codes.Code, reason, msg string, metadata map[string]string) error {
	st := status.New(code, msg)
	detailed, err := st.WithDetails(&errdetails.ErrorInfo{
		Reason:   reason,
		Domain:   ErrorDomain,
		Metadata: metadata,
	})
	if err != nil {
		return st.Err()
	}
	return detailed.Err()
}

// InvalidCredentials is the uniform login failure. It never says whether the
// user exists.
func InvalidCredentials() error {
	return Error(codes.Unauthenticated, ReasonInvalidCredentials, "invalid username or password", nil)
}

// Unauthenticated rejects a call with a missing or unresolvable credential.
func Unauthenticated(msg string) error {
	return Error(codes.Unauthenticated, ReasonUnauthenticated, msg, nil)
}

// PermissionDenied rejects a restricted caller invoking a method outside the
// allow-list. reasons lists the active restriction codes.
func PermissionDenied(method string, reasons []string) error {
	md := map[string]string{"method": method}
	for _, r := range reasons {
		md["reason."+r] = "true"
	}
	return Error(codes.PermissionDenied, ReasonJailed, "permission denied: account is restricted", md)
}

// NotFound reports a missing entity.
func NotFound(msg string) error {
	return Error(codes.NotFound, ReasonNotFound, msg, nil)
}

// InvalidArgument reports a malformed request.
func InvalidArgument(msg string) error {
	return Error(codes.InvalidArgument, ReasonInvalidArgument, msg, nil)
}

// ContextError converts a context cancellation or deadline into a status error.
// Other errors are returned unchanged.
func ContextError(err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return status.FromContextError(err).Err()
	}
	return err
}

// ReasonOf returns the ErrorInfo reason attached to err, or "" if none.
func ReasonOf(err error) string {
	st, ok := status.FromError(err)
	if !ok {
		return ""
	}
	for _, d := range st.Details() {
		if info, ok := d.(*errdetails.ErrorInfo); ok {
			return info.GetReason()
		}
	}
	return ""
}

// MetadataOf returns the ErrorInfo metadata attached to err, or nil.
func MetadataOf(err error) map[string]string {
	st, ok := status.FromError(err)
	if !ok {
		return nil
	}
	for _, d := range st.Details() {
		if info, ok := d.(*errdetails.ErrorInfo); ok {
			return info.GetMetadata()
		}
	}
	return nil
}
