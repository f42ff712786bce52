// ABOUTME: oops error codes raised by the auth package
// ABOUTME: Status mapping for the wire lives with the gRPC service and interceptors

package auth

import (
	"github.com/samber/oops"
)

// Error codes attached with oops.Code.
const (
	CodeInvalidCredentials   = "AUTH_INVALID_CREDENTIALS"
	CodeLoginFailed          = "AUTH_LOGIN_FAILED"
	CodeLogoutFailed         = "AUTH_LOGOUT_FAILED"
	CodeEmptyPassword        = "AUTH_EMPTY_PASSWORD"
	CodeInvalidHash          = "AUTH_INVALID_HASH"
	CodeHashFailed           = "AUTH_HASH_FAILED"
	CodeSessionInvalid       = "SESSION_INVALID"
	CodeSessionExpired       = "SESSION_EXPIRED"
	CodeSessionCreateFailed  = "AUTH_SESSION_CREATE_FAILED"
	CodeSessionResolveFailed = "SESSION_RESOLVE_FAILED"
	CodeInvalidSecret        = "AUTH_INVALID_SECRET"
	CodeInvalidAllowList     = "AUTH_INVALID_ALLOW_LIST"
)

// ErrorCode returns the oops code attached to err, or "" if none.
func ErrorCode(err error) string {
	oopsErr, ok := oops.AsOops(err)
	if !ok {
		return ""
	}
	code, _ := oopsErr.Code().(string)
	return code
}

// IsInvalidSession reports whether err means the credential does not resolve
// to a live session.
func IsInvalidSession(err error) bool {
	switch ErrorCode(err) {
	case CodeSessionInvalid, CodeSessionExpired:
		return true
	}
	return false
}
