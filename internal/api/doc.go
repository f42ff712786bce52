// Package api implements the warden.API service served on the main endpoint.
//
// Handlers run behind the auth interceptor and jail gate, so every call has
// an Identity in its context. The caller is always taken from that Identity,
// never from request payloads.
package api
