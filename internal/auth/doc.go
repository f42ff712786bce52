// Package auth provides session authentication and jail gating for warden.
//
// # Credentials
//
// Users log in on the bootstrap endpoint with a username and password. The
// Issuer verifies the password (argon2id, or bcrypt for legacy hashes),
// persists a store.Session, and returns an HS256 JWT whose "sid" claim names
// that session and whose "sub" claim names the user. A token is only valid
// while its session row exists and has not expired, so logout is immediate.
//
// Login failures are uniform: unknown users, wrong passwords, and accounts
// without a password all return AUTH_INVALID_CREDENTIALS after verifying
// against a dummy hash.
//
// # gRPC Interceptors
//
// Main-endpoint calls pass through two stages:
//
//	UnaryInterceptor(sessions, users, tosVersion, logger)  // resolves Identity
//	JailGate(allowList, logger)                            // enforces restriction
//
// The auth interceptor reads "authorization: Bearer <token>", resolves the
// session without writing, loads the user, and attaches an Identity whose
// Restriction is computed from the user record it just read. Handlers read
// the caller with FromContext or MustFromContext.
//
// # Restriction
//
// Restrict is a pure function of the user and the current terms version.
// A restricted ("jailed") caller may only invoke methods matched by the
// AllowList, which defaults to every /warden.Jail/ method and must always
// cover AcceptTOS.
//
// # Errors
//
// Functions in this package return oops errors with codes such as
// SESSION_INVALID. The gRPC layers translate them to status errors with
// rpc reasons; see ErrorCode.
package auth
