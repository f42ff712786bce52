// Package jail implements the warden.Jail service.
//
// Every Jail method is on the default allow-list, so a caller restricted for
// MISSING_TOS can read the terms, accept them, and inspect its own state.
// Restriction is never cached: JailInfo and the jail gate both derive it from
// the user record at the time of the call.
package jail
