// ABOUTME: Restriction state derived from a user's current attributes
// ABOUTME: Restrict is pure; callers pass the freshly loaded user on every decision

package auth

import (
	"slices"

	"github.com/2389/warden/internal/store"
)

// Reason is an enumerated cause for restricting an identity.
type Reason string

// Known restriction reasons.
const (
	// ReasonMissingTOS means the user has not accepted the current terms of service.
	ReasonMissingTOS Reason = "MISSING_TOS"
)

// Restriction is the set of reasons an identity is jailed. The zero value is
// unrestricted.
type Restriction struct {
	Reasons []Reason
}

// IsRestricted reports whether any reason applies.
func (r Restriction) IsRestricted() bool {
	return len(r.Reasons) > 0
}

// Has reports whether reason applies.
func (r Restriction) Has(reason Reason) bool {
	return slices.Contains(r.Reasons, reason)
}

// Strings returns the reasons as plain strings, never nil.
func (r Restriction) Strings() []string {
	out := make([]string, 0, len(r.Reasons))
	for _, reason := range r.Reasons {
		out = append(out, string(reason))
	}
	return out
}

// Restrict derives the restriction state of u against the current terms
// version. A nil user is treated as fully restricted.
func Restrict(u *store.User, tosVersion int) Restriction {
	var reasons []Reason
	if u == nil || u.AcceptedTOS < tosVersion {
		reasons = append(reasons, ReasonMissingTOS)
	}
	return Restriction{Reasons: reasons}
}
