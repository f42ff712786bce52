// ABOUTME: Request and response payloads for the Auth, API, and Jail services
// ABOUTME: Plain structs encoded by the JSON codec; empty requests use emptypb.Empty

package rpc

import "time"

// LoginRequest carries a login claim and secret.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginResponse carries a freshly issued session credential.
type LoginResponse struct {
	Token     string    `json:"token"`
	UserID    string    `json:"user_id"`
	ExpiresAt time.Time `json:"expires_at"`
}

// LogoutRequest names the credential to invalidate.
type LogoutRequest struct {
	Token string `json:"token"`
}

// PingResponse echoes the caller's identity.
type PingResponse struct {
	UserID   string `json:"user_id"`
	Username string `json:"username"`
	Name     string `json:"name"`
}

// GetUserRequest looks a user up by id, username, or email.
type GetUserRequest struct {
	User string `json:"user"`
}

// User is the public profile returned by GetUser.
type User struct {
	Username          string    `json:"username"`
	Name              string    `json:"name"`
	City              string    `json:"city"`
	Verification      float64   `json:"verification"`
	CommunityStanding float64   `json:"community_standing"`
	NumReferences     int       `json:"num_references"`
	Gender            string    `json:"gender"`
	Age               int       `json:"age"`
	Joined            time.Time `json:"joined"`
	LastActive        time.Time `json:"last_active"`
	Occupation        string    `json:"occupation"`
	AboutMe           string    `json:"about_me"`
	AboutPlace        string    `json:"about_place"`
	Languages         []string  `json:"languages"`
	CountriesVisited  []string  `json:"countries_visited"`
	CountriesLived    []string  `json:"countries_lived"`
}

// GetTOSResponse reports the caller's terms-of-service state.
type GetTOSResponse struct {
	Accepted        bool   `json:"accepted"`
	AcceptedVersion int    `json:"accepted_version"`
	CurrentVersion  int    `json:"current_version"`
	TermsHTML       string `json:"terms_html,omitempty"`
}

// AcceptTOSRequest accepts the current terms of service.
type AcceptTOSRequest struct {
	Accept bool `json:"accept"`
}

// JailInfoResponse lists why the caller is restricted, if at all.
type JailInfoResponse struct {
	Jailed  bool     `json:"jailed"`
	Reasons []string `json:"reasons"`
}
