// Package session holds the client's authenticated identity: an access
// token and the profile it belongs to, treated as one unit. The pair
// is persisted so a restart restores the signed-in state.
package session

// Profile identifies the signed-in user as the identity provider
// reported them.
type Profile struct {
	ID      string `json:"id"`
	Email   string `json:"email"`
	Name    string `json:"name,omitempty"`
	Picture string `json:"picture,omitempty"`
}

// Session is the token and profile pair. A session is either whole or
// empty; no state holds one half without the other.
type Session struct {
	Token string
	User  Profile
}

// Authenticated reports whether the session holds a usable identity.
func (s Session) Authenticated() bool {
	return s.Token != "" && s.User.ID != ""
}
