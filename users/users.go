package users

import "github.com/jrsteele09/fogeapi-client/internal/utils"

// User is the profile the backend returns on login and from /auth/me.
// It is replaced wholesale on login and never edited locally.
type User struct {
	ID    string `json:"id"`
	Email string `json:"email"`

	// DisplayName is optional; the backend sends it as userName.
	DisplayName *string `json:"userName,omitempty"`
}

// Name returns the display name, falling back to the email address.
func (u User) Name() string {
	return utils.FirstNonEmpty(utils.Value(u.DisplayName), u.Email)
}

// SameIdentity reports whether both values describe the same account.
func (u User) SameIdentity(other User) bool {
	return u.ID == other.ID && u.Email == other.Email
}
