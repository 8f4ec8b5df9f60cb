package session

import (
	"github.com/clinicgate/clinicgate/internal/client"
)

// User is the authenticated account held by a Store
type User struct {
	Role Role
	// RawRole is the role string exactly as the API sent it
	RawRole string
	UserID  string
	Name    string
}

// complete reports whether every field a session depends on is set
func (u User) complete() bool {
	return u.RawRole != "" && u.UserID != ""
}

func userFromLogin(resp *client.LoginResponse) User {
	return User{
		Role:    ParseRole(resp.Role),
		RawRole: resp.Role,
		UserID:  resp.AccountID(),
		Name:    resp.Name,
	}
}
