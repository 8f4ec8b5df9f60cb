package session

// Role is the kind of account behind a session
type Role uint8

const (
	// RoleUnknown covers any role string the API sends that this client
	// does not recognize. It never matches a route's role requirement.
	RoleUnknown Role = iota
	RoleAdmin
	RoleDoctor
	RolePatient
)

// ParseRole maps the API's role string to a Role. Matching is exact:
// "Admin" is not "admin".
func ParseRole(s string) Role {
	switch s {
	case "admin":
		return RoleAdmin
	case "doctor":
		return RoleDoctor
	case "patient":
		return RolePatient
	default:
		return RoleUnknown
	}
}

func (r Role) String() string {
	switch r {
	case RoleAdmin:
		return "admin"
	case RoleDoctor:
		return "doctor"
	case RolePatient:
		return "patient"
	default:
		return "unknown"
	}
}
