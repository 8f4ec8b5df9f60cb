package router

import (
	"fmt"
	"net/url"

	"github.com/rs/zerolog"

	"github.com/clinicgate/clinicgate/internal/session"
)

// Fixed redirect targets
const (
	LoginPath          = "/login"
	RootPath           = "/"
	AdminDashboardPath = "/admin/dashboard"
)

// SessionReader is what the guard needs from the session store
type SessionReader interface {
	CurrentUser() (session.User, bool)
}

// Outcome is the guard's verdict for one transition
type Outcome uint8

const (
	Allow Outcome = iota
	Redirect
)

func (o Outcome) String() string {
	if o == Redirect {
		return "redirect"
	}
	return "allow"
}

// Reason names the rule that produced a redirect
type Reason string

const (
	ReasonNone         Reason = ""
	ReasonAuthRequired Reason = "auth-required"
	ReasonGuestOnly    Reason = "guest-only"
	ReasonRoleMismatch Reason = "role-mismatch"
)

// Decision is the result of a guard evaluation
type Decision struct {
	Outcome Outcome
	// To is the redirect target, empty for Allow
	To     string
	Reason Reason
}

func allow() Decision {
	return Decision{Outcome: Allow}
}

func redirectTo(to string, reason Reason) Decision {
	return Decision{Outcome: Redirect, To: to, Reason: reason}
}

// Guard decides whether a navigation may proceed. It holds no state of
// its own and never performs I/O.
type Guard struct {
	sessions SessionReader
	logger   zerolog.Logger
}

// NewGuard creates a guard reading from the given session store
func NewGuard(sessions SessionReader, logger zerolog.Logger) *Guard {
	return &Guard{sessions: sessions, logger: logger}
}

// Decide evaluates the rules in order; the first one that applies wins.
func (g *Guard) Decide(route *Route) Decision {
	user, authenticated := g.sessions.CurrentUser()
	meta := route.Meta

	switch {
	case meta.RequiresAuth && !authenticated:
		return redirectTo(LoginPath, ReasonAuthRequired)

	case meta.RequiresGuest && authenticated:
		return redirectTo(g.homePath(user), ReasonGuestOnly)

	case meta.RequiresRole() && (!authenticated || user.Role != meta.Role):
		return redirectTo(RootPath, ReasonRoleMismatch)
	}

	return allow()
}

func (g *Guard) homePath(user session.User) string {
	if user.Role == session.RoleUnknown {
		g.logger.Warn().
			Str("role", user.RawRole).
			Str("user_id", user.UserID).
			Msg("Unrecognized role, sending user to the patient dashboard")
	}
	return HomePath(user)
}

// HomePath returns the dashboard a user lands on after login. Unknown
// roles get the patient dashboard.
func HomePath(user session.User) string {
	switch user.Role {
	case session.RoleAdmin:
		return AdminDashboardPath
	case session.RoleDoctor:
		return fmt.Sprintf("/doctor/%s/dashboard", url.PathEscape(user.UserID))
	case session.RolePatient, session.RoleUnknown:
	}
	return fmt.Sprintf("/patient/%s/dashboard", url.PathEscape(user.UserID))
}
