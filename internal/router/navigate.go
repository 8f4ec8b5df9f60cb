package router

import (
	"errors"
	"fmt"

	"github.com/rs/zerolog"
)

// MaxRedirects bounds a single navigation
const MaxRedirects = 10

var (
	ErrNoRoute      = errors.New("no route matches path")
	ErrRedirectLoop = errors.New("too many redirects")
)

// Hop records one step of a navigation
type Hop struct {
	Path     string
	Route    string
	Decision Decision
	// Static is set when the route itself redirects, before any guard runs
	Static bool
}

// Navigation is the outcome of following a path to where it lands
type Navigation struct {
	Hops  []Hop
	Final *Match
}

// Navigator follows route-level redirects and guard redirects
type Navigator struct {
	table  *Table
	guard  *Guard
	logger zerolog.Logger
}

// NewNavigator creates a navigator over the given table and guard
func NewNavigator(table *Table, guard *Guard, logger zerolog.Logger) *Navigator {
	return &Navigator{table: table, guard: guard, logger: logger}
}

// Navigate resolves path to the route it finally renders. The returned
// Navigation is filled in as far as it got even when an error is
// returned.
func (n *Navigator) Navigate(path string) (*Navigation, error) {
	nav := &Navigation{}

	for i := 0; i <= MaxRedirects; i++ {
		match, ok := n.table.Match(path)
		if !ok {
			return nav, fmt.Errorf("%w: %s", ErrNoRoute, path)
		}

		if match.Route.Redirect != "" {
			nav.Hops = append(nav.Hops, Hop{
				Path:     path,
				Route:    match.Route.Name,
				Decision: redirectTo(match.Route.Redirect, ReasonNone),
				Static:   true,
			})
			path = match.Route.Redirect
			continue
		}

		decision := n.guard.Decide(match.Route)
		nav.Hops = append(nav.Hops, Hop{Path: path, Route: match.Route.Name, Decision: decision})

		if decision.Outcome == Allow {
			nav.Final = match
			return nav, nil
		}

		n.logger.Debug().
			Str("from", path).
			Str("to", decision.To).
			Str("reason", string(decision.Reason)).
			Msg("Navigation redirected")
		path = decision.To
	}

	return nav, fmt.Errorf("%w: gave up after %d hops", ErrRedirectLoop, MaxRedirects)
}
