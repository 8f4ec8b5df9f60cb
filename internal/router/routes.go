package router

import (
	_ "embed"
	"fmt"
	"net/url"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/clinicgate/clinicgate/internal/session"
)

//go:embed routes.yaml
var defaultRoutes []byte

// Meta holds a route's access requirements
type Meta struct {
	RequiresAuth  bool
	RequiresGuest bool
	// Role is RoleUnknown when the route has no role requirement
	Role session.Role
}

// RequiresRole reports whether the route is limited to one role
func (m Meta) RequiresRole() bool {
	return m.Role != session.RoleUnknown
}

// Route is one entry of the route table
type Route struct {
	Path     string
	Name     string
	Redirect string
	Meta     Meta

	segments []string
}

// Params lists the route's parameter names in path order
func (r *Route) Params() []string {
	var params []string
	for _, seg := range r.segments {
		if isParam(seg) {
			params = append(params, seg[1:])
		}
	}
	return params
}

// Build expands the route pattern with the given parameters
func (r *Route) Build(params map[string]string) (string, error) {
	if len(r.segments) == 0 {
		return "/", nil
	}

	parts := make([]string, len(r.segments))
	for i, seg := range r.segments {
		if !isParam(seg) {
			parts[i] = seg
			continue
		}
		v, ok := params[seg[1:]]
		if !ok || v == "" {
			return "", fmt.Errorf("route %q: missing parameter %q", r.Path, seg[1:])
		}
		parts[i] = url.PathEscape(v)
	}
	return "/" + strings.Join(parts, "/"), nil
}

func (r *Route) match(segments []string) (map[string]string, bool) {
	if len(segments) != len(r.segments) {
		return nil, false
	}

	params := map[string]string{}
	for i, seg := range r.segments {
		if isParam(seg) {
			v, err := url.PathUnescape(segments[i])
			if err != nil || v == "" {
				return nil, false
			}
			params[seg[1:]] = v
			continue
		}
		if seg != segments[i] {
			return nil, false
		}
	}
	return params, true
}

// Match is a concrete path resolved against the table
type Match struct {
	Route  *Route
	Path   string
	Params map[string]string
}

// Table is the immutable, validated route table
type Table struct {
	routes []*Route
	byName map[string]*Route
}

type routeFile struct {
	Routes []routeEntry `yaml:"routes"`
}

type routeEntry struct {
	Path     string `yaml:"path"`
	Name     string `yaml:"name"`
	Redirect string `yaml:"redirect"`
	Meta     struct {
		RequiresAuth  bool   `yaml:"requiresAuth"`
		RequiresGuest bool   `yaml:"requiresGuest"`
		Role          string `yaml:"role"`
	} `yaml:"meta"`
}

// Default returns the embedded route table
func Default() *Table {
	t, err := Load(defaultRoutes)
	if err != nil {
		panic(fmt.Sprintf("invalid embedded route table: %v", err))
	}
	return t
}

// Load parses and validates a YAML route table
func Load(data []byte) (*Table, error) {
	var file routeFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse route table: %w", err)
	}
	if len(file.Routes) == 0 {
		return nil, fmt.Errorf("route table is empty")
	}

	t := &Table{byName: map[string]*Route{}}
	shapes := map[string]string{}

	for i, entry := range file.Routes {
		route, err := buildRoute(entry)
		if err != nil {
			return nil, fmt.Errorf("route %d: %w", i, err)
		}

		shape := routeShape(route.segments)
		if prev, ok := shapes[shape]; ok {
			return nil, fmt.Errorf("route %q conflicts with %q", route.Path, prev)
		}
		shapes[shape] = route.Path

		if route.Name != "" {
			if _, ok := t.byName[route.Name]; ok {
				return nil, fmt.Errorf("duplicate route name %q", route.Name)
			}
			t.byName[route.Name] = route
		}
		t.routes = append(t.routes, route)
	}

	return t, nil
}

func buildRoute(entry routeEntry) (*Route, error) {
	if !strings.HasPrefix(entry.Path, "/") {
		return nil, fmt.Errorf("path %q must start with /", entry.Path)
	}
	if entry.Name == "" && entry.Redirect == "" {
		return nil, fmt.Errorf("route %q needs a name or a redirect", entry.Path)
	}
	if entry.Redirect != "" && !strings.HasPrefix(entry.Redirect, "/") {
		return nil, fmt.Errorf("route %q: redirect %q must start with /", entry.Path, entry.Redirect)
	}
	if entry.Meta.RequiresAuth && entry.Meta.RequiresGuest {
		return nil, fmt.Errorf("route %q sets both requiresAuth and requiresGuest", entry.Path)
	}

	route := &Route{
		Path:     entry.Path,
		Name:     entry.Name,
		Redirect: entry.Redirect,
		Meta: Meta{
			RequiresAuth:  entry.Meta.RequiresAuth,
			RequiresGuest: entry.Meta.RequiresGuest,
		},
		segments: splitPath(entry.Path),
	}

	if entry.Meta.Role != "" {
		role := session.ParseRole(entry.Meta.Role)
		if role == session.RoleUnknown {
			return nil, fmt.Errorf("route %q: unknown role %q", entry.Path, entry.Meta.Role)
		}
		route.Meta.Role = role
	}

	seen := map[string]bool{}
	for _, seg := range route.segments {
		if seg == "" {
			return nil, fmt.Errorf("route %q has an empty segment", entry.Path)
		}
		if !isParam(seg) {
			continue
		}
		name := seg[1:]
		if name == "" {
			return nil, fmt.Errorf("route %q has an unnamed parameter", entry.Path)
		}
		if seen[name] {
			return nil, fmt.Errorf("route %q repeats parameter %q", entry.Path, name)
		}
		seen[name] = true
	}

	return route, nil
}

// Routes returns the routes in table order
func (t *Table) Routes() []*Route {
	out := make([]*Route, len(t.routes))
	copy(out, t.routes)
	return out
}

// ByName looks a route up by name
func (t *Table) ByName(name string) (*Route, bool) {
	r, ok := t.byName[name]
	return r, ok
}

// Match resolves a concrete path. Query strings and fragments are ignored.
func (t *Table) Match(path string) (*Match, bool) {
	if i := strings.IndexAny(path, "?#"); i >= 0 {
		path = path[:i]
	}
	if path == "" {
		path = "/"
	}

	segments := splitPath(path)
	for _, route := range t.routes {
		if params, ok := route.match(segments); ok {
			return &Match{Route: route, Path: path, Params: params}, true
		}
	}
	return nil, false
}

func splitPath(path string) []string {
	trimmed := strings.Trim(path, "/")
	if trimmed == "" {
		return nil
	}
	return strings.Split(trimmed, "/")
}

func isParam(seg string) bool {
	return strings.HasPrefix(seg, ":")
}

// routeShape replaces parameter names so equivalent patterns collide
func routeShape(segments []string) string {
	parts := make([]string, len(segments))
	for i, seg := range segments {
		if isParam(seg) {
			parts[i] = ":"
		} else {
			parts[i] = seg
		}
	}
	return "/" + strings.Join(parts, "/")
}
