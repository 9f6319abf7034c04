package skillsprint

import "strings"

// Route names used by the client
const (
	RouteHome              = "home"
	RouteLogin             = "login"
	RouteRegister          = "register"
	RouteChallenges        = "challenges"
	RouteChallengeDetail   = "challenge-detail"
	RouteSubmissionHistory = "submission-history"
	RouteAdminCreate       = "admin-create-challenge"
	RouteAdminUpdate       = "admin-update-challenge"
)

const fallbackPath = "/"

// Route binds a path pattern to its guard. Segments starting with a colon
// are parameters.
type Route struct {
	Name    string
	Pattern string
	Guard   Guard
}

// DefaultRoutes is the route table of the client
func DefaultRoutes() []Route {
	return []Route{
		{Name: RouteHome, Pattern: "/", Guard: Public},
		{Name: RouteLogin, Pattern: "/login", Guard: Public},
		{Name: RouteRegister, Pattern: "/register", Guard: Public},

		{Name: RouteChallenges, Pattern: "/challenges", Guard: RequireAuth},
		{Name: RouteChallengeDetail, Pattern: "/challenges/:id", Guard: RequireAuth},
		{Name: RouteSubmissionHistory, Pattern: "/challenges/:id/submissions", Guard: RequireAuth},

		{Name: RouteAdminCreate, Pattern: "/admin/create-challenge", Guard: RequireAdmin},
		{Name: RouteAdminUpdate, Pattern: "/admin/update-challenge/:id", Guard: RequireAdmin},
	}
}

// Match is the result of resolving a path
type Match struct {
	Route   Route
	Path    string
	Params  map[string]string
	Outcome Outcome
}

// Param returns a path parameter, empty when missing
func (m *Match) Param(name string) string {
	if m == nil || m.Params == nil {
		return ""
	}
	return m.Params[name]
}

// Allowed reports whether the route may render
func (m *Match) Allowed() bool {
	return m != nil && m.Outcome == OutcomeRender
}

// Router evaluates guards on every navigation. It keeps no state between
// evaluations.
type Router struct {
	routes    []Route
	state     AuthState
	navigator Navigator
	notifier  Notifier
	logger    Logger
}

func NewRouter(state AuthState, navigator Navigator, notifier Notifier) *Router {
	if navigator == nil {
		navigator = noopNavigator{}
	}
	if notifier == nil {
		notifier = NoopNotifier{}
	}
	return &Router{
		routes:    DefaultRoutes(),
		state:     state,
		navigator: navigator,
		notifier:  notifier,
		logger:    defLogger{},
	}
}

func (r *Router) WithLogger(logger Logger) *Router {
	r.logger = logger
	return r
}

// WithRoutes replaces the route table
func (r *Router) WithRoutes(routes ...Route) *Router {
	r.routes = routes
	return r
}

// Resolve finds the route for path, runs its guard and performs the
// resulting in-app navigation. Unknown paths go to the home page.
func (r *Router) Resolve(path string) *Match {
	route, params, ok := r.lookup(path)
	if !ok {
		r.logger.Debug("No route for %s, redirecting to %s", path, fallbackPath)
		path = fallbackPath
		route, params, _ = r.lookup(path)
	}

	guard := route.Guard
	if guard == nil {
		guard = Public
	}

	match := &Match{
		Route:   route,
		Path:    path,
		Params:  params,
		Outcome: guard(r.state, r.notifier),
	}

	switch match.Outcome {
	case OutcomeRender:
		r.navigator.Navigate(path)
	case OutcomeRedirectLogin, OutcomeRedirectDefault:
		r.logger.Debug("Guard %s on %s, redirecting to %s", match.Outcome, path, match.Outcome.Target())
		r.navigator.Navigate(match.Outcome.Target())
	}

	return match
}

func (r *Router) lookup(path string) (Route, map[string]string, bool) {
	for _, route := range r.routes {
		if params, ok := matchPattern(route.Pattern, path); ok {
			return route, params, true
		}
	}
	return Route{Name: RouteHome, Pattern: fallbackPath, Guard: Public}, nil, false
}

func matchPattern(pattern, path string) (map[string]string, bool) {
	patternParts := splitPath(pattern)
	pathParts := splitPath(path)
	if len(patternParts) != len(pathParts) {
		return nil, false
	}

	params := map[string]string{}
	for i, part := range patternParts {
		if strings.HasPrefix(part, ":") {
			if pathParts[i] == "" {
				return nil, false
			}
			params[part[1:]] = pathParts[i]
			continue
		}
		if part != pathParts[i] {
			return nil, false
		}
	}
	return params, true
}

func splitPath(path string) []string {
	if i := strings.IndexAny(path, "?#"); i >= 0 {
		path = path[:i]
	}
	path = strings.Trim(path, "/")
	if path == "" {
		return nil
	}
	return strings.Split(path, "/")
}
