package skillsprint

import (
	"strings"
	"sync"
)

var _ Navigator = (*Location)(nil)

// ReloadHook runs after a hard redirect, the place to rebuild state from
// storage
type ReloadHook func(path string)

// Location tracks the current route of the client
type Location struct {
	mu      sync.Mutex
	path    string
	reloads int
	history []string
	hooks   []ReloadHook
}

func NewLocation(start string) *Location {
	if start == "" {
		start = "/"
	}
	return &Location{path: start}
}

// OnReload registers a hook for hard redirects
func (l *Location) OnReload(hook ReloadHook) *Location {
	if hook == nil {
		return l
	}
	l.mu.Lock()
	l.hooks = append(l.hooks, hook)
	l.mu.Unlock()
	return l
}

func (l *Location) CurrentPath() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.path
}

// Navigate replaces the current route
func (l *Location) Navigate(path string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.history = append(l.history, l.path)
	l.path = path
}

// HardRedirect replaces the route and runs the reload hooks
func (l *Location) HardRedirect(path string) {
	l.mu.Lock()
	l.history = append(l.history, l.path)
	l.path = path
	l.reloads++
	hooks := make([]ReloadHook, len(l.hooks))
	copy(hooks, l.hooks)
	l.mu.Unlock()

	for _, hook := range hooks {
		hook(path)
	}
}

// Reloads counts hard redirects since creation
func (l *Location) Reloads() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.reloads
}

// History returns the routes left behind, oldest first
func (l *Location) History() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]string, len(l.history))
	copy(out, l.history)
	return out
}

// IsLoginPath matches the login route and anything below it
func IsLoginPath(path string) bool {
	return strings.HasPrefix(path, LoginPath)
}

type noopNavigator struct{}

func (noopNavigator) CurrentPath() string { return "" }
func (noopNavigator) Navigate(string)     {}
func (noopNavigator) HardRedirect(string) {}
