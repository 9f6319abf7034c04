package skillsprint

import (
	"context"
	"fmt"
)

type Logger interface {
	Debug(format string, args ...any)
	Info(format string, args ...any)
	Warn(format string, args ...any)
	Error(format string, args ...any)
}

// Store persists the session fields across process restarts
type Store interface {
	// Get returns the stored value or an empty string when the key is not set
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	// Clear removes token, role and username in one operation
	Clear(ctx context.Context) error
}

// TokenSource hands the transport the bearer token to attach to a request
type TokenSource interface {
	Token(ctx context.Context) string
}

// SessionExpirer tears down the local session after the backend rejected
// the credential
type SessionExpirer interface {
	Expire(ctx context.Context)
}

// Invalidator notifies the backend that the current session ended
type Invalidator interface {
	Logout(ctx context.Context) error
}

// AuthState is the read side of the Auther used by guards
type AuthState interface {
	Loading() bool
	User() *Session
	IsAdmin() bool
}

// Navigator moves the client between routes.
type Navigator interface {
	CurrentPath() string
	// Navigate is an in-app route change that keeps in-memory state
	Navigate(path string)
	// HardRedirect discards in-memory state and reloads from storage
	HardRedirect(path string)
}

// Notifier surfaces non blocking messages to the user
type Notifier interface {
	Success(message string)
	Error(message string)
}

type defLogger struct{}

func (d defLogger) Error(format string, args ...any) {
	fmt.Printf("[ERR] SPRINT "+newline(format), args...)
}

func (d defLogger) Warn(format string, args ...any) {
	fmt.Printf("[WRN] SPRINT "+newline(format), args...)
}

func (d defLogger) Info(format string, args ...any) {
	fmt.Printf("[INF] SPRINT "+newline(format), args...)
}

func (d defLogger) Debug(format string, args ...any) {
	fmt.Printf("[DBG] SPRINT "+newline(format), args...)
}

func newline(s string) string {
	if len(s) > 0 && s[len(s)-1] != '\n' {
		s += "\n"
	}
	return s
}

type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// NoopLogger discards every message
func NoopLogger() Logger {
	return noopLogger{}
}
