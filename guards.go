package skillsprint

// DefaultPath is where authenticated users land, and where under
// privileged users are sent back to
const DefaultPath = "/challenges"

// Outcome is the terminal state of a guard evaluation
type Outcome int

const (
	// OutcomeWait means the session is still being restored, nothing is
	// decided yet
	OutcomeWait Outcome = iota
	OutcomeRender
	OutcomeRedirectLogin
	OutcomeRedirectDefault
)

func (o Outcome) String() string {
	switch o {
	case OutcomeWait:
		return "wait"
	case OutcomeRender:
		return "render"
	case OutcomeRedirectLogin:
		return "redirect-login"
	case OutcomeRedirectDefault:
		return "redirect-default"
	default:
		return "unknown"
	}
}

// Target is the path a redirect outcome leads to, empty otherwise
func (o Outcome) Target() string {
	switch o {
	case OutcomeRedirectLogin:
		return LoginPath
	case OutcomeRedirectDefault:
		return DefaultPath
	default:
		return ""
	}
}

// Guard decides whether a route may render for the current state
type Guard func(state AuthState, notifier Notifier) Outcome

// RequireAuth lets any logged in user through
func RequireAuth(state AuthState, _ Notifier) Outcome {
	if state.Loading() {
		return OutcomeWait
	}
	if state.User() == nil {
		return OutcomeRedirectLogin
	}
	return OutcomeRender
}

// RequireAdmin lets only admins through. Logged in users without the role
// are told so and sent to the default page instead of the login page.
func RequireAdmin(state AuthState, notifier Notifier) Outcome {
	if outcome := RequireAuth(state, notifier); outcome != OutcomeRender {
		return outcome
	}
	if !state.IsAdmin() {
		if notifier != nil {
			notifier.Error(MessagePermissionDenied)
		}
		return OutcomeRedirectDefault
	}
	return OutcomeRender
}

// Public never blocks
func Public(AuthState, Notifier) Outcome {
	return OutcomeRender
}
