package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/pflag"
	"golang.org/x/term"

	"github.com/goliatone/go-skillsprint"
)

var (
	errUsage        = errors.New("usage")
	errLoginNeeded  = errors.New("login required")
	errAccessDenied = errors.New("access denied")
	errNotReady     = errors.New("session not ready")
)

// Messages shown by the individual pages
const (
	msgLoginFailed        = "Login failed. Please check your credentials and role."
	msgRegistered         = "Registration successful! Please login."
	msgRegisterFailed     = "Registration failed. Please try again."
	msgLoadChallenges     = "Failed to load challenges."
	msgLoadChallenge      = "Failed to load challenge details."
	msgLoadChallengeData  = "Failed to load challenge data."
	msgLoadHistory        = "Failed to load submission history."
	msgSubmitted          = "Your solution has been submitted!"
	msgSubmitFailed       = "Submission failed. Please try again."
	msgCreated            = "Challenge created successfully!"
	msgCreateFailed       = "Failed to create challenge."
	msgUpdated            = "Challenge updated successfully!"
	msgUpdateFailed       = "Failed to update challenge."
	msgDeleted            = "Challenge deleted successfully"
	msgDeleteFailed       = "Failed to delete challenge."
	msgSubmissionDeleted  = "Submission deleted"
	msgDeleteSubmissionKO = "Failed to delete submission."
)

type command struct {
	name  string
	usage string
	short string
	run   func(ctx context.Context, a *app, args []string) error
}

var commands = []command{
	{name: "login", usage: "login --username U [--role admin --admin-key K]", short: "sign in, password is read from stdin when not given", run: cmdLogin},
	{name: "register", usage: "register --username U --email E [--admin-key K]", short: "create an account", run: cmdRegister},
	{name: "logout", usage: "logout", short: "end the session", run: cmdLogout},
	{name: "whoami", usage: "whoami", short: "show the current session", run: cmdWhoami},
	{name: "challenges", usage: "challenges", short: "list challenges", run: cmdChallenges},
	{name: "challenge", usage: "challenge <id>", short: "show a challenge", run: cmdChallenge},
	{name: "submit", usage: "submit <id> [--solution S | --file F]", short: "submit a solution, read from stdin when not given", run: cmdSubmit},
	{name: "history", usage: "history <id>", short: "list your submissions for a challenge", run: cmdHistory},
	{name: "admin create", usage: "admin create --title T --description D [--difficulty L]", short: "create a challenge", run: cmdAdminCreate},
	{name: "admin update", usage: "admin update <id> [--title T] [--description D] [--difficulty L]", short: "update a challenge", run: cmdAdminUpdate},
	{name: "admin delete", usage: "admin delete <id>", short: "delete a challenge", run: cmdAdminDelete},
	{name: "admin delete-submission", usage: "admin delete-submission <id>", short: "delete a submission", run: cmdAdminDeleteSubmission},
}

func lookupCommand(args []string) (command, []string, bool) {
	if len(args) == 0 {
		return command{}, nil, false
	}

	name, rest := args[0], args[1:]
	if name == "admin" && len(rest) > 0 {
		name, rest = "admin "+rest[0], rest[1:]
	}

	for _, cmd := range commands {
		if cmd.name == name {
			return cmd, rest, true
		}
	}
	return command{}, nil, false
}

// enter resolves path through the router the way a page load would
func (a *app) enter(path string) (*skillsprint.Match, error) {
	match := a.router.Resolve(path)

	switch match.Outcome {
	case skillsprint.OutcomeRender:
		return match, nil
	case skillsprint.OutcomeRedirectLogin:
		fmt.Fprintln(a.stdout, "Please log in first: sprint login --username <name>")
		return nil, errLoginNeeded
	case skillsprint.OutcomeRedirectDefault:
		return nil, errAccessDenied
	default:
		return nil, errNotReady
	}
}

// fail reports err with the backend message or fallback. Cancelled calls
// are not reported.
func (a *app) fail(ctx context.Context, err error, fallback string) error {
	if ctx.Err() == nil {
		a.notifier.Error(skillsprint.ErrorMessage(err, fallback))
	}
	return err
}

func newFlagSet(name string) *pflag.FlagSet {
	fs := pflag.NewFlagSet(name, pflag.ContinueOnError)
	fs.SetOutput(io.Discard)
	return fs
}

// readPassword reads without echo from a terminal, otherwise one line from
// the shared stdin reader
func (a *app) readPassword(prompt string) string {
	fmt.Fprint(a.stdout, prompt)

	if f, ok := a.stdin.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		secret, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(a.stdout)
		if err != nil {
			a.logger.Warn("unable to read password: %s", err)
			return ""
		}
		return string(secret)
	}

	line, _ := a.input.ReadString('\n')
	return strings.TrimRight(line, "\r\n")
}

func roleNames() string {
	roles := skillsprint.GetAllRoles()
	names := make([]string, 0, len(roles))
	for _, role := range roles {
		names = append(names, role.String())
	}
	return strings.Join(names, ", ")
}

func cmdLogin(ctx context.Context, a *app, args []string) error {
	fs := newFlagSet("login")
	username := fs.StringP("username", "u", "", "username")
	password := fs.StringP("password", "p", "", "password")
	roleName := fs.String("role", string(skillsprint.RoleUser), "one of "+roleNames())
	adminKey := fs.String("admin-key", "", "admin key, required for ADMIN")
	if err := fs.Parse(args); err != nil {
		return errUsage
	}

	role, ok := skillsprint.ParseRole(*roleName)
	if !ok {
		fmt.Fprintf(a.stdout, "unknown role %q, expected one of %s\n", *roleName, roleNames())
		return errUsage
	}

	if _, err := a.enter(skillsprint.LoginPath); err != nil {
		return err
	}

	if *password == "" {
		*password = a.readPassword("Password: ")
	}

	req := skillsprint.NewLoginRequest(*username, *password, role, *adminKey)
	session, err := skillsprint.SignIn(ctx, a.client, a.auther, req)
	if err != nil {
		if errors.Is(err, skillsprint.ErrMissingToken) {
			return a.fail(ctx, err, skillsprint.ErrMissingToken.Message)
		}
		if skillsprint.IsAdminKeyError(err) {
			fmt.Fprintf(a.stdout, "! %s\n", skillsprint.ErrorMessage(err, msgLoginFailed))
			return err
		}
		return a.fail(ctx, err, msgLoginFailed)
	}

	a.notifier.Success(fmt.Sprintf("Welcome back, %s!", firstNonEmpty(session.Username, req.Username)))
	a.router.Resolve(skillsprint.DefaultPath)
	return nil
}

func cmdRegister(ctx context.Context, a *app, args []string) error {
	fs := newFlagSet("register")
	username := fs.StringP("username", "u", "", "username")
	email := fs.StringP("email", "e", "", "email")
	password := fs.StringP("password", "p", "", "password")
	adminKey := fs.String("admin-key", "", "register as ADMIN with this key")
	if err := fs.Parse(args); err != nil {
		return errUsage
	}

	if _, err := a.enter("/register"); err != nil {
		return err
	}

	if *password == "" {
		*password = a.readPassword("Password: ")
	}

	req := skillsprint.NewRegisterRequest(*username, *email, *password, *adminKey)
	if err := a.client.Register(ctx, req); err != nil {
		return a.fail(ctx, err, msgRegisterFailed)
	}

	a.notifier.Success(msgRegistered)
	a.router.Resolve(skillsprint.LoginPath)
	return nil
}

func cmdLogout(ctx context.Context, a *app, _ []string) error {
	if a.auther.User() == nil {
		fmt.Fprintln(a.stdout, "Not logged in.")
		return nil
	}
	if err := a.auther.Logout(ctx); err != nil {
		a.logger.Error("logout: %s", err)
		return err
	}
	fmt.Fprintln(a.stdout, "Logged out.")
	return nil
}

func cmdWhoami(_ context.Context, a *app, _ []string) error {
	user := a.auther.User()
	if user == nil {
		fmt.Fprintln(a.stdout, "Not logged in.")
		return nil
	}

	fmt.Fprintf(a.stdout, "%s (%s)\n", user.Username, user.Role)
	if claims, ok := skillsprint.DecodeClaims(user.Token); ok && !claims.ExpiresAt.IsZero() {
		when := claims.ExpiresAt.Local().Format("2006-01-02 15:04")
		if claims.Expired(time.Now()) {
			fmt.Fprintf(a.stdout, "token expired %s, the next request will sign you out\n", when)
		} else {
			fmt.Fprintf(a.stdout, "token expires %s\n", when)
		}
	}
	return nil
}

func cmdChallenges(ctx context.Context, a *app, _ []string) error {
	if _, err := a.enter(skillsprint.DefaultPath); err != nil {
		return err
	}

	view := skillsprint.NewView[[]skillsprint.Challenge](nil)
	if err := view.Load(ctx, a.client.ListChallenges); err != nil {
		return a.fail(ctx, err, msgLoadChallenges)
	}

	unsolved, solved := skillsprint.SplitSolved(view.State())
	if len(unsolved)+len(solved) == 0 {
		fmt.Fprintln(a.stdout, "No challenges yet.")
		return nil
	}

	tw := tabwriter.NewWriter(a.stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTITLE\tDIFFICULTY\tSTATUS")
	for _, ch := range unsolved {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", ch.ID(), ch.Title, ch.Level(), "open")
	}
	for _, ch := range solved {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", ch.ID(), ch.Title, ch.Level(), "solved")
	}
	return tw.Flush()
}

func cmdChallenge(ctx context.Context, a *app, args []string) error {
	if len(args) != 1 {
		return errUsage
	}

	match, err := a.enter("/challenges/" + args[0])
	if err != nil {
		return err
	}

	challenge, err := a.client.GetChallenge(ctx, match.Param("id"))
	if err != nil {
		return a.fail(ctx, err, msgLoadChallenge)
	}

	printChallenge(a.stdout, challenge)
	return nil
}

func printChallenge(w io.Writer, ch *skillsprint.Challenge) {
	fmt.Fprintf(w, "#%s %s [%s]\n\n", ch.ID(), ch.Title, ch.Level())
	fmt.Fprintln(w, ch.Description)
}

func cmdSubmit(ctx context.Context, a *app, args []string) error {
	fs := newFlagSet("submit")
	solution := fs.StringP("solution", "s", "", "solution text")
	file := fs.StringP("file", "f", "", "read the solution from a file, - for stdin")
	if err := fs.Parse(args); err != nil || fs.NArg() != 1 {
		return errUsage
	}

	match, err := a.enter("/challenges/" + fs.Arg(0))
	if err != nil {
		return err
	}
	id := match.Param("id")

	if _, err := a.client.GetChallenge(ctx, id); err != nil {
		return a.fail(ctx, err, msgLoadChallenge)
	}

	text := *solution
	if text == "" {
		text, err = readSolution(a.input, *file)
		if err != nil {
			a.logger.Error("unable to read solution: %s", err)
			return err
		}
	}

	if err := a.client.SubmitSolution(ctx, id, skillsprint.SolutionRequest{SolutionText: text}); err != nil {
		return a.fail(ctx, err, msgSubmitFailed)
	}

	a.notifier.Success(msgSubmitted)
	return nil
}

func readSolution(stdin io.Reader, path string) (string, error) {
	if path == "" || path == "-" {
		data, err := io.ReadAll(stdin)
		return string(data), err
	}
	data, err := os.ReadFile(path)
	return string(data), err
}

func cmdHistory(ctx context.Context, a *app, args []string) error {
	if len(args) != 1 {
		return errUsage
	}

	match, err := a.enter("/challenges/" + args[0] + "/submissions")
	if err != nil {
		return err
	}
	id := match.Param("id")

	view := skillsprint.NewView[[]skillsprint.Submission](nil)
	err = view.Load(ctx, func(ctx context.Context) ([]skillsprint.Submission, error) {
		return a.client.ListSubmissions(ctx, id)
	})
	if err != nil {
		return a.fail(ctx, err, msgLoadHistory)
	}

	submissions := view.State()
	if len(submissions) == 0 {
		fmt.Fprintln(a.stdout, "No submissions yet.")
		return nil
	}

	tw := tabwriter.NewWriter(a.stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tSTATUS\tSUBMITTED\tSOLUTION")
	for _, sub := range submissions {
		submitted := sub.SubmittedAt
		if t, ok := sub.SubmittedTime(); ok {
			submitted = t.Local().Format("2006-01-02 15:04")
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", sub.ID(), sub.State(), submitted, preview(sub.SolutionText, 40))
	}
	return tw.Flush()
}

func preview(text string, limit int) string {
	text = strings.Join(strings.Fields(text), " ")
	runes := []rune(text)
	if len(runes) <= limit {
		return text
	}
	return string(runes[:limit]) + "..."
}

func cmdAdminCreate(ctx context.Context, a *app, args []string) error {
	fs := newFlagSet("admin create")
	title := fs.StringP("title", "t", "", "title")
	description := fs.StringP("description", "d", "", "description")
	difficulty := fs.String("difficulty", skillsprint.DifficultyMedium, "EASY, MEDIUM or HARD")
	if err := fs.Parse(args); err != nil {
		return errUsage
	}

	if _, err := a.enter("/admin/create-challenge"); err != nil {
		return err
	}

	req := skillsprint.NewChallengeRequest(*title, *description, *difficulty)
	if err := a.client.CreateChallenge(ctx, req); err != nil {
		return a.fail(ctx, err, msgCreateFailed)
	}

	a.notifier.Success(msgCreated)
	a.router.Resolve(skillsprint.DefaultPath)
	return nil
}

func cmdAdminUpdate(ctx context.Context, a *app, args []string) error {
	fs := newFlagSet("admin update")
	title := fs.StringP("title", "t", "", "title")
	description := fs.StringP("description", "d", "", "description")
	difficulty := fs.String("difficulty", "", "EASY, MEDIUM or HARD")
	if err := fs.Parse(args); err != nil || fs.NArg() != 1 {
		return errUsage
	}

	match, err := a.enter("/admin/update-challenge/" + fs.Arg(0))
	if err != nil {
		return err
	}
	id := match.Param("id")

	// prefill from the listing, a missing challenge leaves the form empty
	current := skillsprint.Challenge{}
	found, err := a.client.GetChallenge(ctx, id)
	switch {
	case err == nil:
		current = *found
	case errors.Is(err, skillsprint.ErrChallengeNotFound):
	default:
		return a.fail(ctx, err, msgLoadChallengeData)
	}

	req := skillsprint.NewChallengeRequest(
		pick(fs, "title", *title, current.Title),
		pick(fs, "description", *description, current.Description),
		pick(fs, "difficulty", *difficulty, current.Level()),
	)
	if err := a.client.UpdateChallenge(ctx, id, req); err != nil {
		return a.fail(ctx, err, msgUpdateFailed)
	}

	a.notifier.Success(msgUpdated)
	a.router.Resolve(skillsprint.DefaultPath)
	return nil
}

func pick(fs *pflag.FlagSet, name, flagValue, current string) string {
	if fs.Changed(name) {
		return flagValue
	}
	return current
}

// requireAdmin gates admin actions that live on pages open to every user
func (a *app) requireAdmin(path string) error {
	if _, err := a.enter(path); err != nil {
		return err
	}
	if skillsprint.RequireAdmin(a.auther, a.notifier) != skillsprint.OutcomeRender {
		return errAccessDenied
	}
	return nil
}

func cmdAdminDelete(ctx context.Context, a *app, args []string) error {
	if len(args) != 1 {
		return errUsage
	}
	if err := a.requireAdmin(skillsprint.DefaultPath); err != nil {
		return err
	}

	if err := a.client.DeleteChallenge(ctx, args[0]); err != nil {
		return a.fail(ctx, err, msgDeleteFailed)
	}
	a.notifier.Success(msgDeleted)
	return nil
}

func cmdAdminDeleteSubmission(ctx context.Context, a *app, args []string) error {
	if len(args) != 1 {
		return errUsage
	}
	if err := a.requireAdmin(skillsprint.DefaultPath); err != nil {
		return err
	}

	if err := a.client.DeleteSubmission(ctx, args[0]); err != nil {
		return a.fail(ctx, err, msgDeleteSubmissionKO)
	}
	a.notifier.Success(msgSubmissionDeleted)
	return nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
