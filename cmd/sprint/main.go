package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/goliatone/go-print"
	"github.com/spf13/pflag"

	"github.com/goliatone/go-skillsprint"
	"github.com/goliatone/go-skillsprint/config"
	"github.com/goliatone/go-skillsprint/repository"
	"github.com/goliatone/go-skillsprint/telemetry"
)

const (
	exitOK    = 0
	exitFail  = 1
	exitUsage = 2
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// app is everything a command needs, wired once per invocation
type app struct {
	cfg      *config.Config
	logger   skillsprint.Logger
	auther   *skillsprint.Auther
	client   *skillsprint.Client
	location *skillsprint.Location
	router   *skillsprint.Router
	notifier skillsprint.Notifier

	stdin  io.Reader
	input  *bufio.Reader
	stdout io.Writer
}

func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	fs := pflag.NewFlagSet("sprint", pflag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.SetInterspersed(false)
	config.RegisterFlags(fs)
	fs.Usage = func() { usage(stderr, fs) }

	if err := fs.Parse(args); err != nil {
		if err == pflag.ErrHelp {
			return exitOK
		}
		return exitUsage
	}

	if fs.NArg() == 0 {
		usage(stderr, fs)
		return exitUsage
	}

	cfg, err := config.Load(fs)
	if err != nil {
		fmt.Fprintf(stderr, "config: %s\n", err)
		return exitUsage
	}

	logger, err := newLogger(cfg.GetLogLevel(), stderr)
	if err != nil {
		fmt.Fprintf(stderr, "logger: %s\n", err)
		return exitUsage
	}
	defer logger.Sync()

	logger.Debug("config: %s", print.MaybePrettyJSON(cfg))

	shutdownTelemetry := telemetry.Setup(ctx, telemetry.Config{
		Endpoint: cfg.Telemetry.Endpoint,
		Insecure: cfg.Telemetry.Insecure,
	}, logger)
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = shutdownTelemetry(sctx)
	}()

	a, closeApp, err := newApp(ctx, cfg, logger, stdin, stdout, stderr)
	if err != nil {
		logger.Error("unable to open profile: %s", err)
		return exitFail
	}
	defer closeApp()

	cmd, rest, ok := lookupCommand(fs.Args())
	if !ok {
		usage(stderr, fs)
		return exitUsage
	}

	if err := cmd.run(ctx, a, rest); err != nil {
		if err == errUsage {
			fmt.Fprintf(stderr, "usage: sprint %s\n", cmd.usage)
			return exitUsage
		}
		logger.Debug("%s failed: %s", cmd.name, err)
		return exitFail
	}
	return exitOK
}

func newApp(ctx context.Context, cfg *config.Config, logger skillsprint.Logger, stdin io.Reader, stdout, stderr io.Writer) (*app, func(), error) {
	if dir := cfg.Profile.Dir(); dir != "" {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return nil, nil, err
		}
	}

	db, err := repository.Open(cfg.GetDSN())
	if err != nil {
		return nil, nil, err
	}

	store := repository.NewSessionStore(db)
	if err := store.EnsureSchema(ctx); err != nil {
		_ = db.Close()
		return nil, nil, err
	}

	notifier := skillsprint.NewWriterNotifier(stderr)
	location := skillsprint.NewLocation("/")

	auther := skillsprint.NewAuther(store).
		WithLogger(logger).
		WithNavigator(location).
		WithLogoutTimeout(cfg.GetLogoutTimeout())

	client := skillsprint.NewClient(cfg.ClientConfig(), auther).
		WithLogger(logger).
		WithNavigator(location).
		WithNotifier(notifier)

	auther.WithInvalidator(client)

	// a hard redirect rebuilds the session from the profile
	location.OnReload(func(path string) {
		logger.Debug("reload at %s", path)
		auther.Init(context.WithoutCancel(ctx))
	})

	router := skillsprint.NewRouter(auther, location, notifier).WithLogger(logger)

	auther.Init(ctx)

	a := &app{
		cfg:      cfg,
		logger:   logger,
		auther:   auther,
		client:   client,
		location: location,
		router:   router,
		notifier: notifier,
		stdin:    stdin,
		input:    bufio.NewReader(stdin),
		stdout:   stdout,
	}

	return a, func() { _ = db.Close() }, nil
}

func usage(w io.Writer, fs *pflag.FlagSet) {
	fmt.Fprintln(w, "usage: sprint [flags] <command> [args]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "commands:")
	for _, cmd := range commands {
		fmt.Fprintf(w, "  %-40s %s\n", cmd.usage, cmd.short)
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, "flags:")
	fmt.Fprint(w, fs.FlagUsages())
}
