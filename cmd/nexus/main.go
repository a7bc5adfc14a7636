// Command nexus lists, downloads and uploads content of Sonatype Nexus 2
// repositories.
//
// Usage:
//
//	nexus [-v] <command> [flags] <args>
//
// The server and credentials come from NEXUS_URL and NEXUS_AUTH, a .env file,
// $XDG_CONFIG_HOME/nexus/config.env or ~/.netrc.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"

	nexus "github.com/input-output-hk/nexus-client"
	"github.com/input-output-hk/nexus-client/config"
	"github.com/input-output-hk/nexus-client/errors"
	"github.com/input-output-hk/nexus-client/nexustypes"
)

// Exit codes.
const (
	exitOK      = 0
	exitFailure = 1
	exitUsage   = 2
)

const usage = `usage: nexus [-v] <command> [flags] <args>

commands:
  ls [-R] [--format=short|long|json] ::/<repo>/<dir>/
  download [tree flags] <local-path> ::/<repo>/<path>
  upload [tree flags] [--content-type=T] <local-path> ::/<repo>/<path>
  pull [tree flags] <repo> <local>::<remote>
  push [tree flags] <repo> <local>::<remote>
  rm ::/<repo>/<path>

tree flags:
  --include=GLOB --exclude=GLOB (repeatable) --concurrency=N --dry-run

A remote URI ending in "/" denotes a directory.
`

// app carries the process environment of one invocation.
type app struct {
	stdout io.Writer
	stderr io.Writer

	loadConfig func() (*config.Config, error)
	newClient  func(cfg *config.Config, logger *slog.Logger) (*nexus.Client, error)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	a := &app{
		stdout:     os.Stdout,
		stderr:     os.Stderr,
		loadConfig: func() (*config.Config, error) { return config.Load() },
		newClient:  newClient,
	}
	os.Exit(a.run(ctx, os.Args[1:]))
}

func (a *app) run(ctx context.Context, args []string) int {
	global := flag.NewFlagSet("nexus", flag.ContinueOnError)
	global.SetOutput(a.stderr)
	global.Usage = func() { fmt.Fprint(a.stderr, usage) }
	verbose := global.Bool("v", false, "log debug messages")
	if err := global.Parse(args); err != nil {
		return exitUsage
	}
	if global.NArg() == 0 {
		global.Usage()
		return exitUsage
	}

	cfg, err := a.loadConfig()
	if err != nil {
		return a.fail(err)
	}
	level := cfg.Level()
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(a.stderr, &slog.HandlerOptions{Level: level}))

	cmdName, cmdArgs := global.Arg(0), global.Args()[1:]
	cmd, ok := commands[cmdName]
	if !ok {
		fmt.Fprintf(a.stderr, "nexus: unknown command %q\n\n", cmdName)
		global.Usage()
		return exitUsage
	}

	fs := flag.NewFlagSet(cmdName, flag.ContinueOnError)
	fs.SetOutput(a.stderr)
	fs.Usage = func() { fmt.Fprint(a.stderr, usage) }
	run := cmd(fs)
	if err := fs.Parse(cmdArgs); err != nil {
		return exitUsage
	}

	client, err := a.newClient(cfg, logger)
	if err != nil {
		return a.fail(err)
	}

	inv := &invocation{
		ctx:    ctx,
		client: client,
		logger: logger,
		stdout: a.stdout,
		args:   fs.Args(),
	}
	if err := run(inv); err != nil {
		if isUsage(err) {
			fmt.Fprintf(a.stderr, "nexus %s: %v\n\n", cmdName, err)
			fs.Usage()
			return exitUsage
		}
		return a.fail(err)
	}
	return exitOK
}

func (a *app) fail(err error) int {
	fmt.Fprintf(a.stderr, "nexus: [%s] %v\n", errors.CodeOf(err), err)
	return exitFailure
}

func newClient(cfg *config.Config, logger *slog.Logger) (*nexus.Client, error) {
	opts := []nexustypes.Option{
		nexus.WithBaseURL(cfg.URL),
		nexus.WithTimeout(cfg.Timeout),
		nexus.WithConcurrency(cfg.Concurrency),
		nexus.WithLogger(logger),
	}
	if cfg.HasCredentials() {
		opts = append(opts, nexus.WithCredentials(cfg.User, cfg.Password))
	}
	if cfg.UserAgent != "" {
		opts = append(opts, nexus.WithUserAgent(cfg.UserAgent))
	}
	return nexus.New(opts...)
}
