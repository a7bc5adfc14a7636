package main

import (
	"context"
	stderrors "errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	nexus "github.com/input-output-hk/nexus-client"
	"github.com/input-output-hk/nexus-client/nexustypes"
	"github.com/input-output-hk/nexus-client/nexusuri"
)

// invocation is the parsed state handed to a command.
type invocation struct {
	ctx    context.Context
	client *nexus.Client
	logger *slog.Logger
	stdout io.Writer
	args   []string
}

// command registers its flags and returns the function running it.
type command func(fs *flag.FlagSet) func(*invocation) error

var commands = map[string]command{
	"ls":       lsCommand,
	"download": downloadCommand,
	"upload":   uploadCommand,
	"pull":     pullCommand,
	"push":     pushCommand,
	"rm":       rmCommand,
}

type usageError struct{ msg string }

func (e *usageError) Error() string { return e.msg }

func usagef(format string, args ...any) error {
	return &usageError{msg: fmt.Sprintf(format, args...)}
}

func isUsage(err error) bool {
	var ue *usageError
	return stderrors.As(err, &ue)
}

func expectArgs(inv *invocation, n int) error {
	if len(inv.args) != n {
		return usagef("expected %d arguments, got %d", n, len(inv.args))
	}
	return nil
}

func parseURI(s string) (nexusuri.RemoteURI, error) {
	u, err := nexusuri.Parse(s)
	if err != nil {
		return u, usagef("%v", err)
	}
	return u, nil
}

func lsCommand(fs *flag.FlagSet) func(*invocation) error {
	recursive := fs.Bool("R", false, "list recursively")
	format := fs.String("format", formatShort, "output format: short, long or json")

	return func(inv *invocation) error {
		if err := expectArgs(inv, 1); err != nil {
			return err
		}
		uri, err := parseURI(inv.args[0])
		if err != nil {
			return err
		}
		printer, err := newPrinter(*format, uri.DirPath(), inv.stdout)
		if err != nil {
			return err
		}

		result, listErr := inv.client.List(inv.ctx, uri.Repo, uri.Path, printer.print, nexus.WithRecursive(*recursive))
		if result == nil {
			return listErr
		}
		if err := printer.flush(); err != nil {
			return err
		}
		return listErr
	}
}

// treeFlags are shared by the commands that may move whole trees.
type treeFlags struct {
	include     stringList
	exclude     stringList
	concurrency int
	dryRun      bool
}

func registerTreeFlags(fs *flag.FlagSet) *treeFlags {
	tf := &treeFlags{}
	fs.Var(&tf.include, "include", "only transfer paths matching this glob (repeatable)")
	fs.Var(&tf.exclude, "exclude", "skip paths matching this glob (repeatable)")
	fs.IntVar(&tf.concurrency, "concurrency", 0, "files transferred at once")
	fs.BoolVar(&tf.dryRun, "dry-run", false, "only log what would be transferred")
	return tf
}

func (tf *treeFlags) options() []nexustypes.TreeOption {
	return []nexustypes.TreeOption{
		nexus.WithInclude(tf.include...),
		nexus.WithExclude(tf.exclude...),
		nexus.WithTransferConcurrency(tf.concurrency),
		nexus.WithDryRun(tf.dryRun),
	}
}

func downloadCommand(fs *flag.FlagSet) func(*invocation) error {
	tf := registerTreeFlags(fs)

	return func(inv *invocation) error {
		if err := expectArgs(inv, 2); err != nil {
			return err
		}
		local := inv.args[0]
		uri, err := parseURI(inv.args[1])
		if err != nil {
			return err
		}

		if !uri.Dir {
			n, err := inv.client.DownloadFile(inv.ctx, uri.Repo, uri.Path, local)
			if err != nil {
				return err
			}
			printFileSummary(inv.stdout, n)
			return nil
		}
		result, err := inv.client.DownloadTree(inv.ctx, uri.Repo, uri.DirPath(), local, tf.options()...)
		printTreeSummary(inv.stdout, result)
		return err
	}
}

func uploadCommand(fs *flag.FlagSet) func(*invocation) error {
	tf := registerTreeFlags(fs)
	contentType := fs.String("content-type", "", "Content-Type of a single-file upload")

	return func(inv *invocation) error {
		if err := expectArgs(inv, 2); err != nil {
			return err
		}
		local := inv.args[0]
		uri, err := parseURI(inv.args[1])
		if err != nil {
			return err
		}

		if !uri.Dir {
			var opts []nexustypes.FileOption
			if *contentType != "" {
				opts = append(opts, nexus.WithContentType(*contentType))
			}
			n, err := inv.client.UploadFile(inv.ctx, uri.Repo, local, uri.Path, opts...)
			if err != nil {
				return err
			}
			printFileSummary(inv.stdout, n)
			return nil
		}
		result, err := inv.client.UploadTree(inv.ctx, uri.Repo, local, uri.Path, tf.options()...)
		printTreeSummary(inv.stdout, result)
		return err
	}
}

// pathSpecArgs parses "<repo> <local>::<remote>".
func pathSpecArgs(inv *invocation) (repo, local, remote string, err error) {
	if err := expectArgs(inv, 2); err != nil {
		return "", "", "", err
	}
	spec, err := nexusuri.ParsePathSpec(inv.args[1])
	if err != nil {
		return "", "", "", usagef("%v", err)
	}
	local, err = spec.Local()
	if err != nil {
		return "", "", "", usagef("%v", err)
	}
	return inv.args[0], local, spec.RemoteOrDefault(), nil
}

func pullCommand(fs *flag.FlagSet) func(*invocation) error {
	tf := registerTreeFlags(fs)

	return func(inv *invocation) error {
		repo, local, remote, err := pathSpecArgs(inv)
		if err != nil {
			return err
		}
		inv.logger.Info("pulling", "repo", repo, "remote", remote, "local", local)
		result, err := inv.client.DownloadTree(inv.ctx, repo, remote, local, tf.options()...)
		printTreeSummary(inv.stdout, result)
		return err
	}
}

func pushCommand(fs *flag.FlagSet) func(*invocation) error {
	tf := registerTreeFlags(fs)

	return func(inv *invocation) error {
		repo, local, remote, err := pathSpecArgs(inv)
		if err != nil {
			return err
		}
		inv.logger.Info("pushing", "repo", repo, "local", local, "remote", remote)
		result, err := inv.client.UploadTree(inv.ctx, repo, local, remote, tf.options()...)
		printTreeSummary(inv.stdout, result)
		return err
	}
}

func rmCommand(_ *flag.FlagSet) func(*invocation) error {
	return func(inv *invocation) error {
		if err := expectArgs(inv, 1); err != nil {
			return err
		}
		uri, err := parseURI(inv.args[0])
		if err != nil {
			return err
		}
		if err := inv.client.Remove(inv.ctx, uri.Repo, uri.Path); err != nil {
			return err
		}
		inv.logger.Info("removed", "repo", uri.Repo, "path", uri.Path)
		return nil
	}
}

func printFileSummary(w io.Writer, bytes int64) {
	fmt.Fprintf(w, "1 file transferred (%s)\n", humanize.IBytes(uint64(bytes)))
}

func printTreeSummary(w io.Writer, result *nexustypes.TransferResult) {
	if result == nil {
		return
	}
	fmt.Fprintf(w, "%d files transferred (%s) in %s\n",
		result.Transferred,
		humanize.IBytes(uint64(result.Bytes)),
		result.Duration.Round(time.Millisecond))
	if n := len(result.Failures); n > 0 {
		fmt.Fprintf(w, "%d failed\n", n)
	}
}

// stringList is a repeatable string flag.
type stringList []string

func (l *stringList) String() string {
	return strings.Join(*l, ",")
}

func (l *stringList) Set(v string) error {
	*l = append(*l, v)
	return nil
}
