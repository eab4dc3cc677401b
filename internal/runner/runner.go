// Package runner implements the Command Runner: spawns an argv with no
// shell interpolation, inheriting the parent's stdio, bounded by the Job
// Pool.
package runner

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"maek/internal/buildlog"
	"maek/internal/jobpool"
)

// Runner executes commands through a Job Pool, pretty-printing each
// invocation per the color convention.
type Runner struct {
	Pool *jobpool.Pool
	Log  *buildlog.Logger
}

// New builds a Runner bounded by pool and logging through log.
func New(pool *jobpool.Pool, log *buildlog.Logger) *Runner {
	return &Runner{Pool: pool, Log: log}
}

// Run spawns argv[0] with argv[1:] in dir, inheriting stdout/stderr, stdin
// closed, no shell. dir is the engine's root, passed explicitly rather than
// relying on a process-wide chdir. message is pretty-printed dim before the
// command runs. The returned future is awaited here, so Run blocks its
// caller, but the actual child-process execution is admitted through the
// Job Pool, bounding process concurrency across the whole engine.
//
// Resolves on exit code 0. Any non-zero exit, spawn error, or signal fails
// with a BuildError naming the exit code and the pretty-printed command.
func (r *Runner) Run(ctx context.Context, dir string, argv []string, message string) error {
	if r.Log != nil {
		r.Log.Info(message)
	}
	pretty := PrettyPrint(argv)

	fut := jobpool.Submit(ctx, r.Pool, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, r.exec(ctx, dir, argv, pretty)
	})
	_, err := fut.Wait()
	return err
}

func (r *Runner) exec(ctx context.Context, dir string, argv []string, pretty string) error {
	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	cmd.Dir = dir
	cmd.Stdin = nil
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	err := cmd.Run()
	if err == nil {
		return nil
	}

	if exitErr, ok := err.(*exec.ExitError); ok {
		if r.Log != nil {
			r.Log.Fail(fmt.Sprintf("command failed (exit %d): %s", exitErr.ExitCode(), pretty))
		}
		return buildlog.NewBuildError("command exited %d: %s", exitErr.ExitCode(), pretty)
	}

	if r.Log != nil {
		r.Log.Fail(fmt.Sprintf("command could not be spawned: %s: %v", pretty, err))
	}
	return buildlog.NewBuildError("spawning %s: %v", pretty, err)
}

// needsQuote is the character class that forces single-quoting of a
// pretty-printed argv token.
const needsQuote = " \t\n!\"'$&()*,;<>?[\\]^`{|}~"

// PrettyPrint renders argv the way a user would have typed it at a shell,
// purely for display: each token is wrapped in single quotes (doubling any
// embedded single quote) if it contains any of the reserved characters, or
// starts with '=' or '#'.
func PrettyPrint(argv []string) string {
	tokens := make([]string, len(argv))
	for i, tok := range argv {
		tokens[i] = quoteToken(tok)
	}
	return strings.Join(tokens, " ")
}

func quoteToken(tok string) string {
	if !shouldQuote(tok) {
		return tok
	}
	var b strings.Builder
	b.WriteByte('\'')
	for _, r := range tok {
		if r == '\'' {
			b.WriteString("''")
		} else {
			b.WriteRune(r)
		}
	}
	b.WriteByte('\'')
	return b.String()
}

func shouldQuote(tok string) bool {
	if tok == "" {
		return true
	}
	if tok[0] == '=' || tok[0] == '#' {
		return true
	}
	return strings.ContainsAny(tok, needsQuote)
}
