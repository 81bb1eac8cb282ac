// Package hook runs the user's before/after export commands.
package hook

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"sort"
	"strings"
)

// Substitution names understood in command arguments.
const (
	SubPath  = "path"
	SubFile  = "file"
	SubCount = "count"
	SubQuery = "query"
)

// Runner executes an external command.
type Runner interface {
	// Run executes args[0] with args[1:] after replacing each {name} that
	// appears in subs. It blocks until the command exits.
	Run(ctx context.Context, args []string, subs map[string]string) error
}

// CommandError reports a command that could not be started or exited
// unsuccessfully.
type CommandError struct {
	Args   []string
	Stderr string
	Err    error
}

func (e *CommandError) Error() string {
	name := ""
	if len(e.Args) > 0 {
		name = e.Args[0]
	}
	if e.Stderr != "" {
		return fmt.Sprintf("command %s failed: %s", name, e.Stderr)
	}
	return fmt.Sprintf("command %s failed: %v", name, e.Err)
}

func (e *CommandError) Unwrap() error {
	return e.Err
}

// Expand replaces {name} occurrences in each argument. Braces that do not
// name a substitution are left alone, so shell snippets such as ${HOME}
// pass through unchanged.
func Expand(args []string, subs map[string]string) []string {
	keys := make([]string, 0, len(subs))
	for k := range subs {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	pairs := make([]string, 0, 2*len(keys))
	for _, k := range keys {
		pairs = append(pairs, "{"+k+"}", subs[k])
	}
	r := strings.NewReplacer(pairs...)

	out := make([]string, len(args))
	for i, a := range args {
		out[i] = r.Replace(a)
	}
	return out
}

// ExecRunner runs commands as child processes.
type ExecRunner struct {
	// Dir is the working directory; empty means the current one.
	Dir string
	// Stdout receives the command's standard output; nil discards it.
	Stdout io.Writer
}

// Run implements Runner.
func (r *ExecRunner) Run(ctx context.Context, args []string, subs map[string]string) error {
	if len(args) == 0 {
		return nil
	}
	argv := Expand(args, subs)

	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	cmd.Dir = r.Dir

	var stderr bytes.Buffer
	cmd.Stdout = r.Stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		var execErr *exec.Error
		if errors.As(err, &execErr) {
			return &CommandError{Args: argv, Err: fmt.Errorf("%s not found: %w", argv[0], err)}
		}
		return &CommandError{Args: argv, Stderr: strings.TrimSpace(stderr.String()), Err: err}
	}
	return nil
}
