// Package runner executes the external tools (aws, docker, terraform).
//
// Commands run synchronously and without a timeout. Cancelling the context
// (Ctrl-C) kills the child process.
package runner

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Cmd describes a single subprocess invocation.
type Cmd struct {
	Name string
	Args []string

	// Dir is the working directory; empty means the current directory.
	Dir string

	// Env entries (KEY=value) are appended to the inherited environment.
	Env []string

	// Stdin is fed to the process. It is never logged.
	Stdin io.Reader

	// Stream sends stdout/stderr to the console instead of capturing stdout.
	// Stderr is always captured so failures can be reported.
	Stream bool
}

// String renders the command line as typed in a shell.
func (c Cmd) String() string {
	return strings.TrimSpace(c.Name + " " + strings.Join(c.Args, " "))
}

// Result holds what a finished command produced.
type Result struct {
	Stdout   []byte
	Stderr   []byte
	Duration time.Duration
}

// Runner runs commands.
type Runner interface {
	Run(ctx context.Context, cmd Cmd) (*Result, error)
}

// CommandError is returned when a command cannot start or exits non-zero.
type CommandError struct {
	Command  string
	ExitCode int
	Stderr   string
	Err      error
}

// Error implements the error interface.
func (e *CommandError) Error() string {
	msg := fmt.Sprintf("%s: %v", e.Command, e.Err)
	if e.Stderr != "" {
		msg += ": " + e.Stderr
	}
	return msg
}

// Unwrap returns the underlying error.
func (e *CommandError) Unwrap() error {
	return e.Err
}

// NotFound reports whether the binary could not be located.
func (e *CommandError) NotFound() bool {
	return errors.Is(e.Err, exec.ErrNotFound)
}

// Exec runs commands with os/exec.
type Exec struct {
	Stdout io.Writer
	Stderr io.Writer
	log    zerolog.Logger
}

// New creates an Exec that streams to the process stdout/stderr.
func New(log zerolog.Logger) *Exec {
	return &Exec{
		Stdout: os.Stdout,
		Stderr: os.Stderr,
		log:    log,
	}
}

// Run executes cmd and waits for it to finish.
func (e *Exec) Run(ctx context.Context, cmd Cmd) (*Result, error) {
	c := exec.CommandContext(ctx, cmd.Name, cmd.Args...)
	c.Dir = cmd.Dir
	if len(cmd.Env) > 0 {
		c.Env = append(c.Environ(), cmd.Env...)
	}
	c.Stdin = cmd.Stdin

	var stdout, stderr bytes.Buffer
	if cmd.Stream {
		c.Stdout = e.Stdout
		c.Stderr = io.MultiWriter(e.Stderr, &stderr)
	} else {
		c.Stdout = &stdout
		c.Stderr = &stderr
	}

	e.log.Debug().Str("cmd", cmd.String()).Str("dir", cmd.Dir).Msg("exec")

	start := time.Now()
	err := c.Run()
	res := &Result{
		Stdout:   stdout.Bytes(),
		Stderr:   stderr.Bytes(),
		Duration: time.Since(start),
	}

	if err != nil {
		ce := &CommandError{
			Command:  cmd.String(),
			ExitCode: -1,
			Stderr:   lastLines(stderr.String(), 10),
			Err:      err,
		}
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			ce.ExitCode = exitErr.ExitCode()
		}
		e.log.Error().Str("cmd", ce.Command).Int("exit_code", ce.ExitCode).Dur("duration", res.Duration).Msg("exec failed")
		return res, ce
	}

	e.log.Debug().Str("cmd", cmd.String()).Dur("duration", res.Duration).Msg("exec done")
	return res, nil
}

// lastLines keeps the tail of long stderr output (terraform, docker build).
func lastLines(s string, n int) string {
	s = strings.TrimSpace(s)
	lines := strings.Split(s, "\n")
	if len(lines) <= n {
		return s
	}
	return strings.Join(lines[len(lines)-n:], "\n")
}
