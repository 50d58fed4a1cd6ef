package runner

import (
	"context"
	"io"
)

// MockRunner is a Runner for tests. It records every command it is given.
type MockRunner struct {
	RunFunc func(ctx context.Context, cmd Cmd) (*Result, error)

	Calls []Cmd

	// Stdins holds what each call received on stdin, indexed like Calls.
	Stdins []string
}

// Verify MockRunner implements Runner at compile time
var _ Runner = (*MockRunner)(nil)

// Run implements Runner
func (m *MockRunner) Run(ctx context.Context, cmd Cmd) (*Result, error) {
	var stdin string
	if cmd.Stdin != nil {
		b, err := io.ReadAll(cmd.Stdin)
		if err != nil {
			return nil, err
		}
		stdin = string(b)
	}
	m.Calls = append(m.Calls, cmd)
	m.Stdins = append(m.Stdins, stdin)

	if m.RunFunc != nil {
		return m.RunFunc(ctx, cmd)
	}
	return &Result{}, nil
}

// CommandLines returns the recorded commands as shell strings.
func (m *MockRunner) CommandLines() []string {
	lines := make([]string, 0, len(m.Calls))
	for _, c := range m.Calls {
		lines = append(lines, c.String())
	}
	return lines
}
