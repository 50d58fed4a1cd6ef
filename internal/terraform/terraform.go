// Package terraform drives the terraform binary for the stack.
package terraform

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/blackwell-systems/stack-deploy/internal/runner"
)

// PlanFile is the saved plan that apply consumes.
const PlanFile = "tfplan"

// ErrOutputEmpty is returned when an output exists but has no value.
var ErrOutputEmpty = errors.New("terraform output is empty")

// Client runs terraform in a working directory.
type Client struct {
	bin string
	dir string
	run runner.Runner
}

// NewClient creates a client for the Terraform configuration in dir.
func NewClient(bin, dir string, r runner.Runner) *Client {
	return &Client{bin: bin, dir: dir, run: r}
}

// Dir returns the Terraform working directory.
func (c *Client) Dir() string {
	return c.dir
}

func (c *Client) stream(ctx context.Context, args ...string) error {
	_, err := c.run.Run(ctx, runner.Cmd{
		Name:   c.bin,
		Args:   args,
		Dir:    c.dir,
		Stream: true,
	})
	if err != nil {
		return fmt.Errorf("terraform %s failed: %w", args[0], err)
	}
	return nil
}

// Init runs terraform init.
func (c *Client) Init(ctx context.Context) error {
	return c.stream(ctx, "init", "-input=false")
}

// Plan writes the execution plan to PlanFile.
func (c *Client) Plan(ctx context.Context) error {
	return c.stream(ctx, "plan", "-input=false", "-out="+PlanFile)
}

// Apply applies PlanFile.
func (c *Client) Apply(ctx context.Context) error {
	return c.stream(ctx, "apply", "-input=false", PlanFile)
}

// Deploy runs init, plan and apply in order, stopping at the first failure.
func (c *Client) Deploy(ctx context.Context) error {
	for _, step := range []func(context.Context) error{c.Init, c.Plan, c.Apply} {
		if err := step(ctx); err != nil {
			return err
		}
	}
	return nil
}

// Output returns the raw value of a root module output.
func (c *Client) Output(ctx context.Context, name string) (string, error) {
	res, err := c.run.Run(ctx, runner.Cmd{
		Name: c.bin,
		Args: []string{"output", "-raw", name},
		Dir:  c.dir,
	})
	if err != nil {
		return "", fmt.Errorf("terraform output %s failed: %w", name, err)
	}

	v := strings.TrimSpace(string(res.Stdout))
	if v == "" {
		return "", fmt.Errorf("%w: %s", ErrOutputEmpty, name)
	}
	return v, nil
}
