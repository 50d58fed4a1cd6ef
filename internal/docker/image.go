package docker

import (
	"context"
	"fmt"
	"strings"

	"github.com/blackwell-systems/stack-deploy/internal/runner"
)

// Client runs the docker binary.
type Client struct {
	bin string
	run runner.Runner
}

// NewClient creates a client for the given docker binary.
func NewClient(bin string, r runner.Runner) *Client {
	return &Client{bin: bin, run: r}
}

// LocalRef is the name an image is built under, e.g. shop-backend:latest.
func LocalRef(project, name, tag string) string {
	return fmt.Sprintf("%s-%s:%s", project, name, tag)
}

// RemoteRef is the registry reference an image is pushed to.
func RemoteRef(registry, project, name, tag string) string {
	return registry + "/" + LocalRef(project, name, tag)
}

// Login authenticates against an ECR registry. The password goes through stdin.
func (c *Client) Login(ctx context.Context, registry, password string) error {
	_, err := c.run.Run(ctx, runner.Cmd{
		Name:  c.bin,
		Args:  []string{"login", "--username", "AWS", "--password-stdin", registry},
		Stdin: strings.NewReader(password),
	})
	if err != nil {
		return fmt.Errorf("docker login %s failed: %w", registry, err)
	}
	return nil
}

// Build builds the image in contextDir and tags it ref.
func (c *Client) Build(ctx context.Context, ref, contextDir string) error {
	_, err := c.run.Run(ctx, runner.Cmd{
		Name:   c.bin,
		Args:   []string{"build", "-t", ref, contextDir},
		Stream: true,
	})
	if err != nil {
		return fmt.Errorf("docker build %s failed: %w", ref, err)
	}
	return nil
}

// Tag points dst at src, replacing whatever dst pointed to before.
func (c *Client) Tag(ctx context.Context, src, dst string) error {
	_, err := c.run.Run(ctx, runner.Cmd{
		Name: c.bin,
		Args: []string{"tag", src, dst},
	})
	if err != nil {
		return fmt.Errorf("docker tag %s failed: %w", dst, err)
	}
	return nil
}

// Push uploads ref to its registry.
func (c *Client) Push(ctx context.Context, ref string) error {
	_, err := c.run.Run(ctx, runner.Cmd{
		Name:   c.bin,
		Args:   []string{"push", ref},
		Stream: true,
	})
	if err != nil {
		return fmt.Errorf("docker push %s failed: %w", ref, err)
	}
	return nil
}
