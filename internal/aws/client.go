// Package aws wraps the AWS CLI queries the deployment needs: the caller
// identity, the region, and the ECR login password.
package aws

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/blackwell-systems/stack-deploy/internal/runner"
)

// DefaultRegion is used when no other source names a region.
const DefaultRegion = "us-east-1"

// ErrNoCredentials is returned when the identity query fails.
var ErrNoCredentials = errors.New("AWS credentials not configured")

// Identity is the response of sts get-caller-identity.
type Identity struct {
	Account string `json:"Account"`
	Arn     string `json:"Arn"`
	UserID  string `json:"UserId"`
}

// Client runs the aws binary.
type Client struct {
	bin    string
	run    runner.Runner
	getenv func(string) string
}

// NewClient creates a client for the given aws binary.
func NewClient(bin string, r runner.Runner) *Client {
	return &Client{
		bin:    bin,
		run:    r,
		getenv: os.Getenv,
	}
}

// WithGetenv replaces the environment lookup used by ResolveRegion.
func (c *Client) WithGetenv(fn func(string) string) *Client {
	c.getenv = fn
	return c
}

// CallerIdentity checks that credentials are usable and returns who they belong to.
func (c *Client) CallerIdentity(ctx context.Context) (*Identity, error) {
	res, err := c.run.Run(ctx, runner.Cmd{
		Name: c.bin,
		Args: []string{"sts", "get-caller-identity", "--output", "json"},
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNoCredentials, err)
	}

	var id Identity
	if err := json.Unmarshal(res.Stdout, &id); err != nil {
		return nil, fmt.Errorf("failed to parse caller identity: %w", err)
	}
	if id.Account == "" {
		return nil, fmt.Errorf("%w: caller identity has no account id", ErrNoCredentials)
	}

	return &id, nil
}

// ResolveRegion picks the region from, in order: the explicit override,
// AWS_REGION, AWS_DEFAULT_REGION, the tfvars value, the CLI profile, and
// finally DefaultRegion.
func (c *Client) ResolveRegion(ctx context.Context, override, tfvarsRegion string) string {
	for _, r := range []string{override, c.getenv("AWS_REGION"), c.getenv("AWS_DEFAULT_REGION"), tfvarsRegion} {
		if r = strings.TrimSpace(r); r != "" {
			return r
		}
	}

	// Exits 1 when the profile has no region set
	res, err := c.run.Run(ctx, runner.Cmd{
		Name: c.bin,
		Args: []string{"configure", "get", "region"},
	})
	if err == nil {
		if r := strings.TrimSpace(string(res.Stdout)); r != "" {
			return r
		}
	}

	return DefaultRegion
}

// ECRLoginPassword returns a registry token for docker login.
func (c *Client) ECRLoginPassword(ctx context.Context, region string) (string, error) {
	res, err := c.run.Run(ctx, runner.Cmd{
		Name: c.bin,
		Args: []string{"ecr", "get-login-password", "--region", region},
	})
	if err != nil {
		return "", fmt.Errorf("failed to get ECR login password: %w", err)
	}

	pw := strings.TrimSpace(string(res.Stdout))
	if pw == "" {
		return "", fmt.Errorf("failed to get ECR login password: empty response")
	}
	return pw, nil
}

// RegistryURL returns the private ECR registry host for an account.
func RegistryURL(account, region string) string {
	return fmt.Sprintf("%s.dkr.ecr.%s.amazonaws.com", account, region)
}
