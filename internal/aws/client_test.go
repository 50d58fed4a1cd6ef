package aws

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blackwell-systems/stack-deploy/internal/runner"
)

func noEnv(string) string { return "" }

func TestCallerIdentity(t *testing.T) {
	m := &runner.MockRunner{
		RunFunc: func(_ context.Context, cmd runner.Cmd) (*runner.Result, error) {
			return &runner.Result{Stdout: []byte(`{"UserId":"AIDA123","Account":"123456789012","Arn":"arn:aws:iam::123456789012:user/dev"}`)}, nil
		},
	}

	id, err := NewClient("aws", m).CallerIdentity(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "123456789012", id.Account)
	assert.Equal(t, "AIDA123", id.UserID)
	assert.Equal(t, []string{"aws sts get-caller-identity --output json"}, m.CommandLines())
}

func TestCallerIdentityFailure(t *testing.T) {
	tests := []struct {
		name   string
		result *runner.Result
		err    error
		noCred bool
	}{
		{
			name:   "cli error",
			err:    &runner.CommandError{Command: "aws sts get-caller-identity", ExitCode: 255, Err: errors.New("exit status 255")},
			noCred: true,
		},
		{
			name:   "missing account",
			result: &runner.Result{Stdout: []byte(`{"Arn":"x"}`)},
			noCred: true,
		},
		{
			name:   "garbage output",
			result: &runner.Result{Stdout: []byte(`not json`)},
			noCred: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := &runner.MockRunner{
				RunFunc: func(context.Context, runner.Cmd) (*runner.Result, error) {
					return tt.result, tt.err
				},
			}

			_, err := NewClient("aws", m).CallerIdentity(context.Background())
			require.Error(t, err)
			assert.Equal(t, tt.noCred, errors.Is(err, ErrNoCredentials))
		})
	}
}

func TestResolveRegion(t *testing.T) {
	tests := []struct {
		name     string
		override string
		env      map[string]string
		tfvars   string
		profile  string
		want     string
		wantCLI  bool
	}{
		{name: "override wins", override: "eu-west-1", env: map[string]string{"AWS_REGION": "us-west-2"}, want: "eu-west-1"},
		{name: "AWS_REGION", env: map[string]string{"AWS_REGION": "us-west-2", "AWS_DEFAULT_REGION": "ap-south-1"}, want: "us-west-2"},
		{name: "AWS_DEFAULT_REGION", env: map[string]string{"AWS_DEFAULT_REGION": "ap-south-1"}, tfvars: "eu-central-1", want: "ap-south-1"},
		{name: "tfvars", tfvars: "eu-central-1", want: "eu-central-1"},
		{name: "cli profile", profile: "ca-central-1\n", want: "ca-central-1", wantCLI: true},
		{name: "fallback", want: DefaultRegion, wantCLI: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := &runner.MockRunner{
				RunFunc: func(context.Context, runner.Cmd) (*runner.Result, error) {
					if tt.profile == "" {
						return nil, errors.New("exit status 1")
					}
					return &runner.Result{Stdout: []byte(tt.profile)}, nil
				},
			}
			c := NewClient("aws", m).WithGetenv(func(k string) string { return tt.env[k] })

			got := c.ResolveRegion(context.Background(), tt.override, tt.tfvars)
			assert.Equal(t, tt.want, got)
			if tt.wantCLI {
				assert.Equal(t, []string{"aws configure get region"}, m.CommandLines())
			} else {
				assert.Empty(t, m.Calls)
			}
		})
	}
}

func TestECRLoginPassword(t *testing.T) {
	m := &runner.MockRunner{
		RunFunc: func(context.Context, runner.Cmd) (*runner.Result, error) {
			return &runner.Result{Stdout: []byte("token123\n")}, nil
		},
	}

	pw, err := NewClient("aws", m).WithGetenv(noEnv).ECRLoginPassword(context.Background(), "us-east-1")
	require.NoError(t, err)
	assert.Equal(t, "token123", pw)
	assert.Equal(t, []string{"aws ecr get-login-password --region us-east-1"}, m.CommandLines())
}

func TestECRLoginPasswordEmpty(t *testing.T) {
	m := &runner.MockRunner{}

	_, err := NewClient("aws", m).ECRLoginPassword(context.Background(), "us-east-1")
	assert.Error(t, err)
}

func TestRegistryURL(t *testing.T) {
	assert.Equal(t, "123456789012.dkr.ecr.eu-west-1.amazonaws.com", RegistryURL("123456789012", "eu-west-1"))
}
