package docker

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blackwell-systems/stack-deploy/internal/runner"
)

func TestRefs(t *testing.T) {
	assert.Equal(t, "shop-backend:latest", LocalRef("shop", "backend", "latest"))
	assert.Equal(t,
		"123456789012.dkr.ecr.us-east-1.amazonaws.com/shop-frontend:latest",
		RemoteRef("123456789012.dkr.ecr.us-east-1.amazonaws.com", "shop", "frontend", "latest"))
}

func TestLoginUsesStdin(t *testing.T) {
	m := &runner.MockRunner{}
	c := NewClient("docker", m)

	require.NoError(t, c.Login(context.Background(), "reg.example", "s3cret"))
	assert.Equal(t, []string{"docker login --username AWS --password-stdin reg.example"}, m.CommandLines())
	assert.Equal(t, "s3cret", m.Stdins[0])
	assert.NotContains(t, m.CommandLines()[0], "s3cret")
}

func TestBuildTagPush(t *testing.T) {
	m := &runner.MockRunner{}
	c := NewClient("docker", m)
	ctx := context.Background()

	require.NoError(t, c.Build(ctx, "shop-backend:latest", "./backend"))
	require.NoError(t, c.Tag(ctx, "shop-backend:latest", "reg/shop-backend:latest"))
	require.NoError(t, c.Push(ctx, "reg/shop-backend:latest"))

	assert.Equal(t, []string{
		"docker build -t shop-backend:latest ./backend",
		"docker tag shop-backend:latest reg/shop-backend:latest",
		"docker push reg/shop-backend:latest",
	}, m.CommandLines())
	assert.True(t, m.Calls[0].Stream)
	assert.False(t, m.Calls[1].Stream)
	assert.True(t, m.Calls[2].Stream)
}

func TestErrorsNameTheImage(t *testing.T) {
	m := &runner.MockRunner{
		RunFunc: func(context.Context, runner.Cmd) (*runner.Result, error) {
			return nil, errors.New("exit status 1")
		},
	}
	c := NewClient("docker", m)

	err := c.Push(context.Background(), "reg/shop-frontend:latest")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "docker push reg/shop-frontend:latest failed")
}
