package poste

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"postefleet/internal/platform/docker"
)

func TestConsole_DomainList(t *testing.T) {
	t.Parallel()
	rt := docker.NewFake()
	rt.ExecFunc = func(_ string, cmd []string) (docker.ExecResult, error) {
		assert.Equal(t, consolePath, cmd[0])
		return docker.ExecResult{Stdout: "Domains:\nmcp1.com\nmcp2.com\n\n"}, nil
	}

	domains, err := NewConsole(rt, "poste-0").DomainList(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"mcp1.com", "mcp2.com"}, domains)
}

func TestConsole_DomainCreate_AlreadyExists(t *testing.T) {
	t.Parallel()
	rt := docker.NewFake()
	rt.ExecFunc = func(_ string, cmd []string) (docker.ExecResult, error) {
		return docker.ExecResult{ExitCode: 1, Stderr: "Domain mcp1.com already exists"}, nil
	}
	err := NewConsole(rt, "poste-0").DomainCreate(context.Background(), "mcp1.com")
	assert.NoError(t, err)
}

func TestConsole_DomainCreate_OtherFailure(t *testing.T) {
	t.Parallel()
	rt := docker.NewFake()
	rt.ExecFunc = func(_ string, cmd []string) (docker.ExecResult, error) {
		return docker.ExecResult{ExitCode: 1, Stderr: "database is locked"}, nil
	}
	err := NewConsole(rt, "poste-0").DomainCreate(context.Background(), "mcp1.com")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "database is locked")
}

func TestConsole_EmailCreate_PassesArguments(t *testing.T) {
	t.Parallel()
	rt := docker.NewFake()
	var got []string
	rt.ExecFunc = func(_ string, cmd []string) (docker.ExecResult, error) {
		got = cmd
		return docker.ExecResult{}, nil
	}

	err := NewConsole(rt, "poste-2").EmailCreate(context.Background(), "alice@mcp3.com", "secret", "Alice A")
	require.NoError(t, err)
	assert.Equal(t, []string{consolePath, "email:create", "alice@mcp3.com", "secret", "Alice A"}, got)
}

func TestConsole_SchemaProbe_TransportError(t *testing.T) {
	t.Parallel()
	rt := docker.NewFake()
	rt.ExecFunc = func(_ string, cmd []string) (docker.ExecResult, error) {
		return docker.ExecResult{}, errors.New("container not running")
	}
	_, err := NewConsole(rt, "poste-0").SchemaProbe(context.Background())
	assert.Error(t, err)
}

func TestIsMissingTable(t *testing.T) {
	t.Parallel()
	assert.True(t, IsMissingTable("SQLSTATE[HY000]: General error: 1 no such table: domain"))
	assert.True(t, IsMissingTable("No Such Table: box"))
	assert.False(t, IsMissingTable("mcp1.com\nmcp2.com"))
	assert.False(t, IsMissingTable(""))
}

func TestConsole_SchemaCreate_ReportsFailure(t *testing.T) {
	t.Parallel()
	rt := docker.NewFake()
	rt.ExecFunc = func(_ string, cmd []string) (docker.ExecResult, error) {
		if strings.Contains(strings.Join(cmd, " "), "doctrine:schema:create") {
			return docker.ExecResult{ExitCode: 1, Stderr: "schema tool unavailable"}, nil
		}
		return docker.ExecResult{}, nil
	}
	err := NewConsole(rt, "poste-0").SchemaCreate(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "schema tool unavailable")
}
