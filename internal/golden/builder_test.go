package golden

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"postefleet/internal/config"
	"postefleet/internal/fleet"
	"postefleet/internal/platform/docker"
	"postefleet/internal/poste"
)

// newTestBuilder wires a builder over a fake runtime whose readiness
// probe targets the given test server.
func newTestBuilder(t *testing.T, server *httptest.Server) (*Builder, *docker.Fake) {
	t.Helper()

	u, err := url.Parse(server.URL)
	require.NoError(t, err)
	port, err := strconv.Atoi(u.Port())
	require.NoError(t, err)

	cfg := config.Default()
	cfg.DataRoot = t.TempDir()
	cfg.BaseWebPort = port

	rt := docker.NewFake()
	b := NewBuilder(fleet.NewController(rt, cfg))
	b.Waiter.Host = "127.0.0.1"
	b.Waiter.Attempts = 3
	b.Waiter.Interval = time.Millisecond
	return b, rt
}

func okServer(t *testing.T) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	t.Cleanup(server.Close)
	return server
}

// healthyExec scripts every console interaction of a successful build.
func healthyExec(_ string, cmd []string) (docker.ExecResult, error) {
	joined := strings.Join(cmd, " ")
	switch {
	case strings.Contains(joined, "--probe"):
		return docker.ExecResult{Stdout: "PROBE_OK\n"}, nil
	case strings.Contains(joined, "bulk_create.php"):
		return docker.ExecResult{Stdout: "2|0\n"}, nil
	case strings.Contains(joined, "domain:list"):
		return docker.ExecResult{Stdout: "mcp1.com\n"}, nil
	}
	return docker.ExecResult{}, nil
}

func TestBuild_CommitsGoldenImage(t *testing.T) {
	t.Parallel()
	b, rt := newTestBuilder(t, okServer(t))
	rt.ExecFunc = healthyExec

	err := b.Build(context.Background(), BuildOptions{
		Domains: []string{"mcp1.com"},
		Users:   []poste.User{{Email: "a@mcp.com", Password: "p"}, {Email: "b@mcp.com", Password: "p"}},
	})
	require.NoError(t, err)

	cfg := b.ctrl.Config()
	assert.True(t, rt.Images[cfg.GoldenImage], "golden tag should have been committed")

	calls := strings.Join(rt.Calls, "\n")
	assert.Contains(t, calls, "ensure-running "+buildContainerName)
	assert.Contains(t, calls, "cp -a /data "+seedPath)
	assert.Contains(t, calls, "stop "+buildContainerName)
	assert.Contains(t, calls, "commit "+buildContainerName+" as "+cfg.GoldenImage)
	// The build container never survives the build.
	assert.Contains(t, calls, "stop-and-remove "+buildContainerName)
	assert.Empty(t, rt.RunningNames())
}

func TestBuild_SkipsWhenImageExists(t *testing.T) {
	t.Parallel()
	b, rt := newTestBuilder(t, okServer(t))
	rt.Images[b.ctrl.Config().GoldenImage] = true

	require.NoError(t, b.Build(context.Background(), BuildOptions{}))
	assert.NotContains(t, strings.Join(rt.Calls, "\n"), "ensure-running")
}

func TestBuild_ForceRebuildsExistingImage(t *testing.T) {
	t.Parallel()
	b, rt := newTestBuilder(t, okServer(t))
	rt.Images[b.ctrl.Config().GoldenImage] = true
	rt.ExecFunc = healthyExec

	err := b.Build(context.Background(), BuildOptions{
		Force:   true,
		Domains: []string{"mcp1.com"},
		Users:   []poste.User{{Email: "a@mcp.com", Password: "p"}},
	})
	require.NoError(t, err)
	assert.Contains(t, strings.Join(rt.Calls, "\n"), "commit "+buildContainerName)
}

func TestBuild_AbortsOnProvisioningFailures(t *testing.T) {
	t.Parallel()
	b, rt := newTestBuilder(t, okServer(t))
	rt.ExecFunc = func(_ string, cmd []string) (docker.ExecResult, error) {
		joined := strings.Join(cmd, " ")
		switch {
		case strings.Contains(joined, "--probe"):
			return docker.ExecResult{Stdout: "PROBE_OK\n"}, nil
		case strings.Contains(joined, "bulk_create.php"):
			return docker.ExecResult{Stdout: "1|1\n"}, nil
		case strings.Contains(joined, "domain:list"):
			return docker.ExecResult{Stdout: "mcp1.com\n"}, nil
		}
		return docker.ExecResult{}, nil
	}

	err := b.Build(context.Background(), BuildOptions{
		Domains: []string{"mcp1.com"},
		Users:   []poste.User{{Email: "a@mcp.com"}, {Email: "b@mcp.com"}},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "account creations failed")

	calls := strings.Join(rt.Calls, "\n")
	assert.NotContains(t, calls, "commit ")
	// Cleanup still ran.
	assert.Contains(t, calls, "stop-and-remove "+buildContainerName)
}

func TestBuild_CommitFailureIsReported(t *testing.T) {
	t.Parallel()
	b, rt := newTestBuilder(t, okServer(t))
	rt.ExecFunc = healthyExec
	rt.CommitErr = errors.New("no space left on device")

	err := b.Build(context.Background(), BuildOptions{
		Domains: []string{"mcp1.com"},
		Users:   []poste.User{{Email: "a@mcp.com", Password: "p"}},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to commit golden image")
}

func TestSeedDataDir(t *testing.T) {
	t.Parallel()
	rt := docker.NewFake()

	require.NoError(t, SeedDataDir(context.Background(), rt, "postefleet/poste-golden:latest", "/tmp/postefleet/poste-3"))
	require.Len(t, rt.Calls, 1)
	assert.Contains(t, rt.Calls[0], "cp -a "+seedPath+"/. /seed-target/")
	assert.Contains(t, rt.Calls[0], "/tmp/postefleet/poste-3:/seed-target")
}

func TestSeedDataDir_Failure(t *testing.T) {
	t.Parallel()
	rt := docker.NewFake()
	rt.OneShotErr = errors.New("image not found")

	err := SeedDataDir(context.Background(), rt, "missing:latest", t.TempDir())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to seed")
}
