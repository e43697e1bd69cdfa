package handlers

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"postefleet/internal/gcp"
	"postefleet/internal/util/prerequisites"
)

// recordingRunner collects gcloud invocations.
type recordingRunner struct {
	calls       []string
	interactive []string
}

func (r *recordingRunner) Run(_ context.Context, args ...string) (string, error) {
	r.calls = append(r.calls, strings.Join(args, " "))
	return "", nil
}

func (r *recordingRunner) Interactive(_ context.Context, args ...string) error {
	r.interactive = append(r.interactive, strings.Join(args, " "))
	return nil
}

func wireFakeCloud(t *testing.T) *recordingRunner {
	t.Helper()
	origNewRunner := newRunner
	origCheckCloud := checkCloud
	t.Cleanup(func() {
		newRunner = origNewRunner
		checkCloud = origCheckCloud
	})

	runner := &recordingRunner{}
	newRunner = func() gcp.Runner { return runner }
	checkCloud = func() *prerequisites.CheckResults { return &prerequisites.CheckResults{} }
	return runner
}

func testOpts() VMOptions {
	return VMOptions{Project: "bench-1", Zone: "europe-west1-b", Name: "fleet-host"}
}

func TestCreate_GeneratesKeyAndVM(t *testing.T) {
	runner := wireFakeCloud(t)

	require.NoError(t, Create(context.Background(), testOpts(), "", "", t.TempDir()))
	require.Len(t, runner.calls, 1)
	assert.Contains(t, runner.calls[0], "compute instances create fleet-host")
	assert.Contains(t, runner.calls[0], "--project=bench-1")
}

func TestCreate_MissingGcloudFails(t *testing.T) {
	wireFakeCloud(t)
	checkCloud = func() *prerequisites.CheckResults {
		return &prerequisites.CheckResults{Missing: prerequisites.CloudTools()}
	}

	err := Create(context.Background(), testOpts(), "", "", t.TempDir())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "gcloud")
}

func TestDeleteAndResize(t *testing.T) {
	runner := wireFakeCloud(t)

	require.NoError(t, Delete(context.Background(), testOpts()))
	require.NoError(t, Resize(context.Background(), testOpts(), "e2-standard-8"))

	joined := strings.Join(runner.calls, "\n")
	assert.Contains(t, joined, "compute instances delete fleet-host --quiet")
	assert.Contains(t, joined, "set-machine-type fleet-host --machine-type=e2-standard-8")
}

func TestSSH_IsInteractive(t *testing.T) {
	runner := wireFakeCloud(t)

	require.NoError(t, SSH(context.Background(), testOpts()))
	require.Len(t, runner.interactive, 1)
	assert.Contains(t, runner.interactive[0], "compute ssh")
}

func TestFirewall_RequiresPorts(t *testing.T) {
	wireFakeCloud(t)
	assert.Error(t, Firewall(context.Background(), testOpts(), nil))
}
