package gcp

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestVMManager(run Runner) *VMManager {
	return NewVMManager(run, "bench-1", "europe-west1-b")
}

func TestVMCreate(t *testing.T) {
	t.Parallel()
	run := newFakeRunner()
	m := newTestVMManager(run)

	keyDir := t.TempDir()
	keyPath, err := m.Create(context.Background(), "fleet-host", CreateOptions{KeyDir: keyDir})
	require.NoError(t, err)

	// The generated key landed on disk and in the VM metadata.
	_, err = os.Stat(keyPath)
	require.NoError(t, err)
	_, err = os.Stat(keyPath + ".pub")
	require.NoError(t, err)

	calls := run.calls()
	assert.Contains(t, calls, "compute instances create fleet-host")
	assert.Contains(t, calls, "--machine-type="+DefaultMachineType)
	assert.Contains(t, calls, "--metadata=ssh-keys="+sshUser+":ssh-rsa ")
	assert.Contains(t, calls, "--zone=europe-west1-b")
	assert.Contains(t, calls, "--project=bench-1")
}

func TestVMCreate_FailurePropagates(t *testing.T) {
	t.Parallel()
	run := newFakeRunner()
	run.Responses["compute instances create"] = fakeResponse{Err: errors.New("zone exhausted")}
	m := newTestVMManager(run)

	_, err := m.Create(context.Background(), "fleet-host", CreateOptions{KeyDir: t.TempDir()})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "zone exhausted")
}

func TestVMDeleteIsQuiet(t *testing.T) {
	t.Parallel()
	run := newFakeRunner()
	m := newTestVMManager(run)

	require.NoError(t, m.Delete(context.Background(), "fleet-host"))
	assert.Contains(t, run.calls(), "compute instances delete fleet-host --quiet")
}

func TestVMSSHIsInteractive(t *testing.T) {
	t.Parallel()
	run := newFakeRunner()
	m := newTestVMManager(run)

	require.NoError(t, m.SSH(context.Background(), "fleet-host"))
	require.Len(t, run.InteractiveCalls, 1)
	assert.Contains(t, run.InteractiveCalls[0], "compute ssh "+sshUser+"@fleet-host")
	assert.Empty(t, run.Calls)
}

func TestEnsureFirewall_SkipsExistingRule(t *testing.T) {
	t.Parallel()
	run := newFakeRunner()
	run.Responses["compute firewall-rules describe"] = fakeResponse{Output: firewallRule}
	m := newTestVMManager(run)

	require.NoError(t, m.EnsureFirewall(context.Background(), []int{25, 143}))
	assert.NotContains(t, run.calls(), "firewall-rules create")
}

func TestEnsureFirewall_CreatesRule(t *testing.T) {
	t.Parallel()
	run := newFakeRunner()
	run.Responses["compute firewall-rules describe"] = fakeResponse{Err: errors.New("not found")}
	m := newTestVMManager(run)

	require.NoError(t, m.EnsureFirewall(context.Background(), []int{25, 143, 587}))
	assert.Contains(t, run.calls(), "--allow=tcp:25,tcp:143,tcp:587")
}

func TestVMResize_CyclesInstance(t *testing.T) {
	t.Parallel()
	run := newFakeRunner()
	m := newTestVMManager(run)

	require.NoError(t, m.Resize(context.Background(), "fleet-host", "e2-standard-8"))
	require.Len(t, run.Calls, 3)
	assert.Contains(t, run.Calls[0], "compute instances stop fleet-host")
	assert.Contains(t, run.Calls[1], "set-machine-type fleet-host --machine-type=e2-standard-8")
	assert.Contains(t, run.Calls[2], "compute instances start fleet-host")
}
