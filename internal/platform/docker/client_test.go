package docker

import (
	"testing"

	"github.com/docker/go-connections/nat"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOneShotConfig_BypassesImageEntrypoint(t *testing.T) {
	t.Parallel()
	cfg := oneShotConfig("postefleet/poste-golden:latest",
		[]string{"cp", "-a", "/data-seed/.", "/seed-target/"})

	// The image's own entrypoint must not see the command as arguments.
	assert.Equal(t, []string{"cp"}, []string(cfg.Entrypoint))
	assert.Equal(t, []string{"-a", "/data-seed/.", "/seed-target/"}, []string(cfg.Cmd))
}

func TestBuildConfigs_PortsAndBinds(t *testing.T) {
	t.Parallel()
	cfg, hostCfg, err := buildConfigs(RunSpec{
		Image:  "analogic/poste.io:2.3.13",
		Name:   "poste-0",
		Ports:  map[int]int{80: 8080},
		Binds:  []string{"/tmp/postefleet/poste-0:/data"},
		CapAdd: []string{"NET_ADMIN"},
	})
	require.NoError(t, err)

	web := nat.Port("80/tcp")
	assert.Contains(t, cfg.ExposedPorts, web)
	require.Len(t, hostCfg.PortBindings[web], 1)
	assert.Equal(t, "8080", hostCfg.PortBindings[web][0].HostPort)
	assert.Equal(t, []string{"/tmp/postefleet/poste-0:/data"}, hostCfg.Binds)
}
