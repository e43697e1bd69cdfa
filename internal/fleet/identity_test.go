package fleet

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"postefleet/internal/config"
)

func testConfig() *config.Config {
	cfg := config.Default()
	cfg.DataRoot = "/tmp/postefleet-test"
	return cfg
}

func TestDerive_Deterministic(t *testing.T) {
	t.Parallel()
	cfg := testConfig()

	a := Derive(cfg, 3)
	b := Derive(cfg, 3)
	assert.Equal(t, a, b)

	assert.Equal(t, "poste-3", a.ContainerName)
	assert.Equal(t, "/tmp/postefleet-test/poste-3", a.DataDir)
	assert.Equal(t, "mcp4.com", a.Domain)
	assert.Equal(t, cfg.BaseWebPort+3, a.WebPort)
	assert.Equal(t, cfg.BaseSMTPPort+3, a.SMTPPort)
	assert.Equal(t, cfg.BaseIMAPPort+3, a.IMAPPort)
	assert.Equal(t, cfg.BaseSubmissionPort+3, a.SubmissionPort)
}

func TestDerive_Stride(t *testing.T) {
	t.Parallel()
	cfg := testConfig()
	cfg.PortStride = 10

	id := Derive(cfg, 5)
	assert.Equal(t, cfg.BaseWebPort+50, id.WebPort)
	assert.Equal(t, cfg.BaseIMAPPort+50, id.IMAPPort)
}

// No two instances within the configured count may share a host port,
// across all four port families.
func TestDerive_NoPortOverlap(t *testing.T) {
	t.Parallel()
	for _, stride := range []int{1, 4, 10} {
		cfg := testConfig()
		cfg.PortStride = stride
		cfg.Instances = 50

		require.NoError(t, cfg.Validate(), "stride %d", stride)

		seen := map[int]string{}
		for i := 0; i < cfg.Instances; i++ {
			id := Derive(cfg, i)
			for _, port := range []int{id.WebPort, id.SMTPPort, id.IMAPPort, id.SubmissionPort} {
				owner := fmt.Sprintf("instance %d", i)
				require.NotContains(t, seen, port, "stride %d: port %d already owned by %s", stride, port, seen[port])
				seen[port] = owner
			}
		}
	}
}

func TestIndexFromName(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name    string
		want    int
		wantErr bool
	}{
		{name: "poste-0", want: 0},
		{name: "poste-17", want: 17},
		{name: "poste-golden-build", wantErr: true},
		{name: "unrelated", wantErr: true},
		{name: "poste--1", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := IndexFromName(tt.name)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
