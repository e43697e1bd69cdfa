package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate_Defaults(t *testing.T) {
	t.Parallel()
	assert.NoError(t, Default().Validate())
}

func TestValidate_DomainPattern(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name    string
		pattern string
		wantErr bool
	}{
		{name: "plain", pattern: "mcp%d.com"},
		{name: "subdomain", pattern: "i%d.bench.example.com"},
		{name: "empty", pattern: "", wantErr: true},
		{name: "no verb", pattern: "mcp.com", wantErr: true},
		{name: "two verbs", pattern: "m%dc%d.com", wantErr: true},
		{name: "wrong verb", pattern: "%s.com", wantErr: true},
		{name: "escaped only", pattern: "mcp%%d.com", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg := Default()
			cfg.DomainPattern = tt.pattern
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestValidate_PortOverlap(t *testing.T) {
	t.Parallel()
	cfg := Default()
	cfg.Instances = 10
	// With stride 1, ten web instances walk 8080..8089; a SMTP base of
	// 8085 collides at instance 5.
	cfg.BaseSMTPPort = 8085

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "8085")
}

func TestDomain_Derivation(t *testing.T) {
	t.Parallel()
	cfg := Default()
	assert.Equal(t, "mcp1.com", cfg.Domain(0))
	assert.Equal(t, "mcp11.com", cfg.Domain(10))
}
