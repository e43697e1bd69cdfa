package poste

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmailDomain(t *testing.T) {
	t.Setenv(domainEnvVar, "")
	assert.Equal(t, DefaultDomain, EmailDomain())

	t.Setenv(domainEnvVar, "mcp7.com")
	assert.Equal(t, "mcp7.com", EmailDomain())
	assert.Equal(t, "alice@mcp7.com", Address("alice"))
}

func TestRewriteAddress(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name    string
		address string
		target  string
		want    string
	}{
		{"full address", "alice@mcp.com", "mcp3.com", "alice@mcp3.com"},
		{"already on target", "bob@mcp3.com", "mcp3.com", "bob@mcp3.com"},
		{"bare local part", "carol", "mcp2.com", "carol@mcp2.com"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, RewriteAddress(tt.address, tt.target))
		})
	}
}

func TestRewriteValue_Nested(t *testing.T) {
	t.Parallel()
	in := map[string]any{
		"admin@mcp.com": map[string]any{
			"to":    []any{"a@mcp.com", "b@other.com", 42},
			"count": float64(3),
		},
	}
	out := RewriteValue(in, "mcp.com", "mcp5.com").(map[string]any)

	inner, ok := out["admin@mcp5.com"].(map[string]any)
	require.True(t, ok, "map key should be rewritten")
	assert.Equal(t, []any{"a@mcp5.com", "b@other.com", 42}, inner["to"])
	assert.Equal(t, float64(3), inner["count"])

	// Source value is untouched.
	_, ok = in["admin@mcp.com"]
	assert.True(t, ok)
}

func TestRewriteValue_SameDomainNoOp(t *testing.T) {
	t.Parallel()
	in := map[string]any{"k": "a@mcp.com"}
	out := RewriteValue(in, "mcp.com", "mcp.com")
	assert.Equal(t, in, out)
}

func TestRewriteJSONFileInPlace(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "users.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"email":"x@mcp.com"}`), 0o644))

	require.NoError(t, RewriteJSONFileInPlace(path, "mcp.com", "mcp9.com"))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, `{"email":"x@mcp9.com"}`, string(data))
}
