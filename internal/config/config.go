// Package config holds the fleet configuration: the container image to
// run, base ports and stride for per-instance port derivation, data
// directory layout, parallelism, and account provisioning inputs.
package config

import (
	"fmt"
	"strings"
)

// Defaults for a local benchmark fleet. Base ports are chosen so the four
// port families never collide for any realistic instance count.
const (
	DefaultImage       = "analogic/poste.io:2.3.13"
	DefaultGoldenImage = "postefleet/poste-golden:latest"
	DefaultDataRoot    = "/tmp/postefleet"

	DefaultBaseWebPort        = 8080
	DefaultBaseSMTPPort       = 2525
	DefaultBaseIMAPPort       = 1143
	DefaultBaseSubmissionPort = 1587
	DefaultPortStride         = 1

	DefaultInstances   = 1
	DefaultMaxParallel = 4

	DefaultAdminAddress  = "admin@mcp.com"
	DefaultAdminPassword = "admin"

	DefaultDomainPattern = "mcp%d.com"
)

// ArchiveConfig points run artifacts at an S3-compatible bucket.
type ArchiveConfig struct {
	Endpoint  string `mapstructure:"endpoint"`
	Region    string `mapstructure:"region"`
	Bucket    string `mapstructure:"bucket"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
}

// Enabled reports whether archiving is configured at all.
func (a ArchiveConfig) Enabled() bool {
	return a.Endpoint != "" && a.Bucket != ""
}

// Config is the effective fleet configuration.
type Config struct {
	// Image is the mail server container image; GoldenImage is the tag
	// the golden builder commits and clones start from.
	Image       string `mapstructure:"image"`
	GoldenImage string `mapstructure:"golden_image"`

	// DataRoot is the host directory under which each instance gets its
	// own data directory.
	DataRoot string `mapstructure:"data_root"`

	BaseWebPort        int `mapstructure:"base_web_port"`
	BaseSMTPPort       int `mapstructure:"base_smtp_port"`
	BaseIMAPPort       int `mapstructure:"base_imap_port"`
	BaseSubmissionPort int `mapstructure:"base_submission_port"`
	PortStride         int `mapstructure:"port_stride"`

	// Instances is the fleet size for start_all/stop_all.
	Instances   int `mapstructure:"instances"`
	MaxParallel int `mapstructure:"max_parallel"`

	// AdminAddress/AdminPassword are the poste admin credentials created
	// on every instance.
	AdminAddress  string `mapstructure:"admin_address"`
	AdminPassword string `mapstructure:"admin_password"`

	// UsersFile is the JSON user-source file replayed into each instance.
	UsersFile string `mapstructure:"users_file"`

	// DomainPattern derives the mail domain of instance i (1-based),
	// e.g. "mcp%d.com" yields mcp1.com, mcp2.com, ...
	DomainPattern string `mapstructure:"domain_pattern"`

	// MetricsAddr, when set, serves Prometheus metrics during long fleet
	// operations (e.g. ":9900").
	MetricsAddr string `mapstructure:"metrics_addr"`

	Archive ArchiveConfig `mapstructure:"archive"`
}

// Default returns a configuration with all defaults applied.
func Default() *Config {
	return &Config{
		Image:              DefaultImage,
		GoldenImage:        DefaultGoldenImage,
		DataRoot:           DefaultDataRoot,
		BaseWebPort:        DefaultBaseWebPort,
		BaseSMTPPort:       DefaultBaseSMTPPort,
		BaseIMAPPort:       DefaultBaseIMAPPort,
		BaseSubmissionPort: DefaultBaseSubmissionPort,
		PortStride:         DefaultPortStride,
		Instances:          DefaultInstances,
		MaxParallel:        DefaultMaxParallel,
		AdminAddress:       DefaultAdminAddress,
		AdminPassword:      DefaultAdminPassword,
		DomainPattern:      DefaultDomainPattern,
	}
}

// Domain returns the mail domain for a zero-based instance index.
func (c *Config) Domain(index int) string {
	return fmt.Sprintf(c.DomainPattern, index+1)
}

// Validate checks structural constraints and that the four port families
// cannot collide within the configured instance count.
func (c *Config) Validate() error {
	if c.Image == "" {
		return fmt.Errorf("image must not be empty")
	}
	if c.PortStride < 1 {
		return fmt.Errorf("port_stride must be >= 1, got %d", c.PortStride)
	}
	if c.Instances < 1 {
		return fmt.Errorf("instances must be >= 1, got %d", c.Instances)
	}
	if c.MaxParallel < 1 {
		return fmt.Errorf("max_parallel must be >= 1, got %d", c.MaxParallel)
	}
	for _, base := range []int{c.BaseWebPort, c.BaseSMTPPort, c.BaseIMAPPort, c.BaseSubmissionPort} {
		if base < 1 || base > 65535 {
			return fmt.Errorf("base port %d out of range", base)
		}
	}
	if err := c.checkPortOverlap(); err != nil {
		return err
	}
	if err := validateDomainPattern(c.DomainPattern); err != nil {
		return err
	}
	return nil
}

// validateDomainPattern requires exactly one %d verb so Domain yields a
// distinct name per instance instead of a malformed fmt expansion.
func validateDomainPattern(pattern string) error {
	if pattern == "" {
		return fmt.Errorf("domain_pattern must not be empty")
	}
	stripped := strings.ReplaceAll(pattern, "%%", "")
	if strings.Count(stripped, "%d") != 1 || strings.Count(stripped, "%") != 1 {
		return fmt.Errorf("domain_pattern must contain exactly one %%d verb, got %q", pattern)
	}
	return nil
}

// checkPortOverlap verifies no two instances within the configured count
// share a host port across any of the four port families.
func (c *Config) checkPortOverlap() error {
	seen := make(map[int]string, c.Instances*4)
	families := map[string]int{
		"web":        c.BaseWebPort,
		"smtp":       c.BaseSMTPPort,
		"imap":       c.BaseIMAPPort,
		"submission": c.BaseSubmissionPort,
	}
	for i := 0; i < c.Instances; i++ {
		for family, base := range families {
			port := base + i*c.PortStride
			if port > 65535 {
				return fmt.Errorf("%s port for instance %d exceeds 65535", family, i)
			}
			if other, ok := seen[port]; ok {
				return fmt.Errorf("port %d assigned to both %s and %s", port, other, family)
			}
			seen[port] = fmt.Sprintf("%s[%d]", family, i)
		}
	}
	return nil
}
