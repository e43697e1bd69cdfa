package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"
)

// DefaultFileName is the config file looked up in the working directory
// when no explicit path is given.
const DefaultFileName = "postefleet.yaml"

// Load reads the configuration from path (or DefaultFileName when path is
// empty and the file exists), applies environment overrides, and
// validates. With neither file nor overrides this returns the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path == "" {
		if _, err := os.Stat(DefaultFileName); err == nil {
			path = DefaultFileName
		}
	}

	if path != "" {
		if err := decodeFile(path, cfg); err != nil {
			return nil, err
		}
	}

	if err := applyEnv(cfg); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

func decodeFile(path string, cfg *Config) error {
	// #nosec G304
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	var raw map[string]interface{}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("failed to unmarshal yaml: %w", err)
	}

	if err := mapstructure.Decode(raw, cfg); err != nil {
		return fmt.Errorf("failed to decode config: %w", err)
	}
	return nil
}

// Environment overrides. Every knob the shell scripts took from the
// environment stays reachable the same way.
const (
	envImage         = "POSTEFLEET_IMAGE"
	envGoldenImage   = "POSTEFLEET_GOLDEN_IMAGE"
	envDataRoot      = "POSTEFLEET_DATA_ROOT"
	envBaseWebPort   = "POSTEFLEET_BASE_WEB_PORT"
	envBaseSMTPPort  = "POSTEFLEET_BASE_SMTP_PORT"
	envBaseIMAPPort  = "POSTEFLEET_BASE_IMAP_PORT"
	envBaseSubPort   = "POSTEFLEET_BASE_SUBMISSION_PORT"
	envPortStride    = "POSTEFLEET_PORT_STRIDE"
	envInstances     = "POSTEFLEET_INSTANCES"
	envMaxParallel   = "POSTEFLEET_MAX_PARALLEL"
	envAdminAddress  = "POSTEFLEET_ADMIN_ADDRESS"
	envAdminPassword = "POSTEFLEET_ADMIN_PASSWORD"
	envUsersFile     = "POSTEFLEET_USERS_FILE"
	envDomainPattern = "POSTEFLEET_DOMAIN_PATTERN"
	envMetricsAddr   = "POSTEFLEET_METRICS_ADDR"
)

func applyEnv(cfg *Config) error {
	strings := map[string]*string{
		envImage:         &cfg.Image,
		envGoldenImage:   &cfg.GoldenImage,
		envDataRoot:      &cfg.DataRoot,
		envAdminAddress:  &cfg.AdminAddress,
		envAdminPassword: &cfg.AdminPassword,
		envUsersFile:     &cfg.UsersFile,
		envDomainPattern: &cfg.DomainPattern,
		envMetricsAddr:   &cfg.MetricsAddr,
	}
	for key, target := range strings {
		if v := os.Getenv(key); v != "" {
			*target = v
		}
	}

	ints := map[string]*int{
		envBaseWebPort:  &cfg.BaseWebPort,
		envBaseSMTPPort: &cfg.BaseSMTPPort,
		envBaseIMAPPort: &cfg.BaseIMAPPort,
		envBaseSubPort:  &cfg.BaseSubmissionPort,
		envPortStride:   &cfg.PortStride,
		envInstances:    &cfg.Instances,
		envMaxParallel:  &cfg.MaxParallel,
	}
	for key, target := range ints {
		v := os.Getenv(key)
		if v == "" {
			continue
		}
		parsed, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid value for %s: %q", key, v)
		}
		*target = parsed
	}
	return nil
}

// Write serializes the configuration to a YAML file.
func Write(cfg *Config, path string) error {
	out := map[string]interface{}{
		"image":                cfg.Image,
		"golden_image":         cfg.GoldenImage,
		"data_root":            cfg.DataRoot,
		"base_web_port":        cfg.BaseWebPort,
		"base_smtp_port":       cfg.BaseSMTPPort,
		"base_imap_port":       cfg.BaseIMAPPort,
		"base_submission_port": cfg.BaseSubmissionPort,
		"port_stride":          cfg.PortStride,
		"instances":            cfg.Instances,
		"max_parallel":         cfg.MaxParallel,
		"admin_address":        cfg.AdminAddress,
		"admin_password":       cfg.AdminPassword,
		"domain_pattern":       cfg.DomainPattern,
	}
	if cfg.UsersFile != "" {
		out["users_file"] = cfg.UsersFile
	}
	if cfg.MetricsAddr != "" {
		out["metrics_addr"] = cfg.MetricsAddr
	}
	if cfg.Archive.Enabled() {
		out["archive"] = map[string]interface{}{
			"endpoint":   cfg.Archive.Endpoint,
			"region":     cfg.Archive.Region,
			"bucket":     cfg.Archive.Bucket,
			"access_key": cfg.Archive.AccessKey,
			"secret_key": cfg.Archive.SecretKey,
		}
	}

	data, err := yaml.Marshal(out)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	// The file carries the admin password and archive secret key.
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}
