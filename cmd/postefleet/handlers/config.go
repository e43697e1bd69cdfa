package handlers

import (
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"

	"postefleet/internal/fleet"
)

// Config prints the effective configuration as YAML, or the derived
// identity of one instance when index >= 0.
func Config(configPath string, index int) error {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}

	if index >= 0 {
		data, err := json.MarshalIndent(fleet.Derive(cfg, index), "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal identity: %w", err)
		}
		fmt.Println(string(data))
		return nil
	}

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
		"domain_pattern":       cfg.DomainPattern,
	}
	data, err := yaml.Marshal(out)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	fmt.Print(string(data))
	return nil
}
