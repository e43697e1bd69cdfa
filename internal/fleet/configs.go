package fleet

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"postefleet/internal/poste"
)

// InstanceCredentials is the per-instance credential file consumed by
// mail clients and test harnesses. Field names are a fixed contract.
type InstanceCredentials struct {
	InstanceID int    `json:"instance_id"`
	Email      string `json:"email"`
	Password   string `json:"password"`
	Domain     string `json:"domain"`
	IMAPHost   string `json:"imap_host"`
	IMAPPort   int    `json:"imap_port"`
	IMAPTLS    bool   `json:"imap_tls"`
	SMTPHost   string `json:"smtp_host"`
	SMTPPort   int    `json:"smtp_port"`
	SMTPTLS    bool   `json:"smtp_tls"`
	WebURL     string `json:"web_url"`
}

// ConfigIndex is the merged index over all emitted credential files.
type ConfigIndex struct {
	GeneratedAt    time.Time             `json:"generated_at"`
	TotalInstances int                   `json:"total_instances"`
	Instances      []InstanceCredentials `json:"instances"`
}

// GenerateConfigs writes one credential file per currently running
// instance plus a merged index. The index's TotalInstances always equals
// the number of files emitted.
func (c *Controller) GenerateConfigs(ctx context.Context, outDir string) (*ConfigIndex, error) {
	instances, err := c.Status(ctx)
	if err != nil {
		return nil, err
	}
	sort.Slice(instances, func(i, j int) bool { return instances[i].Index < instances[j].Index })

	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create output dir %s: %w", outDir, err)
	}

	index := &ConfigIndex{GeneratedAt: time.Now().UTC()}
	for _, instance := range instances {
		creds := c.credentials(instance.Identity)
		path := filepath.Join(outDir, fmt.Sprintf("instance_%d.json", instance.Index))
		if err := writeJSON(path, creds); err != nil {
			return nil, err
		}
		index.Instances = append(index.Instances, creds)
	}
	index.TotalInstances = len(index.Instances)

	if err := writeJSON(filepath.Join(outDir, "index.json"), index); err != nil {
		return nil, err
	}
	return index, nil
}

func (c *Controller) credentials(id Identity) InstanceCredentials {
	return InstanceCredentials{
		InstanceID: id.Index,
		Email:      poste.RewriteAddress(c.cfg.AdminAddress, id.Domain),
		Password:   c.cfg.AdminPassword,
		Domain:     id.Domain,
		IMAPHost:   "localhost",
		IMAPPort:   id.IMAPPort,
		IMAPTLS:    false,
		SMTPHost:   "localhost",
		SMTPPort:   id.SMTPPort,
		SMTPTLS:    false,
		WebURL:     fmt.Sprintf("http://localhost:%d", id.WebPort),
	}
}

func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", path, err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
