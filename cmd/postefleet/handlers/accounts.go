package handlers

import (
	"context"
	"fmt"
	"log"
	"time"

	"postefleet/internal/poste"
)

// newProvisioner builds the account provisioner - replaced in tests.
var newProvisioner = poste.NewProvisioner

// Accounts provisions the user list on every running instance, each
// under its own mail domain, and writes the merged run summary.
func Accounts(ctx context.Context, configPath, usersFile, summaryPath string) error {
	ctrl, err := controller(configPath)
	if err != nil {
		return err
	}
	cfg := ctrl.Config()

	if usersFile == "" {
		usersFile = cfg.UsersFile
	}
	if usersFile == "" {
		return fmt.Errorf("no user source: set users_file in the config or pass --users")
	}
	users, err := loadUsers(usersFile)
	if err != nil {
		return err
	}

	instances, err := ctrl.Status(ctx)
	if err != nil {
		return err
	}
	if len(instances) == 0 {
		return fmt.Errorf("no instances running; start the fleet first")
	}

	prov := newProvisioner(ctrl.Runtime())
	prov.Workers = cfg.MaxParallel

	merged := &poste.Summary{
		GeneratedAt: time.Now().UTC(),
		Domains:     make(map[string][]string),
	}
	for _, inst := range instances {
		summary, err := prov.Provision(ctx, inst.ContainerName, []string{inst.Domain}, users)
		if err != nil {
			return fmt.Errorf("provisioning %s failed: %w", inst.ContainerName, err)
		}
		log.Printf("%s: %d created, %d failed (%s)", inst.ContainerName,
			summary.Statistics.UsersCreated, summary.Statistics.UsersFailed, summary.Strategy)

		merged.Strategy = summary.Strategy
		merged.Statistics.DomainsCreated += summary.Statistics.DomainsCreated
		merged.Statistics.DomainsFailed += summary.Statistics.DomainsFailed
		merged.Statistics.UsersCreated += summary.Statistics.UsersCreated
		merged.Statistics.UsersFailed += summary.Statistics.UsersFailed
		for domain, addresses := range summary.Domains {
			merged.Domains[domain] = addresses
		}
	}

	if err := merged.Write(summaryPath); err != nil {
		return err
	}
	log.Printf("Accounts summary written to %s (%d created, %d failed across %d instance(s))",
		summaryPath, merged.Statistics.UsersCreated, merged.Statistics.UsersFailed, len(instances))

	if merged.Statistics.UsersFailed > 0 {
		return fmt.Errorf("%d account creation(s) failed", merged.Statistics.UsersFailed)
	}
	return nil
}
