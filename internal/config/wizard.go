package config

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/huh"
)

// RunWizard walks the user through the essential fleet settings and
// returns a validated configuration. Everything not asked keeps its
// default and can be edited in the generated YAML afterwards.
func RunWizard() (*Config, error) {
	cfg := Default()

	instances := strconv.Itoa(cfg.Instances)
	webPort := strconv.Itoa(cfg.BaseWebPort)

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Mail server image").
				Description("Container image to run for every instance").
				Placeholder(DefaultImage).
				Value(&cfg.Image),

			huh.NewInput().
				Title("Instance count").
				Description("How many instances start_all brings up").
				Value(&instances).
				Validate(validatePositiveInt),
		),

		huh.NewGroup(
			huh.NewInput().
				Title("Base web port").
				Description("Host port of instance 0's web console; each further instance adds the stride").
				Value(&webPort).
				Validate(validatePort),

			huh.NewSelect[int]().
				Title("Parallelism").
				Description("Concurrent instance operations during start_all/stop_all").
				Options(
					huh.NewOption("2 at a time", 2),
					huh.NewOption("4 at a time", 4),
					huh.NewOption("8 at a time", 8),
					huh.NewOption("16 at a time", 16),
				).
				Value(&cfg.MaxParallel),
		),

		huh.NewGroup(
			huh.NewInput().
				Title("Data root").
				Description("Host directory holding one data dir per instance").
				Value(&cfg.DataRoot),

			huh.NewInput().
				Title("User source file (optional)").
				Description("JSON file of accounts to provision on each instance").
				Placeholder("users.json").
				Value(&cfg.UsersFile),
		),
	)

	if err := form.Run(); err != nil {
		return nil, fmt.Errorf("wizard aborted: %w", err)
	}

	cfg.Instances, _ = strconv.Atoi(strings.TrimSpace(instances))
	cfg.BaseWebPort, _ = strconv.Atoi(strings.TrimSpace(webPort))

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func validatePositiveInt(s string) error {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 1 {
		return fmt.Errorf("enter a positive number")
	}
	return nil
}

func validatePort(s string) error {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 1 || n > 65535 {
		return fmt.Errorf("enter a port between 1 and 65535")
	}
	return nil
}
