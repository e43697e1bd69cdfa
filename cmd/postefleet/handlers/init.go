package handlers

import (
	"fmt"
	"os"

	"postefleet/internal/config"
)

// Factory function variables for init - can be replaced in tests.
var (
	fileExists = func(path string) bool {
		_, err := os.Stat(path)
		return err == nil
	}
	runWizard   = config.RunWizard
	writeConfig = config.Write
)

// Init runs the configuration wizard and writes the result to a file.
func Init(outputPath string) error {
	if fileExists(outputPath) {
		fmt.Printf("Warning: %s already exists and will be overwritten.\n\n", outputPath)
	}

	cfg, err := runWizard()
	if err != nil {
		return err
	}
	if err := writeConfig(cfg, outputPath); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	printInitSuccess(outputPath, cfg)
	return nil
}

func printInitSuccess(outputPath string, cfg *config.Config) {
	fmt.Println()
	fmt.Println("Configuration saved!")
	fmt.Println()
	fmt.Printf("  File: %s\n", outputPath)
	fmt.Println()
	fmt.Println("Fleet Summary")
	fmt.Println("-------------")
	fmt.Printf("  Image:       %s\n", cfg.Image)
	fmt.Printf("  Instances:   %d\n", cfg.Instances)
	fmt.Printf("  Web ports:   %d..%d\n", cfg.BaseWebPort, cfg.BaseWebPort+(cfg.Instances-1)*cfg.PortStride)
	fmt.Printf("  Parallelism: %d\n", cfg.MaxParallel)
	fmt.Printf("  Data root:   %s\n", cfg.DataRoot)
	fmt.Println()
	fmt.Println("Next steps:")
	fmt.Println("  postefleet start_all     # bring the fleet up")
	fmt.Println("  postefleet status        # see what is running")
	fmt.Println()
}
