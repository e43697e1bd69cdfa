package handlers

import (
	"context"
	"fmt"

	"postefleet/internal/fleet"
)

// renderStatus formats the instance table - replaced in tests.
var renderStatus = fleet.RenderStatus

// Status prints the running fleet instances.
func Status(ctx context.Context, configPath string) error {
	ctrl, err := controller(configPath)
	if err != nil {
		return err
	}
	instances, err := ctrl.Status(ctx)
	if err != nil {
		return err
	}
	fmt.Println(renderStatus(instances))
	return nil
}
