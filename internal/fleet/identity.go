// Package fleet derives per-instance identities and drives the lifecycle
// of the mail server containers: start, stop, status, fleet-wide fan-out
// and credential file generation.
package fleet

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"postefleet/internal/config"
)

// NamePrefix is the container name prefix shared by every fleet instance.
const NamePrefix = "poste-"

// Identity is the deterministic tuple derived from an instance index.
// The mapping is pure arithmetic: no two indices share a port within a
// stride, and names are unique by construction.
type Identity struct {
	Index          int
	ContainerName  string
	DataDir        string
	Domain         string
	WebPort        int
	SMTPPort       int
	IMAPPort       int
	SubmissionPort int
}

// Derive computes the identity of instance index under cfg.
func Derive(cfg *config.Config, index int) Identity {
	name := NamePrefix + strconv.Itoa(index)
	offset := index * cfg.PortStride
	return Identity{
		Index:          index,
		ContainerName:  name,
		DataDir:        filepath.Join(cfg.DataRoot, name),
		Domain:         cfg.Domain(index),
		WebPort:        cfg.BaseWebPort + offset,
		SMTPPort:       cfg.BaseSMTPPort + offset,
		IMAPPort:       cfg.BaseIMAPPort + offset,
		SubmissionPort: cfg.BaseSubmissionPort + offset,
	}
}

// IndexFromName recovers the instance index from a container name.
func IndexFromName(name string) (int, error) {
	suffix, found := strings.CutPrefix(name, NamePrefix)
	if !found {
		return 0, fmt.Errorf("container %q is not a fleet instance", name)
	}
	index, err := strconv.Atoi(suffix)
	if err != nil || index < 0 {
		return 0, fmt.Errorf("container %q has no instance index", name)
	}
	return index, nil
}
