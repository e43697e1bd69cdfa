// Package docker adapts the Docker Engine API to the small runtime surface
// the fleet needs: idempotent run, stop/remove, exec with captured output,
// archive upload, and commit for golden images.
package docker

import (
	"context"
	"io"
)

// ContainerInfo is a summary of one managed container.
type ContainerInfo struct {
	ID     string
	Name   string
	Image  string
	State  string
	Status string
}

// ExecResult holds the captured output of a command executed inside a
// container. ExitCode is the remote process exit status.
type ExecResult struct {
	Stdout   string
	Stderr   string
	ExitCode int
}

// Combined returns stdout and stderr concatenated, for sentinel matching
// against tools that write diagnostics to either stream.
func (r ExecResult) Combined() string {
	return r.Stdout + r.Stderr
}

// RunSpec describes a container to run. Ports maps container TCP ports to
// host ports.
type RunSpec struct {
	Image    string
	Name     string
	Hostname string
	Env      []string
	CapAdd   []string
	Ports    map[int]int
	Binds    []string
	Labels   map[string]string
}

// Runtime is the container-runtime contract used by the fleet controller,
// the poste console wrapper and the golden image builder.
type Runtime interface {
	// EnsureRunning starts the described container if it is not already
	// running. A stale (created/exited) container with the same name is
	// removed first. Reports whether the container was already up.
	EnsureRunning(ctx context.Context, spec RunSpec) (id string, alreadyRunning bool, err error)

	// Stop gracefully stops a running container.
	Stop(ctx context.Context, name string) error

	// StopAndRemove stops and force-removes a container. A container that
	// does not exist is not an error.
	StopAndRemove(ctx context.Context, name string) error

	// List returns containers whose name starts with namePrefix. Only
	// running containers are reported.
	List(ctx context.Context, namePrefix string) ([]ContainerInfo, error)

	// Exec runs cmd inside the named container and captures its output.
	// A non-zero remote exit code is reported in the result, not as err.
	Exec(ctx context.Context, name string, cmd []string) (ExecResult, error)

	// CopyTo extracts a tar archive into dir inside the container.
	CopyTo(ctx context.Context, name, dir string, archive io.Reader) error

	// Commit snapshots the container's writable layer as reference.
	Commit(ctx context.Context, name, reference string) (string, error)

	// RunOneShot runs cmd in a throwaway container and waits for it to
	// finish, removing it afterwards.
	RunOneShot(ctx context.Context, image string, cmd []string, binds []string) error

	// ImageExists reports whether an image reference resolves locally.
	ImageExists(ctx context.Context, reference string) (bool, error)
}
