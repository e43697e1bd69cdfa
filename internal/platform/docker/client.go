package docker

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/api/types/filters"
	"github.com/docker/docker/client"
	"github.com/docker/docker/pkg/stdcopy"
	"github.com/docker/go-connections/nat"
)

const stopTimeoutSeconds = 10

// Client implements Runtime against a Docker daemon.
type Client struct {
	cli *client.Client
}

// NewClient connects to the daemon using the standard DOCKER_HOST
// environment configuration.
func NewClient() (*Client, error) {
	cli, err := client.NewClientWithOpts(client.FromEnv, client.WithAPIVersionNegotiation())
	if err != nil {
		return nil, fmt.Errorf("failed to create docker client: %w", err)
	}
	return &Client{cli: cli}, nil
}

// EnsureRunning starts the described container unless it is already up.
// A stale container with the same name is stopped and removed first.
func (c *Client) EnsureRunning(ctx context.Context, spec RunSpec) (string, bool, error) {
	inspected, err := c.cli.ContainerInspect(ctx, spec.Name)
	if err == nil {
		if inspected.State != nil && inspected.State.Running {
			return inspected.ID, true, nil
		}
		if err := c.remove(ctx, inspected.ID); err != nil {
			return "", false, fmt.Errorf("failed to remove stale container %s: %w", spec.Name, err)
		}
	} else if !client.IsErrNotFound(err) {
		return "", false, fmt.Errorf("failed to inspect container %s: %w", spec.Name, err)
	}

	cfg, hostCfg, err := buildConfigs(spec)
	if err != nil {
		return "", false, err
	}

	resp, err := c.cli.ContainerCreate(ctx, cfg, hostCfg, nil, nil, spec.Name)
	if err != nil {
		return "", false, fmt.Errorf("failed to create container %s: %w", spec.Name, err)
	}

	if err := c.cli.ContainerStart(ctx, resp.ID, container.StartOptions{}); err != nil {
		if rmErr := c.remove(ctx, resp.ID); rmErr != nil {
			return "", false, fmt.Errorf("failed to start container %s: %w (cleanup also failed: %v)", spec.Name, err, rmErr)
		}
		return "", false, fmt.Errorf("failed to start container %s: %w", spec.Name, err)
	}

	return resp.ID, false, nil
}

func buildConfigs(spec RunSpec) (*container.Config, *container.HostConfig, error) {
	exposed := nat.PortSet{}
	bindings := nat.PortMap{}
	for containerPort, hostPort := range spec.Ports {
		port, err := nat.NewPort("tcp", fmt.Sprintf("%d", containerPort))
		if err != nil {
			return nil, nil, fmt.Errorf("invalid port %d: %w", containerPort, err)
		}
		exposed[port] = struct{}{}
		bindings[port] = []nat.PortBinding{{HostIP: "0.0.0.0", HostPort: fmt.Sprintf("%d", hostPort)}}
	}

	cfg := &container.Config{
		Image:        spec.Image,
		Hostname:     spec.Hostname,
		Env:          spec.Env,
		ExposedPorts: exposed,
		Labels:       spec.Labels,
	}
	hostCfg := &container.HostConfig{
		CapAdd:       spec.CapAdd,
		PortBindings: bindings,
		Binds:        spec.Binds,
		RestartPolicy: container.RestartPolicy{
			Name: container.RestartPolicyUnlessStopped,
		},
	}
	return cfg, hostCfg, nil
}

// Stop gracefully stops a running container without removing it.
func (c *Client) Stop(ctx context.Context, name string) error {
	timeout := stopTimeoutSeconds
	if err := c.cli.ContainerStop(ctx, name, container.StopOptions{Timeout: &timeout}); err != nil {
		return fmt.Errorf("failed to stop container %s: %w", name, err)
	}
	return nil
}

// StopAndRemove stops and force-removes a container. Missing containers
// are not an error.
func (c *Client) StopAndRemove(ctx context.Context, name string) error {
	inspected, err := c.cli.ContainerInspect(ctx, name)
	if err != nil {
		if client.IsErrNotFound(err) {
			return nil
		}
		return fmt.Errorf("failed to inspect container %s: %w", name, err)
	}

	if inspected.State != nil && inspected.State.Running {
		timeout := stopTimeoutSeconds
		// Best effort: force removal below handles a stop failure.
		_ = c.cli.ContainerStop(ctx, inspected.ID, container.StopOptions{Timeout: &timeout})
	}

	if err := c.remove(ctx, inspected.ID); err != nil {
		return fmt.Errorf("failed to remove container %s: %w", name, err)
	}
	return nil
}

func (c *Client) remove(ctx context.Context, id string) error {
	return c.cli.ContainerRemove(ctx, id, container.RemoveOptions{Force: true})
}

// List returns running containers whose name starts with namePrefix.
func (c *Client) List(ctx context.Context, namePrefix string) ([]ContainerInfo, error) {
	containers, err := c.cli.ContainerList(ctx, container.ListOptions{
		Filters: filters.NewArgs(filters.Arg("name", namePrefix)),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list containers: %w", err)
	}

	var result []ContainerInfo
	for _, item := range containers {
		name := ""
		if len(item.Names) > 0 {
			name = strings.TrimPrefix(item.Names[0], "/")
		}
		// The name filter matches substrings; enforce the prefix.
		if !strings.HasPrefix(name, namePrefix) {
			continue
		}
		result = append(result, ContainerInfo{
			ID:     shortID(item.ID),
			Name:   name,
			Image:  item.Image,
			State:  item.State,
			Status: item.Status,
		})
	}
	return result, nil
}

func shortID(id string) string {
	if len(id) > 12 {
		return id[:12]
	}
	return id
}

// Exec runs cmd inside the named container, demultiplexes the attached
// stream and reports the remote exit code.
func (c *Client) Exec(ctx context.Context, name string, cmd []string) (ExecResult, error) {
	created, err := c.cli.ContainerExecCreate(ctx, name, container.ExecOptions{
		AttachStdout: true,
		AttachStderr: true,
		Cmd:          cmd,
	})
	if err != nil {
		return ExecResult{}, fmt.Errorf("failed to create exec in %s: %w", name, err)
	}

	attached, err := c.cli.ContainerExecAttach(ctx, created.ID, container.ExecAttachOptions{})
	if err != nil {
		return ExecResult{}, fmt.Errorf("failed to attach exec in %s: %w", name, err)
	}
	defer attached.Close()

	var stdout, stderr bytes.Buffer
	if _, err := stdcopy.StdCopy(&stdout, &stderr, attached.Reader); err != nil {
		return ExecResult{}, fmt.Errorf("failed to read exec output from %s: %w", name, err)
	}

	result := ExecResult{Stdout: stdout.String(), Stderr: stderr.String()}

	// The stream closing does not guarantee the exec record is final yet.
	for {
		inspected, err := c.cli.ContainerExecInspect(ctx, created.ID)
		if err != nil {
			return result, fmt.Errorf("failed to inspect exec in %s: %w", name, err)
		}
		if !inspected.Running {
			result.ExitCode = inspected.ExitCode
			return result, nil
		}
		select {
		case <-ctx.Done():
			return result, ctx.Err()
		case <-time.After(100 * time.Millisecond):
		}
	}
}

// CopyTo extracts a tar archive into dir inside the container.
func (c *Client) CopyTo(ctx context.Context, name, dir string, archive io.Reader) error {
	if err := c.cli.CopyToContainer(ctx, name, dir, archive, container.CopyToContainerOptions{}); err != nil {
		return fmt.Errorf("failed to copy into %s:%s: %w", name, dir, err)
	}
	return nil
}

// Commit snapshots the container's writable layer as reference.
func (c *Client) Commit(ctx context.Context, name, reference string) (string, error) {
	resp, err := c.cli.ContainerCommit(ctx, name, container.CommitOptions{Reference: reference})
	if err != nil {
		return "", fmt.Errorf("failed to commit container %s: %w", name, err)
	}
	return resp.ID, nil
}

// oneShotConfig builds the helper container config. The entrypoint is
// overridden so cmd runs directly: the mail server image declares an
// ENTRYPOINT (/init), and Cmd alone would be appended to it, booting the
// whole service stack just to run a copy.
func oneShotConfig(image string, cmd []string) *container.Config {
	return &container.Config{
		Image:      image,
		Entrypoint: []string{cmd[0]},
		Cmd:        cmd[1:],
	}
}

// RunOneShot runs cmd in a throwaway container, waits for completion and
// removes the container. A non-zero exit status is an error.
func (c *Client) RunOneShot(ctx context.Context, image string, cmd []string, binds []string) error {
	resp, err := c.cli.ContainerCreate(ctx, oneShotConfig(image, cmd),
		&container.HostConfig{Binds: binds}, nil, nil, "")
	if err != nil {
		return fmt.Errorf("failed to create helper container: %w", err)
	}
	defer func() { _ = c.remove(context.Background(), resp.ID) }()

	if err := c.cli.ContainerStart(ctx, resp.ID, container.StartOptions{}); err != nil {
		return fmt.Errorf("failed to start helper container: %w", err)
	}

	waitCh, errCh := c.cli.ContainerWait(ctx, resp.ID, container.WaitConditionNotRunning)
	select {
	case status := <-waitCh:
		if status.StatusCode != 0 {
			return fmt.Errorf("helper command %v exited with status %d", cmd, status.StatusCode)
		}
		return nil
	case err := <-errCh:
		return fmt.Errorf("failed waiting for helper container: %w", err)
	case <-ctx.Done():
		return ctx.Err()
	}
}

// ImageExists reports whether an image reference resolves locally.
func (c *Client) ImageExists(ctx context.Context, reference string) (bool, error) {
	_, _, err := c.cli.ImageInspectWithRaw(ctx, reference)
	if err != nil {
		if client.IsErrNotFound(err) {
			return false, nil
		}
		return false, fmt.Errorf("failed to inspect image %s: %w", reference, err)
	}
	return true, nil
}
