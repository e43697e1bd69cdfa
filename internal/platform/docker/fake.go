package docker

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"
)

// Fake is an in-memory Runtime for tests. Containers started through it
// are tracked by name; Exec is scripted via ExecFunc.
type Fake struct {
	mu      sync.Mutex
	running map[string]RunSpec
	Calls   []string

	// ExecFunc scripts exec results per container/command. When nil every
	// exec succeeds with empty output.
	ExecFunc func(name string, cmd []string) (ExecResult, error)

	// CommitErr, OneShotErr force failures for specific paths.
	CommitErr  error
	OneShotErr error

	// Images known to the fake daemon.
	Images map[string]bool

	// CopiedTo records CopyTo destinations ("name:dir").
	CopiedTo []string
}

// NewFake returns an empty fake runtime.
func NewFake() *Fake {
	return &Fake{
		running: make(map[string]RunSpec),
		Images:  make(map[string]bool),
	}
}

func (f *Fake) record(format string, args ...any) {
	f.Calls = append(f.Calls, fmt.Sprintf(format, args...))
}

// SetRunning marks a container as already running.
func (f *Fake) SetRunning(spec RunSpec) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.running[spec.Name] = spec
}

// RunningNames returns the names of running containers, sorted.
func (f *Fake) RunningNames() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	names := make([]string, 0, len(f.running))
	for name := range f.running {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (f *Fake) EnsureRunning(_ context.Context, spec RunSpec) (string, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.running[spec.Name]; ok {
		f.record("ensure-running %s (already up)", spec.Name)
		return "id-" + spec.Name, true, nil
	}
	f.running[spec.Name] = spec
	f.record("ensure-running %s", spec.Name)
	return "id-" + spec.Name, false, nil
}

func (f *Fake) Stop(_ context.Context, name string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("stop %s", name)
	return nil
}

func (f *Fake) StopAndRemove(_ context.Context, name string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.running, name)
	f.record("stop-and-remove %s", name)
	return nil
}

func (f *Fake) List(_ context.Context, namePrefix string) ([]ContainerInfo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var result []ContainerInfo
	for name, spec := range f.running {
		if !strings.HasPrefix(name, namePrefix) {
			continue
		}
		result = append(result, ContainerInfo{
			ID:     "id-" + name,
			Name:   name,
			Image:  spec.Image,
			State:  "running",
			Status: "Up",
		})
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result, nil
}

func (f *Fake) Exec(_ context.Context, name string, cmd []string) (ExecResult, error) {
	f.mu.Lock()
	f.record("exec %s: %s", name, strings.Join(cmd, " "))
	fn := f.ExecFunc
	f.mu.Unlock()
	if fn != nil {
		return fn(name, cmd)
	}
	return ExecResult{}, nil
}

func (f *Fake) CopyTo(_ context.Context, name, dir string, archive io.Reader) error {
	_, _ = io.Copy(io.Discard, archive)
	f.mu.Lock()
	defer f.mu.Unlock()
	f.CopiedTo = append(f.CopiedTo, name+":"+dir)
	f.record("copy-to %s:%s", name, dir)
	return nil
}

func (f *Fake) Commit(_ context.Context, name, reference string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("commit %s as %s", name, reference)
	if f.CommitErr != nil {
		return "", f.CommitErr
	}
	f.Images[reference] = true
	return "sha256:fake", nil
}

func (f *Fake) RunOneShot(_ context.Context, image string, cmd []string, binds []string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("one-shot %s: %s (binds %s)", image, strings.Join(cmd, " "), strings.Join(binds, ","))
	return f.OneShotErr
}

func (f *Fake) ImageExists(_ context.Context, reference string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("image-exists %s", reference)
	return f.Images[reference], nil
}
