package testutils

import (
	"context"
	"fmt"
	"strings"

	"a0up/pkg/runtime"
)

// BackgroundCall records one detached process launch.
type BackgroundCall struct {
	Dir     string
	LogPath string
	Name    string
	Args    []string
}

// Recorder is a sysexec.Runner fake. It records every invocation and
// answers from canned outputs and errors keyed by the full command line.
type Recorder struct {
	// Binaries answers LookPath. A nil map means every binary is found.
	Binaries map[string]bool

	// Commands holds every Run invocation as a single command line.
	Commands []string

	// Outputs and Errors are keyed by the full command line.
	Outputs map[string]string
	Errors  map[string]error

	BackgroundCalls []BackgroundCall
	BackgroundPID   int
	BackgroundErr   error
}

func (r *Recorder) LookPath(name string) bool {
	if r.Binaries == nil {
		return true
	}
	return r.Binaries[name]
}

func (r *Recorder) Run(_ context.Context, name string, args ...string) (string, error) {
	line := commandLine(name, args)
	r.Commands = append(r.Commands, line)

	if err, ok := r.Errors[line]; ok {
		return r.Outputs[line], err
	}

	out, ok := r.Outputs[line]
	if !ok {
		out = "ok"
	}
	return out, nil
}

func (r *Recorder) Background(dir, logPath string, name string, args ...string) (int, error) {
	r.BackgroundCalls = append(r.BackgroundCalls, BackgroundCall{
		Dir:     dir,
		LogPath: logPath,
		Name:    name,
		Args:    args,
	})

	if r.BackgroundErr != nil {
		return 0, r.BackgroundErr
	}

	pid := r.BackgroundPID
	if pid == 0 {
		pid = 4242
	}
	return pid, nil
}

// Ran reports whether a command line starting with prefix was run.
func (r *Recorder) Ran(prefix string) bool {
	for _, line := range r.Commands {
		if strings.HasPrefix(line, prefix) {
			return true
		}
	}
	return false
}

func commandLine(name string, args []string) string {
	if len(args) == 0 {
		return name
	}
	return name + " " + strings.Join(args, " ")
}

// FakeRuntime is a runtime.Runtime fake recording every call in order.
type FakeRuntime struct {
	Containers []*runtime.Container
	Version    string

	PingErr    error
	VersionErr error
	PullErr    error
	ListErr    error
	StopErr    error
	RemoveErr  error
	CreateErr  error
	StartErr   error

	Calls   []string
	Created []*runtime.ContainerConfig
}

func (f *FakeRuntime) Ping(context.Context) error {
	f.Calls = append(f.Calls, "ping")
	return f.PingErr
}

func (f *FakeRuntime) ServerVersion(context.Context) (string, error) {
	f.Calls = append(f.Calls, "version")
	if f.VersionErr != nil {
		return "", f.VersionErr
	}
	if f.Version == "" {
		return "28.0.1", nil
	}
	return f.Version, nil
}

func (f *FakeRuntime) PullImage(_ context.Context, image string) error {
	f.Calls = append(f.Calls, "pull "+image)
	return f.PullErr
}

func (f *FakeRuntime) ListContainers(context.Context, bool) ([]*runtime.Container, error) {
	f.Calls = append(f.Calls, "list")
	if f.ListErr != nil {
		return nil, f.ListErr
	}
	return f.Containers, nil
}

func (f *FakeRuntime) StopContainer(_ context.Context, id string) error {
	f.Calls = append(f.Calls, "stop "+id)
	return f.StopErr
}

func (f *FakeRuntime) RemoveContainer(_ context.Context, id string, _ bool) error {
	f.Calls = append(f.Calls, "remove "+id)
	return f.RemoveErr
}

func (f *FakeRuntime) CreateContainer(_ context.Context, cfg *runtime.ContainerConfig) (*runtime.Container, error) {
	f.Calls = append(f.Calls, "create "+cfg.Name)
	if f.CreateErr != nil {
		return nil, f.CreateErr
	}

	f.Created = append(f.Created, cfg)
	return &runtime.Container{
		ID:    fmt.Sprintf("fake-%d", len(f.Created)),
		Image: cfg.Image,
		Name:  cfg.Name,
	}, nil
}

func (f *FakeRuntime) StartContainer(_ context.Context, id string) error {
	f.Calls = append(f.Calls, "start "+id)
	return f.StartErr
}
