package runtime

import (
	"context"
)

// Container represents an observed container
type Container struct {
	ID     string
	Image  string
	Name   string
	Status string
	State  string
	Labels map[string]string
}

// PortMapping maps a host port to a container port
type PortMapping struct {
	HostIP        string
	HostPort      int
	ContainerPort int
}

// ContainerConfig holds configuration for creating a container
type ContainerConfig struct {
	Image         string
	Name          string
	Env           []string
	Ports         []PortMapping
	Binds         []string // host path:container path volume binds
	Labels        map[string]string
	RestartPolicy string
}

// Runtime defines the contract the installer needs from a container engine.
// DockerRuntime is the real implementation; tests substitute a fake.
type Runtime interface {
	// Engine information
	Ping(ctx context.Context) error
	ServerVersion(ctx context.Context) (string, error)

	// Image operations
	PullImage(ctx context.Context, image string) error

	// Container lifecycle
	ListContainers(ctx context.Context, all bool) ([]*Container, error)
	StopContainer(ctx context.Context, containerID string) error
	RemoveContainer(ctx context.Context, containerID string, force bool) error
	CreateContainer(ctx context.Context, config *ContainerConfig) (*Container, error)
	StartContainer(ctx context.Context, containerID string) error
}

// FindByName returns the container whose name matches exactly, or nil.
// Container names from the engine API carry a leading slash; the lookup
// matches with and without it.
func FindByName(containers []*Container, name string) *Container {
	for _, c := range containers {
		if c.Name == name || c.Name == "/"+name {
			return c
		}
	}
	return nil
}
