package dockermode

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/rs/zerolog/log"

	"a0up/internal/config"
	"a0up/pkg/apt"
	"a0up/pkg/runtime"
	"a0up/pkg/sysexec"
)

// Procedure provisions Agent Zero as a detached Docker container:
// CheckEngine -> EnsureEngine -> EnsureCompose -> PullImage ->
// ReconcileContainer -> RunContainer -> Done.
type Procedure struct {
	cfg    *config.Config
	runner sysexec.Runner
	apt    *apt.Manager
	out    io.Writer

	// connect is swapped in tests to avoid a real daemon connection.
	connect func() (runtime.Runtime, error)
}

// New creates the docker-mode procedure.
func New(cfg *config.Config, runner sysexec.Runner, aptMgr *apt.Manager) *Procedure {
	return &Procedure{
		cfg:    cfg,
		runner: runner,
		apt:    aptMgr,
		out:    os.Stdout,
		connect: func() (runtime.Runtime, error) {
			rt, err := runtime.NewDockerRuntime()
			if err != nil {
				return nil, err
			}
			return rt, nil
		},
	}
}

func (p *Procedure) Name() string {
	return "docker"
}

// Run executes the docker procedure. Every mutating step is preceded by a
// non-mutating existence check so that re-runs converge without duplicating
// work; only pull and run failures are fatal.
func (p *Procedure) Run(ctx context.Context) error {
	if !p.runner.LookPath("docker") {
		log.Info().Msg("Docker engine not found, installing")
		if err := p.ensureEngine(ctx); err != nil {
			return fmt.Errorf("failed to install docker engine: %w", err)
		}
	} else {
		log.Debug().Msg("Docker engine already installed")
	}

	// Compose is opportunistic: installed when a package is available,
	// skipped without error otherwise.
	p.ensureCompose(ctx)

	rt, err := p.connect()
	if err != nil {
		return fmt.Errorf("failed to connect to docker engine: %w", err)
	}

	// Access probe is advisory: a failing ping is reported with guidance,
	// and the pull below surfaces the real error if access is truly broken.
	if err := rt.Ping(ctx); err != nil {
		log.Warn().Err(err).Msg("Cannot reach the docker daemon without elevation; re-run with sudo or add your user to the docker group")
	} else {
		p.checkEngineVersion(ctx, rt)
	}

	if err := rt.PullImage(ctx, config.Image); err != nil {
		return fmt.Errorf("failed to pull image %s: %w", config.Image, err)
	}

	if err := p.reconcileContainer(ctx, rt); err != nil {
		return err
	}

	if err := os.MkdirAll(p.cfg.DataDir, 0o755); err != nil {
		return fmt.Errorf("failed to create data directory %s: %w", p.cfg.DataDir, err)
	}

	if err := p.runContainer(ctx, rt); err != nil {
		return err
	}

	p.printDone()
	return nil
}

// reconcileContainer stops and removes any container carrying the target
// name, running or stopped, so the run step never hits a name collision.
// Stop and remove failures are deliberately discarded: "already stopped"
// and "already removed" are not failures for an idempotent re-run.
func (p *Procedure) reconcileContainer(ctx context.Context, rt runtime.Runtime) error {
	containers, err := rt.ListContainers(ctx, true)
	if err != nil {
		return fmt.Errorf("failed to list containers: %w", err)
	}

	existing := runtime.FindByName(containers, p.cfg.ContainerName)
	if existing == nil {
		return nil
	}

	log.Info().
		Str("name", p.cfg.ContainerName).
		Str("id", existing.ID).
		Str("state", existing.State).
		Msg("Found stale container with target name, replacing")

	if err := rt.StopContainer(ctx, existing.ID); err != nil {
		log.Warn().Err(err).Str("id", existing.ID).Msg("Failed to stop stale container")
	}

	if err := rt.RemoveContainer(ctx, existing.ID, true); err != nil {
		log.Warn().Err(err).Str("id", existing.ID).Msg("Failed to remove stale container")
	}

	return nil
}

func (p *Procedure) runContainer(ctx context.Context, rt runtime.Runtime) error {
	created, err := rt.CreateContainer(ctx, &runtime.ContainerConfig{
		Image: config.Image,
		Name:  p.cfg.ContainerName,
		Ports: []runtime.PortMapping{
			{HostPort: p.cfg.Port, ContainerPort: config.ContainerPort},
		},
		Binds:         []string{fmt.Sprintf("%s:%s", p.cfg.DataDir, config.ContainerDataPath)},
		RestartPolicy: "unless-stopped",
	})
	if err != nil {
		return fmt.Errorf("failed to create container %s: %w", p.cfg.ContainerName, err)
	}

	if err := rt.StartContainer(ctx, created.ID); err != nil {
		return fmt.Errorf("failed to start container %s: %w", p.cfg.ContainerName, err)
	}

	return nil
}

func (p *Procedure) printDone() {
	url := fmt.Sprintf("http://localhost:%d", p.cfg.Port)

	fmt.Fprintln(p.out)
	fmt.Fprintf(p.out, "Agent Zero is running: %s\n", color.GreenString(url))
	fmt.Fprintf(p.out, "Logs:  docker logs -f %s\n", p.cfg.ContainerName)
	fmt.Fprintf(p.out, "Stop:  a0up stop --name %s\n", p.cfg.ContainerName)
}
