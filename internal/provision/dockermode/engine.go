package dockermode

import (
	"context"

	"github.com/Masterminds/semver/v3"
	"github.com/rs/zerolog/log"

	"a0up/pkg/runtime"
)

const (
	enginePackage    = "docker.io"
	composeV2Package = "docker-compose-plugin"
	composeV1Package = "docker-compose"

	// Oldest engine release the published image is known to run on.
	minEngineVersion = "20.10.0"
)

// ensureEngine installs the docker engine package and enables its service.
// The package install is fatal; enabling the service is best-effort since
// some hosts (containers, WSL) have no systemd.
func (p *Procedure) ensureEngine(ctx context.Context) error {
	if err := p.apt.Update(ctx); err != nil {
		return err
	}

	if err := p.apt.Install(ctx, enginePackage); err != nil {
		return err
	}

	if _, err := p.runner.Run(ctx, "sudo", "systemctl", "enable", "--now", "docker"); err != nil {
		log.Warn().Err(err).Msg("Could not enable the docker service; start it manually if the daemon is not running")
	}

	return nil
}

// ensureCompose opportunistically installs a compose implementation,
// preferring the v2 plugin over the legacy v1 package. Compose is never
// required; when neither package is available the step is skipped silently.
func (p *Procedure) ensureCompose(ctx context.Context) {
	var pkg string

	switch {
	case p.apt.Available(ctx, composeV2Package):
		pkg = composeV2Package
	case p.apt.Available(ctx, composeV1Package):
		pkg = composeV1Package
	default:
		log.Debug().Msg("No compose package available, skipping")
		return
	}

	if err := p.apt.Install(ctx, pkg); err != nil {
		log.Warn().Err(err).Str("package", pkg).Msg("Failed to install compose package")
		return
	}

	log.Info().Str("package", pkg).Msg("Compose installed")
}

// checkEngineVersion warns when the daemon is older than the oldest release
// the image is known to run on. Advisory only.
func (p *Procedure) checkEngineVersion(ctx context.Context, rt runtime.Runtime) {
	raw, err := rt.ServerVersion(ctx)
	if err != nil {
		log.Debug().Err(err).Msg("Could not read engine version")
		return
	}

	current, err := semver.NewVersion(raw)
	if err != nil {
		log.Debug().Str("version", raw).Msg("Unparseable engine version")
		return
	}

	if current.LessThan(semver.MustParse(minEngineVersion)) {
		log.Warn().
			Str("version", raw).
			Str("minimum", minEngineVersion).
			Msg("Docker engine is older than the minimum tested version")
	}
}
