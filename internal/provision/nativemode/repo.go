package nativemode

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"

	"a0up/internal/config"
)

// syncRepo clones the upstream repository when the install directory holds
// no clone yet, and otherwise updates it with a fast-forward-only pull. A
// diverged local clone fails the run instead of being silently merged.
func (p *Procedure) syncRepo(ctx context.Context) error {
	gitDir := filepath.Join(p.cfg.InstallDir, ".git")

	if _, err := os.Stat(gitDir); os.IsNotExist(err) {
		log.Info().Str("dir", p.cfg.InstallDir).Str("repo", config.RepoURL).Msg("Cloning repository")

		if _, err := p.runner.Run(ctx, "git", "clone", config.RepoURL, p.cfg.InstallDir); err != nil {
			return fmt.Errorf("failed to clone repository: %w", err)
		}

		return nil
	}

	log.Info().Str("dir", p.cfg.InstallDir).Msg("Repository already cloned, pulling")

	if _, err := p.runner.Run(ctx, "git", "-C", p.cfg.InstallDir, "pull", "--ff-only"); err != nil {
		return fmt.Errorf("failed to update repository (local history may have diverged): %w", err)
	}

	return nil
}
