package nativemode

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"
)

func (p *Procedure) venvBin(name string) string {
	return filepath.Join(p.cfg.VenvDir(), "bin", name)
}

// createVenv creates the virtual environment at the fixed subpath of the
// install directory, or reuses an existing one. Reuse never recreates: the
// packages already installed in it must survive a re-run.
func (p *Procedure) createVenv(ctx context.Context) error {
	venvPython := p.venvBin("python")

	if _, err := os.Stat(venvPython); os.IsNotExist(err) {
		log.Info().Str("dir", p.cfg.VenvDir()).Msg("Creating virtual environment")

		if _, err := p.runner.Run(ctx, "python3", "-m", "venv", p.cfg.VenvDir()); err != nil {
			return fmt.Errorf("failed to create virtual environment: %w", err)
		}
	} else {
		log.Info().Str("dir", p.cfg.VenvDir()).Msg("Reusing existing virtual environment")
	}

	if _, err := p.runner.Run(ctx, p.venvBin("pip"), "install", "--upgrade", "pip", "setuptools", "wheel"); err != nil {
		return fmt.Errorf("failed to upgrade pip toolchain: %w", err)
	}

	return nil
}

// installPythonDeps installs from the manifest at the repository root. A
// missing manifest is fatal: it means the clone is not a usable checkout.
func (p *Procedure) installPythonDeps(ctx context.Context) error {
	manifest := filepath.Join(p.cfg.InstallDir, "requirements.txt")

	if _, err := os.Stat(manifest); err != nil {
		return fmt.Errorf("dependency manifest not found at %s: %w", manifest, err)
	}

	log.Info().Str("manifest", manifest).Msg("Installing Python dependencies")

	if _, err := p.runner.Run(ctx, p.venvBin("pip"), "install", "-r", manifest); err != nil {
		return fmt.Errorf("failed to install Python dependencies: %w", err)
	}

	return nil
}

// installBrowserRuntime installs the browser engine the browser-automation
// dependency drives. Fatal on error since no automation works without it.
func (p *Procedure) installBrowserRuntime(ctx context.Context) error {
	log.Info().Msg("Installing browser runtime (chromium)")

	if _, err := p.runner.Run(ctx, p.venvBin("playwright"), "install", "chromium"); err != nil {
		return fmt.Errorf("failed to install browser runtime: %w", err)
	}

	return nil
}
