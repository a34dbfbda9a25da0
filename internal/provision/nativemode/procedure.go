package nativemode

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/rs/zerolog/log"

	"a0up/internal/config"
	"a0up/pkg/apt"
	"a0up/pkg/sysexec"
)

// hostPackages is the fixed contract list of native packages the Python
// dependencies need: certificate store, VCS client, compiler toolchain,
// runtime headers, media/OCR/PDF/graphics/audio shared libraries, and the
// browser sandbox libraries.
var hostPackages = []string{
	"ca-certificates",
	"curl",
	"git",
	"build-essential",
	"python3-venv",
	"python3-dev",
	"ffmpeg",
	"tesseract-ocr",
	"poppler-utils",
	"libgl1",
	"libasound2",
	"libnss3",
	"libnspr4",
	"libatk1.0-0",
	"libatk-bridge2.0-0",
	"libcups2",
	"libgtk-3-0",
	"libxkbcommon0",
	"libgbm1",
	"libxdamage1",
	"libxcomposite1",
}

// Procedure installs Agent Zero into a host Python virtual environment:
// CheckPrereqs -> InstallHostDeps -> SyncRepo -> CreateVenv ->
// InstallPythonDeps -> InstallBrowserRuntime -> LaunchUI -> Done.
type Procedure struct {
	cfg    *config.Config
	runner sysexec.Runner
	apt    *apt.Manager
	out    io.Writer
	euid   int
}

// New creates the native-mode procedure.
func New(cfg *config.Config, runner sysexec.Runner, aptMgr *apt.Manager) *Procedure {
	return &Procedure{
		cfg:    cfg,
		runner: runner,
		apt:    aptMgr,
		out:    os.Stdout,
		euid:   os.Geteuid(),
	}
}

func (p *Procedure) Name() string {
	return "native"
}

// Run executes the native procedure. Prerequisite misses and any dependency
// installation failure abort the run; re-running resumes idempotently from
// the observed host state (clone becomes pull, venv is reused).
func (p *Procedure) Run(ctx context.Context) error {
	if err := p.checkPrereqs(); err != nil {
		return err
	}

	log.Info().Msg("Installing host packages")
	if err := p.apt.Update(ctx); err != nil {
		return fmt.Errorf("failed to refresh package index: %w", err)
	}
	if err := p.apt.Install(ctx, hostPackages...); err != nil {
		return fmt.Errorf("failed to install host packages: %w", err)
	}

	if err := p.syncRepo(ctx); err != nil {
		return err
	}

	if err := p.createVenv(ctx); err != nil {
		return err
	}

	if err := p.installPythonDeps(ctx); err != nil {
		return err
	}

	if err := p.installBrowserRuntime(ctx); err != nil {
		return err
	}

	pid, err := p.launchUI()
	if err != nil {
		return err
	}

	p.printDone(pid)
	return nil
}

// checkPrereqs verifies the binaries no installation step can proceed
// without. sudo is only required when not already running as root.
func (p *Procedure) checkPrereqs() error {
	required := []string{"apt-get", "python3"}
	if p.euid != 0 {
		required = append([]string{"sudo"}, required...)
	}

	for _, bin := range required {
		if !p.runner.LookPath(bin) {
			return fmt.Errorf("required binary %q not found on PATH", bin)
		}
	}

	return nil
}

func (p *Procedure) printDone(pid int) {
	host := discoverHostIP(p.cfg.Host)
	url := fmt.Sprintf("http://%s:%d", host, p.cfg.Port)

	fmt.Fprintln(p.out)
	fmt.Fprintf(p.out, "Agent Zero UI started (pid %d): %s\n", pid, color.GreenString(url))
	fmt.Fprintf(p.out, "Logs: %s\n", p.cfg.UILogPath())
}
