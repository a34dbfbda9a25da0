package provision

import (
	"context"
	"errors"
	"fmt"

	"a0up/internal/config"
	"a0up/internal/provision/dockermode"
	"a0up/internal/provision/nativemode"
	"a0up/pkg/apt"
	"a0up/pkg/sysexec"
)

// ErrUnknownMode is returned when the configured mode matches no procedure.
// Config validation rejects unknown modes before any side effect, so this is
// only reachable through direct construction.
var ErrUnknownMode = errors.New("unknown installation mode")

// Procedure is one of the two top-level installation flows. Steps inside a
// procedure run strictly sequentially and re-query host state fresh at each
// decision point.
type Procedure interface {
	Name() string
	Run(ctx context.Context) error
}

// New returns the procedure selected by cfg.Mode.
func New(cfg *config.Config) (Procedure, error) {
	runner := sysexec.NewRunner()

	switch cfg.Mode {
	case config.ModeDocker:
		return dockermode.New(cfg, runner, apt.NewManager(runner)), nil
	case config.ModeNative:
		return nativemode.New(cfg, runner, apt.NewManager(runner)), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownMode, cfg.Mode)
	}
}
