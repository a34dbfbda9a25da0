package apt

import (
	"context"
	"os"
	"strings"

	"a0up/pkg/logger"
	"a0up/pkg/sysexec"
)

// Manager wraps apt-get and apt-cache. Install/Update go through sudo when
// not running as root; apt-get's own idempotence covers re-installs.
type Manager struct {
	runner sysexec.Runner
	euid   int
}

// NewManager creates an apt Manager over the given runner.
func NewManager(runner sysexec.Runner) *Manager {
	return &Manager{
		runner: runner,
		euid:   os.Geteuid(),
	}
}

// NewManagerWithEUID is used by tests to pin the privilege branch.
func NewManagerWithEUID(runner sysexec.Runner, euid int) *Manager {
	return &Manager{runner: runner, euid: euid}
}

// Update refreshes the package index.
func (m *Manager) Update(ctx context.Context) error {
	_, err := m.runner.Run(ctx, m.cmd(), m.argv("update")...)
	return err
}

// Install installs the given packages non-interactively.
func (m *Manager) Install(ctx context.Context, packages ...string) error {
	args := append(m.argv("install", "-y"), packages...)
	_, err := m.runner.Run(ctx, m.cmd(), args...)
	return err
}

// Available reports whether the package cache knows the given package name.
// It never errors: a failing or empty apt-cache query means "not available".
func (m *Manager) Available(ctx context.Context, pkg string) bool {
	out, err := m.runner.Run(ctx, "apt-cache", "show", pkg)
	if err != nil {
		logger.Debug("Package not found in apt cache", "package", pkg)
		return false
	}
	return strings.TrimSpace(out) != ""
}

func (m *Manager) cmd() string {
	if m.euid == 0 {
		return "apt-get"
	}
	return "sudo"
}

func (m *Manager) argv(args ...string) []string {
	if m.euid == 0 {
		return args
	}
	return append([]string{"apt-get"}, args...)
}
