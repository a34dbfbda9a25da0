package sysexec

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"syscall"

	"a0up/pkg/logger"
)

// Runner abstracts external command execution so procedures can be tested
// without touching the host. ExecRunner is the real implementation.
type Runner interface {
	// LookPath reports whether a binary is resolvable on PATH. Never errors.
	LookPath(name string) bool
	// Run executes a command and returns its combined output. The returned
	// error wraps the external tool's own failure verbatim.
	Run(ctx context.Context, name string, args ...string) (string, error)
	// Background starts a command detached from the controlling session,
	// with combined output appended to logPath. It does not wait on the
	// process; the caller does not own its lifecycle afterwards.
	Background(dir, logPath string, name string, args ...string) (int, error)
}

// ExecRunner runs commands with os/exec.
type ExecRunner struct{}

// NewRunner returns the real command runner.
func NewRunner() *ExecRunner {
	return &ExecRunner{}
}

func (r *ExecRunner) LookPath(name string) bool {
	_, err := exec.LookPath(name)
	return err == nil
}

func (r *ExecRunner) Run(ctx context.Context, name string, args ...string) (string, error) {
	logger.Debug("Running command", "cmd", name, "args", strings.Join(args, " "))

	cmd := exec.CommandContext(ctx, name, args...)
	out, err := cmd.CombinedOutput()
	if err != nil {
		return string(out), fmt.Errorf("%s %s: %w: %s", name, strings.Join(args, " "), err, strings.TrimSpace(string(out)))
	}

	return string(out), nil
}

func (r *ExecRunner) Background(dir, logPath string, name string, args ...string) (int, error) {
	logFile, err := os.OpenFile(logPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return 0, fmt.Errorf("failed to open log file %s: %w", logPath, err)
	}
	defer logFile.Close()

	cmd := exec.Command(name, args...)
	cmd.Dir = dir
	cmd.Stdout = logFile
	cmd.Stderr = logFile
	cmd.Stdin = nil
	// New session so the process survives the installer exiting.
	cmd.SysProcAttr = &syscall.SysProcAttr{Setsid: true}

	if err := cmd.Start(); err != nil {
		return 0, fmt.Errorf("failed to start %s: %w", name, err)
	}

	pid := cmd.Process.Pid

	// Release the process handle; we never wait on it.
	if err := cmd.Process.Release(); err != nil {
		logger.Warn("Failed to release background process handle", "pid", pid, "error", err)
	}

	logger.Debug("Started background process", "cmd", name, "pid", pid, "log", logPath)
	return pid, nil
}
