package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"a0up/internal/config"
	"a0up/pkg/apt"
	"a0up/pkg/runtime"
	"a0up/pkg/sysexec"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Report observed host state without changing anything",
	Long: `Print what the installer would find on this host: engine and tool
binaries, the named container, the repository clone, the virtual
environment, and compose package availability. Performs no side effects.`,
	RunE: runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	out := cmd.OutOrStdout()
	runner := sysexec.NewRunner()
	aptMgr := apt.NewManager(runner)
	ctx := cmd.Context()

	fmt.Fprintf(out, "Host state for mode %q:\n\n", cfg.Mode)

	reportCheck(out, "docker binary", runner.LookPath("docker"))
	reportCheck(out, "git binary", runner.LookPath("git"))
	reportCheck(out, "python3 binary", runner.LookPath("python3"))
	reportCheck(out, "sudo binary", runner.LookPath("sudo"))

	reportContainerState(ctx, out, cfg)

	_, err = os.Stat(filepath.Join(cfg.InstallDir, ".git"))
	reportCheck(out, fmt.Sprintf("repository clone at %s", cfg.InstallDir), err == nil)

	_, err = os.Stat(filepath.Join(cfg.VenvDir(), "bin", "python"))
	reportCheck(out, fmt.Sprintf("virtual environment at %s", cfg.VenvDir()), err == nil)

	reportCheck(out, "compose v2 package available", aptMgr.Available(ctx, "docker-compose-plugin"))
	reportCheck(out, "compose v1 package available", aptMgr.Available(ctx, "docker-compose"))

	return nil
}

// reportContainerState queries the engine for the named container. An
// unreachable daemon is reported as a state, not an error: status is a
// report, never a gate.
func reportContainerState(ctx context.Context, out io.Writer, cfg *config.Config) {
	rt, err := runtime.NewDockerRuntime()
	if err != nil {
		reportCheck(out, "docker daemon reachable", false)
		return
	}

	if err := rt.Ping(ctx); err != nil {
		reportCheck(out, "docker daemon reachable", false)
		return
	}

	reportCheck(out, "docker daemon reachable", true)

	containers, err := rt.ListContainers(ctx, true)
	if err != nil {
		reportCheck(out, fmt.Sprintf("container %q", cfg.ContainerName), false)
		return
	}

	existing := runtime.FindByName(containers, cfg.ContainerName)
	if existing == nil {
		reportCheck(out, fmt.Sprintf("container %q", cfg.ContainerName), false)
		return
	}

	fmt.Fprintf(out, "  %s container %q (%s)\n", color.GreenString("ok"), cfg.ContainerName, existing.State)
}

func reportCheck(out io.Writer, label string, ok bool) {
	mark := color.YellowString("--")
	if ok {
		mark = color.GreenString("ok")
	}
	fmt.Fprintf(out, "  %s %s\n", mark, label)
}
