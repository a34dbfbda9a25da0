package cmd

import (
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"a0up/internal/config"
	"a0up/pkg/runtime"
)

var stopCmd = &cobra.Command{
	Use:   "stop",
	Short: "Stop a docker-mode installation",
	Long: `Stop and remove the named Agent Zero container. In native mode the
installer does not own the UI process lifecycle; stop prints where to
look instead.`,
	RunE: runStop,
}

func init() {
	rootCmd.AddCommand(stopCmd)
}

func runStop(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	if cfg.Mode == config.ModeNative {
		fmt.Fprintf(cmd.OutOrStdout(), "Native installs are not managed by a0up once launched.\n")
		fmt.Fprintf(cmd.OutOrStdout(), "Check %s for the UI pid, or: pkill -f run_ui.py\n", cfg.UILogPath())
		return nil
	}

	rt, err := runtime.NewDockerRuntime()
	if err != nil {
		return fmt.Errorf("failed to connect to docker engine: %w", err)
	}

	ctx := cmd.Context()

	containers, err := rt.ListContainers(ctx, true)
	if err != nil {
		return fmt.Errorf("failed to list containers: %w", err)
	}

	existing := runtime.FindByName(containers, cfg.ContainerName)
	if existing == nil {
		fmt.Fprintf(cmd.OutOrStdout(), "No container named %q found.\n", cfg.ContainerName)
		return nil
	}

	// Both calls are best-effort: a container that is already stopped or
	// already gone leaves nothing to do.
	if err := rt.StopContainer(ctx, existing.ID); err != nil {
		log.Warn().Err(err).Str("id", existing.ID).Msg("Failed to stop container")
	}

	if err := rt.RemoveContainer(ctx, existing.ID, true); err != nil {
		log.Warn().Err(err).Str("id", existing.ID).Msg("Failed to remove container")
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Container %q stopped and removed.\n", cfg.ContainerName)
	return nil
}
