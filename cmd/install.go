package cmd

import (
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"a0up/internal/config"
	"a0up/internal/provision"
)

var installCmd = &cobra.Command{
	Use:   "install",
	Short: "Install and start Agent Zero",
	Long: `Install Agent Zero in the selected mode.

docker mode pulls the published image and runs it as a detached container;
native mode clones the upstream repository, builds a virtual environment,
installs dependencies and backgrounds the web UI. Both modes converge on
re-run: completed steps are detected and skipped or reconciled.`,
	RunE: runInstall,
}

func init() {
	rootCmd.AddCommand(installCmd)
}

func runInstall(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	proc, err := provision.New(cfg)
	if err != nil {
		return err
	}

	log.Info().Str("mode", proc.Name()).Msg("Starting installation")

	if err := proc.Run(cmd.Context()); err != nil {
		return fmt.Errorf("installation failed: %w", err)
	}

	return nil
}
