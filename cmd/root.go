package cmd

import (
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Build metadata, injected via ldflags.
var (
	BuildVersion = "dev"
	BuildCommit  = "none"
	BuildDate    = "unknown"
)

var rootCmd = &cobra.Command{
	Use:   "a0up",
	Short: "a0up - Agent Zero installer",
	Long: `a0up provisions the Agent Zero application on a Debian-family host,
either as a Docker container or natively into a Python virtual
environment. Re-running is safe: every step checks host state first.`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		setupLogging()
	},
}

// Execute runs the CLI with build metadata from main.
func Execute(version, commit, date string) error {
	if version != "" {
		BuildVersion = version
	}
	if commit != "" {
		BuildCommit = commit
	}
	if date != "" {
		BuildDate = date
	}

	return rootCmd.Execute()
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.String("mode", "docker", `installation mode: "docker" or "native"`)
	pf.String("dir", "", "native install/clone target (default $HOME/agent-zero)")
	pf.String("data-dir", "", "docker volume source directory (default $HOME/agent0_data)")
	pf.Int("port", 50001, "docker: host port mapped to container port 80; native: UI bind port")
	pf.String("host", "0.0.0.0", "native UI bind address")
	pf.String("name", "agent-zero", "docker container name")

	_ = viper.BindPFlag("mode", pf.Lookup("mode"))
	_ = viper.BindPFlag("dir", pf.Lookup("dir"))
	_ = viper.BindPFlag("data_dir", pf.Lookup("data-dir"))
	_ = viper.BindPFlag("port", pf.Lookup("port"))
	_ = viper.BindPFlag("host", pf.Lookup("host"))
	_ = viper.BindPFlag("name", pf.Lookup("name"))
}

func setupLogging() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	switch strings.ToLower(os.Getenv("A0UP_LOG_LEVEL")) {
	case "debug":
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	case "warn", "warning":
		zerolog.SetGlobalLevel(zerolog.WarnLevel)
	case "error":
		zerolog.SetGlobalLevel(zerolog.ErrorLevel)
	default:
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
}
