package nativemode

import (
	"fmt"
	"net"
	"strconv"

	"github.com/rs/zerolog/log"
)

// launchUI backgrounds the UI process bound to the configured host and
// port, with combined output going to the fixed log file. It does not wait
// for the process to bind the port: the launch contract is fire-and-forget,
// and the log file is the place to look when the UI never comes up.
func (p *Procedure) launchUI() (int, error) {
	log.Info().
		Str("host", p.cfg.Host).
		Int("port", p.cfg.Port).
		Str("log", p.cfg.UILogPath()).
		Msg("Starting UI")

	pid, err := p.runner.Background(
		p.cfg.InstallDir,
		p.cfg.UILogPath(),
		p.venvBin("python"),
		"run_ui.py",
		"--host", p.cfg.Host,
		"--port", strconv.Itoa(p.cfg.Port),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to start UI process: %w", err)
	}

	return pid, nil
}

// discoverHostIP returns a best-effort LAN address for the printed URL,
// falling back to the configured bind host. The UDP dial sends nothing; it
// only asks the kernel which source address would be used.
func discoverHostIP(fallback string) string {
	conn, err := net.Dial("udp", "8.8.8.8:80")
	if err != nil {
		return fallback
	}
	defer conn.Close()

	addr, ok := conn.LocalAddr().(*net.UDPAddr)
	if !ok {
		return fallback
	}

	return addr.IP.String()
}
