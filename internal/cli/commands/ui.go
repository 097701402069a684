package commands

import (
	"fmt"
	"os/exec"
	"runtime"

	"github.com/leapstack-labs/incomeshare/internal/ui"
	"github.com/spf13/cobra"
)

// UIOptions holds options for the ui command.
type UIOptions struct {
	Port      int
	NoBrowser bool
	Dev       bool
}

// NewUICommand creates the ui command.
func NewUICommand() *cobra.Command {
	opts := &UIOptions{}

	cmd := &cobra.Command{
		Use:     "ui",
		Aliases: []string{"serve"},
		Short:   "Start the web UI",
		Long: `Start a local web server for browsing and correcting records.

The UI provides:
- Trend of one country's share over time
- Latest share for countries matching a keyword
- Highest and lowest shares in a year
- Appending, editing and deleting records`,
		Example: `  # Start UI on default port
  incomeshare ui

  # Start on custom port
  incomeshare ui --port 3000

  # Start without auto-opening browser
  incomeshare ui --no-browser`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runUI(cmd, opts)
		},
	}

	cmd.Flags().IntVar(&opts.Port, "port", 0, "Port to serve on (default: 8765)")
	cmd.Flags().BoolVar(&opts.NoBrowser, "no-browser", false, "Don't auto-open browser")
	cmd.Flags().BoolVar(&opts.Dev, "dev", false, "Enable live reload")

	return cmd
}

func runUI(cmd *cobra.Command, opts *UIOptions) error {
	cc, cleanup, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	// CLI flags override config file
	port := cc.Cfg.UI.Port
	if opts.Port != 0 {
		port = opts.Port
	}
	autoOpen := cc.Cfg.UI.AutoOpen && !opts.NoBrowser
	dev := cc.Cfg.UI.Dev || opts.Dev

	server := ui.NewServer(ui.Config{
		Store:          cc.Store,
		Port:           port,
		Dev:            dev,
		SessionSecret:  cc.Cfg.UI.SessionSecret,
		BaselinePeriod: cc.Cfg.BaselinePeriod,
		Logger:         cc.Logger,
	})

	url := fmt.Sprintf("http://localhost:%d", port)
	if autoOpen {
		go openBrowser(url)
	}

	out := cmd.OutOrStdout()
	_, _ = fmt.Fprintf(out, "Starting UI server on %s\n", url)
	_, _ = fmt.Fprintln(out, "Press Ctrl+C to stop")

	return server.Serve(cmd.Context())
}

// openBrowser opens the default browser to the specified URL.
func openBrowser(url string) {
	var cmd *exec.Cmd

	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url) //nolint:noctx
	case "linux":
		cmd = exec.Command("xdg-open", url) //nolint:noctx
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url) //nolint:noctx
	default:
		return
	}

	_ = cmd.Start()
}
