// Package cmd provides the CLI commands for daybook.
package cmd

import (
	"fmt"
	"os"
	"runtime/pprof"

	"github.com/spf13/cobra"

	"github.com/wethinkt/go-daybook/internal/config"
	"github.com/wethinkt/go-daybook/internal/i18n"
	"github.com/wethinkt/go-daybook/internal/tuilog"
)

// global flags
var (
	profileFile *os.File // held open for profiling
	logPath     string
	langFlag    string
	verbose     bool
	outputJSON  bool
)

// rootCmd is the root command for the CLI.
var rootCmd = &cobra.Command{
	Use:   "daybook",
	Short: "A terminal journal that writes back",
	Long: `daybook is a day-by-day journal for the terminal. Each day is a feed of
entries; new entries get a streamed reply, and the feed follows the latest
entry until you scroll away from it.

Running without a subcommand launches the interactive TUI.

Commands:
  tui       Launch the journal (default)
  days      List days and append entries
  serve     Serve the journal over HTTP and MCP
  logs      Show the debug log
  language  Get or set the display language
  theme     Get or set the color theme

Examples:
  daybook                            # Open the day picker
  daybook --day 2026-10-19           # Open a day directly
  daybook days list                  # List the days with entries
  daybook serve                      # Start the HTTP server`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Start pprof profiling if DAYBOOK_PROFILE is set
		if profilePath := os.Getenv("DAYBOOK_PROFILE"); profilePath != "" {
			f, err := os.Create(profilePath)
			if err != nil {
				return fmt.Errorf("create profile file: %w", err)
			}
			profileFile = f

			if err := pprof.StartCPUProfile(f); err != nil {
				f.Close()
				profileFile = nil
				return fmt.Errorf("start CPU profile: %w", err)
			}
		}

		if langFlag != "" {
			os.Setenv(i18n.EnvLang, langFlag)
		}
		cfg, err := config.Load()
		if err != nil {
			// Commands still work with defaults, only translations and
			// the theme fall back.
			cfg = config.Default()
		}
		i18n.Init(i18n.ResolveLocale(cfg.Language))

		if verbose {
			tuilog.Log.SetLevel(tuilog.LevelDebug)
		}
		return nil
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		// Stop CPU profiling
		if profileFile != nil {
			pprof.StopCPUProfile()
			profileFile.Close()
			profileFile = nil
		}
		return nil
	},
	RunE: runTUI,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// Global flags on root
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().StringVar(&langFlag, "lang", "", "display language (overrides config and environment)")

	// TUI flags, on root too since it runs the TUI directly
	for _, c := range []*cobra.Command{rootCmd, tuiCmd} {
		c.Flags().StringVar(&logPath, "log", "", "write debug log to file")
		c.Flags().StringVar(&tuiDay, "day", "", "open this day (YYYY-MM-DD) instead of the day picker")
		c.Flags().StringVar(&tuiEntry, "entry", "", "scroll to and highlight this entry of --day")
		c.Flags().StringVar(&tuiSession, "session", "", "restore scroll positions saved under this session name")
	}

	// Days
	daysCmd.PersistentFlags().BoolVar(&outputJSON, "json", false, "output as JSON")
	daysAppendCmd.Flags().StringVar(&appendDay, "day", "", "day to append to (default: today)")
	daysCmd.AddCommand(daysListCmd)
	daysCmd.AddCommand(daysShowCmd)
	daysCmd.AddCommand(daysAppendCmd)

	// Serve command flags (persistent so 'serve mcp' inherits --log)
	serveCmd.Flags().IntVarP(&servePort, "port", "p", 0, "server port (default: from config)")
	serveCmd.Flags().StringVar(&serveHost, "host", "", "server host (default: from config)")
	serveCmd.PersistentFlags().StringVar(&logPath, "log", "", "write debug log to file")
	serveCmd.AddCommand(serveMcpCmd)
	serveMcpCmd.Flags().BoolVar(&mcpStdio, "stdio", false, "use stdio transport (default if no --port)")
	serveMcpCmd.Flags().IntVarP(&mcpPort, "port", "p", 0, "run MCP over HTTP on this port")
	serveMcpCmd.Flags().StringVar(&mcpHost, "host", "localhost", "host to bind MCP HTTP server")

	// Logs
	logsCmd.Flags().IntP("lines", "n", 50, "number of lines to show")
	logsCmd.Flags().BoolP("follow", "f", false, "follow the log for new lines")

	// Theme
	themeCmd.Flags().BoolVar(&outputJSON, "json", false, "output theme as JSON")

	rootCmd.AddCommand(tuiCmd)
	rootCmd.AddCommand(daysCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(logsCmd)
	rootCmd.AddCommand(languageCmd)
	rootCmd.AddCommand(themeCmd)
	rootCmd.AddCommand(versionCmd)
}
