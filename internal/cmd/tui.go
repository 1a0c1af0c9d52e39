package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wethinkt/go-daybook/internal/config"
	"github.com/wethinkt/go-daybook/internal/journal"
	"github.com/wethinkt/go-daybook/internal/tui"
	"github.com/wethinkt/go-daybook/internal/tuilog"
)

// TUI flags
var (
	tuiDay     string
	tuiEntry   string
	tuiSession string
)

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Launch the interactive journal",
	Long: `Browse and write the journal in the terminal.

The day picker lists the days with entries. Opening a day shows its
feed; today's feed follows new entries and streamed replies as long as
you stay at the bottom. Scrolling up pauses following and shows a
"Jump to latest" button (G or End).

Scroll positions are remembered per day for the session. Pass
--session to pick them up again in a later run.

Examples:
  daybook tui
  daybook tui --day 2026-10-18
  daybook tui --day 2026-10-18 --entry 4f1c2a9e
  daybook tui --session work`,
	RunE: runTUI,
}

func runTUI(cmd *cobra.Command, args []string) error {
	closeLog, err := initLog()
	if err != nil {
		return err
	}
	defer closeLog()

	if tuiDay != "" && !journal.ValidDay(tuiDay) {
		return fmt.Errorf("invalid day %q, want YYYY-MM-DD", tuiDay)
	}
	if tuiEntry != "" && tuiDay == "" {
		return fmt.Errorf("--entry needs --day")
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	tuilog.Log.Info("Starting TUI", "day", tuiDay, "entry", tuiEntry, "session", tuiSession)
	err = tui.Run(tui.Options{
		Config:  cfg,
		Day:     tuiDay,
		Entry:   tuiEntry,
		Session: tuiSession,
	})
	tuilog.Log.Info("TUI exited", "error", err)
	return err
}
