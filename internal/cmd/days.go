package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/wethinkt/go-daybook/internal/config"
	"github.com/wethinkt/go-daybook/internal/i18n"
	"github.com/wethinkt/go-daybook/internal/journal"
)

// Days command flags
var (
	appendDay string
)

// dayStore is the part of the journal the days commands use.
type dayStore interface {
	Days(ctx context.Context) ([]journal.DaySummary, error)
	Entries(ctx context.Context, day string) ([]journal.Entry, error)
	Append(ctx context.Context, e journal.Entry) (journal.Entry, error)
}

var daysCmd = &cobra.Command{
	Use:   "days",
	Short: "List days and append entries",
	Long: `Work with the journal from the command line.

Examples:
  daybook days list                       # days with entries, newest first
  daybook days show 2026-10-18            # print a day's entries
  daybook days append "Long walk today"   # append to today
  echo "notes" | daybook days append -    # read the entry from stdin`,
}

var daysListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the days that have entries",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withJournal(func(j dayStore) error {
			return listDays(cmd.Context(), os.Stdout, j, time.Now())
		})
	},
}

var daysShowCmd = &cobra.Command{
	Use:   "show <day>",
	Short: "Print the entries of a day",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withJournal(func(j dayStore) error {
			return showDay(cmd.Context(), os.Stdout, j, args[0])
		})
	},
}

var daysAppendCmd = &cobra.Command{
	Use:   "append <text>...",
	Short: "Append an entry",
	Long: `Append an entry to a day (today unless --day is given).
Pass - to read the entry from stdin.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		text := strings.Join(args, " ")
		if text == "-" {
			data, err := io.ReadAll(os.Stdin)
			if err != nil {
				return fmt.Errorf("read stdin: %w", err)
			}
			text = string(data)
		}
		return withJournal(func(j dayStore) error {
			return appendEntry(cmd.Context(), os.Stdout, j, appendDay, text)
		})
	},
}

// withJournal opens the configured journal for the duration of fn.
func withJournal(fn func(dayStore) error) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	path, err := cfg.JournalPath()
	if err != nil {
		return err
	}
	j, err := journal.Open(path)
	if err != nil {
		return err
	}
	defer j.Close()
	return fn(j)
}

func listDays(ctx context.Context, w io.Writer, j dayStore, now time.Time) error {
	days, err := j.Days(ctx)
	if err != nil {
		return err
	}
	if outputJSON {
		if days == nil {
			days = []journal.DaySummary{}
		}
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(days)
	}
	if len(days) == 0 {
		fmt.Fprintln(w, i18n.T("cmd.days.empty", "No entries yet. Run 'daybook' to write the first one."))
		return nil
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n",
		i18n.T("cmd.days.colDay", "DAY"),
		i18n.T("cmd.days.colName", "NAME"),
		i18n.T("cmd.days.colEntries", "ENTRIES"),
		i18n.T("cmd.days.colLast", "LAST ENTRY"))
	for _, d := range days {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%s\n", d.Day, i18n.DayLabel(d.Day, now), d.Count, humanize.RelTime(d.LastAt, now, "ago", "from now"))
	}
	return tw.Flush()
}

func showDay(ctx context.Context, w io.Writer, j dayStore, day string) error {
	if !journal.ValidDay(day) {
		return fmt.Errorf("%w: %q", journal.ErrInvalidDay, day)
	}
	entries, err := j.Entries(ctx, day)
	if err != nil {
		return err
	}
	if outputJSON {
		if entries == nil {
			entries = []journal.Entry{}
		}
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(entries)
	}
	if len(entries) == 0 {
		fmt.Fprintln(w, i18n.Tf("cmd.days.noEntries", "No entries on %s.", day))
		return nil
	}
	for i, e := range entries {
		if i > 0 {
			fmt.Fprintln(w)
		}
		label := i18n.T("tui.day.entryLabel", "You")
		if e.Role == journal.RoleReply {
			label = i18n.T("tui.day.replyLabel", "Daybook")
		}
		fmt.Fprintf(w, "%s · %s · %s\n", label, e.CreatedAt.Local().Format("15:04"), e.ID)
		fmt.Fprintln(w, e.Text)
	}
	return nil
}

func appendEntry(ctx context.Context, w io.Writer, j dayStore, day, text string) error {
	if day != "" && !journal.ValidDay(day) {
		return fmt.Errorf("%w: %q", journal.ErrInvalidDay, day)
	}
	e, err := j.Append(ctx, journal.Entry{Day: day, Role: journal.RoleAuthor, Text: text})
	if err != nil {
		return err
	}
	if outputJSON {
		return json.NewEncoder(w).Encode(e)
	}
	fmt.Fprintln(w, i18n.Tf("cmd.days.appended", "Added %s to %s", e.ID, e.Day))
	return nil
}
