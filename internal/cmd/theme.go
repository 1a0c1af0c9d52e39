package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"slices"

	"github.com/spf13/cobra"

	"github.com/wethinkt/go-daybook/internal/config"
	"github.com/wethinkt/go-daybook/internal/i18n"
	"github.com/wethinkt/go-daybook/internal/tui/theme"
)

var themeCmd = &cobra.Command{
	Use:   "theme [name]",
	Short: "Get or set the color theme",
	Long: `Get or set the color theme of the TUI.

Available themes: dark, light. A running TUI picks the change up
without restarting.

Examples:
  daybook theme              # show the active theme
  daybook theme --json       # output the active theme as JSON
  daybook theme light        # switch to the light theme`,
	Args: cobra.MaximumNArgs(1),
	RunE: runTheme,
}

func runTheme(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	if len(args) == 0 {
		t, _ := theme.Use(cfg.Theme)
		if outputJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(t)
		}
		fmt.Println(i18n.Tf("cmd.theme.current", "Current theme: %s", cfg.Theme))
		return nil
	}

	name := args[0]
	if !slices.Contains(theme.ListEmbedded(), name) {
		return fmt.Errorf("unknown theme %q (available: %v)", name, theme.ListEmbedded())
	}
	cfg.Theme = name
	if err := config.Save(cfg); err != nil {
		return err
	}
	fmt.Println(i18n.Tf("cmd.theme.set", "Theme set to: %s", name))
	return nil
}
