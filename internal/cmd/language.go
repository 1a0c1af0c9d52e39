package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wethinkt/go-daybook/internal/config"
	"github.com/wethinkt/go-daybook/internal/i18n"
	"github.com/wethinkt/go-daybook/internal/tui"
)

var languagePick bool

var languageCmd = &cobra.Command{
	Use:   "language [lang]",
	Short: "Get or set the display language",
	Long: `Get or set the display language. Use a BCP 47 tag (e.g., en, de).

The DAYBOOK_LANG environment variable and the --lang flag take
precedence over the configured language.

Examples:
  daybook language          # show current language
  daybook language de       # set to German
  daybook language --pick   # choose interactively with a preview`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}

		if len(args) == 0 && languagePick {
			picked, err := tui.RunLanguagePicker(i18n.ResolveLocale(cfg.Language))
			if err != nil || picked == "" {
				return err
			}
			args = []string{picked}
		}

		if len(args) == 0 {
			lang := i18n.ResolveLocale(cfg.Language)
			fmt.Println(i18n.Tf("cmd.language.current", "Current language: %s", lang))
			fmt.Println(i18n.Tf("cmd.language.available", "Available: %v", i18n.Available()))
			return nil
		}

		cfg.Language = args[0]
		if err := config.Save(cfg); err != nil {
			return err
		}
		i18n.Init(i18n.ResolveLocale(cfg.Language))
		fmt.Println(i18n.Tf("cmd.language.set", "Language set to: %s", args[0]))
		return nil
	},
}

func init() {
	languageCmd.Flags().BoolVar(&languagePick, "pick", false, "choose the language interactively")
}
