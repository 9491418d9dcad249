package root

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"petprogress/internal/ui"
)

const Version = "0.1.0"

var rootCmd = &cobra.Command{
	Use:           "pp",
	Short:         "PetProgress — evolve a pet by finishing your day",
	Long:          "PetProgress is a local-first CLI/TUI daily task tracker: completing time-slotted tasks on time evolves a pet through its stages; missing them regresses it.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func Execute() {
	rootCmd.Version = Version
	rootCmd.SetVersionTemplate("{{.Name}} v{{.Version}}\n")

	rootCmd.AddCommand(
		newAddCmd(),
		newSeriesCmd(),
		newSkipCmd(),
		newRemoveCmd(),
		newCheckCmd(),
		newSnoozeCmd(),
		newTodayCmd(),
		newStatusCmd(),
		newTickCmd(),
		newSettingsCmd(),
		newBoardCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, ui.Bad.Render(ui.IconError+" "+err.Error()))
		os.Exit(1)
	}
}
