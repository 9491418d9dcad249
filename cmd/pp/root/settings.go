package root

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"petprogress/internal/ui"
)

func newSettingsCmd() *cobra.Command {
	var grace int
	var reset string
	var rollover bool

	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Change grace window, day reset time, or rollover",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			svc, cleanup, err := openService()
			if err != nil {
				return err
			}
			defer cleanup()

			var gracePtr *int
			var resetPtr *string
			var rolloverPtr *bool
			if cmd.Flags().Changed("grace") {
				gracePtr = &grace
			}
			if cmd.Flags().Changed("reset") {
				resetPtr = &reset
			}
			if cmd.Flags().Changed("rollover") {
				rolloverPtr = &rollover
			}
			if gracePtr == nil && resetPtr == nil && rolloverPtr == nil {
				return fmt.Errorf("nothing to change; see --help")
			}

			settings, err := svc.UpdateSettings(ctx, gracePtr, resetPtr, rolloverPtr, time.Now())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, ui.Good.Render(ui.IconDone+" Settings updated"))
			fmt.Fprintln(out, ui.LabelValue("Grace window", fmt.Sprintf("±%d min", settings.GraceMinutes)))
			resetTxt := settings.ResetTime
			if resetTxt == "" {
				resetTxt = "midnight"
			}
			fmt.Fprintln(out, ui.LabelValue("Day resets at", resetTxt))
			fmt.Fprintln(out, ui.LabelValue("Rollover", enabledStr(settings.RolloverEnabled)))
			return nil
		},
	}

	cmd.Flags().IntVar(&grace, "grace", 60, "On-time window around a task's time, in minutes")
	cmd.Flags().StringVar(&reset, "reset", "", "Day boundary time (HH:MM, empty for midnight)")
	cmd.Flags().BoolVar(&rollover, "rollover", true, "Carry missed tasks to the next day at closeout")

	return cmd
}
