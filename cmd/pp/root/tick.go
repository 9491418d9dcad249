package root

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"petprogress/internal/ui"
)

func newTickCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tick",
		Short: "Run day rollover and pending closeouts",
		Long:  "Closes out any ended days (XP penalty for misses, optional rollover of incomplete tasks) and refreshes the current day. Intended for schedulers and launch hooks; the other read commands run it implicitly.",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			svc, cleanup, err := openService()
			if err != nil {
				return err
			}
			defer cleanup()

			res, err := svc.Tick(ctx, time.Now())
			if err != nil {
				return err
			}
			if len(res.Processed) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), ui.Muted.Render("Nothing to close out."))
				return nil
			}
			for _, day := range res.Processed {
				line := fmt.Sprintf("%s closed: %d done, %d missed (%+d XP)",
					day.DayKey, day.Completed, day.Missed, day.XPDelta)
				if day.StageAfter < day.StageBefore {
					line += " " + ui.Bad.Render(ui.IconDown+" de-evolved")
				}
				fmt.Fprintln(cmd.OutOrStdout(), line)
			}
			return nil
		},
	}

	return cmd
}
