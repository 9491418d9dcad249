package root

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"petprogress/internal/engine"
	"petprogress/internal/ui"
)

func newTodayCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "today",
		Short: "List today's tasks",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			svc, cleanup, err := openService()
			if err != nil {
				return err
			}
			defer cleanup()

			now := time.Now()
			if _, err := svc.Tick(ctx, now); err != nil {
				return err
			}
			dayKey, tasks, err := svc.Today(ctx, now)
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), ui.Heading(ui.IconClock, "Today · "+dayKey))
			if len(tasks) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), ui.Muted.Render("No tasks. Add one with: pp add \"Stretch\" --at 08:30"))
				return nil
			}
			for _, t := range tasks {
				marker := ""
				if t.Origin.Kind == engine.OriginSeries {
					marker = " " + ui.Muted.Render(ui.IconLoop)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s %s  %s%s %s\n",
					ui.CheckMark(t.Completed),
					ui.Clock(t.Hour, t.Minute),
					t.Title,
					marker,
					ui.Muted.Render(shortID(t.ID)))
			}
			return nil
		},
	}

	return cmd
}
