package root

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"petprogress/internal/ui"
)

func newCheckCmd() *cobra.Command {
	var day string
	var hour int

	cmd := &cobra.Command{
		Use:   "check <ref>",
		Short: "Check in a task (id, id prefix, or title)",
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) != 1 {
				return errors.New("task reference is required")
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			svc, cleanup, err := openService()
			if err != nil {
				return err
			}
			defer cleanup()

			now := time.Now()
			task, err := svc.Resolve(ctx, day, hour, args[0], now)
			if err != nil {
				return err
			}
			if task == nil {
				fmt.Fprintln(cmd.OutOrStdout(), ui.Muted.Render("No matching task today."))
				return nil
			}

			res, err := svc.CheckIn(ctx, task.ID, now)
			if err != nil {
				return err
			}
			switch {
			case !res.Found:
				fmt.Fprintln(cmd.OutOrStdout(), ui.Muted.Render("No matching task today."))
			case res.XPDelta == 0 && !res.Evolved:
				fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", ui.Good.Render(ui.IconDone+" Done"), res.Title)
			case res.OnTime:
				fmt.Fprintf(cmd.OutOrStdout(), "%s %s %s\n",
					ui.Good.Render(ui.IconDone+" On time"), res.Title, ui.Muted.Render(fmt.Sprintf("(+%d XP)", res.XPDelta)))
			default:
				fmt.Fprintf(cmd.OutOrStdout(), "%s %s %s\n",
					ui.Warn.Render(ui.IconDone+" Late"), res.Title, ui.Muted.Render(fmt.Sprintf("(+%d XP)", res.XPDelta)))
			}
			if res.Celebrate {
				fmt.Fprintf(cmd.OutOrStdout(), "%s %s Your pet is now a %s!\n",
					ui.BadgeEvolved, ui.IconSparkle, ui.Gold.Render(res.Stage.Name))
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&day, "day", "d", "", "Day (YYYY-MM-DD, default today)")
	cmd.Flags().IntVar(&hour, "hour", -1, "Restrict match to this scheduled hour")

	return cmd
}
