package root

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"petprogress/internal/ui"
)

func newSnoozeCmd() *cobra.Command {
	var minutes int

	cmd := &cobra.Command{
		Use:   "snooze <ref>",
		Short: "Push a task's time for today",
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
			task, err := svc.Resolve(ctx, "", -1, args[0], now)
			if err != nil {
				return err
			}
			if task == nil {
				fmt.Fprintln(cmd.OutOrStdout(), ui.Muted.Render("No matching task today."))
				return nil
			}

			res, err := svc.Snooze(ctx, task.ID, minutes, now)
			if err != nil {
				return err
			}
			if !res.Found {
				fmt.Fprintln(cmd.OutOrStdout(), ui.Muted.Render("No matching task today."))
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s until %s\n",
				ui.Warn.Render(ui.IconMoon+" Snoozed"), res.Title, res.Until.Format("15:04"))
			return nil
		},
	}

	cmd.Flags().IntVarP(&minutes, "minutes", "m", 30, "Minutes to snooze")

	return cmd
}
