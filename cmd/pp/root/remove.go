package root

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"petprogress/internal/engine"
	"petprogress/internal/ui"
)

func newRemoveCmd() *cobra.Command {
	var day string

	cmd := &cobra.Command{
		Use:   "remove <ref>",
		Short: "Remove a one-off task",
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
			task, err := svc.Resolve(ctx, day, -1, args[0], now)
			if err != nil {
				return err
			}
			if task == nil || task.Origin.Kind != engine.OriginOneOff {
				return fmt.Errorf("no one-off task matches %q (use skip for series)", args[0])
			}
			if err := svc.DeleteTask(ctx, task.Origin.TaskID, now); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", ui.Warn.Render("✂ Removed"), task.Title)
			return nil
		},
	}

	cmd.Flags().StringVarP(&day, "day", "d", "", "Day (YYYY-MM-DD, default today)")

	return cmd
}
