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

func newSkipCmd() *cobra.Command {
	var day string

	cmd := &cobra.Command{
		Use:   "skip <series-ref>",
		Short: "Skip one day of a series",
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) != 1 {
				return errors.New("series reference is required")
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
			if task == nil || task.Origin.Kind != engine.OriginSeries {
				return fmt.Errorf("no series instance matches %q", args[0])
			}
			if err := svc.SkipSeriesDay(ctx, task.Origin.SeriesID, day, now); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", ui.Warn.Render(ui.IconMoon+" Skipped"), task.Title)
			return nil
		},
	}

	cmd.Flags().StringVarP(&day, "day", "d", "", "Day (YYYY-MM-DD, default today)")

	return cmd
}
