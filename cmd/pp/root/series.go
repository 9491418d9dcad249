package root

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"petprogress/internal/state"
	"petprogress/internal/ui"
)

func newSeriesCmd() *cobra.Command {
	var at string
	var every string

	cmd := &cobra.Command{
		Use:   "series <title>",
		Short: "Add a recurring series",
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) != 1 {
				return errors.New("title is required")
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			hour, minute, err := parseClock(at)
			if err != nil {
				return err
			}
			svc, cleanup, err := openService()
			if err != nil {
				return err
			}
			defer cleanup()

			id, err := svc.AddSeries(ctx, args[0], hour, minute, state.Recurrence(every), time.Now())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s %s at %s %s\n",
				ui.Good.Render(ui.IconLoop+" Added"),
				every,
				args[0],
				ui.Clock(hour, minute),
				ui.Muted.Render(shortID(id)))
			return nil
		},
	}

	cmd.Flags().StringVarP(&at, "at", "t", "09:00", "Scheduled time (HH:MM)")
	cmd.Flags().StringVarP(&every, "every", "e", "daily", "Recurrence (daily|weekdays|weekly|monthly)")

	return cmd
}
