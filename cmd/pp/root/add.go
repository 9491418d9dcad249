package root

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"petprogress/internal/ui"
)

func newAddCmd() *cobra.Command {
	var at string
	var day string

	cmd := &cobra.Command{
		Use:   "add <title>",
		Short: "Add a one-off task",
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

			id, err := svc.AddTask(ctx, args[0], hour, minute, day, time.Now())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s at %s %s\n",
				ui.Good.Render(ui.IconPlus+" Added"),
				args[0],
				ui.Clock(hour, minute),
				ui.Muted.Render(shortID(id)))
			return nil
		},
	}

	cmd.Flags().StringVarP(&at, "at", "t", "09:00", "Scheduled time (HH:MM)")
	cmd.Flags().StringVarP(&day, "day", "d", "", "Day (YYYY-MM-DD, default today)")

	return cmd
}

// parseClock parses "HH:MM" user input.
func parseClock(s string) (int, int, error) {
	parts := strings.SplitN(strings.TrimSpace(s), ":", 2)
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("invalid time %q (want HH:MM)", s)
	}
	h, err1 := strconv.Atoi(parts[0])
	m, err2 := strconv.Atoi(parts[1])
	if err1 != nil || err2 != nil || h < 0 || h > 23 || m < 0 || m > 59 {
		return 0, 0, fmt.Errorf("invalid time %q (want HH:MM)", s)
	}
	return h, m, nil
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
