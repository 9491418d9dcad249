package root

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"petprogress/internal/ui"
)

func newStatusCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show the pet and its progress",
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
			st, err := svc.Status(ctx, now)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, ui.Heading(ui.IconPet, "Pet Status"))
			fmt.Fprintln(out, ui.LabelValue("Stage", fmt.Sprintf("%s (stage %d)", st.Stage.Name, st.Pet.StageIndex)))
			if st.Threshold > 0 {
				fmt.Fprintf(out, "%s %s %s\n",
					ui.Key.Render("XP:"),
					ui.XPBar(st.Pet.StageXP, st.Threshold, 20),
					ui.Muted.Render(fmt.Sprintf("%d/%d to evolve", st.Pet.StageXP, st.Threshold)))
			} else {
				fmt.Fprintf(out, "%s %s %s\n", ui.Key.Render("XP:"), ui.XPBar(1, 0, 20), ui.Gold.Render("final stage"))
			}
			if st.Pet.LastCloseoutDayKey != "" {
				fmt.Fprintln(out, ui.LabelValue("Last closeout", st.Pet.LastCloseoutDayKey))
			}
			fmt.Fprintln(out, "")
			fmt.Fprintln(out, ui.H2.Render("⚙ Settings"))
			fmt.Fprintln(out, ui.LabelValue("Grace window", fmt.Sprintf("±%d min", st.Settings.GraceMinutes)))
			reset := st.Settings.ResetTime
			if reset == "" {
				reset = "midnight"
			}
			fmt.Fprintln(out, ui.LabelValue("Day resets at", reset))
			fmt.Fprintln(out, ui.LabelValue("Rollover", enabledStr(st.Settings.RolloverEnabled)))
			return nil
		},
	}

	return cmd
}

func enabledStr(ok bool) string {
	if ok {
		return ui.Good.Render("enabled")
	}
	return ui.Bad.Render("disabled")
}
