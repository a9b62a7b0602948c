package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/codebeauty/scanview/internal/config"
	"github.com/codebeauty/scanview/internal/tui"
)

func newStagesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stages",
		Short: "Show the configured scan stage breakdown",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadMerged(".")
			if err != nil {
				return err
			}

			t := tui.Table{Headers: []string{"STAGE", "WEIGHT", "SUBTITLES"}}
			for i, s := range cfg.StageModel() {
				label := s.Label
				if i == 0 {
					label += " " + tui.Badge("gating")
				}
				subtitles := strings.Join(s.Subtitles, ", ")
				if subtitles == "" {
					subtitles = tui.StyleMuted.Render("—")
				}
				t.Rows = append(t.Rows, []string{label, s.Weight, subtitles})
			}
			fmt.Print(t.Render())
			return nil
		},
	}
}
