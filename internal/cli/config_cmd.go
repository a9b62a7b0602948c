package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/codebeauty/scanview/internal/config"
	"github.com/codebeauty/scanview/internal/tui"
)

func newConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Show resolved configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			header := func(label, value string) {
				if tui.IsTTY() {
					fmt.Fprintf(os.Stderr, "%s %s\n", tui.StyleBold.Render(label), value)
				} else {
					fmt.Fprintf(os.Stderr, "%s %s\n", label, value)
				}
			}

			header("Config file: ", config.GlobalConfigPath())
			projectPath := filepath.Join(".", ".scanview.json")
			if _, err := os.Stat(projectPath); err == nil {
				header("Project file:", projectPath)
			}
			fmt.Fprintln(os.Stderr)

			cfg, err := config.LoadMerged(".")
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}

			data, err := json.MarshalIndent(cfg, "", "  ")
			if err != nil {
				return fmt.Errorf("marshaling config: %w", err)
			}
			fmt.Println(string(data))
			return nil
		},
	}
}
