package cli

import "github.com/spf13/cobra"

var version = "dev"

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:     "scanview",
		Short:   "Watch a code-audit scan job with a staged progress display",
		Version: version,
	}

	root.AddCommand(newWatchCmd())
	root.AddCommand(newStagesCmd())
	root.AddCommand(newConfigCmd())

	return root
}

func Execute() error {
	return newRootCmd().Execute()
}
