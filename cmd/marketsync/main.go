// Command marketsync keeps a terminal view of one DEX market in sync with a
// market-data server.
package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/dexux/marketsync/internal/version"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var configPath string

	root := &cobra.Command{
		Use:           "marketsync",
		Short:         "Realtime DEX market-data sync client",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	root.PersistentFlags().StringVar(&configPath, "config", "", "path to config file (defaults apply when empty)")

	root.AddCommand(newRunCmd(&configPath), newStreamCmd(&configPath), newVersionCmd())
	return root
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print build information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			cmd.Println(version.String())
		},
	}
}
