package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var version = "dev"
var commit = ""

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "print version",
	// no config needed
	PersistentPreRunE: func(*cobra.Command, []string) error { return nil },
	Run: func(cmd *cobra.Command, _ []string) {
		fmt.Fprintln(cmd.OutOrStdout(), version+"-"+commit)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
