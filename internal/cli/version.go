package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// version is stamped by the release build
var version = "0.1.0"

// versionCmd represents the version command
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("claimcheck v%s\n", version)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
