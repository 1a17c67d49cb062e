package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// Version is stamped by the build.
var Version = "1.0.0"

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the client version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("taskflow " + Version)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
