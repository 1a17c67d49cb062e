// Package cli wires the taskflow command tree.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/taskflow/client-go/internal/config"
	"github.com/taskflow/client-go/internal/errors"
	"github.com/taskflow/client-go/internal/logging"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:           "taskflow",
	Short:         "Terminal client for TaskFlow boards",
	Long:          "taskflow is a terminal client for TaskFlow: optimistic edits, live board updates over SSE, and conflict resolution when edits collide.",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return err
		}
		cfg = c
		logging.Init(os.Stderr, logging.ParseLevel(cfg.App.LogLevel))
		return nil
	},
}

// Execute runs the command tree.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error: "+errors.Message(err))
		os.Exit(1)
	}
}
