package cli

import (
	"github.com/spf13/cobra"

	"github.com/taskflow/client-go/internal/devserver"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the in-memory development server",
	Long:  "Runs a local TaskFlow backend stand-in with seeded accounts (alice/password, bob/password) and one board.",
	RunE: func(cmd *cobra.Command, args []string) error {
		return devserver.New().ListenAndServe(serveAddr)
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", ":8080", "listen address")
	rootCmd.AddCommand(serveCmd)
}
