package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/taskflow/client-go/internal/client"
	"github.com/taskflow/client-go/internal/models"
)

var conflictsLimit int

var conflictsCmd = &cobra.Command{
	Use:   "conflicts",
	Short: "Show the local conflict journal",
	Long:  "Lists recent edit conflicts recorded on this machine and how each was resolved. Requires TASKFLOW_DATA_DIR to be set.",
	RunE: func(cmd *cobra.Command, args []string) error {
		cl := client.New(cfg)
		defer cl.Close()

		entries, err := cl.RecentConflicts(cmd.Context(), conflictsLimit)
		if err != nil {
			return err
		}
		if len(entries) == 0 {
			fmt.Println("no conflicts recorded")
			return nil
		}

		for _, entry := range entries {
			fmt.Println(formatConflict(entry))
		}
		return nil
	},
}

func formatConflict(entry models.ConflictLog) string {
	actor := entry.RemoteActor
	if actor == "" {
		actor = "unknown"
	}
	return fmt.Sprintf("%s  item %d  board %d  by %-20s  %s",
		entry.DetectedAtTime().Format(time.DateTime), entry.ItemID, entry.BoardID, actor, entry.Resolution)
}

func init() {
	conflictsCmd.Flags().IntVarP(&conflictsLimit, "limit", "n", 20, "number of entries to show")
	rootCmd.AddCommand(conflictsCmd)
}
