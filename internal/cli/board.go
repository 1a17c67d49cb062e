package cli

import (
	"context"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/taskflow/client-go/internal/client"
	"github.com/taskflow/client-go/internal/errors"
	"github.com/taskflow/client-go/internal/tui"
)

var (
	boardUser     string
	boardPassword string
)

var boardCmd = &cobra.Command{
	Use:   "board [board-id]",
	Short: "Open a board in the terminal UI",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cl := client.New(cfg)
		defer cl.Close()

		ctx := cmd.Context()
		user, password := credentials()
		if err := cl.Login(ctx, user, password); err != nil {
			return err
		}

		boardID, err := resolveBoard(ctx, cl, args)
		if err != nil {
			return err
		}
		if err := cl.OpenBoard(ctx, boardID); err != nil {
			return err
		}
		return tui.Run(cl, boardID)
	},
}

func credentials() (string, string) {
	user, password := boardUser, boardPassword
	if user == "" {
		user = cfg.API.Username
	}
	if password == "" {
		password = cfg.API.Password
	}
	return user, password
}

// resolveBoard takes the board from the argument, or the first visible board
// when none is given.
func resolveBoard(ctx context.Context, cl *client.Client, args []string) (int64, error) {
	if len(args) == 1 {
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return 0, errors.New(errors.ErrInvalid, "board id must be a number")
		}
		return id, nil
	}

	boards, err := cl.Boards(ctx)
	if err != nil {
		return 0, err
	}
	if len(boards) == 0 {
		return 0, errors.New(errors.ErrNotFound, "no boards visible to this account")
	}
	return boards[0].ID, nil
}

func init() {
	boardCmd.Flags().StringVarP(&boardUser, "user", "u", "", "username (defaults to TASKFLOW_USERNAME)")
	boardCmd.Flags().StringVarP(&boardPassword, "password", "p", "", "password (defaults to TASKFLOW_PASSWORD)")
	rootCmd.AddCommand(boardCmd)
}
