package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/hub/internal/core/domain"
)

var pollReset bool

var pollCmd = &cobra.Command{
	Use:   "poll <connector> <path>",
	Short: "Poll an event for new occurrences",
	Long: `Fetches occurrences of the event at path since the last poll and prints
them as a JSON array. The event cursor is advanced only when the poll
succeeds.

With --reset the stored cursor is forgotten instead, so the next poll starts
from the event's initial position.`,
	Args: cobra.ExactArgs(2),
	RunE: runPoll,
}

func init() {
	pollCmd.Flags().BoolVar(&pollReset, "reset", false, "forget the stored cursor instead of polling")
	rootCmd.AddCommand(pollCmd)
}

func runPoll(cmd *cobra.Command, args []string) error {
	poll := svc().Poll
	if poll == nil {
		return errors.New("poll service not configured")
	}

	connectorID, path := args[0], args[1]
	if pollReset {
		if err := poll.Reset(cmd.Context(), connectorID, path); err != nil {
			return fmt.Errorf("reset failed: %w", err)
		}
		cmd.Printf("Cursor reset for %s/%s\n", connectorID, domain.ParsePath(path))
		return nil
	}

	payloads, err := poll.Poll(cmd.Context(), connectorID, path)
	if err != nil {
		return fmt.Errorf("poll failed: %w", err)
	}
	if payloads == nil {
		payloads = []domain.Payload{}
	}
	return printJSON(cmd, payloads)
}
