package cli

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var (
	queueLimit int
	queueJSON  bool
)

var queueCmd = &cobra.Command{
	Use:   "queue",
	Short: "Inspect queued notifications",
	Long: `Notifications received through notify, and payloads produced by scheduled
polls, wait in the queue until they are acknowledged.`,
}

var queueListCmd = &cobra.Command{
	Use:   "list",
	Short: "List pending notifications, oldest first",
	Args:  cobra.NoArgs,
	RunE:  runQueueList,
}

var queueAckCmd = &cobra.Command{
	Use:   "ack <id>...",
	Short: "Acknowledge delivered notifications",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runQueueAck,
}

func init() {
	queueListCmd.Flags().IntVarP(&queueLimit, "limit", "n", 20, "maximum number of messages")
	queueListCmd.Flags().BoolVar(&queueJSON, "json", false, "output as JSON, including payloads")
	queueCmd.AddCommand(queueListCmd)
	queueCmd.AddCommand(queueAckCmd)
	rootCmd.AddCommand(queueCmd)
}

func runQueueList(cmd *cobra.Command, _ []string) error {
	queue := svc().Queue
	if queue == nil {
		return errors.New("queue service not configured")
	}

	messages, err := queue.Pending(cmd.Context(), queueLimit)
	if err != nil {
		return fmt.Errorf("failed to list queue: %w", err)
	}

	if queueJSON {
		return printJSON(cmd, messages)
	}
	if len(messages) == 0 {
		cmd.Println("Queue is empty.")
		return nil
	}

	table := newTable(cmd, "ID", "CONNECTOR", "PATH", "RECEIVED", "SIZE")
	for i := range messages {
		m := &messages[i]
		table.Append([]string{
			m.ID,
			m.ConnectorID,
			m.Path,
			m.ReceivedAt.Local().Format(time.DateTime),
			fmt.Sprintf("%dB", len(m.Payload)),
		})
	}
	table.Render()
	return nil
}

func runQueueAck(cmd *cobra.Command, args []string) error {
	queue := svc().Queue
	if queue == nil {
		return errors.New("queue service not configured")
	}

	var errs []error
	for _, id := range args {
		if err := queue.Ack(cmd.Context(), id); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", id, err))
			continue
		}
		cmd.Printf("Acknowledged %s\n", id)
	}
	return errors.Join(errs...)
}
