package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var (
	notifyToken string
	notifyData  string
)

var notifyCmd = &cobra.Command{
	Use:   "notify <connector> <path>",
	Short: "Deliver an event notification",
	Long: `Delivers a notification for the event at path, as a connected system
would through the HTTP API. The token must match the connector's secret
token. The body is given inline, as @file or as - for stdin.`,
	Args: cobra.ExactArgs(2),
	RunE: runNotify,
}

func init() {
	notifyCmd.Flags().StringVarP(&notifyToken, "token", "t", "", "connector secret token")
	notifyCmd.Flags().StringVarP(&notifyData, "data", "d", "", "notification body")
	rootCmd.AddCommand(notifyCmd)
}

func runNotify(cmd *cobra.Command, args []string) error {
	notify := svc().Notify
	if notify == nil {
		return errors.New("notify service not configured")
	}

	body, err := readBody(cmd, notifyData)
	if err != nil {
		return fmt.Errorf("reading --data: %w", err)
	}

	msg, err := notify.Notify(cmd.Context(), args[0], args[1], notifyToken, body)
	if err != nil {
		return fmt.Errorf("notify failed: %w", err)
	}
	cmd.Printf("Queued notification %s\n", msg.ID)
	return nil
}
