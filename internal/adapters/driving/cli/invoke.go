package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var invokeArgs string

var invokeCmd = &cobra.Command{
	Use:   "invoke <connector> <path>",
	Short: "Run a connector action",
	Long: `Validates the arguments against the action's schema and runs it.

Arguments are a JSON object given inline, as @file or as - for stdin.`,
	Example: `  hub invoke crm contacts/42/send_email --args '{"subject":"Hello"}'
  hub invoke crm contacts/42/send_email --args @args.json`,
	Args: cobra.ExactArgs(2),
	RunE: runInvoke,
}

func init() {
	invokeCmd.Flags().StringVarP(&invokeArgs, "args", "a", "", "action arguments as a JSON object")
	rootCmd.AddCommand(invokeCmd)
}

func runInvoke(cmd *cobra.Command, args []string) error {
	invoke := svc().Invoke
	if invoke == nil {
		return errors.New("invoke service not configured")
	}

	actionArgs, err := parseObject(cmd, "args", invokeArgs)
	if err != nil {
		return err
	}
	if actionArgs == nil {
		actionArgs = map[string]any{}
	}

	result, err := invoke.Invoke(cmd.Context(), args[0], args[1], actionArgs, currentUser())
	if err != nil {
		return fmt.Errorf("invoke failed: %w", err)
	}
	return printJSON(cmd, map[string]any{"result": result})
}
