package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/hub/internal/core/domain"
)

var reflectCmd = &cobra.Command{
	Use:   "reflect <connector> [path]",
	Short: "Describe a connector node",
	Long: `Reflects the node at path under a connector and prints its descriptor.

Without a path the connector root is described. Links to other nodes are
printed as "<connector>/<path>" references that can be passed back to
reflect.`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runReflect,
}

func init() {
	rootCmd.AddCommand(reflectCmd)
}

func runReflect(cmd *cobra.Command, args []string) error {
	reflect := svc().Reflect
	if reflect == nil {
		return errors.New("reflect service not configured")
	}

	connectorID, path := nodeArgs(args)
	desc, err := reflect.Reflect(cmd.Context(), connectorID, path, currentUser(), nodeRef(connectorID))
	if err != nil {
		return fmt.Errorf("reflect failed: %w", err)
	}
	return printJSON(cmd, desc)
}

// nodeArgs splits "<connector> [path]" arguments.
func nodeArgs(args []string) (connectorID, path string) {
	connectorID = args[0]
	if len(args) > 1 {
		path = args[1]
	}
	return connectorID, path
}

// nodeRef builds the command line reference of a node.
func nodeRef(connectorID string) domain.URLBuilder {
	return func(p domain.Path) string {
		if p.IsRoot() {
			return connectorID
		}
		return connectorID + "/" + p.String()
	}
}
