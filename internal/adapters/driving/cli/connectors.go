package cli

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/custodia-labs/hub/internal/core/domain"
)

var connectorsJSON bool

var connectorsCmd = &cobra.Command{
	Use:     "connectors",
	Aliases: []string{"connector"},
	Short:   "Inspect configured connectors",
}

var connectorsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List connectors visible to the user",
	Args:  cobra.NoArgs,
	RunE:  runConnectorsList,
}

var connectorsKindsCmd = &cobra.Command{
	Use:   "kinds",
	Short: "List supported connector kinds",
	Args:  cobra.NoArgs,
	RunE:  runConnectorsKinds,
}

var connectorsTokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Generate a secret token for inbound notifications",
	Long: `Prints a new random token. Set it as secret_token on a connector in
config.toml to accept notifications for that connector.`,
	Args:        cobra.NoArgs,
	Annotations: map[string]string{skipBootstrap: "true"},
	Run: func(cmd *cobra.Command, _ []string) {
		cmd.Println(uuid.NewString())
	},
}

func init() {
	connectorsListCmd.Flags().BoolVar(&connectorsJSON, "json", false, "output as JSON")
	connectorsCmd.AddCommand(connectorsListCmd)
	connectorsCmd.AddCommand(connectorsKindsCmd)
	connectorsCmd.AddCommand(connectorsTokenCmd)
	rootCmd.AddCommand(connectorsCmd)
}

// connectorView is the printable form of a connector.
type connectorView struct {
	ID     string `json:"id"`
	Kind   string `json:"kind"`
	Name   string `json:"name"`
	Owner  string `json:"owner,omitempty"`
	Shared bool   `json:"shared"`
}

func runConnectorsList(cmd *cobra.Command, _ []string) error {
	connectors := svc().Connectors
	if connectors == nil {
		return errors.New("connector service not configured")
	}

	list, err := connectors.List(cmd.Context(), currentUser())
	if err != nil {
		return fmt.Errorf("failed to list connectors: %w", err)
	}

	views := make([]connectorView, 0, len(list))
	for i := range list {
		views = append(views, viewOf(&list[i]))
	}

	if connectorsJSON {
		return printJSON(cmd, views)
	}
	if len(views) == 0 {
		cmd.Println("No connectors configured.")
		return nil
	}

	table := newTable(cmd, "ID", "KIND", "NAME", "OWNER", "SHARED")
	for _, v := range views {
		table.Append([]string{v.ID, v.Kind, v.Name, v.Owner, strconv.FormatBool(v.Shared)})
	}
	table.Render()
	return nil
}

func viewOf(c *domain.Connector) connectorView {
	return connectorView{
		ID:     c.ID,
		Kind:   c.Kind,
		Name:   c.Name,
		Owner:  c.OwnerEmail,
		Shared: c.Shared,
	}
}

func runConnectorsKinds(cmd *cobra.Command, _ []string) error {
	connectors := svc().Connectors
	if connectors == nil {
		return errors.New("connector service not configured")
	}
	for _, kind := range connectors.Kinds() {
		cmd.Println(kind)
	}
	return nil
}
