package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var (
	dataProperties     string
	dataKeys           string
	dataCreateOrUpdate bool
)

var dataCmd = &cobra.Command{
	Use:   "data",
	Short: "Write records into entity sets",
	Long:  `Commands that insert and update records through an entity set's actions.`,
}

var dataInsertCmd = &cobra.Command{
	Use:   "insert <connector> <path>",
	Short: "Insert a record",
	Example: `  hub data insert crm contacts --properties '{"email":"jane@example.com"}'`,
	Args:    cobra.ExactArgs(2),
	RunE:    runDataInsert,
}

var dataUpdateCmd = &cobra.Command{
	Use:   "update <connector> <path>",
	Short: "Update records matching keys",
	Long: `Sets properties on every record of the entity set whose key properties
match --keys. With --create-or-update a record is inserted when nothing
matched.`,
	Example: `  hub data update crm contacts --keys '{"email":"jane@example.com"}' --properties '{"name":"Jane"}'`,
	Args:    cobra.ExactArgs(2),
	RunE:    runDataUpdate,
}

func init() {
	for _, c := range []*cobra.Command{dataInsertCmd, dataUpdateCmd} {
		c.Flags().StringVarP(&dataProperties, "properties", "p", "", "record properties as a JSON object")
	}
	dataUpdateCmd.Flags().StringVarP(&dataKeys, "keys", "k", "", "key properties as a JSON object")
	dataUpdateCmd.Flags().BoolVar(&dataCreateOrUpdate, "create-or-update", false, "insert when no record matches")

	dataCmd.AddCommand(dataInsertCmd)
	dataCmd.AddCommand(dataUpdateCmd)
	rootCmd.AddCommand(dataCmd)
}

func runDataInsert(cmd *cobra.Command, args []string) error {
	data := svc().Data
	if data == nil {
		return errors.New("data service not configured")
	}

	properties, err := parseObject(cmd, "properties", dataProperties)
	if err != nil {
		return err
	}

	result, err := data.Insert(cmd.Context(), args[0], args[1], properties, currentUser())
	if err != nil {
		return fmt.Errorf("insert failed: %w", err)
	}
	return printJSON(cmd, result)
}

func runDataUpdate(cmd *cobra.Command, args []string) error {
	data := svc().Data
	if data == nil {
		return errors.New("data service not configured")
	}

	keys, err := parseObject(cmd, "keys", dataKeys)
	if err != nil {
		return err
	}
	properties, err := parseObject(cmd, "properties", dataProperties)
	if err != nil {
		return err
	}

	result, err := data.Update(cmd.Context(), args[0], args[1], keys, properties, dataCreateOrUpdate, currentUser())
	if err != nil {
		return fmt.Errorf("update failed: %w", err)
	}
	return printJSON(cmd, result)
}
