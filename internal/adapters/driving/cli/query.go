package cli

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/hub/internal/core/domain"
)

var (
	queryFilters  []string
	queryPage     int
	queryPageSize int
)

var queryCmd = &cobra.Command{
	Use:   "query <connector> <path>",
	Short: "List records of an entity set",
	Long: `Lists one page of the entity set at path.

Filters are given as repeated key=value pairs and must name properties of
the set. Blank values are ignored.`,
	Example: `  hub query crm contacts --filter email=jane@example.com
  hub query crm contacts --page 2 --page-size 50`,
	Args: cobra.ExactArgs(2),
	RunE: runQuery,
}

func init() {
	queryCmd.Flags().StringArrayVarP(&queryFilters, "filter", "f", nil, "filter as key=value (repeatable)")
	queryCmd.Flags().IntVar(&queryPage, "page", 1, "page number, starting at 1")
	queryCmd.Flags().IntVar(&queryPageSize, "page-size", 0, "records per page (0 = connector default)")
	rootCmd.AddCommand(queryCmd)
}

func runQuery(cmd *cobra.Command, args []string) error {
	query := svc().Query
	if query == nil {
		return errors.New("query service not configured")
	}
	if queryPage < 1 {
		return errors.New("--page must be at least 1")
	}
	if queryPageSize < 0 {
		return errors.New("--page-size must not be negative")
	}

	filter, err := parseKeyValues(queryFilters)
	if err != nil {
		return err
	}

	connectorID, path := args[0], args[1]
	pageRef := func(_ domain.Path, page int) string {
		return strconv.Itoa(page)
	}
	opts := domain.ListOptions{Page: queryPage, PageSize: queryPageSize}

	page, err := query.Query(cmd.Context(), connectorID, path, filter, opts, currentUser(), pageRef)
	if err != nil {
		return fmt.Errorf("query failed: %w", err)
	}
	return printJSON(cmd, page)
}
