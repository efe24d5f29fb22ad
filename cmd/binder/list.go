// List command queries documents from a collection with optional filters.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/chartstore/pkg/types"
)

var (
	listLimit   int
	listOffset  int
	listOrderBy string
	listDesc    bool
)

var listCmd = &cobra.Command{
	Use:   "list <collection> [filter...]",
	Short: "List documents with optional filters",
	Long: `List queries documents from the collection with optional filters.

Filters are key=value pairs; multiple filters are ANDed together. Values
parse as JSON when possible, so numbers and booleans compare as typed
values. Keys may use dot paths into nested fields.

Example:
  binder list patients
  binder list appointments status=scheduled
  binder list claims status=submitted amount=150.5
  binder list doctors address.city=Sacramento --order-by lastName`,
	Args: cobra.MinimumNArgs(1),
	RunE: runList,
}

func runList(cmd *cobra.Command, args []string) error {
	collection := args[0]

	filter, err := parseFilterArgs(args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, "list:", err)
		os.Exit(exitUserError)
	}

	st, err := openStore(cmd.Context())
	if err != nil {
		fmt.Fprintln(os.Stderr, "list:", err)
		os.Exit(exitSysError)
	}
	defer st.Close()

	order := types.Ascending
	if listDesc {
		order = types.Descending
	}
	result, err := st.Query(cmd.Context(), collection, types.QueryOptions{
		Where:   filter,
		OrderBy: listOrderBy,
		Order:   order,
		Limit:   listLimit,
		Offset:  listOffset,
	})
	if err != nil {
		fmt.Fprintln(os.Stderr, "query documents:", err)
		os.Exit(exitSysError)
	}

	if flagJSON {
		return printJSON(result)
	}
	if err := printJSON(result.Data); err != nil {
		return err
	}
	if result.Total > len(result.Data) {
		fmt.Fprintf(os.Stderr, "showing %d of %d documents (use --limit and --offset to page)\n",
			len(result.Data), result.Total)
	}
	return nil
}

func init() {
	listCmd.Flags().IntVar(&listLimit, "limit", 0, "page size (default "+fmt.Sprint(types.DefaultLimit)+")")
	listCmd.Flags().IntVar(&listOffset, "offset", 0, "documents to skip")
	listCmd.Flags().StringVar(&listOrderBy, "order-by", "", "field path to sort by")
	listCmd.Flags().BoolVar(&listDesc, "desc", false, "sort descending")
}
