// Delete command removes a document, honoring reference constraints.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/chartstore/pkg/types"
)

var deleteCmd = &cobra.Command{
	Use:   "delete <collection> <id>",
	Short: "Delete a document by id",
	Long: `Delete removes the document. Deletes blocked by referencing documents
fail; cascade and set-null constraints fan out to the dependents first.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		collection := args[0]
		id := args[1]

		st, err := openStore(cmd.Context())
		if err != nil {
			fmt.Fprintln(os.Stderr, "delete:", err)
			os.Exit(exitSysError)
		}
		defer st.Close()

		ok, err := st.Delete(cmd.Context(), collection, id)
		if err != nil {
			if _, isIntegrity := types.IsIntegrity(err); isIntegrity {
				fmt.Fprintln(os.Stderr, "delete blocked:", err)
				os.Exit(exitUserError)
			}
			fmt.Fprintln(os.Stderr, "delete document:", err)
			os.Exit(exitSysError)
		}
		if !ok {
			fmt.Fprintf(os.Stderr, "document %q not found in %q\n", id, collection)
			os.Exit(exitUserError)
		}

		fmt.Printf("Deleted %s/%s\n", collection, id)
		return nil
	},
}
