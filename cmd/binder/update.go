// Update command applies a validated patch to one document.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/chartstore/pkg/types"
)

var updateCmd = &cobra.Command{
	Use:   "update <collection> <id> <json>",
	Short: "Merge a patch into a document after validation",
	Long: `Update merges the JSON patch into the stored document and validates
the result before writing. A null value clears the field; id and
createdAt never change.

Example:
  binder update appointments apt-0003 '{"status":"confirmed"}'`,
	Args: cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		collection := args[0]
		id := args[1]

		patch, err := parseDocumentArg(args[2])
		if err != nil {
			fmt.Fprintln(os.Stderr, "update:", err)
			os.Exit(exitUserError)
		}

		st, err := openStore(cmd.Context())
		if err != nil {
			fmt.Fprintln(os.Stderr, "update:", err)
			os.Exit(exitSysError)
		}
		defer st.Close()

		updated, err := st.Update(cmd.Context(), collection, id, patch)
		if err != nil {
			if errors.Is(err, types.ErrSchemaNotFound) {
				fmt.Fprintf(os.Stderr, "unknown collection %q (valid: %s)\n", collection, validCollectionsStr)
				os.Exit(exitUserError)
			}
			if _, ok := types.IsValidation(err); ok {
				fmt.Fprintln(os.Stderr, "update rejected:", err)
				os.Exit(exitUserError)
			}
			if _, ok := types.IsIntegrity(err); ok {
				fmt.Fprintln(os.Stderr, "update rejected:", err)
				os.Exit(exitUserError)
			}
			fmt.Fprintln(os.Stderr, "update document:", err)
			os.Exit(exitSysError)
		}
		if updated == nil {
			fmt.Fprintf(os.Stderr, "document %q not found in %q\n", id, collection)
			os.Exit(exitUserError)
		}

		if flagJSON {
			return printJSON(updated)
		}
		fmt.Printf("Updated %s/%s\n", collection, id)
		return nil
	},
}
