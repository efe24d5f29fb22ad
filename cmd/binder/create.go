// Create command validates and writes a new document.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/chartstore/pkg/types"
)

var createCmd = &cobra.Command{
	Use:   "create <collection> <json>",
	Short: "Create a document after validation",
	Long: `Create validates the document against the collection schema, the
unique and reference constraints, and the clinic business rules, then
writes it. Omit the id to have one generated.

Example:
  binder create patients '{"firstName":"Ana","lastName":"Diaz","dateOfBirth":"1987-04-12","mrn":"MRN-2001"}'`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		collection := args[0]

		doc, err := parseDocumentArg(args[1])
		if err != nil {
			fmt.Fprintln(os.Stderr, "create:", err)
			os.Exit(exitUserError)
		}

		st, err := openStore(cmd.Context())
		if err != nil {
			fmt.Fprintln(os.Stderr, "create:", err)
			os.Exit(exitSysError)
		}
		defer st.Close()

		created, err := st.Create(cmd.Context(), collection, doc)
		if err != nil {
			if errors.Is(err, types.ErrSchemaNotFound) {
				fmt.Fprintf(os.Stderr, "unknown collection %q (valid: %s)\n", collection, validCollectionsStr)
				os.Exit(exitUserError)
			}
			if _, ok := types.IsValidation(err); ok {
				fmt.Fprintln(os.Stderr, "create rejected:", err)
				os.Exit(exitUserError)
			}
			if _, ok := types.IsIntegrity(err); ok {
				fmt.Fprintln(os.Stderr, "create rejected:", err)
				os.Exit(exitUserError)
			}
			fmt.Fprintln(os.Stderr, "create document:", err)
			os.Exit(exitSysError)
		}

		if flagJSON {
			return printJSON(created)
		}
		fmt.Printf("Created %s/%s\n", collection, created.ID())
		return nil
	},
}
