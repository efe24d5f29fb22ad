// Get command fetches one document by id.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var getCmd = &cobra.Command{
	Use:   "get <collection> <id>",
	Short: "Fetch a document by id",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		collection := args[0]
		id := args[1]

		st, err := openStore(cmd.Context())
		if err != nil {
			fmt.Fprintln(os.Stderr, "get:", err)
			os.Exit(exitSysError)
		}
		defer st.Close()

		doc, err := st.Get(cmd.Context(), collection, id)
		if err != nil {
			fmt.Fprintln(os.Stderr, "get document:", err)
			os.Exit(exitSysError)
		}
		if doc == nil {
			fmt.Fprintf(os.Stderr, "document %q not found in %q\n", id, collection)
			os.Exit(exitUserError)
		}

		return printJSON(doc)
	},
}
