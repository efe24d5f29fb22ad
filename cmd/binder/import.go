// Import command loads a JSON bundle into the store.
package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/chartstore/pkg/types"
)

var importMerge bool

var importCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Load a JSON snapshot into the store",
	Long: `Import loads a bundle produced by export. By default each collection
in the bundle replaces the stored one; --merge upserts bundle documents
into the existing data instead.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := args[0]

		data, err := os.ReadFile(path)
		if err != nil {
			fmt.Fprintln(os.Stderr, "read bundle:", err)
			os.Exit(exitUserError)
		}
		var bundle types.Bundle
		if err := json.Unmarshal(data, &bundle); err != nil {
			fmt.Fprintln(os.Stderr, "parse bundle:", err)
			os.Exit(exitUserError)
		}

		st, err := openStore(cmd.Context())
		if err != nil {
			fmt.Fprintln(os.Stderr, "import:", err)
			os.Exit(exitSysError)
		}
		defer st.Close()

		if err := st.Import(cmd.Context(), &bundle, importMerge); err != nil {
			fmt.Fprintln(os.Stderr, "import bundle:", err)
			os.Exit(exitSysError)
		}

		total := 0
		for _, docs := range bundle.Collections {
			total += len(docs)
		}
		mode := "replace"
		if importMerge {
			mode = "merge"
		}
		fmt.Printf("Imported %d documents from %s (%s mode)\n", total, path, mode)
		return nil
	},
}

func init() {
	importCmd.Flags().BoolVar(&importMerge, "merge", false, "upsert into existing data instead of replacing")
}
