// Export command snapshots the full store as a JSON bundle.
package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var exportCmd = &cobra.Command{
	Use:   "export [file]",
	Short: "Write a full-store JSON snapshot",
	Long: `Export snapshots every collection plus store metadata as one JSON
bundle. With a file argument the bundle is written there, otherwise it
goes to stdout.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := openStore(cmd.Context())
		if err != nil {
			fmt.Fprintln(os.Stderr, "export:", err)
			os.Exit(exitSysError)
		}
		defer st.Close()

		bundle, err := st.Export(cmd.Context())
		if err != nil {
			fmt.Fprintln(os.Stderr, "export store:", err)
			os.Exit(exitSysError)
		}

		out, err := json.MarshalIndent(bundle, "", "  ")
		if err != nil {
			fmt.Fprintln(os.Stderr, "marshal bundle:", err)
			os.Exit(exitSysError)
		}

		if len(args) == 0 {
			fmt.Println(string(out))
			return nil
		}

		path := args[0]
		if err := os.WriteFile(path, append(out, '\n'), 0o644); err != nil {
			fmt.Fprintln(os.Stderr, "write bundle:", err)
			os.Exit(exitSysError)
		}

		total := 0
		for _, docs := range bundle.Collections {
			total += len(docs)
		}
		fmt.Printf("Exported %d documents to %s\n", total, path)
		return nil
	},
}
