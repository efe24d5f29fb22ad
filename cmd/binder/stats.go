// Stats command reports collection counts and store metadata.
package main

import (
	"fmt"
	"os"
	"sort"

	"github.com/spf13/cobra"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show collection counts and store metadata",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := openStore(cmd.Context())
		if err != nil {
			fmt.Fprintln(os.Stderr, "stats:", err)
			os.Exit(exitSysError)
		}
		defer st.Close()

		md, err := st.Stats(cmd.Context())
		if err != nil {
			fmt.Fprintln(os.Stderr, "collect stats:", err)
			os.Exit(exitSysError)
		}

		if flagJSON {
			return printJSON(md)
		}

		names := make([]string, 0, len(md.Statistics))
		for name := range md.Statistics {
			names = append(names, name)
		}
		sort.Strings(names)

		total := 0
		for _, name := range names {
			fmt.Printf("%-14s %d\n", name, md.Statistics[name])
			total += md.Statistics[name]
		}
		fmt.Printf("%-14s %d\n", "total", total)
		if md.LastMigration != "" {
			fmt.Println("schema version:", md.LastMigration)
		}
		return nil
	},
}
