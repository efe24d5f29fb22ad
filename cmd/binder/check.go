// Check command scans for dangling references.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var checkCmd = &cobra.Command{
	Use:   "check [collection...]",
	Short: "Report documents whose references point nowhere",
	Long: `Check scans reference fields for targets that no longer exist, such
as an appointment whose patient was removed outside the validator. With
collection arguments only those collections are scanned. Findings are
reported but never repaired; the exit code is 1 when any are found.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := openStore(cmd.Context())
		if err != nil {
			fmt.Fprintln(os.Stderr, "check:", err)
			os.Exit(exitSysError)
		}
		defer st.Close()

		orphans, err := st.IntegrityReport(cmd.Context(), args...)
		if err != nil {
			fmt.Fprintln(os.Stderr, "integrity scan:", err)
			os.Exit(exitSysError)
		}

		if len(orphans) == 0 {
			fmt.Println("No dangling references found")
			return nil
		}

		if flagJSON {
			if err := printJSON(orphans); err != nil {
				return err
			}
		} else {
			for _, o := range orphans {
				fmt.Printf("%s/%s: %s -> %s (missing in %s)\n",
					o.Collection, o.DocumentID, o.Field, o.MissingID, o.Target)
			}
		}
		os.Exit(exitUserError)
		return nil
	},
}
