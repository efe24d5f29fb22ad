// Seed command loads the starter clinic dataset.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var seedForce bool

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load the starter dataset",
	Long: `Seed loads the built-in clinic fixtures: doctors, patients, policies,
appointments, and claims. A store that already holds patients is left
untouched unless --force clears the clinic collections first.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := openStore(cmd.Context())
		if err != nil {
			fmt.Fprintln(os.Stderr, "seed:", err)
			os.Exit(exitSysError)
		}
		defer st.Close()

		n, err := st.Seed(cmd.Context(), seedForce)
		if err != nil {
			fmt.Fprintln(os.Stderr, "seed:", err)
			os.Exit(exitSysError)
		}
		if n == 0 {
			fmt.Println("Seed skipped: store already has data (use --force to reseed)")
			return nil
		}
		fmt.Printf("Seeded %d documents\n", n)
		return nil
	},
}

func init() {
	seedCmd.Flags().BoolVar(&seedForce, "force", false, "clear clinic collections before seeding")
}
