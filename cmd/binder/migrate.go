// Migrate command reports schema state and drives rollbacks.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var migrateRollback string

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply pending migrations or roll back to a version",
	Long: `Migrate opens the store, which applies every pending migration, and
reports the resulting schema version. With --rollback the store is then
reverted to the target version; the next open migrates forward again.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := openStore(cmd.Context())
		if err != nil {
			fmt.Fprintln(os.Stderr, "migrate:", err)
			os.Exit(exitSysError)
		}
		defer st.Close()

		if migrateRollback != "" {
			reverted, err := st.Rollback(cmd.Context(), migrateRollback)
			if err != nil {
				fmt.Fprintln(os.Stderr, "rollback:", err)
				os.Exit(exitSysError)
			}
			fmt.Printf("Rolled back %d migrations to %s\n", reverted, migrateRollback)
			return nil
		}

		md, err := st.Stats(cmd.Context())
		if err != nil {
			fmt.Fprintln(os.Stderr, "read metadata:", err)
			os.Exit(exitSysError)
		}
		if flagJSON {
			return printJSON(md)
		}
		if md.LastMigration == "" {
			fmt.Println("No migrations applied")
			return nil
		}
		fmt.Println("Migrations current at", md.LastMigration)
		return nil
	},
}

func init() {
	migrateCmd.Flags().StringVar(&migrateRollback, "rollback", "", "revert migrations down to this version")
}
