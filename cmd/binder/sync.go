// Sync command runs one sync pass against the configured remote.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/chartstore/pkg/types"
)

var syncPing bool

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Push and pull changes with the remote",
	Long: `Sync pushes queued local changes to the configured remote and pulls
remote changes back, resolving conflicts per the configured policy.
Requires sync.enabled and sync.endpoint in config.yaml.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := openStore(cmd.Context())
		if err != nil {
			fmt.Fprintln(os.Stderr, "sync:", err)
			os.Exit(exitSysError)
		}
		defer st.Close()

		if syncPing {
			if err := st.Ping(cmd.Context()); err != nil {
				if errors.Is(err, types.ErrSyncDisabled) {
					fmt.Fprintln(os.Stderr, "sync is not enabled (set sync.enabled in config.yaml)")
					os.Exit(exitUserError)
				}
				fmt.Fprintln(os.Stderr, "ping:", err)
				os.Exit(exitSysError)
			}
			fmt.Println("Sync remote is reachable")
			return nil
		}

		report, err := st.Sync(cmd.Context())
		if err != nil {
			if errors.Is(err, types.ErrSyncDisabled) {
				fmt.Fprintln(os.Stderr, "sync is not enabled (set sync.enabled in config.yaml)")
				os.Exit(exitUserError)
			}
			fmt.Fprintln(os.Stderr, "sync:", err)
			os.Exit(exitSysError)
		}

		if flagJSON {
			return printJSON(report)
		}
		fmt.Printf("Pushed %d (failed %d), pulled %d, applied %d\n",
			report.Pushed, report.Failed, report.Pulled, report.Applied)
		return nil
	},
}

func init() {
	syncCmd.Flags().BoolVar(&syncPing, "ping", false, "probe the remote instead of syncing")
}
