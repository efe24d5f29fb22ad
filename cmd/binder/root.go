// Root command: global flags, config loading, and directory resolution.
package main

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/mesh-intelligence/chartstore/internal/paths"
	"github.com/mesh-intelligence/chartstore/pkg/chartstore"
)

// Exit codes: 1 for caller mistakes, 2 for environment failures.
const (
	exitSuccess   = 0
	exitUserError = 1
	exitSysError  = 2
)

// Global flag values.
var (
	flagConfigDir string
	flagDataDir   string
	flagJSON      bool
	flagVerbose   bool
)

// cfgFile holds the parsed config.yaml. Set by PersistentPreRunE so every
// subcommand can read it.
var cfgFile *viper.Viper

var rootCmd = &cobra.Command{
	Use:          "binder",
	Short:        "Binder is a local-first practice record store",
	Version:      chartstore.Version,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		configDir, err := resolveConfigDir()
		if err != nil {
			return err
		}
		cfgFile, err = loadConfig(configDir)
		return err
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfigDir, "config-dir", "", "configuration directory (default: platform config dir)")
	rootCmd.PersistentFlags().StringVar(&flagDataDir, "data-dir", "", "data directory (default: $(CWD)/"+paths.DefaultDataDirName+")")
	rootCmd.PersistentFlags().BoolVar(&flagJSON, "json", false, "output as JSON")
	rootCmd.PersistentFlags().BoolVar(&flagVerbose, "verbose", false, "log engine activity to stderr")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(getCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(createCmd)
	rootCmd.AddCommand(updateCmd)
	rootCmd.AddCommand(deleteCmd)
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(seedCmd)
	rootCmd.AddCommand(syncCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(checkCmd)
}

// resolveConfigDir picks the configuration directory: --config-dir flag,
// then CHARTSTORE_CONFIG_DIR, then the platform default.
func resolveConfigDir() (string, error) {
	return paths.ResolveConfigDir(flagConfigDir)
}

// resolveDataDir picks the data directory: --data-dir flag, then the
// config.yaml data_dir, then CHARTSTORE_DATA_DIR, then the CWD default.
func resolveDataDir() (string, error) {
	configValue := ""
	if cfgFile != nil {
		configValue = cfgFile.GetString(cfgKeyDataDir)
	}
	return paths.ResolveDataDir(flagDataDir, configValue)
}
