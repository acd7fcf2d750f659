// Package cli provides the root command and CLI setup for morphc.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/morphlang/morphc/internal/schema"
)

// schemaPathFlag overrides the embedded node schema when set.
var schemaPathFlag string

// verboseFlag raises the log level to debug.
var verboseFlag bool

// logFileFlag overrides the log file path.
var logFileFlag string

const rootLongDescription = `Morphc compiles Morph visitor modules into tree transformation code
for two targets:

  duck      a dynamically tagged tree where nodes are plain objects
  strict    a statically typed tree built from sum types

The compiler type-checks visitors against the unified node schema,
enforces move/borrow ownership of node values, and lowers category
patterns through the schema's decoration tables before generating
target source.`

// rootCmd represents the base command when called without any subcommands.
var rootCmd = baseRootCmd()

func baseRootCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "morphc",
		Short: "Morph visitor compiler",
		Long:  rootLongDescription,
		PersistentPreRun: func(_ *cobra.Command, _ []string) {
			configureLogger(logFileFlag, verboseFlag)
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}
}

func init() {
	configureRootFlags(rootCmd)
}

func configureRootFlags(cmd *cobra.Command) {
	cmd.PersistentFlags().StringVar(&schemaPathFlag, schemaFlagName, viper.GetString(schemaConfigKey), "path to a node schema YAML file (default: embedded schema)")
	bindFlagToConfig(cmd.PersistentFlags().Lookup(schemaFlagName), schemaConfigKey)

	cmd.PersistentFlags().BoolVarP(&verboseFlag, verboseFlagName, "v", viper.GetBool(logVerboseKey), "enable debug logging")
	bindFlagToConfig(cmd.PersistentFlags().Lookup(verboseFlagName), logVerboseKey)

	cmd.PersistentFlags().StringVar(&logFileFlag, logFileFlagName, viper.GetString(logFilenameKey), "log file path")
	bindFlagToConfig(cmd.PersistentFlags().Lookup(logFileFlagName), logFilenameKey)
}

// bindFlagToConfig wires a Cobra flag to a Viper key so config/env values feed the flag.
func bindFlagToConfig(flag *pflag.Flag, key string) {
	if flag == nil {
		cobra.CheckErr(fmt.Errorf("flag for config key %q not found", key))
		return
	}

	cobra.CheckErr(viper.BindPFlag(key, flag))
}

// loadSchema resolves the node schema tables: an explicit --schema path
// wins, then a config value, then the embedded schema.
func loadSchema() (*schema.Tables, error) {
	path := viper.GetString(schemaConfigKey)
	if path == "" {
		return schema.Load()
	}
	return schema.LoadFile(path)
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}
