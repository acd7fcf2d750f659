package cli

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/morphlang/morphc/internal/compiler"
)

var buildTargetFlag string
var buildOutputFlag string

const buildLongDescription = `Compile a Morph visitor module to target source.

Targets:
  duck      emit a JavaScript visitor module over a duck-typed tree
  strict    emit Rust visitor functions over a strict sum-type tree

When the entry file contains import declarations the compiler discovers
all imported files, performs cross-file checking, and emits a single
output covering every module in dependency order.`

// buildCmd represents the build command.
var buildCmd = newBuildCmd()

func newBuildCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "build <file.morph>",
		Short: "Compile a visitor module",
		Long:  buildLongDescription,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			filePath := args[0]
			target := viper.GetString(targetConfigKey)
			baseName := outputBaseName(filePath, viper.GetString(outputConfigKey))

			tables, err := loadSchema()
			if err != nil {
				return fmt.Errorf("failed to load schema: %w", err)
			}

			isMulti, err := compiler.IsMultiFile(filePath)
			if err != nil {
				return fmt.Errorf("failed to read %s: %w", filePath, err)
			}

			slog.Debug("building", "file", filePath, "target", target, "multi", isMulti)

			var outPath string
			if isMulti {
				outPath, err = compiler.EmitProject(filePath, target, baseName, tables)
			} else {
				source, readErr := os.ReadFile(filePath)
				if readErr != nil {
					return fmt.Errorf("failed to read %s: %w", filePath, readErr)
				}
				outPath, err = compiler.Emit(string(source), target, baseName, tables)
			}
			if err != nil {
				return err
			}

			cmd.Printf("Wrote %s\n", outPath)
			return nil
		},
	}

	configureBuildFlags(cmd)

	return cmd
}

func init() {
	rootCmd.AddCommand(buildCmd)
}

func configureBuildFlags(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&buildTargetFlag, targetFlagName, "t", viper.GetString(targetConfigKey), "output target: duck or strict")
	bindFlagToConfig(cmd.Flags().Lookup(targetFlagName), targetConfigKey)

	cmd.Flags().StringVarP(&buildOutputFlag, outputFlagName, "o", viper.GetString(outputConfigKey), "output base path (extension added per target)")
	bindFlagToConfig(cmd.Flags().Lookup(outputFlagName), outputConfigKey)
}

// outputBaseName derives the output path without extension: an explicit
// --output wins, otherwise the input file name with its extension
// stripped.
func outputBaseName(filePath, output string) string {
	if output != "" {
		return strings.TrimSuffix(output, filepath.Ext(output))
	}
	return strings.TrimSuffix(filepath.Base(filePath), filepath.Ext(filePath))
}
