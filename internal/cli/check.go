package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/morphlang/morphc/internal/compiler"
	"github.com/morphlang/morphc/internal/diagnostic"
)

// checkCmd represents the check command.
var checkCmd = newCheckCmd()

func newCheckCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check <file.morph>",
		Short: "Type-check a visitor module without emitting output",
		Long: `Parse a visitor module, type-check it against the node schema,
run the ownership checker, and resolve pattern decorations. Reports
errors and warnings without generating target source.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			filePath := args[0]

			tables, err := loadSchema()
			if err != nil {
				return fmt.Errorf("failed to load schema: %w", err)
			}

			isMulti, err := compiler.IsMultiFile(filePath)
			if err != nil {
				return fmt.Errorf("failed to read %s: %w", filePath, err)
			}

			var diag *diagnostic.Diagnostics
			if isMulti {
				diag = compiler.CheckProject(filePath, tables)
			} else {
				source, readErr := os.ReadFile(filePath)
				if readErr != nil {
					return fmt.Errorf("failed to read %s: %w", filePath, readErr)
				}
				diag = compiler.Check(string(source), tables)
			}

			if diag.HasErrors() {
				cmd.PrintErr(diag.Format(filePath))
				return fmt.Errorf("%d error(s) found", diag.ErrorCount())
			}
			for _, d := range diag.All() {
				if d.Severity == diagnostic.Warning {
					cmd.Printf("%s:%d:%d: warning: %s\n", filePath, d.Line, d.Column, d.Message)
				}
			}

			cmd.Println("No errors found.")
			return nil
		},
	}
}

func init() {
	rootCmd.AddCommand(checkCmd)
}
