package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/morphlang/morphc/internal/linter"
	"github.com/morphlang/morphc/internal/parser"
)

// lintCmd represents the lint command.
var lintCmd = newLintCmd()

func newLintCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "lint <file.morph>",
		Short: "Report style and hygiene warnings",
		Long: `Run lint rules over a visitor module: naming conventions, empty
bodies, unused bindings, needless mutability, and unreachable match
arms. Lint findings are warnings and never fail the build.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			filePath := args[0]

			source, err := os.ReadFile(filePath)
			if err != nil {
				return fmt.Errorf("failed to read %s: %w", filePath, err)
			}

			p := parser.New(string(source))
			prog := p.Parse()
			if p.Diagnostics().HasErrors() {
				cmd.PrintErr(p.Diagnostics().Format(filePath))
				return fmt.Errorf("cannot lint %s: parse errors", filePath)
			}

			diag := linter.Lint(prog)
			if diag.Count() == 0 {
				cmd.Println("No lint warnings.")
				return nil
			}

			cmd.Print(diag.Format(filePath))
			cmd.Printf("\n%d warning(s) found.\n", diag.Count())
			return nil
		},
	}
}

func init() {
	rootCmd.AddCommand(lintCmd)
}
