package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/morphlang/morphc/internal/formatter"
	"github.com/morphlang/morphc/internal/parser"
)

var fmtWriteFlag bool

// fmtCmd represents the fmt command.
var fmtCmd = newFmtCmd()

func newFmtCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fmt <file.morph> [files...]",
		Short: "Format visitor modules canonically",
		Long: `Rewrite Morph source into canonical form: four-space indents,
normalized spacing, and declarations ordered as structs, enums,
functions, visitors.

By default the formatted source is printed to stdout; with --write the
files are updated in place.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, filePath := range args {
				if err := formatFile(cmd, filePath, fmtWriteFlag); err != nil {
					return err
				}
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&fmtWriteFlag, "write", "w", false, "write result back to the source file instead of stdout")

	return cmd
}

func init() {
	rootCmd.AddCommand(fmtCmd)
}

func formatFile(cmd *cobra.Command, filePath string, write bool) error {
	source, err := os.ReadFile(filePath)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", filePath, err)
	}

	p := parser.New(string(source))
	prog := p.Parse()
	if p.Diagnostics().HasErrors() {
		cmd.PrintErr(p.Diagnostics().Format(filePath))
		return fmt.Errorf("cannot format %s: parse errors", filePath)
	}

	formatted := formatter.Format(prog)
	if !write {
		cmd.Print(formatted)
		return nil
	}

	if formatted == string(source) {
		return nil
	}
	if err := os.WriteFile(filePath, []byte(formatted), 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", filePath, err)
	}
	cmd.Printf("Formatted %s\n", filePath)
	return nil
}
