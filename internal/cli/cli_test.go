package cli

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleVisitor = `module demo version "1.0.0";

visitor renameFoo on Identifier(node) {
    if node.text == "foo" {
        replace node = Identifier{text: "bar"};
    }
}
`

func writeSample(t *testing.T, name, source string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(source), 0644))
	return path
}

func runCmd(t *testing.T, cmd *cobra.Command, args ...string) (string, string, error) {
	t.Helper()
	out := &bytes.Buffer{}
	errOut := &bytes.Buffer{}
	cmd.SetOut(out)
	cmd.SetErr(errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), errOut.String(), err
}

func TestNewRootCmd(t *testing.T) {
	cmd := baseRootCmd()
	assert.Equal(t, "morphc", cmd.Use)
	assert.NotEmpty(t, cmd.Short)
	assert.Equal(t, rootLongDescription, cmd.Long)
}

func TestVersionCmd_Output(t *testing.T) {
	out, _, err := runCmd(t, newVersionCmd())
	require.NoError(t, err)

	if assert.NotEmpty(t, out) {
		assert.True(t,
			bytes.Contains([]byte(out), []byte("tool version")) ||
				bytes.Contains([]byte(out), []byte("version: unknown")))
	}
}

func TestCheckCmd_CleanFile(t *testing.T) {
	path := writeSample(t, "clean.morph", sampleVisitor)

	out, _, err := runCmd(t, newCheckCmd(), path)
	require.NoError(t, err)
	assert.Contains(t, out, "No errors found.")
}

func TestCheckCmd_ReportsErrors(t *testing.T) {
	path := writeSample(t, "bad.morph", `module demo version "1.0.0";

visitor broken on Identifier(node) {
    let x: Int = "seven";
}
`)

	_, errOut, err := runCmd(t, newCheckCmd(), path)
	require.Error(t, err)
	assert.NotEmpty(t, errOut)
}

func TestLintCmd_ReportsWarnings(t *testing.T) {
	path := writeSample(t, "sloppy.morph", `module demo version "1.0.0";

function Empty_Thing() {
}
`)

	out, _, err := runCmd(t, newLintCmd(), path)
	require.NoError(t, err, "lint findings must not fail the command")
	assert.Contains(t, out, "warning(s) found")
}

func TestLintCmd_CleanFile(t *testing.T) {
	path := writeSample(t, "clean.morph", sampleVisitor)

	out, _, err := runCmd(t, newLintCmd(), path)
	require.NoError(t, err)
	assert.Contains(t, out, "No lint warnings.")
}

func TestFmtCmd_PrintsCanonicalForm(t *testing.T) {
	path := writeSample(t, "messy.morph", `module demo version "1.0.0";
visitor renameFoo on Identifier(node) { if node.text=="foo" { replace node = Identifier{text:"bar"}; } }
`)

	out, _, err := runCmd(t, newFmtCmd(), path)
	require.NoError(t, err)
	assert.Contains(t, out, "    if node.text == \"foo\" {")
}

func TestFmtCmd_WriteInPlace(t *testing.T) {
	path := writeSample(t, "messy.morph", `module demo version "1.0.0";
visitor renameFoo on Identifier(node) { replace node = Identifier{text:"bar"}; }
`)

	fmtWriteFlag = true
	defer func() { fmtWriteFlag = false }()

	_, _, err := runCmd(t, newFmtCmd(), "--write", path)
	require.NoError(t, err)

	updated, readErr := os.ReadFile(path)
	require.NoError(t, readErr)
	assert.Contains(t, string(updated), "    replace node = Identifier{text: \"bar\"};")
}

func TestOutputBaseName(t *testing.T) {
	tests := []struct {
		name     string
		filePath string
		output   string
		want     string
	}{
		{"derives from input", "visitors/rename.morph", "", "rename"},
		{"explicit output wins", "rename.morph", "out/mod", "out/mod"},
		{"strips output extension", "rename.morph", "mod.js", "mod"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, outputBaseName(tt.filePath, tt.output))
		})
	}
}

func TestParseSlogLevel(t *testing.T) {
	tests := []struct {
		name  string
		value string
		want  slog.Level
	}{
		{"empty uses default", "", slog.LevelWarn},
		{"debug", "debug", slog.LevelDebug},
		{"info", "info", slog.LevelInfo},
		{"warning alias", "warning", slog.LevelWarn},
		{"error", "Error", slog.LevelError},
		{"numeric", "-4", slog.LevelDebug},
		{"garbage uses default", "loud", slog.LevelWarn},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, parseSlogLevel(tt.value, slog.LevelWarn))
		})
	}
}
