package backend

import (
	"fmt"

	"github.com/morphlang/morphc/internal/ast"
	"github.com/morphlang/morphc/internal/checker"
	"github.com/morphlang/morphc/internal/decorate"
)

// Backend is the interface both code generation targets implement.
type Backend interface {
	// Name returns the target name ("duck" or "strict").
	Name() string
	// FileExt returns the output file extension including the dot.
	FileExt() string
	// Generate produces output source for a single checked program.
	Generate(prog *ast.Program, result *checker.CheckResult, plan *decorate.Plan) string
	// GenerateAll produces output for a multi-file project in
	// dependency order.
	GenerateAll(registry map[string]*ast.Program, sortedPaths []string, result *checker.CheckAllResult, plan *decorate.Plan) string
}

// ForTarget returns the backend for a target name.
func ForTarget(target string) (Backend, error) {
	switch target {
	case "duck", "js":
		return &DuckBackend{}, nil
	case "strict", "rust":
		return &StrictBackend{}, nil
	default:
		return nil, fmt.Errorf("unknown target: %s (want \"duck\" or \"strict\")", target)
	}
}
