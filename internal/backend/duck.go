package backend

import (
	"github.com/morphlang/morphc/internal/ast"
	"github.com/morphlang/morphc/internal/checker"
	"github.com/morphlang/morphc/internal/decorate"
	"github.com/morphlang/morphc/internal/jsbe"
)

// DuckBackend wraps the jsbe emitter as a Backend implementation.
type DuckBackend struct{}

// Name returns the target name.
func (b *DuckBackend) Name() string {
	return "duck"
}

// FileExt returns the output file extension.
func (b *DuckBackend) FileExt() string {
	return ".js"
}

// Generate produces JavaScript source for a single checked program.
func (b *DuckBackend) Generate(prog *ast.Program, result *checker.CheckResult, plan *decorate.Plan) string {
	return jsbe.Generate(prog, result, plan)
}

// GenerateAll produces JavaScript source for a multi-file project.
func (b *DuckBackend) GenerateAll(registry map[string]*ast.Program, sortedPaths []string, result *checker.CheckAllResult, plan *decorate.Plan) string {
	return jsbe.GenerateAll(registry, sortedPaths, result, plan)
}
