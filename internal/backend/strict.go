package backend

import (
	"github.com/morphlang/morphc/internal/ast"
	"github.com/morphlang/morphc/internal/checker"
	"github.com/morphlang/morphc/internal/decorate"
	"github.com/morphlang/morphc/internal/rustbe"
)

// StrictBackend wraps the rustbe emitter as a Backend implementation.
type StrictBackend struct{}

// Name returns the target name.
func (b *StrictBackend) Name() string {
	return "strict"
}

// FileExt returns the output file extension.
func (b *StrictBackend) FileExt() string {
	return ".rs"
}

// Generate produces Rust source for a single checked program.
func (b *StrictBackend) Generate(prog *ast.Program, result *checker.CheckResult, plan *decorate.Plan) string {
	return rustbe.Generate(prog, result, plan)
}

// GenerateAll produces Rust source for a multi-file project.
func (b *StrictBackend) GenerateAll(registry map[string]*ast.Program, sortedPaths []string, result *checker.CheckAllResult, plan *decorate.Plan) string {
	return rustbe.GenerateAll(registry, sortedPaths, result, plan)
}
