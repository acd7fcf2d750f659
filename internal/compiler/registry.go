package compiler

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/morphlang/morphc/internal/ast"
	"github.com/morphlang/morphc/internal/diagnostic"
	"github.com/morphlang/morphc/internal/parser"
)

// ModuleRegistry holds the parsed modules of a project and their import
// graph. Imports resolve relative to the directory of the entry file;
// discovery is breadth-first from the entry, and ordering is a
// depth-first topological sort with cycle detection.
type ModuleRegistry struct {
	entryPath   string
	projectRoot string
	modules     map[string]*ast.Program // absolute path -> parsed AST
	imports     map[string][]string     // absolute path -> imported absolute paths
}

// NewModuleRegistry creates a registry rooted at the entry file.
func NewModuleRegistry(entryPath string) (*ModuleRegistry, error) {
	absPath, err := filepath.Abs(entryPath)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve entry path: %w", err)
	}
	return &ModuleRegistry{
		entryPath:   absPath,
		projectRoot: filepath.Dir(absPath),
		modules:     make(map[string]*ast.Program),
		imports:     make(map[string][]string),
	}, nil
}

// DiscoverDependencies walks the import graph from the entry file,
// parsing every reachable .morph file. Parse errors are collected per
// file in the diagnostics; a missing file is fatal and returned as an
// error.
func (r *ModuleRegistry) DiscoverDependencies() (*diagnostic.Diagnostics, error) {
	diag := diagnostic.New()
	seen := map[string]bool{r.entryPath: true}
	queue := []string{r.entryPath}

	for len(queue) > 0 {
		path := queue[0]
		queue = queue[1:]

		source, err := os.ReadFile(path)
		if err != nil {
			return diag, fmt.Errorf("cannot read module: %s", path)
		}

		p := parser.New(string(source))
		prog := p.Parse()
		for _, d := range p.Diagnostics().Errors() {
			diag.ErrorfInFile(path, d.Line, d.Column, "%s", d.Message)
		}
		r.modules[path] = prog

		for _, imp := range prog.Imports {
			dep := filepath.Clean(filepath.Join(r.projectRoot, imp.Path))

			if !strings.HasSuffix(dep, ".morph") {
				diag.ErrorfInFile(path, imp.Line, imp.Column,
					"import path must have .morph extension: %s", imp.Path)
				continue
			}
			if _, err := os.Stat(dep); os.IsNotExist(err) {
				return diag, fmt.Errorf("imported module not found: %s (resolved from %q in %s)",
					dep, imp.Path, path)
			}

			r.imports[path] = append(r.imports[path], dep)
			if !seen[dep] {
				seen[dep] = true
				queue = append(queue, dep)
			}
		}
	}

	return diag, nil
}

// TopologicalSort orders modules dependencies-first with the entry file
// last. An import cycle is an error; the message spells out the cycle.
func (r *ModuleRegistry) TopologicalSort() ([]string, error) {
	const (
		unvisited = iota
		onStack
		done
	)
	state := make(map[string]int)
	var sorted []string

	var visit func(path string, trail []string) error
	visit = func(path string, trail []string) error {
		switch state[path] {
		case done:
			return nil
		case onStack:
			start := 0
			for i, p := range trail {
				if p == path {
					start = i
					break
				}
			}
			names := make([]string, 0, len(trail)-start+1)
			for _, p := range append(trail[start:], path) {
				names = append(names, filepath.Base(p))
			}
			return fmt.Errorf("import cycle detected: %s", strings.Join(names, " -> "))
		}

		state[path] = onStack
		for _, dep := range r.imports[path] {
			if err := visit(dep, append(trail, path)); err != nil {
				return err
			}
		}
		state[path] = done
		sorted = append(sorted, path)
		return nil
	}

	if err := visit(r.entryPath, nil); err != nil {
		return nil, err
	}
	return sorted, nil
}

// Module returns the parsed AST for an absolute path, or nil when the
// path was never discovered.
func (r *ModuleRegistry) Module(path string) *ast.Program {
	return r.modules[path]
}

// AllModules returns every parsed module keyed by absolute path.
func (r *ModuleRegistry) AllModules() map[string]*ast.Program {
	return r.modules
}

// EntryPath returns the absolute path of the entry file.
func (r *ModuleRegistry) EntryPath() string {
	return r.entryPath
}
