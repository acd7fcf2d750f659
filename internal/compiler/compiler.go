package compiler

import (
	"fmt"
	"os"

	"github.com/morphlang/morphc/internal/backend"
	"github.com/morphlang/morphc/internal/checker"
	"github.com/morphlang/morphc/internal/decorate"
	"github.com/morphlang/morphc/internal/diagnostic"
	"github.com/morphlang/morphc/internal/ownership"
	"github.com/morphlang/morphc/internal/parser"
	"github.com/morphlang/morphc/internal/schema"
)

// Result holds the output of a compilation.
type Result struct {
	Diagnostics *diagnostic.Diagnostics
	// Source is the generated target source, empty when any stage
	// reported errors.
	Source string
}

// loadTables returns the given tables or the embedded default schema.
func loadTables(tables *schema.Tables) (*schema.Tables, error) {
	if tables != nil {
		return tables, nil
	}
	return schema.Load()
}

// Compile runs the full single-file pipeline:
// parse -> check -> ownership -> decorate -> emit.
func Compile(source, target string, tables *schema.Tables) *Result {
	res := &Result{}

	tables, err := loadTables(tables)
	if err != nil {
		res.Diagnostics = diagnostic.New()
		res.Diagnostics.Errorf(0, 0, "failed to load schema: %s", err)
		return res
	}

	be, err := backend.ForTarget(target)
	if err != nil {
		res.Diagnostics = diagnostic.New()
		res.Diagnostics.Errorf(0, 0, "%s", err)
		return res
	}

	p := parser.New(source)
	prog := p.Parse()
	if p.Diagnostics().HasErrors() {
		res.Diagnostics = p.Diagnostics()
		return res
	}

	// Ownership and decoration run even when the check pass reported
	// errors: mistyped expressions carry Unknown, so later passes still
	// produce their diagnostics on best-effort types. Only emission is
	// gated on a clean run.
	checkResult := checker.CheckWithResult(prog, tables)
	res.Diagnostics = checkResult.Diagnostics
	res.Diagnostics.Merge(ownership.Check(prog, checkResult))

	plan, decDiag := decorate.Resolve(prog, checkResult)
	res.Diagnostics.Merge(decDiag)
	if res.Diagnostics.HasErrors() {
		return res
	}

	res.Source = be.Generate(prog, checkResult, plan)
	return res
}

// Check runs the analysis pipeline with no codegen: parse, type check,
// ownership check, and decoration resolution, so unmappable patterns
// surface at check time too.
func Check(source string, tables *schema.Tables) *diagnostic.Diagnostics {
	tables, err := loadTables(tables)
	if err != nil {
		diag := diagnostic.New()
		diag.Errorf(0, 0, "failed to load schema: %s", err)
		return diag
	}

	p := parser.New(source)
	prog := p.Parse()
	if p.Diagnostics().HasErrors() {
		return p.Diagnostics()
	}

	checkResult := checker.CheckWithResult(prog, tables)
	diag := checkResult.Diagnostics
	diag.Merge(ownership.Check(prog, checkResult))

	_, decDiag := decorate.Resolve(prog, checkResult)
	diag.Merge(decDiag)
	return diag
}

// Emit runs the full pipeline and writes the generated source next to
// baseName with the target's extension. Returns the output path.
func Emit(source, target, baseName string, tables *schema.Tables) (string, error) {
	be, err := backend.ForTarget(target)
	if err != nil {
		return "", err
	}

	res := Compile(source, target, tables)
	if res.Diagnostics != nil && res.Diagnostics.HasErrors() {
		return "", fmt.Errorf("compilation errors:\n%s", res.Diagnostics.Format("input"))
	}

	outPath := baseName + be.FileExt()
	if err := os.WriteFile(outPath, []byte(res.Source), 0644); err != nil {
		return "", fmt.Errorf("failed to write output file: %w", err)
	}
	return outPath, nil
}

// HasImports reports whether a source file declares imports, which
// switches the CLI onto the multi-file pipeline.
func HasImports(source string) bool {
	p := parser.New(source)
	prog := p.Parse()
	return len(prog.Imports) > 0
}

// IsMultiFile reads the file at filePath and reports whether it is the
// entry of a multi-file project.
func IsMultiFile(filePath string) (bool, error) {
	source, err := os.ReadFile(filePath)
	if err != nil {
		return false, err
	}
	return HasImports(string(source)), nil
}

// CompileProject runs the multi-file pipeline:
// discover -> sort -> check -> ownership -> decorate -> emit.
func CompileProject(entryPath, target string, tables *schema.Tables) *Result {
	res := &Result{}

	tables, err := loadTables(tables)
	if err != nil {
		res.Diagnostics = diagnostic.New()
		res.Diagnostics.Errorf(0, 0, "failed to load schema: %s", err)
		return res
	}

	be, err := backend.ForTarget(target)
	if err != nil {
		res.Diagnostics = diagnostic.New()
		res.Diagnostics.Errorf(0, 0, "%s", err)
		return res
	}

	registry, sortedPaths, diag := discoverProject(entryPath)
	if diag.HasErrors() {
		res.Diagnostics = diag
		return res
	}

	allModules := registry.AllModules()
	checkResult := checker.CheckAll(allModules, sortedPaths, tables)
	res.Diagnostics = checkResult.Diagnostics
	res.Diagnostics.Merge(ownership.CheckAll(allModules, sortedPaths, checkResult))

	plan, decDiag := decorate.ResolveAll(allModules, sortedPaths, checkResult)
	res.Diagnostics.Merge(decDiag)
	if res.Diagnostics.HasErrors() {
		return res
	}

	res.Source = be.GenerateAll(allModules, sortedPaths, checkResult, plan)
	return res
}

// CheckProject runs the multi-file analysis pipeline with no codegen.
func CheckProject(entryPath string, tables *schema.Tables) *diagnostic.Diagnostics {
	tables, err := loadTables(tables)
	if err != nil {
		diag := diagnostic.New()
		diag.Errorf(0, 0, "failed to load schema: %s", err)
		return diag
	}

	registry, sortedPaths, diag := discoverProject(entryPath)
	if diag.HasErrors() {
		return diag
	}

	allModules := registry.AllModules()
	checkResult := checker.CheckAll(allModules, sortedPaths, tables)
	out := checkResult.Diagnostics
	out.Merge(ownership.CheckAll(allModules, sortedPaths, checkResult))

	_, decDiag := decorate.ResolveAll(allModules, sortedPaths, checkResult)
	out.Merge(decDiag)
	return out
}

// EmitProject runs the full multi-file pipeline and writes the combined
// output next to baseName with the target's extension.
func EmitProject(entryPath, target, baseName string, tables *schema.Tables) (string, error) {
	be, err := backend.ForTarget(target)
	if err != nil {
		return "", err
	}

	res := CompileProject(entryPath, target, tables)
	if res.Diagnostics != nil && res.Diagnostics.HasErrors() {
		return "", fmt.Errorf("compilation errors:\n%s", res.Diagnostics.Format(entryPath))
	}

	outPath := baseName + be.FileExt()
	if err := os.WriteFile(outPath, []byte(res.Source), 0644); err != nil {
		return "", fmt.Errorf("failed to write output file: %w", err)
	}
	return outPath, nil
}

// discoverProject builds the module registry for an entry file and
// returns the dependency-sorted paths. All failure modes land in the
// returned diagnostics.
func discoverProject(entryPath string) (*ModuleRegistry, []string, *diagnostic.Diagnostics) {
	registry, err := NewModuleRegistry(entryPath)
	if err != nil {
		diag := diagnostic.New()
		diag.Errorf(0, 0, "failed to initialize module registry: %s", err)
		return nil, nil, diag
	}

	diag, err := registry.DiscoverDependencies()
	if err != nil {
		if diag == nil {
			diag = diagnostic.New()
		}
		diag.Errorf(0, 0, "%s", err)
		return nil, nil, diag
	}
	if diag.HasErrors() {
		return nil, nil, diag
	}

	sortedPaths, err := registry.TopologicalSort()
	if err != nil {
		diag.Errorf(0, 0, "%s", err)
		return nil, nil, diag
	}

	return registry, sortedPaths, diag
}
