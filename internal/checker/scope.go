package checker

import "fmt"

// SymbolKind represents the kind of symbol
type SymbolKind int

const (
	SymVariable SymbolKind = iota
	SymFunction
	SymStruct
	SymEnum
	SymVisitor
	SymParam
)

// String returns the string representation of the symbol kind
func (sk SymbolKind) String() string {
	switch sk {
	case SymVariable:
		return "variable"
	case SymFunction:
		return "function"
	case SymStruct:
		return "struct"
	case SymEnum:
		return "enum"
	case SymVisitor:
		return "visitor"
	case SymParam:
		return "parameter"
	default:
		return "unknown"
	}
}

// Symbol represents a binding in the symbol table. Symbols are never
// mutated after creation except for the Used flag.
type Symbol struct {
	Name    string
	Type    *Type
	Mutable bool
	Kind    SymbolKind
	Line    int
	Column  int
	Used    bool
	// IsVisitedNode marks the visited node parameter of a visitor; the
	// only legal replace target.
	IsVisitedNode bool
}

// Scope represents a lexical scope with a symbol table
type Scope struct {
	parent  *Scope
	symbols map[string]*Symbol
	order   []string // declaration order, for deterministic diagnostics
}

// NewScope creates a new scope with an optional parent
func NewScope(parent *Scope) *Scope {
	return &Scope{
		parent:  parent,
		symbols: make(map[string]*Symbol),
	}
}

// Define adds a symbol to the current scope
// Returns an error if the symbol is already defined in this scope
func (s *Scope) Define(name string, sym *Symbol) error {
	if _, exists := s.symbols[name]; exists {
		return fmt.Errorf("symbol '%s' already defined in this scope", name)
	}
	s.symbols[name] = sym
	s.order = append(s.order, name)
	return nil
}

// Resolve looks up a symbol in the current scope and parent scopes
// Returns nil if the symbol is not found
func (s *Scope) Resolve(name string) *Symbol {
	if sym, ok := s.symbols[name]; ok {
		return sym
	}
	if s.parent != nil {
		return s.parent.Resolve(name)
	}
	return nil
}

// ResolveUse looks up a symbol like Resolve and marks it used
func (s *Scope) ResolveUse(name string) *Symbol {
	sym := s.Resolve(name)
	if sym != nil {
		sym.Used = true
	}
	return sym
}

// ResolveLocal looks up a symbol only in the current scope (not parent scopes)
func (s *Scope) ResolveLocal(name string) *Symbol {
	if sym, ok := s.symbols[name]; ok {
		return sym
	}
	return nil
}

// Locals returns the scope's own symbols in declaration order
func (s *Scope) Locals() []*Symbol {
	out := make([]*Symbol, 0, len(s.order))
	for _, name := range s.order {
		out = append(out, s.symbols[name])
	}
	return out
}
