// Package graph holds the module-graph entities the hoisting pass operates
// on: assets, their declared dependencies, and the symbol tables a linker
// uses to resolve cross-module names. The hoisting pass mutates these in
// place; everything else treats them as read-only.
package graph

import (
	"fmt"

	"github.com/gopackjs/gopack/internal/js_ast"
	"github.com/gopackjs/gopack/internal/logger"
)

// Meta is the free-form metadata sidecar on assets and dependencies. The
// hoisting pass communicates with the packager through a small set of
// well-known keys ("isCommonJS", "shouldWrap", ...).
type Meta map[string]interface{}

func (m Meta) Bool(key string) bool {
	v, _ := m[key].(bool)
	return v
}

func (m Meta) String(key string) string {
	v, _ := m[key].(string)
	return v
}

func (m Meta) Set(key string, value interface{}) {
	m[key] = value
}

// EnvironmentContext tells the transform what kind of runtime the output is
// destined for
type EnvironmentContext uint8

const (
	ContextBrowser EnvironmentContext = iota
	ContextNode
)

type Environment struct {
	Context EnvironmentContext
}

func (env *Environment) IsNode() bool {
	return env != nil && env.Context == ContextNode
}

// Asset is one module as seen by the bundler
type Asset struct {
	// A stable content identity. It's opaque but must stay constant for the
	// lifetime of the asset because generated names are derived from it.
	ID string

	FilePath string
	Meta     Meta
	Env      *Environment
	Symbols  *SymbolTable

	Dependencies []*Dependency

	// False for third-party code. Unreferenced import specifiers in
	// non-source assets are skipped instead of tracked.
	IsSource bool

	// The asset's syntax tree. The hoisting pass swaps this for the mutated
	// tree via SetAST.
	AST *js_ast.AST
}

func NewAsset(id string, filePath string) *Asset {
	return &Asset{
		ID:       id,
		FilePath: filePath,
		Meta:     Meta{},
		Symbols:  &SymbolTable{},
		IsSource: true,
	}
}

func (asset *Asset) SetAST(tree *js_ast.AST) {
	asset.AST = tree
}

func (asset *Asset) AddDependency(dep *Dependency) *Dependency {
	if dep.Meta == nil {
		dep.Meta = Meta{}
	}
	if dep.Symbols == nil {
		dep.Symbols = &SymbolTable{}
	}
	asset.Dependencies = append(asset.Dependencies, dep)
	return dep
}

// DependencyForSpecifier finds a declared dependency by its original module
// specifier. Returns nil when the specifier is unknown.
func (asset *Asset) DependencyForSpecifier(specifier string) *Dependency {
	for _, dep := range asset.Dependencies {
		if dep.ModuleSpecifier == specifier {
			return dep
		}
	}
	return nil
}

// Dependency is a declared reference from one asset to another
type Dependency struct {
	// Identifies the dependency edge; generated import names are derived
	// from it
	ID string

	// The original source string of the import
	ModuleSpecifier string

	// True for dynamic "import()"
	IsAsync bool

	Meta    Meta
	Symbols *SymbolTable
	Loc     logger.Loc
}

func NewDependency(id string, specifier string) *Dependency {
	return &Dependency{
		ID:              id,
		ModuleSpecifier: specifier,
		Meta:            Meta{},
		Symbols:         &SymbolTable{},
	}
}

// NamespaceSymbol is the special exported name for a module's whole
// namespace object
const NamespaceSymbol = "*"

type SymbolEntry struct {
	// The name this symbol has in the emitted code
	Local string

	Loc logger.Loc

	// A weak symbol's only use is pass-through re-export; tree shaking may
	// elide it
	IsWeak bool
}

// SymbolTable maps outward-facing exported names to the local names they
// resolve to. The zero value is empty; Ensure materializes the backing map.
type SymbolTable struct {
	entries map[string]SymbolEntry
	order   []string
}

// Ensure materializes the table. It's idempotent.
func (st *SymbolTable) Ensure() {
	if st.entries == nil {
		st.entries = make(map[string]SymbolEntry)
	}
}

func (st *SymbolTable) Len() int {
	return len(st.order)
}

func (st *SymbolTable) Get(exported string) (SymbolEntry, bool) {
	entry, ok := st.entries[exported]
	return entry, ok
}

// Set records an exported name. Exported names must be identifier-shaped,
// "default", or "*".
func (st *SymbolTable) Set(exported string, entry SymbolEntry) {
	if exported != "default" && exported != NamespaceSymbol && !js_ast.IsIdentifier(exported) {
		panic(fmt.Sprintf("Invalid exported name %q", exported))
	}
	st.Ensure()
	if _, ok := st.entries[exported]; !ok {
		st.order = append(st.order, exported)
	}
	st.entries[exported] = entry
}

func (st *SymbolTable) Delete(exported string) {
	if _, ok := st.entries[exported]; !ok {
		return
	}
	delete(st.entries, exported)
	for i, name := range st.order {
		if name == exported {
			st.order = append(st.order[:i], st.order[i+1:]...)
			break
		}
	}
}

func (st *SymbolTable) HasExportSymbol(exported string) bool {
	_, ok := st.entries[exported]
	return ok
}

// HasLocalSymbol is the reverse lookup: does any exported name resolve to
// this local name?
func (st *SymbolTable) HasLocalSymbol(local string) bool {
	for _, entry := range st.entries {
		if entry.Local == local {
			return true
		}
	}
	return false
}

// LocalSymbol returns the exported name that resolves to the given local
// name, if any
func (st *SymbolTable) LocalSymbol(local string) (string, bool) {
	for _, exported := range st.order {
		if st.entries[exported].Local == local {
			return exported, true
		}
	}
	return "", false
}

// ExportSymbols enumerates all exported names in insertion order
func (st *SymbolTable) ExportSymbols() []string {
	names := make([]string, len(st.order))
	copy(names, st.order)
	return names
}
