// Package hoister implements the scope-hoisting transform: a whole-module
// rewrite that prepares one asset's tree for concatenation into a flat
// bundle. Top-level bindings are renamed to module-unique identifiers,
// imports and exports become placeholder calls a packager resolves later,
// CommonJS constructs are rewritten into ES-shaped equivalents, and modules
// whose exports can't be statically rewritten are wrapped in a closure that
// synthesizes "exports" and "module.exports".
package hoister

import (
	"fmt"

	"github.com/gopackjs/gopack/internal/graph"
	"github.com/gopackjs/gopack/internal/js_ast"
	"github.com/gopackjs/gopack/internal/logger"
)

// UnsupportedASTError means the tree carries a model or version tag this
// transform doesn't recognize. The caller should abort the asset.
type UnsupportedASTError struct {
	Model   string
	Version int
}

func (e *UnsupportedASTError) Error() string {
	return fmt.Sprintf("Unsupported AST %q version %d", e.Model, e.Version)
}

// UnknownImportConstructError and UnknownExportConstructError mean the AST
// producer handed us a specifier shape this transform doesn't know. They
// indicate the producer and the transform are out of sync.
type UnknownImportConstructError struct {
	Loc logger.Loc
}

func (e *UnknownImportConstructError) Error() string {
	return "Unknown import construct"
}

type UnknownExportConstructError struct {
	Loc logger.Loc
}

func (e *UnknownExportConstructError) Error() string {
	return "Unknown export construct"
}

// DependencyInvariantError means a construct that demands a declared
// dependency (an import or re-export declaration) had none. Dependencies
// are populated by an earlier pass, so this is an assertion failure.
type DependencyInvariantError struct {
	Specifier string
	Loc       logger.Loc
}

func (e *DependencyInvariantError) Error() string {
	return fmt.Sprintf("No dependency for import %q", e.Specifier)
}

// WrapRequest asks that a dependency's module be wrapped because a
// require() of it sits where call order isn't statically determined (inside
// a function, conditional, or logical expression).
type WrapRequest struct {
	Specifier string
	Loc       logger.Loc
}

// Result is what the transform reports beyond its tree and symbol-table
// mutations
type Result struct {
	WrapRequests []WrapRequest
}

type hoistPanic struct{ err error }

// Hoist rewrites the asset's tree in place. On success the mutated tree is
// stored back on the asset via SetAST and the symbol tables of the asset
// and its dependencies are populated.
func Hoist(asset *graph.Asset, tree *js_ast.AST) (result *Result, err error) {
	if tree == nil || tree.Model != js_ast.ModelName || tree.Version != js_ast.CurrentVersion {
		model := ""
		version := 0
		if tree != nil {
			model = tree.Model
			version = tree.Version
		}
		return nil, &UnsupportedASTError{Model: model, Version: version}
	}

	defer func() {
		if r := recover(); r != nil {
			if hp, ok := r.(hoistPanic); ok {
				result = nil
				err = hp.err
				return
			}
			panic(r)
		}
	}()

	h := &hoister{
		asset:            asset,
		tree:             tree,
		result:           &Result{},
		refAccess:        make(map[js_ast.Ref]*refAccess),
		exportClauseRefs: make(map[js_ast.Ref]bool),
		nsRewrites:       make(map[js_ast.Ref]map[string]js_ast.Ref),
		placeholderRefs:  make(map[string]js_ast.Ref),
		cjsExportRefs:    make(map[string]js_ast.Ref),
		originalNames:    make(map[js_ast.Ref]string),
		exportsRef:       js_ast.InvalidRef,
		cjsExportsRef:    js_ast.InvalidRef,
		wrapExportsRef:   js_ast.InvalidRef,
	}

	h.preScan()

	if !h.shouldWrap {
		h.renameTopLevel()
	}

	h.tree.Stmts = h.visitTopLevelStmts(h.tree.Stmts)

	h.finalize()
	asset.SetAST(tree)
	return h.result, nil
}

type hoister struct {
	asset  *graph.Asset
	tree   *js_ast.AST
	result *Result

	// Classification from the pre-scan
	isES6Module             bool
	isCommonJS              bool
	shouldWrap              bool
	resolveExportsBailedOut bool

	// Set when "exports = ..." reassigns the local exports variable
	cjsExportsReassigned bool

	// Reference info collected during the pre-scan, keyed by symbol
	refAccess        map[js_ast.Ref]*refAccess
	exportClauseRefs map[js_ast.Ref]bool

	// Namespace bindings whose member accesses are rewritten to import
	// identifiers during the body walk
	nsRewrites map[js_ast.Ref]map[string]js_ast.Ref

	// Shared refs for the runtime placeholders ($parcel$require, ...)
	placeholderRefs map[string]js_ast.Ref

	// CommonJS export bindings allocated so far, keyed by exported name
	cjsExportRefs map[string]js_ast.Ref

	// Names bindings had before the top-level rename
	originalNames map[js_ast.Ref]string

	exportsRef     js_ast.Ref
	cjsExportsRef  js_ast.Ref
	exportsRefUsed bool

	// The wrapper closure's synthesized local "exports" binding. Export
	// registrations inside a wrapped module target this instead of the
	// asset-level exports object, which doesn't exist until the closure
	// returns.
	wrapExportsRef js_ast.Ref

	// Hoisted statements: require placeholders in source order, then
	// synthesized export declarations that couldn't stay at their site
	hoisted     []js_ast.Stmt
	hoistedVars []js_ast.Stmt

	// Walk context
	fnDepth   int
	condDepth int

	// True while visiting a statement that is a direct child of the program
	atProgramLevel bool
}

type refAccess struct {
	members      []memberUse
	hasNonMember bool
	count        int
}

type memberUse struct {
	name string
	loc  logger.Loc
}

func (a *refAccess) addMember(name string, loc logger.Loc) {
	for _, m := range a.members {
		if m.name == name {
			return
		}
	}
	a.members = append(a.members, memberUse{name: name, loc: loc})
}

func (h *hoister) panicWith(err error) {
	panic(hoistPanic{err: err})
}

// isTopLevelCall reports whether the current position executes exactly once
// in module order: a direct program child outside any function, conditional
// expression, or logical expression
func (h *hoister) isTopLevelCall() bool {
	return h.atProgramLevel && h.fnDepth == 0 && h.condDepth == 0
}

func (h *hoister) originalName(ref js_ast.Ref) string {
	if name, ok := h.originalNames[ref]; ok {
		return name
	}
	return h.tree.Symbol(ref).OriginalName
}

// visitTopLevelStmts drives the body walk. Top-level handlers may replace
// one statement with several or drop it entirely.
func (h *hoister) visitTopLevelStmts(stmts []js_ast.Stmt) []js_ast.Stmt {
	body := []js_ast.Stmt{}
	for i := range stmts {
		h.atProgramLevel = true
		body = h.visitTopLevelStmt(stmts[i], body)
	}
	h.atProgramLevel = false
	return body
}

func (h *hoister) visitTopLevelStmt(stmt js_ast.Stmt, body []js_ast.Stmt) []js_ast.Stmt {
	switch s := stmt.Data.(type) {
	case *js_ast.SDirective:
		// Modules are concatenated; a "use strict" directive must not leak
		// across module boundaries
		if s.Value == "use strict" {
			return body
		}
		return append(body, stmt)

	case *js_ast.SImport:
		h.hoistImport(s)
		return body

	case *js_ast.SExportDefault:
		return h.hoistExportDefault(stmt.Loc, s, body)

	case *js_ast.SExportClause:
		return h.hoistExportClause(stmt.Loc, s, body)

	case *js_ast.SExportFrom:
		return h.hoistExportFrom(stmt.Loc, s, body)

	case *js_ast.SExportStar:
		return h.hoistExportStar(stmt.Loc, s, body)

	case *js_ast.SLocal:
		if s.IsExport {
			return h.hoistExportLocal(stmt.Loc, s, body)
		}
		h.visitLocal(s)
		return append(body, stmt)

	case *js_ast.SFunction:
		if s.IsExport {
			return h.hoistExportFunction(stmt.Loc, s, body)
		}
		h.visitStmtInner(&stmt)
		return append(body, stmt)

	case *js_ast.SClass:
		if s.IsExport {
			return h.hoistExportClass(stmt.Loc, s, body)
		}
		h.visitStmtInner(&stmt)
		return append(body, stmt)

	case *js_ast.SExpr:
		// A whole-statement "exports.foo = value" assignment becomes an
		// ES-shaped export declaration
		if expanded, handled := h.hoistExportAssign(stmt.Loc, s, body); handled {
			return expanded
		}
		h.visitStmtInner(&stmt)
		return append(body, stmt)

	default:
		h.visitStmtInner(&stmt)
		return append(body, stmt)
	}
}
