package hoister

// The pre-scan walks the original tree once and classifies the module: ES
// module, CommonJS, or both. It also decides up front whether the module
// must be closure-wrapped, records how every binding is referenced (used by
// the namespace-import and dynamic-import analyses), and flags modules whose
// exports object escapes static tracking.

import (
	"path"

	"github.com/gopackjs/gopack/internal/graph"
	"github.com/gopackjs/gopack/internal/js_ast"
	"github.com/gopackjs/gopack/internal/logger"
)

func (h *hoister) preScan() {
	h.asset.Symbols.Ensure()
	h.asset.Meta.Set("exportsIdentifier", h.exportsName())

	s := &preScanner{h: h}
	s.scanStmts(h.tree.Stmts)

	// A module that shows neither convention is CommonJS by default: a plain
	// script's side effects still need a module record
	if !h.isES6Module && !h.isCommonJS {
		h.isCommonJS = true
		h.asset.Symbols.Set(graph.NamespaceSymbol, graph.SymbolEntry{Local: h.exportsName()})
	}

	h.asset.Meta.Set("isES6Module", h.isES6Module)
	h.asset.Meta.Set("isCommonJS", h.isCommonJS)
	h.asset.Meta.Set("shouldWrap", h.shouldWrap)
}

type preScanner struct {
	h       *hoister
	fnDepth int
}

func (s *preScanner) scanStmts(stmts []js_ast.Stmt) {
	for i := range stmts {
		s.scanStmt(&stmts[i])
	}
}

func (s *preScanner) scanStmt(stmt *js_ast.Stmt) {
	h := s.h

	switch st := stmt.Data.(type) {
	case *js_ast.SEmpty, *js_ast.SDebugger, *js_ast.SDirective, *js_ast.SBreak, *js_ast.SContinue:

	case *js_ast.SImport:
		h.isES6Module = true

	case *js_ast.SExportFrom, *js_ast.SExportStar:
		h.isES6Module = true

	case *js_ast.SExportClause:
		h.isES6Module = true
		for _, item := range st.Items {
			h.exportClauseRefs[item.Name.Ref] = true
			s.recordUse(item.Name.Ref)
		}

	case *js_ast.SExportDefault:
		h.isES6Module = true
		if st.Value.Expr != nil {
			s.scanExpr(*st.Value.Expr)
		} else {
			s.scanStmt(st.Value.Stmt)
		}

	case *js_ast.SBlock:
		s.scanStmts(st.Stmts)

	case *js_ast.SExpr:
		s.scanExpr(st.Value)

	case *js_ast.SLocal:
		if st.IsExport {
			h.isES6Module = true
		}
		for i := range st.Decls {
			decl := &st.Decls[i]
			s.scanBinding(decl.Binding)
			if decl.Value != nil {
				s.scanExpr(*decl.Value)
			}
		}

	case *js_ast.SIf:
		s.scanExpr(st.Test)
		s.scanStmt(&st.Yes)
		if st.No != nil {
			s.scanStmt(st.No)
		}

	case *js_ast.SFor:
		if st.Init != nil {
			s.scanStmt(st.Init)
		}
		if st.Test != nil {
			s.scanExpr(*st.Test)
		}
		if st.Update != nil {
			s.scanExpr(*st.Update)
		}
		s.scanStmt(&st.Body)

	case *js_ast.SWhile:
		s.scanExpr(st.Test)
		s.scanStmt(&st.Body)

	case *js_ast.SReturn:
		// A top-level return can observe and replace the module's lexical
		// environment, so the module must be wrapped
		if s.fnDepth == 0 {
			h.isCommonJS = true
			h.shouldWrap = true
		}
		if st.Value != nil {
			s.scanExpr(*st.Value)
		}

	case *js_ast.SThrow:
		s.scanExpr(st.Value)

	case *js_ast.SFunction:
		if st.IsExport {
			h.isES6Module = true
		}
		s.scanFn(&st.Fn)

	case *js_ast.SClass:
		if st.IsExport {
			h.isES6Module = true
		}
		s.scanClass(&st.Class)
	}
}

func (s *preScanner) scanBinding(binding js_ast.Binding) {
	switch b := binding.Data.(type) {
	case *js_ast.BMissing, *js_ast.BIdentifier:

	case *js_ast.BArray:
		for i := range b.Items {
			s.scanBinding(b.Items[i].Binding)
			if b.Items[i].DefaultValue != nil {
				s.scanExpr(*b.Items[i].DefaultValue)
			}
		}

	case *js_ast.BObject:
		for i := range b.Properties {
			if b.Properties[i].IsComputed {
				s.scanExpr(b.Properties[i].Key)
			}
			s.scanBinding(b.Properties[i].Value)
			if b.Properties[i].DefaultValue != nil {
				s.scanExpr(*b.Properties[i].DefaultValue)
			}
		}
	}
}

func (s *preScanner) scanFn(fn *js_ast.Fn) {
	s.fnDepth++
	for i := range fn.Args {
		s.scanBinding(fn.Args[i].Binding)
		if fn.Args[i].Default != nil {
			s.scanExpr(*fn.Args[i].Default)
		}
	}
	s.scanStmts(fn.Body.Stmts)
	s.fnDepth--
}

func (s *preScanner) scanClass(class *js_ast.Class) {
	if class.Extends != nil {
		s.scanExpr(*class.Extends)
	}
	for i := range class.Properties {
		property := &class.Properties[i]
		if property.IsComputed {
			s.scanExpr(property.Key)
		}
		if property.Value != nil {
			s.scanExpr(*property.Value)
		}
	}
}

func (s *preScanner) scanExpr(expr js_ast.Expr) {
	h := s.h

	switch e := expr.Data.(type) {
	case *js_ast.EBoolean, *js_ast.ENull, *js_ast.EUndefined, *js_ast.EThis,
		*js_ast.EMissing, *js_ast.ENumber, *js_ast.EString:

	case *js_ast.EIdentifier:
		s.recordUse(e.Ref)
		s.scanFreeIdentifier(e.Ref, expr.Loc, freeUseBare)

	case *js_ast.EDot:
		s.scanMemberAccess(e.Target, e.Name, e.NameLoc, expr.Loc)

	case *js_ast.EIndex:
		if name, ok := js_ast.IsStringLiteral(e.Index); ok {
			s.scanMemberAccess(e.Target, name, e.Index.Loc, expr.Loc)
		} else {
			// A computed member access: the base sees a bare use
			s.scanExpr(e.Target)
			s.scanExpr(e.Index)
		}

	case *js_ast.EUnary:
		// "typeof module" and "typeof require" observe nothing about the
		// module environment, so they don't force a wrap
		if e.Op == js_ast.UnOpTypeof {
			if target, ok := e.Value.Data.(*js_ast.EIdentifier); ok {
				s.recordUse(target.Ref)
				s.scanFreeIdentifier(target.Ref, e.Value.Loc, freeUseTypeof)
				return
			}
		}
		s.scanExpr(e.Value)

	case *js_ast.EBinary:
		if e.Op == js_ast.BinOpAssign {
			// "exports = value" rebinds the local variable, which is
			// statically tracked; it doesn't bail out export resolution
			if target, ok := e.Left.Data.(*js_ast.EIdentifier); ok && h.tree.IsUnbound(target.Ref, "exports") {
				s.recordUse(target.Ref)
				h.isCommonJS = true
				s.scanExpr(e.Right)
				return
			}
		}
		s.scanExpr(e.Left)
		s.scanExpr(e.Right)

	case *js_ast.ECall:
		// A visible eval can reach anything in the module's scope
		if target, ok := e.Target.Data.(*js_ast.EIdentifier); ok && h.tree.IsUnbound(target.Ref, "eval") {
			h.isCommonJS = true
			h.shouldWrap = true
		}
		s.scanExpr(e.Target)
		for i := range e.Args {
			s.scanExpr(e.Args[i])
		}

	case *js_ast.ENew:
		s.scanExpr(e.Target)
		for i := range e.Args {
			s.scanExpr(e.Args[i])
		}

	case *js_ast.EArray:
		for i := range e.Items {
			s.scanExpr(e.Items[i])
		}

	case *js_ast.ESpread:
		s.scanExpr(e.Value)

	case *js_ast.EObject:
		for i := range e.Properties {
			property := &e.Properties[i]
			if property.IsComputed {
				s.scanExpr(property.Key)
			}
			if property.Value != nil {
				s.scanExpr(*property.Value)
			}
		}

	case *js_ast.EArrow:
		s.fnDepth++
		for i := range e.Args {
			s.scanBinding(e.Args[i].Binding)
			if e.Args[i].Default != nil {
				s.scanExpr(*e.Args[i].Default)
			}
		}
		s.scanStmts(e.Body.Stmts)
		s.fnDepth--

	case *js_ast.EFunction:
		s.scanFn(&e.Fn)

	case *js_ast.EClass:
		s.scanClass(&e.Class)

	case *js_ast.EIf:
		s.scanExpr(e.Test)
		s.scanExpr(e.Yes)
		s.scanExpr(e.No)

	case *js_ast.EAwait:
		s.scanExpr(e.Value)

	case *js_ast.EImport:
		s.scanExpr(e.Expr)
	}
}

// scanMemberAccess handles "base.name" and base["name"] so the base
// identifier is recorded as a static member use rather than a bare use
func (s *preScanner) scanMemberAccess(target js_ast.Expr, name string, nameLoc logger.Loc, loc logger.Loc) {
	h := s.h

	if base, ok := target.Data.(*js_ast.EIdentifier); ok {
		s.recordMemberUse(base.Ref, name, nameLoc)

		if h.tree.IsUnbound(base.Ref, "module") {
			// Any free module reference marks CommonJS, but a static member
			// access doesn't force a wrap
			h.isCommonJS = true
			return
		}

		if h.tree.IsUnbound(base.Ref, "exports") {
			h.isCommonJS = true
			return
		}

		s.scanFreeIdentifier(base.Ref, target.Loc, freeUseMemberBase)
		return
	}

	// "module.exports.x" and module.exports["x"] are safe accesses on the
	// exports object
	if h.isModuleExportsAccess(target) {
		h.isCommonJS = true
		return
	}

	s.scanExpr(target)
}

type freeUseKind uint8

const (
	freeUseBare freeUseKind = iota
	freeUseTypeof
	freeUseMemberBase
)

func (s *preScanner) scanFreeIdentifier(ref js_ast.Ref, loc logger.Loc, kind freeUseKind) {
	h := s.h
	symbol := h.tree.Symbol(ref)
	if symbol.Kind != js_ast.SymbolUnbound {
		return
	}

	switch symbol.OriginalName {
	case "module":
		h.isCommonJS = true
		if kind == freeUseBare {
			// The module object itself escapes; only a wrapper can provide
			// a real one
			h.shouldWrap = true
		}

	case "exports":
		h.isCommonJS = true
		if kind == freeUseBare {
			// The exports object escapes into arbitrary code, so the set of
			// exported names can't be statically resolved
			h.bailOutExportResolution(loc)
		}
	}
}

// bailOutExportResolution gives the asset a dependency on itself whose "*"
// symbol tells the packager to keep the whole namespace alive
func (h *hoister) bailOutExportResolution(loc logger.Loc) {
	if h.resolveExportsBailedOut {
		return
	}
	h.resolveExportsBailedOut = true
	h.asset.Meta.Set("resolveExportsBailedOut", true)

	specifier := "./" + path.Base(h.asset.FilePath)
	dep := h.asset.AddDependency(graph.NewDependency(h.asset.ID+":self", specifier))
	dep.Loc = loc
	dep.Symbols.Ensure()
	dep.Symbols.Set(graph.NamespaceSymbol, graph.SymbolEntry{Local: "@exports", Loc: loc})
}

func (s *preScanner) recordUse(ref js_ast.Ref) {
	access := s.h.refAccess[ref]
	if access == nil {
		access = &refAccess{}
		s.h.refAccess[ref] = access
	}
	access.count++
	access.hasNonMember = true
}

func (s *preScanner) recordMemberUse(ref js_ast.Ref, name string, loc logger.Loc) {
	access := s.h.refAccess[ref]
	if access == nil {
		access = &refAccess{}
		s.h.refAccess[ref] = access
	}
	access.count++
	access.addMember(name, loc)
}

// isModuleExportsAccess matches "module.exports" where module is free
func (h *hoister) isModuleExportsAccess(expr js_ast.Expr) bool {
	switch e := expr.Data.(type) {
	case *js_ast.EDot:
		if base, ok := e.Target.Data.(*js_ast.EIdentifier); ok {
			return e.Name == "exports" && h.tree.IsUnbound(base.Ref, "module")
		}
	case *js_ast.EIndex:
		if base, ok := e.Target.Data.(*js_ast.EIdentifier); ok {
			if name, isStr := js_ast.IsStringLiteral(e.Index); isStr {
				return name == "exports" && h.tree.IsUnbound(base.Ref, "module")
			}
		}
	}
	return false
}
