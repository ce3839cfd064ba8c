package hoister

// The body walk. Statements are visited in tree order; expression handlers
// return a replacement node. CommonJS constructs rewrite to ES-shaped
// equivalents only when the module isn't being wrapped; import placeholders
// are emitted regardless because they work inside a wrapper too.

import (
	"github.com/gopackjs/gopack/internal/js_ast"
)

// visitStmt is for statements nested inside another statement; they are no
// longer direct children of the program
func (h *hoister) visitStmt(stmt *js_ast.Stmt) {
	wasProgramLevel := h.atProgramLevel
	h.atProgramLevel = false
	h.visitStmtInner(stmt)
	h.atProgramLevel = wasProgramLevel
}

// visitStmtInner visits a statement's own expressions without changing the
// program-level flag. Expressions attached directly to a top-level
// statement still count as top level; anything inside a nested statement or
// function body does not.
func (h *hoister) visitStmtInner(stmt *js_ast.Stmt) {
	switch s := stmt.Data.(type) {
	case *js_ast.SEmpty, *js_ast.SDebugger, *js_ast.SDirective, *js_ast.SBreak, *js_ast.SContinue:

	case *js_ast.SBlock:
		for i := range s.Stmts {
			h.visitStmt(&s.Stmts[i])
		}

	case *js_ast.SExpr:
		s.Value = h.visitExpr(s.Value)

	case *js_ast.SLocal:
		h.visitLocal(s)

	case *js_ast.SIf:
		s.Test = h.visitExpr(s.Test)
		h.visitStmt(&s.Yes)
		if s.No != nil {
			h.visitStmt(s.No)
		}

	case *js_ast.SFor:
		if s.Init != nil {
			h.visitStmt(s.Init)
		}
		if s.Test != nil {
			*s.Test = h.visitExpr(*s.Test)
		}
		if s.Update != nil {
			*s.Update = h.visitExpr(*s.Update)
		}
		h.visitStmt(&s.Body)

	case *js_ast.SWhile:
		s.Test = h.visitExpr(s.Test)
		h.visitStmt(&s.Body)

	case *js_ast.SReturn:
		if s.Value != nil {
			*s.Value = h.visitExpr(*s.Value)
		}

	case *js_ast.SThrow:
		s.Value = h.visitExpr(s.Value)

	case *js_ast.SFunction:
		h.visitFn(&s.Fn)

	case *js_ast.SClass:
		h.visitClass(&s.Class)
	}
}

// visitLocal runs the dynamic-import destructuring analysis on each
// declaration before the generic expression visit
func (h *hoister) visitLocal(s *js_ast.SLocal) {
	for i := range s.Decls {
		decl := &s.Decls[i]
		h.visitBinding(decl.Binding)
		if decl.Value == nil {
			continue
		}
		if replaced, ok := h.analyzeAwaitImportBinding(decl.Binding, *decl.Value); ok {
			*decl.Value = replaced
			continue
		}
		*decl.Value = h.visitExpr(*decl.Value)
	}
}

func (h *hoister) visitBinding(binding js_ast.Binding) {
	switch b := binding.Data.(type) {
	case *js_ast.BMissing, *js_ast.BIdentifier:

	case *js_ast.BArray:
		for i := range b.Items {
			h.visitBinding(b.Items[i].Binding)
			if b.Items[i].DefaultValue != nil {
				*b.Items[i].DefaultValue = h.visitExpr(*b.Items[i].DefaultValue)
			}
		}

	case *js_ast.BObject:
		for i := range b.Properties {
			if b.Properties[i].IsComputed {
				b.Properties[i].Key = h.visitExpr(b.Properties[i].Key)
			}
			h.visitBinding(b.Properties[i].Value)
			if b.Properties[i].DefaultValue != nil {
				*b.Properties[i].DefaultValue = h.visitExpr(*b.Properties[i].DefaultValue)
			}
		}
	}
}

func (h *hoister) visitFn(fn *js_ast.Fn) {
	h.fnDepth++
	for i := range fn.Args {
		h.visitBinding(fn.Args[i].Binding)
		if fn.Args[i].Default != nil {
			*fn.Args[i].Default = h.visitExpr(*fn.Args[i].Default)
		}
	}
	fn.Body.Stmts = h.stripDirectives(fn.Body.Stmts)
	for i := range fn.Body.Stmts {
		h.visitStmt(&fn.Body.Stmts[i])
	}
	h.fnDepth--
}

func (h *hoister) stripDirectives(stmts []js_ast.Stmt) []js_ast.Stmt {
	out := stmts[:0]
	for _, stmt := range stmts {
		if directive, ok := stmt.Data.(*js_ast.SDirective); ok && directive.Value == "use strict" {
			continue
		}
		out = append(out, stmt)
	}
	return out
}

func (h *hoister) visitClass(class *js_ast.Class) {
	if class.Extends != nil {
		*class.Extends = h.visitExpr(*class.Extends)
	}
	for i := range class.Properties {
		property := &class.Properties[i]
		if property.IsComputed {
			property.Key = h.visitExpr(property.Key)
		}
		if property.Value != nil {
			*property.Value = h.visitExpr(*property.Value)
		}
	}
}

func (h *hoister) visitExpr(expr js_ast.Expr) js_ast.Expr {
	switch e := expr.Data.(type) {
	case *js_ast.EBoolean, *js_ast.ENull, *js_ast.EUndefined,
		*js_ast.EMissing, *js_ast.ENumber, *js_ast.EString:
		return expr

	case *js_ast.EThis:
		if h.fnDepth == 0 && !h.shouldWrap {
			// Module-level "this" is the exports object in CommonJS and
			// undefined in an ES module
			if h.isCommonJS {
				return h.exportsIdent(expr.Loc)
			}
			return js_ast.Expr{Loc: expr.Loc, Data: &js_ast.EUndefined{}}
		}
		return expr

	case *js_ast.EIdentifier:
		if h.shouldWrap {
			return expr
		}
		symbol := h.tree.Symbol(e.Ref)
		if symbol.Kind == js_ast.SymbolUnbound {
			switch symbol.OriginalName {
			case "exports":
				h.isCommonJS = true
				return h.cjsExportsIdent(expr.Loc)
			case "global":
				return js_ast.Ident(expr.Loc, h.placeholderRef(placeholderGlobal))
			}
		}
		return expr

	case *js_ast.EUnary:
		if e.Op == js_ast.UnOpTypeof && !h.shouldWrap {
			if target, ok := e.Value.Data.(*js_ast.EIdentifier); ok {
				if h.tree.IsUnbound(target.Ref, "module") {
					return js_ast.Str(expr.Loc, "object")
				}
				if h.tree.IsUnbound(target.Ref, "require") {
					return js_ast.Str(expr.Loc, "function")
				}
			}
		}
		e.Value = h.visitExpr(e.Value)
		return expr

	case *js_ast.EBinary:
		return h.visitBinary(expr, e)

	case *js_ast.EDot:
		return h.visitMember(expr, e.Target, e.Name, false)

	case *js_ast.EIndex:
		if name, ok := js_ast.IsStringLiteral(e.Index); ok {
			return h.visitMember(expr, e.Target, name, true)
		}
		e.Target = h.visitExpr(e.Target)
		e.Index = h.visitExpr(e.Index)
		return expr

	case *js_ast.ECall:
		return h.visitCall(expr, e)

	case *js_ast.ENew:
		e.Target = h.visitExpr(e.Target)
		for i := range e.Args {
			e.Args[i] = h.visitExpr(e.Args[i])
		}
		return expr

	case *js_ast.EArray:
		for i := range e.Items {
			e.Items[i] = h.visitExpr(e.Items[i])
		}
		return expr

	case *js_ast.ESpread:
		e.Value = h.visitExpr(e.Value)
		return expr

	case *js_ast.EObject:
		for i := range e.Properties {
			property := &e.Properties[i]
			if property.IsComputed {
				property.Key = h.visitExpr(property.Key)
			}
			if property.Value != nil {
				*property.Value = h.visitExpr(*property.Value)
			}
		}
		return expr

	case *js_ast.EArrow:
		h.fnDepth++
		for i := range e.Args {
			h.visitBinding(e.Args[i].Binding)
			if e.Args[i].Default != nil {
				*e.Args[i].Default = h.visitExpr(*e.Args[i].Default)
			}
		}
		e.Body.Stmts = h.stripDirectives(e.Body.Stmts)
		for i := range e.Body.Stmts {
			h.visitStmt(&e.Body.Stmts[i])
		}
		h.fnDepth--
		return expr

	case *js_ast.EFunction:
		h.visitFn(&e.Fn)
		return expr

	case *js_ast.EClass:
		h.visitClass(&e.Class)
		return expr

	case *js_ast.EIf:
		e.Test = h.visitExpr(e.Test)
		h.condDepth++
		e.Yes = h.visitExpr(e.Yes)
		e.No = h.visitExpr(e.No)
		h.condDepth--
		return expr

	case *js_ast.EAwait:
		e.Value = h.visitExpr(e.Value)
		return expr

	case *js_ast.EImport:
		return h.visitDynamicImport(expr, e)

	default:
		return expr
	}
}

func (h *hoister) visitBinary(expr js_ast.Expr, e *js_ast.EBinary) js_ast.Expr {
	switch e.Op {
	case js_ast.BinOpLogicalAnd, js_ast.BinOpLogicalOr, js_ast.BinOpNullishCoalescing,
		js_ast.BinOpLogicalAndAssign, js_ast.BinOpLogicalOrAssign, js_ast.BinOpNullishCoalescingAssign:
		// The right side runs conditionally
		e.Left = h.visitExpr(e.Left)
		h.condDepth++
		e.Right = h.visitExpr(e.Right)
		h.condDepth--
		return expr

	case js_ast.BinOpAssign:
		// "({a} = await import('...'))"
		if pattern, ok := e.Left.Data.(*js_ast.EObject); ok {
			if replaced, handled := h.analyzeAwaitImportAssign(pattern, e.Right); handled {
				e.Right = replaced
				return expr
			}
		}

		if !h.shouldWrap {
			// "exports = value" rebinds the local exports variable
			if target, ok := e.Left.Data.(*js_ast.EIdentifier); ok && h.tree.IsUnbound(target.Ref, "exports") {
				h.isCommonJS = true
				h.cjsExportsReassigned = true
				e.Right = h.visitExpr(e.Right)
				e.Left = h.cjsExportsIdent(e.Left.Loc)
				return expr
			}

			// A nested "exports.foo = value" can't become a declaration, but
			// it can still write through the export binding
			if name, nameLoc, ok := h.exportAssignTarget(e.Left); ok && !h.cjsExportsReassigned {
				ref, first := h.cjsExportRef(name, nameLoc)
				if first {
					h.hoistedVars = append(h.hoistedVars,
						js_ast.VarDecl(e.Left.Loc, ref, nil),
						h.parcelExportStmt(e.Left.Loc, name, h.exportThunk(e.Left.Loc, ref)))
				}
				e.Right = h.visitExpr(e.Right)
				e.Left = js_ast.Ident(e.Left.Loc, ref)
				return expr
			}
		}
	}

	e.Left = h.visitExpr(e.Left)
	e.Right = h.visitExpr(e.Right)
	return expr
}

// visitMember handles "base.name" and base["name"] accesses
func (h *hoister) visitMember(expr js_ast.Expr, target js_ast.Expr, name string, isIndex bool) js_ast.Expr {
	// "module.bundle.root" collapses to the module registry
	if !h.shouldWrap && name == "root" && h.isModuleBundleAccess(target) {
		return js_ast.Ident(expr.Loc, h.placeholderRef(placeholderRegistry))
	}

	if base, ok := target.Data.(*js_ast.EIdentifier); ok {
		// Namespace imports whose members were statically resolved
		if members, hasRewrites := h.nsRewrites[base.Ref]; hasRewrites {
			if memberRef, okMember := members[name]; okMember {
				return js_ast.Ident(expr.Loc, memberRef)
			}
		}

		if !h.shouldWrap && h.tree.IsUnbound(base.Ref, "module") {
			switch name {
			case "exports":
				h.isCommonJS = true
				return h.exportsIdent(expr.Loc)
			case "id":
				return js_ast.Str(expr.Loc, h.asset.ID)
			case "hot":
				return js_ast.Expr{Loc: expr.Loc, Data: &js_ast.ENull{}}
			case "require":
				if !h.asset.Env.IsNode() {
					return js_ast.Expr{Loc: expr.Loc, Data: &js_ast.ENull{}}
				}
				return expr
			case "bundle":
				return js_ast.Ident(expr.Loc, h.placeholderRef(placeholderRegistry))
			default:
				return expr
			}
		}

		if !h.shouldWrap && h.tree.IsUnbound(base.Ref, "exports") {
			h.isCommonJS = true
			// A read through an already-allocated export binding uses the
			// binding; anything else reads off the exports object
			if ref, ok := h.cjsExportRefs[name]; ok && !h.cjsExportsReassigned {
				return js_ast.Ident(expr.Loc, ref)
			}
			return h.rebuildMember(expr, h.cjsExportsIdent(target.Loc), isIndex)
		}
	}

	// "module.exports.foo" reads rewrite their base to the exports object
	if !h.shouldWrap && h.isModuleExportsAccess(target) {
		h.isCommonJS = true
		if ref, ok := h.cjsExportRefs[name]; ok && !h.cjsExportsReassigned {
			return js_ast.Ident(expr.Loc, ref)
		}
		return h.rebuildMember(expr, h.exportsIdent(target.Loc), isIndex)
	}

	visited := h.visitExpr(target)
	return h.rebuildMember(expr, visited, isIndex)
}

func (h *hoister) rebuildMember(expr js_ast.Expr, newTarget js_ast.Expr, isIndex bool) js_ast.Expr {
	if isIndex {
		e := expr.Data.(*js_ast.EIndex)
		e.Target = newTarget
		return expr
	}
	e := expr.Data.(*js_ast.EDot)
	e.Target = newTarget
	return expr
}

// isModuleBundleAccess matches "module.bundle" where module is free
func (h *hoister) isModuleBundleAccess(expr js_ast.Expr) bool {
	switch e := expr.Data.(type) {
	case *js_ast.EDot:
		if base, ok := e.Target.Data.(*js_ast.EIdentifier); ok {
			return e.Name == "bundle" && h.tree.IsUnbound(base.Ref, "module")
		}
	case *js_ast.EIndex:
		if base, ok := e.Target.Data.(*js_ast.EIdentifier); ok {
			if name, isStr := js_ast.IsStringLiteral(e.Index); isStr {
				return name == "bundle" && h.tree.IsUnbound(base.Ref, "module")
			}
		}
	}
	return false
}
