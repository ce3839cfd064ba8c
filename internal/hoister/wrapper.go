package hoister

// The finalizer. A module that can't be statically rewritten gets its whole
// body wrapped in a closure that manufactures "exports" and
// "module.exports"; everything else gets its hoisted statements and any
// synthesized declarations stitched into the final body.

import (
	"github.com/gopackjs/gopack/internal/graph"
	"github.com/gopackjs/gopack/internal/js_ast"
	"github.com/gopackjs/gopack/internal/logger"
)

func (h *hoister) finalize() {
	if h.shouldWrap {
		h.wrapModule()
	} else {
		h.finishUnwrapped()
	}

	h.asset.Meta.Set("isCommonJS", h.isCommonJS)
	h.asset.Meta.Set("isES6Module", h.isES6Module)
	h.asset.Meta.Set("shouldWrap", h.shouldWrap)
}

func (h *hoister) finishUnwrapped() {
	// Catch bindings introduced since the first rename pass. Everything the
	// transform generates is already prefixed, so this only renames what
	// the body walk left behind.
	h.tree.ModuleScope.Crawl(h.tree)
	h.renameTopLevel()

	body := h.tree.Stmts
	final := make([]js_ast.Stmt, 0, len(body)+len(h.hoisted)+len(h.hoistedVars)+1)

	// The exports object must exist before any hoisted getter registration
	// or wildcard copy runs
	if h.exportsRefUsed {
		empty := js_ast.Expr{Data: &js_ast.EObject{}}
		final = append(final, js_ast.VarDecl(logger.Loc{}, h.exportsRef, &empty))
	}

	final = append(final, h.hoisted...)
	final = append(final, h.hoistedVars...)
	final = append(final, body...)
	h.tree.Stmts = final

	if h.isCommonJS {
		h.asset.Symbols.Set(graph.NamespaceSymbol, graph.SymbolEntry{Local: h.exportsName()})

		// When export resolution bailed out, individually tracked names are
		// meaningless; only the namespace survives
		if h.resolveExportsBailedOut {
			for _, exported := range h.asset.Symbols.ExportSymbols() {
				if exported != graph.NamespaceSymbol {
					h.asset.Symbols.Delete(exported)
				}
			}
		}
	}
}

// wrapModule replaces the program body with
//
//	var $id$exports = (function () {
//	  var exports = this;
//	  var module = {exports: this};
//	  <body>
//	  return module.exports;
//	}).call({});
//
// so the module's CommonJS constructs see a real exports/module pair.
// Hoisted requires stay above the wrapper so dependency side effects still
// run first.
func (h *hoister) wrapModule() {
	loc := logger.Loc{}
	body := h.tree.Stmts

	// The synthesized bindings are plain names on purpose: the original
	// body references them as free variables, and any $parcel$export
	// registrations emitted during the body walk already target this same
	// "exports" ref
	exportsRef := h.wrapExportsIdentRef()
	moduleRef := h.tree.NewSymbol(js_ast.SymbolHoisted, "module")
	h.tree.Symbol(moduleRef).MustNotBeRenamed = true

	if h.isES6Module {
		// Interop: tell consumers this namespace came from an ES module
		esModuleFlag := js_ast.AssignStmt(
			js_ast.Dot(js_ast.Ident(loc, exportsRef), "__esModule", loc),
			js_ast.Expr{Loc: loc, Data: &js_ast.EBoolean{Value: true}},
		)
		body = append([]js_ast.Stmt{esModuleFlag}, body...)
	}

	thisExpr := js_ast.Expr{Loc: loc, Data: &js_ast.EThis{}}
	moduleObject := js_ast.Expr{Loc: loc, Data: &js_ast.EObject{Properties: []js_ast.Property{{
		Key:   js_ast.Str(loc, "exports"),
		Value: &thisExpr,
	}}}}

	returnValue := js_ast.Dot(js_ast.Ident(loc, moduleRef), "exports", loc)
	inner := make([]js_ast.Stmt, 0, len(body)+3)
	inner = append(inner,
		js_ast.VarDecl(loc, exportsRef, &thisExpr),
		js_ast.VarDecl(loc, moduleRef, &moduleObject),
	)
	inner = append(inner, body...)
	inner = append(inner, js_ast.Stmt{Loc: loc, Data: &js_ast.SReturn{Value: &returnValue}})

	closure := js_ast.Expr{Loc: loc, Data: &js_ast.EFunction{Fn: js_ast.Fn{
		Body: js_ast.FnBody{Loc: loc, Stmts: inner},
	}}}
	emptyThis := js_ast.Expr{Loc: loc, Data: &js_ast.EObject{}}
	wrapped := js_ast.Call(js_ast.Dot(closure, "call", loc), emptyThis)

	if h.exportsRef == js_ast.InvalidRef {
		h.exportsRef = h.tree.DeclareGenerated(h.tree.ModuleScope, js_ast.SymbolOther, h.exportsName())
	}

	final := make([]js_ast.Stmt, 0, len(h.hoisted)+1)
	final = append(final, h.hoisted...)
	final = append(final, js_ast.VarDecl(loc, h.exportsRef, &wrapped))
	h.tree.Stmts = final

	h.asset.Symbols.Set(graph.NamespaceSymbol, graph.SymbolEntry{Local: h.exportsName()})
	h.isCommonJS = true
	h.isES6Module = false
}
