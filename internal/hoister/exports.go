package hoister

// Export declarations are replaced by plain declarations with module-unique
// names, a $parcel$export registration per exported name, and symbol-table
// entries. Re-exports additionally populate the dependency's table with
// weak symbols so tree shaking can drop pass-throughs.

import (
	"strings"

	"github.com/gopackjs/gopack/internal/graph"
	"github.com/gopackjs/gopack/internal/js_ast"
	"github.com/gopackjs/gopack/internal/logger"
)

// hoistExportDefault rewrites "export default ..."
func (h *hoister) hoistExportDefault(loc logger.Loc, s *js_ast.SExportDefault, body []js_ast.Stmt) []js_ast.Stmt {
	identifier := h.exportName("default")
	ref := js_ast.InvalidRef

	switch {
	case s.Value.Expr != nil:
		value := h.visitExpr(*s.Value.Expr)

		if ident, ok := value.Data.(*js_ast.EIdentifier); ok &&
			h.tree.Symbol(ident.Ref).Kind != js_ast.SymbolUnbound {
			// The default value is an existing binding; rename it and drop
			// the declaration
			ref, body = h.safeRename(ident.Ref, identifier, body)
		} else {
			// An anonymous expression becomes "var <identifier> = <value>;"
			ref = h.tree.DeclareGenerated(h.tree.ModuleScope, js_ast.SymbolOther, identifier)
			body = append(body, js_ast.VarDecl(loc, ref, &value))
		}

	case s.Value.Stmt != nil:
		switch st := s.Value.Stmt.Data.(type) {
		case *js_ast.SFunction:
			h.visitFn(&st.Fn)
			if st.Fn.Name != nil {
				// A named declaration that's already exported under its own
				// name keeps that name
				currentName := h.tree.Symbol(st.Fn.Name.Ref).OriginalName
				if h.asset.Symbols.HasLocalSymbol(currentName) {
					identifier = currentName
				}
				body = append(body, *s.Value.Stmt)
				ref, body = h.safeRename(st.Fn.Name.Ref, identifier, body)
			} else {
				fnValue := js_ast.Expr{Loc: s.Value.Stmt.Loc, Data: &js_ast.EFunction{Fn: st.Fn}}
				ref = h.tree.DeclareGenerated(h.tree.ModuleScope, js_ast.SymbolOther, identifier)
				body = append(body, js_ast.VarDecl(loc, ref, &fnValue))
			}

		case *js_ast.SClass:
			h.visitClass(&st.Class)
			if st.Class.Name != nil {
				currentName := h.tree.Symbol(st.Class.Name.Ref).OriginalName
				if h.asset.Symbols.HasLocalSymbol(currentName) {
					identifier = currentName
				}
				body = append(body, *s.Value.Stmt)
				ref, body = h.safeRename(st.Class.Name.Ref, identifier, body)
			} else {
				classValue := js_ast.Expr{Loc: s.Value.Stmt.Loc, Data: &js_ast.EClass{Class: st.Class}}
				ref = h.tree.DeclareGenerated(h.tree.ModuleScope, js_ast.SymbolOther, identifier)
				body = append(body, js_ast.VarDecl(loc, ref, &classValue))
			}

		default:
			h.panicWith(&UnknownExportConstructError{Loc: loc})
		}

	default:
		h.panicWith(&UnknownExportConstructError{Loc: loc})
	}

	body = append(body, h.parcelExportStmt(loc, "default", h.exportThunk(loc, ref)))

	if !h.asset.Symbols.HasExportSymbol("default") {
		h.asset.Symbols.Set("default", graph.SymbolEntry{
			Local: h.tree.Symbol(ref).OriginalName,
			Loc:   loc,
		})
	}
	return body
}

// hoistExportLocal rewrites "export const x = ..." (and let/var)
func (h *hoister) hoistExportLocal(loc logger.Loc, s *js_ast.SLocal, body []js_ast.Stmt) []js_ast.Stmt {
	s.IsExport = false
	h.visitLocal(s)
	body = append(body, js_ast.Stmt{Loc: loc, Data: s})

	for i := range s.Decls {
		body = h.exportDeclaredBindings(loc, s.Decls[i].Binding, body)
	}
	return body
}

func (h *hoister) exportDeclaredBindings(loc logger.Loc, binding js_ast.Binding, body []js_ast.Stmt) []js_ast.Stmt {
	switch b := binding.Data.(type) {
	case *js_ast.BIdentifier:
		body = h.exportBinding(loc, b.Ref, h.originalName(b.Ref), body)

	case *js_ast.BArray:
		for i := range b.Items {
			body = h.exportDeclaredBindings(loc, b.Items[i].Binding, body)
		}

	case *js_ast.BObject:
		for i := range b.Properties {
			body = h.exportDeclaredBindings(loc, b.Properties[i].Value, body)
		}
	}
	return body
}

func (h *hoister) hoistExportFunction(loc logger.Loc, s *js_ast.SFunction, body []js_ast.Stmt) []js_ast.Stmt {
	s.IsExport = false
	h.visitFn(&s.Fn)
	body = append(body, js_ast.Stmt{Loc: loc, Data: s})
	return h.exportBinding(loc, s.Fn.Name.Ref, h.originalName(s.Fn.Name.Ref), body)
}

func (h *hoister) hoistExportClass(loc logger.Loc, s *js_ast.SClass, body []js_ast.Stmt) []js_ast.Stmt {
	s.IsExport = false
	h.visitClass(&s.Class)
	body = append(body, js_ast.Stmt{Loc: loc, Data: s})
	return h.exportBinding(loc, s.Class.Name.Ref, h.originalName(s.Class.Name.Ref), body)
}

// exportBinding renames a declared local to its export identifier,
// registers the getter, and records the symbol
func (h *hoister) exportBinding(loc logger.Loc, ref js_ast.Ref, exported string, body []js_ast.Stmt) []js_ast.Stmt {
	localName := h.exportName(exported)
	if entry, ok := h.asset.Symbols.Get(exported); ok {
		localName = entry.Local
	}

	h.tree.Rename(ref, localName)
	body = append(body, h.parcelExportStmt(loc, exported, h.exportThunk(loc, ref)))

	if !h.asset.Symbols.HasExportSymbol(exported) {
		h.asset.Symbols.Set(exported, graph.SymbolEntry{Local: localName, Loc: loc})
	}
	return body
}

// hoistExportClause rewrites "export {x, y as z}"
func (h *hoister) hoistExportClause(loc logger.Loc, s *js_ast.SExportClause, body []js_ast.Stmt) []js_ast.Stmt {
	for _, item := range s.Items {
		ref := item.Name.Ref
		exported := item.Alias
		symbol := h.tree.Symbol(ref)
		if symbol.Kind == js_ast.SymbolUnbound {
			// The AST producer let an undeclared name through; skip it
			continue
		}

		localName := ""
		switch {
		case h.asset.Symbols.HasExportSymbol(exported):
			entry, _ := h.asset.Symbols.Get(exported)
			localName = entry.Local

		case strings.HasPrefix(symbol.OriginalName, h.assetPrefix()+"$import"):
			// A pass-through re-export of an import keeps the import's name
			localName = symbol.OriginalName

		default:
			localName = h.exportName(exported)
			ref, body = h.safeRename(ref, localName, body)
		}

		if !h.asset.Symbols.HasExportSymbol(exported) {
			h.asset.Symbols.Set(exported, graph.SymbolEntry{Local: localName, Loc: item.AliasLoc})
		}
		body = append(body, h.parcelExportStmt(loc, exported, h.exportThunk(loc, ref)))
	}
	return body
}

// hoistExportFrom rewrites "export {x as y} from 'path'"
func (h *hoister) hoistExportFrom(loc logger.Loc, s *js_ast.SExportFrom, body []js_ast.Stmt) []js_ast.Stmt {
	dep := h.asset.DependencyForSpecifier(s.Path)
	if dep == nil {
		h.panicWith(&DependencyInvariantError{Specifier: s.Path, Loc: s.PathLoc})
	}
	dep.Symbols.Ensure()

	for _, item := range s.Items {
		imported := item.OriginalName
		exported := item.Alias

		localName := ""
		if entry, ok := dep.Symbols.Get(imported); ok {
			localName = entry.Local
		} else {
			localName = h.importName(dep, imported)
		}

		dep.Symbols.Set(imported, graph.SymbolEntry{Local: localName, Loc: item.AliasLoc, IsWeak: true})
		if !h.asset.Symbols.HasExportSymbol(exported) {
			h.asset.Symbols.Set(exported, graph.SymbolEntry{Local: localName, Loc: item.AliasLoc})
		}

		importRef := h.tree.NewSymbol(js_ast.SymbolOther, localName)
		body = append(body, h.parcelExportStmt(loc, exported, js_ast.Ident(loc, importRef)))
	}

	h.hoisted = append(h.hoisted, js_ast.ExprStmt(h.requireCall(s.PathLoc, s.Path)))
	return body
}

// hoistExportStar rewrites "export * from 'path'" and
// "export * as ns from 'path'"
func (h *hoister) hoistExportStar(loc logger.Loc, s *js_ast.SExportStar, body []js_ast.Stmt) []js_ast.Stmt {
	dep := h.asset.DependencyForSpecifier(s.Path)
	if dep == nil {
		h.panicWith(&DependencyInvariantError{Specifier: s.Path, Loc: s.PathLoc})
	}
	dep.Symbols.Ensure()

	if s.Alias != nil {
		localName := h.importName(dep, "")
		if entry, ok := dep.Symbols.Get(graph.NamespaceSymbol); ok && entry.Local != graph.NamespaceSymbol {
			localName = entry.Local
		}

		dep.Symbols.Set(graph.NamespaceSymbol, graph.SymbolEntry{Local: localName, Loc: s.Alias.Loc, IsWeak: true})
		if !h.asset.Symbols.HasExportSymbol(s.Alias.Name) {
			h.asset.Symbols.Set(s.Alias.Name, graph.SymbolEntry{Local: localName, Loc: s.Alias.Loc})
		}

		importRef := h.tree.NewSymbol(js_ast.SymbolOther, localName)
		body = append(body, h.parcelExportStmt(loc, s.Alias.Name, js_ast.Ident(loc, importRef)))
		h.hoisted = append(h.hoisted, js_ast.ExprStmt(h.requireCall(s.PathLoc, s.Path)))
		return body
	}

	// A wildcard re-export copies keys at runtime. The emitted statement
	// stays in source-relative order among the other hoisted imports. When
	// the module is wrapped it must run inside the closure instead, where
	// the synthesized exports object exists.
	dep.Symbols.Set(graph.NamespaceSymbol, graph.SymbolEntry{Local: graph.NamespaceSymbol, Loc: s.PathLoc, IsWeak: true})
	wildcard := js_ast.Call(
		js_ast.Ident(loc, h.placeholderRef(placeholderExportWildcard)),
		h.exportsObjectIdent(loc),
		h.requireCall(s.PathLoc, s.Path),
	)
	if h.shouldWrap {
		return append(body, js_ast.ExprStmt(wildcard))
	}
	h.hoisted = append(h.hoisted, js_ast.ExprStmt(wildcard))
	return body
}
