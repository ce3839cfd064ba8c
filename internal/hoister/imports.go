package hoister

// Static imports are replaced by hoisted $parcel$require placeholders and
// symbol-table entries on their dependencies. Dynamic import() and
// CommonJS require() share one call handler; dynamic imports additionally
// get a static analysis of their continuation so only the accessed members
// need to survive tree shaking.

import (
	"github.com/gopackjs/gopack/internal/graph"
	"github.com/gopackjs/gopack/internal/js_ast"
	"github.com/gopackjs/gopack/internal/logger"
)

// requireCall builds `$parcel$require(<assetId>, <source>)`
func (h *hoister) requireCall(loc logger.Loc, source string) js_ast.Expr {
	return js_ast.Call(
		js_ast.Ident(loc, h.placeholderRef(placeholderRequire)),
		js_ast.Str(loc, h.asset.ID),
		js_ast.Str(loc, source),
	)
}

// hoistImport rewrites one static import declaration
func (h *hoister) hoistImport(s *js_ast.SImport) {
	dep := h.asset.DependencyForSpecifier(s.Path)
	if dep == nil {
		h.panicWith(&DependencyInvariantError{Specifier: s.Path, Loc: s.PathLoc})
	}
	dep.Symbols.Ensure()

	if s.DefaultName != nil {
		h.importClauseSymbol(dep, "default", s.DefaultName.Ref, s.DefaultName.Loc, true)
	}
	for _, item := range s.Items {
		h.importClauseSymbol(dep, item.Alias, item.Name.Ref, item.AliasLoc, false)
	}
	if s.StarName != nil {
		h.importNamespace(dep, s.StarName)
	}

	// The dependency's side effects run before any local code; imports keep
	// their declaration order among themselves
	h.hoisted = append(h.hoisted, js_ast.ExprStmt(h.requireCall(s.PathLoc, s.Path)))
}

func (h *hoister) importClauseSymbol(dep *graph.Dependency, imported string, ref js_ast.Ref, loc logger.Loc, isDefault bool) {
	access := h.refAccess[ref]
	referenced := access != nil && access.count > 0

	// Unreferenced specifiers in third-party code aren't worth tracking
	if !referenced && !h.asset.IsSource {
		return
	}

	// Duplicate imports of the same name share one slot
	localName := ""
	if entry, ok := dep.Symbols.Get(imported); ok {
		localName = entry.Local
	} else {
		localName = h.importName(dep, h.originalName(ref))
	}

	// A symbol whose only use is a pass-through "export {x}" may be elided
	// by tree shaking
	isWeak := referenced && access.count == 1 && h.exportClauseRefs[ref]

	dep.Symbols.Set(imported, graph.SymbolEntry{Local: localName, Loc: loc, IsWeak: isWeak})
	if isDefault {
		dep.Meta.Set("hasDefaultImport", true)
	}

	h.tree.Rename(ref, localName)
}

// importNamespace handles "import * as ns". When every reference is a
// static member access the namespace object is never needed: each accessed
// member becomes its own import symbol and the references are rewritten
// during the body walk.
func (h *hoister) importNamespace(dep *graph.Dependency, star *js_ast.LocRef) {
	ref := star.Ref
	nsName := h.importName(dep, "")
	access := h.refAccess[ref]

	if access == nil || access.count == 0 {
		if !h.asset.IsSource {
			return
		}
		h.tree.Rename(ref, nsName)
		return
	}

	if access.hasNonMember {
		// The namespace object itself escapes; track the whole module
		dep.Symbols.Set(graph.NamespaceSymbol, graph.SymbolEntry{Local: nsName, Loc: star.Loc})
		h.tree.Rename(ref, nsName)
		return
	}

	members := make(map[string]js_ast.Ref, len(access.members))
	for _, m := range access.members {
		localName := ""
		if entry, ok := dep.Symbols.Get(m.name); ok {
			localName = entry.Local
		} else {
			localName = h.importName(dep, m.name)
		}
		dep.Symbols.Set(m.name, graph.SymbolEntry{Local: localName, Loc: m.loc})
		members[m.name] = h.tree.NewSymbol(js_ast.SymbolOther, localName)
	}
	h.nsRewrites[ref] = members
	h.tree.Rename(ref, nsName)
}

func (h *hoister) visitCall(expr js_ast.Expr, e *js_ast.ECall) js_ast.Expr {
	// "import(source).then(callback)"
	if dot, ok := e.Target.Data.(*js_ast.EDot); ok && dot.Name == "then" && len(e.Args) == 1 {
		if imp, isImport := dot.Target.Data.(*js_ast.EImport); isImport {
			if source, isStr := js_ast.IsStringLiteral(imp.Expr); isStr {
				if dep := h.asset.DependencyForSpecifier(source); dep != nil {
					dep.Symbols.Ensure()
					if !h.analyzeThenCallback(dep, e.Args[0]) {
						h.asyncFallback(dep, source, dot.Target.Loc)
					}
					dot.Target = h.requireCall(dot.Target.Loc, source)
					e.Args[0] = h.visitExpr(e.Args[0])
					return expr
				}
			}
		}
	}

	// "require.resolve(source)"
	if dot, ok := e.Target.Data.(*js_ast.EDot); ok && dot.Name == "resolve" && len(e.Args) == 1 {
		if base, isIdent := dot.Target.Data.(*js_ast.EIdentifier); isIdent && h.tree.IsUnbound(base.Ref, "require") {
			if source, isStr := js_ast.IsStringLiteral(e.Args[0]); isStr {
				if dep := h.asset.DependencyForSpecifier(source); dep != nil {
					return js_ast.Call(
						js_ast.Ident(expr.Loc, h.placeholderRef(placeholderRequireResolve)),
						js_ast.Str(expr.Loc, h.asset.ID),
						js_ast.Str(expr.Loc, source),
					)
				}
			}
			// An unknown specifier is intentionally left alone
			return expr
		}
	}

	// "require(source)"
	if base, ok := e.Target.Data.(*js_ast.EIdentifier); ok && h.tree.IsUnbound(base.Ref, "require") && len(e.Args) == 1 {
		if source, isStr := js_ast.IsStringLiteral(e.Args[0]); isStr {
			dep := h.asset.DependencyForSpecifier(source)
			if dep == nil {
				// An unknown specifier is intentionally left alone
				return expr
			}

			if !dep.IsAsync {
				h.isCommonJS = true
			}

			// A require whose call order isn't statically determined forces
			// the required module to manage its own execution, so it must
			// be wrapped
			if !h.isTopLevelCall() {
				dep.Meta.Set("shouldWrap", true)
				h.result.WrapRequests = append(h.result.WrapRequests, WrapRequest{
					Specifier: dep.ModuleSpecifier,
					Loc:       expr.Loc,
				})
			}

			return h.requireCall(expr.Loc, source)
		}
		return expr
	}

	e.Target = h.visitExpr(e.Target)
	for i := range e.Args {
		e.Args[i] = h.visitExpr(e.Args[i])
	}
	return expr
}

// visitDynamicImport is the fallback for an import() whose continuation
// wasn't statically analyzable: the whole namespace is kept alive.
func (h *hoister) visitDynamicImport(expr js_ast.Expr, e *js_ast.EImport) js_ast.Expr {
	e.Expr = h.visitExpr(e.Expr)

	source, ok := js_ast.IsStringLiteral(e.Expr)
	if !ok {
		return expr
	}
	dep := h.asset.DependencyForSpecifier(source)
	if dep == nil {
		return expr
	}

	dep.Symbols.Ensure()
	h.asyncFallback(dep, source, expr.Loc)
	return h.requireCall(expr.Loc, source)
}

func (h *hoister) asyncFallback(dep *graph.Dependency, source string, loc logger.Loc) {
	dep.Meta.Set("isCommonJS", true)
	dep.Symbols.Ensure()
	if !dep.Symbols.HasExportSymbol(graph.NamespaceSymbol) {
		dep.Symbols.Set(graph.NamespaceSymbol, graph.SymbolEntry{Local: h.requireName(source), Loc: loc})
	}
}

// analyzeThenCallback extracts the accessed members from the continuation
// of "import(source).then(callback)"
func (h *hoister) analyzeThenCallback(dep *graph.Dependency, callback js_ast.Expr) bool {
	var args []js_ast.Arg
	switch fn := callback.Data.(type) {
	case *js_ast.EArrow:
		args = fn.Args
	case *js_ast.EFunction:
		args = fn.Fn.Args
	default:
		return false
	}
	if len(args) != 1 || args[0].Default != nil {
		return false
	}

	switch binding := args[0].Binding.Data.(type) {
	case *js_ast.BObject:
		// "import(s).then(({a, b}) => ...)"
		return h.registerAsyncPattern(dep, binding)
	case *js_ast.BIdentifier:
		// "import(s).then(ns => ...)"
		return h.registerAsyncNamespace(dep, binding.Ref)
	}
	return false
}

// analyzeAwaitImportBinding handles "let {a, b} = await import(s)" and
// "let ns = await import(s)". It returns the rewritten initializer when the
// declaration matched one of those shapes.
func (h *hoister) analyzeAwaitImportBinding(binding js_ast.Binding, value js_ast.Expr) (js_ast.Expr, bool) {
	await, ok := value.Data.(*js_ast.EAwait)
	if !ok {
		return value, false
	}
	imp, ok := await.Value.Data.(*js_ast.EImport)
	if !ok {
		return value, false
	}
	source, ok := js_ast.IsStringLiteral(imp.Expr)
	if !ok {
		return value, false
	}
	dep := h.asset.DependencyForSpecifier(source)
	if dep == nil {
		return value, false
	}
	dep.Symbols.Ensure()

	analyzed := false
	switch b := binding.Data.(type) {
	case *js_ast.BObject:
		analyzed = h.registerAsyncPattern(dep, b)
	case *js_ast.BIdentifier:
		analyzed = h.registerAsyncNamespace(dep, b.Ref)
	}
	if !analyzed {
		h.asyncFallback(dep, source, imp.Expr.Loc)
	}

	await.Value = h.requireCall(await.Value.Loc, source)
	return value, true
}

// analyzeAwaitImportAssign handles "({a} = await import(s))"
func (h *hoister) analyzeAwaitImportAssign(pattern *js_ast.EObject, right js_ast.Expr) (js_ast.Expr, bool) {
	await, ok := right.Data.(*js_ast.EAwait)
	if !ok {
		return right, false
	}
	imp, ok := await.Value.Data.(*js_ast.EImport)
	if !ok {
		return right, false
	}
	source, ok := js_ast.IsStringLiteral(imp.Expr)
	if !ok {
		return right, false
	}
	dep := h.asset.DependencyForSpecifier(source)
	if dep == nil {
		return right, false
	}
	dep.Symbols.Ensure()

	type member struct {
		name string
		ref  js_ast.Ref
		loc  logger.Loc
	}
	members := []member{}
	simple := true
	for i := range pattern.Properties {
		property := &pattern.Properties[i]
		if property.IsComputed || property.Kind != js_ast.PropertyNormal || property.Value == nil {
			simple = false
			break
		}
		key, isStr := property.Key.Data.(*js_ast.EString)
		if !isStr || !js_ast.IsIdentifier(key.Value) {
			simple = false
			break
		}
		ident, isIdent := property.Value.Data.(*js_ast.EIdentifier)
		if !isIdent {
			simple = false
			break
		}
		symbol := h.tree.Symbol(ident.Ref)
		if symbol.Kind == js_ast.SymbolUnbound {
			simple = false
			break
		}
		members = append(members, member{name: key.Value, ref: ident.Ref, loc: property.Key.Loc})
	}

	if simple {
		for _, m := range members {
			localName := ""
			if entry, ok := dep.Symbols.Get(m.name); ok {
				localName = entry.Local
			} else {
				localName = h.importAsyncName(dep, m.name)
			}
			dep.Symbols.Set(m.name, graph.SymbolEntry{Local: localName, Loc: m.loc})
			h.tree.Rename(m.ref, localName)
		}
	} else {
		h.asyncFallback(dep, source, imp.Expr.Loc)
	}

	await.Value = h.requireCall(await.Value.Loc, source)
	return right, true
}

// registerAsyncPattern records one importAsync symbol per destructured
// member and renames the pattern bindings to match
func (h *hoister) registerAsyncPattern(dep *graph.Dependency, pattern *js_ast.BObject) bool {
	type member struct {
		name string
		ref  js_ast.Ref
		loc  logger.Loc
	}
	members := []member{}

	for i := range pattern.Properties {
		property := &pattern.Properties[i]
		if property.IsComputed || property.IsSpread {
			return false
		}
		key, isStr := property.Key.Data.(*js_ast.EString)
		if !isStr || !js_ast.IsIdentifier(key.Value) {
			return false
		}
		ident, isIdent := property.Value.Data.(*js_ast.BIdentifier)
		if !isIdent {
			return false
		}
		members = append(members, member{name: key.Value, ref: ident.Ref, loc: property.Key.Loc})
	}

	for _, m := range members {
		localName := ""
		if entry, ok := dep.Symbols.Get(m.name); ok {
			localName = entry.Local
		} else {
			localName = h.importAsyncName(dep, m.name)
		}
		dep.Symbols.Set(m.name, graph.SymbolEntry{Local: localName, Loc: m.loc})
		h.tree.Rename(m.ref, localName)
	}
	return true
}

// registerAsyncNamespace statically extracts the members accessed off a
// namespace binding. This only applies when the binding is constant, every
// reference is a static member access, and the module isn't being wrapped;
// a wrapped module might reach the namespace through eval.
func (h *hoister) registerAsyncNamespace(dep *graph.Dependency, ref js_ast.Ref) bool {
	if h.shouldWrap {
		return false
	}
	if h.tree.Symbol(ref).IsReassigned {
		return false
	}

	access := h.refAccess[ref]
	if access == nil || access.count == 0 {
		// An unused namespace needs no symbols at all
		return true
	}
	if access.hasNonMember {
		return false
	}

	members := make(map[string]js_ast.Ref, len(access.members))
	for _, m := range access.members {
		localName := ""
		if entry, ok := dep.Symbols.Get(m.name); ok {
			localName = entry.Local
		} else {
			localName = h.importAsyncName(dep, m.name)
		}
		dep.Symbols.Set(m.name, graph.SymbolEntry{Local: localName, Loc: m.loc})
		members[m.name] = h.tree.NewSymbol(js_ast.SymbolOther, localName)
	}
	h.nsRewrites[ref] = members
	return true
}
