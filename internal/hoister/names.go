package hoister

// Every name this transform generates is derived from the asset's identity
// so concatenated modules can't collide:
//
//	$<assetId>$exports            the module's export namespace object
//	$<assetId>$cjs_exports        the rebindable local "exports" variable
//	$<assetId>$export$<name>      one exported binding
//	$<assetId>$import$<depId>     a whole imported namespace
//	$<assetId>$import$<depId>$<name>
//	$<assetId>$importAsync$<depId>$<name>
//	$<assetId>$require$<source>   the catch-all for an unanalyzable import()
//	$<assetId>$var$<name>         any other top-level binding
//
// The only other names introduced are the fixed runtime placeholders
// defined in internal/runtime.

import (
	"github.com/gopackjs/gopack/internal/graph"
	"github.com/gopackjs/gopack/internal/logger"
	"github.com/gopackjs/gopack/internal/js_ast"
)

const (
	placeholderRequire        = "$parcel$require"
	placeholderRequireResolve = "$parcel$require$resolve"
	placeholderExport         = "$parcel$export"
	placeholderExportWildcard = "$parcel$exportWildcard"
	placeholderGlobal         = "$parcel$global"
	placeholderRegistry       = "parcelRequire"
)

func (h *hoister) assetPrefix() string {
	return "$" + js_ast.ForceValidIdentifier(h.asset.ID)
}

func (h *hoister) exportsName() string {
	return h.assetPrefix() + "$exports"
}

func (h *hoister) cjsExportsName() string {
	return h.assetPrefix() + "$cjs_exports"
}

func (h *hoister) exportName(exported string) string {
	return h.assetPrefix() + "$export$" + js_ast.ForceValidIdentifier(exported)
}

func (h *hoister) importName(dep *graph.Dependency, local string) string {
	name := h.assetPrefix() + "$import$" + js_ast.ForceValidIdentifier(dep.ID)
	if local != "" {
		name += "$" + js_ast.ForceValidIdentifier(local)
	}
	return name
}

func (h *hoister) importAsyncName(dep *graph.Dependency, member string) string {
	return h.assetPrefix() + "$importAsync$" + js_ast.ForceValidIdentifier(dep.ID) + "$" + js_ast.ForceValidIdentifier(member)
}

func (h *hoister) requireName(source string) string {
	return h.assetPrefix() + "$require$" + js_ast.ForceValidIdentifier(source)
}

func (h *hoister) varName(original string) string {
	return h.assetPrefix() + "$var$" + original
}

// placeholderRef returns the shared unbound symbol for a runtime
// placeholder name
func (h *hoister) placeholderRef(name string) js_ast.Ref {
	if ref, ok := h.placeholderRefs[name]; ok {
		return ref
	}
	ref := h.tree.NewSymbol(js_ast.SymbolUnbound, name)
	h.tree.Symbol(ref).MustNotBeRenamed = true
	h.placeholderRefs[name] = ref
	return ref
}

// exportsIdent returns an identifier for the module's exports object,
// creating the binding lazily. The declaration itself is emitted by the
// finalizer when the binding turned out to be used.
func (h *hoister) exportsIdent(loc logger.Loc) js_ast.Expr {
	h.exportsRefUsed = true
	if h.exportsRef == js_ast.InvalidRef {
		h.exportsRef = h.tree.DeclareGenerated(h.tree.ModuleScope, js_ast.SymbolOther, h.exportsName())
	}
	return js_ast.Ident(loc, h.exportsRef)
}

// wrapExportsIdentRef returns the ref for the wrapper closure's synthesized
// local "exports" binding, creating it on first use. wrapModule declares it
// with "var exports = this;".
func (h *hoister) wrapExportsIdentRef() js_ast.Ref {
	if h.wrapExportsRef == js_ast.InvalidRef {
		h.wrapExportsRef = h.tree.NewSymbol(js_ast.SymbolHoisted, "exports")
		h.tree.Symbol(h.wrapExportsRef).MustNotBeRenamed = true
	}
	return h.wrapExportsRef
}

// exportsObjectIdent is the expression export registrations target: the
// asset-level exports object normally, or the wrapper's local "exports"
// when the module body is about to be closed over. The asset-level binding
// is initialized by the closure's return value, so referencing it from
// inside the closure would read undefined.
func (h *hoister) exportsObjectIdent(loc logger.Loc) js_ast.Expr {
	if h.shouldWrap {
		return js_ast.Ident(loc, h.wrapExportsIdentRef())
	}
	return h.exportsIdent(loc)
}

// cjsExportsIdent is the identifier the local "exports" variable rewrites
// to: the exports object itself until "exports" has been reassigned, then a
// separate rebindable binding
func (h *hoister) cjsExportsIdent(loc logger.Loc) js_ast.Expr {
	if !h.cjsExportsReassigned {
		return h.exportsIdent(loc)
	}
	if h.cjsExportsRef == js_ast.InvalidRef {
		h.cjsExportsRef = h.tree.DeclareGenerated(h.tree.ModuleScope, js_ast.SymbolOther, h.cjsExportsName())
		h.hoistedVars = append(h.hoistedVars, js_ast.VarDecl(loc, h.cjsExportsRef, nil))
	}
	return js_ast.Ident(loc, h.cjsExportsRef)
}

// renameTopLevel renames every module-scope binding that doesn't already
// carry the asset prefix. References follow automatically because names
// live on symbols, not in the tree.
func (h *hoister) renameTopLevel() {
	prefix := h.assetPrefix()
	scope := h.tree.ModuleScope

	for _, member := range scope.Members {
		symbol := h.tree.Symbol(member.Ref)
		if symbol.Kind == js_ast.SymbolUnbound || symbol.MustNotBeRenamed {
			continue
		}
		if len(symbol.OriginalName) >= len(prefix) && symbol.OriginalName[:len(prefix)] == prefix {
			continue
		}
		h.originalNames[member.Ref] = symbol.OriginalName
		h.tree.Rename(member.Ref, h.varName(symbol.OriginalName))
	}

	scope.Crawl(h.tree)
}

// safeRename renames a binding to a generated name. A binding that is
// written to after its declaration keeps its declaration and gets an alias
// instead, preserving observable behavior at the cost of one extra binding.
// The returned ref and statement list are what the caller should reference
// and emit.
func (h *hoister) safeRename(ref js_ast.Ref, name string, body []js_ast.Stmt) (js_ast.Ref, []js_ast.Stmt) {
	symbol := h.tree.Symbol(ref)
	if !symbol.IsReassigned {
		h.originalNames[ref] = h.originalName(ref)
		h.tree.Rename(ref, name)
		return ref, body
	}

	aliasRef := h.tree.DeclareGenerated(h.tree.ModuleScope, js_ast.SymbolOther, name)
	fromLoc := logger.Loc{}
	body = append(body, js_ast.VarDecl(fromLoc, aliasRef, &js_ast.Expr{Loc: fromLoc, Data: &js_ast.EIdentifier{Ref: ref}}))
	return aliasRef, body
}
