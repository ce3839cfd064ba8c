package hoister

// Static "exports.foo = ..." and "module.exports.foo = ..." assignments
// become ES-shaped exports: a module-unique binding, a live getter
// registered through $parcel$export, and a symbol-table entry. Assignments
// the packager can't track statically were already flagged by the pre-scan.

import (
	"github.com/gopackjs/gopack/internal/graph"
	"github.com/gopackjs/gopack/internal/js_ast"
	"github.com/gopackjs/gopack/internal/logger"
)

// exportAssignTarget matches the left side of "exports.K = ..." and
// "module.exports.K = ..." with a static K and free exports/module
func (h *hoister) exportAssignTarget(left js_ast.Expr) (string, logger.Loc, bool) {
	var base js_ast.Expr
	var name string
	var nameLoc logger.Loc

	switch e := left.Data.(type) {
	case *js_ast.EDot:
		base = e.Target
		name = e.Name
		nameLoc = e.NameLoc
	case *js_ast.EIndex:
		str, ok := js_ast.IsStringLiteral(e.Index)
		if !ok {
			return "", logger.Loc{}, false
		}
		base = e.Target
		name = str
		nameLoc = e.Index.Loc
	default:
		return "", logger.Loc{}, false
	}

	if ident, ok := base.Data.(*js_ast.EIdentifier); ok && h.tree.IsUnbound(ident.Ref, "exports") {
		return name, nameLoc, true
	}
	if h.isModuleExportsAccess(base) {
		return name, nameLoc, true
	}
	return "", logger.Loc{}, false
}

// cjsExportRef allocates (or reuses) the export binding for an exported
// name and records the symbol
func (h *hoister) cjsExportRef(name string, loc logger.Loc) (js_ast.Ref, bool) {
	h.isCommonJS = true

	if ref, ok := h.cjsExportRefs[name]; ok {
		return ref, false
	}

	localName := h.exportName(name)

	// Reuse the local an earlier ES export already allocated for this name
	if entry, ok := h.asset.Symbols.Get(name); ok && name != "default" && name != graph.NamespaceSymbol {
		localName = entry.Local
	}

	ref := h.tree.DeclareGenerated(h.tree.ModuleScope, js_ast.SymbolOther, localName)
	h.cjsExportRefs[name] = ref

	if name != "default" && name != graph.NamespaceSymbol {
		if !h.asset.Symbols.HasExportSymbol(name) {
			h.asset.Symbols.Set(name, graph.SymbolEntry{Local: localName, Loc: loc})
		}
	}
	return ref, true
}

// hoistExportAssign turns a whole-statement first assignment into a
// declaration plus getter registration:
//
//	exports.foo = 1;
//
// becomes
//
//	var $id$export$foo = 1;
//	$parcel$export($id$exports, "foo", function () { return $id$export$foo; });
//
// Later assignments write through the binding instead.
func (h *hoister) hoistExportAssign(loc logger.Loc, s *js_ast.SExpr, body []js_ast.Stmt) ([]js_ast.Stmt, bool) {
	if h.shouldWrap || h.cjsExportsReassigned {
		return body, false
	}

	assign, ok := s.Value.Data.(*js_ast.EBinary)
	if !ok || assign.Op != js_ast.BinOpAssign {
		return body, false
	}

	name, nameLoc, ok := h.exportAssignTarget(assign.Left)
	if !ok {
		return body, false
	}

	ref, first := h.cjsExportRef(name, nameLoc)
	value := h.visitExpr(assign.Right)

	if first {
		body = append(body,
			js_ast.VarDecl(loc, ref, &value),
			h.parcelExportStmt(loc, name, h.exportThunk(loc, ref)))
		return body, true
	}

	body = append(body, js_ast.AssignStmt(js_ast.Ident(assign.Left.Loc, ref), value))
	return body, true
}

// parcelExportStmt builds `$parcel$export(<exports>, "<name>", <value>);`
func (h *hoister) parcelExportStmt(loc logger.Loc, name string, value js_ast.Expr) js_ast.Stmt {
	call := js_ast.Call(
		js_ast.Ident(loc, h.placeholderRef(placeholderExport)),
		h.exportsObjectIdent(loc),
		js_ast.Str(loc, name),
		value,
	)
	return js_ast.ExprStmt(call)
}

// exportThunk builds `function () { return <ref>; }`, the live-getter body
// registered for an export
func (h *hoister) exportThunk(loc logger.Loc, ref js_ast.Ref) js_ast.Expr {
	value := js_ast.Ident(loc, ref)
	return js_ast.Expr{Loc: loc, Data: &js_ast.EFunction{Fn: js_ast.Fn{
		Body: js_ast.FnBody{
			Loc:   loc,
			Stmts: []js_ast.Stmt{{Loc: loc, Data: &js_ast.SReturn{Value: &value}}},
		},
	}}}
}
