package js_parser

// The bind phase re-walks the parsed tree and resolves every deferred
// identifier reference to a real symbol Ref, creating one shared unbound
// symbol per free name. It also counts symbol uses and flags bindings that
// are written to after their declaration, which the hoisting pass needs for
// its rename-safety checks.

import (
	"github.com/gopackjs/gopack/internal/js_ast"
)

type binder struct {
	p       *parser
	tree    *js_ast.AST
	scope   *js_ast.Scope
	unbound map[string]js_ast.Ref
}

func bind(p *parser, tree *js_ast.AST) {
	b := &binder{
		p:       p,
		tree:    tree,
		scope:   tree.ModuleScope,
		unbound: make(map[string]js_ast.Ref),
	}
	b.bindStmts(tree.Stmts)
}

func (b *binder) resolve(ref js_ast.Ref, isAssign bool) js_ast.Ref {
	if ref.InnerIndex&unresolvedNameFlag == 0 {
		return ref
	}
	name := b.p.allocatedNames[ref.InnerIndex&^unresolvedNameFlag]

	for scope := b.scope; scope != nil; scope = scope.Parent {
		if member, ok := scope.Members[name]; ok {
			symbol := b.tree.Symbol(member.Ref)
			symbol.UseCountEstimate++
			if isAssign && symbol.Kind != js_ast.SymbolUnbound {
				symbol.IsReassigned = true
			}
			return member.Ref
		}
	}

	// One shared symbol per free name
	unboundRef, ok := b.unbound[name]
	if !ok {
		unboundRef = b.tree.NewSymbol(js_ast.SymbolUnbound, name)
		b.unbound[name] = unboundRef
	}
	b.tree.Symbol(unboundRef).UseCountEstimate++
	return unboundRef
}

func (b *binder) bindStmts(stmts []js_ast.Stmt) {
	for i := range stmts {
		b.bindStmt(&stmts[i])
	}
}

func (b *binder) bindStmt(stmt *js_ast.Stmt) {
	switch s := stmt.Data.(type) {
	case *js_ast.SEmpty, *js_ast.SDebugger, *js_ast.SDirective, *js_ast.SBreak,
		*js_ast.SContinue, *js_ast.SImport, *js_ast.SExportFrom, *js_ast.SExportStar:

	case *js_ast.SBlock:
		old := b.scope
		b.scope = s.Scope
		b.bindStmts(s.Stmts)
		b.scope = old

	case *js_ast.SExpr:
		b.bindExpr(&s.Value, false)

	case *js_ast.SLocal:
		for i := range s.Decls {
			decl := &s.Decls[i]
			b.bindBinding(&decl.Binding)
			if decl.Value != nil {
				b.bindExpr(decl.Value, false)
			}
		}

	case *js_ast.SIf:
		b.bindExpr(&s.Test, false)
		b.bindStmt(&s.Yes)
		if s.No != nil {
			b.bindStmt(s.No)
		}

	case *js_ast.SFor:
		if s.Init != nil {
			b.bindStmt(s.Init)
		}
		if s.Test != nil {
			b.bindExpr(s.Test, false)
		}
		if s.Update != nil {
			b.bindExpr(s.Update, false)
		}
		b.bindStmt(&s.Body)

	case *js_ast.SWhile:
		b.bindExpr(&s.Test, false)
		b.bindStmt(&s.Body)

	case *js_ast.SReturn:
		if s.Value != nil {
			b.bindExpr(s.Value, false)
		}

	case *js_ast.SThrow:
		b.bindExpr(&s.Value, false)

	case *js_ast.SFunction:
		b.bindFn(&s.Fn)

	case *js_ast.SClass:
		b.bindClass(&s.Class)

	case *js_ast.SExportDefault:
		if s.Value.Expr != nil {
			b.bindExpr(s.Value.Expr, false)
		} else {
			b.bindStmt(s.Value.Stmt)
		}

	case *js_ast.SExportClause:
		for i := range s.Items {
			item := &s.Items[i]
			item.Name.Ref = b.resolve(item.Name.Ref, false)
		}

	default:
		panic("Internal error: unexpected statement during binding")
	}
}

func (b *binder) bindExpr(expr *js_ast.Expr, isAssignTarget bool) {
	switch e := expr.Data.(type) {
	case *js_ast.EBoolean, *js_ast.ENull, *js_ast.EUndefined, *js_ast.EThis,
		*js_ast.EMissing, *js_ast.ENumber, *js_ast.EString:

	case *js_ast.EIdentifier:
		e.Ref = b.resolve(e.Ref, isAssignTarget)

	case *js_ast.EBinary:
		leftIsAssignTarget := e.Op.BinaryAssignTarget() != js_ast.AssignTargetNone
		b.bindExpr(&e.Left, leftIsAssignTarget)
		b.bindExpr(&e.Right, false)

	case *js_ast.EUnary:
		b.bindExpr(&e.Value, e.Op.UnaryAssignTarget() != js_ast.AssignTargetNone)

	case *js_ast.EDot:
		b.bindExpr(&e.Target, false)

	case *js_ast.EIndex:
		b.bindExpr(&e.Target, false)
		b.bindExpr(&e.Index, false)

	case *js_ast.ECall:
		b.bindExpr(&e.Target, false)
		for i := range e.Args {
			b.bindExpr(&e.Args[i], false)
		}
		if target, ok := e.Target.Data.(*js_ast.EIdentifier); ok {
			if b.tree.IsUnbound(target.Ref, "eval") {
				b.scope.ContainsDirectEval = true
			}
		}

	case *js_ast.ENew:
		b.bindExpr(&e.Target, false)
		for i := range e.Args {
			b.bindExpr(&e.Args[i], false)
		}

	case *js_ast.EArray:
		for i := range e.Items {
			b.bindExpr(&e.Items[i], isAssignTarget)
		}

	case *js_ast.ESpread:
		b.bindExpr(&e.Value, isAssignTarget)

	case *js_ast.EObject:
		for i := range e.Properties {
			property := &e.Properties[i]
			if property.IsComputed {
				b.bindExpr(&property.Key, false)
			}
			if property.Value != nil {
				// In a pattern assignment like "({a} = x)" the shorthand
				// values are assignment targets
				b.bindExpr(property.Value, isAssignTarget && !property.IsMethod)
			}
		}

	case *js_ast.EArrow:
		old := b.scope
		b.scope = e.Body.Scope
		for i := range e.Args {
			b.bindArg(&e.Args[i])
		}
		b.bindStmts(e.Body.Stmts)
		b.scope = old

	case *js_ast.EFunction:
		b.bindFn(&e.Fn)

	case *js_ast.EClass:
		b.bindClass(&e.Class)

	case *js_ast.EIf:
		b.bindExpr(&e.Test, false)
		b.bindExpr(&e.Yes, false)
		b.bindExpr(&e.No, false)

	case *js_ast.EAwait:
		b.bindExpr(&e.Value, false)

	case *js_ast.EImport:
		b.bindExpr(&e.Expr, false)

	default:
		panic("Internal error: unexpected expression during binding")
	}
}

func (b *binder) bindFn(fn *js_ast.Fn) {
	old := b.scope
	b.scope = fn.Body.Scope
	for i := range fn.Args {
		b.bindArg(&fn.Args[i])
	}
	b.bindStmts(fn.Body.Stmts)
	b.scope = old
}

func (b *binder) bindArg(arg *js_ast.Arg) {
	b.bindBinding(&arg.Binding)
	if arg.Default != nil {
		b.bindExpr(arg.Default, false)
	}
}

func (b *binder) bindBinding(binding *js_ast.Binding) {
	switch d := binding.Data.(type) {
	case *js_ast.BMissing, *js_ast.BIdentifier:
		// Identifier bindings were declared during the parse phase

	case *js_ast.BArray:
		for i := range d.Items {
			item := &d.Items[i]
			b.bindBinding(&item.Binding)
			if item.DefaultValue != nil {
				b.bindExpr(item.DefaultValue, false)
			}
		}

	case *js_ast.BObject:
		for i := range d.Properties {
			property := &d.Properties[i]
			if property.IsComputed {
				b.bindExpr(&property.Key, false)
			}
			b.bindBinding(&property.Value)
			if property.DefaultValue != nil {
				b.bindExpr(property.DefaultValue, false)
			}
		}
	}
}

func (b *binder) bindClass(class *js_ast.Class) {
	if class.Extends != nil {
		b.bindExpr(class.Extends, false)
	}
	for i := range class.Properties {
		property := &class.Properties[i]
		if property.IsComputed {
			b.bindExpr(&property.Key, false)
		}
		if property.Value != nil {
			b.bindExpr(property.Value, false)
		}
	}
}
