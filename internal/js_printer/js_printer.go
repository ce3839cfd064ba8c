package js_printer

// The printer converts a tree back to source text. It's precedence-driven:
// each expression knows its own level and parenthesizes itself when printed
// in a tighter context. There is no minification and no source map support;
// output is two-space indented with one statement per line.

import (
	"math"
	"strconv"

	"github.com/gopackjs/gopack/internal/helpers"
	"github.com/gopackjs/gopack/internal/js_ast"
)

type Options struct {
	// Reserved for future use
}

type PrintResult struct {
	JS []byte
}

func Print(tree *js_ast.AST, options Options) PrintResult {
	p := &printer{
		tree:    tree,
		options: options,
	}
	p.printStmts(tree.Stmts, 0)
	return PrintResult{JS: p.js}
}

type printer struct {
	tree    *js_ast.AST
	options Options
	js      []byte
}

func (p *printer) print(text string) {
	p.js = append(p.js, text...)
}

func (p *printer) printIndent(indent int) {
	for i := 0; i < indent; i++ {
		p.print("  ")
	}
}

func (p *printer) nameForRef(ref js_ast.Ref) string {
	return p.tree.Symbol(ref).OriginalName
}

////////////////////////////////////////////////////////////////////////////////
// Statements

func (p *printer) printStmts(stmts []js_ast.Stmt, indent int) {
	for i := range stmts {
		p.printStmt(stmts[i], indent)
	}
}

func (p *printer) printStmt(stmt js_ast.Stmt, indent int) {
	switch s := stmt.Data.(type) {
	case *js_ast.SEmpty:
		p.printIndent(indent)
		p.print(";\n")

	case *js_ast.SDebugger:
		p.printIndent(indent)
		p.print("debugger;\n")

	case *js_ast.SDirective:
		p.printIndent(indent)
		p.print(helpers.QuoteJS(s.Value))
		p.print(";\n")

	case *js_ast.SBlock:
		p.printIndent(indent)
		p.printBlock(s.Stmts, indent)
		p.print("\n")

	case *js_ast.SExpr:
		p.printIndent(indent)
		p.printExprStmt(s.Value)
		p.print(";\n")

	case *js_ast.SLocal:
		p.printIndent(indent)
		if s.IsExport {
			p.print("export ")
		}
		p.printLocal(s)
		p.print(";\n")

	case *js_ast.SFunction:
		p.printIndent(indent)
		if s.IsExport {
			p.print("export ")
		}
		p.printFn(s.Fn, "function")
		p.print("\n")

	case *js_ast.SClass:
		p.printIndent(indent)
		if s.IsExport {
			p.print("export ")
		}
		p.printClass(s.Class)
		p.print("\n")

	case *js_ast.SIf:
		p.printIndent(indent)
		if p.printIf(s, indent) {
			p.print("\n")
		}

	case *js_ast.SWhile:
		p.printIndent(indent)
		p.print("while (")
		p.printExpr(s.Test, js_ast.LLowest)
		p.print(")")
		if p.printEnclosedStmt(s.Body, indent) {
			p.print("\n")
		}

	case *js_ast.SFor:
		p.printIndent(indent)
		p.print("for (")
		if s.Init != nil {
			switch init := s.Init.Data.(type) {
			case *js_ast.SLocal:
				p.printLocal(init)
			case *js_ast.SExpr:
				p.printExpr(init.Value, js_ast.LLowest)
			}
		}
		p.print("; ")
		if s.Test != nil {
			p.printExpr(*s.Test, js_ast.LLowest)
		}
		p.print("; ")
		if s.Update != nil {
			p.printExpr(*s.Update, js_ast.LLowest)
		}
		p.print(")")
		if p.printEnclosedStmt(s.Body, indent) {
			p.print("\n")
		}

	case *js_ast.SReturn:
		p.printIndent(indent)
		p.print("return")
		if s.Value != nil {
			p.print(" ")
			p.printExpr(*s.Value, js_ast.LLowest)
		}
		p.print(";\n")

	case *js_ast.SThrow:
		p.printIndent(indent)
		p.print("throw ")
		p.printExpr(s.Value, js_ast.LLowest)
		p.print(";\n")

	case *js_ast.SBreak:
		p.printIndent(indent)
		p.print("break;\n")

	case *js_ast.SContinue:
		p.printIndent(indent)
		p.print("continue;\n")

	case *js_ast.SImport:
		p.printIndent(indent)
		p.print("import ")
		hasItems := false
		if s.DefaultName != nil {
			p.print(p.nameForRef(s.DefaultName.Ref))
			hasItems = true
		}
		if s.StarName != nil {
			if hasItems {
				p.print(", ")
			}
			p.print("* as ")
			p.print(p.nameForRef(s.StarName.Ref))
			hasItems = true
		}
		if s.Items != nil {
			if hasItems {
				p.print(", ")
			}
			p.print("{")
			for i, item := range s.Items {
				if i > 0 {
					p.print(", ")
				}
				name := p.nameForRef(item.Name.Ref)
				if item.Alias == name {
					p.print(name)
				} else {
					p.print(item.Alias)
					p.print(" as ")
					p.print(name)
				}
			}
			p.print("}")
			hasItems = true
		}
		if hasItems {
			p.print(" from ")
		}
		p.print(helpers.QuoteJS(s.Path))
		p.print(";\n")

	case *js_ast.SExportClause:
		p.printIndent(indent)
		p.print("export {")
		for i, item := range s.Items {
			if i > 0 {
				p.print(", ")
			}
			name := p.nameForRef(item.Name.Ref)
			if item.Alias == name {
				p.print(name)
			} else {
				p.print(name)
				p.print(" as ")
				p.print(item.Alias)
			}
		}
		p.print("};\n")

	case *js_ast.SExportFrom:
		p.printIndent(indent)
		p.print("export {")
		for i, item := range s.Items {
			if i > 0 {
				p.print(", ")
			}
			if item.Alias == item.OriginalName {
				p.print(item.OriginalName)
			} else {
				p.print(item.OriginalName)
				p.print(" as ")
				p.print(item.Alias)
			}
		}
		p.print("} from ")
		p.print(helpers.QuoteJS(s.Path))
		p.print(";\n")

	case *js_ast.SExportStar:
		p.printIndent(indent)
		p.print("export *")
		if s.Alias != nil {
			p.print(" as ")
			p.print(s.Alias.Name)
		}
		p.print(" from ")
		p.print(helpers.QuoteJS(s.Path))
		p.print(";\n")

	case *js_ast.SExportDefault:
		p.printIndent(indent)
		p.print("export default ")
		if s.Value.Expr != nil {
			p.printExpr(*s.Value.Expr, js_ast.LComma)
			p.print(";\n")
		} else {
			switch stmt := s.Value.Stmt.Data.(type) {
			case *js_ast.SFunction:
				p.printFn(stmt.Fn, "function")
				p.print("\n")
			case *js_ast.SClass:
				p.printClass(stmt.Class)
				p.print("\n")
			}
		}

	default:
		panic("Internal error: unexpected statement during printing")
	}
}

// An expression statement beginning with "function", "class", or "{" would
// parse as a declaration or block, so it gets wrapped in parentheses
func (p *printer) printExprStmt(value js_ast.Expr) {
	if stmtStartIsUnsafe(value) {
		p.print("(")
		p.printExpr(value, js_ast.LLowest)
		p.print(")")
		return
	}
	p.printExpr(value, js_ast.LLowest)
}

// stmtStartIsUnsafe walks to the leftmost token of an expression and reports
// whether it would be misparsed at the start of a statement
func stmtStartIsUnsafe(value js_ast.Expr) bool {
	for {
		switch e := value.Data.(type) {
		case *js_ast.EFunction, *js_ast.EClass, *js_ast.EObject:
			return true
		case *js_ast.EBinary:
			value = e.Left
		case *js_ast.ECall, *js_ast.EDot, *js_ast.EIndex, *js_ast.ENew:
			// An unsafe target of a call or member access parenthesizes
			// itself, so the statement starts with "("
			return false
		case *js_ast.EIf:
			value = e.Test
		case *js_ast.EUnary:
			if !e.Op.IsPrefix() {
				value = e.Value
				continue
			}
			return false
		default:
			return false
		}
	}
}

// printIf reports whether it ended inline (with a closing brace) rather
// than with a full statement line, so the caller knows whether a trailing
// newline is still needed
func (p *printer) printIf(s *js_ast.SIf, indent int) bool {
	p.print("if (")
	p.printExpr(s.Test, js_ast.LLowest)
	p.print(")")

	yesEndedInline := p.printEnclosedStmt(s.Yes, indent)

	if s.No == nil {
		return yesEndedInline
	}

	if yesEndedInline {
		p.print(" else")
	} else {
		p.printIndent(indent)
		p.print("else")
	}

	switch no := s.No.Data.(type) {
	case *js_ast.SIf:
		p.print(" ")
		return p.printIf(no, indent)
	default:
		return p.printEnclosedStmt(*s.No, indent)
	}
}

// printEnclosedStmt prints the body of an "if", "while", or "for". A block
// prints inline and the function returns true; any other statement prints
// on the next line, indented, with its own trailing newline, and the
// function returns false.
func (p *printer) printEnclosedStmt(stmt js_ast.Stmt, indent int) bool {
	if block, ok := stmt.Data.(*js_ast.SBlock); ok {
		p.print(" ")
		p.printBlock(block.Stmts, indent)
		return true
	}

	p.print("\n")
	p.printStmt(stmt, indent+1)
	return false
}

func (p *printer) printBlock(stmts []js_ast.Stmt, indent int) {
	p.print("{\n")
	p.printStmts(stmts, indent+1)
	p.printIndent(indent)
	p.print("}")
}

func (p *printer) printLocal(s *js_ast.SLocal) {
	p.print(s.Kind.String())
	p.print(" ")
	for i := range s.Decls {
		if i > 0 {
			p.print(", ")
		}
		decl := &s.Decls[i]
		p.printBinding(decl.Binding)
		if decl.Value != nil {
			p.print(" = ")
			p.printExpr(*decl.Value, js_ast.LComma)
		}
	}
}

func (p *printer) printBinding(binding js_ast.Binding) {
	switch b := binding.Data.(type) {
	case *js_ast.BMissing:

	case *js_ast.BIdentifier:
		p.print(p.nameForRef(b.Ref))

	case *js_ast.BArray:
		p.print("[")
		for i := range b.Items {
			if i > 0 {
				p.print(", ")
			}
			item := &b.Items[i]
			if b.HasSpread && i == len(b.Items)-1 {
				p.print("...")
			}
			p.printBinding(item.Binding)
			if item.DefaultValue != nil {
				p.print(" = ")
				p.printExpr(*item.DefaultValue, js_ast.LComma)
			}
		}
		p.print("]")

	case *js_ast.BObject:
		p.print("{")
		for i := range b.Properties {
			if i > 0 {
				p.print(", ")
			}
			property := &b.Properties[i]

			if property.IsSpread {
				p.print("...")
				p.printBinding(property.Value)
				continue
			}

			if property.IsComputed {
				p.print("[")
				p.printExpr(property.Key, js_ast.LComma)
				p.print("]: ")
				p.printBinding(property.Value)
			} else {
				isShorthand := false
				if key, ok := property.Key.Data.(*js_ast.EString); ok {
					if ident, isIdent := property.Value.Data.(*js_ast.BIdentifier); isIdent &&
						js_ast.IsIdentifier(key.Value) && p.nameForRef(ident.Ref) == key.Value {
						p.print(key.Value)
						isShorthand = true
					}
				}
				if !isShorthand {
					p.printPropertyKey(property.Key)
					p.print(": ")
					p.printBinding(property.Value)
				}
			}

			if property.DefaultValue != nil {
				p.print(" = ")
				p.printExpr(*property.DefaultValue, js_ast.LComma)
			}
		}
		p.print("}")
	}
}

func (p *printer) printPropertyKey(key js_ast.Expr) {
	switch k := key.Data.(type) {
	case *js_ast.EString:
		if js_ast.IsIdentifier(k.Value) {
			p.print(k.Value)
		} else {
			p.print(helpers.QuoteJS(k.Value))
		}
	case *js_ast.ENumber:
		p.print(numberToString(k.Value))
	default:
		p.printExpr(key, js_ast.LComma)
	}
}

////////////////////////////////////////////////////////////////////////////////
// Expressions

func (p *printer) printExpr(expr js_ast.Expr, level js_ast.L) {
	switch e := expr.Data.(type) {
	case *js_ast.EMissing:

	case *js_ast.EThis:
		p.print("this")

	case *js_ast.ENull:
		p.print("null")

	case *js_ast.EUndefined:
		p.print("undefined")

	case *js_ast.EBoolean:
		if e.Value {
			p.print("true")
		} else {
			p.print("false")
		}

	case *js_ast.ENumber:
		p.print(numberToString(e.Value))

	case *js_ast.EString:
		p.print(helpers.QuoteJS(e.Value))

	case *js_ast.EIdentifier:
		p.print(p.nameForRef(e.Ref))

	case *js_ast.EDot:
		p.printExpr(e.Target, js_ast.LPostfix)
		p.print(".")
		p.print(e.Name)

	case *js_ast.EIndex:
		p.printExpr(e.Target, js_ast.LPostfix)
		p.print("[")
		p.printExpr(e.Index, js_ast.LLowest)
		p.print("]")

	case *js_ast.ECall:
		p.printExpr(e.Target, js_ast.LPostfix)
		p.print("(")
		for i := range e.Args {
			if i > 0 {
				p.print(", ")
			}
			p.printExpr(e.Args[i], js_ast.LComma)
		}
		p.print(")")

	case *js_ast.ENew:
		wrap := level >= js_ast.LCall
		if wrap {
			p.print("(")
		}
		p.print("new ")
		// A call in the target would bind to "new" as its argument list
		if targetContainsCall(e.Target) {
			p.print("(")
			p.printExpr(e.Target, js_ast.LLowest)
			p.print(")")
		} else {
			p.printExpr(e.Target, js_ast.LCall)
		}
		p.print("(")
		for i := range e.Args {
			if i > 0 {
				p.print(", ")
			}
			p.printExpr(e.Args[i], js_ast.LComma)
		}
		p.print(")")
		if wrap {
			p.print(")")
		}

	case *js_ast.EImport:
		p.print("import(")
		p.printExpr(e.Expr, js_ast.LComma)
		p.print(")")

	case *js_ast.ESpread:
		p.print("...")
		p.printExpr(e.Value, js_ast.LComma)

	case *js_ast.EAwait:
		wrap := level >= js_ast.LPrefix
		if wrap {
			p.print("(")
		}
		p.print("await ")
		p.printExpr(e.Value, js_ast.LPrefix-1)
		if wrap {
			p.print(")")
		}

	case *js_ast.EUnary:
		entry := js_ast.OpTable[e.Op]
		wrap := level >= js_ast.LPrefix
		if wrap {
			p.print("(")
		}
		if e.Op.IsPrefix() {
			p.print(entry.Text)
			if entry.IsKeyword {
				p.print(" ")
			} else if needsSpaceBetweenSigns(e.Op, e.Value) {
				// "-(-x)" must not print as "--x"
				p.print(" ")
			}
			p.printExpr(e.Value, js_ast.LPrefix-1)
		} else {
			p.printExpr(e.Value, js_ast.LPrefix-1)
			p.print(entry.Text)
		}
		if wrap {
			p.print(")")
		}

	case *js_ast.EBinary:
		entry := js_ast.OpTable[e.Op]
		wrap := level >= entry.Level
		if wrap {
			p.print("(")
		}

		leftLevel := entry.Level - 1
		rightLevel := entry.Level
		if e.Op.IsRightAssociative() {
			leftLevel = entry.Level
			rightLevel = entry.Level - 1
		}

		p.printExpr(e.Left, leftLevel)
		if e.Op == js_ast.BinOpComma {
			p.print(", ")
		} else {
			p.print(" ")
			p.print(entry.Text)
			p.print(" ")
		}
		p.printExpr(e.Right, rightLevel)

		if wrap {
			p.print(")")
		}

	case *js_ast.EIf:
		wrap := level >= js_ast.LConditional
		if wrap {
			p.print("(")
		}
		p.printExpr(e.Test, js_ast.LConditional)
		p.print(" ? ")
		p.printExpr(e.Yes, js_ast.LComma)
		p.print(" : ")
		p.printExpr(e.No, js_ast.LComma)
		if wrap {
			p.print(")")
		}

	case *js_ast.EArray:
		p.print("[")
		for i := range e.Items {
			if i > 0 {
				p.print(", ")
			}
			p.printExpr(e.Items[i], js_ast.LComma)
		}
		p.print("]")

	case *js_ast.EObject:
		// An object used as a call or member target needs parentheses so the
		// brace doesn't parse as a block
		wrap := level >= js_ast.LPostfix
		if wrap {
			p.print("(")
		}
		p.print("{")
		for i := range e.Properties {
			if i > 0 {
				p.print(", ")
			}
			p.printProperty(e.Properties[i])
		}
		p.print("}")
		if wrap {
			p.print(")")
		}

	case *js_ast.EFunction:
		wrap := level >= js_ast.LPostfix
		if wrap {
			p.print("(")
		}
		p.printFn(e.Fn, "function")
		if wrap {
			p.print(")")
		}

	case *js_ast.EClass:
		wrap := level >= js_ast.LPostfix
		if wrap {
			p.print("(")
		}
		p.printClass(e.Class)
		if wrap {
			p.print(")")
		}

	case *js_ast.EArrow:
		wrap := level > js_ast.LAssign
		if wrap {
			p.print("(")
		}
		if e.IsAsync {
			p.print("async ")
		}
		p.print("(")
		for i := range e.Args {
			if i > 0 {
				p.print(", ")
			}
			if e.HasRestArg && i == len(e.Args)-1 {
				p.print("...")
			}
			p.printBinding(e.Args[i].Binding)
			if e.Args[i].Default != nil {
				p.print(" = ")
				p.printExpr(*e.Args[i].Default, js_ast.LComma)
			}
		}
		p.print(") => ")

		printedExpr := false
		if e.PreferExpr && len(e.Body.Stmts) == 1 {
			if ret, ok := e.Body.Stmts[0].Data.(*js_ast.SReturn); ok && ret.Value != nil {
				if _, isObject := ret.Value.Data.(*js_ast.EObject); isObject {
					p.print("(")
					p.printExpr(*ret.Value, js_ast.LComma)
					p.print(")")
				} else {
					p.printExpr(*ret.Value, js_ast.LComma)
				}
				printedExpr = true
			}
		}
		if !printedExpr {
			p.printBlock(e.Body.Stmts, p.currentIndent())
		}
		if wrap {
			p.print(")")
		}

	default:
		panic("Internal error: unexpected expression during printing")
	}
}

func (p *printer) printProperty(property js_ast.Property) {
	if property.Kind == js_ast.PropertySpread {
		p.print("...")
		p.printExpr(*property.Value, js_ast.LComma)
		return
	}

	if property.Kind == js_ast.PropertyGet {
		p.print("get ")
	} else if property.Kind == js_ast.PropertySet {
		p.print("set ")
	}

	if property.IsMethod {
		fn := property.Value.Data.(*js_ast.EFunction)
		if property.IsComputed {
			p.print("[")
			p.printExpr(property.Key, js_ast.LComma)
			p.print("]")
		} else {
			p.printPropertyKey(property.Key)
		}
		p.printFnArgsAndBody(fn.Fn)
		return
	}

	if property.WasShorthand {
		if key, ok := property.Key.Data.(*js_ast.EString); ok {
			if ident, isIdent := property.Value.Data.(*js_ast.EIdentifier); isIdent &&
				p.nameForRef(ident.Ref) == key.Value {
				p.print(key.Value)
				return
			}
		}
	}

	if property.IsComputed {
		p.print("[")
		p.printExpr(property.Key, js_ast.LComma)
		p.print("]")
	} else {
		p.printPropertyKey(property.Key)
	}
	p.print(": ")
	p.printExpr(*property.Value, js_ast.LComma)
}

func (p *printer) printFn(fn js_ast.Fn, keyword string) {
	if fn.IsAsync {
		p.print("async ")
	}
	p.print(keyword)
	if fn.Name != nil {
		p.print(" ")
		p.print(p.nameForRef(fn.Name.Ref))
	}
	p.printFnArgsAndBody(fn)
}

func (p *printer) printFnArgsAndBody(fn js_ast.Fn) {
	p.print("(")
	for i := range fn.Args {
		if i > 0 {
			p.print(", ")
		}
		if fn.HasRestArg && i == len(fn.Args)-1 {
			p.print("...")
		}
		p.printBinding(fn.Args[i].Binding)
		if fn.Args[i].Default != nil {
			p.print(" = ")
			p.printExpr(*fn.Args[i].Default, js_ast.LComma)
		}
	}
	p.print(") ")
	p.printBlock(fn.Body.Stmts, p.currentIndent())
}

func (p *printer) printClass(class js_ast.Class) {
	p.print("class")
	if class.Name != nil {
		p.print(" ")
		p.print(p.nameForRef(class.Name.Ref))
	}
	if class.Extends != nil {
		p.print(" extends ")
		p.printExpr(*class.Extends, js_ast.LNew)
	}
	p.print(" {\n")
	indent := p.currentIndent()
	for _, property := range class.Properties {
		p.printIndent(indent + 1)
		p.printProperty(property)
		p.print("\n")
	}
	p.printIndent(indent)
	p.print("}")
}

// currentIndent recovers the indentation level from the current line so
// nested function bodies and class bodies line up without threading an
// indent value through every expression
func (p *printer) currentIndent() int {
	lineStart := 0
	for i := len(p.js) - 1; i >= 0; i-- {
		if p.js[i] == '\n' {
			lineStart = i + 1
			break
		}
	}
	spaces := 0
	for i := lineStart; i < len(p.js) && p.js[i] == ' '; i++ {
		spaces++
	}
	return spaces / 2
}

func needsSpaceBetweenSigns(op js_ast.OpCode, value js_ast.Expr) bool {
	inner, ok := value.Data.(*js_ast.EUnary)
	if !ok {
		return false
	}
	if op == js_ast.UnOpNeg {
		return inner.Op == js_ast.UnOpNeg || inner.Op == js_ast.UnOpPreDec
	}
	if op == js_ast.UnOpPos {
		return inner.Op == js_ast.UnOpPos || inner.Op == js_ast.UnOpPreInc
	}
	return false
}

func targetContainsCall(value js_ast.Expr) bool {
	for {
		switch e := value.Data.(type) {
		case *js_ast.ECall:
			return true
		case *js_ast.EDot:
			value = e.Target
		case *js_ast.EIndex:
			value = e.Target
		default:
			return false
		}
	}
}

func numberToString(value float64) string {
	if value == math.Trunc(value) && math.Abs(value) < 1e21 {
		return strconv.FormatFloat(value, 'f', 0, 64)
	}
	return strconv.FormatFloat(value, 'g', -1, 64)
}
