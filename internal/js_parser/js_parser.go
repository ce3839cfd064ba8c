package js_parser

// This parser covers the JavaScript subset the hoisting core understands. It
// follows the same two-phase layout as a full bundler front-end: the parse
// phase builds the tree and the scope tree, declaring symbols as bindings
// are encountered, and the bind phase (js_parser_bind.go) re-walks the tree
// to resolve every identifier reference to a Ref.

import (
	"github.com/gopackjs/gopack/internal/js_ast"
	"github.com/gopackjs/gopack/internal/js_lexer"
	"github.com/gopackjs/gopack/internal/logger"
)

type Options struct {
	// Reserved for future use. The teacher pattern keeps per-package options
	// in a struct so call sites don't churn when knobs are added.
}

type parser struct {
	log     logger.Log
	source  logger.Source
	lexer   js_lexer.Lexer
	options Options

	symbols        []js_ast.Symbol
	moduleScope    *js_ast.Scope
	currentScope   *js_ast.Scope
	allocatedNames []string

	allowIn bool
}

func Parse(log logger.Log, source logger.Source, options Options) (result js_ast.AST, ok bool) {
	ok = true
	defer func() {
		r := recover()
		if _, isLexerPanic := r.(js_lexer.LexerPanic); isLexerPanic {
			ok = false
		} else if r != nil {
			panic(r)
		}
	}()

	p := &parser{
		log:     log,
		source:  source,
		options: options,
		allowIn: true,
	}
	p.moduleScope = &js_ast.Scope{
		Kind:    js_ast.ScopeEntry,
		Members: make(map[string]js_ast.ScopeMember),
	}
	p.currentScope = p.moduleScope
	p.lexer = js_lexer.NewLexer(log, source)

	stmts := p.parseStmtsUpTo(js_lexer.TEndOfFile, parseStmtOpts{
		isModuleScope:   true,
		allowDirectives: true,
	})

	result = js_ast.AST{
		Model:       js_ast.ModelName,
		Version:     js_ast.CurrentVersion,
		Stmts:       stmts,
		Symbols:     p.symbols,
		ModuleScope: p.moduleScope,
	}

	bind(p, &result)
	return
}

////////////////////////////////////////////////////////////////////////////////
// Symbols and scopes

func (p *parser) newSymbol(kind js_ast.SymbolKind, name string) js_ast.Ref {
	ref := js_ast.Ref{InnerIndex: uint32(len(p.symbols))}
	p.symbols = append(p.symbols, js_ast.Symbol{
		Kind:         kind,
		OriginalName: name,
	})
	return ref
}

// References are not resolved during the parse phase because a reference may
// come before the "var" declaration it binds to. Instead the name is stashed
// in a side table and the Ref carries its index, flagged in the top bit. The
// bind phase turns these into real symbol refs.
const unresolvedNameFlag = uint32(1) << 31

func (p *parser) storeNameInRef(name string) js_ast.Ref {
	index := uint32(len(p.allocatedNames))
	p.allocatedNames = append(p.allocatedNames, name)
	return js_ast.Ref{InnerIndex: index | unresolvedNameFlag}
}

func (p *parser) pushScope(kind js_ast.ScopeKind) *js_ast.Scope {
	scope := &js_ast.Scope{
		Kind:    kind,
		Parent:  p.currentScope,
		Members: make(map[string]js_ast.ScopeMember),
	}
	p.currentScope.Children = append(p.currentScope.Children, scope)
	p.currentScope = scope
	return scope
}

func (p *parser) popScope() {
	p.currentScope = p.currentScope.Parent
}

// declareSymbol declares a name in the scope appropriate for its kind:
// hoisted symbols go to the nearest enclosing function or module scope,
// everything else to the current scope.
func (p *parser) declareSymbol(kind js_ast.SymbolKind, loc logger.Loc, name string) js_ast.Ref {
	scope := p.currentScope
	if kind.IsHoisted() {
		for !scope.Kind.StopsHoisting() {
			scope = scope.Parent
		}
	}

	// Repeated "var" and function declarations merge with the previous
	// declaration instead of shadowing it
	if existing, ok := scope.Members[name]; ok {
		symbol := &p.symbols[existing.Ref.InnerIndex]
		if kind.IsHoisted() && symbol.Kind.IsHoisted() {
			return existing.Ref
		}
	}

	ref := p.newSymbol(kind, name)
	scope.Members[name] = js_ast.ScopeMember{Ref: ref, Loc: loc}
	return ref
}

////////////////////////////////////////////////////////////////////////////////
// Statements

type parseStmtOpts struct {
	isModuleScope   bool
	allowDirectives bool
	isExport        bool
}

func (p *parser) parseStmtsUpTo(end js_lexer.T, opts parseStmtOpts) []js_ast.Stmt {
	stmts := []js_ast.Stmt{}
	isDirectivePrologue := opts.allowDirectives

	for p.lexer.Token != end {
		stmt := p.parseStmt(parseStmtOpts{isModuleScope: opts.isModuleScope})

		// Directives are the string literal statements at the very top
		if isDirectivePrologue {
			if expr, ok := stmt.Data.(*js_ast.SExpr); ok {
				if str, isStr := expr.Value.Data.(*js_ast.EString); isStr {
					stmt = js_ast.Stmt{Loc: stmt.Loc, Data: &js_ast.SDirective{Value: str.Value}}
				} else {
					isDirectivePrologue = false
				}
			} else {
				isDirectivePrologue = false
			}
		}

		stmts = append(stmts, stmt)
	}

	return stmts
}

func (p *parser) parseStmt(opts parseStmtOpts) js_ast.Stmt {
	loc := p.lexer.Loc()

	switch p.lexer.Token {
	case js_lexer.TSemicolon:
		p.lexer.Next()
		return js_ast.Stmt{Loc: loc, Data: &js_ast.SEmpty{}}

	case js_lexer.TDebugger:
		p.lexer.Next()
		p.lexer.ExpectOrInsertSemicolon()
		return js_ast.Stmt{Loc: loc, Data: &js_ast.SDebugger{}}

	case js_lexer.TOpenBrace:
		p.lexer.Next()
		scope := p.pushScope(js_ast.ScopeBlock)
		stmts := p.parseStmtsUpTo(js_lexer.TCloseBrace, parseStmtOpts{})
		p.popScope()
		p.lexer.Next()
		return js_ast.Stmt{Loc: loc, Data: &js_ast.SBlock{Stmts: stmts, Scope: scope}}

	case js_lexer.TVar:
		p.lexer.Next()
		decls := p.parseDecls(js_ast.LocalVar)
		p.lexer.ExpectOrInsertSemicolon()
		return js_ast.Stmt{Loc: loc, Data: &js_ast.SLocal{
			Kind:     js_ast.LocalVar,
			Decls:    decls,
			IsExport: opts.isExport,
		}}

	case js_lexer.TConst:
		p.lexer.Next()
		decls := p.parseDecls(js_ast.LocalConst)
		p.lexer.ExpectOrInsertSemicolon()
		return js_ast.Stmt{Loc: loc, Data: &js_ast.SLocal{
			Kind:     js_ast.LocalConst,
			Decls:    decls,
			IsExport: opts.isExport,
		}}

	case js_lexer.TIf:
		p.lexer.Next()
		p.lexer.Expect(js_lexer.TOpenParen)
		test := p.parseExpr(js_ast.LLowest)
		p.lexer.Expect(js_lexer.TCloseParen)
		yes := p.parseStmt(parseStmtOpts{})
		var no *js_ast.Stmt
		if p.lexer.Token == js_lexer.TElse {
			p.lexer.Next()
			stmt := p.parseStmt(parseStmtOpts{})
			no = &stmt
		}
		return js_ast.Stmt{Loc: loc, Data: &js_ast.SIf{Test: test, Yes: yes, No: no}}

	case js_lexer.TWhile:
		p.lexer.Next()
		p.lexer.Expect(js_lexer.TOpenParen)
		test := p.parseExpr(js_ast.LLowest)
		p.lexer.Expect(js_lexer.TCloseParen)
		body := p.parseStmt(parseStmtOpts{})
		return js_ast.Stmt{Loc: loc, Data: &js_ast.SWhile{Test: test, Body: body}}

	case js_lexer.TFor:
		return p.parseForStmt(loc)

	case js_lexer.TReturn:
		p.lexer.Next()
		var value *js_ast.Expr
		if p.lexer.Token != js_lexer.TSemicolon &&
			p.lexer.Token != js_lexer.TCloseBrace &&
			p.lexer.Token != js_lexer.TEndOfFile &&
			!p.lexer.HasNewlineBefore {
			expr := p.parseExpr(js_ast.LLowest)
			value = &expr
		}
		p.lexer.ExpectOrInsertSemicolon()
		return js_ast.Stmt{Loc: loc, Data: &js_ast.SReturn{Value: value}}

	case js_lexer.TThrow:
		p.lexer.Next()
		if p.lexer.HasNewlineBefore {
			p.log.AddError(&p.source, loc, "Unexpected newline after \"throw\"")
			panic(js_lexer.LexerPanic{})
		}
		value := p.parseExpr(js_ast.LLowest)
		p.lexer.ExpectOrInsertSemicolon()
		return js_ast.Stmt{Loc: loc, Data: &js_ast.SThrow{Value: value}}

	case js_lexer.TBreak:
		p.lexer.Next()
		p.lexer.ExpectOrInsertSemicolon()
		return js_ast.Stmt{Loc: loc, Data: &js_ast.SBreak{}}

	case js_lexer.TContinue:
		p.lexer.Next()
		p.lexer.ExpectOrInsertSemicolon()
		return js_ast.Stmt{Loc: loc, Data: &js_ast.SContinue{}}

	case js_lexer.TFunction:
		p.lexer.Next()
		return p.parseFnStmt(loc, opts, false /* isAsync */)

	case js_lexer.TClass:
		p.lexer.Next()
		class := p.parseClass(true /* isStmt */)
		return js_ast.Stmt{Loc: loc, Data: &js_ast.SClass{Class: class, IsExport: opts.isExport}}

	case js_lexer.TImport:
		if !opts.isModuleScope {
			p.lexer.Unexpected()
		}

		// "import(path)" is an expression, not a declaration
		clone := p.lexer
		clone.Next()
		if clone.Token == js_lexer.TOpenParen || clone.Token == js_lexer.TDot {
			break
		}

		p.lexer.Next()
		return p.parseImportStmt(loc)

	case js_lexer.TExport:
		if !opts.isModuleScope {
			p.lexer.Unexpected()
		}
		p.lexer.Next()
		return p.parseExportStmt(loc)

	case js_lexer.TIdentifier:
		name := p.lexer.Identifier

		// "let" is a contextual keyword
		if name == "let" {
			clone := p.lexer
			clone.Next()
			if clone.Token == js_lexer.TIdentifier || clone.Token == js_lexer.TOpenBracket || clone.Token == js_lexer.TOpenBrace {
				p.lexer.Next()
				decls := p.parseDecls(js_ast.LocalLet)
				p.lexer.ExpectOrInsertSemicolon()
				return js_ast.Stmt{Loc: loc, Data: &js_ast.SLocal{
					Kind:     js_ast.LocalLet,
					Decls:    decls,
					IsExport: opts.isExport,
				}}
			}
		}

		// "async function foo() {}"
		if name == "async" {
			clone := p.lexer
			clone.Next()
			if clone.Token == js_lexer.TFunction && !clone.HasNewlineBefore {
				p.lexer.Next()
				p.lexer.Next()
				return p.parseFnStmt(loc, opts, true /* isAsync */)
			}
		}
	}

	expr := p.parseExpr(js_ast.LLowest)
	p.lexer.ExpectOrInsertSemicolon()
	return js_ast.Stmt{Loc: loc, Data: &js_ast.SExpr{Value: expr}}
}

func (p *parser) parseForStmt(loc logger.Loc) js_ast.Stmt {
	p.lexer.Next()
	p.lexer.Expect(js_lexer.TOpenParen)

	var init *js_ast.Stmt
	if p.lexer.Token != js_lexer.TSemicolon {
		p.allowIn = false
		initLoc := p.lexer.Loc()
		var initStmt js_ast.Stmt
		switch {
		case p.lexer.Token == js_lexer.TVar:
			p.lexer.Next()
			initStmt = js_ast.Stmt{Loc: initLoc, Data: &js_ast.SLocal{
				Kind:  js_ast.LocalVar,
				Decls: p.parseDecls(js_ast.LocalVar),
			}}
		case p.lexer.Token == js_lexer.TConst:
			p.lexer.Next()
			initStmt = js_ast.Stmt{Loc: initLoc, Data: &js_ast.SLocal{
				Kind:  js_ast.LocalConst,
				Decls: p.parseDecls(js_ast.LocalConst),
			}}
		case p.lexer.IsContextualKeyword("let"):
			p.lexer.Next()
			initStmt = js_ast.Stmt{Loc: initLoc, Data: &js_ast.SLocal{
				Kind:  js_ast.LocalLet,
				Decls: p.parseDecls(js_ast.LocalLet),
			}}
		default:
			initStmt = js_ast.Stmt{Loc: initLoc, Data: &js_ast.SExpr{Value: p.parseExpr(js_ast.LLowest)}}
		}
		p.allowIn = true
		init = &initStmt
	}

	// "for ... in" and "for ... of" loops are outside the supported subset
	if p.lexer.Token == js_lexer.TIn || p.lexer.IsContextualKeyword("of") {
		p.lexer.Unexpected()
	}

	p.lexer.Expect(js_lexer.TSemicolon)

	var test *js_ast.Expr
	if p.lexer.Token != js_lexer.TSemicolon {
		expr := p.parseExpr(js_ast.LLowest)
		test = &expr
	}
	p.lexer.Expect(js_lexer.TSemicolon)

	var update *js_ast.Expr
	if p.lexer.Token != js_lexer.TCloseParen {
		expr := p.parseExpr(js_ast.LLowest)
		update = &expr
	}
	p.lexer.Expect(js_lexer.TCloseParen)

	body := p.parseStmt(parseStmtOpts{})
	return js_ast.Stmt{Loc: loc, Data: &js_ast.SFor{Init: init, Test: test, Update: update, Body: body}}
}

func (p *parser) parseFnStmt(loc logger.Loc, opts parseStmtOpts, isAsync bool) js_ast.Stmt {
	nameLoc := p.lexer.Loc()
	name := p.lexer.Identifier
	if p.lexer.Token != js_lexer.TIdentifier {
		p.lexer.Expected(js_lexer.TIdentifier)
	}
	p.lexer.Next()

	ref := p.declareSymbol(js_ast.SymbolHoistedFunction, nameLoc, name)
	fn := p.parseFn(&js_ast.LocRef{Loc: nameLoc, Ref: ref}, isAsync)
	return js_ast.Stmt{Loc: loc, Data: &js_ast.SFunction{Fn: fn, IsExport: opts.isExport}}
}

func (p *parser) parseDecls(kind js_ast.LocalKind) []js_ast.Decl {
	symbolKind := js_ast.SymbolHoisted
	switch kind {
	case js_ast.LocalLet:
		symbolKind = js_ast.SymbolOther
	case js_ast.LocalConst:
		symbolKind = js_ast.SymbolConst
	}

	decls := []js_ast.Decl{}
	for {
		binding := p.parseBinding(symbolKind)

		var value *js_ast.Expr
		if p.lexer.Token == js_lexer.TEquals {
			p.lexer.Next()
			expr := p.parseExpr(js_ast.LComma)
			value = &expr
		}

		decls = append(decls, js_ast.Decl{Binding: binding, Value: value})
		if p.lexer.Token != js_lexer.TComma {
			break
		}
		p.lexer.Next()
	}
	return decls
}

func (p *parser) parseBinding(symbolKind js_ast.SymbolKind) js_ast.Binding {
	loc := p.lexer.Loc()

	switch p.lexer.Token {
	case js_lexer.TIdentifier:
		name := p.lexer.Identifier
		p.lexer.Next()
		ref := p.declareSymbol(symbolKind, loc, name)
		return js_ast.Binding{Loc: loc, Data: &js_ast.BIdentifier{Ref: ref}}

	case js_lexer.TOpenBracket:
		p.lexer.Next()
		items := []js_ast.ArrayBinding{}
		hasSpread := false
		for p.lexer.Token != js_lexer.TCloseBracket {
			if p.lexer.Token == js_lexer.TComma {
				// An elision
				items = append(items, js_ast.ArrayBinding{
					Binding: js_ast.Binding{Loc: p.lexer.Loc(), Data: &js_ast.BMissing{}},
				})
				p.lexer.Next()
				continue
			}

			if p.lexer.Token == js_lexer.TDotDotDot {
				p.lexer.Next()
				hasSpread = true
			}

			binding := p.parseBinding(symbolKind)

			var defaultValue *js_ast.Expr
			if p.lexer.Token == js_lexer.TEquals {
				p.lexer.Next()
				expr := p.parseExpr(js_ast.LComma)
				defaultValue = &expr
			}

			items = append(items, js_ast.ArrayBinding{Binding: binding, DefaultValue: defaultValue})
			if p.lexer.Token != js_lexer.TComma {
				break
			}
			p.lexer.Next()
		}
		p.lexer.Expect(js_lexer.TCloseBracket)
		return js_ast.Binding{Loc: loc, Data: &js_ast.BArray{Items: items, HasSpread: hasSpread}}

	case js_lexer.TOpenBrace:
		p.lexer.Next()
		properties := []js_ast.PropertyBinding{}
		for p.lexer.Token != js_lexer.TCloseBrace {
			property := p.parsePropertyBinding(symbolKind)
			properties = append(properties, property)
			if p.lexer.Token != js_lexer.TComma {
				break
			}
			p.lexer.Next()
		}
		p.lexer.Expect(js_lexer.TCloseBrace)
		return js_ast.Binding{Loc: loc, Data: &js_ast.BObject{Properties: properties}}
	}

	p.lexer.Expected(js_lexer.TIdentifier)
	return js_ast.Binding{}
}

func (p *parser) parsePropertyBinding(symbolKind js_ast.SymbolKind) js_ast.PropertyBinding {
	keyLoc := p.lexer.Loc()

	switch p.lexer.Token {
	case js_lexer.TDotDotDot:
		p.lexer.Next()
		value := p.parseBinding(symbolKind)
		return js_ast.PropertyBinding{
			IsSpread: true,
			Value:    value,
		}

	case js_lexer.TNumericLiteral:
		key := js_ast.Expr{Loc: keyLoc, Data: &js_ast.ENumber{Value: p.lexer.Number}}
		p.lexer.Next()
		return p.parsePropertyBindingSuffix(symbolKind, key, false)

	case js_lexer.TStringLiteral:
		key := js_ast.Expr{Loc: keyLoc, Data: &js_ast.EString{Value: p.lexer.StringLiteral}}
		p.lexer.Next()
		return p.parsePropertyBindingSuffix(symbolKind, key, false)

	case js_lexer.TOpenBracket:
		p.lexer.Next()
		key := p.parseExpr(js_ast.LComma)
		p.lexer.Expect(js_lexer.TCloseBracket)
		return p.parsePropertyBindingSuffix(symbolKind, key, true)

	default:
		name := p.lexer.Identifier
		nameLoc := p.lexer.Loc()
		if p.lexer.Token != js_lexer.TIdentifier {
			p.lexer.Expected(js_lexer.TIdentifier)
		}
		p.lexer.Next()
		key := js_ast.Expr{Loc: nameLoc, Data: &js_ast.EString{Value: name}}

		// Shorthand: "{a}" or "{a = 1}"
		if p.lexer.Token != js_lexer.TColon {
			ref := p.declareSymbol(symbolKind, nameLoc, name)
			binding := js_ast.Binding{Loc: nameLoc, Data: &js_ast.BIdentifier{Ref: ref}}

			var defaultValue *js_ast.Expr
			if p.lexer.Token == js_lexer.TEquals {
				p.lexer.Next()
				expr := p.parseExpr(js_ast.LComma)
				defaultValue = &expr
			}

			return js_ast.PropertyBinding{
				Key:          key,
				Value:        binding,
				DefaultValue: defaultValue,
			}
		}

		return p.parsePropertyBindingSuffix(symbolKind, key, false)
	}
}

func (p *parser) parsePropertyBindingSuffix(symbolKind js_ast.SymbolKind, key js_ast.Expr, isComputed bool) js_ast.PropertyBinding {
	p.lexer.Expect(js_lexer.TColon)
	value := p.parseBinding(symbolKind)

	var defaultValue *js_ast.Expr
	if p.lexer.Token == js_lexer.TEquals {
		p.lexer.Next()
		expr := p.parseExpr(js_ast.LComma)
		defaultValue = &expr
	}

	return js_ast.PropertyBinding{
		Key:          key,
		Value:        value,
		DefaultValue: defaultValue,
		IsComputed:   isComputed,
	}
}

////////////////////////////////////////////////////////////////////////////////
// Imports and exports

func (p *parser) parseImportStmt(loc logger.Loc) js_ast.Stmt {
	stmt := js_ast.SImport{}

	switch p.lexer.Token {
	case js_lexer.TStringLiteral:
		// "import 'path'"
		stmt.Path = p.lexer.StringLiteral
		stmt.PathLoc = p.lexer.Loc()
		p.lexer.Next()
		p.lexer.ExpectOrInsertSemicolon()
		return js_ast.Stmt{Loc: loc, Data: &stmt}

	case js_lexer.TAsterisk:
		// "import * as ns from 'path'"
		p.lexer.Next()
		p.lexer.ExpectContextualKeyword("as")
		stmt.StarName = p.parseImportName()

	case js_lexer.TOpenBrace:
		// "import {item1, item2} from 'path'"
		items := p.parseImportClause()
		stmt.Items = items

	case js_lexer.TIdentifier:
		// "import defaultItem from 'path'"
		stmt.DefaultName = p.parseImportName()

		if p.lexer.Token == js_lexer.TComma {
			p.lexer.Next()
			switch p.lexer.Token {
			case js_lexer.TAsterisk:
				// "import defaultItem, * as ns from 'path'"
				p.lexer.Next()
				p.lexer.ExpectContextualKeyword("as")
				stmt.StarName = p.parseImportName()

			case js_lexer.TOpenBrace:
				// "import defaultItem, {item1, item2} from 'path'"
				items := p.parseImportClause()
				stmt.Items = items

			default:
				p.lexer.Unexpected()
			}
		}

	default:
		p.lexer.Unexpected()
	}

	p.lexer.ExpectContextualKeyword("from")
	if p.lexer.Token != js_lexer.TStringLiteral {
		p.lexer.Expected(js_lexer.TStringLiteral)
	}
	stmt.Path = p.lexer.StringLiteral
	stmt.PathLoc = p.lexer.Loc()
	p.lexer.Next()
	p.lexer.ExpectOrInsertSemicolon()
	return js_ast.Stmt{Loc: loc, Data: &stmt}
}

func (p *parser) parseImportName() *js_ast.LocRef {
	nameLoc := p.lexer.Loc()
	name := p.lexer.Identifier
	if p.lexer.Token != js_lexer.TIdentifier {
		p.lexer.Expected(js_lexer.TIdentifier)
	}
	p.lexer.Next()
	ref := p.declareSymbol(js_ast.SymbolOther, nameLoc, name)
	return &js_ast.LocRef{Loc: nameLoc, Ref: ref}
}

func (p *parser) parseImportClause() []js_ast.ClauseItem {
	items := []js_ast.ClauseItem{}
	p.lexer.Expect(js_lexer.TOpenBrace)

	for p.lexer.Token != js_lexer.TCloseBrace {
		aliasLoc := p.lexer.Loc()
		alias := p.parseClauseAlias("import")
		name := alias
		nameLoc := aliasLoc
		p.lexer.Next()

		if p.lexer.IsContextualKeyword("as") {
			p.lexer.Next()
			nameLoc = p.lexer.Loc()
			name = p.lexer.Identifier
			if p.lexer.Token != js_lexer.TIdentifier {
				p.lexer.Expected(js_lexer.TIdentifier)
			}
			p.lexer.Next()
		}

		ref := p.declareSymbol(js_ast.SymbolOther, nameLoc, name)
		items = append(items, js_ast.ClauseItem{
			Alias:        alias,
			AliasLoc:     aliasLoc,
			Name:         js_ast.LocRef{Loc: nameLoc, Ref: ref},
			OriginalName: name,
		})

		if p.lexer.Token != js_lexer.TComma {
			break
		}
		p.lexer.Next()
	}

	p.lexer.Expect(js_lexer.TCloseBrace)
	return items
}

// A clause alias may be an identifier, a keyword, or a string: both
// "import {default as x}" and "export {x as 'name'}" are valid.
func (p *parser) parseClauseAlias(kind string) string {
	if p.lexer.Token == js_lexer.TStringLiteral {
		return p.lexer.StringLiteral
	}
	if p.lexer.Token != js_lexer.TIdentifier {
		if _, isKeyword := js_lexer.Keywords[p.lexer.Raw()]; !isKeyword {
			p.lexer.Expected(js_lexer.TIdentifier)
		}
		return p.lexer.Raw()
	}
	return p.lexer.Identifier
}

func (p *parser) parseExportStmt(loc logger.Loc) js_ast.Stmt {
	switch p.lexer.Token {
	case js_lexer.TDefault:
		p.lexer.Next()
		defaultLoc := p.lexer.Loc()
		defaultName := js_ast.LocRef{
			Loc: defaultLoc,
			Ref: p.newSymbol(js_ast.SymbolOther, p.source.IdentifierName+"_default"),
		}

		if p.lexer.Token == js_lexer.TFunction {
			p.lexer.Next()
			if p.lexer.Token == js_lexer.TIdentifier {
				stmt := p.parseFnStmt(defaultLoc, parseStmtOpts{}, false)
				return js_ast.Stmt{Loc: loc, Data: &js_ast.SExportDefault{
					DefaultName: defaultName,
					Value:       js_ast.ExprOrStmt{Stmt: &stmt},
				}}
			}
			fn := p.parseFn(nil, false)
			stmt := js_ast.Stmt{Loc: defaultLoc, Data: &js_ast.SFunction{Fn: fn}}
			return js_ast.Stmt{Loc: loc, Data: &js_ast.SExportDefault{
				DefaultName: defaultName,
				Value:       js_ast.ExprOrStmt{Stmt: &stmt},
			}}
		}

		if p.lexer.Token == js_lexer.TClass {
			p.lexer.Next()
			class := p.parseClass(p.lexer.Token == js_lexer.TIdentifier)
			stmt := js_ast.Stmt{Loc: defaultLoc, Data: &js_ast.SClass{Class: class}}
			return js_ast.Stmt{Loc: loc, Data: &js_ast.SExportDefault{
				DefaultName: defaultName,
				Value:       js_ast.ExprOrStmt{Stmt: &stmt},
			}}
		}

		if p.lexer.IsContextualKeyword("async") {
			clone := p.lexer
			clone.Next()
			if clone.Token == js_lexer.TFunction && !clone.HasNewlineBefore {
				p.lexer.Next()
				p.lexer.Next()
				if p.lexer.Token == js_lexer.TIdentifier {
					stmt := p.parseFnStmt(defaultLoc, parseStmtOpts{}, true)
					return js_ast.Stmt{Loc: loc, Data: &js_ast.SExportDefault{
						DefaultName: defaultName,
						Value:       js_ast.ExprOrStmt{Stmt: &stmt},
					}}
				}
				fn := p.parseFn(nil, true)
				stmt := js_ast.Stmt{Loc: defaultLoc, Data: &js_ast.SFunction{Fn: fn}}
				return js_ast.Stmt{Loc: loc, Data: &js_ast.SExportDefault{
					DefaultName: defaultName,
					Value:       js_ast.ExprOrStmt{Stmt: &stmt},
				}}
			}
		}

		expr := p.parseExpr(js_ast.LComma)
		p.lexer.ExpectOrInsertSemicolon()
		return js_ast.Stmt{Loc: loc, Data: &js_ast.SExportDefault{
			DefaultName: defaultName,
			Value:       js_ast.ExprOrStmt{Expr: &expr},
		}}

	case js_lexer.TAsterisk:
		p.lexer.Next()
		var alias *js_ast.ExportStarAlias
		if p.lexer.IsContextualKeyword("as") {
			p.lexer.Next()
			aliasLoc := p.lexer.Loc()
			name := p.parseClauseAlias("export")
			p.lexer.Next()
			alias = &js_ast.ExportStarAlias{Loc: aliasLoc, Name: name}
		}
		p.lexer.ExpectContextualKeyword("from")
		if p.lexer.Token != js_lexer.TStringLiteral {
			p.lexer.Expected(js_lexer.TStringLiteral)
		}
		path := p.lexer.StringLiteral
		pathLoc := p.lexer.Loc()
		p.lexer.Next()
		p.lexer.ExpectOrInsertSemicolon()
		return js_ast.Stmt{Loc: loc, Data: &js_ast.SExportStar{Alias: alias, Path: path, PathLoc: pathLoc}}

	case js_lexer.TOpenBrace:
		items := p.parseExportClause()
		if p.lexer.IsContextualKeyword("from") {
			p.lexer.Next()
			if p.lexer.Token != js_lexer.TStringLiteral {
				p.lexer.Expected(js_lexer.TStringLiteral)
			}
			path := p.lexer.StringLiteral
			pathLoc := p.lexer.Loc()
			p.lexer.Next()
			p.lexer.ExpectOrInsertSemicolon()
			return js_ast.Stmt{Loc: loc, Data: &js_ast.SExportFrom{Items: items, Path: path, PathLoc: pathLoc}}
		}
		p.lexer.ExpectOrInsertSemicolon()
		return js_ast.Stmt{Loc: loc, Data: &js_ast.SExportClause{Items: items}}

	case js_lexer.TVar, js_lexer.TConst, js_lexer.TFunction, js_lexer.TClass:
		return p.parseStmt(parseStmtOpts{isModuleScope: true, isExport: true})

	case js_lexer.TIdentifier:
		if p.lexer.IsContextualKeyword("let") || p.lexer.IsContextualKeyword("async") {
			return p.parseStmt(parseStmtOpts{isModuleScope: true, isExport: true})
		}
	}

	p.lexer.Unexpected()
	return js_ast.Stmt{}
}

func (p *parser) parseExportClause() []js_ast.ClauseItem {
	items := []js_ast.ClauseItem{}
	p.lexer.Expect(js_lexer.TOpenBrace)

	for p.lexer.Token != js_lexer.TCloseBrace {
		nameLoc := p.lexer.Loc()
		name := p.parseClauseAlias("export")
		alias := name
		aliasLoc := nameLoc
		p.lexer.Next()

		if p.lexer.IsContextualKeyword("as") {
			p.lexer.Next()
			aliasLoc = p.lexer.Loc()
			alias = p.parseClauseAlias("export")
			p.lexer.Next()
		}

		items = append(items, js_ast.ClauseItem{
			Alias:        alias,
			AliasLoc:     aliasLoc,
			Name:         js_ast.LocRef{Loc: nameLoc, Ref: p.storeNameInRef(name)},
			OriginalName: name,
		})

		if p.lexer.Token != js_lexer.TComma {
			break
		}
		p.lexer.Next()
	}

	p.lexer.Expect(js_lexer.TCloseBrace)
	return items
}

////////////////////////////////////////////////////////////////////////////////
// Functions and classes

func (p *parser) parseFn(name *js_ast.LocRef, isAsync bool) js_ast.Fn {
	fn := js_ast.Fn{Name: name, IsAsync: isAsync}

	scope := p.pushScope(js_ast.ScopeFunctionBody)

	// A function's own name is visible inside its body. For function
	// expressions this is the only place the name is declared.
	if name != nil {
		scope.Members[p.symbols[name.Ref.InnerIndex].OriginalName] = js_ast.ScopeMember{Ref: name.Ref, Loc: name.Loc}
	}
	fn.Args, fn.HasRestArg = p.parseFnArgs()

	bodyLoc := p.lexer.Loc()
	p.lexer.Expect(js_lexer.TOpenBrace)
	stmts := p.parseStmtsUpTo(js_lexer.TCloseBrace, parseStmtOpts{allowDirectives: true})
	p.lexer.Next()
	p.popScope()

	fn.Body = js_ast.FnBody{Loc: bodyLoc, Stmts: stmts, Scope: scope}
	return fn
}

func (p *parser) parseFnArgs() (args []js_ast.Arg, hasRestArg bool) {
	p.lexer.Expect(js_lexer.TOpenParen)

	for p.lexer.Token != js_lexer.TCloseParen {
		if p.lexer.Token == js_lexer.TDotDotDot {
			p.lexer.Next()
			hasRestArg = true
		}

		binding := p.parseBinding(js_ast.SymbolHoisted)

		var defaultValue *js_ast.Expr
		if p.lexer.Token == js_lexer.TEquals {
			p.lexer.Next()
			expr := p.parseExpr(js_ast.LComma)
			defaultValue = &expr
		}

		args = append(args, js_ast.Arg{Binding: binding, Default: defaultValue})
		if p.lexer.Token != js_lexer.TComma {
			break
		}
		p.lexer.Next()
	}

	p.lexer.Expect(js_lexer.TCloseParen)
	return
}

func (p *parser) parseClass(isStmt bool) js_ast.Class {
	class := js_ast.Class{}

	if p.lexer.Token == js_lexer.TIdentifier {
		nameLoc := p.lexer.Loc()
		name := p.lexer.Identifier
		p.lexer.Next()
		var ref js_ast.Ref
		if isStmt {
			ref = p.declareSymbol(js_ast.SymbolClass, nameLoc, name)
		} else {
			ref = p.newSymbol(js_ast.SymbolClass, name)
		}
		class.Name = &js_ast.LocRef{Loc: nameLoc, Ref: ref}
	}

	if p.lexer.Token == js_lexer.TExtends {
		p.lexer.Next()
		extends := p.parseExpr(js_ast.LNew)
		class.Extends = &extends
	}

	class.BodyLoc = p.lexer.Loc()
	p.lexer.Expect(js_lexer.TOpenBrace)

	for p.lexer.Token != js_lexer.TCloseBrace {
		if p.lexer.Token == js_lexer.TSemicolon {
			p.lexer.Next()
			continue
		}
		property := p.parseClassProperty()
		class.Properties = append(class.Properties, property)
	}

	p.lexer.Expect(js_lexer.TCloseBrace)
	return class
}

func (p *parser) parseClassProperty() js_ast.Property {
	kind := js_ast.PropertyNormal

	// "get x() {}" and "set x(v) {}"
	if p.lexer.Token == js_lexer.TIdentifier {
		raw := p.lexer.Identifier
		if raw == "get" || raw == "set" {
			clone := p.lexer
			clone.Next()
			if clone.Token != js_lexer.TOpenParen {
				p.lexer.Next()
				if raw == "get" {
					kind = js_ast.PropertyGet
				} else {
					kind = js_ast.PropertySet
				}
			}
		}
	}

	keyLoc := p.lexer.Loc()
	var key js_ast.Expr
	isComputed := false

	switch p.lexer.Token {
	case js_lexer.TStringLiteral:
		key = js_ast.Expr{Loc: keyLoc, Data: &js_ast.EString{Value: p.lexer.StringLiteral}}
		p.lexer.Next()
	case js_lexer.TNumericLiteral:
		key = js_ast.Expr{Loc: keyLoc, Data: &js_ast.ENumber{Value: p.lexer.Number}}
		p.lexer.Next()
	case js_lexer.TOpenBracket:
		p.lexer.Next()
		key = p.parseExpr(js_ast.LComma)
		p.lexer.Expect(js_lexer.TCloseBracket)
		isComputed = true
	default:
		name := p.lexer.Raw()
		if p.lexer.Token != js_lexer.TIdentifier {
			if _, isKeyword := js_lexer.Keywords[name]; !isKeyword {
				p.lexer.Expected(js_lexer.TIdentifier)
			}
		}
		key = js_ast.Expr{Loc: keyLoc, Data: &js_ast.EString{Value: name}}
		p.lexer.Next()
	}

	fn := p.parseFn(nil, false)
	value := js_ast.Expr{Loc: keyLoc, Data: &js_ast.EFunction{Fn: fn}}
	return js_ast.Property{
		Kind:       kind,
		Key:        key,
		Value:      &value,
		IsComputed: isComputed,
		IsMethod:   true,
	}
}
