package js_parser

import (
	"github.com/gopackjs/gopack/internal/js_ast"
	"github.com/gopackjs/gopack/internal/js_lexer"
	"github.com/gopackjs/gopack/internal/logger"
)

func (p *parser) parseExpr(level js_ast.L) js_ast.Expr {
	expr := p.parsePrefix(level)
	return p.parseSuffix(expr, level)
}

func (p *parser) parsePrefix(level js_ast.L) js_ast.Expr {
	loc := p.lexer.Loc()

	switch p.lexer.Token {
	case js_lexer.TThis:
		p.lexer.Next()
		return js_ast.Expr{Loc: loc, Data: &js_ast.EThis{}}

	case js_lexer.TNull:
		p.lexer.Next()
		return js_ast.Expr{Loc: loc, Data: &js_ast.ENull{}}

	case js_lexer.TTrue:
		p.lexer.Next()
		return js_ast.Expr{Loc: loc, Data: &js_ast.EBoolean{Value: true}}

	case js_lexer.TFalse:
		p.lexer.Next()
		return js_ast.Expr{Loc: loc, Data: &js_ast.EBoolean{Value: false}}

	case js_lexer.TStringLiteral:
		value := p.lexer.StringLiteral
		p.lexer.Next()
		return js_ast.Expr{Loc: loc, Data: &js_ast.EString{Value: value}}

	case js_lexer.TNumericLiteral:
		value := p.lexer.Number
		p.lexer.Next()
		return js_ast.Expr{Loc: loc, Data: &js_ast.ENumber{Value: value}}

	case js_lexer.TIdentifier:
		name := p.lexer.Identifier
		nameLoc := p.lexer.Loc()

		// "async function() {}", "async () => {}", "async x => {}"
		if name == "async" {
			clone := p.lexer
			clone.Next()
			if !clone.HasNewlineBefore {
				switch clone.Token {
				case js_lexer.TFunction:
					p.lexer.Next()
					p.lexer.Next()
					var fnName *js_ast.LocRef
					if p.lexer.Token == js_lexer.TIdentifier {
						fnName = p.fnExprName()
					}
					fn := p.parseFn(fnName, true /* isAsync */)
					return js_ast.Expr{Loc: loc, Data: &js_ast.EFunction{Fn: fn}}

				case js_lexer.TIdentifier:
					// "async x => {}"
					argName := clone.Identifier
					argLoc := clone.Loc()
					clone.Next()
					if clone.Token == js_lexer.TArrow && !clone.HasNewlineBefore {
						p.lexer.Next()
						p.lexer.Next()
						p.lexer.Next()
						return p.parseSingleArgArrow(loc, argLoc, argName, true /* isAsync */)
					}

				case js_lexer.TOpenParen:
					probe := clone
					probe.Next()
					if p.isParenArrowFrom(probe) {
						p.lexer.Next()
						p.lexer.Next()
						return p.parseParenArrow(loc, true /* isAsync */)
					}
					// Otherwise "async(...)" is a call to a function named
					// "async", handled by the identifier path below
				}
			}
		}

		// "await value"
		if name == "await" && !p.lexer.HasNewlineBefore {
			clone := p.lexer
			clone.Next()
			switch clone.Token {
			case js_lexer.TSemicolon, js_lexer.TCloseParen, js_lexer.TCloseBrace, js_lexer.TCloseBracket,
				js_lexer.TComma, js_lexer.TColon, js_lexer.TEndOfFile, js_lexer.TEquals, js_lexer.TArrow:
				// "await" is being used as an identifier
			default:
				p.lexer.Next()
				value := p.parseExpr(js_ast.LPrefix - 1)
				return js_ast.Expr{Loc: loc, Data: &js_ast.EAwait{Value: value}}
			}
		}

		p.lexer.Next()

		// "x => {}"
		if p.lexer.Token == js_lexer.TArrow && !p.lexer.HasNewlineBefore && level <= js_ast.LAssign {
			p.lexer.Next()
			return p.parseSingleArgArrow(loc, nameLoc, name, false /* isAsync */)
		}

		return js_ast.Expr{Loc: loc, Data: &js_ast.EIdentifier{Ref: p.storeNameInRef(name)}}

	case js_lexer.TImport:
		p.lexer.Next()
		p.lexer.Expect(js_lexer.TOpenParen)
		value := p.parseExpr(js_ast.LComma)
		p.lexer.Expect(js_lexer.TCloseParen)
		return js_ast.Expr{Loc: loc, Data: &js_ast.EImport{Expr: value}}

	case js_lexer.TFunction:
		p.lexer.Next()
		var fnName *js_ast.LocRef
		if p.lexer.Token == js_lexer.TIdentifier {
			fnName = p.fnExprName()
		}
		fn := p.parseFn(fnName, false /* isAsync */)
		return js_ast.Expr{Loc: loc, Data: &js_ast.EFunction{Fn: fn}}

	case js_lexer.TClass:
		p.lexer.Next()
		class := p.parseClass(false /* isStmt */)
		return js_ast.Expr{Loc: loc, Data: &js_ast.EClass{Class: class}}

	case js_lexer.TNew:
		p.lexer.Next()
		target := p.parseExpr(js_ast.LCall)
		var args []js_ast.Expr
		if p.lexer.Token == js_lexer.TOpenParen {
			args = p.parseCallArgs()
		}
		return js_ast.Expr{Loc: loc, Data: &js_ast.ENew{Target: target, Args: args}}

	case js_lexer.TOpenParen:
		p.lexer.Next()
		if p.isParenArrow() {
			if level > js_ast.LAssign {
				p.lexer.Unexpected()
			}
			return p.parseParenArrow(loc, false /* isAsync */)
		}

		// A parenthesized expression
		value := p.parseExpr(js_ast.LLowest)
		p.lexer.Expect(js_lexer.TCloseParen)
		return value

	case js_lexer.TOpenBracket:
		p.lexer.Next()
		items := []js_ast.Expr{}
		for p.lexer.Token != js_lexer.TCloseBracket {
			switch p.lexer.Token {
			case js_lexer.TComma:
				items = append(items, js_ast.Expr{Loc: p.lexer.Loc(), Data: &js_ast.EMissing{}})
				p.lexer.Next()
				continue

			case js_lexer.TDotDotDot:
				spreadLoc := p.lexer.Loc()
				p.lexer.Next()
				value := p.parseExpr(js_ast.LComma)
				items = append(items, js_ast.Expr{Loc: spreadLoc, Data: &js_ast.ESpread{Value: value}})

			default:
				items = append(items, p.parseExpr(js_ast.LComma))
			}

			if p.lexer.Token != js_lexer.TComma {
				break
			}
			p.lexer.Next()
		}
		p.lexer.Expect(js_lexer.TCloseBracket)
		return js_ast.Expr{Loc: loc, Data: &js_ast.EArray{Items: items}}

	case js_lexer.TOpenBrace:
		p.lexer.Next()
		properties := []js_ast.Property{}
		for p.lexer.Token != js_lexer.TCloseBrace {
			properties = append(properties, p.parseProperty())
			if p.lexer.Token != js_lexer.TComma {
				break
			}
			p.lexer.Next()
		}
		p.lexer.Expect(js_lexer.TCloseBrace)
		return js_ast.Expr{Loc: loc, Data: &js_ast.EObject{Properties: properties}}

	case js_lexer.TExclamation:
		p.lexer.Next()
		return js_ast.Expr{Loc: loc, Data: &js_ast.EUnary{Op: js_ast.UnOpNot, Value: p.parseExpr(js_ast.LPrefix - 1)}}

	case js_lexer.TMinus:
		p.lexer.Next()
		return js_ast.Expr{Loc: loc, Data: &js_ast.EUnary{Op: js_ast.UnOpNeg, Value: p.parseExpr(js_ast.LPrefix - 1)}}

	case js_lexer.TPlus:
		p.lexer.Next()
		return js_ast.Expr{Loc: loc, Data: &js_ast.EUnary{Op: js_ast.UnOpPos, Value: p.parseExpr(js_ast.LPrefix - 1)}}

	case js_lexer.TTypeof:
		p.lexer.Next()
		return js_ast.Expr{Loc: loc, Data: &js_ast.EUnary{Op: js_ast.UnOpTypeof, Value: p.parseExpr(js_ast.LPrefix - 1)}}

	case js_lexer.TVoid:
		p.lexer.Next()
		return js_ast.Expr{Loc: loc, Data: &js_ast.EUnary{Op: js_ast.UnOpVoid, Value: p.parseExpr(js_ast.LPrefix - 1)}}

	case js_lexer.TDelete:
		p.lexer.Next()
		return js_ast.Expr{Loc: loc, Data: &js_ast.EUnary{Op: js_ast.UnOpDelete, Value: p.parseExpr(js_ast.LPrefix - 1)}}

	case js_lexer.TMinusMinus:
		p.lexer.Next()
		return js_ast.Expr{Loc: loc, Data: &js_ast.EUnary{Op: js_ast.UnOpPreDec, Value: p.parseExpr(js_ast.LPrefix - 1)}}

	case js_lexer.TPlusPlus:
		p.lexer.Next()
		return js_ast.Expr{Loc: loc, Data: &js_ast.EUnary{Op: js_ast.UnOpPreInc, Value: p.parseExpr(js_ast.LPrefix - 1)}}
	}

	p.lexer.Unexpected()
	return js_ast.Expr{}
}

func (p *parser) fnExprName() *js_ast.LocRef {
	nameLoc := p.lexer.Loc()
	name := p.lexer.Identifier
	p.lexer.Next()
	return &js_ast.LocRef{Loc: nameLoc, Ref: p.newSymbol(js_ast.SymbolOther, name)}
}

// isParenArrow is called with the lexer just past an open paren. It scans a
// cloned lexer to the matching close paren and reports whether "=>" follows,
// which decides between an arrow parameter list and a parenthesized
// expression without backtracking.
func (p *parser) isParenArrow() bool {
	return p.isParenArrowFrom(p.lexer)
}

func (p *parser) isParenArrowFrom(clone js_lexer.Lexer) (result bool) {
	// The scan must not log errors or abort the parse; a syntax error here
	// will be reported by the non-speculative parse that follows
	clone.IsLogDisabled = true
	defer func() {
		if r := recover(); r != nil {
			if _, isLexerPanic := r.(js_lexer.LexerPanic); isLexerPanic {
				result = false
				return
			}
			panic(r)
		}
	}()

	depth := 1
	for depth > 0 {
		switch clone.Token {
		case js_lexer.TOpenParen:
			depth++
		case js_lexer.TCloseParen:
			depth--
		case js_lexer.TEndOfFile:
			return false
		}
		if depth == 0 {
			break
		}
		clone.Next()
	}
	clone.Next()
	return clone.Token == js_lexer.TArrow && !clone.HasNewlineBefore
}

// parseParenArrow is called with the lexer just past the open paren of an
// arrow function's parameter list
func (p *parser) parseParenArrow(loc logger.Loc, isAsync bool) js_ast.Expr {
	scope := p.pushScope(js_ast.ScopeFunctionBody)
	args, hasRestArg := p.parseParenArgs()
	if p.lexer.Token != js_lexer.TArrow {
		p.lexer.Expected(js_lexer.TArrow)
	}
	p.lexer.Next()
	return p.parseArrowBodyInScope(loc, scope, args, hasRestArg, isAsync)
}

func (p *parser) parseParenArgs() (args []js_ast.Arg, hasRestArg bool) {
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

// parseSingleArgArrow is the entry point for "x => ..." arrows, where the
// argument couldn't be declared before the arrow was recognized
func (p *parser) parseSingleArgArrow(loc logger.Loc, argLoc logger.Loc, argName string, isAsync bool) js_ast.Expr {
	scope := p.pushScope(js_ast.ScopeFunctionBody)
	ref := p.declareSymbol(js_ast.SymbolHoisted, argLoc, argName)
	args := []js_ast.Arg{{Binding: js_ast.Binding{Loc: argLoc, Data: &js_ast.BIdentifier{Ref: ref}}}}
	return p.parseArrowBodyInScope(loc, scope, args, false, isAsync)
}

func (p *parser) parseArrowBodyInScope(loc logger.Loc, scope *js_ast.Scope, args []js_ast.Arg, hasRestArg bool, isAsync bool) js_ast.Expr {
	arrow := &js_ast.EArrow{
		Args:       args,
		HasRestArg: hasRestArg,
		IsAsync:    isAsync,
	}

	if p.lexer.Token == js_lexer.TOpenBrace {
		bodyLoc := p.lexer.Loc()
		p.lexer.Next()
		stmts := p.parseStmtsUpTo(js_lexer.TCloseBrace, parseStmtOpts{allowDirectives: true})
		p.lexer.Next()
		arrow.Body = js_ast.FnBody{Loc: bodyLoc, Stmts: stmts, Scope: scope}
	} else {
		bodyLoc := p.lexer.Loc()
		expr := p.parseExpr(js_ast.LComma)
		arrow.PreferExpr = true
		arrow.Body = js_ast.FnBody{
			Loc:   bodyLoc,
			Stmts: []js_ast.Stmt{{Loc: bodyLoc, Data: &js_ast.SReturn{Value: &expr}}},
			Scope: scope,
		}
	}

	p.popScope()
	return js_ast.Expr{Loc: loc, Data: arrow}
}

func (p *parser) parseCallArgs() []js_ast.Expr {
	args := []js_ast.Expr{}
	p.lexer.Expect(js_lexer.TOpenParen)

	for p.lexer.Token != js_lexer.TCloseParen {
		if p.lexer.Token == js_lexer.TDotDotDot {
			spreadLoc := p.lexer.Loc()
			p.lexer.Next()
			value := p.parseExpr(js_ast.LComma)
			args = append(args, js_ast.Expr{Loc: spreadLoc, Data: &js_ast.ESpread{Value: value}})
		} else {
			args = append(args, p.parseExpr(js_ast.LComma))
		}
		if p.lexer.Token != js_lexer.TComma {
			break
		}
		p.lexer.Next()
	}

	p.lexer.Expect(js_lexer.TCloseParen)
	return args
}

func (p *parser) parseProperty() js_ast.Property {
	keyLoc := p.lexer.Loc()

	switch p.lexer.Token {
	case js_lexer.TDotDotDot:
		p.lexer.Next()
		value := p.parseExpr(js_ast.LComma)
		return js_ast.Property{
			Kind:  js_ast.PropertySpread,
			Value: &value,
		}

	case js_lexer.TNumericLiteral:
		key := js_ast.Expr{Loc: keyLoc, Data: &js_ast.ENumber{Value: p.lexer.Number}}
		p.lexer.Next()
		return p.parsePropertySuffix(key, false)

	case js_lexer.TStringLiteral:
		key := js_ast.Expr{Loc: keyLoc, Data: &js_ast.EString{Value: p.lexer.StringLiteral}}
		p.lexer.Next()
		return p.parsePropertySuffix(key, false)

	case js_lexer.TOpenBracket:
		p.lexer.Next()
		key := p.parseExpr(js_ast.LComma)
		p.lexer.Expect(js_lexer.TCloseBracket)
		return p.parsePropertySuffix(key, true)

	default:
		name := p.lexer.Raw()
		if p.lexer.Token != js_lexer.TIdentifier {
			if _, isKeyword := js_lexer.Keywords[name]; !isKeyword {
				p.lexer.Expected(js_lexer.TIdentifier)
			}
		}

		// "get x() {}" and "set x(v) {}"
		if name == "get" || name == "set" {
			clone := p.lexer
			clone.Next()
			switch clone.Token {
			case js_lexer.TColon, js_lexer.TComma, js_lexer.TCloseBrace, js_lexer.TOpenParen:
				// A property or method actually named "get"/"set"
			default:
				p.lexer.Next()
				kind := js_ast.PropertyGet
				if name == "set" {
					kind = js_ast.PropertySet
				}
				property := p.parseProperty()
				property.Kind = kind
				return property
			}
		}

		p.lexer.Next()
		key := js_ast.Expr{Loc: keyLoc, Data: &js_ast.EString{Value: name}}

		// Shorthand: "{a}"
		if p.lexer.Token != js_lexer.TColon && p.lexer.Token != js_lexer.TOpenParen {
			value := js_ast.Expr{Loc: keyLoc, Data: &js_ast.EIdentifier{Ref: p.storeNameInRef(name)}}
			return js_ast.Property{
				Key:          key,
				Value:        &value,
				WasShorthand: true,
			}
		}

		return p.parsePropertySuffix(key, false)
	}
}

func (p *parser) parsePropertySuffix(key js_ast.Expr, isComputed bool) js_ast.Property {
	// A method: "{ foo() {} }"
	if p.lexer.Token == js_lexer.TOpenParen {
		fn := p.parseFn(nil, false)
		value := js_ast.Expr{Loc: key.Loc, Data: &js_ast.EFunction{Fn: fn}}
		return js_ast.Property{
			Key:        key,
			Value:      &value,
			IsComputed: isComputed,
			IsMethod:   true,
		}
	}

	p.lexer.Expect(js_lexer.TColon)
	value := p.parseExpr(js_ast.LComma)
	return js_ast.Property{
		Key:        key,
		Value:      &value,
		IsComputed: isComputed,
	}
}

func (p *parser) parseSuffix(left js_ast.Expr, level js_ast.L) js_ast.Expr {
	for {
		switch p.lexer.Token {
		case js_lexer.TDot:
			p.lexer.Next()
			nameLoc := p.lexer.Loc()
			name := p.lexer.Raw()
			if p.lexer.Token != js_lexer.TIdentifier {
				if _, isKeyword := js_lexer.Keywords[name]; !isKeyword {
					p.lexer.Expected(js_lexer.TIdentifier)
				}
			}
			p.lexer.Next()
			left = js_ast.Expr{Loc: left.Loc, Data: &js_ast.EDot{Target: left, Name: name, NameLoc: nameLoc}}

		case js_lexer.TOpenBracket:
			p.lexer.Next()
			index := p.parseExpr(js_ast.LLowest)
			p.lexer.Expect(js_lexer.TCloseBracket)
			left = js_ast.Expr{Loc: left.Loc, Data: &js_ast.EIndex{Target: left, Index: index}}

		case js_lexer.TOpenParen:
			if level >= js_ast.LCall {
				return left
			}
			args := p.parseCallArgs()
			left = js_ast.Expr{Loc: left.Loc, Data: &js_ast.ECall{Target: left, Args: args}}

		case js_lexer.TQuestion:
			if level >= js_ast.LConditional {
				return left
			}
			p.lexer.Next()

			// The middle expression is parsed with commas and "in" allowed
			oldAllowIn := p.allowIn
			p.allowIn = true
			yes := p.parseExpr(js_ast.LComma)
			p.allowIn = oldAllowIn

			p.lexer.Expect(js_lexer.TColon)
			no := p.parseExpr(js_ast.LComma)
			left = js_ast.Expr{Loc: left.Loc, Data: &js_ast.EIf{Test: left, Yes: yes, No: no}}

		case js_lexer.TPlusPlus:
			if level >= js_ast.LPostfix || p.lexer.HasNewlineBefore {
				return left
			}
			p.lexer.Next()
			left = js_ast.Expr{Loc: left.Loc, Data: &js_ast.EUnary{Op: js_ast.UnOpPostInc, Value: left}}

		case js_lexer.TMinusMinus:
			if level >= js_ast.LPostfix || p.lexer.HasNewlineBefore {
				return left
			}
			p.lexer.Next()
			left = js_ast.Expr{Loc: left.Loc, Data: &js_ast.EUnary{Op: js_ast.UnOpPostDec, Value: left}}

		case js_lexer.TComma:
			if level >= js_ast.LComma {
				return left
			}
			p.lexer.Next()
			left = js_ast.Expr{Loc: left.Loc, Data: &js_ast.EBinary{
				Op:    js_ast.BinOpComma,
				Left:  left,
				Right: p.parseExpr(js_ast.LComma),
			}}

		case js_lexer.TIn:
			if level >= js_ast.LCompare || !p.allowIn {
				return left
			}
			p.lexer.Next()
			left = js_ast.Expr{Loc: left.Loc, Data: &js_ast.EBinary{
				Op:    js_ast.BinOpIn,
				Left:  left,
				Right: p.parseExpr(js_ast.LCompare),
			}}

		case js_lexer.TInstanceof:
			if level >= js_ast.LCompare {
				return left
			}
			p.lexer.Next()
			left = js_ast.Expr{Loc: left.Loc, Data: &js_ast.EBinary{
				Op:    js_ast.BinOpInstanceof,
				Left:  left,
				Right: p.parseExpr(js_ast.LCompare),
			}}

		default:
			if op, opLevel, ok := binaryOpFor(p.lexer.Token); ok {
				if level >= opLevel {
					return left
				}

				// Right-associative operators parse their right side at the
				// same level; left-associative ones at one level higher
				rightLevel := opLevel
				if op.IsRightAssociative() {
					rightLevel = opLevel - 1
				}

				p.lexer.Next()
				left = js_ast.Expr{Loc: left.Loc, Data: &js_ast.EBinary{
					Op:    op,
					Left:  left,
					Right: p.parseExpr(rightLevel),
				}}
				continue
			}

			return left
		}
	}
}

func binaryOpFor(token js_lexer.T) (js_ast.OpCode, js_ast.L, bool) {
	switch token {
	case js_lexer.TPlus:
		return js_ast.BinOpAdd, js_ast.LAdd, true
	case js_lexer.TMinus:
		return js_ast.BinOpSub, js_ast.LAdd, true
	case js_lexer.TAsterisk:
		return js_ast.BinOpMul, js_ast.LMultiply, true
	case js_lexer.TSlash:
		return js_ast.BinOpDiv, js_ast.LMultiply, true
	case js_lexer.TPercent:
		return js_ast.BinOpRem, js_ast.LMultiply, true
	case js_lexer.TLessThan:
		return js_ast.BinOpLt, js_ast.LCompare, true
	case js_lexer.TLessThanEquals:
		return js_ast.BinOpLe, js_ast.LCompare, true
	case js_lexer.TGreaterThan:
		return js_ast.BinOpGt, js_ast.LCompare, true
	case js_lexer.TGreaterThanEquals:
		return js_ast.BinOpGe, js_ast.LCompare, true
	case js_lexer.TEqualsEquals:
		return js_ast.BinOpLooseEq, js_ast.LEquals, true
	case js_lexer.TExclamationEquals:
		return js_ast.BinOpLooseNe, js_ast.LEquals, true
	case js_lexer.TEqualsEqualsEquals:
		return js_ast.BinOpStrictEq, js_ast.LEquals, true
	case js_lexer.TExclamationEqualsEquals:
		return js_ast.BinOpStrictNe, js_ast.LEquals, true
	case js_lexer.TQuestionQuestion:
		return js_ast.BinOpNullishCoalescing, js_ast.LNullishCoalescing, true
	case js_lexer.TBarBar:
		return js_ast.BinOpLogicalOr, js_ast.LLogicalOr, true
	case js_lexer.TAmpersandAmpersand:
		return js_ast.BinOpLogicalAnd, js_ast.LLogicalAnd, true
	case js_lexer.TEquals:
		return js_ast.BinOpAssign, js_ast.LAssign, true
	case js_lexer.TPlusEquals:
		return js_ast.BinOpAddAssign, js_ast.LAssign, true
	case js_lexer.TMinusEquals:
		return js_ast.BinOpSubAssign, js_ast.LAssign, true
	case js_lexer.TAsteriskEquals:
		return js_ast.BinOpMulAssign, js_ast.LAssign, true
	case js_lexer.TSlashEquals:
		return js_ast.BinOpDivAssign, js_ast.LAssign, true
	case js_lexer.TPercentEquals:
		return js_ast.BinOpRemAssign, js_ast.LAssign, true
	case js_lexer.TQuestionQuestionEquals:
		return js_ast.BinOpNullishCoalescingAssign, js_ast.LAssign, true
	case js_lexer.TBarBarEquals:
		return js_ast.BinOpLogicalOrAssign, js_ast.LAssign, true
	case js_lexer.TAmpersandAmpersandEquals:
		return js_ast.BinOpLogicalAndAssign, js_ast.LAssign, true
	}
	return 0, 0, false
}
