package js_ast

import (
	"github.com/gopackjs/gopack/internal/logger"
)

func Assign(a Expr, b Expr) Expr {
	return Expr{Loc: a.Loc, Data: &EBinary{Op: BinOpAssign, Left: a, Right: b}}
}

func AssignStmt(a Expr, b Expr) Stmt {
	return Stmt{Loc: a.Loc, Data: &SExpr{Value: Assign(a, b)}}
}

func ExprStmt(value Expr) Stmt {
	return Stmt{Loc: value.Loc, Data: &SExpr{Value: value}}
}

func Ident(loc logger.Loc, ref Ref) Expr {
	return Expr{Loc: loc, Data: &EIdentifier{Ref: ref}}
}

func Str(loc logger.Loc, value string) Expr {
	return Expr{Loc: loc, Data: &EString{Value: value}}
}

func Dot(target Expr, name string, nameLoc logger.Loc) Expr {
	return Expr{Loc: target.Loc, Data: &EDot{Target: target, Name: name, NameLoc: nameLoc}}
}

func Call(target Expr, args ...Expr) Expr {
	return Expr{Loc: target.Loc, Data: &ECall{Target: target, Args: args}}
}

// VarDecl builds "var <ref> = <value>;" ("var <ref>;" when value is nil)
func VarDecl(loc logger.Loc, ref Ref, value *Expr) Stmt {
	return Stmt{Loc: loc, Data: &SLocal{
		Kind: LocalVar,
		Decls: []Decl{{
			Binding: Binding{Loc: loc, Data: &BIdentifier{Ref: ref}},
			Value:   value,
		}},
	}}
}

// IsStringLiteral unwraps an expression that is a plain string literal
func IsStringLiteral(value Expr) (string, bool) {
	if str, ok := value.Data.(*EString); ok {
		return str.Value, true
	}
	return "", false
}
