package js_ast

import (
	"github.com/gopackjs/gopack/internal/logger"
)

// Every module is parsed into a separate AST data structure. The parser also
// resolves all scopes and binds all symbols in the tree.
//
// Identifiers in the tree are referenced by a Ref, which is a pointer into
// the symbol table for the file. The symbol table is stored as a top-level
// field in the AST so it can be accessed without traversing the tree. For
// example, a renaming pass can rewrite a symbol's name without touching the
// tree at all.
//
// Unlike a general-purpose compiler AST, this tree is meant to be mutated:
// the hoisting pass rewrites it in place and hands it back to the caller.

type L int

// https://developer.mozilla.org/en-US/docs/Web/JavaScript/Reference/Operators/Operator_Precedence
const (
	LLowest L = iota
	LComma
	LSpread
	LAssign
	LConditional
	LNullishCoalescing
	LLogicalOr
	LLogicalAnd
	LEquals
	LCompare
	LAdd
	LMultiply
	LPrefix
	LPostfix
	LNew
	LCall
	LMember
)

type OpCode int

func (op OpCode) IsPrefix() bool {
	return op < UnOpPostDec
}

// If you add a new token, remember to add it to "OpTable" too
const (
	// Prefix
	UnOpPos OpCode = iota
	UnOpNeg
	UnOpNot
	UnOpVoid
	UnOpTypeof
	UnOpDelete

	// Prefix update
	UnOpPreDec
	UnOpPreInc

	// Postfix update
	UnOpPostDec
	UnOpPostInc

	// Left-associative
	BinOpAdd
	BinOpSub
	BinOpMul
	BinOpDiv
	BinOpRem
	BinOpLt
	BinOpLe
	BinOpGt
	BinOpGe
	BinOpIn
	BinOpInstanceof
	BinOpLooseEq
	BinOpLooseNe
	BinOpStrictEq
	BinOpStrictNe
	BinOpNullishCoalescing
	BinOpLogicalOr
	BinOpLogicalAnd

	// Non-associative
	BinOpComma

	// Right-associative
	BinOpAssign
	BinOpAddAssign
	BinOpSubAssign
	BinOpMulAssign
	BinOpDivAssign
	BinOpRemAssign
	BinOpNullishCoalescingAssign
	BinOpLogicalOrAssign
	BinOpLogicalAndAssign
)

func (op OpCode) IsLeftAssociative() bool {
	return op >= BinOpAdd && op < BinOpComma
}

func (op OpCode) IsRightAssociative() bool {
	return op >= BinOpAssign
}

type AssignTarget uint8

const (
	AssignTargetNone    AssignTarget = iota
	AssignTargetReplace              // "a = b"
	AssignTargetUpdate               // "a += b"
)

func (op OpCode) BinaryAssignTarget() AssignTarget {
	if op == BinOpAssign {
		return AssignTargetReplace
	}
	if op > BinOpAssign {
		return AssignTargetUpdate
	}
	return AssignTargetNone
}

func (op OpCode) UnaryAssignTarget() AssignTarget {
	if op >= UnOpPreDec && op <= UnOpPostInc {
		return AssignTargetUpdate
	}
	return AssignTargetNone
}

type opTableEntry struct {
	Text      string
	Level     L
	IsKeyword bool
}

var OpTable = []opTableEntry{
	// Prefix
	{"+", LPrefix, false},
	{"-", LPrefix, false},
	{"!", LPrefix, false},
	{"void", LPrefix, true},
	{"typeof", LPrefix, true},
	{"delete", LPrefix, true},

	// Prefix update
	{"--", LPrefix, false},
	{"++", LPrefix, false},

	// Postfix update
	{"--", LPostfix, false},
	{"++", LPostfix, false},

	// Left-associative
	{"+", LAdd, false},
	{"-", LAdd, false},
	{"*", LMultiply, false},
	{"/", LMultiply, false},
	{"%", LMultiply, false},
	{"<", LCompare, false},
	{"<=", LCompare, false},
	{">", LCompare, false},
	{">=", LCompare, false},
	{"in", LCompare, true},
	{"instanceof", LCompare, true},
	{"==", LEquals, false},
	{"!=", LEquals, false},
	{"===", LEquals, false},
	{"!==", LEquals, false},
	{"??", LNullishCoalescing, false},
	{"||", LLogicalOr, false},
	{"&&", LLogicalAnd, false},

	// Non-associative
	{",", LComma, false},

	// Right-associative
	{"=", LAssign, false},
	{"+=", LAssign, false},
	{"-=", LAssign, false},
	{"*=", LAssign, false},
	{"/=", LAssign, false},
	{"%=", LAssign, false},
	{"??=", LAssign, false},
	{"||=", LAssign, false},
	{"&&=", LAssign, false},
}

type LocRef struct {
	Loc logger.Loc
	Ref Ref
}

type PropertyKind int

const (
	PropertyNormal PropertyKind = iota
	PropertyGet
	PropertySet
	PropertySpread
)

type Property struct {
	Key Expr

	// This is omitted for shorthand and spread properties
	Value *Expr

	Kind         PropertyKind
	IsComputed   bool
	IsMethod     bool
	WasShorthand bool
}

type PropertyBinding struct {
	Key          Expr
	Value        Binding
	DefaultValue *Expr
	IsComputed   bool
	IsSpread     bool
}

type Arg struct {
	Binding Binding
	Default *Expr
}

type Fn struct {
	Name       *LocRef
	Args       []Arg
	Body       FnBody
	IsAsync    bool
	HasRestArg bool
}

type FnBody struct {
	Loc   logger.Loc
	Stmts []Stmt

	// Filled in by the parser; args and hoisted vars are declared here
	Scope *Scope
}

type Class struct {
	Name       *LocRef
	Extends    *Expr
	BodyLoc    logger.Loc
	Properties []Property
}

type ArrayBinding struct {
	Binding      Binding
	DefaultValue *Expr
}

type Binding struct {
	Loc  logger.Loc
	Data B
}

// This interface is never called. Its purpose is to encode a variant type in
// Go's type system.
type B interface{ isBinding() }

type BMissing struct{}

type BIdentifier struct{ Ref Ref }

type BArray struct {
	Items     []ArrayBinding
	HasSpread bool
}

type BObject struct {
	Properties []PropertyBinding
}

func (*BMissing) isBinding()    {}
func (*BIdentifier) isBinding() {}
func (*BArray) isBinding()      {}
func (*BObject) isBinding()     {}

type Expr struct {
	Loc  logger.Loc
	Data E
}

// This interface is never called. Its purpose is to encode a variant type in
// Go's type system.
type E interface{ isExpr() }

type EArray struct {
	Items []Expr
}

type EUnary struct {
	Op    OpCode
	Value Expr
}

type EBinary struct {
	Op    OpCode
	Left  Expr
	Right Expr
}

type EBoolean struct{ Value bool }

type ENull struct{}

type EUndefined struct{}

type EThis struct{}

type ENew struct {
	Target Expr
	Args   []Expr
}

type ECall struct {
	Target Expr
	Args   []Expr
}

type EDot struct {
	Target  Expr
	Name    string
	NameLoc logger.Loc
}

type EIndex struct {
	Target Expr
	Index  Expr
}

type EArrow struct {
	Args       []Arg
	Body       FnBody
	IsAsync    bool
	HasRestArg bool

	// Use shorthand if true and "Body" is a single return statement
	PreferExpr bool
}

type EFunction struct{ Fn Fn }

type EClass struct{ Class Class }

type EIdentifier struct {
	Ref Ref
}

type EMissing struct{}

type ENumber struct{ Value float64 }

type EObject struct {
	Properties []Property
}

type ESpread struct{ Value Expr }

type EString struct {
	Value string
}

type EAwait struct {
	Value Expr
}

type EIf struct {
	Test Expr
	Yes  Expr
	No   Expr
}

// A dynamic "import(...)" expression
type EImport struct {
	Expr Expr
}

func (*EArray) isExpr()      {}
func (*EUnary) isExpr()      {}
func (*EBinary) isExpr()     {}
func (*EBoolean) isExpr()    {}
func (*ENull) isExpr()       {}
func (*EUndefined) isExpr()  {}
func (*EThis) isExpr()       {}
func (*ENew) isExpr()        {}
func (*ECall) isExpr()       {}
func (*EDot) isExpr()        {}
func (*EIndex) isExpr()      {}
func (*EArrow) isExpr()      {}
func (*EFunction) isExpr()   {}
func (*EClass) isExpr()      {}
func (*EIdentifier) isExpr() {}
func (*EMissing) isExpr()    {}
func (*ENumber) isExpr()     {}
func (*EObject) isExpr()     {}
func (*ESpread) isExpr()     {}
func (*EString) isExpr()     {}
func (*EAwait) isExpr()      {}
func (*EIf) isExpr()         {}
func (*EImport) isExpr()     {}

type ExprOrStmt struct {
	Expr *Expr
	Stmt *Stmt
}

type Stmt struct {
	Loc  logger.Loc
	Data S
}

// This interface is never called. Its purpose is to encode a variant type in
// Go's type system.
type S interface{ isStmt() }

type SBlock struct {
	Stmts []Stmt
	Scope *Scope
}

type SDebugger struct{}

type SEmpty struct{}

type SDirective struct {
	Value string
}

type SExpr struct {
	Value Expr
}

type SFunction struct {
	Fn       Fn
	IsExport bool
}

type SClass struct {
	Class    Class
	IsExport bool
}

type SIf struct {
	Test Expr
	Yes  Stmt
	No   *Stmt
}

type SFor struct {
	Init   *Stmt // May be a SLocal or SExpr
	Test   *Expr
	Update *Expr
	Body   Stmt
}

type SWhile struct {
	Test Expr
	Body Stmt
}

type SReturn struct {
	Value *Expr
}

type SThrow struct {
	Value Expr
}

type SBreak struct{}

type SContinue struct{}

type LocalKind uint8

const (
	LocalVar LocalKind = iota
	LocalLet
	LocalConst
)

func (kind LocalKind) String() string {
	switch kind {
	case LocalLet:
		return "let"
	case LocalConst:
		return "const"
	default:
		return "var"
	}
}

type Decl struct {
	Binding Binding
	Value   *Expr
}

type SLocal struct {
	Decls    []Decl
	Kind     LocalKind
	IsExport bool
}

// This object represents all of these kinds of import statements:
//
//	import 'path'
//	import {item1, item2} from 'path'
//	import * as ns from 'path'
//	import defaultItem, {item1, item2} from 'path'
//	import defaultItem, * as ns from 'path'
type SImport struct {
	DefaultName *LocRef
	Items       []ClauseItem
	StarName    *LocRef
	Path        string
	PathLoc     logger.Loc
}

// "export {a, b as c}"
type SExportClause struct {
	Items []ClauseItem
}

// "export {a, b as c} from 'path'"
type SExportFrom struct {
	Items   []ClauseItem
	Path    string
	PathLoc logger.Loc
}

type ExportStarAlias struct {
	Loc  logger.Loc
	Name string
}

// "export * from 'path'" and "export * as ns from 'path'"
type SExportStar struct {
	Alias   *ExportStarAlias
	Path    string
	PathLoc logger.Loc
}

// "export default value"
type SExportDefault struct {
	DefaultName LocRef
	Value       ExprOrStmt // May be a SFunction or SClass
}

func (*SBlock) isStmt()         {}
func (*SDebugger) isStmt()      {}
func (*SEmpty) isStmt()         {}
func (*SDirective) isStmt()     {}
func (*SExpr) isStmt()          {}
func (*SFunction) isStmt()      {}
func (*SClass) isStmt()         {}
func (*SIf) isStmt()            {}
func (*SFor) isStmt()           {}
func (*SWhile) isStmt()         {}
func (*SReturn) isStmt()        {}
func (*SThrow) isStmt()         {}
func (*SBreak) isStmt()         {}
func (*SContinue) isStmt()      {}
func (*SLocal) isStmt()         {}
func (*SImport) isStmt()        {}
func (*SExportClause) isStmt()  {}
func (*SExportFrom) isStmt()    {}
func (*SExportStar) isStmt()    {}
func (*SExportDefault) isStmt() {}

type ClauseItem struct {
	// The external name: the imported name for import clauses and the
	// exported name for export clauses
	Alias    string
	AliasLoc logger.Loc

	// The local binding, when one exists in this file
	Name LocRef

	// This is needed for "export {foo as bar} from 'path'" statements. That
	// case is a re-export and "foo" names a symbol in another module, so
	// there is no local Ref for it.
	OriginalName string
}

type SymbolKind uint8

const (
	// An unbound symbol is one that isn't declared in the file it's
	// referenced in. For example, using "window" without declaring it will
	// be unbound.
	SymbolUnbound SymbolKind = iota

	// These symbols are hoisted out of the scope they are declared in to the
	// closest containing function or module scope: function arguments,
	// function statements, and variables declared using "var"
	SymbolHoisted
	SymbolHoistedFunction

	// Classes and "let"/"const" declarations are block-scoped
	SymbolClass
	SymbolConst
	SymbolOther
)

func (kind SymbolKind) IsHoisted() bool {
	return kind == SymbolHoisted || kind == SymbolHoistedFunction
}

var InvalidRef = Ref{^uint32(0)}

// A Ref is a handle into the symbol slice stored on the AST. Each file has
// its own symbol slice; the hoisting pass never mixes refs across files.
type Ref struct {
	InnerIndex uint32
}

type Symbol struct {
	// This is the name that came from the parser or from a rename. The
	// printer always prints this name.
	OriginalName string

	// An estimate of the number of uses of this symbol. This is used to
	// detect whether a symbol is used or not, e.g. to skip rewriting an
	// unreferenced import specifier. It should always be non-zero when the
	// symbol is used.
	UseCountEstimate uint32

	Kind SymbolKind

	// True if the symbol is written to somewhere other than its declaration.
	// Renaming such a binding away from its declaration is not safe, so the
	// hoisting pass aliases it instead (see safeRename).
	IsReassigned bool

	// Certain symbols must not be renamed, e.g. the synthesized "exports"
	// binding inside a wrapper closure.
	MustNotBeRenamed bool
}

type ScopeKind int

const (
	ScopeBlock ScopeKind = iota

	// The scopes below stop hoisted variables from extending into parent
	// scopes
	ScopeEntry // This is the module scope
	ScopeFunctionBody
)

func (kind ScopeKind) StopsHoisting() bool {
	return kind >= ScopeEntry
}

type ScopeMember struct {
	Loc logger.Loc
	Ref Ref
}

type Scope struct {
	Parent   *Scope
	Children []*Scope
	Members  map[string]ScopeMember

	// Refs of symbols synthesized after parsing (e.g. export bindings). They
	// belong to this scope but have no declaration site in the source.
	Generated []Ref

	Kind ScopeKind

	// If a scope contains a direct eval() expression, then none of the
	// symbols inside that scope can be renamed
	ContainsDirectEval bool
}

// AST model/version tag. A consumer must reject trees it doesn't recognize.
const (
	ModelName      = "gopack-js"
	CurrentVersion = 1
)

type AST struct {
	Model   string
	Version int

	Stmts       []Stmt
	Symbols     []Symbol
	ModuleScope *Scope
}

func (tree *AST) Symbol(ref Ref) *Symbol {
	return &tree.Symbols[ref.InnerIndex]
}

// NewSymbol appends a fresh symbol to the file's symbol slice
func (tree *AST) NewSymbol(kind SymbolKind, name string) Ref {
	ref := Ref{InnerIndex: uint32(len(tree.Symbols))}
	tree.Symbols = append(tree.Symbols, Symbol{
		Kind:         kind,
		OriginalName: name,
	})
	return ref
}

// Rename rewrites the symbol's name; every reference prints the new name
func (tree *AST) Rename(ref Ref, name string) {
	tree.Symbols[ref.InnerIndex].OriginalName = name
}

// IsUnbound reports whether ref resolves to a free (undeclared) name
func (tree *AST) IsUnbound(ref Ref, name string) bool {
	if ref == InvalidRef {
		return false
	}
	symbol := tree.Symbol(ref)
	return symbol.Kind == SymbolUnbound && symbol.OriginalName == name
}

// DeclareGenerated adds a synthesized binding to the given scope. The caller
// picks names that cannot collide with parsed bindings.
func (tree *AST) DeclareGenerated(scope *Scope, kind SymbolKind, name string) Ref {
	ref := tree.NewSymbol(kind, name)
	scope.Members[name] = ScopeMember{Ref: ref}
	scope.Generated = append(scope.Generated, ref)
	return ref
}

// Crawl rebuilds the member map of a scope from its symbols after structural
// edits. Generated refs are preserved.
func (scope *Scope) Crawl(tree *AST) {
	members := make(map[string]ScopeMember, len(scope.Members))
	for _, member := range scope.Members {
		members[tree.Symbol(member.Ref).OriginalName] = member
	}
	scope.Members = members
}
