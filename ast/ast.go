// Package ast defines the syntax tree the parser builds and the code
// generator walks.
//
// Every node owns its children exclusively; the tree is a strict
// ownership hierarchy with no sharing and no back-pointers, matching a
// straightforward one-pass compiler: build the tree once, walk it once.
package ast

import "github.com/skx/subc/token"

// Node is implemented by every syntax-tree node.
type Node interface {
	node()
}

// Expr is implemented by expression nodes.
type Expr interface {
	Node
	exprNode()
}

// Stmt is implemented by statement nodes.
type Stmt interface {
	Node
	stmtNode()
}

// BinOp identifies a binary operator.
type BinOp byte

// Binary operators, grouped by the precedence level that produces them.
const (
	BinAdd BinOp = '+'
	BinSub BinOp = '-'
	BinMul BinOp = '*'
	BinDiv BinOp = '/'
	BinMod BinOp = '%'

	BinLT  BinOp = '<'
	BinLTE BinOp = 'l' // <=
	BinGT  BinOp = '>'
	BinGTE BinOp = 'g' // >=
	BinEQ  BinOp = '='
	BinNEQ BinOp = 'n' // !=

	BinAnd BinOp = '&' // &&
	BinOr  BinOp = '|' // ||
)

// UnOp identifies a unary prefix operator.
type UnOp byte

const (
	// UnNeg is arithmetic negation: -x.
	UnNeg UnOp = '-'
	// UnNot is logical negation: !x.
	UnNot UnOp = '!'
)

// AssignOp identifies whether an assignment is plain or a compound
// increment/decrement desugared at parse time.
type AssignOp byte

const (
	// AssignPlain is a bare `target = value`.
	AssignPlain AssignOp = '='
	// AssignAdd is `target += value` (and desugared `++`).
	AssignAdd AssignOp = '+'
	// AssignSub is `target -= value` (and desugared `--`).
	AssignSub AssignOp = '-'
)

// NumLiteral is a 32-bit integer constant.
type NumLiteral struct {
	Value int32
	Pos   token.Pos
}

// StringLiteral is a string constant; Value is the raw inner text, escapes
// untouched (see lexer.readString).
type StringLiteral struct {
	Value string
	Pos   token.Pos
}

// Variable is a reference to a named binding.
type Variable struct {
	Name string
	Pos  token.Pos
}

// Binary is a binary operator applied to two owned operands.
type Binary struct {
	Op    BinOp
	Left  Expr
	Right Expr
	Pos   token.Pos
}

// Unary is a unary prefix operator applied to one owned operand.
type Unary struct {
	Op      UnOp
	Operand Expr
	Pos     token.Pos
}

// Assign assigns Value to Target, optionally combining with the target's
// current value first (Op == AssignAdd/AssignSub).
//
// Target is always a *Variable or *ArrayAccess; the parser never builds
// any other kind here, but code generation re-validates this because the
// parser's grammar doesn't statically prevent a malformed tree built by
// hand (e.g. in tests).
type Assign struct {
	Target Expr
	Value  Expr
	Op     AssignOp
	Pos    token.Pos
}

// Call is a function call: a name and an owned argument list. The name
// may refer to a Function defined in this Program, or to an externally
// linked symbol (e.g. printf) - see Program.Functions.
type Call struct {
	Name string
	Args []Expr
	Pos  token.Pos
}

// If is a conditional; Else is nil when there is no else-branch.
type If struct {
	Cond Expr
	Then Stmt
	Else Stmt
	Pos  token.Pos
}

// While is a pre-tested loop.
type While struct {
	Cond Expr
	Body Stmt
	Pos  token.Pos
}

// For is a C-style for loop; Init, Cond, and Update may each be nil.
// A nil Cond is treated as unconditionally true.
type For struct {
	Init   Stmt
	Cond   Expr
	Update Stmt
	Body   Stmt
	Pos    token.Pos
}

// Return optionally carries a value; Value is nil for `return;`.
type Return struct {
	Value Expr
	Pos   token.Pos
}

// ExprStmt wraps an expression used as a statement (spec: "Expression
// statement: expr ;"), typically an Assign or a Call evaluated for its
// side effect with the result discarded.
type ExprStmt struct {
	X   Expr
	Pos token.Pos
}

// Block is an ordered list of statements sharing one pair of braces. Per
// spec, declarations inside a Block are not scoped to it: they survive to
// the end of the enclosing function (see symtable).
type Block struct {
	Stmts []Stmt
	Pos   token.Pos
}

// VarDecl declares a local (or, at Program level, a global). Size is the
// element count when IsArray is true; it is otherwise ignored. Init is
// the optional initializer expression (nil for an uninitialized scalar,
// always nil for an array - array globals are zero-initialized per spec
// and array locals are never initialized at declaration).
type VarDecl struct {
	Name    string
	IsArray bool
	Size    int32
	Init    Expr
	Pos     token.Pos
}

// ReturnKind distinguishes an int-returning function from a void one.
type ReturnKind byte

const (
	ReturnsInt  ReturnKind = 'i'
	ReturnsVoid ReturnKind = 'v'
)

// Function is a top-level function definition.
type Function struct {
	Name    string
	Returns ReturnKind
	Params  []string
	Body    *Block
	Pos     token.Pos
}

// Program is the root of the tree: the ordered global declarations
// followed by the ordered function definitions.
type Program struct {
	Globals   []*VarDecl
	Functions []*Function
}

// ArrayAccess indexes a named array binding.
type ArrayAccess struct {
	Name  string
	Index Expr
	Pos   token.Pos
}

// AddressOf takes the address of a named binding without dereferencing.
type AddressOf struct {
	Name string
	Pos  token.Pos
}

func (*NumLiteral) node()    {}
func (*StringLiteral) node() {}
func (*Variable) node()      {}
func (*Binary) node()        {}
func (*Unary) node()         {}
func (*Assign) node()        {}
func (*Call) node()          {}
func (*If) node()            {}
func (*While) node()         {}
func (*For) node()           {}
func (*Return) node()        {}
func (*ExprStmt) node()      {}
func (*Block) node()         {}
func (*VarDecl) node()       {}
func (*Function) node()      {}
func (*Program) node()       {}
func (*ArrayAccess) node()   {}
func (*AddressOf) node()     {}

func (*NumLiteral) exprNode()    {}
func (*StringLiteral) exprNode() {}
func (*Variable) exprNode()      {}
func (*Binary) exprNode()        {}
func (*Unary) exprNode()         {}
func (*Assign) exprNode()        {}
func (*Call) exprNode()          {}
func (*ArrayAccess) exprNode()   {}
func (*AddressOf) exprNode()     {}

func (*If) stmtNode()       {}
func (*While) stmtNode()    {}
func (*For) stmtNode()      {}
func (*Return) stmtNode()   {}
func (*Block) stmtNode()    {}
func (*VarDecl) stmtNode()  {}
func (*ExprStmt) stmtNode() {}

var (
	_ Expr = (*NumLiteral)(nil)
	_ Expr = (*StringLiteral)(nil)
	_ Expr = (*Variable)(nil)
	_ Expr = (*Binary)(nil)
	_ Expr = (*Unary)(nil)
	_ Expr = (*Assign)(nil)
	_ Expr = (*Call)(nil)
	_ Expr = (*ArrayAccess)(nil)
	_ Expr = (*AddressOf)(nil)

	_ Stmt = (*If)(nil)
	_ Stmt = (*While)(nil)
	_ Stmt = (*For)(nil)
	_ Stmt = (*Return)(nil)
	_ Stmt = (*Block)(nil)
	_ Stmt = (*VarDecl)(nil)
	_ Stmt = (*ExprStmt)(nil)
)
