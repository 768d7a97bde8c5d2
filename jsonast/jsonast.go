// Package jsonast implements the boundary-only JSON emitter described in
// spec §4.5: a depth-first pretty-printer over the syntax tree, not a
// code-generation stage. It is the --dump-ast output format, used to
// inspect or diff parse trees without involving either back-end.
package jsonast

import (
	"fmt"
	"strings"

	"github.com/skx/subc/ast"
)

// Dump renders prog as the JSON object spec §4.5 describes: every node is
// an object with a "type" field naming the variant in human-readable
// form, plus variant-specific fields.
func Dump(prog *ast.Program) string {
	var b strings.Builder
	writeProgram(&b, prog)
	return b.String()
}

func writeProgram(b *strings.Builder, prog *ast.Program) {
	b.WriteString(`{"type":"Program","globals":[`)
	for i, g := range prog.Globals {
		if i > 0 {
			b.WriteByte(',')
		}
		writeVarDecl(b, g)
	}
	b.WriteString(`],"functions":[`)
	for i, fn := range prog.Functions {
		if i > 0 {
			b.WriteByte(',')
		}
		writeFunction(b, fn)
	}
	b.WriteString(`]}`)
}

func writeFunction(b *strings.Builder, fn *ast.Function) {
	b.WriteString(`{"type":"Function","name":`)
	writeString(b, fn.Name)
	b.WriteString(`,"returns":`)
	if fn.Returns == ast.ReturnsVoid {
		writeString(b, "void")
	} else {
		writeString(b, "int")
	}
	b.WriteString(`,"params":[`)
	for i, p := range fn.Params {
		if i > 0 {
			b.WriteByte(',')
		}
		writeString(b, p)
	}
	b.WriteString(`],"body":`)
	writeStmt(b, fn.Body)
	b.WriteByte('}')
}

func writeVarDecl(b *strings.Builder, d *ast.VarDecl) {
	b.WriteString(`{"type":"VarDecl","name":`)
	writeString(b, d.Name)
	fmt.Fprintf(b, `,"isArray":%t`, d.IsArray)
	if d.IsArray {
		fmt.Fprintf(b, `,"size":%d`, d.Size)
	}
	b.WriteString(`,"init":`)
	writeExprOrNull(b, d.Init)
	b.WriteByte('}')
}

func writeStmt(b *strings.Builder, s ast.Stmt) {
	if s == nil {
		b.WriteString("null")
		return
	}
	switch n := s.(type) {
	case *ast.Block:
		b.WriteString(`{"type":"Block","statements":[`)
		for i, st := range n.Stmts {
			if i > 0 {
				b.WriteByte(',')
			}
			writeStmt(b, st)
		}
		b.WriteString(`]}`)

	case *ast.VarDecl:
		writeVarDecl(b, n)

	case *ast.If:
		b.WriteString(`{"type":"IfStatement","condition":`)
		writeExpr(b, n.Cond)
		b.WriteString(`,"then":`)
		writeStmt(b, n.Then)
		b.WriteString(`,"else":`)
		writeStmt(b, n.Else)
		b.WriteByte('}')

	case *ast.While:
		b.WriteString(`{"type":"WhileStatement","condition":`)
		writeExpr(b, n.Cond)
		b.WriteString(`,"body":`)
		writeStmt(b, n.Body)
		b.WriteByte('}')

	case *ast.For:
		b.WriteString(`{"type":"ForStatement","init":`)
		writeStmt(b, n.Init)
		b.WriteString(`,"condition":`)
		writeExprOrNull(b, n.Cond)
		b.WriteString(`,"update":`)
		writeStmt(b, n.Update)
		b.WriteString(`,"body":`)
		writeStmt(b, n.Body)
		b.WriteByte('}')

	case *ast.Return:
		b.WriteString(`{"type":"ReturnStatement","value":`)
		writeExprOrNull(b, n.Value)
		b.WriteByte('}')

	case *ast.ExprStmt:
		b.WriteString(`{"type":"ExpressionStatement","expression":`)
		writeExpr(b, n.X)
		b.WriteByte('}')

	default:
		fmt.Fprintf(b, `{"type":"Unknown","go_type":%q}`, fmt.Sprintf("%T", n))
	}
}

func writeExprOrNull(b *strings.Builder, e ast.Expr) {
	if e == nil {
		b.WriteString("null")
		return
	}
	writeExpr(b, e)
}

func writeExpr(b *strings.Builder, e ast.Expr) {
	switch n := e.(type) {
	case *ast.NumLiteral:
		fmt.Fprintf(b, `{"type":"NumLiteral","value":%d}`, n.Value)

	case *ast.StringLiteral:
		b.WriteString(`{"type":"StringLiteral","value":`)
		writeString(b, n.Value)
		b.WriteByte('}')

	case *ast.Variable:
		b.WriteString(`{"type":"Variable","name":`)
		writeString(b, n.Name)
		b.WriteByte('}')

	case *ast.AddressOf:
		b.WriteString(`{"type":"AddressOf","name":`)
		writeString(b, n.Name)
		b.WriteByte('}')

	case *ast.ArrayAccess:
		b.WriteString(`{"type":"ArrayAccess","name":`)
		writeString(b, n.Name)
		b.WriteString(`,"index":`)
		writeExpr(b, n.Index)
		b.WriteByte('}')

	case *ast.Unary:
		b.WriteString(`{"type":"UnaryOp","operator":`)
		writeString(b, string(rune(n.Op)))
		b.WriteString(`,"operand":`)
		writeExpr(b, n.Operand)
		b.WriteByte('}')

	case *ast.Binary:
		b.WriteString(`{"type":"BinaryOp","operator":`)
		writeString(b, binOpText(n.Op))
		b.WriteString(`,"left":`)
		writeExpr(b, n.Left)
		b.WriteString(`,"right":`)
		writeExpr(b, n.Right)
		b.WriteByte('}')

	case *ast.Assign:
		b.WriteString(`{"type":"Assign","operator":`)
		writeString(b, assignOpText(n.Op))
		b.WriteString(`,"target":`)
		writeExpr(b, n.Target)
		b.WriteString(`,"value":`)
		writeExpr(b, n.Value)
		b.WriteByte('}')

	case *ast.Call:
		b.WriteString(`{"type":"Call","name":`)
		writeString(b, n.Name)
		b.WriteString(`,"args":[`)
		for i, arg := range n.Args {
			if i > 0 {
				b.WriteByte(',')
			}
			writeExpr(b, arg)
		}
		b.WriteString(`]}`)

	default:
		fmt.Fprintf(b, `{"type":"Unknown","go_type":%q}`, fmt.Sprintf("%T", n))
	}
}

// binOpText renders a BinOp the way the grammar spells it, not its
// internal byte tag (ast.BinLTE is the byte 'l', not "<=").
func binOpText(op ast.BinOp) string {
	switch op {
	case ast.BinAdd:
		return "+"
	case ast.BinSub:
		return "-"
	case ast.BinMul:
		return "*"
	case ast.BinDiv:
		return "/"
	case ast.BinMod:
		return "%"
	case ast.BinLT:
		return "<"
	case ast.BinLTE:
		return "<="
	case ast.BinGT:
		return ">"
	case ast.BinGTE:
		return ">="
	case ast.BinEQ:
		return "=="
	case ast.BinNEQ:
		return "!="
	case ast.BinAnd:
		return "&&"
	case ast.BinOr:
		return "||"
	default:
		return string(rune(op))
	}
}

func assignOpText(op ast.AssignOp) string {
	switch op {
	case ast.AssignAdd:
		return "+="
	case ast.AssignSub:
		return "-="
	default:
		return "="
	}
}

// writeString escapes a Go string into a JSON string literal per spec
// §4.5: `"`, `\`, newline, carriage return, and tab.
func writeString(b *strings.Builder, s string) {
	b.WriteByte('"')
	for _, r := range s {
		switch r {
		case '"':
			b.WriteString(`\"`)
		case '\\':
			b.WriteString(`\\`)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		case '\t':
			b.WriteString(`\t`)
		default:
			b.WriteRune(r)
		}
	}
	b.WriteByte('"')
}
