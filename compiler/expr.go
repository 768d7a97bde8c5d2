// expr.go holds genExpr and every per-node-kind expression emitter; see
// generator.go for the shared primitives (push/pop, branch helpers,
// addressing) these are built from.
package compiler

import (
	"fmt"

	"github.com/skx/subc/ast"
	"github.com/skx/subc/errors"
	"github.com/skx/subc/symtable"
	"github.com/skx/subc/token"
)

func (g *generator) genExpr(e ast.Expr) error {
	switch n := e.(type) {
	case *ast.NumLiteral:
		return g.genNumLiteral(n)
	case *ast.StringLiteral:
		return g.genStringLiteral(n)
	case *ast.Variable:
		return g.genVariable(n)
	case *ast.AddressOf:
		return g.genAddressOf(n)
	case *ast.ArrayAccess:
		return g.genArrayAccess(n)
	case *ast.Binary:
		return g.genBinary(n)
	case *ast.Unary:
		return g.genUnary(n)
	case *ast.Assign:
		return g.genAssign(n)
	case *ast.Call:
		return g.genCall(n)
	default:
		return errors.New(token.Pos{}, "internal error: unhandled expression %T", e)
	}
}

// genNumLiteral implements spec §4.4's NumLiteral rule: an immediate
// move, split into low/high 16-bit halves on ARM64 once the value no
// longer fits a single 16-bit immediate.
func (g *generator) genNumLiteral(n *ast.NumLiteral) error {
	if g.target.IsARM64 {
		v := uint32(n.Value)
		if v < 65536 {
			g.emit("mov w0, #%d", v)
		} else {
			g.emit("mov w0, #%d", v&0xffff)
			g.emit("movk w0, #%d, lsl #16", (v>>16)&0xffff)
		}
	} else {
		g.emit("mov eax, %d", n.Value)
	}
	return nil
}

// genStringLiteral implements spec §4.4's StringLiteral rule: register
// the string in the pool (first-seen order, deduplicated by value), then
// load the address of its symbol.
func (g *generator) genStringLiteral(s *ast.StringLiteral) error {
	idx, ok := g.strIdx[s.Value]
	if !ok {
		idx = len(g.strings)
		g.strings = append(g.strings, s.Value)
		g.strIdx[s.Value] = idx
	}
	label := fmt.Sprintf("str%d", idx)

	if g.target.IsARM64 {
		g.emitGlobalAddress("x0", label)
	} else {
		g.emit("lea rax, [rip + %s]", label)
	}
	return nil
}

func (g *generator) genVariable(v *ast.Variable) error {
	s, err := g.lookupAddressable(v.Name, v.Pos)
	if err != nil {
		return err
	}
	switch s.Class {
	case symtable.Global:
		if s.IsArray {
			g.loadGlobalAddress(s.Name)
		} else {
			g.loadGlobalScalar(s.Name)
		}
	default: // Parameter or Local
		g.loadFrame(s.Offset)
	}
	return nil
}

func (g *generator) genAddressOf(n *ast.AddressOf) error {
	s, err := g.lookupAddressable(n.Name, n.Pos)
	if err != nil {
		return err
	}
	if s.Class == symtable.Global {
		g.loadGlobalAddress(s.Name)
		return nil
	}
	if g.target.IsARM64 {
		g.emit("add x0, x29, #-%d", s.Offset)
	} else {
		g.emit("lea rax, [rbp-%d]", s.Offset)
	}
	return nil
}

// genArrayAccess implements spec §4.4's ArrayAccess rule: evaluate the
// index, save it, compute the array base, reload the index, and perform
// a single combined base+index*4 load.
func (g *generator) genArrayAccess(a *ast.ArrayAccess) error {
	if err := g.genExpr(a.Index); err != nil {
		return err
	}
	g.push()
	if err := g.arrayBase(a.Name, a.Pos); err != nil {
		return err
	}
	g.popResult()

	if g.target.IsARM64 {
		g.emit("ldr w0, [x1, w0, sxtw #2]")
	} else {
		g.emit("movsxd rdx, eax")
		g.emit("mov eax, dword ptr [rcx + rdx*4]")
	}
	return nil
}

// -- binary/unary operators -------------------------------------------

func (g *generator) genBinary(b *ast.Binary) error {
	switch b.Op {
	case ast.BinAnd:
		return g.genLogicalAnd(b)
	case ast.BinOr:
		return g.genLogicalOr(b)
	}

	if err := g.genExpr(b.Left); err != nil {
		return err
	}
	g.push()
	if err := g.genExpr(b.Right); err != nil {
		return err
	}
	g.popScratch() // w1/ecx = left, w0/eax = right
	return g.genArithOrCompare(b.Op)
}

// genArithOrCompare finishes genBinary once left/right are sitting in the
// two scratch registers: w1,w0 on ARM64 (left,right) or ecx,eax on
// x86-64.
func (g *generator) genArithOrCompare(op ast.BinOp) error {
	switch op {
	case ast.BinAdd:
		g.commutativeOp("add", "add")
	case ast.BinSub:
		g.subtractOp()
	case ast.BinMul:
		g.commutativeOp("mul", "imul")
	case ast.BinDiv:
		g.divmod(false)
	case ast.BinMod:
		g.divmod(true)
	case ast.BinLT, ast.BinLTE, ast.BinGT, ast.BinGTE, ast.BinEQ, ast.BinNEQ:
		g.compare(op)
	default:
		return errors.New(token.Pos{}, "internal error: unhandled binary operator %q", op)
	}
	return nil
}

func (g *generator) commutativeOp(armOp, x86Op string) {
	if g.target.IsARM64 {
		g.emit("%s w0, w1, w0", armOp)
	} else {
		g.emit("%s eax, ecx", x86Op)
	}
}

func (g *generator) subtractOp() {
	if g.target.IsARM64 {
		g.emit("sub w0, w1, w0")
	} else {
		g.emit("sub ecx, eax")
		g.emit("mov eax, ecx")
	}
}

// divmod implements spec §4.4's division/modulus rule: sdiv+msub on
// ARM64, cltd(cdq)+idivl with the remainder read from edx on x86-64.
func (g *generator) divmod(mod bool) {
	if g.target.IsARM64 {
		if !mod {
			g.emit("sdiv w0, w1, w0")
			return
		}
		g.emit("sdiv w2, w1, w0")
		g.emit("msub w0, w2, w0, w1")
		return
	}

	g.emit("mov r10d, eax") // r10d = right-hand side (divisor)
	g.emit("mov eax, ecx")  // eax = left-hand side (dividend)
	g.emit("cdq")
	g.emit("idiv r10d")
	if mod {
		g.emit("mov eax, edx")
	}
}

// compare implements spec §4.4's comparison rule: cmp then
// set-condition, zero-extended to 32 bits.
func (g *generator) compare(op ast.BinOp) {
	if g.target.IsARM64 {
		g.emit("cmp w1, w0")
		g.emit("cset w0, %s", armCondition(op))
		return
	}
	g.emit("cmp ecx, eax")
	g.emit("%s al", x86SetCondition(op))
	g.emit("movzx eax, al")
}

func armCondition(op ast.BinOp) string {
	switch op {
	case ast.BinLT:
		return "lt"
	case ast.BinLTE:
		return "le"
	case ast.BinGT:
		return "gt"
	case ast.BinGTE:
		return "ge"
	case ast.BinNEQ:
		return "ne"
	default: // ast.BinEQ
		return "eq"
	}
}

func x86SetCondition(op ast.BinOp) string {
	switch op {
	case ast.BinLT:
		return "setl"
	case ast.BinLTE:
		return "setle"
	case ast.BinGT:
		return "setg"
	case ast.BinGTE:
		return "setge"
	case ast.BinNEQ:
		return "setne"
	default: // ast.BinEQ
		return "sete"
	}
}

// genLogicalAnd/genLogicalOr implement spec §9's two documented lowerings
// for short-circuit operators, selected by g.shortCircuit: the spec's
// as-is default (both sides always evaluated, combined as booleans) or
// the "fixed" branch-before-evaluating-the-right-operand form.
func (g *generator) genLogicalAnd(b *ast.Binary) error {
	n := g.newLabel()
	falseLabel := fmt.Sprintf(".Land%d_false", n)
	endLabel := fmt.Sprintf(".Land%d_end", n)

	if g.shortCircuit {
		if err := g.genExpr(b.Left); err != nil {
			return err
		}
		g.cmpZero()
		g.branchEq(falseLabel)
		if err := g.genExpr(b.Right); err != nil {
			return err
		}
		g.cmpZero()
		g.branchEq(falseLabel)
	} else {
		if err := g.genExpr(b.Left); err != nil {
			return err
		}
		g.push()
		if err := g.genExpr(b.Right); err != nil {
			return err
		}
		g.popScratch()
		if g.target.IsARM64 {
			g.emit("cmp w1, #0")
		} else {
			g.emit("cmp ecx, 0")
		}
		g.branchEq(falseLabel)
		g.cmpZero()
		g.branchEq(falseLabel)
	}

	g.setResult(1)
	g.jump(endLabel)
	g.emitRaw("%s:", falseLabel)
	g.setResult(0)
	g.emitRaw("%s:", endLabel)
	return nil
}

func (g *generator) genLogicalOr(b *ast.Binary) error {
	n := g.newLabel()
	trueLabel := fmt.Sprintf(".Lor%d_true", n)
	endLabel := fmt.Sprintf(".Lor%d_end", n)

	if g.shortCircuit {
		if err := g.genExpr(b.Left); err != nil {
			return err
		}
		g.cmpZero()
		g.branchNe(trueLabel)
		if err := g.genExpr(b.Right); err != nil {
			return err
		}
		g.cmpZero()
		g.branchNe(trueLabel)
	} else {
		if err := g.genExpr(b.Left); err != nil {
			return err
		}
		g.push()
		if err := g.genExpr(b.Right); err != nil {
			return err
		}
		g.popScratch()
		if g.target.IsARM64 {
			g.emit("cmp w1, #0")
		} else {
			g.emit("cmp ecx, 0")
		}
		g.branchNe(trueLabel)
		g.cmpZero()
		g.branchNe(trueLabel)
	}

	g.setResult(0)
	g.jump(endLabel)
	g.emitRaw("%s:", trueLabel)
	g.setResult(1)
	g.emitRaw("%s:", endLabel)
	return nil
}

func (g *generator) genUnary(u *ast.Unary) error {
	if err := g.genExpr(u.Operand); err != nil {
		return err
	}
	switch u.Op {
	case ast.UnNeg:
		if g.target.IsARM64 {
			g.emit("neg w0, w0")
		} else {
			g.emit("neg eax")
		}
	case ast.UnNot:
		g.cmpZero()
		if g.target.IsARM64 {
			g.emit("cset w0, eq")
		} else {
			g.emit("sete al")
			g.emit("movzx eax, al")
		}
	default:
		return errors.New(u.Pos, "internal error: unhandled unary operator %q", u.Op)
	}
	return nil
}

// -- assignment ---------------------------------------------------------

func (g *generator) genAssign(a *ast.Assign) error {
	switch t := a.Target.(type) {
	case *ast.Variable:
		return g.genAssignVariable(t, a.Op, a.Value)
	case *ast.ArrayAccess:
		return g.genAssignArrayAccess(t, a.Op, a.Value)
	default:
		return errors.New(a.Pos, "assignment target must be a variable or array element")
	}
}

func (g *generator) genAssignVariable(v *ast.Variable, op ast.AssignOp, value ast.Expr) error {
	s, err := g.lookupAddressable(v.Name, v.Pos)
	if err != nil {
		return err
	}
	if s.Class == symtable.Global && s.IsArray {
		return errors.New(v.Pos, "cannot assign to array %q directly", v.Name)
	}

	if op == ast.AssignPlain {
		if err := g.genExpr(value); err != nil {
			return err
		}
	} else {
		g.loadVariableSymbol(s)
		g.push()
		if err := g.genExpr(value); err != nil {
			return err
		}
		g.popScratch()
		g.combine(op)
	}
	g.storeVariableSymbol(s)
	return nil
}

func (g *generator) loadVariableSymbol(s *symtable.Symbol) {
	if s.Class == symtable.Global {
		g.loadGlobalScalar(s.Name)
	} else {
		g.loadFrame(s.Offset)
	}
}

func (g *generator) storeVariableSymbol(s *symtable.Symbol) {
	if s.Class == symtable.Global {
		g.storeGlobalScalar(s.Name)
	} else {
		g.storeFrame(s.Offset)
	}
}

// combine folds the scratch register (w1/ecx, holding the target's
// current value) with the result register (w0/eax, holding the
// right-hand side) for a += or -= assignment, leaving the combined value
// in the result register.
func (g *generator) combine(op ast.AssignOp) {
	if g.target.IsARM64 {
		if op == ast.AssignAdd {
			g.emit("add w0, w1, w0")
		} else {
			g.emit("sub w0, w1, w0")
		}
		return
	}
	if op == ast.AssignAdd {
		g.emit("add ecx, eax")
	} else {
		g.emit("sub ecx, eax")
	}
	g.emit("mov eax, ecx")
}

// genAssignArrayAccess implements assignment to an array element. The
// index and the array's base address are each saved across evaluation of
// the right-hand side (which may itself clobber the scratch registers
// they would otherwise sit in, e.g. via a nested call or array access),
// then both are reloaded to perform the final store.
func (g *generator) genAssignArrayAccess(t *ast.ArrayAccess, op ast.AssignOp, value ast.Expr) error {
	if err := g.genExpr(t.Index); err != nil {
		return err
	}
	g.push() // save index
	if err := g.arrayBase(t.Name, t.Pos); err != nil {
		return err
	}
	g.pushBase() // save array base address

	if err := g.genExpr(value); err != nil {
		return err
	}

	if g.target.IsARM64 {
		g.emit("mov w4, w0") // stash the right-hand side
		g.popBase()          // x1 = base
		g.popResult()        // w0 = index
		if op != ast.AssignPlain {
			g.emit("ldr w3, [x1, w0, sxtw #2]")
			if op == ast.AssignAdd {
				g.emit("add w4, w3, w4")
			} else {
				g.emit("sub w4, w3, w4")
			}
		}
		g.emit("str w4, [x1, w0, sxtw #2]")
		g.emit("mov w0, w4")
		return nil
	}

	g.emit("mov r10d, eax") // stash the right-hand side
	g.popBase()             // rcx = base
	g.popResult()           // eax = index
	g.emit("movsxd rdx, eax")
	if op != ast.AssignPlain {
		g.emit("mov r11d, dword ptr [rcx + rdx*4]")
		if op == ast.AssignAdd {
			g.emit("add r10d, r11d")
		} else {
			g.emit("mov eax, r11d")
			g.emit("sub eax, r10d")
			g.emit("mov r10d, eax")
		}
	}
	g.emit("mov dword ptr [rcx + rdx*4], r10d")
	g.emit("mov eax, r10d")
	return nil
}

// -- calls ----------------------------------------------------------------

// genCall implements spec §4.4's Call rule. Arguments are evaluated
// right-to-left, each pushed as it's produced, then popped into the
// argument registers left-to-right - reversing the push order restores
// left-to-right register assignment without needing to know argument
// count in advance. x86-64 additionally saves rsp in a callee-saved
// register, 16-byte aligns it, zeroes eax ahead of any variadic external
// call, calls, then restores the saved rsp exactly (spec §4.4).
func (g *generator) genCall(c *ast.Call) error {
	g.callDepth.Push(len(c.Args))
	defer func() { _, _ = g.callDepth.Pop() }()

	if g.callDepth.Len() > 1 {
		if g.target.IsARM64 {
			g.emitRaw("// nested call to %s at depth %d", c.Name, g.callDepth.Len())
		} else {
			g.emitRaw("# nested call to %s at depth %d", c.Name, g.callDepth.Len())
		}
	}

	n := len(c.Args)
	for i := n - 1; i >= 0; i-- {
		if err := g.genExpr(c.Args[i]); err != nil {
			return err
		}
		g.push()
	}

	for i := 0; i < n; i++ {
		if i >= maxRegisterArgs {
			// Evaluated for side effects/order per spec, but spec
			// caps register-passed arguments at six on both
			// back-ends; anything beyond that is popped off the
			// stack and discarded rather than passed.
			if g.target.IsARM64 {
				g.emit("add sp, sp, #16")
			} else {
				g.emit("add rsp, 8")
			}
			continue
		}
		if g.target.IsARM64 {
			g.emit("ldr %s, [sp], #16", argRegsARM64[i])
		} else {
			g.emit("pop rax")
			g.emit("mov %s, eax", argRegsX86[i])
		}
	}

	sym := g.extern(c.Name)
	external := g.isExternalCall(c.Name)

	if g.target.IsARM64 {
		g.emit("bl %s", sym)
		return nil
	}

	g.emit("mov rbx, rsp")
	g.emit("and rsp, -16")
	if external {
		g.emit("xor eax, eax")
	}
	g.emit("call %s", sym)
	g.emit("mov rsp, rbx")
	return nil
}
