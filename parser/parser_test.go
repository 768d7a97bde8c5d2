package parser

import (
	"testing"

	"github.com/skx/subc/ast"
	"github.com/stretchr/testify/require"
)

func mustParse(t *testing.T, src string) *ast.Program {
	t.Helper()
	prog, err := Parse(src)
	require.NoError(t, err)
	return prog
}

func TestParsesHelloWorld(t *testing.T) {
	prog := mustParse(t, `int main() { printf("Hello, World!\n"); return 0; }`)
	require.Len(t, prog.Functions, 1)

	fn := prog.Functions[0]
	require.Equal(t, "main", fn.Name)
	require.Equal(t, ast.ReturnsInt, fn.Returns)
	require.Len(t, fn.Body.Stmts, 2)

	call, ok := fn.Body.Stmts[0].(*ast.ExprStmt).X.(*ast.Call)
	require.True(t, ok)
	require.Equal(t, "printf", call.Name)
	require.Len(t, call.Args, 1)

	ret, ok := fn.Body.Stmts[1].(*ast.Return)
	require.True(t, ok)
	require.NotNil(t, ret.Value)
}

func TestGlobalScalarAndArray(t *testing.T) {
	prog := mustParse(t, `int g = 42; int arr[5]; int main() { return 0; }`)
	require.Len(t, prog.Globals, 2)

	g := prog.Globals[0]
	require.False(t, g.IsArray)
	require.NotNil(t, g.Init)
	require.EqualValues(t, 42, g.Init.(*ast.NumLiteral).Value)

	arr := prog.Globals[1]
	require.True(t, arr.IsArray)
	require.EqualValues(t, 5, arr.Size)
}

func TestOperatorPrecedence(t *testing.T) {
	// For every pair `a OP1 b OP2 c` where OP1 binds tighter than OP2,
	// the parse tree roots at OP2 - spec §8 invariant.
	prog := mustParse(t, `int main() { return 1 + 2 * 3; }`)
	ret := prog.Functions[0].Body.Stmts[0].(*ast.Return)
	top := ret.Value.(*ast.Binary)
	require.Equal(t, ast.BinAdd, top.Op)
	require.IsType(t, &ast.Binary{}, top.Right)
	require.Equal(t, ast.BinMul, top.Right.(*ast.Binary).Op)
}

func TestRelationalBindsTighterThanEquality(t *testing.T) {
	prog := mustParse(t, `int main() { return 1 < 2 == 3 < 4; }`)
	ret := prog.Functions[0].Body.Stmts[0].(*ast.Return)
	top := ret.Value.(*ast.Binary)
	require.Equal(t, ast.BinEQ, top.Op)
}

func TestLogicalPrecedence(t *testing.T) {
	prog := mustParse(t, `int main() { return 1 || 2 && 3; }`)
	ret := prog.Functions[0].Body.Stmts[0].(*ast.Return)
	top := ret.Value.(*ast.Binary)
	require.Equal(t, ast.BinOr, top.Op)
	require.Equal(t, ast.BinAnd, top.Right.(*ast.Binary).Op)
}

func TestAssignmentIsRightAssociative(t *testing.T) {
	prog := mustParse(t, `int main() { int a; int b; a = b = 3; return 0; }`)
	assignStmt := prog.Functions[0].Body.Stmts[2].(*ast.ExprStmt).X.(*ast.Assign)
	require.Equal(t, "a", assignStmt.Target.(*ast.Variable).Name)
	inner, ok := assignStmt.Value.(*ast.Assign)
	require.True(t, ok)
	require.Equal(t, "b", inner.Target.(*ast.Variable).Name)
}

func TestPrefixIncrementDesugarsToAssign(t *testing.T) {
	prog := mustParse(t, `int main() { int x; ++x; --x; return 0; }`)
	inc := prog.Functions[0].Body.Stmts[1].(*ast.ExprStmt).X.(*ast.Assign)
	require.Equal(t, ast.AssignAdd, inc.Op)
	require.EqualValues(t, 1, inc.Value.(*ast.NumLiteral).Value)

	dec := prog.Functions[0].Body.Stmts[2].(*ast.ExprStmt).X.(*ast.Assign)
	require.Equal(t, ast.AssignSub, dec.Op)
}

func TestDanglingElseBindsToNearestIf(t *testing.T) {
	prog := mustParse(t, `int main() { if (1) if (2) return 1; else return 2; return 0; }`)
	outer := prog.Functions[0].Body.Stmts[0].(*ast.If)
	inner, ok := outer.Then.(*ast.If)
	require.True(t, ok)
	require.NotNil(t, inner.Else)
	require.Nil(t, outer.Else)
}

func TestForLoopAllPartsOptional(t *testing.T) {
	prog := mustParse(t, `int main() { for (;;) { return 0; } return 1; }`)
	loop := prog.Functions[0].Body.Stmts[0].(*ast.For)
	require.Nil(t, loop.Init)
	require.Nil(t, loop.Cond)
	require.Nil(t, loop.Update)
}

func TestForLoopWithAllParts(t *testing.T) {
	prog := mustParse(t, `int main() { int i; for (i = 0; i < 10; i = i + 1) { } return 0; }`)
	loop := prog.Functions[0].Body.Stmts[1].(*ast.For)
	require.NotNil(t, loop.Init)
	require.NotNil(t, loop.Cond)
	require.NotNil(t, loop.Update)
}

func TestArrayAccessAndAssignment(t *testing.T) {
	prog := mustParse(t, `int main() { int a[5]; a[0] = 7; a[1] = a[0] + 1; return 0; }`)
	assign := prog.Functions[0].Body.Stmts[1].(*ast.ExprStmt).X.(*ast.Assign)
	target, ok := assign.Target.(*ast.ArrayAccess)
	require.True(t, ok)
	require.Equal(t, "a", target.Name)
}

func TestAddressOf(t *testing.T) {
	prog := mustParse(t, `int g; int main() { scan(&g); return 0; }`)
	call := prog.Functions[0].Body.Stmts[0].(*ast.ExprStmt).X.(*ast.Call)
	arg, ok := call.Args[0].(*ast.AddressOf)
	require.True(t, ok)
	require.Equal(t, "g", arg.Name)
}

func TestPointerDeclaratorIsASyntaxError(t *testing.T) {
	// scenario 6: `int *u;` is an unsupported pointer declarator and must
	// fail to parse.
	_, err := Parse(`int main() { int x = 3; int *u; return x; }`)
	require.Error(t, err)
}

func TestAssignmentTargetMustBeLValue(t *testing.T) {
	_, err := Parse(`int main() { 1 + 2 = 3; return 0; }`)
	require.Error(t, err)
}

func TestCallArgumentLimit(t *testing.T) {
	src := "int main() { f(1,2,3,4,5,6,7,8,9); return 0; }"
	_, err := Parse(src)
	require.Error(t, err)
}

func TestFunctionParamLimit(t *testing.T) {
	src := "int f(int a, int b, int c, int d, int e, int g, int h) { return 0; }"
	_, err := Parse(src)
	require.Error(t, err)
}

func TestMismatchedTokenAborts(t *testing.T) {
	_, err := Parse(`int main( { return 0; }`)
	require.Error(t, err)
}

func TestFibonacciParses(t *testing.T) {
	src := `
int fib(int n) {
	if (n < 2) {
		return n;
	}
	return fib(n - 1) + fib(n - 2);
}

int main() {
	int i;
	for (i = 0; i < 15; i = i + 1) {
		printf("fib(%d) = %d\n", i, fib(i));
	}
	return 0;
}
`
	prog := mustParse(t, src)
	require.Len(t, prog.Functions, 2)
}
