package jsonast

import (
	"encoding/json"
	"testing"

	"github.com/skx/subc/parser"
	"github.com/stretchr/testify/require"
)

// TestDumpIsValidJSON decodes Dump's own output back into a generic
// map[string]any and asserts its shape - standing in for "a reference
// parser" (see SPEC_FULL.md: the JSON emitter is itself an out-of-scope
// boundary, so there is no second, independent AST-from-JSON parser to
// round-trip through).
func TestDumpIsValidJSON(t *testing.T) {
	prog, err := parser.Parse(`
		int g = 42;
		int main() {
			int a[5];
			a[0] = 7;
			a[1] = a[0] + 1;
			printf("%d %d %d\n", g, a[0], a[1]);
			return 0;
		}
	`)
	require.NoError(t, err)

	out := Dump(prog)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &decoded))
	require.Equal(t, "Program", decoded["type"])

	globals := decoded["globals"].([]any)
	require.Len(t, globals, 1)
	g := globals[0].(map[string]any)
	require.Equal(t, "VarDecl", g["type"])
	require.Equal(t, "g", g["name"])

	functions := decoded["functions"].([]any)
	require.Len(t, functions, 1)
	fn := functions[0].(map[string]any)
	require.Equal(t, "Function", fn["type"])
	require.Equal(t, "main", fn["name"])

	body := fn["body"].(map[string]any)
	require.Equal(t, "Block", body["type"])
	stmts := body["statements"].([]any)
	require.Len(t, stmts, 5)
}

// TestStringEscaping checks that a string literal holding quotes and
// backslashes (kept verbatim by the lexer) still dumps as valid JSON.
func TestStringEscaping(t *testing.T) {
	prog, err := parser.Parse(`int main() { printf("a\"b\\c\nd\te\rf"); return 0; }`)
	require.NoError(t, err)

	out := Dump(prog)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &decoded))
}
