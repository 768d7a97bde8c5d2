// Package symtable implements the flat, append-only symbol table the code
// generator consults while walking a function body.
//
// There is deliberately no nested-scope tracking: a variable declared
// inside an inner block survives for the rest of the enclosing function.
// A stack of high-water marks pushed at block entry and popped at block
// exit would restore proper lexical scoping, but spec §4.3 documents the
// flatter behavior as an acceptable, intentional simplification, and this
// implementation keeps it - see the "Flat symbol table" design note.
package symtable

// Class classifies a binding.
type Class byte

const (
	Global    Class = 'g'
	Parameter Class = 'p'
	Local     Class = 'l'
)

// elementWidth is the fixed element size (bytes) for every scalar and
// every array element: spec fixes this at 4 bytes (32-bit ints).
const elementWidth = 4

// Symbol is a single named binding.
type Symbol struct {
	Name  string
	Class Class

	// Ordinal is the 0-based parameter index; meaningful only when
	// Class == Parameter.
	Ordinal int

	// Offset is the positive stack displacement in bytes from the frame
	// pointer; meaningful only when Class == Parameter or Class == Local.
	Offset int

	IsArray bool
	Count   int32 // element count, meaningful only when IsArray
}

// Table is the flat, append-only vector of bindings.
type Table struct {
	symbols     []Symbol
	stackOffset int // running total of bytes consumed by parameters+locals
}

// New returns an empty table.
func New() *Table {
	return &Table{}
}

// AddGlobal records a global binding. Globals carry no stack offset: they
// are addressed by symbolic name in the generated assembly.
func (t *Table) AddGlobal(name string, isArray bool, count int32) {
	t.symbols = append(t.symbols, Symbol{
		Name:    name,
		Class:   Global,
		IsArray: isArray,
		Count:   count,
	})
}

// Reset truncates the table back to just its globals, and resets the
// running stack-offset counter. Call this before generating each
// function: parameters and locals live only for the function currently
// being generated.
func (t *Table) Reset() {
	n := 0
	for _, s := range t.symbols {
		if s.Class != Global {
			break
		}
		n++
	}
	t.symbols = t.symbols[:n]
	t.stackOffset = 0
}

// Mark returns a high-water mark that TruncateTo can later restore.
func (t *Table) Mark() int {
	return len(t.symbols)
}

// TruncateTo discards every binding added after mark. It does not touch
// stackOffset: per spec, locals are never reclaimed mid-function, even
// though this method would allow it - see the package doc comment.
func (t *Table) TruncateTo(mark int) {
	t.symbols = t.symbols[:mark]
}

// AddParameter records the i'th parameter of the function being
// generated. Per spec §4.3, parameters are spilled to [frame - 8*(i+1)]
// by the function prologue, which makes them writable.
func (t *Table) AddParameter(name string, ordinal int) {
	t.symbols = append(t.symbols, Symbol{
		Name:    name,
		Class:   Parameter,
		Ordinal: ordinal,
		Offset:  8 * (ordinal + 1),
	})
	if off := 8 * (ordinal + 1); off > t.stackOffset {
		t.stackOffset = off
	}
}

// AddLocal records a scalar local, allocating the next 8-byte slot (4
// bytes of data, 4 of padding) after the parameter area.
func (t *Table) AddLocal(name string) *Symbol {
	t.stackOffset += 8
	t.symbols = append(t.symbols, Symbol{
		Name:   name,
		Class:  Local,
		Offset: t.stackOffset,
	})
	return &t.symbols[len(t.symbols)-1]
}

// AddLocalArray records a local array of count elements. Its first
// element lives at [frame - offset], its i'th at [frame - offset + 4*i];
// the offset counter additionally advances by 4*(count-1) so the whole
// array fits before the next local, per spec §4.3.
func (t *Table) AddLocalArray(name string, count int32) *Symbol {
	t.stackOffset += 8
	if count > 1 {
		t.stackOffset += int(4 * (count - 1))
	}
	t.symbols = append(t.symbols, Symbol{
		Name:    name,
		Class:   Local,
		Offset:  t.stackOffset,
		IsArray: true,
		Count:   count,
	})
	return &t.symbols[len(t.symbols)-1]
}

// Lookup performs a reverse linear scan so the most recently added
// binding with this name wins (the only form of shadowing this table
// supports: a later AddLocal/AddParameter of the same name masks an
// earlier one, it does not reclaim it).
func (t *Table) Lookup(name string) (*Symbol, bool) {
	for i := len(t.symbols) - 1; i >= 0; i-- {
		if t.symbols[i].Name == name {
			return &t.symbols[i], true
		}
	}
	return nil, false
}

// FrameSize returns the number of bytes consumed by parameters and
// locals so far. The generator does not consult it: its prologue
// reservation is fixed.
func (t *Table) FrameSize() int {
	return t.stackOffset
}
