// Package core provides the front half of the rbf pipeline: the
// tokenizer, the parser, the intermediate representation, and the
// optimizer.
//
// Brainfuck has eight commands, each represented by a single character:
//   - > : increment the data pointer
//   - < : decrement the data pointer
//   - + : increment the byte at the data pointer
//   - - : decrement the byte at the data pointer
//   - . : output the byte at the data pointer
//   - , : input a byte and store it at the data pointer
//   - [ : jump forward past matching ] if byte at pointer is zero
//   - ] : jump back to matching [ if byte at pointer is nonzero
//
// All other characters are treated as comments and ignored.
//
// The parser produces a tree-shaped IR in which loops own their bodies,
// the optimizer rewrites that tree into a denser extended instruction
// set, and the backends (internal/vm, internal/jit) execute the result.
package core

// TapeSize is the default size of the data tape in bytes (traditional 30KB).
const TapeSize = 30000

// Position represents a location in the source file.
type Position struct {
	Offset int // byte offset from start of file
	Line   int // 1-based line number
	Column int // 1-based column number
}

// Span is a half-open byte range [Start, End) in the original source.
// Spans carry no semantics; they exist for diagnostics only.
type Span struct {
	Start int
	End   int
}

// join covers both spans: [a.Start, b.End).
func (a Span) join(b Span) Span {
	return Span{Start: a.Start, End: b.End}
}
