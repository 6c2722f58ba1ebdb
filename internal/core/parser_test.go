package core

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseSimple(t *testing.T) {
	prog, errs := Parse([]byte(">+<-,."))
	require.Empty(t, errs)
	want := Program{Move(1), Add(1), Move(-1), Add(-1), Read(), Write()}
	require.True(t, Equal(prog, want), "got:\n%s", Dump(prog))
}

func TestParseFoldsRuns(t *testing.T) {
	prog, errs := Parse([]byte("+++>>---<<<"))
	require.Empty(t, errs)
	want := Program{Add(3), Move(2), Add(-3), Move(-3)}
	require.True(t, Equal(prog, want), "got:\n%s", Dump(prog))
}

func TestParseIgnoresComments(t *testing.T) {
	prog, errs := Parse([]byte("this + is , a . comment -"))
	require.Empty(t, errs)
	want := Program{Add(1), Read(), Write(), Add(-1)}
	require.True(t, Equal(prog, want), "got:\n%s", Dump(prog))
}

func TestParseNestedLoops(t *testing.T) {
	prog, errs := Parse([]byte("+[>[-]<]"))
	require.Empty(t, errs)
	want := Program{
		Add(1),
		Loop(Program{
			Move(1),
			Loop(Program{Add(-1)}),
			Move(-1),
		}),
	}
	require.True(t, Equal(prog, want), "got:\n%s", Dump(prog))
}

func TestParseSpans(t *testing.T) {
	prog, errs := Parse([]byte("++[-]"))
	require.Empty(t, errs)
	require.Len(t, prog, 2)
	require.Equal(t, Span{Start: 0, End: 2}, prog[0].Span)
	require.Equal(t, Span{Start: 2, End: 5}, prog[1].Span)
	require.Len(t, prog[1].Body, 1)
	require.Equal(t, Span{Start: 3, End: 4}, prog[1].Body[0].Span)
}

func TestParseFoldedSpanCoversRun(t *testing.T) {
	// The fold spans from the first '+' to one past the last, comments
	// included.
	prog, errs := Parse([]byte("+ + +"))
	require.Empty(t, errs)
	require.Len(t, prog, 1)
	require.Equal(t, Span{Start: 0, End: 5}, prog[0].Span)
}

func TestParseUnmatchedClose(t *testing.T) {
	prog, errs := Parse([]byte("]+"))
	require.Len(t, errs, 1)
	require.Contains(t, errs[0].Error(), "unmatched ']'")

	// The parser recovers and keeps the rest of the program.
	require.True(t, Equal(prog, Program{Add(1)}), "got:\n%s", Dump(prog))
}

func TestParseUnclosedOpen(t *testing.T) {
	prog, errs := Parse([]byte("+[-"))
	require.Len(t, errs, 1)
	require.Contains(t, errs[0].Error(), "unmatched '['")

	var perr *ParseError
	require.ErrorAs(t, errs[0], &perr)
	require.Equal(t, 1, perr.Pos.Offset)

	want := Program{Add(1), Loop(Program{Add(-1)})}
	require.True(t, Equal(prog, want), "got:\n%s", Dump(prog))
}

func TestParseReportsMultipleErrors(t *testing.T) {
	_, errs := Parse([]byte("]]+"))
	require.Len(t, errs, 2)
}

func TestParseErrorPosition(t *testing.T) {
	_, errs := Parse([]byte("+\n]"))
	require.Len(t, errs, 1)

	var perr *ParseError
	require.ErrorAs(t, errs[0], &perr)
	require.Equal(t, 2, perr.Pos.Line)
	require.Equal(t, 1, perr.Pos.Column)
	require.Equal(t, 2, perr.Pos.Offset)
}
