package vm

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/lukad/rbf/internal/core"
)

// helloSource builds a program that prints "Hello, World!\n": a
// multiplication loop seeds a cell with 100, then each output byte is
// reached by a relative adjustment.
func helloSource() string {
	const msg = "Hello, World!\n"

	var b strings.Builder
	b.WriteString(strings.Repeat("+", 10))
	b.WriteString("[>" + strings.Repeat("+", 10) + "<-]>")

	cur := 100
	for i := 0; i < len(msg); i++ {
		c := int(msg[i])
		if c > cur {
			b.WriteString(strings.Repeat("+", c-cur))
		} else {
			b.WriteString(strings.Repeat("-", cur-c))
		}
		b.WriteByte('.')
		cur = c
	}
	return b.String()
}

func run(t *testing.T, src, input string, opts ...Option) string {
	t.Helper()
	prog, errs := core.Parse([]byte(src))
	require.Empty(t, errs)
	return runProgram(t, core.Optimise(prog), input, opts...)
}

func runProgram(t *testing.T, prog core.Program, input string, opts ...Option) string {
	t.Helper()
	var out bytes.Buffer
	opts = append([]Option{WithInput(strings.NewReader(input)), WithOutput(&out)}, opts...)
	require.NoError(t, New(opts...).Run(prog))
	return out.String()
}

func TestHelloWorld(t *testing.T) {
	require.Equal(t, "Hello, World!\n", run(t, helloSource(), ""))
}

func TestOptimisePreservesBehavior(t *testing.T) {
	prog, errs := core.Parse([]byte(helloSource()))
	require.Empty(t, errs)

	naive := runProgram(t, prog, "")
	optimised := runProgram(t, core.Optimise(prog), "")
	require.Equal(t, naive, optimised)
}

func TestEcho(t *testing.T) {
	require.Equal(t, "A", run(t, ",.", "A"))
}

func TestEchoLoop(t *testing.T) {
	require.Equal(t, "abc", run(t, ",[.,]", "abc"))
}

func TestClearThenWrite(t *testing.T) {
	require.Equal(t, "\x00", run(t, "+++[-].", ""))
}

func TestEOFReadsZero(t *testing.T) {
	require.Equal(t, "\x00", run(t, "+++,.", ""))
}

func TestEOFMinusOne(t *testing.T) {
	require.Equal(t, "\xff", run(t, ",.", "", WithEOFBehavior(EOFMinusOne)))
}

func TestEOFNoChange(t *testing.T) {
	require.Equal(t, "\x03", run(t, "+++,.", "", WithEOFBehavior(EOFNoChange)))
}

func TestCellWrapsAround(t *testing.T) {
	prog := core.Program{core.Add(300), core.Write()}
	require.Equal(t, string([]byte{300 % 256}), runProgram(t, prog, ""))
}

func TestScan(t *testing.T) {
	// Three nonzero cells; the scan stops on the first zero cell, one
	// step back lands on the last nonzero one.
	require.Equal(t, "\x02", run(t, "++>++>++<<[>]<.", ""))
}

func TestMulLoop(t *testing.T) {
	// cell1 = 2 * 3
	require.Equal(t, "\x06", run(t, "++[->+++<]>.", ""))
}

func TestMulInstruction(t *testing.T) {
	prog := core.Program{
		core.Set(7),
		core.Mul(2, 3),
		core.Set(0),
		core.Move(2),
		core.Write(),
	}
	require.Equal(t, "\x15", runProgram(t, prog, "")) // 7 * 3 = 21
}

func TestMoveOutOfBoundsFails(t *testing.T) {
	prog, errs := core.Parse([]byte("<"))
	require.Empty(t, errs)

	err := New(WithInput(strings.NewReader("")), WithOutput(&bytes.Buffer{})).Run(prog)
	var rerr *RuntimeError
	require.ErrorAs(t, err, &rerr)
}

func TestSmallMemory(t *testing.T) {
	require.Equal(t, "\x01", run(t, "+>+<.", "", WithMemorySize(2)))
}
