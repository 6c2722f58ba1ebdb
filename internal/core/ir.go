package core

import (
	"fmt"
	"strings"
)

// InsKind identifies the kind of IR instruction.
type InsKind int

const (
	InsAdd   InsKind = iota // ADD n: add n to the current cell (mod 256)
	InsMove                 // MOVE n: move the data pointer by n
	InsSet                  // SET n: set the current cell to n (mod 256)
	InsMul                  // MUL o f: cell[p+o] += f * cell[p] (mod 256)
	InsScan                 // SCAN n: move the pointer by n until a zero cell
	InsRead                 // READ: read one byte from stdin into the cell
	InsWrite                // WRITE: write the cell to stdout
	InsLoop                 // LOOP body: repeat body while the cell is nonzero
)

// insNames maps each InsKind to its string representation for debugging.
var insNames = [...]string{
	InsAdd:   "ADD",
	InsMove:  "MOVE",
	InsSet:   "SET",
	InsMul:   "MUL",
	InsScan:  "SCAN",
	InsRead:  "READ",
	InsWrite: "WRITE",
	InsLoop:  "LOOP",
}

// String returns the string representation of the InsKind.
func (k InsKind) String() string {
	return insNames[k]
}

// Instruction is one extended IR instruction. Arg holds the payload of
// ADD/MOVE/SET/SCAN and the offset of MUL; Factor holds MUL's factor;
// Body holds LOOP's nested program, fully owned by this instruction.
type Instruction struct {
	Kind   InsKind
	Arg    int64
	Factor int64
	Body   Program
	Span   Span // source byte range, diagnostics only
}

// Program is an ordered sequence of instructions.
type Program []Instruction

func Add(n int64) Instruction       { return Instruction{Kind: InsAdd, Arg: n} }
func Move(n int64) Instruction      { return Instruction{Kind: InsMove, Arg: n} }
func Set(n int64) Instruction       { return Instruction{Kind: InsSet, Arg: n} }
func Mul(o, f int64) Instruction    { return Instruction{Kind: InsMul, Arg: o, Factor: f} }
func Scan(n int64) Instruction      { return Instruction{Kind: InsScan, Arg: n} }
func Read() Instruction             { return Instruction{Kind: InsRead} }
func Write() Instruction            { return Instruction{Kind: InsWrite} }
func Loop(body Program) Instruction { return Instruction{Kind: InsLoop, Body: body} }

// Equal reports whether two programs are structurally equal: equal
// instruction sequences, pairwise, spans excluded. This is the
// optimizer's fixpoint test.
func Equal(a, b Program) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		x, y := a[i], b[i]
		if x.Kind != y.Kind || x.Arg != y.Arg || x.Factor != y.Factor {
			return false
		}
		if x.Kind == InsLoop && !Equal(x.Body, y.Body) {
			return false
		}
	}
	return true
}

// Dump returns a formatted string representation of the program, one
// instruction per line with loop bodies indented.
func Dump(p Program) string {
	var out strings.Builder
	dump(&out, p, 0)
	return out.String()
}

func dump(out *strings.Builder, p Program, depth int) {
	indent := strings.Repeat("  ", depth)
	for i, ins := range p {
		switch ins.Kind {
		case InsAdd, InsMove, InsSet, InsScan:
			fmt.Fprintf(out, "%s%03d: %-5s %+d\n", indent, i, ins.Kind, ins.Arg)
		case InsMul:
			fmt.Fprintf(out, "%s%03d: %-5s %+d x%+d\n", indent, i, ins.Kind, ins.Arg, ins.Factor)
		case InsRead, InsWrite:
			fmt.Fprintf(out, "%s%03d: %s\n", indent, i, ins.Kind)
		case InsLoop:
			fmt.Fprintf(out, "%s%03d: %s\n", indent, i, ins.Kind)
			dump(out, ins.Body, depth+1)
		}
	}
}
