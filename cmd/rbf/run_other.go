//go:build !(linux && amd64)

package main

import (
	"github.com/lukad/rbf/internal/core"
	"github.com/lukad/rbf/internal/vm"
)

// runProgram interprets the program. The JIT only targets linux/amd64;
// everywhere else the reference interpreter preserves the observable
// contract.
func runProgram(prog core.Program, tapeSize int) error {
	tapeSize = (tapeSize + 15) &^ 15
	return vm.New(vm.WithMemorySize(tapeSize)).Run(prog)
}
