//go:build linux && amd64

package main

import (
	"github.com/lukad/rbf/internal/core"
	"github.com/lukad/rbf/internal/jit"
)

// runProgram compiles the program to native code and runs it.
func runProgram(prog core.Program, tapeSize int) error {
	fun, err := jit.New().SetTapeSize(tapeSize).Compile(prog)
	if err != nil {
		return err
	}
	defer fun.Close()

	fun.Run()
	return nil
}
