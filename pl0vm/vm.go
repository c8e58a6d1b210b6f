// Package pl0vm assembles and interprets the stack-machine instruction
// stream produced by pl0gen.
package pl0vm

import (
	"bufio"
	"encoding/gob"
	"io"
	"math/rand/v2"
	"strings"
)

// UniformIntGenerator returns a value in [low, high).
type UniformIntGenerator interface {
	Next(low, high int32) int32
}

type Options struct {
	Stdin  io.Reader
	Stdout io.Writer
	Rand   UniformIntGenerator
	// zero means unlimited
	MaxSteps     int
	MaxCallDepth int
	// yield an InterruptYield every YieldEvery steps, zero disables
	YieldEvery int
}

const DefaultMaxCallDepth = 10000

type VM struct {
	Program      *Program
	CurrentFun   int
	IP           int
	OperandStack []any
	SP           int
	BP           int
	CallStack    []Frame
	Globals      []int32
	Locals       []int32
	Steps        int
	Yielded      int

	options Options
	input   *bufio.Reader
}

func NewVM(program *Program, options Options) *VM {
	if options.Stdin == nil {
		options.Stdin = strings.NewReader("")
	}
	if options.Stdout == nil {
		options.Stdout = io.Discard
	}
	if options.Rand == nil {
		options.Rand = NewRandom(rand.Uint64(), rand.Uint64())
	}
	if options.MaxCallDepth <= 0 {
		options.MaxCallDepth = DefaultMaxCallDepth
	}
	return &VM{
		Program:      program,
		CurrentFun:   program.Entry,
		OperandStack: make([]any, 32),
		CallStack:    make([]Frame, 0, 64),
		Globals:      make([]int32, len(program.Globals)),
		Locals:       make([]int32, len(program.Functions[program.Entry].LocalNames)),
		options:      options,
		input:        bufio.NewReader(options.Stdin),
	}
}

func (v *VM) Global(name string) (int32, bool) {
	for i, global := range v.Program.Globals {
		if global == name {
			return v.Globals[i], true
		}
	}
	return 0, false
}

func (v *VM) push(val any) {
	if v.SP >= len(v.OperandStack) {
		v.growOperandStack()
	}
	v.OperandStack[v.SP] = val
	v.SP++
}

func (v *VM) growOperandStack() {
	newCap := len(v.OperandStack) * 2
	if newCap == 0 {
		newCap = 8
	}
	newStack := make([]any, newCap)
	copy(newStack, v.OperandStack)
	v.OperandStack = newStack
}

func (v *VM) pop() (any, bool) {
	if v.SP <= 0 {
		return nil, false
	}
	v.SP--
	val := v.OperandStack[v.SP]
	v.OperandStack[v.SP] = nil
	return val, true
}

// Snapshot writes the execution state. The program is included, so a VM
// built by NewVM with any program can Restore it.
func (v *VM) Snapshot(w io.Writer) error {
	enc := gob.NewEncoder(w)
	if err := enc.Encode(v); err != nil {
		return err
	}
	return nil
}

func (v *VM) Restore(r io.Reader) error {
	dec := gob.NewDecoder(r)
	restored := new(VM)
	if err := dec.Decode(restored); err != nil {
		return err
	}
	restored.options = v.options
	restored.input = v.input
	*v = *restored
	return nil
}

type random struct {
	r *rand.Rand
}

// NewRandom returns a seeded generator.
func NewRandom(seed1, seed2 uint64) UniformIntGenerator {
	return random{
		r: rand.New(rand.NewPCG(seed1, seed2)),
	}
}

func (r random) Next(low, high int32) int32 {
	if high <= low {
		return low
	}
	return low + int32(r.r.Int64N(int64(high)-int64(low)))
}
