package pl0vm

import (
	"fmt"
	"iter"
	"slices"

	"github.com/reusee/plzero/pl0gen"
)

// Assembler is a pl0gen.Sink that builds a Program. Labels are resolved at
// the end of each method, calls when the assembler is closed.
type Assembler struct {
	program   *Program
	fun       *Function
	globals   map[string]int
	functions map[string]int
	labels    map[string]int
	branches  []fixup
	calls     []callFixup
	closed    bool
}

type fixup struct {
	pc    int
	op    OpCode
	label string
}

type callFixup struct {
	fun  *Function
	pc   int
	name string
}

var _ pl0gen.Sink = new(Assembler)

func NewAssembler() *Assembler {
	return &Assembler{
		program: &Program{
			Entry: -1,
		},
		globals:   make(map[string]int),
		functions: make(map[string]int),
	}
}

var branchOps = map[pl0gen.Op]OpCode{
	pl0gen.OpBranch:      OpJump,
	pl0gen.OpBranchTrue:  OpJumpTrue,
	pl0gen.OpBranchFalse: OpJumpFalse,
	pl0gen.OpBeq:         OpJumpEq,
	pl0gen.OpBne:         OpJumpNe,
	pl0gen.OpBlt:         OpJumpLt,
	pl0gen.OpBle:         OpJumpLe,
	pl0gen.OpBgt:         OpJumpGt,
	pl0gen.OpBge:         OpJumpGe,
}

var plainOps = map[pl0gen.Op]OpCode{
	pl0gen.OpAdd:         OpAdd,
	pl0gen.OpSub:         OpSub,
	pl0gen.OpMul:         OpMul,
	pl0gen.OpDiv:         OpDiv,
	pl0gen.OpNeg:         OpNeg,
	pl0gen.OpAnd:         OpAnd,
	pl0gen.OpWriteInt:    OpWriteInt,
	pl0gen.OpWriteString: OpWriteString,
	pl0gen.OpWritePrompt: OpWritePrompt,
	pl0gen.OpReadLine:    OpReadLine,
	pl0gen.OpTryParse:    OpTryParse,
	pl0gen.OpPop:         OpPop,
	pl0gen.OpNewRandom:   OpNewRandom,
	pl0gen.OpRandNext:    OpRandNext,
	pl0gen.OpReturn:      OpReturn,
}

var localOps = map[pl0gen.Op]OpCode{
	pl0gen.OpLoadLocal:     OpLoadLocal,
	pl0gen.OpStoreLocal:    OpStoreLocal,
	pl0gen.OpLoadLocalAddr: OpLoadLocalAddr,
}

var globalOps = map[pl0gen.Op]OpCode{
	pl0gen.OpLoadGlobal:     OpLoadGlobal,
	pl0gen.OpStoreGlobal:    OpStoreGlobal,
	pl0gen.OpLoadGlobalAddr: OpLoadGlobalAddr,
}

func (a *Assembler) Emit(inst pl0gen.Instruction) error {
	if a.closed {
		return fmt.Errorf("assembler closed")
	}

	switch inst.Op {

	case pl0gen.OpClass:
		a.program.Name = inst.Name
		a.program.UsesRand = slices.Contains(inst.Names, "System.Random")
		return nil

	case pl0gen.OpField:
		if _, ok := a.globals[inst.Name]; ok {
			return fmt.Errorf("duplicate field: %s", inst.Name)
		}
		a.globals[inst.Name] = len(a.program.Globals)
		a.program.Globals = append(a.program.Globals, inst.Name)
		return nil

	case pl0gen.OpMethod:
		if a.fun != nil {
			return fmt.Errorf("method %s not ended", a.fun.Name)
		}
		if _, ok := a.functions[inst.Name]; ok {
			return fmt.Errorf("duplicate method: %s", inst.Name)
		}
		a.fun = &Function{
			Name: inst.Name,
		}
		a.functions[inst.Name] = len(a.program.Functions)
		if inst.Entry {
			a.program.Entry = len(a.program.Functions)
		}
		a.program.Functions = append(a.program.Functions, a.fun)
		a.labels = make(map[string]int)
		a.branches = a.branches[:0]
		return nil

	case pl0gen.OpConstructor, pl0gen.OpEndClass:
		return nil
	}

	if a.fun == nil {
		return fmt.Errorf("%v outside of method", inst.Op)
	}
	fun := a.fun

	switch inst.Op {

	case pl0gen.OpLocals:
		fun.LocalNames = slices.Clone(inst.Names)

	case pl0gen.OpEndMethod:
		for _, fix := range a.branches {
			target, ok := a.labels[fix.label]
			if !ok {
				return fmt.Errorf("%s: undefined label: %s", fun.Name, fix.label)
			}
			fun.Code[fix.pc] = fix.op.With(target - (fix.pc + 1))
		}
		a.fun = nil

	case pl0gen.OpLabel:
		if _, ok := a.labels[inst.Label]; ok {
			return fmt.Errorf("%s: duplicate label: %s", fun.Name, inst.Label)
		}
		a.labels[inst.Label] = len(fun.Code)

	case pl0gen.OpLoadConst:
		fun.Code = append(fun.Code, OpLoadConst.With(a.constant(inst.Value)))

	case pl0gen.OpLoadString:
		fun.Code = append(fun.Code, OpLoadConst.With(a.constant(inst.Text)))

	case pl0gen.OpCall:
		a.calls = append(a.calls, callFixup{
			fun:  fun,
			pc:   len(fun.Code),
			name: inst.Name,
		})
		fun.Code = append(fun.Code, OpCall)

	default:
		if op, ok := branchOps[inst.Op]; ok {
			a.branches = append(a.branches, fixup{
				pc:    len(fun.Code),
				op:    op,
				label: inst.Label,
			})
			fun.Code = append(fun.Code, op)
			return nil
		}
		if op, ok := localOps[inst.Op]; ok {
			if inst.Value < 0 || int(inst.Value) >= len(fun.LocalNames) {
				return fmt.Errorf("%s: bad local slot %d for %s", fun.Name, inst.Value, inst.Name)
			}
			fun.Code = append(fun.Code, op.With(int(inst.Value)))
			return nil
		}
		if op, ok := globalOps[inst.Op]; ok {
			idx, ok := a.globals[inst.Name]
			if !ok {
				return fmt.Errorf("%s: unknown field: %s", fun.Name, inst.Name)
			}
			fun.Code = append(fun.Code, op.With(idx))
			return nil
		}
		if op, ok := plainOps[inst.Op]; ok {
			fun.Code = append(fun.Code, op)
			return nil
		}
		return fmt.Errorf("unknown instruction: %v", inst.Op)
	}

	return nil
}

func (a *Assembler) constant(value any) int {
	for i, c := range a.fun.Constants {
		if c == value {
			return i
		}
	}
	a.fun.Constants = append(a.fun.Constants, value)
	return len(a.fun.Constants) - 1
}

// Close resolves calls and checks the program is complete.
func (a *Assembler) Close() error {
	if a.closed {
		return nil
	}
	a.closed = true
	if a.fun != nil {
		return fmt.Errorf("method %s not ended", a.fun.Name)
	}
	if a.program.Entry < 0 {
		return fmt.Errorf("no entry point")
	}
	for _, call := range a.calls {
		idx, ok := a.functions[call.name]
		if !ok {
			return fmt.Errorf("%s: unknown method: %s", call.fun.Name, call.name)
		}
		call.fun.Code[call.pc] = OpCall.With(idx)
	}
	return nil
}

// Program returns the assembled program. It is complete only after Close.
func (a *Assembler) Program() *Program {
	return a.program
}

// Assemble drains an instruction stream into a Program.
func Assemble(seq iter.Seq[pl0gen.Instruction]) (*Program, error) {
	a := NewAssembler()
	for inst := range seq {
		if err := a.Emit(inst); err != nil {
			return nil, err
		}
	}
	if err := a.Close(); err != nil {
		return nil, err
	}
	return a.Program(), nil
}
