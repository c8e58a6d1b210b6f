// Package pl0gen lowers an optimized program to stack-machine instructions.
package pl0gen

import (
	"fmt"
	"strings"

	"github.com/reusee/plzero/pl0ast"
)

type Op uint8

const (
	OpLoadConst Op = iota + 1
	OpLoadLocal
	OpLoadGlobal
	OpStoreLocal
	OpStoreGlobal
	OpLoadLocalAddr
	OpLoadGlobalAddr
	OpAdd
	OpSub
	OpMul
	OpDiv
	OpNeg
	OpAnd
	OpBranch
	OpBranchTrue
	OpBranchFalse
	OpBeq
	OpBne
	OpBlt
	OpBle
	OpBgt
	OpBge
	OpLabel
	OpCall
	OpLoadString
	OpWriteInt
	OpWriteString
	OpWritePrompt
	OpReadLine
	OpTryParse
	OpPop
	OpNewRandom
	OpRandNext
	OpReturn

	// structure
	OpClass
	OpField
	OpMethod
	OpLocals
	OpEndMethod
	OpConstructor
	OpEndClass
)

var opNames = map[Op]string{
	OpLoadConst:      "ldc.i4",
	OpLoadLocal:      "ldloc",
	OpLoadGlobal:     "ldsfld",
	OpStoreLocal:     "stloc",
	OpStoreGlobal:    "stsfld",
	OpLoadLocalAddr:  "ldloca",
	OpLoadGlobalAddr: "ldsflda",
	OpAdd:            "add",
	OpSub:            "sub",
	OpMul:            "mul",
	OpDiv:            "div",
	OpNeg:            "neg",
	OpAnd:            "and",
	OpBranch:         "br",
	OpBranchTrue:     "brtrue",
	OpBranchFalse:    "brfalse",
	OpBeq:            "beq",
	OpBne:            "bne.un",
	OpBlt:            "blt",
	OpBle:            "ble",
	OpBgt:            "bgt",
	OpBge:            "bge",
	OpLabel:          "label",
	OpCall:           "call",
	OpLoadString:     "ldstr",
	OpWriteInt:       "write.int",
	OpWriteString:    "write.string",
	OpWritePrompt:    "write.prompt",
	OpReadLine:       "readline",
	OpTryParse:       "tryparse",
	OpPop:            "pop",
	OpNewRandom:      "newrandom",
	OpRandNext:       "randnext",
	OpReturn:         "ret",
	OpClass:          ".class",
	OpField:          ".field",
	OpMethod:         ".method",
	OpLocals:         ".locals",
	OpEndMethod:      ".endmethod",
	OpConstructor:    ".ctor",
	OpEndClass:       ".endclass",
}

func (o Op) String() string {
	if name, ok := opNames[o]; ok {
		return name
	}
	return fmt.Sprintf("Op(%d)", o)
}

// IsBranch reports whether the instruction transfers control to Label.
func (o Op) IsBranch() bool {
	return o >= OpBranch && o <= OpBge
}

// Encoding selects the literal load form.
type Encoding uint8

const (
	// ldc.i4.0 to ldc.i4.8
	EncodingShort Encoding = iota + 1
	// ldc.i4.s, one byte operand
	EncodingByte
	// ldc.i4, four byte operand
	EncodingFull
	// ldc.i4.m1
	EncodingMinusOne
)

// EncodingFor returns the most compact encoding for a literal.
func EncodingFor(value int32) Encoding {
	switch {
	case value >= 0 && value <= 8:
		return EncodingShort
	case value >= 0 && value < 128:
		return EncodingByte
	}
	return EncodingFull
}

type Instruction struct {
	Op       Op
	Value    int32
	Encoding Encoding
	// variable, field, method or class name
	Name  string
	Label string
	// string literal
	Text  string
	Names []string
	// method is the program entry point
	Entry bool
}

// Format renders the instruction in assembly syntax. Structural instructions
// render as their directive only; see TextSink for full layout.
func (i Instruction) Format(className string) string {
	switch i.Op {

	case OpLoadConst:
		switch i.Encoding {
		case EncodingShort:
			return fmt.Sprintf("ldc.i4.%d", i.Value)
		case EncodingByte:
			return fmt.Sprintf("ldc.i4.s %d", i.Value)
		case EncodingMinusOne:
			return "ldc.i4.m1"
		}
		return fmt.Sprintf("ldc.i4 %d", i.Value)

	case OpLoadLocal, OpStoreLocal, OpLoadLocalAddr:
		return i.Op.String() + " " + i.Name

	case OpLoadGlobal, OpStoreGlobal, OpLoadGlobalAddr:
		return fmt.Sprintf("%s int32 %s::%s", i.Op, className, i.Name)

	case OpAdd, OpSub, OpMul, OpDiv, OpNeg, OpAnd, OpPop:
		return i.Op.String()

	case OpBranch, OpBranchTrue, OpBranchFalse,
		OpBeq, OpBne, OpBlt, OpBle, OpBgt, OpBge:
		return i.Op.String() + " " + i.Label

	case OpLabel:
		return i.Label + ":"

	case OpCall:
		return fmt.Sprintf("call void %s::%s()", className, i.Name)

	case OpLoadString:
		return "ldstr " + quote(i.Text)

	case OpWriteInt:
		return "call void [mscorlib]System.Console::WriteLine(int32)"
	case OpWriteString:
		return "call void [mscorlib]System.Console::WriteLine(string)"
	case OpWritePrompt:
		return "call void [mscorlib]System.Console::Write(string)"
	case OpReadLine:
		return "call string [mscorlib]System.Console::ReadLine()"
	case OpTryParse:
		return "call bool [mscorlib]System.Int32::TryParse(string,int32&)"
	case OpNewRandom:
		return "newobj instance void [mscorlib]System.Random::.ctor()"
	case OpRandNext:
		return "callvirt instance int32 [mscorlib]System.Random::Next(int32,int32)"
	case OpReturn:
		return "ret"

	}
	return i.Op.String() + " " + i.Name
}

func (i Instruction) String() string {
	return i.Format("plc")
}

var quoteReplacer = strings.NewReplacer(
	`\`, `\\`,
	`"`, `\"`,
	"\n", `\n`,
	"\t", `\t`,
)

func quote(s string) string {
	return `"` + quoteReplacer.Replace(s) + `"`
}

// StackEffect returns how many operands the instruction pops and pushes.
func StackEffect(op Op) (pop, push int) {
	switch op {
	case OpLoadConst, OpLoadLocal, OpLoadGlobal,
		OpLoadLocalAddr, OpLoadGlobalAddr,
		OpLoadString, OpReadLine, OpNewRandom:
		return 0, 1
	case OpStoreLocal, OpStoreGlobal,
		OpBranchTrue, OpBranchFalse,
		OpWriteInt, OpWriteString, OpWritePrompt, OpPop:
		return 1, 0
	case OpAdd, OpSub, OpMul, OpDiv, OpAnd:
		return 2, 1
	case OpNeg:
		return 1, 1
	case OpBeq, OpBne, OpBlt, OpBle, OpBgt, OpBge:
		return 2, 0
	case OpTryParse:
		return 2, 1
	case OpRandNext:
		return 3, 1
	}
	return 0, 0
}

// InternalInvariantError is raised with panic when generation meets a tree
// the optimizer or parser should never produce.
type InternalInvariantError = pl0ast.InternalInvariantError
