package pl0vm

import (
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
)

// Run executes until Main returns. Faults are yielded once and end the run.
// With YieldEvery set, Run yields InterruptYield between instructions; the
// consumer may stop there and resume later, possibly after Snapshot and
// Restore.
func (v *VM) Run(yield func(*Interrupt, error) bool) {
	fail := func(err error) {
		yield(nil, &RuntimeError{
			Function: v.Program.Functions[v.CurrentFun].Name,
			IP:       v.IP - 1,
			Err:      err,
		})
	}

	for {
		if v.options.MaxSteps > 0 && v.Steps >= v.options.MaxSteps {
			fail(ErrStepLimit)
			return
		}
		if every := v.options.YieldEvery; every > 0 && v.Steps-v.Yielded >= every {
			v.Yielded = v.Steps
			if !yield(InterruptYield, nil) {
				return
			}
		}
		v.Steps++

		fun := v.Program.Functions[v.CurrentFun]
		if v.IP < 0 || v.IP >= len(fun.Code) {
			// falling off the end returns
			if !v.ret() {
				return
			}
			continue
		}

		inst := fun.Code[v.IP]
		v.IP++
		op := inst & 0xff

		switch op {

		case OpLoadConst:
			v.push(fun.Constants[inst.Arg()])

		case OpLoadLocal:
			v.push(v.Locals[v.BP+inst.Arg()])

		case OpLoadGlobal:
			v.push(v.Globals[inst.Arg()])

		case OpStoreLocal:
			val, err := v.popInt()
			if err != nil {
				fail(err)
				return
			}
			v.Locals[v.BP+inst.Arg()] = val

		case OpStoreGlobal:
			val, err := v.popInt()
			if err != nil {
				fail(err)
				return
			}
			v.Globals[inst.Arg()] = val

		case OpLoadLocalAddr:
			v.push(Address{
				Index: v.BP + inst.Arg(),
			})

		case OpLoadGlobalAddr:
			v.push(Address{
				Global: true,
				Index:  inst.Arg(),
			})

		case OpAdd, OpSub, OpMul, OpDiv, OpAnd:
			b, err := v.popInt()
			if err != nil {
				fail(err)
				return
			}
			a, err := v.popInt()
			if err != nil {
				fail(err)
				return
			}
			res, err := arith(op, a, b)
			if err != nil {
				fail(err)
				return
			}
			v.push(res)

		case OpNeg:
			a, err := v.popInt()
			if err != nil {
				fail(err)
				return
			}
			v.push(-a)

		case OpJump:
			v.IP += inst.Arg()

		case OpJumpTrue, OpJumpFalse:
			a, err := v.popInt()
			if err != nil {
				fail(err)
				return
			}
			if (a != 0) == (op == OpJumpTrue) {
				v.IP += inst.Arg()
			}

		case OpJumpEq, OpJumpNe, OpJumpLt, OpJumpLe, OpJumpGt, OpJumpGe:
			b, err := v.popInt()
			if err != nil {
				fail(err)
				return
			}
			a, err := v.popInt()
			if err != nil {
				fail(err)
				return
			}
			if compare(op, a, b) {
				v.IP += inst.Arg()
			}

		case OpCall:
			if len(v.CallStack) >= v.options.MaxCallDepth {
				fail(ErrCallDepth)
				return
			}
			callee := v.Program.Functions[inst.Arg()]
			v.CallStack = append(v.CallStack, Frame{
				Fun:      v.CurrentFun,
				ReturnIP: v.IP,
				BP:       v.BP,
			})
			v.BP = len(v.Locals)
			for range callee.LocalNames {
				v.Locals = append(v.Locals, 0)
			}
			v.CurrentFun = inst.Arg()
			v.IP = 0

		case OpReturn:
			if !v.ret() {
				return
			}

		case OpWriteInt:
			a, err := v.popInt()
			if err != nil {
				fail(err)
				return
			}
			if _, err := fmt.Fprintln(v.options.Stdout, a); err != nil {
				fail(err)
				return
			}

		case OpWriteString, OpWritePrompt:
			s, err := v.popString()
			if err != nil {
				fail(err)
				return
			}
			if op == OpWriteString {
				_, err = fmt.Fprintln(v.options.Stdout, s)
			} else {
				_, err = fmt.Fprint(v.options.Stdout, s)
			}
			if err != nil {
				fail(err)
				return
			}

		case OpReadLine:
			line, err := v.input.ReadString('\n')
			if err != nil && !errors.Is(err, io.EOF) {
				fail(err)
				return
			}
			v.push(strings.TrimRight(line, "\r\n"))

		case OpTryParse:
			val, ok := v.pop()
			if !ok {
				fail(ErrStackUnderflow)
				return
			}
			addr, ok := val.(Address)
			if !ok {
				fail(fmt.Errorf("expected address, got %T", val))
				return
			}
			s, err := v.popString()
			if err != nil {
				fail(err)
				return
			}
			// a failed parse stores zero
			n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 32)
			if err != nil {
				n = 0
			}
			if addr.Global {
				v.Globals[addr.Index] = int32(n)
			} else {
				v.Locals[addr.Index] = int32(n)
			}
			if err != nil {
				v.push(int32(0))
			} else {
				v.push(int32(1))
			}

		case OpPop:
			if _, ok := v.pop(); !ok {
				fail(ErrStackUnderflow)
				return
			}

		case OpNewRandom:
			v.push(RandomHandle{})

		case OpRandNext:
			high, err := v.popInt()
			if err != nil {
				fail(err)
				return
			}
			low, err := v.popInt()
			if err != nil {
				fail(err)
				return
			}
			val, ok := v.pop()
			if !ok {
				fail(ErrStackUnderflow)
				return
			}
			if _, ok := val.(RandomHandle); !ok {
				fail(fmt.Errorf("expected random generator, got %T", val))
				return
			}
			if low > high {
				fail(fmt.Errorf("random range [%d, %d) is empty", low, high))
				return
			}
			v.push(v.options.Rand.Next(low, high))

		default:
			fail(fmt.Errorf("unknown opcode: %d", op))
			return
		}
	}
}

// ret leaves the current method, reporting false when Main returns.
func (v *VM) ret() bool {
	if len(v.CallStack) == 0 {
		v.IP = len(v.Program.Functions[v.CurrentFun].Code)
		return false
	}
	frame := v.CallStack[len(v.CallStack)-1]
	v.CallStack = v.CallStack[:len(v.CallStack)-1]
	v.Locals = v.Locals[:v.BP]
	v.BP = frame.BP
	v.CurrentFun = frame.Fun
	v.IP = frame.ReturnIP
	return true
}

func (v *VM) popInt() (int32, error) {
	val, ok := v.pop()
	if !ok {
		return 0, ErrStackUnderflow
	}
	i, ok := val.(int32)
	if !ok {
		return 0, fmt.Errorf("expected int32, got %T", val)
	}
	return i, nil
}

func (v *VM) popString() (string, error) {
	val, ok := v.pop()
	if !ok {
		return "", ErrStackUnderflow
	}
	s, ok := val.(string)
	if !ok {
		return "", fmt.Errorf("expected string, got %T", val)
	}
	return s, nil
}

func arith(op OpCode, a, b int32) (int32, error) {
	switch op {
	case OpAdd:
		return a + b, nil
	case OpSub:
		return a - b, nil
	case OpMul:
		return a * b, nil
	case OpDiv:
		if b == 0 {
			return 0, ErrDivideByZero
		}
		if a == math.MinInt32 && b == -1 {
			return 0, ErrOverflow
		}
		return a / b, nil
	case OpAnd:
		return a & b, nil
	}
	return 0, fmt.Errorf("unknown arithmetic opcode: %d", op)
}

func compare(op OpCode, a, b int32) bool {
	switch op {
	case OpJumpEq:
		return a == b
	case OpJumpNe:
		return a != b
	case OpJumpLt:
		return a < b
	case OpJumpLe:
		return a <= b
	case OpJumpGt:
		return a > b
	case OpJumpGe:
		return a >= b
	}
	return false
}
