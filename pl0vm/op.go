package pl0vm

type OpCode uint32

const (
	OpLoadConst OpCode = iota + 8
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
	OpJump
	OpJumpTrue
	OpJumpFalse
	OpJumpEq
	OpJumpNe
	OpJumpLt
	OpJumpLe
	OpJumpGt
	OpJumpGe
	OpCall
	OpReturn
	OpWriteInt
	OpWriteString
	OpWritePrompt
	OpReadLine
	OpTryParse
	OpPop
	OpNewRandom
	OpRandNext
)

func (o OpCode) With(arg int) OpCode {
	return o | (OpCode(arg) << 8)
}

// Arg returns the signed operand packed by With.
func (o OpCode) Arg() int {
	return int(int32(o) >> 8)
}
