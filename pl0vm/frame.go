package pl0vm

type Frame struct {
	Fun      int
	ReturnIP int
	BP       int
}

// Address is the operand pushed by the address-load instructions.
type Address struct {
	Global bool
	Index  int
}

// RandomHandle stands for the generator object created by OpNewRandom.
type RandomHandle struct{}
