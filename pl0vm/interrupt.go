package pl0vm

import "errors"

type Interrupt struct {
	Yield bool
}

var InterruptYield = &Interrupt{
	Yield: true,
}

var (
	ErrStepLimit      = errors.New("step limit exceeded")
	ErrCallDepth      = errors.New("call depth exceeded")
	ErrDivideByZero   = errors.New("division by zero")
	ErrOverflow       = errors.New("arithmetic overflow")
	ErrStackUnderflow = errors.New("stack underflow")
)

// RuntimeError locates a fault in the running program.
type RuntimeError struct {
	Function string
	IP       int
	Err      error
}

func (e *RuntimeError) Error() string {
	return e.Function + ": " + e.Err.Error()
}

func (e *RuntimeError) Unwrap() error {
	return e.Err
}
