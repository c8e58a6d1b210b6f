package pl0vm

import "encoding/gob"

func init() {
	gob.Register(&Function{})
	gob.Register(&Program{})
	gob.Register(Frame{})
	gob.Register(Address{})
	gob.Register(RandomHandle{})
	gob.Register(OpCode(0))
	gob.Register([]any{})
	gob.Register(&Interrupt{})
}
