package pl0vm

import (
	"encoding/gob"
	"fmt"
	"io"
)

type Function struct {
	Name       string
	LocalNames []string
	Code       []OpCode
	Constants  []any
}

// Program is an assembled class: global fields, methods and the entry point.
type Program struct {
	Name      string
	Globals   []string
	Functions []*Function
	Entry     int
	UsesRand  bool
}

func (p *Program) Function(name string) (*Function, bool) {
	for _, fun := range p.Functions {
		if fun.Name == name {
			return fun, true
		}
	}
	return nil, false
}

const programMagic = "plc-program-v1"

// Encode writes the binary artifact form of the program.
func (p *Program) Encode(w io.Writer) error {
	enc := gob.NewEncoder(w)
	if err := enc.Encode(programMagic); err != nil {
		return err
	}
	if err := enc.Encode(p); err != nil {
		return err
	}
	return nil
}

func DecodeProgram(r io.Reader) (*Program, error) {
	dec := gob.NewDecoder(r)
	var magic string
	if err := dec.Decode(&magic); err != nil {
		return nil, err
	}
	if magic != programMagic {
		return nil, fmt.Errorf("not a program artifact: %q", magic)
	}
	program := new(Program)
	if err := dec.Decode(program); err != nil {
		return nil, err
	}
	if program.Entry < 0 || program.Entry >= len(program.Functions) {
		return nil, fmt.Errorf("bad entry point: %d", program.Entry)
	}
	return program, nil
}
