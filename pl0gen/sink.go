package pl0gen

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/reusee/plzero/pl0ast"
)

// Sink consumes an instruction stream.
type Sink interface {
	Emit(inst Instruction) error
}

// Generate drains the back end's stream for program into sink.
func Generate(backend Backend, program *pl0ast.Program, sink Sink) error {
	for inst := range backend.Instructions(program) {
		if err := sink.Emit(inst); err != nil {
			return fmt.Errorf("emit %v: %w", inst.Op, err)
		}
	}
	return nil
}

// TextSink renders assembly text. Close flushes buffered output; it does not
// close the underlying writer.
type TextSink struct {
	w         *bufio.Writer
	className string
	err       error
}

var _ Sink = new(TextSink)

func NewTextSink(w io.Writer) *TextSink {
	return &TextSink{
		w: bufio.NewWriter(w),
	}
}

const (
	memberIndent      = "    "
	instructionIndent = "        "
)

func (t *TextSink) line(indent string, format string, args ...any) {
	if t.err != nil {
		return
	}
	if format == "" {
		_, t.err = t.w.WriteString("\n")
		return
	}
	_, t.err = fmt.Fprintf(t.w, indent+format+"\n", args...)
}

func (t *TextSink) Emit(inst Instruction) error {
	switch inst.Op {

	case OpClass:
		t.className = inst.Name
		t.line("", ".assembly extern mscorlib")
		t.line("", "{")
		t.line(memberIndent, ".publickeytoken = (B7 7A 5C 56 19 34 E0 89 )")
		t.line(memberIndent, ".ver 4:0:0:0")
		t.line("", "}")
		t.line("", "")
		t.line("", ".assembly %s { }", inst.Name)
		t.line("", "")
		t.line("", "// uses %s", strings.Join(inst.Names, ", "))
		t.line("", ".class public auto ansi beforefieldinit %s extends [mscorlib]System.Object", inst.Name)
		t.line("", "{")

	case OpField:
		t.line(memberIndent, ".field private static int32 %s", inst.Name)

	case OpMethod:
		t.line("", "")
		if inst.Entry {
			t.line(memberIndent, ".method public hidebysig static void %s() cil managed", inst.Name)
			t.line(memberIndent, "{")
			t.line(instructionIndent, ".entrypoint")
		} else {
			t.line(memberIndent, ".method private hidebysig static void %s() cil managed", inst.Name)
			t.line(memberIndent, "{")
		}
		t.line(instructionIndent, ".maxstack %d", inst.Value)

	case OpLocals:
		locals := make([]string, 0, len(inst.Names))
		for i, name := range inst.Names {
			locals = append(locals, fmt.Sprintf("[%d] int32 %s", i, name))
		}
		t.line(instructionIndent, ".locals init (%s)", strings.Join(locals, ", "))

	case OpEndMethod:
		t.line(memberIndent, "}")

	case OpConstructor:
		t.line("", "")
		t.line(memberIndent, ".method public hidebysig specialname rtspecialname instance void .ctor() cil managed")
		t.line(memberIndent, "{")
		t.line(instructionIndent, ".maxstack 8")
		t.line(instructionIndent, "ldarg.0")
		t.line(instructionIndent, "call instance void [mscorlib]System.Object::.ctor()")
		t.line(instructionIndent, "nop")
		t.line(instructionIndent, "ret")
		t.line(memberIndent, "}")

	case OpEndClass:
		t.line("", "}")

	case OpLabel:
		t.line(memberIndent, "%s", inst.Format(t.className))

	default:
		t.line(instructionIndent, "%s", inst.Format(t.className))
	}
	return t.err
}

func (t *TextSink) Close() error {
	if t.err != nil {
		return t.err
	}
	return t.w.Flush()
}
