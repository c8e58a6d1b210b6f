package pipelines

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/reusee/plzero/pl0vm"
	"github.com/reusee/plzero/plcconfigs"
)

const endless = `
VAR x;
BEGIN
	READ x;
	WHILE x = x DO x := x + 1
END.
`

func TestRunStepLimit(t *testing.T) {
	testScope(t, true).Fork(
		func() plcconfigs.MaxSteps {
			return 1000
		},
	).Call(func(
		compile Compile,
		run Run,
	) {
		comp, err := compile(t.Context(), "endless.pl0", endless)
		if err != nil {
			t.Fatal(err)
		}
		program, err := comp.Assemble()
		if err != nil {
			t.Fatal(err)
		}
		err = run(t.Context(), program, strings.NewReader("1\n"), io.Discard)
		if !errors.Is(err, pl0vm.ErrStepLimit) {
			t.Fatalf("got %v", err)
		}
		if !strings.HasPrefix(err.Error(), "run: ") {
			t.Fatalf("got %v", err)
		}
	})
}

func TestRunCancel(t *testing.T) {
	testScope(t, true).Call(func(
		compile Compile,
		run Run,
	) {
		comp, err := compile(t.Context(), "endless.pl0", endless)
		if err != nil {
			t.Fatal(err)
		}
		program, err := comp.Assemble()
		if err != nil {
			t.Fatal(err)
		}
		ctx, cancel := context.WithCancel(t.Context())
		cancel()
		err = run(ctx, program, strings.NewReader("1\n"), io.Discard)
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("got %v", err)
		}
	})
}
