package pipelines

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"slices"

	"github.com/reusee/plzero/logs"
	"github.com/reusee/plzero/modes"
	"github.com/reusee/plzero/pl0ast"
	"github.com/reusee/plzero/pl0gen"
	"github.com/reusee/plzero/pl0lexer"
	"github.com/reusee/plzero/pl0opt"
	"github.com/reusee/plzero/pl0parser"
	"github.com/reusee/plzero/pl0vm"
	"github.com/reusee/plzero/plcconfigs"
)

// Compilation is a parsed and possibly optimized program, ready for any
// back end.
type Compilation struct {
	Name      string
	Program   *pl0ast.Program
	Optimized bool
	Options   pl0gen.Options
}

// Instructions returns a fresh instruction stream on each call.
func (c *Compilation) Instructions() iter.Seq[pl0gen.Instruction] {
	return pl0gen.NewStackBackend(c.Options).Instructions(c.Program)
}

func (c *Compilation) Emit(sink pl0gen.Sink) error {
	return pl0gen.Generate(pl0gen.NewStackBackend(c.Options), c.Program, sink)
}

func (c *Compilation) Assemble() (*pl0vm.Program, error) {
	return pl0vm.Assemble(c.Instructions())
}

func (c *Compilation) Source() string {
	return pl0ast.Format(c.Program)
}

type Compile func(ctx context.Context, name string, content string) (*Compilation, error)

func (Module) Compile(
	logger logs.Logger,
	newSpan logs.NewSpan,
	optimize plcconfigs.Optimize,
	className plcconfigs.ClassName,
	maxStack plcconfigs.MaxStack,
	mode modes.Mode,
) Compile {
	return func(ctx context.Context, name string, content string) (ret *Compilation, err error) {
		ctx, _ = newSpan(ctx, name)

		defer func() {
			p := recover()
			if p == nil {
				return
			}
			var invariantErr *pl0ast.InternalInvariantError
			if e, ok := p.(error); ok && errors.As(e, &invariantErr) {
				ret = nil
				err = fmt.Errorf("%s: %w", name, e)
				return
			}
			panic(p)
		}()

		// lex and parse
		lexCtx := logs.WithPhase(ctx, logs.PhaseLex)
		parseCtx := logs.WithPhase(ctx, logs.PhaseParse)
		program, err := pl0parser.ParseSource(
			pl0lexer.NewTokenizer(pl0lexer.NewSource(name, content)),
		)
		if err != nil {
			var lexErr *pl0lexer.LexError
			if errors.As(err, &lexErr) {
				return nil, logs.WrapPhase(lexCtx, err)
			}
			return nil, logs.WrapPhase(parseCtx, err)
		}
		logger.DebugContext(parseCtx, "parsed",
			"identities", len(program.Identities),
			"procedures", len(program.Block.Procedures),
		)

		// optimize
		if optimize {
			optCtx := logs.WithPhase(ctx, logs.PhaseOptimize)
			pl0opt.New(program, logger.With("plc.phase", logs.PhaseOptimize)).Optimize()
			logger.DebugContext(optCtx, "optimized",
				"procedures", len(program.Block.Procedures),
			)
		}

		ret = &Compilation{
			Name:      name,
			Program:   program,
			Optimized: bool(optimize),
			Options: pl0gen.Options{
				ClassName: string(className),
				MaxStack:  int32(maxStack),
			},
		}

		// verify the stream assembles
		if mode == modes.ModeDevelopment {
			genCtx := logs.WithPhase(ctx, logs.PhaseGenerate)
			insts := slices.Collect(ret.Instructions())
			if _, err := pl0vm.Assemble(slices.Values(insts)); err != nil {
				return nil, logs.WrapPhase(genCtx, err)
			}
			logger.DebugContext(genCtx, "verified",
				"instructions", len(insts),
			)
		}

		return ret, nil
	}
}
