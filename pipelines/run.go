package pipelines

import (
	"context"
	"io"

	"github.com/reusee/plzero/logs"
	"github.com/reusee/plzero/pl0vm"
	"github.com/reusee/plzero/plcconfigs"
)

// Run executes an assembled program until it returns, fails or ctx is done.
type Run func(ctx context.Context, program *pl0vm.Program, stdin io.Reader, stdout io.Writer) error

const yieldEvery = 1 << 16

func (Module) Run(
	logger logs.Logger,
	maxSteps plcconfigs.MaxSteps,
	maxCallDepth plcconfigs.MaxCallDepth,
) Run {
	return func(ctx context.Context, program *pl0vm.Program, stdin io.Reader, stdout io.Writer) error {
		ctx = logs.WithPhase(ctx, logs.PhaseRun)
		vm := pl0vm.NewVM(program, pl0vm.Options{
			Stdin:        stdin,
			Stdout:       stdout,
			MaxSteps:     int(maxSteps),
			MaxCallDepth: int(maxCallDepth),
			YieldEvery:   yieldEvery,
		})
		for interrupt, err := range vm.Run {
			if err != nil {
				return logs.WrapPhase(ctx, err)
			}
			if interrupt == pl0vm.InterruptYield {
				if err := ctx.Err(); err != nil {
					return logs.WrapPhase(ctx, err)
				}
			}
		}
		logger.DebugContext(ctx, "exit",
			"steps", vm.Steps,
		)
		return nil
	}
}
