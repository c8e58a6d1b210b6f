package plcconfigs

import (
	"github.com/reusee/plzero/cmds"
	"github.com/reusee/plzero/configs"
	"github.com/reusee/plzero/vars"
)

// MaxSteps bounds the instructions executed by -run. Zero means unbounded.
type MaxSteps int

var _ configs.Configurable = MaxSteps(0)

func (MaxSteps) ConfigKey() string {
	return "max_steps"
}

var maxStepsFlag = cmds.Var[int]("-max-steps", "instruction limit for -run")

func (Module) MaxSteps(
	loader configs.Loader,
) MaxSteps {
	return vars.FirstNonZero(
		MaxSteps(*maxStepsFlag),
		configs.Lookup[MaxSteps](loader),
	)
}

type MaxCallDepth int

var _ configs.Configurable = MaxCallDepth(0)

func (MaxCallDepth) ConfigKey() string {
	return "max_call_depth"
}

var maxCallDepthFlag = cmds.Var[int]("-max-call-depth", "call depth limit for -run")

func (Module) MaxCallDepth(
	loader configs.Loader,
) MaxCallDepth {
	return vars.FirstNonZero(
		MaxCallDepth(*maxCallDepthFlag),
		configs.Lookup[MaxCallDepth](loader),
	)
}
