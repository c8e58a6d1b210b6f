package plcconfigs

import (
	"github.com/reusee/plzero/cmds"
	"github.com/reusee/plzero/configs"
	"github.com/reusee/plzero/vars"
)

// Optimize enables the AST optimizer. It defaults to true.
type Optimize bool

var _ configs.Configurable = Optimize(false)

func (Optimize) ConfigKey() string {
	return "optimize"
}

var noOptFlag = cmds.Switch("-no-opt", "disable the optimizer")

func (Module) Optimize(
	loader configs.Loader,
) Optimize {
	// flag
	if *noOptFlag {
		return false
	}
	// config
	if ptr := configs.First[*bool](loader, Optimize(false).ConfigKey()); ptr != nil {
		return Optimize(vars.DerefOrZero(ptr))
	}
	return true
}
