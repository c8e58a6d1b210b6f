package plcconfigs

import (
	"github.com/reusee/plzero/cmds"
	"github.com/reusee/plzero/configs"
	"github.com/reusee/plzero/pl0gen"
	"github.com/reusee/plzero/vars"
)

// MaxStack is the .maxstack directive of every generated method.
type MaxStack int32

var _ configs.Configurable = MaxStack(0)

func (MaxStack) ConfigKey() string {
	return "max_stack"
}

var maxStackFlag = cmds.Var[int32]("-max-stack", ".maxstack of generated methods")

func (Module) MaxStack(
	loader configs.Loader,
) MaxStack {
	return vars.FirstNonZero(
		MaxStack(*maxStackFlag),
		configs.Lookup[MaxStack](loader),
		pl0gen.DefaultMaxStack,
	)
}
