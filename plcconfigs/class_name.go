package plcconfigs

import (
	"github.com/reusee/plzero/cmds"
	"github.com/reusee/plzero/configs"
	"github.com/reusee/plzero/pl0gen"
	"github.com/reusee/plzero/vars"
)

type ClassName string

var _ configs.Configurable = ClassName("")

func (ClassName) ConfigKey() string {
	return "class_name"
}

var classNameFlag = cmds.Var[string]("-class", "class name of the generated assembly")

func (Module) ClassName(
	loader configs.Loader,
) ClassName {
	return vars.FirstNonZero(
		ClassName(*classNameFlag),
		configs.Lookup[ClassName](loader),
		pl0gen.DefaultClassName,
	)
}
