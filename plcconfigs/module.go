package plcconfigs

import (
	"github.com/reusee/dscope"
	"github.com/reusee/plzero/logs"
)

type Module struct {
	dscope.Module
	Logs logs.Module
}
