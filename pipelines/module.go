// Package pipelines wires the compiler phases into dscope providers.
package pipelines

import (
	"github.com/reusee/dscope"
	"github.com/reusee/plzero/debugs"
	"github.com/reusee/plzero/logs"
	"github.com/reusee/plzero/plcconfigs"
)

type Module struct {
	dscope.Module
	Logs    logs.Module
	Configs plcconfigs.Module
	Debugs  debugs.Module
}
