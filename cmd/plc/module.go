package main

import (
	"github.com/reusee/dscope"
	"github.com/reusee/plzero/pipelines"
)

type Module struct {
	dscope.Module
	Pipelines pipelines.Module
}
