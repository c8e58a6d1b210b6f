package pipelines

import (
	"context"
	"os"
	"slices"

	"github.com/reusee/plzero/debugs"
)

// CheckScript runs a starlark script file against a summary of a compilation.
type CheckScript func(ctx context.Context, comp *Compilation, scriptPath string) error

func (Module) CheckScript(
	check debugs.Check,
) CheckScript {
	return func(ctx context.Context, comp *Compilation, scriptPath string) error {
		src, err := os.ReadFile(scriptPath)
		if err != nil {
			return err
		}
		summary := debugs.Summarize(comp.Program, slices.Collect(comp.Instructions()))
		summary["name"] = comp.Name
		summary["optimized"] = comp.Optimized
		return check(ctx, scriptPath, src, summary)
	}
}
