package debugs

import (
	"context"
	"fmt"

	"github.com/reusee/plzero/logs"
	"go.starlark.net/starlark"
	"go.starlark.net/syntax"
)

// Check runs a starlark script against globals. The script fails the check
// by calling fail().
type Check func(ctx context.Context, filename string, src any, globals map[string]any) error

func (Module) Check(
	logger logs.Logger,
) Check {
	return func(ctx context.Context, filename string, src any, globals map[string]any) error {
		predeclared := make(starlark.StringDict)
		for name, value := range globals {
			predeclared[name] = toStarlarkValue(value)
		}

		thread := &starlark.Thread{
			Name: "check: " + filename,
			Print: func(_ *starlark.Thread, msg string) {
				logger.InfoContext(ctx, "check",
					"script", filename,
					"msg", msg,
				)
			},
		}
		thread.SetLocal("context", ctx)

		_, err := starlark.ExecFileOptions(&syntax.FileOptions{
			Set:             true,
			While:           true,
			TopLevelControl: true,
		}, thread, filename, src, predeclared)
		if err != nil {
			if evalErr, ok := err.(*starlark.EvalError); ok {
				return fmt.Errorf("check %s: %s", filename, evalErr.Backtrace())
			}
			return fmt.Errorf("check %s: %w", filename, err)
		}
		return nil
	}
}
