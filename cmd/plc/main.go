package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"slices"

	"github.com/reusee/dscope"
	"github.com/reusee/plzero/cmds"
	"github.com/reusee/plzero/debugs"
	"github.com/reusee/plzero/logs"
	"github.com/reusee/plzero/modes"
	"github.com/reusee/plzero/pipelines"
)

var (
	runFlag   = cmds.Switch("-run", "execute the program")
	replFlag  = cmds.Switch("-repl", "inspect the program in a starlark prompt")
	checkFlag = cmds.Var[string]("-check", "run a starlark check script")
)

var args []string

func init() {
	cmds.GlobalExecutor.Positional(func(arg string) error {
		if len(args) == 2 {
			return fmt.Errorf("unexpected argument: %s", arg)
		}
		args = append(args, arg)
		return nil
	})
}

func main() {
	cmds.Execute(os.Args[1:])
	if len(args) == 0 {
		fmt.Fprintln(os.Stderr, "usage: plc [flags] <input-file> [<output-file>]")
		cmds.PrintUsage()
		os.Exit(2)
	}
	defer handleExit()

	ctx := context.Background()
	scope := dscope.New(
		new(Module),
		modes.ForProduction(),
	)

	scope.Call(func(
		logger logs.Logger,
		compile pipelines.Compile,
		run pipelines.Run,
		checkScript pipelines.CheckScript,
		tap debugs.Tap,
	) {
		inputPath := args[0]
		content, err := readInput(inputPath)
		ce(err)

		comp, err := compile(ctx, inputPath, content)
		ce(err)
		logger.InfoContext(ctx, "compiled",
			"input", inputPath,
			"optimized", comp.Optimized,
		)

		if *checkFlag != "" {
			ce(checkScript(ctx, comp, *checkFlag))
		}

		if len(args) > 1 {
			ce(writeOutput(comp, args[1]))
		} else if !*runFlag && !*replFlag {
			ce(render(comp, ".il", os.Stdout))
		}

		if *replFlag {
			tap(ctx, inputPath, debugs.Summarize(
				comp.Program,
				slices.Collect(comp.Instructions()),
			))
		}

		if *runFlag {
			program, err := comp.Assemble()
			ce(err)
			if err := run(ctx, program, os.Stdin, os.Stdout); err != nil {
				ce(&runtimeFailure{err: err})
			}
		}
	})
}

func readInput(path string) (string, error) {
	if path == "-" {
		content, err := io.ReadAll(os.Stdin)
		return string(content), err
	}
	content, err := os.ReadFile(path)
	return string(content), err
}
