package cmds

import (
	"fmt"
	"os"
)

var GlobalExecutor = NewExecutor()

func Define(name string, command *Command) {
	GlobalExecutor.Define(name, command)
}

// Execute runs args against the global executor, exiting on error.
func Execute(args []string) {
	if err := GlobalExecutor.Execute(args); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		GlobalExecutor.PrintUsage()
		os.Exit(2)
	}
}

func PrintUsage() {
	GlobalExecutor.PrintUsage()
}
