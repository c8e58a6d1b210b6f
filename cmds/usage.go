package cmds

import (
	"fmt"
	"io"
	"os"
	"slices"
	"strings"
)

var UsageWriter io.Writer = os.Stderr

func (p *Executor) PrintUsage() {
	printCommands(UsageWriter, p.commands, 0)
}

func printCommands(w io.Writer, commands map[string]*Command, depth int) {
	names := make([]string, 0, len(commands))
	for name, command := range commands {
		if command == nil || slices.Contains(command.Aliases, name) {
			continue
		}
		names = append(names, name)
	}
	slices.Sort(names)

	indent := strings.Repeat("  ", depth)
	for _, name := range names {
		command := commands[name]
		line := indent + name
		if len(command.Aliases) > 0 {
			line += " (" + strings.Join(command.Aliases, ", ") + ")"
		}
		if command.Description != "" {
			line += "\t" + command.Description
		}
		fmt.Fprintln(w, line)
		if len(command.Subs) > 0 {
			printCommands(w, command.Subs, depth+1)
		}
	}
}
