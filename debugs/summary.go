package debugs

import (
	"github.com/reusee/plzero/pl0ast"
	"github.com/reusee/plzero/pl0gen"
)

// Summarize flattens a compiled program into plain values for scripts.
func Summarize(program *pl0ast.Program, instructions []pl0gen.Instruction) map[string]any {
	names := func(ids []pl0ast.IdentityID) []any {
		ret := make([]any, 0, len(ids))
		for _, id := range ids {
			ret = append(ret, program.Name(id))
		}
		return ret
	}

	procedures := make([]any, 0, len(program.Block.Procedures))
	for _, proc := range program.Block.Procedures {
		procedures = append(procedures, map[string]any{
			"name":      proc.Name,
			"calls":     proc.CallCount,
			"variables": names(proc.Block.Variables),
			"leaf":      proc.IsLeaf(),
		})
	}

	lines := make([]any, 0, len(instructions))
	ops := make(map[string]any)
	for _, inst := range instructions {
		lines = append(lines, inst.String())
		name := inst.Op.String()
		n, _ := ops[name].(int)
		ops[name] = n + 1
	}

	return map[string]any{
		"source":       pl0ast.Format(program),
		"constants":    names(program.Block.Constants),
		"globals":      names(program.Block.Variables),
		"procedures":   procedures,
		"uses_rand":    program.UsesRand,
		"instructions": lines,
		"ops":          ops,
	}
}
