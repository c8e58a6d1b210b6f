package pl0opt

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"strconv"
	"strings"
	"testing"

	"github.com/reusee/plzero/pl0ast"
	"github.com/reusee/plzero/pl0lexer"
	"github.com/reusee/plzero/pl0parser"
)

func parse(t *testing.T, src string) *pl0ast.Program {
	t.Helper()
	tokens, err := pl0lexer.Tokenize(pl0lexer.NewSource("test", src))
	if err != nil {
		t.Fatal(err)
	}
	program, err := pl0parser.Parse(tokens)
	if err != nil {
		t.Fatal(err)
	}
	return program
}

func optimize(t *testing.T, src string) *pl0ast.Program {
	t.Helper()
	program := parse(t, src)
	New(program, nil).Optimize()
	return program
}

func checkCounts(t *testing.T, program *pl0ast.Program) {
	t.Helper()

	refs := pl0ast.CountRefs(program)
	assignments := make(map[pl0ast.IdentityID]int)
	reads := make(map[pl0ast.IdentityID]int)
	calls := make(map[string]int)
	visitor := pl0ast.Visitor{
		Statement: func(stmt pl0ast.Statement) {
			switch s := stmt.(type) {
			case *pl0ast.Assignment:
				assignments[s.Target]++
			case *pl0ast.Read:
				reads[s.Target]++
			case *pl0ast.Call:
				calls[s.Name]++
			}
		},
	}
	pl0ast.WalkStatement(program.Block.Statement, visitor)
	for _, proc := range program.Block.Procedures {
		pl0ast.WalkStatement(proc.Block.Statement, visitor)
	}

	check := func(ids []pl0ast.IdentityID) {
		for _, id := range ids {
			identity := program.Identity(id)
			if identity.ReferenceCount != refs[id] {
				t.Fatalf("%s: got %d references, tree has %d", identity.Name, identity.ReferenceCount, refs[id])
			}
			if len(identity.Assignments) != assignments[id] {
				t.Fatalf("%s: got %d assignments, tree has %d", identity.Name, len(identity.Assignments), assignments[id])
			}
			if identity.ReadCount != reads[id] {
				t.Fatalf("%s: got %d reads, tree has %d", identity.Name, identity.ReadCount, reads[id])
			}
		}
	}
	check(program.Block.Variables)
	for _, proc := range program.Block.Procedures {
		check(proc.Block.Variables)
		if proc.CallCount != calls[proc.Name] {
			t.Fatalf("%s: got call count %d, tree has %d", proc.Name, proc.CallCount, calls[proc.Name])
		}
	}
}

func TestScenarioPromotion(t *testing.T) {
	program := optimize(t, `CONST a = 3; VAR b; BEGIN b := a + 2; WRITE b END.`)
	if got := pl0ast.FormatStatement(program, program.Block.Statement); got != "WRITE 5" {
		t.Fatalf("got %s", got)
	}
	if len(program.Block.Variables) != 0 {
		t.Fatalf("got %v", program.Block.Variables)
	}
	found := false
	for _, id := range program.Block.Constants {
		identity := program.Identity(id)
		if identity.Name == "b" {
			found = true
			if identity.Value != 5 {
				t.Fatalf("got %d", identity.Value)
			}
		}
	}
	if !found {
		t.Fatal("b not promoted")
	}
}

func TestScenarioPropagation(t *testing.T) {
	program := optimize(t, `VAR x; BEGIN x := 1; IF x < 10 THEN WRITE x END.`)
	if got := pl0ast.FormatStatement(program, program.Block.Statement); got != "WRITE 1" {
		t.Fatalf("got %s", got)
	}
	if len(program.Block.Variables) != 0 {
		t.Fatalf("got %v", program.Block.Variables)
	}
}

func TestScenarioSelfCall(t *testing.T) {
	program := optimize(t, `PROCEDURE p; BEGIN CALL p END; BEGIN CALL p END.`)
	if len(program.Block.Procedures) != 1 {
		t.Fatalf("got %d", len(program.Block.Procedures))
	}
	p := program.Block.Procedures[0]
	if p.CallCount < 1 {
		t.Fatalf("got %d", p.CallCount)
	}
	if got := pl0ast.FormatStatement(program, p.Block.Statement); got != "CALL p" {
		t.Fatalf("got %s", got)
	}
	checkCounts(t, program)
}

func TestScenarioFor(t *testing.T) {
	program := optimize(t, `VAR i, s; BEGIN s := 0; WHILE i := 1 TO 5 DO s := s + i; WRITE s END.`)
	expected := "VAR i, s;\n" +
		"BEGIN\n" +
		"  s := 0;\n" +
		"  i := 1;\n" +
		"  DO BEGIN\n" +
		"    s := s + i;\n" +
		"    i := i + 1\n" +
		"  END WHILE i <= 5;\n" +
		"  WRITE s\n" +
		"END.\n"
	if got := pl0ast.Format(program); got != expected {
		t.Fatalf("got\n%s", got)
	}
	checkCounts(t, program)
}

func TestScenarioTruncation(t *testing.T) {
	program := optimize(t, `WRITE 7 / 2.`)
	if got := pl0ast.FormatStatement(program, program.Block.Statement); got != "WRITE 3" {
		t.Fatalf("got %s", got)
	}
}

func TestRewrites(t *testing.T) {
	cases := []struct {
		src      string
		expected string
	}{
		// folding
		{"WRITE 1 + 2 * 3.", "WRITE 7"},
		{"WRITE -7 / 2.", "WRITE -3"},
		{"WRITE 2 - 5.", "WRITE -3"},
		{"WRITE (2 - 5) * 2.", "WRITE -6"},
		{"WRITE 3 - 3.", "WRITE 0"},
		{"WRITE 1 / 0.", "WRITE 1 / 0"},
		{"CONST k = 4; WRITE k * k.", "WRITE 16"},
		{"VAR x; BEGIN READ x; WRITE x + 0 END.", "BEGIN READ x; WRITE x END"},
		{"VAR x; BEGIN READ x; WRITE 1 + x + 2 END.", "BEGIN READ x; WRITE x + 3 END"},
		{"VAR x; BEGIN READ x; WRITE x - 5 + 2 END.", "BEGIN READ x; WRITE x - 3 END"},
		{"VAR x; BEGIN READ x; WRITE x * 1 END.", "BEGIN READ x; WRITE x END"},
		{"VAR x; BEGIN READ x; WRITE 2 / x END.", "BEGIN READ x; WRITE 2 / x END"},
		{"VAR x; BEGIN READ x; WRITE 1 / x END.", "BEGIN READ x; WRITE 1 / x END"},
		{"VAR x; BEGIN READ x; WRITE x * 3 / 2 END.", "BEGIN READ x; WRITE x * 3 / 2 END"},
		{"VAR x; BEGIN READ x; WRITE x / 2 * 4 END.", "BEGIN READ x; WRITE x * 2 END"},
		{"VAR x; BEGIN READ x; WRITE 2 * x * 3 END.", "BEGIN READ x; WRITE x * 6 END"},
		{"VAR x; BEGIN READ x; WRITE x / 0 END.", "BEGIN READ x; WRITE x / 0 END"},
		{"VAR x; BEGIN READ x; WRITE (x) END.", "BEGIN READ x; WRITE x END"},
		{"VAR x; BEGIN READ x; WRITE -(-x) END.", "BEGIN READ x; WRITE x END"},
		{"VAR x; BEGIN READ x; WRITE 2 - (-x) END.", "BEGIN READ x; WRITE x + 2 END"},
		{"VAR x; BEGIN READ x; WRITE -(x - 1) END.", "BEGIN READ x; WRITE -(x - 1) END"},

		// conditions
		{"IF ODD 3 THEN WRITE 1.", "WRITE 1"},
		{"IF ODD 4 THEN WRITE 1.", "BEGIN END"},
		{"IF ODD -3 THEN WRITE 1.", "WRITE 1"},
		{"IF 2 >= 3 THEN WRITE 1.", "BEGIN END"},
		{"IF 3 # 2 THEN WRITE 1.", "WRITE 1"},
		{"VAR x; BEGIN READ x; IF 0 = 1 THEN WRITE x END.", "READ x"},
		{"VAR x; BEGIN READ x; WHILE 1 > 2 DO WRITE x END.", "READ x"},
		{"VAR x; BEGIN READ x; DO WRITE x WHILE 1 > 2 END.", "BEGIN READ x; WRITE x END"},

		// loop inversion
		{
			"VAR x; BEGIN READ x; WHILE x > 0 DO x := x - 1; WRITE x END.",
			"BEGIN READ x; IF x > 0 THEN DO x := x - 1 WHILE x > 0; WRITE x END",
		},
		{
			"VAR x; BEGIN READ x; WHILE 0 = 0 DO x := x - 1 END.",
			"BEGIN READ x; DO x := x - 1 WHILE 0 = 0 END",
		},

		// propagation
		{"VAR x; WRITE x.", "WRITE 0"},
		{"VAR x; BEGIN x := 4; x := x + 1; WRITE x END.", "BEGIN x := 4; x := x + 1; WRITE x END"},
		{"VAR x; BEGIN READ x; x := 2; IF ODD x THEN WRITE 1 END.", "BEGIN READ x; x := 2 END"},
		{"VAR x; BEGIN READ x; x := 2; IF ODD x + 1 THEN WRITE x END.", "BEGIN READ x; x := 2; WRITE 2 END"},

		// leaf procedures
		{
			"VAR x; PROCEDURE inc; x := x + 1; BEGIN READ x; CALL inc; CALL inc; WRITE x END.",
			"BEGIN READ x; x := x + 1; x := x + 1; WRITE x END",
		},
		{"PROCEDURE nothing; BEGIN END; CALL nothing.", "BEGIN END"},

		// single use inlining
		{
			"VAR a, b; BEGIN READ a; b := a * 3; WRITE b + 1 END.",
			"BEGIN READ a; WRITE (a * 3) + 1 END",
		},
		{
			"VAR a, b; BEGIN READ a; b := a * 3; READ a; WRITE b END.",
			"BEGIN READ a; b := a * 3; READ a; WRITE b END",
		},
		{
			"VAR a, b; BEGIN READ a; b := a - 1; IF b > 0 THEN WRITE a END.",
			"BEGIN READ a; IF a - 1 > 0 THEN WRITE a END",
		},

		// facts do not survive calls
		{
			"VAR x; PROCEDURE p; VAR t; BEGIN t := 1; x := t END; BEGIN x := 5; CALL p; WRITE x END.",
			"WRITE 1",
		},
	}

	for _, c := range cases {
		t.Run(c.src, func(t *testing.T) {
			program := optimize(t, c.src)
			if got := pl0ast.FormatStatement(program, program.Block.Statement); got != c.expected {
				t.Fatalf("got %s", got)
			}
			checkCounts(t, program)
		})
	}
}

func TestDeadProcedures(t *testing.T) {
	program := optimize(t, `
		VAR x;
		PROCEDURE a; VAR t; BEGIN t := x; CALL b; x := t END;
		PROCEDURE b; VAR u; BEGIN READ u; x := u END;
		PROCEDURE c; VAR v; BEGIN READ v; IF v > 0 THEN CALL c; WRITE v END;
		BEGIN IF 1 = 2 THEN CALL a; READ x; WRITE x END.
	`)
	if len(program.Block.Procedures) != 0 {
		t.Fatalf("got %d procedures", len(program.Block.Procedures))
	}
	checkCounts(t, program)
}

func TestFoldedSelfCall(t *testing.T) {
	// the self-call sits in a branch folded away, p stays reachable from main
	program := optimize(t, `
		VAR e;
		PROCEDURE p;
			VAR l;
			BEGIN
				READ l;
				e := 3;
				IF e <= 0 THEN CALL p;
				WRITE e + l
			END;
		BEGIN CALL p END.
	`)
	proc := program.Procedure("p")
	if proc == nil {
		t.Fatalf("got %s", pl0ast.Format(program))
	}
	if proc.CallCount != 1 {
		t.Fatalf("got %d", proc.CallCount)
	}
	checkCounts(t, program)
}

func TestTailCall(t *testing.T) {
	program := optimize(t, `
		VAR n;
		PROCEDURE count;
			VAR t;
			BEGIN
				IF n < 3 THEN BEGIN
					READ t;
					WRITE n + t;
					n := n + 1;
					CALL count
				END
			END;
		BEGIN
			CALL count;
			CALL count
		END.
	`)
	if len(program.Block.Procedures) != 1 {
		t.Fatalf("got %d procedures", len(program.Block.Procedures))
	}
	proc := program.Block.Procedures[0]
	guard, ok := proc.Block.Statement.(*pl0ast.If)
	if !ok {
		t.Fatalf("got %T", proc.Block.Statement)
	}
	loop, ok := guard.Body.(*pl0ast.DoWhile)
	if !ok {
		t.Fatalf("got %T", guard.Body)
	}
	if loop.CallsProcedure() {
		t.Fatal("self call not removed")
	}
	if got := pl0ast.FormatStatement(program, proc.Block.Statement); got !=
		"IF n < 3 THEN DO BEGIN READ t; WRITE n + t; n := n + 1; t := 0 END WHILE n < 3" {
		t.Fatalf("got %s", got)
	}
	if proc.CallCount != 2 {
		t.Fatalf("got %d", proc.CallCount)
	}
	checkCounts(t, program)
}

func TestTailCallLeaf(t *testing.T) {
	program := optimize(t, `
		VAR n;
		PROCEDURE count;
			BEGIN IF n < 10 THEN BEGIN WRITE n; n := n + 1; CALL count END END;
		BEGIN READ n; CALL count END.
	`)
	expected := "VAR n;\n" +
		"BEGIN\n" +
		"  READ n;\n" +
		"  IF n < 10 THEN DO BEGIN\n" +
		"    WRITE n;\n" +
		"    n := n + 1\n" +
		"  END WHILE n < 10\n" +
		"END.\n"
	if got := pl0ast.Format(program); got != expected {
		t.Fatalf("got\n%s", got)
	}
	checkCounts(t, program)
}

var idempotenceSources = []string{
	`CONST a = 3; VAR b; BEGIN b := a + 2; WRITE b END.`,
	`VAR i, s; BEGIN s := 0; WHILE i := 1 TO 5 DO s := s + i; WRITE s END.`,
	`PROCEDURE p; BEGIN CALL p END; BEGIN CALL p END.`,
	`
	VAR n, f;
	PROCEDURE fact;
		VAR t;
		BEGIN
			IF n > 1 THEN BEGIN
				t := n;
				f := f * t;
				n := n - 1;
				CALL fact
			END
		END;
	BEGIN
		READ n;
		f := 1;
		CALL fact;
		WRITE f;
		WHILE n < 10 DO BEGIN
			n := n + 2;
			IF ODD n THEN WRITE "odd"
		END;
		DO n := n - 1 WHILE n > 0;
		WRITE RAND 1 (n + 6)
	END.
	`,
	`
	VAR x, y, z;
	PROCEDURE show; WRITE x;
	PROCEDURE twice; BEGIN CALL show; CALL show END;
	BEGIN
		READ y;
		z := y * 2 / 4;
		x := z + 1;
		CALL twice;
		IF x > y THEN x := 0
	END.
	`,
}

func TestIdempotence(t *testing.T) {
	for i, src := range idempotenceSources {
		t.Run(strconv.Itoa(i), func(t *testing.T) {
			program := optimize(t, src)
			checkCounts(t, program)
			once := pl0ast.Format(program)
			New(program, nil).Optimize()
			checkCounts(t, program)
			if twice := pl0ast.Format(program); twice != once {
				t.Fatalf("got\n%s\nthen\n%s", once, twice)
			}
		})
	}
}

// genExpr returns a random literal expression and its value under
// truncating left-to-right evaluation.
func genExpr(r *rand.Rand, depth int) (string, int32) {
	var sb strings.Builder
	var total int32
	n := 1 + r.IntN(3)
	for i := 0; i < n; i++ {
		negative := r.IntN(3) == 0
		switch {
		case i == 0 && negative:
			sb.WriteString("-")
		case i > 0 && negative:
			sb.WriteString(" - ")
		case i > 0:
			sb.WriteString(" + ")
		}
		text, value := genTerm(r, depth)
		sb.WriteString(text)
		if negative {
			total -= value
		} else {
			total += value
		}
	}
	return sb.String(), total
}

func genTerm(r *rand.Rand, depth int) (string, int32) {
	var sb strings.Builder
	text, acc := genFactor(r, depth)
	sb.WriteString(text)
	n := r.IntN(3)
	for i := 0; i < n; i++ {
		if r.IntN(2) == 0 {
			divisor := int32(1 + r.IntN(9))
			fmt.Fprintf(&sb, " / %d", divisor)
			acc /= divisor
		} else {
			text, value := genFactor(r, depth)
			sb.WriteString(" * ")
			sb.WriteString(text)
			acc *= value
		}
	}
	return sb.String(), acc
}

func genFactor(r *rand.Rand, depth int) (string, int32) {
	if depth > 0 && r.IntN(3) == 0 {
		text, value := genExpr(r, depth-1)
		return "(" + text + ")", value
	}
	value := int32(r.IntN(30))
	return strconv.Itoa(int(value)), value
}

func TestFoldingCorrectness(t *testing.T) {
	r := rand.New(rand.NewPCG(1, 2))
	for i := 0; i < 500; i++ {
		text, expected := genExpr(r, 3)
		program := optimize(t, "WRITE "+text+".")
		write, ok := program.Block.Statement.(*pl0ast.Write)
		if !ok {
			t.Fatalf("%s: got %T", text, program.Block.Statement)
		}
		got, ok := pl0ast.ConstantValue(write.Expr)
		if !ok {
			t.Fatalf("%s: not folded: %s", text, pl0ast.FormatExpression(program, write.Expr))
		}
		if got != expected {
			t.Fatalf("%s: got %d, expected %d", text, got, expected)
		}
	}
}

func TestUnknownProcedure(t *testing.T) {
	program := pl0ast.NewProgram()
	program.Block.Statement = &pl0ast.Call{
		Name: "missing",
	}
	defer func() {
		p := recover()
		err, ok := p.(error)
		if !ok {
			t.Fatalf("got %v", p)
		}
		var invariantErr *pl0ast.InternalInvariantError
		if !errors.As(err, &invariantErr) {
			t.Fatalf("got %v", err)
		}
	}()
	New(program, nil).Optimize()
}
