package pl0parser

import (
	"errors"
	"testing"

	"github.com/reusee/plzero/pl0ast"
	"github.com/reusee/plzero/pl0lexer"
)

func parse(t *testing.T, src string) (*pl0ast.Program, error) {
	t.Helper()
	tokens, err := pl0lexer.Tokenize(pl0lexer.NewSource("test", src))
	if err != nil {
		t.Fatal(err)
	}
	return Parse(tokens)
}

func mustParse(t *testing.T, src string) *pl0ast.Program {
	t.Helper()
	program, err := parse(t, src)
	if err != nil {
		t.Fatal(err)
	}
	return program
}

func TestParseFor(t *testing.T) {
	program := mustParse(t, `VAR i, s; BEGIN s := 0; WHILE i := 1 TO 5 DO s := s + i; WRITE s END.`)
	expected := "VAR i, s;\n" +
		"BEGIN\n" +
		"  s := 0;\n" +
		"  BEGIN\n" +
		"    i := 1;\n" +
		"    WHILE i <= 5 DO BEGIN\n" +
		"      s := s + i;\n" +
		"      i := 1 + i\n" +
		"    END\n" +
		"  END;\n" +
		"  WRITE s\n" +
		"END.\n"
	if got := pl0ast.Format(program); got != expected {
		t.Fatalf("got\n%s", got)
	}
}

func TestParseForStep(t *testing.T) {
	program := mustParse(t, `VAR i; WHILE i := 10 TO 20 STEP -2 DO BEGIN WRITE i END.`)
	compound := program.Block.Statement.(*pl0ast.Compound)
	loop := compound.Statements[1].(*pl0ast.While)
	body := loop.Body.(*pl0ast.Compound)
	if len(body.Statements) != 2 {
		t.Fatalf("got %d", len(body.Statements))
	}
	increment := body.Statements[1].(*pl0ast.Assignment)
	if got := pl0ast.FormatExpression(program, increment.Expr); got != "-2 + i" {
		t.Fatalf("got %s", got)
	}
}

func TestParseStatements(t *testing.T) {
	cases := []struct {
		src      string
		expected string
	}{
		{"WRITE 1.", "WRITE 1"},
		{`! "hello".`, `WRITE "hello"`},
		{`VAR x; ? "x?" x.`, `READ "x?" x`},
		{"VAR x; READ x.", "READ x"},
		{"VAR x; IF ODD x THEN x := x - 1.", "IF ODD x THEN x := x - 1"},
		{"VAR x; WHILE x # 3 DO x := x + 1.", "WHILE x # 3 DO x := x + 1"},
		{"VAR x; DO x := x + 1.", "DO x := x + 1 WHILE 0 = 0"},
		{"VAR x; DO x := x + 1 WHILE x < 3.", "DO x := x + 1 WHILE x < 3"},
		{"VAR x; x := -x * 2 / (3 + x).", "x := -x * 2 / (3 + x)"},
		{"VAR x; x := RAND 1 10.", "x := RAND 1 10"},
		{"CONST c = -5; WRITE c.", "WRITE c"},
		{"{ ! 1; ! 2 }.", "BEGIN WRITE 1; WRITE 2 END"},
		{"BEGIN END.", "BEGIN END"},
		{"BEGIN WRITE 1; END.", "BEGIN WRITE 1 END"},
		{"PROCEDURE p; WRITE 1; CALL p.", "CALL p"},
	}
	for _, c := range cases {
		t.Run(c.src, func(t *testing.T) {
			program := mustParse(t, c.src)
			if got := pl0ast.FormatStatement(program, program.Block.Statement); got != c.expected {
				t.Fatalf("got %s", got)
			}
		})
	}
}

func TestParseRandFlag(t *testing.T) {
	program := mustParse(t, "WRITE 1.")
	if program.UsesRand {
		t.Fatal("should not use rand")
	}
	program = mustParse(t, "WRITE (RAND 1 6) * 2.")
	if !program.UsesRand {
		t.Fatal("should use rand")
	}
}

func TestParseScopes(t *testing.T) {
	program := mustParse(t, `
		CONST k = 2;
		VAR g;
		PROCEDURE p;
			VAR x;
			x := g + k;
		PROCEDURE q;
			VAR x;
			x := g;
		CALL p.
	`)
	if len(program.Block.Procedures) != 2 {
		t.Fatalf("got %d", len(program.Block.Procedures))
	}
	p := program.Block.Procedures[0]
	q := program.Block.Procedures[1]
	if p.Block.Variables[0] == q.Block.Variables[0] {
		t.Fatal("sibling locals should be distinct identities")
	}
	if program.Identity(p.Block.Variables[0]).Name != "x" {
		t.Fatal("bad name")
	}
	if program.Identity(program.Block.Constants[0]).Value != 2 {
		t.Fatal("bad constant")
	}
}

func TestParseForwardCall(t *testing.T) {
	mustParse(t, `
		PROCEDURE a; CALL b;
		PROCEDURE b; WRITE 1;
		CALL a.
	`)
}

func TestParseErrors(t *testing.T) {
	syntaxErrors := []struct {
		src  string
		line int
	}{
		{"WRITE 1", 1},
		{"VAR x x := 1.", 1},
		{"VAR x;\nx = 1.", 2},
		{"VAR x;\nIF x THEN x := 1.", 2},
		{"VAR x;\nWHILE x < 1 x := 1.", 2},
		{"BEGIN WRITE 1 WRITE 2 END.", 1},
		{"CONST a = 1;\na := 2.", 2},
		{"CONST a = 1;\nREAD a.", 2},
		{"VAR a, a; WRITE 1.", 1},
		{"CONST a = 1; VAR a; WRITE 1.", 1},
		{"PROCEDURE p; WRITE 1; PROCEDURE p; WRITE 2; CALL p.", 1},
		{"PROCEDURE p;\nPROCEDURE q; WRITE 1;\nCALL q;\nCALL p.", 2},
		{"WRITE 2147483648.", 1},
		{"CONST c = 2147483648; WRITE c.", 1},
		{"WRITE (1 + 2.", 1},
		{"BEGIN WRITE 1.", 1},
	}
	for _, c := range syntaxErrors {
		t.Run(c.src, func(t *testing.T) {
			_, err := parse(t, c.src)
			var syntaxErr *SyntaxError
			if !errors.As(err, &syntaxErr) {
				t.Fatalf("got %v", err)
			}
			if syntaxErr.Line != c.line {
				t.Fatalf("got line %d", syntaxErr.Line)
			}
		})
	}

	undeclared := []struct {
		src  string
		name string
	}{
		{"WRITE x.", "x"},
		{"PROCEDURE p; VAR x; WRITE x; WRITE x.", "x"},
		{"PROCEDURE p; VAR x; WRITE 1; PROCEDURE q; WRITE x; CALL q.", "x"},
		{"CALL nowhere.", "nowhere"},
		{"VAR x; READ y.", "y"},
	}
	for _, c := range undeclared {
		t.Run(c.src, func(t *testing.T) {
			_, err := parse(t, c.src)
			var undeclaredErr *UndeclaredIdentifierError
			if !errors.As(err, &undeclaredErr) {
				t.Fatalf("got %v", err)
			}
			if undeclaredErr.Name != c.name {
				t.Fatalf("got %s", undeclaredErr.Name)
			}
		})
	}
}

func TestParseMinInt(t *testing.T) {
	program := mustParse(t, "CONST c = -2147483648; WRITE c.")
	if v := program.Identity(program.Block.Constants[0]).Value; v != -2147483648 {
		t.Fatalf("got %d", v)
	}
}

func TestParseSource(t *testing.T) {
	program, err := ParseSource(pl0lexer.NewTokenizer(pl0lexer.NewSource("test", `
		VAR x; // counter
		BEGIN /* body */ READ x; WRITE x END.
		this tail is never scanned @
	`)))
	if err != nil {
		t.Fatal(err)
	}
	if len(program.Block.Variables) != 1 {
		t.Fatalf("got %v", program.Block.Variables)
	}

	// a scan error stops parsing and is reported as is
	_, err = ParseSource(pl0lexer.NewTokenizer(pl0lexer.NewSource("test",
		"VAR x;\nBEGIN x := 1 @ 2 END.",
	)))
	var lexErr *pl0lexer.LexError
	if !errors.As(err, &lexErr) {
		t.Fatalf("got %v", err)
	}
	if lexErr.Pos.Line != 2 {
		t.Fatalf("got line %d", lexErr.Pos.Line)
	}
}
