package configs

import (
	"strings"
	"testing"
)

func TestFirst(t *testing.T) {
	loader := NewLoader([]string{"testdata/test.cue"}, testSchema)

	str := First[string](loader, "str")
	if str != "bar" {
		t.Fatalf("got %v", str)
	}

}

func TestFirstMissing(t *testing.T) {
	loader := NewLoader([]string{"testdata/test.cue"}, testSchema)
	if got := First[string](loader, "class_name"); got != "" {
		t.Fatalf("got %v", got)
	}
	if got := First[int](Loader{}, "max_stack"); got != 0 {
		t.Fatalf("got %v", got)
	}
}

func TestFirstBadType(t *testing.T) {
	loader := NewLoader([]string{"testdata/test.cue"}, testSchema)
	defer func() {
		p := recover()
		if p == nil {
			t.Fatal("expected panic")
		}
		if err, ok := p.(error); !ok || !strings.Contains(err.Error(), "config str") {
			t.Fatalf("got %v", p)
		}
	}()
	First[int](loader, "str")
}
