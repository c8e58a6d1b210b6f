package plcconfigs

import (
	"strings"
	"testing"

	"github.com/reusee/dscope"
	"github.com/reusee/plzero/cmds"
	"github.com/reusee/plzero/configs"
)

func TestDefaults(t *testing.T) {
	dscope.New(new(Module)).Fork(
		func() configs.Loader {
			return NewLoader(nil)
		},
	).Call(func(
		optimize Optimize,
		className ClassName,
		maxStack MaxStack,
		maxSteps MaxSteps,
		maxCallDepth MaxCallDepth,
	) {
		if !optimize {
			t.Fatal()
		}
		if className != "plc" {
			t.Fatalf("got %v", className)
		}
		if maxStack != 32 {
			t.Fatalf("got %v", maxStack)
		}
		if maxSteps != 0 {
			t.Fatalf("got %v", maxSteps)
		}
		if maxCallDepth != 0 {
			t.Fatalf("got %v", maxCallDepth)
		}
	})
}

func TestConfigFile(t *testing.T) {
	dscope.New(new(Module)).Fork(
		func() configs.Loader {
			return NewLoader([]string{"testdata/plc.cue"})
		},
	).Call(func(
		optimize Optimize,
		className ClassName,
		maxStack MaxStack,
		maxCallDepth MaxCallDepth,
	) {
		if optimize {
			t.Fatal()
		}
		if className != "demo" {
			t.Fatalf("got %v", className)
		}
		if maxStack != 16 {
			t.Fatalf("got %v", maxStack)
		}
		if maxCallDepth != 100 {
			t.Fatalf("got %v", maxCallDepth)
		}
	})
}

func TestFlagsOverrideConfig(t *testing.T) {
	defer func() {
		*noOptFlag = false
		*classNameFlag = ""
	}()
	*noOptFlag = false
	*classNameFlag = "flagged"
	if err := cmds.GlobalExecutor.Execute([]string{"-no-opt"}); err != nil {
		t.Fatal(err)
	}
	loader := NewLoader([]string{"testdata/plc.cue"})
	if got := new(Module).ClassName(loader); got != "flagged" {
		t.Fatalf("got %v", got)
	}
	if got := new(Module).Optimize(NewLoader(nil)); got {
		t.Fatal()
	}
}

func TestBadClassName(t *testing.T) {
	loader := NewLoader([]string{"testdata/bad.cue"})
	err := loader.Err()
	if err == nil {
		t.Fatal()
	}
	if !strings.Contains(err.Error(), "bad.cue") {
		t.Fatalf("got %v", err)
	}
}
