package cmds

import (
	"bytes"
	"strings"
	"testing"
)

func TestUsage(t *testing.T) {
	buf := new(bytes.Buffer)
	saved := UsageWriter
	UsageWriter = buf
	defer func() {
		UsageWriter = saved
	}()

	executor := NewExecutor()
	executor.Define("foo", Sub(map[string]*Command{
		"bar": Func(func() {
		}).Desc("BAR"),
		"baz": Sub(map[string]*Command{
			"qux": Func(func() {}).Desc("QUX"),
		}).Desc("BAZ"),
	}).Desc("FOO"))
	executor.PrintUsage()

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	expected := []string{
		"-h (help, -help, --help)\tprint this usage",
		"foo\tFOO",
		"  bar\tBAR",
		"  baz\tBAZ",
		"    qux\tQUX",
	}
	if len(lines) != len(expected) {
		t.Fatalf("got %q", lines)
	}
	for i, line := range lines {
		if line != expected[i] {
			t.Fatalf("got %q", line)
		}
	}
}
