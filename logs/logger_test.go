package logs

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/reusee/dscope"
)

func TestHandler(t *testing.T) {
	dscope.New(new(Module)).Call(func(
		logger Logger,
	) {
		logger.Info("test", "hello", "world!")
	})
}

func TestPhaseAndSpan(t *testing.T) {
	defer level.Set(level.Level())
	level.Set(slog.LevelDebug)

	buf := new(bytes.Buffer)
	dscope.New(new(Module)).Fork(
		func() Writer {
			return buf
		},
	).Call(func(
		logger Logger,
		newSpan NewSpan,
	) {
		ctx, span := newSpan(context.Background(), "a.pl0")
		_, child := newSpan(ctx, "b.pl0")
		logger.WarnContext(WithPhase(ctx, PhaseParse), "foo")

		lines := strings.Split(buf.String(), "\n")
		if !strings.Contains(lines[0], "logs.span="+string(span)) {
			t.Fatalf("got %v", lines[0])
		}
		if !strings.Contains(lines[1], "logs.span="+string(child)) {
			t.Fatalf("got %v", lines[1])
		}
		if !strings.Contains(lines[1], "parent="+string(span)) {
			t.Fatalf("got %v", lines[1])
		}
		if !strings.Contains(lines[2], "plc.phase=parse") {
			t.Fatalf("got %v", lines[2])
		}
	})
}

func TestWrapPhase(t *testing.T) {
	base := errors.New("bad")
	ctx := context.Background()
	if err := WrapPhase(ctx, base); err != base {
		t.Fatalf("got %v", err)
	}
	err := WrapPhase(WithPhase(ctx, PhaseOptimize), base)
	if err.Error() != "optimize: bad" {
		t.Fatalf("got %v", err)
	}
	if !errors.Is(err, base) {
		t.Fatal()
	}
	if WrapPhase(ctx, nil) != nil {
		t.Fatal()
	}
}

func TestLevelFromEnv(t *testing.T) {
	cases := []struct {
		value    string
		expected slog.Level
	}{
		{"debug", slog.LevelDebug},
		{" INFO ", slog.LevelInfo},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"", slog.LevelWarn},
		{"foo", slog.LevelWarn},
	}
	for _, c := range cases {
		if got := LevelFromEnv(c.value, slog.LevelWarn); got != c.expected {
			t.Fatalf("%q: got %v", c.value, got)
		}
	}
}
