package main

import (
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/reusee/plzero/pipelines"
	"github.com/reusee/plzero/pl0gen"
)

// writeOutput renders comp in the format named by the extension of path.
// Nothing is left at path unless every step succeeds.
func writeOutput(comp *pipelines.Compilation, path string) (err error) {
	f, err := os.CreateTemp(filepath.Dir(path), ".plc-*")
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		// also runs while a generator panic unwinds
		if !committed {
			f.Close()
			os.Remove(f.Name())
		}
	}()

	if err := render(comp, strings.ToLower(filepath.Ext(path)), f); err != nil {
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	if err := os.Rename(f.Name(), path); err != nil {
		return err
	}
	committed = true
	return nil
}

func render(comp *pipelines.Compilation, ext string, w io.Writer) error {
	switch ext {

	case ".il":
		sink := pl0gen.NewTextSink(w)
		if err := comp.Emit(sink); err != nil {
			return err
		}
		return sink.Close()

	case ".pl0":
		_, err := io.WriteString(w, comp.Source())
		return err

	}

	program, err := comp.Assemble()
	if err != nil {
		return err
	}
	return program.Encode(w)
}
