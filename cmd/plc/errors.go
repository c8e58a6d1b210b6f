package main

import (
	"errors"
	"fmt"
	"os"
)

type exitError struct {
	err error
}

// ce aborts main with err.
func ce(err error) {
	if err != nil {
		panic(exitError{err: err})
	}
}

func handleExit() {
	p := recover()
	if p == nil {
		return
	}
	e, ok := p.(exitError)
	if !ok {
		panic(p)
	}
	fmt.Fprintf(os.Stderr, "plc: %v\n", e.err)
	var runErr *runtimeFailure
	if errors.As(e.err, &runErr) {
		os.Exit(3)
	}
	os.Exit(1)
}

type runtimeFailure struct {
	err error
}

func (r *runtimeFailure) Error() string {
	return r.err.Error()
}

func (r *runtimeFailure) Unwrap() error {
	return r.err
}
