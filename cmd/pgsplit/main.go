package main

import (
	"fmt"
	"os"
	"runtime/debug"

	"github.com/pgschema/pgsplit/internal/cli"
	"github.com/pgschema/pgsplit/pkg/pgsplit"
)

func main() {
	// Recover from panics to ensure graceful exits with stack traces
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "panic: %v\n%s\n", r, debug.Stack())
			os.Exit(pgsplit.ExitPanic)
		}
	}()

	if err := cli.Execute(); err != nil {
		os.Exit(pgsplit.ExitCodeForError(err))
	}
}
