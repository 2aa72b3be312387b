package config

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// Exitf writes "<program>: <message>" to stderr and exits with code 1.
func Exitf(format string, args ...any) {
	os.Exit(report(os.Stderr, 1, format, args...))
}

// ExitOnError exits when err is set. flag.ErrHelp exits 0 because usage was
// already printed by the flag set.
func ExitOnError(stage string, err error) {
	if err == nil {
		return
	}
	if errors.Is(err, flag.ErrHelp) {
		os.Exit(0)
	}
	Exitf("%s: %v", stage, err)
}

func report(w io.Writer, code int, format string, args ...any) int {
	fmt.Fprintf(w, "%s: %s\n", filepath.Base(os.Args[0]), fmt.Sprintf(format, args...))
	return code
}
