package config_test

import (
	"errors"
	"flag"
	"os"
	"os/exec"
	"strings"
	"testing"

	"github.com/louisbranch/crowdfund/internal/platform/config"
)

// os.Exit cannot be intercepted in-process, so these run the test binary
// again with a selector variable.
func runExitSubprocess(t *testing.T, mode string) (int, string) {
	t.Helper()
	cmd := exec.Command(os.Args[0], "-test.run=^TestExitSubprocess$")
	cmd.Env = append(os.Environ(), "CROWDFUND_EXIT_MODE="+mode)
	out, err := cmd.CombinedOutput()
	if err == nil {
		return 0, string(out)
	}
	var exitErr *exec.ExitError
	if !errors.As(err, &exitErr) {
		t.Fatalf("expected *exec.ExitError, got %T: %v", err, err)
	}
	return exitErr.ExitCode(), string(out)
}

func TestExitSubprocess(t *testing.T) {
	switch os.Getenv("CROWDFUND_EXIT_MODE") {
	case "exitf":
		config.Exitf("fatal: %s", "something broke")
	case "error":
		config.ExitOnError("parse flags", errors.New("bad flag"))
	case "help":
		config.ExitOnError("parse flags", flag.ErrHelp)
	case "nil":
		config.ExitOnError("parse flags", nil)
	}
}

func TestExitf(t *testing.T) {
	code, out := runExitSubprocess(t, "exitf")
	if code != 1 {
		t.Fatalf("exit code = %d, want 1", code)
	}
	if !strings.Contains(out, ": fatal: something broke") {
		t.Fatalf("output = %q, want message", out)
	}
}

func TestExitOnError(t *testing.T) {
	tests := []struct {
		mode string
		code int
		want string
	}{
		{mode: "error", code: 1, want: "parse flags: bad flag"},
		{mode: "help", code: 0},
		{mode: "nil", code: 0},
	}
	for _, tt := range tests {
		t.Run(tt.mode, func(t *testing.T) {
			code, out := runExitSubprocess(t, tt.mode)
			if code != tt.code {
				t.Fatalf("exit code = %d, want %d", code, tt.code)
			}
			if tt.want != "" && !strings.Contains(out, tt.want) {
				t.Fatalf("output = %q, want %q", out, tt.want)
			}
		})
	}
}
