package cli

import (
	"fmt"
	"io"
	"strings"
	"testing"
)

func TestUnknownFlag_ShowsHelpAndUsageError(t *testing.T) {
	t.Parallel()
	for _, args := range [][]string{
		{"generate", "--unknown-flag"},
		{"generate", "--lang", "go"},
		{"init", "--unknown-flag"},
	} {
		root := NewRootCmd()
		root.SetOut(io.Discard)
		root.SetErr(io.Discard)
		root.SetArgs(args)

		err := root.Execute()
		if err == nil {
			t.Fatalf("%v: expected error for unknown flag", args)
		}
		if _, ok := err.(usageError); !ok {
			t.Fatalf("%v: expected usage error, got %T: %v", args, err, err)
		}
		if !strings.Contains(err.Error(), "unknown flag") || !strings.Contains(err.Error(), "Usage:") {
			t.Fatalf("%v: unexpected error text: %v", args, err)
		}
	}
}

func TestExitCode(t *testing.T) {
	t.Parallel()
	if got := ExitCode(nil); got != ExitOK {
		t.Errorf("nil: got %d", got)
	}
	if got := ExitCode(newUsageError("bad flag")); got != ExitUsage {
		t.Errorf("usage: got %d", got)
	}
	if got := ExitCode(fmt.Errorf("generate: %w", newUsageError("bad flag"))); got != ExitUsage {
		t.Errorf("wrapped usage: got %d", got)
	}
	if got := ExitCode(io.ErrUnexpectedEOF); got != ExitError {
		t.Errorf("other: got %d", got)
	}
}
