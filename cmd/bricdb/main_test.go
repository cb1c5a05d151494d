package main

import (
	"bytes"
	"os"
	"strings"
	"testing"
)

func TestRunVersion(tt *testing.T) {
	tt.Parallel()

	var stdout, stderr bytes.Buffer

	code := run([]string{"-V"}, devNull(tt), &stdout, &stderr)
	if code != 0 {
		tt.Fatalf("exit code: want 0, got %d (stderr: %s)", code, stderr.String())
	}

	if !strings.Contains(stdout.String(), "bricdb") {
		tt.Errorf("want version banner, got %q", stdout.String())
	}
}

func TestRunMissingPath(tt *testing.T) {
	tt.Parallel()

	var stdout, stderr bytes.Buffer

	code := run(nil, devNull(tt), &stdout, &stderr)
	if code == 0 {
		tt.Errorf("want non-zero exit code for missing -p")
	}
}

func TestRunAssembleFailure(tt *testing.T) {
	tt.Parallel()

	f, err := os.CreateTemp(tt.TempDir(), "*.basm")
	if err != nil {
		tt.Fatalf("tempfile: %s", err)
	}

	if _, err := f.WriteString("[text]\nA = not, a, valid, line\n"); err != nil {
		tt.Fatalf("write: %s", err)
	}
	f.Close()

	var stdout, stderr bytes.Buffer

	code := run([]string{"-p", f.Name()}, devNull(tt), &stdout, &stderr)
	if code == 0 {
		tt.Errorf("want non-zero exit code for a program that fails to assemble")
	}
}

func TestRunCleanQuit(tt *testing.T) {
	tt.Parallel()

	f, err := os.CreateTemp(tt.TempDir(), "*.basm")
	if err != nil {
		tt.Fatalf("tempfile: %s", err)
	}

	if _, err := f.WriteString("[text]\nA = 1\n"); err != nil {
		tt.Fatalf("write: %s", err)
	}
	f.Close()

	stdin, err := os.CreateTemp(tt.TempDir(), "stdin")
	if err != nil {
		tt.Fatalf("tempfile: %s", err)
	}

	if _, err := stdin.WriteString("q\n"); err != nil {
		tt.Fatalf("write: %s", err)
	}

	if _, err := stdin.Seek(0, 0); err != nil {
		tt.Fatalf("seek: %s", err)
	}

	var stdout, stderr bytes.Buffer

	code := run([]string{"-p", f.Name()}, stdin, &stdout, &stderr)
	if code != 0 {
		tt.Fatalf("exit code: want 0, got %d (stderr: %s)", code, stderr.String())
	}
}

func devNull(tt *testing.T) *os.File {
	tt.Helper()

	f, err := os.Open(os.DevNull)
	if err != nil {
		tt.Fatalf("open devnull: %s", err)
	}

	tt.Cleanup(func() { f.Close() })

	return f
}
