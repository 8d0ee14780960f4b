package main

import (
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
)

func TestBinaryRunsOutsideRepo(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("standalone binary copy/exec test is unix-focused")
	}
	goModPathBytes, err := exec.Command("go", "env", "GOMOD").Output()
	if err != nil {
		t.Fatalf("go env GOMOD: %v", err)
	}
	goModPath := strings.TrimSpace(string(goModPathBytes))
	if goModPath == "" {
		t.Fatalf("go env GOMOD returned empty")
	}
	repoRoot := filepath.Dir(goModPath)

	buildDir := t.TempDir()
	binaryPath := filepath.Join(buildDir, "catppuccin-api")

	build := exec.Command("go", "build", "-o", binaryPath, "./cmd/catppuccin-api")
	build.Dir = repoRoot
	build.Env = os.Environ()
	if out, err := build.CombinedOutput(); err != nil {
		t.Fatalf("go build: %v\n%s", err, string(out))
	}

	outside := t.TempDir()
	copiedBinary := filepath.Join(outside, "catppuccin-api")

	// Use a direct file copy to avoid relying on platform-specific tools.
	data, err := os.ReadFile(binaryPath)
	if err != nil {
		t.Fatalf("read built binary: %v", err)
	}
	if err := os.WriteFile(copiedBinary, data, 0o755); err != nil {
		t.Fatalf("write copied binary: %v", err)
	}

	run := func(args ...string) string {
		t.Helper()
		c := exec.Command(copiedBinary, args...)
		c.Dir = outside
		c.Env = append(os.Environ(), "HOME="+outside, "XDG_CONFIG_HOME="+filepath.Join(outside, ".config"))
		out, err := c.CombinedOutput()
		if err != nil {
			t.Fatalf("%v failed: %v\n%s", args, err, string(out))
		}
		return string(out)
	}

	if out := run("version", "--extended"); !strings.Contains(out, "Dataset fallbacks:") {
		t.Fatalf("version --extended missing dataset pins:\n%s", out)
	}

	if out := run("--help"); !strings.Contains(out, "serve") {
		t.Fatalf("--help does not list serve:\n%s", out)
	}

	if out := run("datasets", "--output-format", "json"); !strings.Contains(out, `"repository": "catppuccin/userstyles"`) {
		t.Fatalf("datasets json missing userstyles location:\n%s", out)
	}
}
