package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeScript(t *testing.T, contents string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "script.tf")
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("writing script: %v", err)
	}
	return path
}

func TestRun_TranspilesToStdout(t *testing.T) {
	path := writeScript(t, "#!/usr/bin/env tiniflow\n* a = echo hi\n")

	var stdout, stderr bytes.Buffer
	code := run([]string{path}, &stdout, &stderr)

	if code != 0 {
		t.Fatalf("exit code = %d, want 0, stderr: %s", code, stderr.String())
	}
	if !strings.Contains(stdout.String(), `tf.Node("echo hi")`) {
		t.Errorf("expected transpiled output on stdout, got:\n%s", stdout.String())
	}
}

func TestRun_MissingShebangExitsNonZero(t *testing.T) {
	path := writeScript(t, "* a = echo hi\n")

	var stdout, stderr bytes.Buffer
	code := run([]string{path}, &stdout, &stderr)

	if code == 0 {
		t.Fatal("expected non-zero exit for a script missing its shebang")
	}
	if stderr.Len() == 0 {
		t.Error("expected an error message on stderr")
	}
}

func TestRun_MissingFileExitsNonZero(t *testing.T) {
	var stdout, stderr bytes.Buffer
	code := run([]string{filepath.Join(t.TempDir(), "nope.tf")}, &stdout, &stderr)

	if code == 0 {
		t.Fatal("expected non-zero exit for a missing file")
	}
}

func TestRun_NoArgsExitsNonZero(t *testing.T) {
	var stdout, stderr bytes.Buffer
	code := run(nil, &stdout, &stderr)

	if code == 0 {
		t.Fatal("expected non-zero exit with no script argument")
	}
}

func TestRun_DisablePrologueAndEpilogue(t *testing.T) {
	path := writeScript(t, "#!/usr/bin/env tiniflow\n* a = echo hi\n")

	var stdout, stderr bytes.Buffer
	code := run([]string{"-disable-prologue", "-disable-epilogue", path}, &stdout, &stderr)

	if code != 0 {
		t.Fatalf("exit code = %d, want 0, stderr: %s", code, stderr.String())
	}
	if strings.Contains(stdout.String(), "package main") {
		t.Errorf("expected no package wrapper, got:\n%s", stdout.String())
	}
	if strings.Contains(stdout.String(), "RunDefault") {
		t.Errorf("expected no epilogue call, got:\n%s", stdout.String())
	}
}

func TestRun_MetricsAddrInjectsServeMetricsCall(t *testing.T) {
	path := writeScript(t, "#!/usr/bin/env tiniflow\n* a = echo hi\n")

	var stdout, stderr bytes.Buffer
	code := run([]string{"-metrics-addr", ":9090", path}, &stdout, &stderr)

	if code != 0 {
		t.Fatalf("exit code = %d, want 0, stderr: %s", code, stderr.String())
	}
	if !strings.Contains(stdout.String(), `tf.ServeMetrics(":9090")`) {
		t.Errorf("expected injected ServeMetrics call, got:\n%s", stdout.String())
	}
}
