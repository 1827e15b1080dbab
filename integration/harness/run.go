package harness

import (
	"bytes"
	"os/exec"
	"testing"
)

// Run executes the CLI in the provided working directory and returns stdout,
// stderr and the exit code.
func Run(t *testing.T, binPath, workDir string, args []string) (string, string, int) {
	t.Helper()

	cmd := exec.Command(binPath, args...)
	cmd.Dir = workDir

	var stdout bytes.Buffer
	var stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	exitCode := 0
	if err != nil {
		if ee, ok := err.(*exec.ExitError); ok {
			exitCode = ee.ExitCode()
		} else {
			t.Fatalf("run %s: %v", binPath, err)
		}
	}

	return stdout.String(), stderr.String(), exitCode
}
