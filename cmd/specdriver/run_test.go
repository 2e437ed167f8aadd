package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeSpec(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "spec.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	buf := &bytes.Buffer{}
	cmd := newRootCmd()
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}

const passingSpecDoc = `version: "1.0"
id: calculator-smoke
lifecycle: active
steps:
  - id: add
    grammar: addition
    cells:
      x: "2"
      y: "3"
      sum: "5"
`

const failingSpecDoc = `version: "1.0"
id: calculator-smoke
lifecycle: active
steps:
  - id: add
    grammar: addition
    cells:
      x: "2"
      y: "3"
      sum: "6"
`

func TestRunCommandPassingSpec(t *testing.T) {
	out, err := execute(t, "run", "--spec", writeSpec(t, passingSpecDoc))
	require.NoError(t, err)
	require.Contains(t, out, "calculator-smoke: completed")
	require.Contains(t, out, "1 right, 0 wrong, 0 exceptions, 0 skipped")
}

func TestRunCommandFailingSpec(t *testing.T) {
	out, err := execute(t, "run", "--spec", writeSpec(t, failingSpecDoc))
	require.Error(t, err)
	require.Contains(t, err.Error(), "did not pass")
	require.Contains(t, out, "[failure] add.sum")
}

func TestRunCommandMaxRetriesFlagOverridesFile(t *testing.T) {
	const retrying = `version: "1.0"
id: calculator-smoke
lifecycle: active
max_retries: 2
steps:
  - id: add
    grammar: addition
    cells:
      x: "2"
      y: "3"
      sum: "6"
`
	path := writeSpec(t, retrying)

	// Without the flag the file's retry budget applies.
	out, err := execute(t, "run", "--spec", path)
	require.Error(t, err)
	require.Contains(t, out, "attempt 3")

	// An explicit zero forces a single attempt despite the file.
	out, err = execute(t, "run", "--spec", path, "--max-retries", "0")
	require.Error(t, err)
	require.Contains(t, out, "attempt 1")
}

func TestRunCommandMissingFile(t *testing.T) {
	_, err := execute(t, "run", "--spec", filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
	require.Contains(t, err.Error(), "does not exist")
}

func TestRunCommandRequiresSpecFlag(t *testing.T) {
	_, err := execute(t, "run")
	require.Error(t, err)
}

func TestValidateCommandReportsUnknownGrammar(t *testing.T) {
	content := `version: "1.0"
id: suite
steps:
  - id: mystery
    grammar: levitation
`
	out, err := execute(t, "validate", "--spec", writeSpec(t, content))
	require.Error(t, err)
	require.Contains(t, out, `mystery: unknown grammar "levitation"`)
}

func TestValidateCommandAcceptsResolvedSpec(t *testing.T) {
	out, err := execute(t, "validate", "--spec", writeSpec(t, passingSpecDoc))
	require.NoError(t, err)
	require.Contains(t, out, "calculator-smoke: ok")
}

func TestGrammarsCommandListsKeys(t *testing.T) {
	out, err := execute(t, "grammars")
	require.NoError(t, err)
	require.Contains(t, out, "addition")
	require.Contains(t, out, "verify-address")
	require.Contains(t, out, "stockroom")
}

func TestVersionCommand(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	require.Contains(t, out, "Specdriver")
}
