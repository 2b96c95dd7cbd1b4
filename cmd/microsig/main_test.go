package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const counterScenario = `
signals:
  count: 0
computeds:
  - name: double
    sum: [count, count]
effects:
  - name: print
    watch: [count, double]
steps:
  - {count: 1}
  - {count: 1}
  - {count: 5}
`

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()

	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetArgs(args)
	cmd.SetOut(&out)
	cmd.SetErr(&out)

	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func writeScenario(t *testing.T, doc string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "scenario.yaml")
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))
	return path
}

func TestRunCommand(t *testing.T) {
	t.Run("prints the transcript", func(t *testing.T) {
		out, err := execute(t, "run", writeScenario(t, counterScenario))
		require.NoError(t, err)

		assert.Equal(t, strings.Join([]string{
			"0 print count=0 double=0",
			"1 print count=1 double=2",
			"3 print count=5 double=10",
			"runs print=3",
			"",
		}, "\n"), out)
	})

	t.Run("prints metrics", func(t *testing.T) {
		out, err := execute(t, "run", "--metrics", writeScenario(t, counterScenario))
		require.NoError(t, err)

		assert.Contains(t, out, "# TYPE microsig_flushes_total counter")
		assert.Contains(t, out, "microsig_flushes_total 2")
		assert.Contains(t, out, "microsig_effect_runs_total 2")
	})

	t.Run("traces with the global provider", func(t *testing.T) {
		_, err := execute(t, "run", "--trace", writeScenario(t, counterScenario))
		assert.NoError(t, err)
	})

	t.Run("invalid scenario", func(t *testing.T) {
		_, err := execute(t, "run", writeScenario(t, "signals: {a: 1}\n"))
		assert.ErrorContains(t, err, "no effects")
	})

	t.Run("missing argument", func(t *testing.T) {
		_, err := execute(t, "run")
		assert.Error(t, err)
	})
}

func TestVersionCommand(t *testing.T) {
	out, err := execute(t, "version", "--short")
	require.NoError(t, err)
	assert.Equal(t, "dev\n", out)

	out, err = execute(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "Version:    dev")
}
