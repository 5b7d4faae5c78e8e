package integration

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	qkrt "github.com/Qiskit/qiskit-ibm-runtime-go"
	"github.com/Qiskit/qiskit-ibm-runtime-go/qpy"
	"github.com/Qiskit/qiskit-ibm-runtime-go/test"
)

func newQiskit(t *testing.T) *Qiskit {
	q, err := NewQiskit(t.TempDir())
	if err == ErrUnavailable {
		t.Skip("python3 with qiskit not installed")
	}
	require.NoError(t, err)
	t.Logf("qiskit %s", q.Version)
	return q
}

// normalizeCounts rewrites the pre 3.12 OrderedDict repr, a list of
// pairs, into the dict form.
func normalizeCounts(line string) string {
	inner, ok := strings.CutPrefix(line, "OrderedDict([")
	if !ok {
		return line
	}
	inner = strings.TrimSuffix(inner, "])")
	inner = strings.TrimPrefix(inner, "(")
	inner = strings.TrimSuffix(inner, ")")
	pairs := strings.Split(inner, "), (")
	for i, p := range pairs {
		pairs[i] = strings.Replace(p, ", ", ": ", 1)
	}
	return "OrderedDict({" + strings.Join(pairs, ", ") + "})"
}

func normalizeReport(report string) string {
	lines := strings.Split(strings.TrimRight(report, "\n"), "\n")
	lines[len(lines)-1] = normalizeCounts(lines[len(lines)-1])
	return strings.Join(lines, "\n") + "\n"
}

func TestQiskitReadsFixture(t *testing.T) {
	q := newQiskit(t)
	path := filepath.Join(t.TempDir(), "test.qpy")
	require.NoError(t, qkrt.GenerateQPYFile(path, qpy.DumpOptions{}, test.FixtureCircuit(t)))

	report, err := q.Report(path, 3)
	require.NoError(t, err)
	require.Equal(t, test.FixtureReport, normalizeReport(report))
}

func TestQiskitReadsRandomCircuits(t *testing.T) {
	q := newQiskit(t)
	dir := t.TempDir()
	for seed := int64(1); seed <= 20; seed++ {
		c := test.RandomCircuit(&test.RandomCircuitConfig{
			Seed:          seed,
			NumQubits:     test.RandRange{L: 2, R: 6},
			NumClbits:     test.RandRange{L: 1, R: 6},
			NumInsn:       test.RandRange{L: 5, R: 30},
			SymbolPercent: 20,
			// Qiskit requires integer delay durations in dt
			ExcludeGates: []string{"delay"},
		})
		path := filepath.Join(dir, c.Name+".qpy")
		require.NoError(t, qpy.DumpFile(path, qpy.DumpOptions{}, c))

		n := min(3, len(c.Instructions))
		var want bytes.Buffer
		require.NoError(t, qkrt.WriteReport(&want, c, n))
		got, err := q.Report(path, n)
		require.NoError(t, err)
		require.Equal(t, want.String(), normalizeReport(got), "seed %d", seed)
	}
}

func TestGoReadsQiskitDump(t *testing.T) {
	q := newQiskit(t)
	dir := t.TempDir()
	src := filepath.Join(dir, "test.qpy")
	dst := filepath.Join(dir, "redump.qpy")
	require.NoError(t, qkrt.GenerateQPYFile(src, qpy.DumpOptions{}, test.FixtureCircuit(t)))
	require.NoError(t, q.Redump(src, dst))

	circuits, err := qkrt.LoadQPYFile(dst)
	require.NoError(t, err)
	require.Len(t, circuits, 1)
	var got bytes.Buffer
	require.NoError(t, qkrt.WriteReport(&got, circuits[0], 3))
	require.Equal(t, test.FixtureReport, got.String())
}
