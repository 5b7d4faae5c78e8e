package qpy_test

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Qiskit/qiskit-ibm-runtime-go/circuit"
	"github.com/Qiskit/qiskit-ibm-runtime-go/qpy"
	"github.com/Qiskit/qiskit-ibm-runtime-go/test"
	"github.com/Qiskit/qiskit-ibm-runtime-go/utils"
)

func TestFixtureFile(t *testing.T) {
	path := test.WriteFixture(t)
	circuits, err := qpy.LoadFile(path)
	require.NoError(t, err)
	require.Len(t, circuits, 1)

	c := circuits[0]
	require.Equal(t, uint32(test.FixtureQubits), c.NumQubits)
	require.Equal(t, test.FixtureQubits*test.FixtureLayers/2+test.FixtureQubits, len(c.Instructions))
	for i := 0; i < 3; i++ {
		in, err := c.Data(i)
		require.NoError(t, err)
		require.Equal(t, "cz", in.Name)
		require.Equal(t, "[]", circuit.ParamsRepr(in.Params))
	}
	require.Equal(t, []utils.Count{{Name: "cz", Count: 100000}, {Name: "measure", Count: 200}}, c.CountOps())
}

func TestFixtureRoundTrip(t *testing.T) {
	test.NewAssert(t).RoundTrip(test.FixtureCircuit(t), qpy.DumpOptions{})
}

func TestGHZRoundTrip(t *testing.T) {
	ghz, err := circuit.GHZ(5)
	require.NoError(t, err)
	a := test.NewAssert(t)
	for v := uint8(qpy.MinVersion); v <= qpy.MaxVersion; v++ {
		a.RoundTrip(ghz, qpy.DumpOptions{Version: v})
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := qpy.LoadFile(filepath.Join(t.TempDir(), "missing.qpy"))
	require.Error(t, err)
	require.ErrorIs(t, err, fs.ErrNotExist)
}

func TestLoadFiles(t *testing.T) {
	dir := t.TempDir()
	var paths []string
	for n := uint32(1); n <= 4; n++ {
		c, err := circuit.GHZ(n)
		require.NoError(t, err)
		path := filepath.Join(dir, c.Name+string(rune('0'+n))+".qpy")
		require.NoError(t, qpy.DumpFile(path, qpy.DumpOptions{}, c))
		paths = append(paths, path)
	}
	out, err := qpy.LoadFiles(context.Background(), paths, 2)
	require.NoError(t, err)
	require.Len(t, out, len(paths))
	for i, circuits := range out {
		require.Len(t, circuits, 1)
		require.Equal(t, uint32(i+1), circuits[0].NumQubits)
	}

	bad := filepath.Join(dir, "bad.qpy")
	require.NoError(t, os.WriteFile(bad, []byte("not qpy"), 0o644))
	_, err = qpy.LoadFiles(context.Background(), append(paths, bad), 2)
	require.ErrorIs(t, err, qpy.ErrInvalidPreface)
	require.ErrorContains(t, err, bad)
}

func TestLoadFilesCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := qpy.LoadFiles(ctx, []string{test.WriteFixture(t)}, 1)
	require.ErrorIs(t, err, context.Canceled)
}

func TestTruncatedFixture(t *testing.T) {
	data, err := os.ReadFile(test.WriteFixture(t))
	require.NoError(t, err)
	a := test.NewAssert(t)
	for _, n := range []int{0, 5, 19, 20, 60, len(data) / 2, len(data) - 1} {
		a.LoadFails(data[:n], nil)
	}
	a.LoadFails(append(data, 1, 2), qpy.ErrTrailingData)
}
