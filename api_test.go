package qkrt

import (
	"bytes"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Qiskit/qiskit-ibm-runtime-go/circuit"
	"github.com/Qiskit/qiskit-ibm-runtime-go/qpy"
	"github.com/Qiskit/qiskit-ibm-runtime-go/runtime"
	"github.com/Qiskit/qiskit-ibm-runtime-go/test"
)

func TestSmokeReport(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.qpy")
	require.NoError(t, GenerateQPYFile(path, qpy.DumpOptions{}, test.FixtureCircuit(t)))

	circuits, err := LoadQPYFile(path)
	require.NoError(t, err)
	require.Len(t, circuits, 1)

	var out bytes.Buffer
	require.NoError(t, WriteReport(&out, circuits[0], 3))
	require.Equal(t, test.FixtureReport, out.String())

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	names := []string{}
	for _, e := range entries {
		names = append(names, e.Name())
	}
	require.Equal(t, []string{"test.qpy"}, names)

	info, err := os.Stat(path)
	require.NoError(t, err)
	require.Equal(t, os.FileMode(0o644), info.Mode().Perm())
}

func TestWriteReportOutOfRange(t *testing.T) {
	c := circuit.New(1, 0)
	require.NoError(t, c.Gate("x", []uint32{0}))

	var out bytes.Buffer
	require.Error(t, WriteReport(&out, c, 2))
	require.Equal(t, "[]\n", out.String())

	out.Reset()
	require.NoError(t, WriteReport(&out, circuit.New(0, 0), 0))
	require.Equal(t, "OrderedDict()\n", out.String())
}

func TestGenerateQPYFileConcurrent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "shared.qpy")
	var wg sync.WaitGroup
	errs := make([]error, 8)
	for i := range errs {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c, err := circuit.GHZ(uint32(i + 1))
			if err != nil {
				errs[i] = err
				return
			}
			errs[i] = GenerateQPYFile(path, qpy.DumpOptions{}, c)
		}()
	}
	wg.Wait()
	for _, err := range errs {
		require.NoError(t, err)
	}
	circuits, err := LoadQPYFile(path)
	require.NoError(t, err)
	require.Len(t, circuits, 1)
	require.Equal(t, "ghz", circuits[0].Name)
	_, err = os.Stat(path + ".lock")
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestGenerateQPYFileRejectsBadOptions(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.qpy")
	err := GenerateQPYFile(path, qpy.DumpOptions{Version: 3}, test.FixtureCircuit(t))
	require.ErrorIs(t, err, qpy.ErrUnsupportedVersion)
	_, err = os.Stat(path)
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestWriteSamplerPayload(t *testing.T) {
	c, err := circuit.GHZ(2)
	require.NoError(t, err)
	var out bytes.Buffer
	require.NoError(t, WriteSamplerPayload(&out, c, runtime.SamplerOptions{Backend: "ibm_torino", Shots: 1024}))

	job, circuits, err := runtime.DecodeSamplerPayload(&out)
	require.NoError(t, err)
	require.Equal(t, "ibm_torino", job.Backend)
	require.Equal(t, 1024, job.Params.Shots)
	require.Len(t, circuits, 1)
	require.Equal(t, c.CountOps(), circuits[0].CountOps())
}
