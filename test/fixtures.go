package test

import (
	"path/filepath"
	"testing"

	"github.com/Qiskit/qiskit-ibm-runtime-go/circuit"
	"github.com/Qiskit/qiskit-ibm-runtime-go/qpy"
)

const (
	FixtureQubits = 200
	FixtureLayers = 1000
)

// FixtureReport is the report of the first three instructions of the
// fixture circuit.
const FixtureReport = "[]\n[]\n[]\nOrderedDict({'cz': 100000, 'measure': 200})\n"

// FixtureCircuit is the CZ layer circuit used as test.qpy.
func FixtureCircuit(t testing.TB) *circuit.Circuit {
	t.Helper()
	c, err := circuit.CZLayers(FixtureQubits, FixtureLayers)
	if err != nil {
		t.Fatal(err)
	}
	return c
}

// WriteFixture writes the fixture circuit as test.qpy in a temporary
// directory and returns its path.
func WriteFixture(t testing.TB) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.qpy")
	if err := qpy.DumpFile(path, qpy.DumpOptions{}, FixtureCircuit(t)); err != nil {
		t.Fatal(err)
	}
	return path
}
