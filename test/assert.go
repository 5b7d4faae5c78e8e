package test

import (
	"bytes"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/pkg/errors"

	"github.com/Qiskit/qiskit-ibm-runtime-go/circuit"
	"github.com/Qiskit/qiskit-ibm-runtime-go/qpy"
)

// CircuitOpts compares circuits the way they survive a QPY round trip.
var CircuitOpts = []cmp.Option{
	cmpopts.EquateEmpty(),
}

type Assert struct {
	t *testing.T
}

func NewAssert(t *testing.T) *Assert {
	return &Assert{t: t}
}

// RoundTrip serializes c with opts, loads it back and requires the result
// to equal c.
func (a *Assert) RoundTrip(c *circuit.Circuit, opts qpy.DumpOptions) *circuit.Circuit {
	a.t.Helper()
	data, err := qpy.Serialize(opts, c)
	if err != nil {
		a.t.Fatalf("serialize: %+v", err)
	}
	loaded, err := qpy.Deserialize(data)
	if err != nil {
		a.t.Fatalf("deserialize: %+v", err)
	}
	if len(loaded) != 1 {
		a.t.Fatalf("loaded %d circuits, want 1", len(loaded))
	}
	if diff := cmp.Diff(c, loaded[0], CircuitOpts...); diff != "" {
		a.t.Fatalf("round trip mismatch (-want +got):\n%s", diff)
	}
	again, err := qpy.Serialize(opts, loaded[0])
	if err != nil {
		a.t.Fatalf("serialize loaded circuit: %+v", err)
	}
	if !bytes.Equal(data, again) {
		a.t.Fatal("re-serialized payload differs")
	}
	return loaded[0]
}

// LoadFails requires data to be rejected with an error matching target.
func (a *Assert) LoadFails(data []byte, target error) *qpy.FormatError {
	a.t.Helper()
	_, err := qpy.Deserialize(data)
	if err == nil {
		a.t.Fatal("load should fail")
	}
	if target != nil && !errors.Is(err, target) {
		a.t.Fatalf("load failed with %v, want %v", err, target)
	}
	var fe *qpy.FormatError
	if !errors.As(err, &fe) {
		a.t.Fatalf("error %v is not a FormatError", err)
	}
	return fe
}
