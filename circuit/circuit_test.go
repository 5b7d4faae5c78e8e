package circuit

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
)

func TestAppendFillsDefaults(t *testing.T) {
	c := New(3, 1)
	require.NoError(t, c.Gate("ccx", []uint32{0, 1, 2}))
	require.NoError(t, c.Gate("rz", []uint32{1}, Float(0.5)))
	require.NoError(t, c.Measure(2, 0))

	in, err := c.Data(0)
	require.NoError(t, err)
	require.Equal(t, "CCXGate", in.Class)
	require.Equal(t, uint32(2), in.NumCtrlQubits)
	require.Equal(t, uint32(3), in.CtrlState)

	in, err = c.Data(1)
	require.NoError(t, err)
	require.Equal(t, "RZGate", in.Class)
	require.Equal(t, uint32(0), in.NumCtrlQubits)
	require.Equal(t, "[0.5]", ParamsRepr(in.Params))

	in, err = c.Data(2)
	require.NoError(t, err)
	require.Equal(t, "Measure", in.Class)
	require.Equal(t, []uint32{0}, in.Clbits)
}

func TestAppendKeepsExplicitCtrlState(t *testing.T) {
	c := New(2, 0)
	require.NoError(t, c.Append(Instruction{Name: "cx", Qubits: []uint32{0, 1}, NumCtrlQubits: 1, CtrlState: 0}))
	require.Equal(t, uint32(0), c.Instructions[0].CtrlState)
}

func TestAppendRejects(t *testing.T) {
	c := New(2, 1)
	tests := []struct {
		name string
		in   Instruction
		err  error
	}{
		{"unknown gate", Instruction{Name: "foo", Qubits: []uint32{0}}, ErrUnknownGate},
		{"too few qubits", Instruction{Name: "cz", Qubits: []uint32{0}}, ErrArity},
		{"missing clbit", Instruction{Name: "measure", Qubits: []uint32{0}}, ErrArity},
		{"missing param", Instruction{Name: "rx", Qubits: []uint32{0}}, ErrArity},
		{"qubit out of range", Instruction{Name: "x", Qubits: []uint32{2}}, ErrBitOutOfRange},
		{"clbit out of range", Instruction{Name: "measure", Qubits: []uint32{0}, Clbits: []uint32{1}}, ErrBitOutOfRange},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := c.Append(tt.in)
			require.Error(t, err)
			require.True(t, errors.Is(err, tt.err), "%v", err)
		})
	}
	require.Error(t, c.Gate("cz", []uint32{1, 1}))
	require.Empty(t, c.Instructions)
}

func TestDataOutOfRange(t *testing.T) {
	c := New(1, 0)
	_, err := c.Data(0)
	require.Error(t, err)
	_, err = c.Data(-1)
	require.Error(t, err)
}

func TestBarrierSpansAllQubits(t *testing.T) {
	c := New(4, 0)
	require.NoError(t, c.Barrier())
	require.Equal(t, []uint32{0, 1, 2, 3}, c.Instructions[0].Qubits)
	require.NoError(t, c.Barrier(1))
	require.Equal(t, []uint32{1}, c.Instructions[1].Qubits)
}

func TestAddRegister(t *testing.T) {
	c := New(2, 2)
	reg, err := c.AddRegister(ClassicalRegister, "c", []int64{0, 1})
	require.NoError(t, err)
	require.True(t, reg.Standalone)
	require.True(t, reg.InCircuit)
	_, err = c.AddRegister(QuantumRegister, "q", []int64{0, 2})
	require.True(t, errors.Is(err, ErrBitOutOfRange))

	_, err = c.AddRegister(ClassicalRegister, "partial", []int64{-1, 1})
	require.NoError(t, err)
	_, err = c.AddRegister(ClassicalRegister, "neg", []int64{0, -2})
	require.True(t, errors.Is(err, ErrBitOutOfRange))
	require.Len(t, c.Registers, 2)
}

func TestLookupClass(t *testing.T) {
	for _, g := range StandardGates() {
		byClass, ok := LookupClass(g.Class)
		require.True(t, ok, g.Class)
		require.Equal(t, g.Name, byClass.Name)
		byName, ok := LookupGate(g.Name)
		require.True(t, ok, g.Name)
		require.Equal(t, g.Class, byName.Class)
	}
	_, ok := LookupClass("NotAGate")
	require.False(t, ok)
}

func TestParameterRepr(t *testing.T) {
	p := NewParameter("θ")
	q := NewParameter("θ")
	require.Equal(t, "Parameter(θ)", p.Repr())
	require.NotEqual(t, p.UUID, q.UUID)
	require.Equal(t, "[Parameter(θ), 2, None, 'a', (1+1j)]",
		ParamsRepr([]Param{p, Int(2), Null{}, Str("a"), Complex(complex(1, 1))}))
}

func TestAsFloat(t *testing.T) {
	v, ok := AsFloat(Int(3))
	require.True(t, ok)
	require.Equal(t, 3.0, v)
	_, ok = AsFloat(NewParameter("a"))
	require.False(t, ok)
}
