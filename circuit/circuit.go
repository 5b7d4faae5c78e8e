// Package circuit holds the in-memory representation of a quantum circuit:
// its bits, registers and the ordered instruction list.
package circuit

import (
	"github.com/google/uuid"
	"github.com/pkg/errors"
)

var (
	ErrUnknownGate   = errors.New("unknown gate")
	ErrBitOutOfRange = errors.New("bit index out of range")
	ErrArity         = errors.New("wrong number of operands")
)

type RegisterKind byte

const (
	QuantumRegister   RegisterKind = 'q'
	ClassicalRegister RegisterKind = 'c'
)

type Register struct {
	Kind RegisterKind
	Name string
	// Standalone registers own their bits; otherwise they alias bits that
	// already exist in the circuit.
	Standalone bool
	InCircuit  bool
	// Bits holds circuit bit indices, -1 for a bit not in the circuit.
	Bits []int64
}

// VarUsage says how a standalone variable enters the circuit.
type VarUsage byte

const (
	VarInput   VarUsage = 'I'
	VarCapture VarUsage = 'C'
	VarDeclare VarUsage = 'L'
	VarStretch VarUsage = 'A'
)

// VarType is the classical type of a standalone variable: 'b' bool, 'u'
// unsigned integer of Width bits, 'f' float, 'd' duration.
type VarType struct {
	Kind  byte
	Width uint32
}

type Var struct {
	UUID  uuid.UUID
	Usage VarUsage
	Type  VarType
	Name  string
}

// Condition is a classical condition on a register or on a single clbit.
type Condition struct {
	Register string
	// Clbit is used instead of Register when IsClbit is set.
	Clbit   int
	IsClbit bool
	Value   int64
}

type Instruction struct {
	Name string
	// Class is the QPY class name of the operation.
	Class         string
	Qubits        []uint32
	Clbits        []uint32
	Params        []Param
	Label         string
	Condition     *Condition
	NumCtrlQubits uint32
	CtrlState     uint32
}

// Info returns the standard gate description of the instruction.
func (in *Instruction) Info() (*GateInfo, bool) {
	return LookupGate(in.Name)
}

// LayoutBit is the virtual bit placed on a physical qubit. Outside a
// register, Index is a circuit qubit index, or -1 for an unused physical
// qubit.
type LayoutBit struct {
	Register   string
	Index      int32
	InRegister bool
}

type Layout struct {
	InitialLayout  []LayoutBit
	InputMapping   []uint32
	FinalLayout    []uint32
	InputQubits    int32
	ExtraRegisters []Register
}

type Circuit struct {
	Name         string
	GlobalPhase  Param
	NumQubits    uint32
	NumClbits    uint32
	Metadata     map[string]any
	Registers    []Register
	Vars         []Var
	Instructions []Instruction
	Layout       *Layout
}

// New creates an empty circuit with anonymous bits.
func New(numQubits, numClbits uint32) *Circuit {
	return &Circuit{
		GlobalPhase: Float(0),
		NumQubits:   numQubits,
		NumClbits:   numClbits,
		Metadata:    map[string]any{},
	}
}

// Data returns instruction i, or an error if the index is out of range.
func (c *Circuit) Data(i int) (*Instruction, error) {
	if i < 0 || i >= len(c.Instructions) {
		return nil, errors.Errorf("instruction index %d out of range, circuit has %d instructions",
			i, len(c.Instructions))
	}
	return &c.Instructions[i], nil
}

// AddRegister appends a register and returns it.
func (c *Circuit) AddRegister(kind RegisterKind, name string, bits []int64) (*Register, error) {
	limit := int64(c.NumQubits)
	if kind == ClassicalRegister {
		limit = int64(c.NumClbits)
	}
	for _, b := range bits {
		// -1 marks a register bit that is not in the circuit
		if b < -1 || b >= limit {
			return nil, errors.Wrapf(ErrBitOutOfRange, "register %s bit %d", name, b)
		}
	}
	c.Registers = append(c.Registers, Register{
		Kind:       kind,
		Name:       name,
		Standalone: true,
		InCircuit:  true,
		Bits:       bits,
	})
	return &c.Registers[len(c.Registers)-1], nil
}

// Append validates an instruction against the standard gate table and the
// circuit's bit counts, then adds it.
func (c *Circuit) Append(in Instruction) error {
	g, ok := LookupGate(in.Name)
	if !ok {
		return errors.Wrapf(ErrUnknownGate, "%q", in.Name)
	}
	if g.NumQubits >= 0 && len(in.Qubits) != g.NumQubits {
		return errors.Wrapf(ErrArity, "%s takes %d qubits, got %d", g.Name, g.NumQubits, len(in.Qubits))
	}
	if len(in.Clbits) != g.NumClbits {
		return errors.Wrapf(ErrArity, "%s takes %d clbits, got %d", g.Name, g.NumClbits, len(in.Clbits))
	}
	if len(in.Params) != g.NumParams {
		return errors.Wrapf(ErrArity, "%s takes %d params, got %d", g.Name, g.NumParams, len(in.Params))
	}
	seen := make(map[uint32]bool, len(in.Qubits))
	for _, q := range in.Qubits {
		if q >= c.NumQubits {
			return errors.Wrapf(ErrBitOutOfRange, "%s qubit %d, circuit has %d", g.Name, q, c.NumQubits)
		}
		if seen[q] {
			return errors.Errorf("%s: duplicate qubit %d", g.Name, q)
		}
		seen[q] = true
	}
	for _, cl := range in.Clbits {
		if cl >= c.NumClbits {
			return errors.Wrapf(ErrBitOutOfRange, "%s clbit %d, circuit has %d", g.Name, cl, c.NumClbits)
		}
	}
	if in.Class == "" {
		in.Class = g.Class
	}
	if in.NumCtrlQubits == 0 && g.IsControlled() {
		in.NumCtrlQubits = uint32(g.NumCtrlQubits)
		in.CtrlState = g.DefaultCtrlState()
	}
	c.Instructions = append(c.Instructions, in)
	return nil
}

// Gate appends a standard gate.
func (c *Circuit) Gate(name string, qubits []uint32, params ...Param) error {
	return c.Append(Instruction{Name: name, Qubits: qubits, Params: params})
}

func (c *Circuit) Measure(qubit, clbit uint32) error {
	return c.Append(Instruction{Name: "measure", Qubits: []uint32{qubit}, Clbits: []uint32{clbit}})
}

func (c *Circuit) Reset(qubit uint32) error {
	return c.Append(Instruction{Name: "reset", Qubits: []uint32{qubit}})
}

// Barrier spans all qubits when none are given.
func (c *Circuit) Barrier(qubits ...uint32) error {
	if len(qubits) == 0 {
		qubits = make([]uint32, c.NumQubits)
		for i := range qubits {
			qubits[i] = uint32(i)
		}
	}
	return c.Append(Instruction{Name: "barrier", Qubits: qubits})
}
