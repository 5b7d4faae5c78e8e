package qpy

import (
	"bytes"
	"encoding/json"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/Qiskit/qiskit-ibm-runtime-go/circuit"
	"github.com/Qiskit/qiskit-ibm-runtime-go/utils"
)

type reader struct {
	in      *utils.InputBuf
	header  Header
	program int
	section Section
}

func (r *reader) fail(err error) error {
	return &FormatError{
		Section: r.section,
		Program: r.program,
		Offset:  r.in.Offset(),
		Err:     err,
	}
}

// check converts a pending truncation into a FormatError for the current
// section.
func (r *reader) check() error {
	if err := r.in.Err(); err != nil {
		return r.fail(err)
	}
	return nil
}

// count bounds an element count read from the payload by the bytes left, so
// corrupted counts cannot trigger huge allocations.
func (r *reader) count(n uint64, elemSize int) (int, error) {
	if elemSize < 1 {
		elemSize = 1
	}
	if n > uint64(r.in.Remaining()/elemSize) {
		return 0, r.fail(errors.Wrapf(ErrCountExceedsPayload, "%d elements of at least %d bytes, %d bytes left",
			n, elemSize, r.in.Remaining()))
	}
	return int(n), nil
}

// LoadFile opens path and loads every circuit stored in it.
func LoadFile(path string) ([]*circuit.Circuit, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "open qpy file")
	}
	defer f.Close()
	return Load(f)
}

// Load reads a complete QPY payload from r.
func Load(r io.Reader) ([]*circuit.Circuit, error) {
	_, circuits, err := LoadWithHeader(r)
	return circuits, err
}

func LoadWithHeader(r io.Reader) (*Header, []*circuit.Circuit, error) {
	buf, err := io.ReadAll(r)
	if err != nil {
		return nil, nil, errors.Wrap(err, "read qpy payload")
	}
	return DeserializeWithHeader(buf)
}

// Deserialize decodes the circuits stored in buf.
func Deserialize(buf []byte) ([]*circuit.Circuit, error) {
	_, circuits, err := DeserializeWithHeader(buf)
	return circuits, err
}

func DeserializeWithHeader(buf []byte) (*Header, []*circuit.Circuit, error) {
	r := &reader{in: utils.NewInputBuf(buf), program: -1}
	if err := r.readFileHeader(); err != nil {
		return nil, nil, err
	}
	n, err := r.count(r.header.NumPrograms, circuitHeaderV2Size)
	if err != nil {
		return nil, nil, err
	}
	circuits := make([]*circuit.Circuit, 0, n)
	for i := 0; i < n; i++ {
		r.program = i
		c, err := r.readCircuit()
		if err != nil {
			return nil, nil, err
		}
		circuits = append(circuits, c)
	}
	if !r.in.IsEnd() {
		r.program = -1
		r.section = SectionFileHeader
		return nil, nil, r.fail(errors.Wrapf(ErrTrailingData, "%d bytes", r.in.Remaining()))
	}
	h := r.header
	return &h, circuits, nil
}

func (r *reader) readFileHeader() error {
	r.section = SectionFileHeader
	if r.in.ReadString(len(preface)) != preface {
		return r.fail(ErrInvalidPreface)
	}
	h := &r.header
	h.Version = r.in.ReadUint8()
	h.QiskitVersion[0] = r.in.ReadUint8()
	h.QiskitVersion[1] = r.in.ReadUint8()
	h.QiskitVersion[2] = r.in.ReadUint8()
	h.NumPrograms = r.in.ReadUint64()
	if err := r.check(); err != nil {
		return err
	}
	if h.Version < MinVersion || h.Version > MaxVersion {
		return r.fail(errors.Wrapf(ErrUnsupportedVersion, "version %d, supported %d to %d",
			h.Version, MinVersion, MaxVersion))
	}
	h.SymbolicEncoding = r.in.ReadUint8()
	typeKey := r.in.ReadUint8()
	if err := r.check(); err != nil {
		return err
	}
	if !validSymbolicEncoding(h.SymbolicEncoding) {
		return r.fail(errors.Wrapf(ErrUnsupportedEncoding, "%q", h.SymbolicEncoding))
	}
	if typeKey != programCircuit {
		return r.fail(errors.Wrapf(ErrUnsupportedProgram, "type key %q", typeKey))
	}
	return nil
}

func (r *reader) readCircuit() (*circuit.Circuit, error) {
	r.section = SectionCircuitHeader
	in := r.in
	nameSize := int(in.ReadUint16())
	phaseType := in.ReadUint8()
	phaseSize := int(in.ReadUint16())
	c := &circuit.Circuit{}
	c.NumQubits = in.ReadUint32()
	c.NumClbits = in.ReadUint32()
	metadataSize := in.ReadUint64()
	numRegisters := uint64(in.ReadUint32())
	numInstructions := in.ReadUint64()
	numVars := uint64(0)
	if r.header.Version >= 12 {
		numVars = uint64(in.ReadUint32())
	}
	c.Name = in.ReadString(nameSize)
	phaseData := in.ReadBytes(phaseSize)
	if err := r.check(); err != nil {
		return nil, err
	}
	phase, err := decodeValue(phaseType, phaseData)
	if err != nil {
		return nil, r.fail(errors.Wrap(err, "global phase"))
	}
	c.GlobalPhase = phase
	if metadataSize > uint64(in.Remaining()) {
		return nil, r.fail(errors.Wrapf(utils.ErrTruncated, "metadata of %d bytes", metadataSize))
	}
	c.Metadata = map[string]any{}
	if metadataSize > 0 {
		dec := json.NewDecoder(bytes.NewReader(in.ReadBytes(int(metadataSize))))
		// integers above 2^53 survive a round trip
		dec.UseNumber()
		if err := dec.Decode(&c.Metadata); err != nil {
			return nil, r.fail(errors.Wrap(err, "metadata"))
		}
		if dec.More() {
			return nil, r.fail(errors.New("metadata: trailing data after JSON value"))
		}
		if c.Metadata == nil {
			c.Metadata = map[string]any{}
		}
	}

	r.section = SectionRegisters
	if c.Registers, err = r.readRegisters(numRegisters, c); err != nil {
		return nil, err
	}

	r.section = SectionVars
	n, err := r.count(numVars, varDeclarationSize)
	if err != nil {
		return nil, err
	}
	for i := 0; i < n; i++ {
		v, err := r.readVar()
		if err != nil {
			return nil, err
		}
		c.Vars = append(c.Vars, v)
	}

	r.section = SectionCustomOperations
	numCustom := in.ReadUint64()
	if err := r.check(); err != nil {
		return nil, err
	}
	if numCustom != 0 {
		return nil, r.fail(errors.Wrapf(ErrUnsupportedFeature, "%d custom operation definitions", numCustom))
	}

	r.section = SectionInstructions
	if n, err = r.count(numInstructions, instructionV2Size); err != nil {
		return nil, err
	}
	c.Instructions = make([]circuit.Instruction, 0, n)
	for i := 0; i < n; i++ {
		if err := r.readInstruction(c); err != nil {
			return nil, err
		}
	}

	r.section = SectionCalibrations
	numCalibrations := in.ReadUint16()
	if err := r.check(); err != nil {
		return nil, err
	}
	if numCalibrations != 0 {
		return nil, r.fail(errors.Wrapf(ErrUnsupportedFeature, "%d pulse calibrations", numCalibrations))
	}

	r.section = SectionLayout
	if c.Layout, err = r.readLayout(c); err != nil {
		return nil, err
	}
	return c, nil
}

func (r *reader) readRegisters(num uint64, c *circuit.Circuit) ([]circuit.Register, error) {
	n, err := r.count(num, registerV4Size)
	if err != nil {
		return nil, err
	}
	var regs []circuit.Register
	for i := 0; i < n; i++ {
		in := r.in
		reg := circuit.Register{}
		reg.Kind = circuit.RegisterKind(in.ReadUint8())
		reg.Standalone = in.ReadBool()
		size := uint64(in.ReadUint32())
		nameSize := int(in.ReadUint16())
		reg.InCircuit = in.ReadBool()
		reg.Name = in.ReadString(nameSize)
		if err := r.check(); err != nil {
			return nil, err
		}
		limit := int64(c.NumQubits)
		switch reg.Kind {
		case circuit.QuantumRegister:
		case circuit.ClassicalRegister:
			limit = int64(c.NumClbits)
		default:
			return nil, r.fail(errors.Errorf("register %q has invalid type %q", reg.Name, byte(reg.Kind)))
		}
		size32, err := r.count(size, 8)
		if err != nil {
			return nil, err
		}
		reg.Bits = make([]int64, size32)
		for j := range reg.Bits {
			reg.Bits[j] = in.ReadInt64()
			if reg.Bits[j] >= limit || reg.Bits[j] < -1 {
				return nil, r.fail(errors.Wrapf(circuit.ErrBitOutOfRange, "register %q bit %d", reg.Name, reg.Bits[j]))
			}
		}
		if err := r.check(); err != nil {
			return nil, err
		}
		regs = append(regs, reg)
	}
	return regs, nil
}

func (r *reader) readVar() (circuit.Var, error) {
	in := r.in
	v := circuit.Var{}
	idBytes := in.ReadBytes(16)
	v.Usage = circuit.VarUsage(in.ReadUint8())
	nameSize := int(in.ReadUint16())
	v.Type.Kind = in.ReadUint8()
	if err := r.check(); err != nil {
		return v, err
	}
	switch v.Type.Kind {
	case varTypeUint:
		v.Type.Width = in.ReadUint32()
	case varTypeBool, varTypeFloat, varTypeDuration:
	default:
		return v, r.fail(errors.Wrapf(ErrUnsupportedType, "var type %q", v.Type.Kind))
	}
	v.Name = in.ReadString(nameSize)
	if err := r.check(); err != nil {
		return v, err
	}
	id, err := uuid.FromBytes(idBytes)
	if err != nil {
		return v, r.fail(errors.Wrap(err, "var uuid"))
	}
	v.UUID = id
	return v, nil
}

func (r *reader) readInstruction(c *circuit.Circuit) error {
	in := r.in
	nameSize := int(in.ReadUint16())
	labelSize := int(in.ReadUint16())
	numParams := uint64(in.ReadUint16())
	numQargs := uint64(in.ReadUint32())
	numCargs := uint64(in.ReadUint32())
	conditionKey := in.ReadUint8()
	conditionRegisterSize := int(in.ReadUint16())
	conditionValue := in.ReadInt64()
	numCtrlQubits := in.ReadUint32()
	ctrlState := in.ReadUint32()
	class := in.ReadString(nameSize)
	label := in.ReadString(labelSize)
	condName := in.ReadString(conditionRegisterSize)
	if err := r.check(); err != nil {
		return err
	}

	g, ok := circuit.LookupClass(class)
	if !ok {
		return r.fail(errors.Wrapf(ErrUnknownOperation, "%q", class))
	}
	inst := circuit.Instruction{
		Name:          g.Name,
		Class:         class,
		Label:         label,
		NumCtrlQubits: numCtrlQubits,
		CtrlState:     ctrlState,
	}

	switch conditionKey {
	case conditionNone:
	case conditionRegister:
		cond, err := parseCondition(condName, conditionValue, c)
		if err != nil {
			return r.fail(err)
		}
		inst.Condition = cond
	case conditionExpr:
		return r.fail(errors.Wrap(ErrUnsupportedFeature, "classical expression condition"))
	default:
		return r.fail(errors.Errorf("invalid condition key %d", conditionKey))
	}

	numArgs, err := r.count(numQargs+numCargs, instructionArgSize)
	if err != nil {
		return err
	}
	for j := 0; j < numArgs; j++ {
		kind := in.ReadUint8()
		index := in.ReadUint32()
		switch kind {
		case argQubit:
			inst.Qubits = append(inst.Qubits, index)
		case argClbit:
			inst.Clbits = append(inst.Clbits, index)
		default:
			if err := r.check(); err != nil {
				return err
			}
			return r.fail(errors.Errorf("invalid argument kind %q", kind))
		}
	}
	if err := r.check(); err != nil {
		return err
	}
	if uint64(len(inst.Qubits)) != numQargs || uint64(len(inst.Clbits)) != numCargs {
		return r.fail(errors.Wrapf(circuit.ErrArity, "%s declares %d qubits and %d clbits, payload has %d and %d",
			class, numQargs, numCargs, len(inst.Qubits), len(inst.Clbits)))
	}

	np, err := r.count(numParams, instructionParamSize)
	if err != nil {
		return err
	}
	for j := 0; j < np; j++ {
		typeKey := in.ReadUint8()
		size := in.ReadUint64()
		if err := r.check(); err != nil {
			return err
		}
		if size > uint64(in.Remaining()) {
			return r.fail(errors.Wrapf(utils.ErrTruncated, "param %d of %d bytes", j, size))
		}
		p, err := decodeValue(typeKey, in.ReadBytes(int(size)))
		if err != nil {
			return r.fail(errors.Wrapf(err, "%s param %d", class, j))
		}
		inst.Params = append(inst.Params, p)
	}

	if err := c.Append(inst); err != nil {
		return r.fail(err)
	}
	return nil
}

// parseCondition decodes a register condition. A name starting with a NUL
// byte refers to a single clbit by index.
func parseCondition(name string, value int64, c *circuit.Circuit) (*circuit.Condition, error) {
	if rest, ok := strings.CutPrefix(name, "\x00"); ok {
		idx, err := strconv.Atoi(rest)
		if err != nil || idx < 0 || idx >= int(c.NumClbits) {
			return nil, errors.Wrapf(circuit.ErrBitOutOfRange, "condition clbit %q", rest)
		}
		return &circuit.Condition{Clbit: idx, IsClbit: true, Value: value}, nil
	}
	for _, reg := range c.Registers {
		if reg.Kind == circuit.ClassicalRegister && reg.Name == name {
			return &circuit.Condition{Register: name, Value: value}, nil
		}
	}
	return nil, errors.Errorf("condition on unknown register %q", name)
}

func (r *reader) readLayout(c *circuit.Circuit) (*circuit.Layout, error) {
	in := r.in
	exists := in.ReadBool()
	initialSize := in.ReadInt32()
	inputMappingSize := in.ReadInt32()
	finalSize := in.ReadInt32()
	extraRegisters := uint64(in.ReadUint32())
	inputQubits := in.ReadInt32()
	if err := r.check(); err != nil {
		return nil, err
	}
	if !exists {
		return nil, nil
	}
	l := &circuit.Layout{InputQubits: inputQubits}

	// extra registers are decoded against the physical qubit space
	space := &circuit.Circuit{NumQubits: math.MaxUint32, NumClbits: c.NumClbits}
	regs, err := r.readRegisters(extraRegisters, space)
	if err != nil {
		return nil, err
	}
	l.ExtraRegisters = regs

	if initialSize >= 0 {
		n, err := r.count(uint64(initialSize), initialLayoutBitSize)
		if err != nil {
			return nil, err
		}
		l.InitialLayout = make([]circuit.LayoutBit, n)
		for i := range l.InitialLayout {
			index := in.ReadInt32()
			regSize := in.ReadInt32()
			bit := circuit.LayoutBit{Index: index}
			if regSize >= 0 {
				bit.Register = in.ReadString(int(regSize))
				bit.InRegister = true
			}
			l.InitialLayout[i] = bit
		}
		if err := r.check(); err != nil {
			return nil, err
		}
	}
	if l.InputMapping, err = r.readUint32s(inputMappingSize); err != nil {
		return nil, err
	}
	if l.FinalLayout, err = r.readUint32s(finalSize); err != nil {
		return nil, err
	}
	return l, nil
}

func (r *reader) readUint32s(size int32) ([]uint32, error) {
	if size < 0 {
		return nil, nil
	}
	n, err := r.count(uint64(size), 4)
	if err != nil {
		return nil, err
	}
	out := make([]uint32, n)
	for i := range out {
		out[i] = r.in.ReadUint32()
	}
	return out, r.check()
}
