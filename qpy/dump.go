package qpy

import (
	"encoding/json"
	"io"
	"math"
	"os"
	"strconv"

	"github.com/pkg/errors"

	"github.com/Qiskit/qiskit-ibm-runtime-go/circuit"
	"github.com/Qiskit/qiskit-ibm-runtime-go/utils"
)

// DumpOptions controls the file header written by Dump. Zero values select
// the defaults.
type DumpOptions struct {
	Version          uint8
	QiskitVersion    [3]uint8
	SymbolicEncoding byte
}

var defaultQiskitVersion = [3]uint8{2, 1, 0}

func (o DumpOptions) withDefaults() DumpOptions {
	if o.Version == 0 {
		o.Version = CurrentVersion
	}
	if o.QiskitVersion == ([3]uint8{}) {
		o.QiskitVersion = defaultQiskitVersion
	}
	if o.SymbolicEncoding == 0 {
		o.SymbolicEncoding = SymbolicEncodingSympy
	}
	return o
}

// DumpFile writes circuits to path, replacing any existing file.
func DumpFile(path string, opts DumpOptions, circuits ...*circuit.Circuit) error {
	buf, err := Serialize(opts, circuits...)
	if err != nil {
		return err
	}
	return errors.Wrap(os.WriteFile(path, buf, 0o644), "write qpy file")
}

// Dump writes circuits to w as one QPY payload.
func Dump(w io.Writer, opts DumpOptions, circuits ...*circuit.Circuit) error {
	buf, err := Serialize(opts, circuits...)
	if err != nil {
		return err
	}
	_, err = w.Write(buf)
	return errors.Wrap(err, "write qpy payload")
}

// Serialize encodes circuits into a QPY payload.
func Serialize(opts DumpOptions, circuits ...*circuit.Circuit) ([]byte, error) {
	opts = opts.withDefaults()
	if opts.Version < MinVersion || opts.Version > MaxVersion {
		return nil, errors.Wrapf(ErrUnsupportedVersion, "version %d, supported %d to %d",
			opts.Version, MinVersion, MaxVersion)
	}
	if !validSymbolicEncoding(opts.SymbolicEncoding) {
		return nil, errors.Wrapf(ErrUnsupportedEncoding, "%q", opts.SymbolicEncoding)
	}
	// header + instructions is an under estimate, enough to avoid most
	// reallocations
	sizeEstimate := fileHeaderSize + 1
	for _, c := range circuits {
		sizeEstimate += circuitHeaderV12Size + layoutV2Size + customDefHeaderSize + calibrationHeaderSize
		sizeEstimate += len(c.Instructions) * (instructionV2Size + 8 + 2*instructionArgSize)
	}
	o := utils.NewOutputBuf(sizeEstimate)
	o.AppendBytes([]byte(preface))
	o.AppendUint8(opts.Version)
	o.AppendUint8(opts.QiskitVersion[0])
	o.AppendUint8(opts.QiskitVersion[1])
	o.AppendUint8(opts.QiskitVersion[2])
	o.AppendUint64(uint64(len(circuits)))
	o.AppendUint8(opts.SymbolicEncoding)
	o.AppendUint8(programCircuit)
	for i, c := range circuits {
		if err := writeCircuit(o, c, opts.Version); err != nil {
			return nil, errors.Wrapf(err, "circuit %d", i)
		}
	}
	return o.Bytes(), nil
}

func checkLen(what string, n int, limit uint64) error {
	if uint64(n) > limit {
		return errors.Errorf("%s too long: %d", what, n)
	}
	return nil
}

func writeCircuit(o *utils.OutputBuf, c *circuit.Circuit, version uint8) error {
	phase := c.GlobalPhase
	if phase == nil {
		phase = circuit.Float(0)
	}
	phaseKey, phaseData, err := encodeValue(phase)
	if err != nil {
		return errors.Wrap(err, "global phase")
	}
	metadata := c.Metadata
	if metadata == nil {
		metadata = map[string]any{}
	}
	metadataRaw, err := json.Marshal(metadata)
	if err != nil {
		return errors.Wrap(err, "metadata")
	}
	if err := checkLen("circuit name", len(c.Name), math.MaxUint16); err != nil {
		return err
	}
	if err := checkLen("global phase", len(phaseData), math.MaxUint16); err != nil {
		return err
	}
	if err := checkLen("register list", len(c.Registers), math.MaxUint32); err != nil {
		return err
	}
	if err := checkLen("var list", len(c.Vars), math.MaxUint32); err != nil {
		return err
	}
	if version < 12 && len(c.Vars) > 0 {
		return errors.Wrapf(ErrUnsupportedFeature, "standalone vars need version 12, writing %d", version)
	}

	o.AppendUint16(uint16(len(c.Name)))
	o.AppendUint8(phaseKey)
	o.AppendUint16(uint16(len(phaseData)))
	o.AppendUint32(c.NumQubits)
	o.AppendUint32(c.NumClbits)
	o.AppendUint64(uint64(len(metadataRaw)))
	o.AppendUint32(uint32(len(c.Registers)))
	o.AppendUint64(uint64(len(c.Instructions)))
	if version >= 12 {
		o.AppendUint32(uint32(len(c.Vars)))
	}
	o.AppendBytes([]byte(c.Name))
	o.AppendBytes(phaseData)
	o.AppendBytes(metadataRaw)

	if err := writeRegisters(o, c.Registers); err != nil {
		return err
	}
	for _, v := range c.Vars {
		if err := checkLen("var name", len(v.Name), math.MaxUint16); err != nil {
			return err
		}
		o.AppendBytes(v.UUID[:])
		o.AppendUint8(byte(v.Usage))
		o.AppendUint16(uint16(len(v.Name)))
		o.AppendUint8(v.Type.Kind)
		if v.Type.Kind == varTypeUint {
			o.AppendUint32(v.Type.Width)
		}
		o.AppendBytes([]byte(v.Name))
	}

	// no custom operation definitions
	o.AppendUint64(0)
	for i := range c.Instructions {
		if err := writeInstruction(o, &c.Instructions[i]); err != nil {
			return errors.Wrapf(err, "instruction %d", i)
		}
	}
	// no calibrations
	o.AppendUint16(0)
	return writeLayout(o, c.Layout)
}

func writeRegisters(o *utils.OutputBuf, regs []circuit.Register) error {
	for _, reg := range regs {
		if err := checkLen("register name", len(reg.Name), math.MaxUint16); err != nil {
			return err
		}
		if err := checkLen("register", len(reg.Bits), math.MaxUint32); err != nil {
			return err
		}
		o.AppendUint8(byte(reg.Kind))
		o.AppendBool(reg.Standalone)
		o.AppendUint32(uint32(len(reg.Bits)))
		o.AppendUint16(uint16(len(reg.Name)))
		o.AppendBool(reg.InCircuit)
		o.AppendBytes([]byte(reg.Name))
		for _, b := range reg.Bits {
			o.AppendInt64(b)
		}
	}
	return nil
}

func writeInstruction(o *utils.OutputBuf, in *circuit.Instruction) error {
	class := in.Class
	if class == "" {
		g, ok := circuit.LookupGate(in.Name)
		if !ok {
			return errors.Wrapf(circuit.ErrUnknownGate, "%q", in.Name)
		}
		class = g.Class
	}
	conditionKey := uint8(conditionNone)
	condName := ""
	conditionValue := int64(0)
	if in.Condition != nil {
		conditionKey = conditionRegister
		conditionValue = in.Condition.Value
		if in.Condition.IsClbit {
			condName = "\x00" + strconv.Itoa(in.Condition.Clbit)
		} else {
			condName = in.Condition.Register
		}
	}
	if err := checkLen("class name", len(class), math.MaxUint16); err != nil {
		return err
	}
	if err := checkLen("label", len(in.Label), math.MaxUint16); err != nil {
		return err
	}
	if err := checkLen("condition register", len(condName), math.MaxUint16); err != nil {
		return err
	}
	if err := checkLen("param list", len(in.Params), math.MaxUint16); err != nil {
		return err
	}

	o.AppendUint16(uint16(len(class)))
	o.AppendUint16(uint16(len(in.Label)))
	o.AppendUint16(uint16(len(in.Params)))
	o.AppendUint32(uint32(len(in.Qubits)))
	o.AppendUint32(uint32(len(in.Clbits)))
	o.AppendUint8(conditionKey)
	o.AppendUint16(uint16(len(condName)))
	o.AppendInt64(conditionValue)
	o.AppendUint32(in.NumCtrlQubits)
	o.AppendUint32(in.CtrlState)
	o.AppendBytes([]byte(class))
	o.AppendBytes([]byte(in.Label))
	o.AppendBytes([]byte(condName))
	for _, q := range in.Qubits {
		o.AppendUint8(argQubit)
		o.AppendUint32(q)
	}
	for _, cl := range in.Clbits {
		o.AppendUint8(argClbit)
		o.AppendUint32(cl)
	}
	for j, p := range in.Params {
		key, data, err := encodeValue(p)
		if err != nil {
			return errors.Wrapf(err, "param %d", j)
		}
		o.AppendUint8(key)
		o.AppendUint64(uint64(len(data)))
		o.AppendBytes(data)
	}
	return nil
}

func writeLayout(o *utils.OutputBuf, l *circuit.Layout) error {
	if l == nil {
		o.AppendBool(false)
		o.AppendInt32(-1)
		o.AppendInt32(-1)
		o.AppendInt32(-1)
		o.AppendUint32(0)
		o.AppendInt32(0)
		return nil
	}
	sizeOrNone := func(n int, present bool) int32 {
		if !present {
			return -1
		}
		return int32(n)
	}
	o.AppendBool(true)
	o.AppendInt32(sizeOrNone(len(l.InitialLayout), l.InitialLayout != nil))
	o.AppendInt32(sizeOrNone(len(l.InputMapping), l.InputMapping != nil))
	o.AppendInt32(sizeOrNone(len(l.FinalLayout), l.FinalLayout != nil))
	o.AppendUint32(uint32(len(l.ExtraRegisters)))
	o.AppendInt32(l.InputQubits)
	if err := writeRegisters(o, l.ExtraRegisters); err != nil {
		return errors.Wrap(err, "layout")
	}
	for _, bit := range l.InitialLayout {
		o.AppendInt32(bit.Index)
		if bit.InRegister {
			o.AppendInt32(int32(len(bit.Register)))
			o.AppendBytes([]byte(bit.Register))
		} else {
			o.AppendInt32(-1)
		}
	}
	for _, x := range l.InputMapping {
		o.AppendUint32(x)
	}
	for _, x := range l.FinalLayout {
		o.AppendUint32(x)
	}
	return nil
}
