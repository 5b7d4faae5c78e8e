package qpy

import (
	"math"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/Qiskit/qiskit-ibm-runtime-go/circuit"
	"github.com/Qiskit/qiskit-ibm-runtime-go/utils"
)

func decodeValue(typeKey byte, data []byte) (circuit.Param, error) {
	in := utils.NewInputBuf(data)
	var p circuit.Param
	switch typeKey {
	case typeInteger:
		p = circuit.Int(in.ReadInt64())
	case typeFloat:
		p = circuit.Float(in.ReadFloat64())
	case typeComplex:
		re := in.ReadFloat64()
		im := in.ReadFloat64()
		p = circuit.Complex(complex(re, im))
	case typeString:
		if !utf8.Valid(data) {
			return nil, errors.Wrap(ErrInvalidValue, "string is not valid UTF-8")
		}
		return circuit.Str(data), nil
	case typeNull:
		p = circuit.Null{}
	case typeParameter:
		nameSize := int(in.ReadUint16())
		id, err := uuid.FromBytes(in.ReadBytes(16))
		if in.Err() == nil && err != nil {
			return nil, errors.Wrap(err, "parameter uuid")
		}
		p = &circuit.Parameter{Name: in.ReadString(nameSize), UUID: id}
	default:
		return nil, errors.Wrapf(ErrUnsupportedType, "type key %q", typeKey)
	}
	if err := in.Err(); err != nil {
		return nil, errors.Wrapf(ErrInvalidValue, "type %q: %v", typeKey, err)
	}
	if !in.IsEnd() {
		return nil, errors.Wrapf(ErrInvalidValue, "type %q: %d unused bytes", typeKey, in.Remaining())
	}
	return p, nil
}

func encodeValue(p circuit.Param) (byte, []byte, error) {
	o := utils.OutputBuf{}
	var key byte
	switch v := p.(type) {
	case circuit.Int:
		key = typeInteger
		o.AppendInt64(int64(v))
	case circuit.Float:
		key = typeFloat
		o.AppendFloat64(float64(v))
	case circuit.Complex:
		key = typeComplex
		o.AppendFloat64(real(complex128(v)))
		o.AppendFloat64(imag(complex128(v)))
	case circuit.Str:
		key = typeString
		o.AppendBytes([]byte(v))
	case circuit.Null, nil:
		key = typeNull
	case *circuit.Parameter:
		if len(v.Name) > math.MaxUint16 {
			return 0, nil, errors.Errorf("parameter name too long: %d bytes", len(v.Name))
		}
		key = typeParameter
		o.AppendUint16(uint16(len(v.Name)))
		o.AppendBytes(v.UUID[:])
		o.AppendBytes([]byte(v.Name))
	default:
		return 0, nil, errors.Wrapf(ErrUnsupportedType, "%T", p)
	}
	return key, o.Bytes(), nil
}
