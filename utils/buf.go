package utils

import (
	"encoding/binary"
	"math"

	"github.com/pkg/errors"
)

// ErrTruncated is reported by InputBuf when a read runs past the end of the
// buffer.
var ErrTruncated = errors.New("unexpected end of data")

// OutputBuf accumulates big-endian encoded values.
type OutputBuf struct {
	buf []byte
}

func NewOutputBuf(capacity int) *OutputBuf {
	return &OutputBuf{buf: make([]byte, 0, capacity)}
}

func (o *OutputBuf) AppendUint8(x uint8) {
	o.buf = append(o.buf, x)
}

func (o *OutputBuf) AppendBool(x bool) {
	if x {
		o.buf = append(o.buf, 1)
	} else {
		o.buf = append(o.buf, 0)
	}
}

func (o *OutputBuf) AppendUint16(x uint16) {
	o.buf = binary.BigEndian.AppendUint16(o.buf, x)
}

func (o *OutputBuf) AppendUint32(x uint32) {
	o.buf = binary.BigEndian.AppendUint32(o.buf, x)
}

func (o *OutputBuf) AppendInt32(x int32) {
	o.buf = binary.BigEndian.AppendUint32(o.buf, uint32(x))
}

func (o *OutputBuf) AppendUint64(x uint64) {
	o.buf = binary.BigEndian.AppendUint64(o.buf, x)
}

func (o *OutputBuf) AppendInt64(x int64) {
	o.buf = binary.BigEndian.AppendUint64(o.buf, uint64(x))
}

func (o *OutputBuf) AppendFloat64(x float64) {
	o.buf = binary.BigEndian.AppendUint64(o.buf, math.Float64bits(x))
}

func (o *OutputBuf) AppendBytes(x []byte) {
	o.buf = append(o.buf, x...)
}

func (o *OutputBuf) Len() int {
	return len(o.buf)
}

func (o *OutputBuf) Bytes() []byte {
	return o.buf
}

// InputBuf reads big-endian values from a byte slice. Reads past the end
// record ErrTruncated and return zero values; callers check Err once per
// section instead of after every field.
type InputBuf struct {
	buf []byte
	off int
	err error
}

func NewInputBuf(buf []byte) *InputBuf {
	return &InputBuf{buf: buf}
}

func (i *InputBuf) take(n int) []byte {
	if i.err != nil {
		return nil
	}
	if n < 0 || len(i.buf)-i.off < n {
		i.err = errors.Wrapf(ErrTruncated, "need %d bytes at offset %d, have %d",
			n, i.off, len(i.buf)-i.off)
		return nil
	}
	b := i.buf[i.off : i.off+n]
	i.off += n
	return b
}

func (i *InputBuf) ReadUint8() uint8 {
	b := i.take(1)
	if b == nil {
		return 0
	}
	return b[0]
}

func (i *InputBuf) ReadBool() bool {
	return i.ReadUint8() != 0
}

func (i *InputBuf) ReadUint16() uint16 {
	b := i.take(2)
	if b == nil {
		return 0
	}
	return binary.BigEndian.Uint16(b)
}

func (i *InputBuf) ReadUint32() uint32 {
	b := i.take(4)
	if b == nil {
		return 0
	}
	return binary.BigEndian.Uint32(b)
}

func (i *InputBuf) ReadInt32() int32 {
	return int32(i.ReadUint32())
}

func (i *InputBuf) ReadUint64() uint64 {
	b := i.take(8)
	if b == nil {
		return 0
	}
	return binary.BigEndian.Uint64(b)
}

func (i *InputBuf) ReadInt64() int64 {
	return int64(i.ReadUint64())
}

func (i *InputBuf) ReadFloat64() float64 {
	return math.Float64frombits(i.ReadUint64())
}

// ReadBytes returns a copy of the next n bytes.
func (i *InputBuf) ReadBytes(n int) []byte {
	b := i.take(n)
	if b == nil {
		return nil
	}
	out := make([]byte, n)
	copy(out, b)
	return out
}

func (i *InputBuf) ReadString(n int) string {
	return string(i.take(n))
}

// Err returns the first read error, if any.
func (i *InputBuf) Err() error {
	return i.err
}

// Offset is the number of bytes consumed so far.
func (i *InputBuf) Offset() int {
	return i.off
}

func (i *InputBuf) Remaining() int {
	return len(i.buf) - i.off
}

func (i *InputBuf) IsEnd() bool {
	return i.off == len(i.buf)
}
