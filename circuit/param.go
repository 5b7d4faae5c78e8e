package circuit

import (
	"strconv"

	"github.com/google/uuid"

	"github.com/Qiskit/qiskit-ibm-runtime-go/utils"
)

// Param is an instruction parameter or a global phase value. Repr renders
// the value the way Python prints it.
type Param interface {
	Repr() string
}

type Float float64

func (f Float) Repr() string { return utils.ReprFloat(float64(f)) }

type Int int64

func (i Int) Repr() string { return strconv.FormatInt(int64(i), 10) }

type Complex complex128

func (c Complex) Repr() string { return utils.ReprComplex(complex128(c)) }

type Str string

func (s Str) Repr() string { return utils.ReprString(string(s)) }

// Null is the None value.
type Null struct{}

func (Null) Repr() string { return "None" }

// Parameter is an unbound symbolic parameter. Two parameters with the same
// name are distinct unless their UUIDs match.
type Parameter struct {
	Name string
	UUID uuid.UUID
}

// NewParameter creates a parameter with a fresh UUID.
func NewParameter(name string) *Parameter {
	return &Parameter{Name: name, UUID: uuid.New()}
}

func (p *Parameter) Repr() string { return "Parameter(" + p.Name + ")" }

// ParamsRepr renders a parameter list as a Python list.
func ParamsRepr(params []Param) string {
	items := make([]string, len(params))
	for i, p := range params {
		items[i] = p.Repr()
	}
	return utils.ReprList(items)
}

// AsFloat returns the numeric value of p when it has one.
func AsFloat(p Param) (float64, bool) {
	switch v := p.(type) {
	case Float:
		return float64(v), true
	case Int:
		return float64(v), true
	}
	return 0, false
}
