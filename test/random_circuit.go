package test

import (
	"math/rand"
	"slices"
	"strconv"

	"github.com/google/uuid"

	"github.com/Qiskit/qiskit-ibm-runtime-go/circuit"
)

type RandRange struct {
	L int
	R int
}

func (rr *RandRange) sample(r *rand.Rand) int {
	return r.Intn(rr.R-rr.L+1) + rr.L
}

// RandomCircuitConfig controls RandomCircuit. Percentages are per
// instruction, except RegisterPercent and LayoutPercent which are per
// circuit.
type RandomCircuitConfig struct {
	Seed             int64
	NumQubits        RandRange
	NumClbits        RandRange
	NumInsn          RandRange
	RegisterPercent  int
	LayoutPercent    int
	ConditionPercent int
	LabelPercent     int
	SymbolPercent    int
	// ExcludeGates lists instruction names never generated.
	ExcludeGates []string
}

// RandomCircuit builds a circuit from the standard gate table. The result
// only depends on the config.
func RandomCircuit(conf *RandomCircuitConfig) *circuit.Circuit {
	r := rand.New(rand.NewSource(conf.Seed))
	nq := uint32(conf.NumQubits.sample(r))
	nc := uint32(conf.NumClbits.sample(r))
	c := circuit.New(nq, nc)
	c.Name = "random_" + strconv.FormatInt(conf.Seed, 10)
	c.GlobalPhase = circuit.Float(r.Float64())
	c.Metadata["seed"] = strconv.FormatInt(conf.Seed, 10)

	hasCreg := false
	if r.Intn(100) < conf.RegisterPercent {
		if _, err := c.AddRegister(circuit.QuantumRegister, "q", seq(nq)); err != nil {
			panic(err)
		}
		if nc > 0 {
			if _, err := c.AddRegister(circuit.ClassicalRegister, "c", seq(nc)); err != nil {
				panic(err)
			}
			hasCreg = true
		}
	}

	var gates []circuit.GateInfo
	for _, g := range circuit.StandardGates() {
		if g.NumQubits > int(nq) || (g.NumClbits > 0 && nc == 0) {
			continue
		}
		if g.NumQubits < 0 && nq == 0 {
			continue
		}
		if slices.Contains(conf.ExcludeGates, g.Name) {
			continue
		}
		gates = append(gates, g)
	}

	n := conf.NumInsn.sample(r)
	for i := 0; i < n; i++ {
		g := gates[r.Intn(len(gates))]
		k := g.NumQubits
		if k < 0 {
			k = r.Intn(int(nq)) + 1
		}
		in := circuit.Instruction{Name: g.Name}
		for _, q := range r.Perm(int(nq))[:k] {
			in.Qubits = append(in.Qubits, uint32(q))
		}
		for j := 0; j < g.NumClbits; j++ {
			in.Clbits = append(in.Clbits, uint32(r.Intn(int(nc))))
		}
		for j := 0; j < g.NumParams; j++ {
			in.Params = append(in.Params, randomParam(r, conf.SymbolPercent, i, j))
		}
		if r.Intn(100) < conf.LabelPercent {
			in.Label = "l" + strconv.Itoa(i)
		}
		if nc > 0 && r.Intn(100) < conf.ConditionPercent {
			if hasCreg && r.Intn(2) == 0 {
				in.Condition = &circuit.Condition{Register: "c", Value: r.Int63n(16)}
			} else {
				in.Condition = &circuit.Condition{Clbit: r.Intn(int(nc)), IsClbit: true, Value: int64(r.Intn(2))}
			}
		}
		if err := c.Append(in); err != nil {
			panic(err)
		}
	}

	if r.Intn(100) < conf.LayoutPercent {
		c.Layout = randomLayout(r, c, hasCreg)
	}
	return c
}

func randomParam(r *rand.Rand, symbolPercent, i, j int) circuit.Param {
	switch {
	case r.Intn(100) < symbolPercent:
		var id uuid.UUID
		r.Read(id[:])
		return &circuit.Parameter{Name: "θ" + strconv.Itoa(i) + "_" + strconv.Itoa(j), UUID: id}
	case r.Intn(4) == 0:
		return circuit.Int(r.Int63n(1000) - 500)
	}
	return circuit.Float(r.NormFloat64())
}

func randomLayout(r *rand.Rand, c *circuit.Circuit, named bool) *circuit.Layout {
	nq := int(c.NumQubits)
	l := &circuit.Layout{InputQubits: int32(nq)}
	perm := r.Perm(nq)
	l.InitialLayout = make([]circuit.LayoutBit, nq)
	for i, p := range perm {
		bit := circuit.LayoutBit{Index: int32(p)}
		if named {
			bit.Register = "q"
			bit.InRegister = true
		}
		l.InitialLayout[i] = bit
	}
	if r.Intn(2) == 0 {
		l.InputMapping = make([]uint32, nq)
		for i, p := range perm {
			l.InputMapping[p] = uint32(i)
		}
	}
	if r.Intn(2) == 0 {
		l.FinalLayout = make([]uint32, nq)
		for i, p := range r.Perm(nq) {
			l.FinalLayout[i] = uint32(p)
		}
	}
	return l
}

func seq(n uint32) []int64 {
	out := make([]int64, n)
	for i := range out {
		out[i] = int64(i)
	}
	return out
}
