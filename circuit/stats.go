package circuit

import (
	"sort"

	"github.com/Qiskit/qiskit-ibm-runtime-go/utils"
)

type Stats struct {
	// number of qubits plus number of clbits
	Width int
	// number of non-directive instructions
	Size int
	// length of the critical path over all wires, directives excluded
	Depth int
	// number of non-directive instructions acting on two or more qubits
	NbNonlocalGates int
	// instruction counts by name, most frequent first
	Ops []utils.Count
}

// CountOps counts instructions by name. The result is sorted by count in
// descending order; equal counts keep the order of first appearance.
func (c *Circuit) CountOps() []utils.Count {
	index := make(map[string]int)
	counts := []utils.Count{}
	for i := range c.Instructions {
		name := c.Instructions[i].Name
		if j, ok := index[name]; ok {
			counts[j].Count++
			continue
		}
		index[name] = len(counts)
		counts = append(counts, utils.Count{Name: name, Count: 1})
	}
	sort.SliceStable(counts, func(i, j int) bool {
		return counts[i].Count > counts[j].Count
	})
	return counts
}

func (c *Circuit) Width() int {
	return int(c.NumQubits) + int(c.NumClbits)
}

func isDirective(in *Instruction) bool {
	g, ok := in.Info()
	return ok && g.Directive
}

func (c *Circuit) Size() int {
	n := 0
	for i := range c.Instructions {
		if !isDirective(&c.Instructions[i]) {
			n++
		}
	}
	return n
}

// Depth is the longest path of non-directive instructions through the
// circuit, counting both qubit and clbit wires.
func (c *Circuit) Depth() int {
	qlevel := make([]int, c.NumQubits)
	clevel := make([]int, c.NumClbits)
	depth := 0
	for i := range c.Instructions {
		in := &c.Instructions[i]
		if isDirective(in) {
			continue
		}
		level := 0
		for _, q := range in.Qubits {
			level = max(level, qlevel[q])
		}
		for _, cl := range in.Clbits {
			level = max(level, clevel[cl])
		}
		cond := c.conditionBits(in.Condition)
		for _, cl := range cond {
			level = max(level, clevel[cl])
		}
		level++
		for _, q := range in.Qubits {
			qlevel[q] = level
		}
		for _, cl := range in.Clbits {
			clevel[cl] = level
		}
		for _, cl := range cond {
			clevel[cl] = level
		}
		depth = max(depth, level)
	}
	return depth
}

// conditionBits lists the in-circuit clbits a condition reads. A register
// condition covers every bit of the classical register of that name.
func (c *Circuit) conditionBits(cond *Condition) []int {
	if cond == nil {
		return nil
	}
	if cond.IsClbit {
		if cond.Clbit < 0 || cond.Clbit >= int(c.NumClbits) {
			return nil
		}
		return []int{cond.Clbit}
	}
	for i := range c.Registers {
		reg := &c.Registers[i]
		if reg.Kind != ClassicalRegister || reg.Name != cond.Register {
			continue
		}
		bits := make([]int, 0, len(reg.Bits))
		for _, b := range reg.Bits {
			if b >= 0 && b < int64(c.NumClbits) {
				bits = append(bits, int(b))
			}
		}
		return bits
	}
	return nil
}

func (c *Circuit) NumNonlocalGates() int {
	n := 0
	for i := range c.Instructions {
		in := &c.Instructions[i]
		if len(in.Qubits) > 1 && !isDirective(in) {
			n++
		}
	}
	return n
}

func (c *Circuit) GetStats() Stats {
	return Stats{
		Width:           c.Width(),
		Size:            c.Size(),
		Depth:           c.Depth(),
		NbNonlocalGates: c.NumNonlocalGates(),
		Ops:             c.CountOps(),
	}
}
