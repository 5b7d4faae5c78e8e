package circuit

import "math"

// CZLayers builds a numQubits wide circuit with layers repetitions of CZ on
// every even pair (j, j+1), then measures each qubit into the clbit of the
// same index of the classical register "meas".
func CZLayers(numQubits, layers uint32) (*Circuit, error) {
	c := New(numQubits, numQubits)
	if _, err := c.AddRegister(ClassicalRegister, "meas", bitRange(numQubits)); err != nil {
		return nil, err
	}
	for l := uint32(0); l < layers; l++ {
		for j := uint32(0); j+1 < numQubits; j += 2 {
			if err := c.Gate("cz", []uint32{j, j + 1}); err != nil {
				return nil, err
			}
		}
	}
	for q := uint32(0); q < numQubits; q++ {
		if err := c.Measure(q, q); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// GHZ builds an n qubit GHZ state preparation using only rz, sx and cz, so
// the result runs on IBM backends without transpilation.
func GHZ(n uint32) (*Circuit, error) {
	c := New(n, n)
	c.Name = "ghz"
	if _, err := c.AddRegister(QuantumRegister, "q", bitRange(n)); err != nil {
		return nil, err
	}
	if _, err := c.AddRegister(ClassicalRegister, "meas", bitRange(n)); err != nil {
		return nil, err
	}
	h := func(q uint32) error {
		if err := c.Gate("rz", []uint32{q}, Float(math.Pi/2)); err != nil {
			return err
		}
		if err := c.Gate("sx", []uint32{q}); err != nil {
			return err
		}
		return c.Gate("rz", []uint32{q}, Float(math.Pi/2))
	}
	if n == 0 {
		return c, nil
	}
	if err := h(0); err != nil {
		return nil, err
	}
	for q := uint32(1); q < n; q++ {
		if err := h(q); err != nil {
			return nil, err
		}
		if err := c.Gate("cz", []uint32{q - 1, q}); err != nil {
			return nil, err
		}
		if err := h(q); err != nil {
			return nil, err
		}
	}
	if err := c.Barrier(); err != nil {
		return nil, err
	}
	for q := uint32(0); q < n; q++ {
		if err := c.Measure(q, q); err != nil {
			return nil, err
		}
	}
	return c, nil
}

func bitRange(n uint32) []int64 {
	bits := make([]int64, n)
	for i := range bits {
		bits[i] = int64(i)
	}
	return bits
}
