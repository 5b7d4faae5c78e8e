package test

import (
	"testing"

	"github.com/Qiskit/qiskit-ibm-runtime-go/qpy"
)

func testRandomCircuit(t *testing.T, conf *RandomCircuitConfig, seedL, seedR int64, opts qpy.DumpOptions) {
	a := NewAssert(t)
	for seed := seedL; seed <= seedR; seed++ {
		conf.Seed = seed
		c := RandomCircuit(conf)
		a.RoundTrip(c, opts)
	}
}

func TestRandomCircuit1(t *testing.T) {
	testRandomCircuit(t, &RandomCircuitConfig{
		NumQubits:        RandRange{1, 8},
		NumClbits:        RandRange{0, 8},
		NumInsn:          RandRange{0, 50},
		RegisterPercent:  50,
		LayoutPercent:    30,
		ConditionPercent: 10,
		LabelPercent:     10,
		SymbolPercent:    20,
	}, 1, 300, qpy.DumpOptions{})
}

func TestRandomCircuit2(t *testing.T) {
	testRandomCircuit(t, &RandomCircuitConfig{
		NumQubits: RandRange{50, 100},
		NumClbits: RandRange{50, 100},
		NumInsn:   RandRange{1000, 2000},
	}, 11, 20, qpy.DumpOptions{Version: 12})
}

func TestRandomCircuit3(t *testing.T) {
	testRandomCircuit(t, &RandomCircuitConfig{
		NumQubits:        RandRange{4, 4},
		NumClbits:        RandRange{4, 4},
		NumInsn:          RandRange{10, 10},
		RegisterPercent:  100,
		LayoutPercent:    100,
		ConditionPercent: 50,
		LabelPercent:     50,
		SymbolPercent:    50,
	}, 11, 60, qpy.DumpOptions{Version: 10})
}

func TestRandomCircuitDeterministic(t *testing.T) {
	conf := &RandomCircuitConfig{
		Seed:      7,
		NumQubits: RandRange{3, 6},
		NumClbits: RandRange{3, 6},
		NumInsn:   RandRange{20, 40},
	}
	a, err := qpy.Serialize(qpy.DumpOptions{}, RandomCircuit(conf))
	if err != nil {
		t.Fatal(err)
	}
	b, err := qpy.Serialize(qpy.DumpOptions{}, RandomCircuit(conf))
	if err != nil {
		t.Fatal(err)
	}
	if string(a) != string(b) {
		t.Fatal("same seed produced different circuits")
	}
}
