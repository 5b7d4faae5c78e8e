package circuit

// GateInfo describes a standard library operation.
type GateInfo struct {
	// Name is the instruction name, e.g. "cz".
	Name string
	// Class is the class name recorded in QPY files, e.g. "CZGate".
	Class string
	// NumQubits is -1 for variadic operations (barrier).
	NumQubits int
	NumClbits int
	NumParams int
	// NumCtrlQubits is non-zero for controlled gates.
	NumCtrlQubits int
	// Directive operations are skipped by Size and Depth.
	Directive bool
}

// IsControlled reports whether QPY records control qubits for the gate.
func (g *GateInfo) IsControlled() bool {
	return g.NumCtrlQubits > 0
}

// DefaultCtrlState is the all-ones control state of a controlled gate.
func (g *GateInfo) DefaultCtrlState() uint32 {
	if g.NumCtrlQubits == 0 {
		return 0
	}
	return uint32(1)<<g.NumCtrlQubits - 1
}

var standardGates = []GateInfo{
	{Name: "id", Class: "IGate", NumQubits: 1},
	{Name: "x", Class: "XGate", NumQubits: 1},
	{Name: "y", Class: "YGate", NumQubits: 1},
	{Name: "z", Class: "ZGate", NumQubits: 1},
	{Name: "h", Class: "HGate", NumQubits: 1},
	{Name: "s", Class: "SGate", NumQubits: 1},
	{Name: "sdg", Class: "SdgGate", NumQubits: 1},
	{Name: "t", Class: "TGate", NumQubits: 1},
	{Name: "tdg", Class: "TdgGate", NumQubits: 1},
	{Name: "sx", Class: "SXGate", NumQubits: 1},
	{Name: "sxdg", Class: "SXdgGate", NumQubits: 1},
	{Name: "rx", Class: "RXGate", NumQubits: 1, NumParams: 1},
	{Name: "ry", Class: "RYGate", NumQubits: 1, NumParams: 1},
	{Name: "rz", Class: "RZGate", NumQubits: 1, NumParams: 1},
	{Name: "p", Class: "PhaseGate", NumQubits: 1, NumParams: 1},
	{Name: "r", Class: "RGate", NumQubits: 1, NumParams: 2},
	{Name: "u", Class: "UGate", NumQubits: 1, NumParams: 3},
	{Name: "u1", Class: "U1Gate", NumQubits: 1, NumParams: 1},
	{Name: "u2", Class: "U2Gate", NumQubits: 1, NumParams: 2},
	{Name: "u3", Class: "U3Gate", NumQubits: 1, NumParams: 3},

	{Name: "cx", Class: "CXGate", NumQubits: 2, NumCtrlQubits: 1},
	{Name: "cy", Class: "CYGate", NumQubits: 2, NumCtrlQubits: 1},
	{Name: "cz", Class: "CZGate", NumQubits: 2, NumCtrlQubits: 1},
	{Name: "ch", Class: "CHGate", NumQubits: 2, NumCtrlQubits: 1},
	{Name: "cs", Class: "CSGate", NumQubits: 2, NumCtrlQubits: 1},
	{Name: "csdg", Class: "CSdgGate", NumQubits: 2, NumCtrlQubits: 1},
	{Name: "csx", Class: "CSXGate", NumQubits: 2, NumCtrlQubits: 1},
	{Name: "cp", Class: "CPhaseGate", NumQubits: 2, NumParams: 1, NumCtrlQubits: 1},
	{Name: "crx", Class: "CRXGate", NumQubits: 2, NumParams: 1, NumCtrlQubits: 1},
	{Name: "cry", Class: "CRYGate", NumQubits: 2, NumParams: 1, NumCtrlQubits: 1},
	{Name: "crz", Class: "CRZGate", NumQubits: 2, NumParams: 1, NumCtrlQubits: 1},
	{Name: "cu", Class: "CUGate", NumQubits: 2, NumParams: 4, NumCtrlQubits: 1},
	{Name: "cu1", Class: "CU1Gate", NumQubits: 2, NumParams: 1, NumCtrlQubits: 1},
	{Name: "cu3", Class: "CU3Gate", NumQubits: 2, NumParams: 3, NumCtrlQubits: 1},
	{Name: "swap", Class: "SwapGate", NumQubits: 2},
	{Name: "iswap", Class: "iSwapGate", NumQubits: 2},
	{Name: "dcx", Class: "DCXGate", NumQubits: 2},
	{Name: "ecr", Class: "ECRGate", NumQubits: 2},
	{Name: "rxx", Class: "RXXGate", NumQubits: 2, NumParams: 1},
	{Name: "ryy", Class: "RYYGate", NumQubits: 2, NumParams: 1},
	{Name: "rzz", Class: "RZZGate", NumQubits: 2, NumParams: 1},
	{Name: "rzx", Class: "RZXGate", NumQubits: 2, NumParams: 1},
	{Name: "xx_minus_yy", Class: "XXMinusYYGate", NumQubits: 2, NumParams: 2},
	{Name: "xx_plus_yy", Class: "XXPlusYYGate", NumQubits: 2, NumParams: 2},

	{Name: "ccx", Class: "CCXGate", NumQubits: 3, NumCtrlQubits: 2},
	{Name: "ccz", Class: "CCZGate", NumQubits: 3, NumCtrlQubits: 2},
	{Name: "cswap", Class: "CSwapGate", NumQubits: 3, NumCtrlQubits: 1},
	{Name: "rccx", Class: "RCCXGate", NumQubits: 3},
	{Name: "mcx", Class: "C3XGate", NumQubits: 4, NumCtrlQubits: 3},
	{Name: "c3sx", Class: "C3SXGate", NumQubits: 4, NumCtrlQubits: 3},
	{Name: "rcccx", Class: "RC3XGate", NumQubits: 4},

	{Name: "global_phase", Class: "GlobalPhaseGate", NumQubits: 0, NumParams: 1},
	{Name: "measure", Class: "Measure", NumQubits: 1, NumClbits: 1},
	{Name: "reset", Class: "Reset", NumQubits: 1},
	{Name: "delay", Class: "Delay", NumQubits: 1, NumParams: 1},
	{Name: "barrier", Class: "Barrier", NumQubits: -1, Directive: true},
}

var (
	gatesByName  = make(map[string]*GateInfo, len(standardGates))
	gatesByClass = make(map[string]*GateInfo, len(standardGates))
)

func init() {
	for i := range standardGates {
		g := &standardGates[i]
		gatesByName[g.Name] = g
		gatesByClass[g.Class] = g
	}
}

// LookupGate finds a standard operation by instruction name.
func LookupGate(name string) (*GateInfo, bool) {
	g, ok := gatesByName[name]
	return g, ok
}

// LookupClass finds a standard operation by its QPY class name.
func LookupClass(class string) (*GateInfo, bool) {
	g, ok := gatesByClass[class]
	return g, ok
}

// StandardGates returns the table of known operations.
func StandardGates() []GateInfo {
	out := make([]GateInfo, len(standardGates))
	copy(out, standardGates)
	return out
}
