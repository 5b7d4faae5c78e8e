package main

import (
	"context"
	"io"
	"os"
	"strconv"

	"github.com/markkurossi/tabulate"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	qkrt "github.com/Qiskit/qiskit-ibm-runtime-go"
	"github.com/Qiskit/qiskit-ibm-runtime-go/circuit"
	"github.com/Qiskit/qiskit-ibm-runtime-go/qpy"
	"github.com/Qiskit/qiskit-ibm-runtime-go/runtime"
	"github.com/Qiskit/qiskit-ibm-runtime-go/utils"
)

const defaultQPYFile = "test.qpy"

var (
	loadCount int
	loadTable bool

	genQubits uint32
	genLayers uint32
	genGHZ    uint32

	statsLimit int

	payloadBackend string
	payloadShots   int
	payloadOut     string
	payloadDecode  bool
)

var loadCmd = &cobra.Command{
	Use:   "load [file]",
	Short: "Load a QPY file and print instruction params and operation counts",
	Long: `Loads the first circuit of a QPY file, prints the params of its first
instructions one list per line, then its operation counts.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := fileArg(args)
		circuits, err := qkrt.LoadQPYFile(path)
		if err != nil {
			return err
		}
		if len(circuits) == 0 {
			return errors.Errorf("%s holds no circuits", path)
		}
		c := circuits[0]
		logger.Debug("loaded qpy file",
			zap.String("file", path),
			zap.Int("circuits", len(circuits)),
			zap.Int("instructions", len(c.Instructions)))
		out := cmd.OutOrStdout()
		if err := qkrt.WriteReport(out, c, loadCount); err != nil {
			return err
		}
		if loadTable {
			printCounts(out, c.CountOps())
		}
		return nil
	},
}

var generateCmd = &cobra.Command{
	Use:   "generate [file]",
	Short: "Write a test circuit to a QPY file",
	Long: `Writes a circuit of CZ layers on even qubit pairs followed by a measurement
of every qubit. With --ghz N a GHZ circuit on N qubits is written instead.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := fileArg(args)
		var c *circuit.Circuit
		var err error
		if genGHZ > 0 {
			c, err = circuit.GHZ(genGHZ)
		} else {
			c, err = circuit.CZLayers(genQubits, genLayers)
		}
		if err != nil {
			return err
		}
		opts, err := cfg.DumpOptions()
		if err != nil {
			return err
		}
		if err := qkrt.GenerateQPYFile(path, opts, c); err != nil {
			return err
		}
		logger.Info("wrote qpy file",
			zap.String("file", path),
			zap.Uint8("version", opts.Version),
			zap.Int("instructions", len(c.Instructions)))
		return nil
	},
}

var statsCmd = &cobra.Command{
	Use:   "stats file...",
	Short: "Print width, size and depth of every circuit in QPY files",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		loaded, err := qpy.LoadFiles(context.Background(), args, statsLimit)
		if err != nil {
			return err
		}
		tab := tabulate.New(tabulate.Unicode)
		tab.Header("File").SetAlign(tabulate.ML)
		tab.Header("Circuit").SetAlign(tabulate.MR)
		tab.Header("Name").SetAlign(tabulate.ML)
		tab.Header("Width").SetAlign(tabulate.MR)
		tab.Header("Size").SetAlign(tabulate.MR)
		tab.Header("Depth").SetAlign(tabulate.MR)
		tab.Header("Nonlocal").SetAlign(tabulate.MR)
		for i, circuits := range loaded {
			for j, c := range circuits {
				st := c.GetStats()
				row := tab.Row()
				row.Column(args[i])
				row.Column(strconv.Itoa(j))
				row.Column(c.Name)
				row.Column(strconv.Itoa(st.Width))
				row.Column(strconv.Itoa(st.Size))
				row.Column(strconv.Itoa(st.Depth))
				row.Column(strconv.Itoa(st.NbNonlocalGates))
			}
		}
		tab.Print(cmd.OutOrStdout())
		return nil
	},
}

var payloadCmd = &cobra.Command{
	Use:   "payload [file]",
	Short: "Print the sampler job request for a QPY file",
	Long: `Encodes the first circuit of a QPY file as a sampler job request, the
JSON body submit would send. With --decode the argument is a job request
and the report of its circuit is printed instead.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := fileArg(args)
		if payloadDecode {
			f, err := os.Open(path)
			if err != nil {
				return errors.Wrap(err, "open payload")
			}
			defer f.Close()
			_, circuits, err := runtime.DecodeSamplerPayload(f)
			if err != nil {
				return err
			}
			for _, c := range circuits {
				if err := qkrt.WriteReport(cmd.OutOrStdout(), c, 0); err != nil {
					return err
				}
			}
			return nil
		}

		circuits, err := qkrt.LoadQPYFile(path)
		if err != nil {
			return err
		}
		if len(circuits) == 0 {
			return errors.Errorf("%s holds no circuits", path)
		}
		opts := cfg.SamplerOptions()
		if payloadBackend != "" {
			opts.Backend = payloadBackend
		}
		if payloadShots > 0 {
			opts.Shots = payloadShots
		}
		var w io.Writer = cmd.OutOrStdout()
		if payloadOut != "" {
			f, err := os.Create(payloadOut)
			if err != nil {
				return errors.Wrap(err, "create payload file")
			}
			defer f.Close()
			w = f
		}
		return qkrt.WriteSamplerPayload(w, circuits[0], opts)
	},
}

func fileArg(args []string) string {
	if len(args) > 0 {
		return args[0]
	}
	return defaultQPYFile
}

func printCounts(w io.Writer, counts []utils.Count) {
	tab := tabulate.New(tabulate.Unicode)
	tab.Header("Operation").SetAlign(tabulate.ML)
	tab.Header("Count").SetAlign(tabulate.MR)
	for _, c := range counts {
		row := tab.Row()
		row.Column(c.Name)
		row.Column(strconv.Itoa(c.Count))
	}
	tab.Print(w)
}

func init() {
	loadCmd.Flags().IntVar(&loadCount, "count", 3, "Number of instructions whose params are printed")
	loadCmd.Flags().BoolVar(&loadTable, "table", false, "Also print the operation counts as a table")

	generateCmd.Flags().Uint32Var(&genQubits, "qubits", 200, "Number of qubits and clbits")
	generateCmd.Flags().Uint32Var(&genLayers, "layers", 1000, "Number of CZ layers")
	generateCmd.Flags().Uint32Var(&genGHZ, "ghz", 0, "Write a GHZ circuit on this many qubits instead")

	statsCmd.Flags().IntVar(&statsLimit, "jobs", 4, "Files loaded in parallel")

	payloadCmd.Flags().StringVar(&payloadBackend, "backend", "", "Backend name (default from config)")
	payloadCmd.Flags().IntVar(&payloadShots, "shots", 0, "Shots (default from config)")
	payloadCmd.Flags().StringVarP(&payloadOut, "output", "o", "", "Write the payload to this file")
	payloadCmd.Flags().BoolVar(&payloadDecode, "decode", false, "Decode a payload file instead")
}
