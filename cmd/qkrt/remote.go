package main

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/markkurossi/tabulate"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	qkrt "github.com/Qiskit/qiskit-ibm-runtime-go"
	"github.com/Qiskit/qiskit-ibm-runtime-go/runtime"
)

var (
	backendsStatus bool

	submitBackend string
	submitShots   int
	submitWait    bool
	submitNoCheck bool

	resultsRegister string
	resultsRaw      bool
)

var backendsCmd = &cobra.Command{
	Use:   "backends",
	Short: "List the backends visible to the account",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := newService()
		if err != nil {
			return err
		}
		ctx := cmd.Context()
		backends, err := svc.Backends(ctx)
		if err != nil {
			return err
		}
		tab := tabulate.New(tabulate.Unicode)
		tab.Header("Backend").SetAlign(tabulate.ML)
		tab.Header("Instance").SetAlign(tabulate.ML)
		tab.Header("Qubits").SetAlign(tabulate.MR)
		if backendsStatus {
			tab.Header("Status").SetAlign(tabulate.ML)
			tab.Header("Queue").SetAlign(tabulate.MR)
		}
		for _, b := range backends {
			row := tab.Row()
			row.Column(b.Name)
			row.Column(b.InstanceName)
			row.Column(strconv.FormatUint(uint64(b.NumQubits), 10))
			if backendsStatus {
				st, err := svc.BackendStatus(ctx, b)
				if err != nil {
					return err
				}
				row.Column(st.Status)
				row.Column(strconv.Itoa(st.LengthQueue))
			}
		}
		tab.Print(cmd.OutOrStdout())
		return nil
	},
}

var submitCmd = &cobra.Command{
	Use:   "submit [file]",
	Short: "Submit the first circuit of a QPY file as a sampler job",
	Long: `Submits the first circuit of a QPY file to the sampler primitive. Without
--backend and without a configured backend the least busy one is used. The
circuit must already use only operations the backend supports.`,
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
		svc, err := newService()
		if err != nil {
			return err
		}
		opts := cfg.SamplerOptions()
		if submitBackend != "" {
			opts.Backend = submitBackend
		}
		if submitShots > 0 {
			opts.Shots = submitShots
		}
		opts.SkipISACheck = submitNoCheck
		ctx := cmd.Context()
		job, err := svc.SubmitSampler(ctx, circuits[0], opts)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), job.ID)
		if !submitWait {
			return nil
		}
		st, err := svc.WaitJob(ctx, job, cfg.Sampler.PollInterval)
		if err != nil {
			return err
		}
		logger.Info("job finished", zap.String("job", job.ID), zap.Stringer("status", st))
		if st != runtime.JobCompleted {
			return errors.Errorf("job %s %s", job.ID, st)
		}
		return printResults(cmd, svc, job)
	},
}

var statusCmd = &cobra.Command{
	Use:   "status job-id",
	Short: "Print the status of a job",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := newService()
		if err != nil {
			return err
		}
		st, err := svc.JobStatus(cmd.Context(), &runtime.Job{ID: args[0]})
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s %d\n", st, uint32(st))
		return nil
	},
}

var resultsCmd = &cobra.Command{
	Use:   "results job-id",
	Short: "Print the measured counts of a completed job",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := newService()
		if err != nil {
			return err
		}
		return printResults(cmd, svc, &runtime.Job{ID: args[0]})
	},
}

func printResults(cmd *cobra.Command, svc *runtime.Service, job *runtime.Job) error {
	res, err := svc.JobResults(cmd.Context(), job)
	if err != nil {
		return err
	}
	samples, err := res.Samples(resultsRegister)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	if resultsRaw {
		bits, err := samples.Bitstrings()
		if err != nil {
			return err
		}
		for _, b := range bits {
			fmt.Fprintln(out, b)
		}
		return nil
	}
	counts, err := samples.Counts()
	if err != nil {
		return err
	}
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if counts[keys[i]] != counts[keys[j]] {
			return counts[keys[i]] > counts[keys[j]]
		}
		return keys[i] < keys[j]
	})
	tab := tabulate.New(tabulate.Unicode)
	tab.Header("Bitstring").SetAlign(tabulate.ML)
	tab.Header("Count").SetAlign(tabulate.MR)
	for _, k := range keys {
		row := tab.Row()
		row.Column(k)
		row.Column(strconv.Itoa(counts[k]))
	}
	tab.Print(out)
	return nil
}

func init() {
	backendsCmd.Flags().BoolVar(&backendsStatus, "status", false, "Also query status and queue length")

	submitCmd.Flags().StringVar(&submitBackend, "backend", "", "Backend name (default from config, else least busy)")
	submitCmd.Flags().IntVar(&submitShots, "shots", 0, "Shots (default from config)")
	submitCmd.Flags().BoolVar(&submitWait, "wait", false, "Wait for the job and print its counts")
	submitCmd.Flags().BoolVar(&submitNoCheck, "no-isa-check", false, "Skip checking the circuit against the backend target")

	for _, c := range []*cobra.Command{submitCmd, resultsCmd} {
		c.Flags().StringVar(&resultsRegister, "register", "", "Classical register to read (default first by name)")
		c.Flags().BoolVar(&resultsRaw, "raw", false, "Print every shot instead of counts")
	}
}
