package main

import (
	"fmt"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/Qiskit/qiskit-ibm-runtime-go/config"
	"github.com/Qiskit/qiskit-ibm-runtime-go/runtime"
)

var (
	// Global flags
	verbose     bool
	configPath  string
	metricsFile string

	logger   *zap.Logger
	cfg      *config.Config
	registry *prometheus.Registry
)

var rootCmd = &cobra.Command{
	Use:   "qkrt",
	Short: "QPY circuit files and IBM Quantum Platform sampler jobs",
	Long: `qkrt reads and writes QPY circuit files and runs them on IBM Quantum
backends through the sampler primitive.

Remote commands read the saved account from $HOME/.qiskit/qiskit-ibm.json.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		zc := zap.NewProductionConfig()
		if verbose {
			zc.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		} else if level, ok := runtime.LevelFromEnv(os.Getenv(runtime.LogLevelEnv)); ok {
			zc.Level = zap.NewAtomicLevelAt(level)
		}
		var err error
		logger, err = zc.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		cfg, err = config.Load(configPath)
		if err != nil {
			return err
		}
		registry = prometheus.NewRegistry()
		return nil
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		if logger != nil {
			_ = logger.Sync()
		}
		if metricsFile != "" && registry != nil {
			return prometheus.WriteToTextfile(metricsFile, registry)
		}
		return nil
	},
}

func newService() (*runtime.Service, error) {
	opts := cfg.ServiceOptions()
	opts.Logger = logger.Named("runtime")
	opts.Registerer = registry
	return runtime.NewService(opts)
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default ./qkrt.yaml or $HOME/.qiskit/qkrt.yaml)")
	rootCmd.PersistentFlags().StringVar(&metricsFile, "metrics-file", "", "Write client metrics in Prometheus text format to this file")

	rootCmd.AddCommand(loadCmd, generateCmd, statsCmd, payloadCmd)
	rootCmd.AddCommand(backendsCmd, submitCmd, statusCmd, resultsCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		if code := runtime.CodeOf(err); code != runtime.QuantumAPIUnhandledError && code != runtime.Success {
			fmt.Fprintf(os.Stderr, "Error (code %d): %v\n", code, err)
		} else {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(1)
	}
}
