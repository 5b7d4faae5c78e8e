// Package qkrt loads and generates QPY circuit files and prepares sampler
// jobs for the IBM Quantum Platform.
package qkrt

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/juju/fslock"
	"github.com/pkg/errors"

	"github.com/Qiskit/qiskit-ibm-runtime-go/circuit"
	"github.com/Qiskit/qiskit-ibm-runtime-go/qpy"
	"github.com/Qiskit/qiskit-ibm-runtime-go/runtime"
	"github.com/Qiskit/qiskit-ibm-runtime-go/utils"
)

// LoadQPYFile reads every circuit stored in a QPY file.
func LoadQPYFile(path string) ([]*circuit.Circuit, error) {
	return qpy.LoadFile(path)
}

// GenerateQPYFile writes circuits to path. Concurrent writers, including
// other processes, are serialized through path.lock, which is removed once
// the file is in place. Readers never see a partial file.
func GenerateQPYFile(path string, opts qpy.DumpOptions, circuits ...*circuit.Circuit) error {
	data, err := qpy.Serialize(opts, circuits...)
	if err != nil {
		return err
	}
	lockPath := path + ".lock"
	lock := fslock.New(lockPath)
	if err := lock.Lock(); err != nil {
		return errors.Wrap(err, "lock qpy file")
	}
	defer func() {
		// the rename below is atomic, so a writer that raced on the removed
		// lock file can only reorder, never tear, the result
		os.Remove(lockPath)
		lock.Unlock()
	}()

	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".*")
	if err != nil {
		return errors.Wrap(err, "create qpy file")
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return errors.Wrap(err, "write qpy file")
	}
	// CreateTemp opens with 0600
	if err := tmp.Chmod(0o644); err != nil {
		tmp.Close()
		return errors.Wrap(err, "chmod qpy file")
	}
	if err := tmp.Close(); err != nil {
		return errors.Wrap(err, "write qpy file")
	}
	return errors.Wrap(os.Rename(tmp.Name(), path), "replace qpy file")
}

// WriteReport prints the parameters of the first n instructions of c, one
// list per line, then its operation counts.
func WriteReport(w io.Writer, c *circuit.Circuit, n int) error {
	for i := 0; i < n; i++ {
		in, err := c.Data(i)
		if err != nil {
			return err
		}
		if _, err := fmt.Fprintln(w, circuit.ParamsRepr(in.Params)); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintln(w, utils.ReprOrderedCounts(c.CountOps()))
	return err
}

// WriteSamplerPayload writes the sampler job request for c.
func WriteSamplerPayload(w io.Writer, c *circuit.Circuit, opts runtime.SamplerOptions) error {
	return runtime.WriteSamplerPayload(w, c, opts)
}
