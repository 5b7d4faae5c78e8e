package qpy

import (
	"context"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"github.com/Qiskit/qiskit-ibm-runtime-go/circuit"
)

// LoadFiles loads several QPY files with at most limit files open at once.
// Results are indexed like paths. The first failure cancels the remaining
// loads.
func LoadFiles(ctx context.Context, paths []string, limit int) ([][]*circuit.Circuit, error) {
	out := make([][]*circuit.Circuit, len(paths))
	eg, egCtx := errgroup.WithContext(ctx)
	if limit > 0 {
		eg.SetLimit(limit)
	}
	for i, path := range paths {
		eg.Go(func() error {
			if err := egCtx.Err(); err != nil {
				return err
			}
			circuits, err := LoadFile(path)
			if err != nil {
				return errors.Wrap(err, path)
			}
			out[i] = circuits
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
