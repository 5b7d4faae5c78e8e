package runtime

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"sort"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/Qiskit/qiskit-ibm-runtime-go/target"
)

const statusConcurrency = 8

// Backend is a device visible through one service instance.
type Backend struct {
	Name         string
	InstanceCRN  string
	InstanceName string
	NumQubits    uint32
}

type device struct {
	Name   string `json:"name"`
	Qubits uint32 `json:"qubits"`
}

type backendsResponse struct {
	Devices []device `json:"devices"`
}

type BackendStatus struct {
	State          bool   `json:"state"`
	Status         string `json:"status"`
	Message        string `json:"message"`
	LengthQueue    int    `json:"length_queue"`
	BackendVersion string `json:"backend_version"`
}

// Operational reports whether the backend accepts jobs.
func (st *BackendStatus) Operational() bool {
	return st.State && (st.Status == "" || st.Status == "active" || st.Status == "online")
}

// Backends lists the devices of every visible instance, sorted by name.
func (s *Service) Backends(ctx context.Context) ([]Backend, error) {
	instances, err := s.Instances(ctx)
	if err != nil {
		return nil, err
	}
	lists := make([][]Backend, len(instances))
	g, gctx := errgroup.WithContext(ctx)
	for i, in := range instances {
		g.Go(func() error {
			req, err := s.quantumRequest(http.MethodGet, "/backends", in.CRN, nil)
			if err != nil {
				return err
			}
			resp := &backendsResponse{}
			if err := s.do(gctx, req, resp); err != nil {
				return errors.Wrapf(err, "list backends of %s", in.Name)
			}
			for _, d := range resp.Devices {
				lists[i] = append(lists[i], Backend{
					Name:         d.Name,
					InstanceCRN:  in.CRN,
					InstanceName: in.Name,
					NumQubits:    d.Qubits,
				})
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	var out []Backend
	for _, l := range lists {
		out = append(out, l...)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// Backend finds a device by name.
func (s *Service) Backend(ctx context.Context, name string) (Backend, error) {
	if name == "" {
		return Backend{}, errors.Wrap(ErrBadArgument, "empty backend name")
	}
	backends, err := s.Backends(ctx)
	if err != nil {
		return Backend{}, err
	}
	for _, b := range backends {
		if b.Name == name {
			return b, nil
		}
	}
	return Backend{}, &ServiceError{API: QuantumAPI, StatusCode: http.StatusNotFound, Message: "backend " + name + " not found"}
}

func (s *Service) backendDoc(ctx context.Context, b Backend, doc string, out any) error {
	req, err := s.quantumRequest(http.MethodGet, "/backends/"+url.PathEscape(b.Name)+"/"+doc, b.InstanceCRN, nil)
	if err != nil {
		return err
	}
	return s.do(ctx, req, out)
}

func (s *Service) BackendStatus(ctx context.Context, b Backend) (*BackendStatus, error) {
	st := &BackendStatus{}
	if err := s.backendDoc(ctx, b, "status", st); err != nil {
		return nil, errors.Wrapf(err, "status of %s", b.Name)
	}
	return st, nil
}

// LeastBusy returns the operational backend with the shortest queue. Ties
// go to the backend that sorts first by name.
func (s *Service) LeastBusy(ctx context.Context) (Backend, error) {
	backends, err := s.Backends(ctx)
	if err != nil {
		return Backend{}, err
	}
	statuses := make([]*BackendStatus, len(backends))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(statusConcurrency)
	for i, b := range backends {
		g.Go(func() error {
			st, err := s.BackendStatus(gctx, b)
			if err != nil {
				return err
			}
			statuses[i] = st
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Backend{}, err
	}

	best := -1
	for i, st := range statuses {
		if !st.Operational() {
			continue
		}
		if best < 0 || st.LengthQueue < statuses[best].LengthQueue {
			best = i
		}
	}
	if best < 0 {
		return Backend{}, errors.Wrap(ErrBadArgument, "no operational backend")
	}
	s.log.Info("least busy backend",
		zap.String("backend", backends[best].Name),
		zap.Int("queue", statuses[best].LengthQueue))
	return backends[best], nil
}

// Target builds the instruction set target of a backend from its
// configuration and properties. Targets are cached per instance and name.
func (s *Service) Target(ctx context.Context, b Backend) (*target.Target, error) {
	key := b.InstanceCRN + "/" + b.Name
	if t, ok := s.targets.Get(key); ok {
		return t, nil
	}

	var confRaw, propsRaw json.RawMessage
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return s.backendDoc(gctx, b, "configuration", &confRaw)
	})
	g.Go(func() error {
		return s.backendDoc(gctx, b, "properties", &propsRaw)
	})
	if err := g.Wait(); err != nil {
		return nil, errors.Wrapf(err, "target of %s", b.Name)
	}
	conf, err := target.ParseConfiguration(confRaw)
	if err != nil {
		return nil, err
	}
	var props *target.BackendProperties
	if len(propsRaw) > 0 && string(propsRaw) != "null" {
		if props, err = target.ParseProperties(propsRaw); err != nil {
			return nil, err
		}
	}
	t, err := target.FromBackend(conf, props)
	if err != nil {
		return nil, err
	}
	s.targets.Add(key, t)
	return t, nil
}
