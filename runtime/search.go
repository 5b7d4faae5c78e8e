package runtime

import (
	"context"
	"net/http"

	"github.com/pkg/errors"
)

const (
	instanceQuery = "service_name:quantum-computing"
	searchLimit   = "100"
)

type Instance struct {
	CRN           string `json:"crn"`
	Name          string `json:"name"`
	ServicePlanID string `json:"service_plan_unique_id"`
}

type searchRequest struct {
	Query  string   `json:"query"`
	Fields []string `json:"fields"`
}

type searchResponse struct {
	Items []Instance `json:"items"`
}

// Instances lists the quantum computing service instances the account can
// see. The result is cached for the lifetime of the service.
func (s *Service) Instances(ctx context.Context) ([]Instance, error) {
	s.mu.Lock()
	cached := s.instances
	s.mu.Unlock()
	if cached != nil {
		return cached, nil
	}

	req, err := s.jsonRequest(GlobalSearchAPI, http.MethodPost, s.opts.SearchURL+"/v3/resources/search?limit="+searchLimit, searchRequest{
		Query:  instanceQuery,
		Fields: []string{"crn", "service_plan_unique_id", "name", "doc"},
	})
	if err != nil {
		return nil, err
	}
	resp := &searchResponse{}
	if err := s.do(ctx, req, resp); err != nil {
		return nil, err
	}
	instances := resp.Items
	if instances == nil {
		instances = []Instance{}
	}
	if s.account.Instance != "" {
		instances = filterInstances(instances, s.account.Instance)
	}

	s.mu.Lock()
	s.instances = instances
	s.mu.Unlock()
	return instances, nil
}

// filterInstances keeps the instance the account is pinned to, matched by
// CRN or by name.
func filterInstances(instances []Instance, pin string) []Instance {
	out := []Instance{}
	for _, in := range instances {
		if in.CRN == pin || in.Name == pin {
			out = append(out, in)
		}
	}
	return out
}

// DefaultInstance returns the first visible instance.
func (s *Service) DefaultInstance(ctx context.Context) (Instance, error) {
	instances, err := s.Instances(ctx)
	if err != nil {
		return Instance{}, err
	}
	if len(instances) == 0 {
		return Instance{}, errors.Wrap(ErrBadArgument, "no quantum computing instance available")
	}
	return instances[0], nil
}
