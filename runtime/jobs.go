package runtime

import (
	"context"
	"encoding/json"
	"math/big"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/Qiskit/qiskit-ibm-runtime-go/circuit"
)

// JobStatus values are shared with the C client.
type JobStatus uint32

const (
	JobQueued JobStatus = iota
	JobRunning
	JobCompleted
	JobFailed
	JobCancelled
)

var jobStatusNames = map[string]JobStatus{
	"queued":    JobQueued,
	"running":   JobRunning,
	"completed": JobCompleted,
	"failed":    JobFailed,
	"cancelled": JobCancelled,
}

func (s JobStatus) String() string {
	switch s {
	case JobQueued:
		return "Queued"
	case JobRunning:
		return "Running"
	case JobCompleted:
		return "Completed"
	case JobFailed:
		return "Failed"
	case JobCancelled:
		return "Cancelled"
	}
	return "Unknown"
}

// Final reports whether no further transition is possible.
func (s JobStatus) Final() bool {
	return s == JobCompleted || s == JobFailed || s == JobCancelled
}

// ParseJobStatus maps an API status string. "Cancelled - Ran too long" and
// similar suffixed states map to their prefix.
func ParseJobStatus(status string) (JobStatus, error) {
	key := strings.ToLower(strings.TrimSpace(status))
	if i := strings.IndexAny(key, " -"); i > 0 {
		key = key[:i]
	}
	if key == "canceled" {
		key = "cancelled"
	}
	st, ok := jobStatusNames[key]
	if !ok {
		return 0, errors.Errorf("unknown job status %q", status)
	}
	return st, nil
}

// Job is a submitted job.
type Job struct {
	ID          string
	Backend     string
	InstanceCRN string
}

type createJobResponse struct {
	ID      string `json:"id"`
	Backend string `json:"backend"`
}

type JobDetails struct {
	ID      string    `json:"id"`
	Backend string    `json:"backend"`
	Status  string    `json:"status"`
	Created time.Time `json:"created"`
	State   struct {
		Status string `json:"status"`
		Reason string `json:"reason"`
	} `json:"state"`
}

// SubmitSampler submits a single pub sampler job for c on the backend
// named in opts. An empty backend selects the least busy one.
func (s *Service) SubmitSampler(ctx context.Context, c *circuit.Circuit, opts SamplerOptions) (*Job, error) {
	var b Backend
	var err error
	if opts.Backend == "" {
		b, err = s.LeastBusy(ctx)
	} else {
		b, err = s.Backend(ctx, opts.Backend)
	}
	if err != nil {
		return nil, err
	}
	opts.Backend = b.Name

	if !opts.SkipISACheck {
		t, err := s.Target(ctx, b)
		if err != nil {
			return nil, err
		}
		if err := t.CheckISA(c); err != nil {
			return nil, errors.Wrap(ErrBadArgument, err.Error())
		}
		opts.SkipISACheck = true
	}
	payload, err := NewSamplerJob(c, opts)
	if err != nil {
		return nil, err
	}
	req, err := s.quantumRequest(http.MethodPost, "/jobs", b.InstanceCRN, payload)
	if err != nil {
		return nil, err
	}
	resp := &createJobResponse{}
	if err := s.do(ctx, req, resp); err != nil {
		return nil, errors.Wrap(err, "submit job")
	}
	s.metrics.jobs.Inc()
	s.log.Info("job submitted", zap.String("job", resp.ID), zap.String("backend", b.Name))
	return &Job{ID: resp.ID, Backend: b.Name, InstanceCRN: b.InstanceCRN}, nil
}

// jobCRN picks the instance a job id is looked up in.
func (s *Service) jobCRN(ctx context.Context, job *Job) (string, error) {
	if job.ID == "" {
		return "", errors.Wrap(ErrBadArgument, "empty job id")
	}
	if job.InstanceCRN != "" {
		return job.InstanceCRN, nil
	}
	in, err := s.DefaultInstance(ctx)
	if err != nil {
		return "", err
	}
	return in.CRN, nil
}

func (s *Service) JobDetails(ctx context.Context, job *Job) (*JobDetails, error) {
	crn, err := s.jobCRN(ctx, job)
	if err != nil {
		return nil, err
	}
	req, err := s.quantumRequest(http.MethodGet, "/jobs/"+url.PathEscape(job.ID), crn, nil)
	if err != nil {
		return nil, err
	}
	details := &JobDetails{}
	if err := s.do(ctx, req, details); err != nil {
		return nil, errors.Wrapf(err, "job %s", job.ID)
	}
	return details, nil
}

func (s *Service) JobStatus(ctx context.Context, job *Job) (JobStatus, error) {
	details, err := s.JobDetails(ctx, job)
	if err != nil {
		return 0, err
	}
	status := details.Status
	if status == "" {
		status = details.State.Status
	}
	return ParseJobStatus(status)
}

// WaitJob polls the job status every interval until it is final.
func (s *Service) WaitJob(ctx context.Context, job *Job, interval time.Duration) (JobStatus, error) {
	if interval <= 0 {
		interval = time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		st, err := s.JobStatus(ctx, job)
		if err != nil {
			return 0, err
		}
		if st.Final() {
			return st, nil
		}
		s.log.Debug("job pending", zap.String("job", job.ID), zap.Stringer("status", st))
		select {
		case <-ctx.Done():
			return st, ctx.Err()
		case <-ticker.C:
		}
	}
}

// BitArray holds the shots of one classical register as hex strings.
type BitArray struct {
	Samples []string `json:"samples"`
	NumBits int      `json:"num_bits"`
}

// Bitstrings returns the samples as zero padded binary strings.
func (a *BitArray) Bitstrings() ([]string, error) {
	out := make([]string, len(a.Samples))
	for i, hex := range a.Samples {
		v, ok := new(big.Int).SetString(strings.TrimPrefix(hex, "0x"), 16)
		if !ok {
			return nil, errors.Errorf("sample %d: bad hex %q", i, hex)
		}
		bits := v.Text(2)
		if len(bits) < a.NumBits {
			bits = strings.Repeat("0", a.NumBits-len(bits)) + bits
		}
		out[i] = bits
	}
	return out, nil
}

// Counts tallies identical bitstrings.
func (a *BitArray) Counts() (map[string]int, error) {
	bits, err := a.Bitstrings()
	if err != nil {
		return nil, err
	}
	counts := map[string]int{}
	for _, b := range bits {
		counts[b]++
	}
	return counts, nil
}

type PubResult struct {
	Data     map[string]*BitArray `json:"data"`
	Metadata map[string]any       `json:"metadata"`
}

type SamplerResult struct {
	Results  []PubResult    `json:"results"`
	Metadata map[string]any `json:"metadata"`
}

// Samples returns the samples of the first pub. With an empty register
// name the first register in name order is used.
func (r *SamplerResult) Samples(register string) (*BitArray, error) {
	if len(r.Results) == 0 {
		return nil, errors.New("result has no pubs")
	}
	data := r.Results[0].Data
	if register == "" {
		names := make([]string, 0, len(data))
		for name := range data {
			names = append(names, name)
		}
		sort.Strings(names)
		if len(names) == 0 {
			return nil, errors.New("result has no registers")
		}
		register = names[0]
	}
	a, ok := data[register]
	if !ok || a == nil {
		return nil, errors.Errorf("result has no register %q", register)
	}
	return a, nil
}

func (s *Service) JobResults(ctx context.Context, job *Job) (*SamplerResult, error) {
	crn, err := s.jobCRN(ctx, job)
	if err != nil {
		return nil, err
	}
	req, err := s.quantumRequest(http.MethodGet, "/jobs/"+url.PathEscape(job.ID)+"/results", crn, nil)
	if err != nil {
		return nil, err
	}
	var raw json.RawMessage
	if err := s.do(ctx, req, &raw); err != nil {
		return nil, errors.Wrapf(err, "results of job %s", job.ID)
	}
	res := &SamplerResult{}
	if err := json.Unmarshal(raw, res); err != nil {
		return nil, &ServiceError{API: QuantumAPI, Err: errors.Wrap(err, "decode sampler result")}
	}
	return res, nil
}
