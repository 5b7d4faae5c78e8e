package runtime

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"

	"github.com/Qiskit/qiskit-ibm-runtime-go/circuit"
)

func TestNewServiceRequiresToken(t *testing.T) {
	f := newFakePlatform(t)
	opts := f.options(t)
	opts.Account = &Account{Channel: "ibm_cloud"}
	_, err := NewService(opts)
	require.True(t, errors.Is(err, ErrBadArgument))
	require.Equal(t, BadArgumentError, CodeOf(err))
}

func TestTokenIsCached(t *testing.T) {
	f := newFakePlatform(t)
	s := f.service(t)
	ctx := context.Background()

	_, err := s.Backends(ctx)
	require.NoError(t, err)
	_, err = s.Backends(ctx)
	require.NoError(t, err)
	require.Equal(t, int32(1), f.tokenCalls.Load())
	require.Equal(t, int32(1), f.searchCalls.Load())
	require.Equal(t, 1.0, testutil.ToFloat64(s.metrics.requests.WithLabelValues("iam", "200")))
	require.Equal(t, 1.0, testutil.ToFloat64(s.metrics.requests.WithLabelValues("global search", "200")))
	require.Equal(t, 4.0, testutil.ToFloat64(s.metrics.requests.WithLabelValues("quantum", "200")))

	// within a minute of expiry the token is refreshed
	s.now = func() time.Time { return time.Now().Add(time.Hour - 30*time.Second) }
	_, err = s.BackendStatus(ctx, Backend{Name: "fake_fez", InstanceCRN: crnB})
	require.NoError(t, err)
	require.Equal(t, int32(2), f.tokenCalls.Load())
}

func TestBadAPIKey(t *testing.T) {
	f := newFakePlatform(t)
	opts := f.options(t)
	opts.Account = &Account{Token: "wrong"}
	s, err := NewService(opts)
	require.NoError(t, err)

	_, err = s.Instances(context.Background())
	var se *ServiceError
	require.True(t, errors.As(err, &se))
	require.Equal(t, IAMAPI, se.API)
	require.Equal(t, http.StatusBadRequest, se.StatusCode)
	require.Equal(t, "Provided API key could not be found.", se.Message)
	require.Equal(t, IAMAPIBadRequest, CodeOf(err))
	require.Equal(t, int32(0), f.searchCalls.Load())
}

func TestTransportFailure(t *testing.T) {
	f := newFakePlatform(t)
	s := f.service(t)
	f.srv.Close()

	_, err := s.FetchToken(context.Background())
	var se *ServiceError
	require.True(t, errors.As(err, &se))
	require.Zero(t, se.StatusCode)
	require.Error(t, se.Err)
	require.Equal(t, IAMAPIUnhandledError, CodeOf(err))
	require.Equal(t, 1.0, testutil.ToFloat64(s.metrics.requests.WithLabelValues("iam", "error")))
}

func TestBackends(t *testing.T) {
	f := newFakePlatform(t)
	s := f.service(t)
	ctx := context.Background()

	backends, err := s.Backends(ctx)
	require.NoError(t, err)
	require.Equal(t, []Backend{
		{Name: "fake_brisbane", InstanceCRN: crnB, InstanceName: "instance-b", NumQubits: 127},
		{Name: "fake_fez", InstanceCRN: crnB, InstanceName: "instance-b", NumQubits: 156},
		{Name: "fake_torino", InstanceCRN: crnA, InstanceName: "instance-a", NumQubits: 133},
	}, backends)

	b, err := s.Backend(ctx, "fake_torino")
	require.NoError(t, err)
	require.Equal(t, crnA, b.InstanceCRN)

	_, err = s.Backend(ctx, "fake_nowhere")
	require.Equal(t, QuantumAPINotFound, CodeOf(err))
	_, err = s.Backend(ctx, "")
	require.Equal(t, BadArgumentError, CodeOf(err))

	st, err := s.BackendStatus(ctx, backends[0])
	require.NoError(t, err)
	require.False(t, st.Operational())
	require.Equal(t, "calibrating", st.Message)

	_, err = s.BackendStatus(ctx, Backend{Name: "fake_fez", InstanceCRN: "crn:other"})
	require.Equal(t, QuantumAPIForbidden, CodeOf(err))
}

func TestPinnedInstance(t *testing.T) {
	f := newFakePlatform(t)
	opts := f.options(t)
	opts.Account.Instance = "instance-a"
	s, err := NewService(opts)
	require.NoError(t, err)

	backends, err := s.Backends(context.Background())
	require.NoError(t, err)
	require.Len(t, backends, 1)
	require.Equal(t, "fake_torino", backends[0].Name)

	s.account.Instance = crnB
	s.instances = nil
	in, err := s.DefaultInstance(context.Background())
	require.NoError(t, err)
	require.Equal(t, "instance-b", in.Name)

	s.account.Instance = "instance-z"
	s.instances = nil
	_, err = s.DefaultInstance(context.Background())
	require.Equal(t, BadArgumentError, CodeOf(err))
}

func TestLeastBusy(t *testing.T) {
	f := newFakePlatform(t)
	s := f.service(t)
	b, err := s.LeastBusy(context.Background())
	require.NoError(t, err)
	require.Equal(t, "fake_fez", b.Name)
}

func TestTargetIsCached(t *testing.T) {
	f := newFakePlatform(t)
	s := f.service(t)
	ctx := context.Background()
	b := Backend{Name: "fake_torino", InstanceCRN: crnA}

	tgt, err := s.Target(ctx, b)
	require.NoError(t, err)
	require.Equal(t, uint32(3), tgt.NumQubits)
	require.True(t, tgt.InstructionSupported("cz", []uint32{2, 1}))
	p, ok := tgt.InstructionProperties("measure", []uint32{0})
	require.True(t, ok)
	require.Equal(t, 0.01, p.Error)

	again, err := s.Target(ctx, b)
	require.NoError(t, err)
	require.Same(t, tgt, again)
	require.Equal(t, int32(1), f.configCalls.Load())

	_, err = s.Target(ctx, Backend{Name: "fake_fez", InstanceCRN: crnB})
	require.NoError(t, err)
	require.Equal(t, int32(2), f.configCalls.Load())
}

func ghz(t *testing.T, n uint32) *circuit.Circuit {
	c, err := circuit.GHZ(n)
	require.NoError(t, err)
	return c
}

func TestSubmitSampler(t *testing.T) {
	f := newFakePlatform(t)
	s := f.service(t)
	ctx := context.Background()

	job, err := s.SubmitSampler(ctx, ghz(t, 3), SamplerOptions{Backend: "fake_fez", Shots: 100, Tags: []string{"smoke"}})
	require.NoError(t, err)
	require.Equal(t, &Job{ID: "job-1", Backend: "fake_fez", InstanceCRN: crnB}, job)
	require.Equal(t, 1.0, testutil.ToFloat64(s.metrics.jobs))

	require.Len(t, f.submitted, 1)
	req := f.submitted[0]
	require.Equal(t, crnB, f.submitCRNs[0])
	require.Equal(t, "fake_fez", req.Backend)
	require.Equal(t, []string{"smoke"}, req.Tags)
	require.Equal(t, 100, req.Params.Shots)
	require.Equal(t, samplerVersion, req.Params.Version)
	require.True(t, req.Params.SupportQiskit)
	require.Len(t, req.Params.Pubs, 1)
	require.Len(t, req.Params.Pubs[0], 2)
	require.Nil(t, req.Params.Pubs[0][1])
}

func TestSubmitSamplerLeastBusy(t *testing.T) {
	f := newFakePlatform(t)
	s := f.service(t)
	job, err := s.SubmitSampler(context.Background(), ghz(t, 2), SamplerOptions{})
	require.NoError(t, err)
	require.Equal(t, "fake_fez", job.Backend)
}

func TestSubmitSamplerRejectsNonISA(t *testing.T) {
	f := newFakePlatform(t)
	s := f.service(t)
	ctx := context.Background()

	c := circuit.New(3, 0)
	require.NoError(t, c.Gate("cz", []uint32{0, 2}))
	_, err := s.SubmitSampler(ctx, c, SamplerOptions{Backend: "fake_torino"})
	require.Equal(t, BadArgumentError, CodeOf(err))
	require.Empty(t, f.submitted)

	_, err = s.SubmitSampler(ctx, c, SamplerOptions{Backend: "fake_torino", SkipISACheck: true})
	require.NoError(t, err)
	require.Len(t, f.submitted, 1)
	require.Equal(t, int32(1), f.configCalls.Load())
}

func TestWaitJob(t *testing.T) {
	f := newFakePlatform(t)
	s := f.service(t)
	ctx := context.Background()

	st, err := s.WaitJob(ctx, &Job{ID: "job-1", InstanceCRN: crnB}, time.Millisecond)
	require.NoError(t, err)
	require.Equal(t, JobCompleted, st)
	require.Equal(t, 3, f.jobPolls["job-1"])

	st, err = s.JobStatus(ctx, &Job{ID: "job-legacy"})
	require.NoError(t, err)
	require.Equal(t, JobCancelled, st)

	_, err = s.JobStatus(ctx, &Job{ID: "job-missing"})
	require.Equal(t, QuantumAPINotFound, CodeOf(err))
	require.ErrorContains(t, err, "Job not found")

	_, err = s.JobStatus(ctx, &Job{})
	require.Equal(t, BadArgumentError, CodeOf(err))
}

func TestWaitJobCancelled(t *testing.T) {
	f := newFakePlatform(t)
	s := f.service(t)
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := s.WaitJob(ctx, &Job{ID: "job-stuck"}, 5*time.Millisecond)
	require.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestJobResults(t *testing.T) {
	f := newFakePlatform(t)
	s := f.service(t)

	res, err := s.JobResults(context.Background(), &Job{ID: "job-1"})
	require.NoError(t, err)
	samples, err := res.Samples("")
	require.NoError(t, err)
	counts, err := samples.Counts()
	require.NoError(t, err)
	require.Equal(t, map[string]int{"000": 1, "111": 2, "011": 1}, counts)

	_, err = res.Samples("c")
	require.ErrorContains(t, err, `no register "c"`)

	_, err = s.JobResults(context.Background(), &Job{ID: "job-stuck"})
	require.Equal(t, QuantumAPINotFound, CodeOf(err))
}
