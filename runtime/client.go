// Package runtime is a client for the IBM Quantum Platform: IAM token
// exchange, instance discovery through global search, backend queries and
// sampler jobs.
package runtime

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/Qiskit/qiskit-ibm-runtime-go/target"
)

const (
	DefaultIAMURL     = "https://iam.cloud.ibm.com"
	DefaultSearchURL  = "https://api.global-search-tagging.cloud.ibm.com"
	DefaultAPIURL     = "https://quantum.cloud.ibm.com/api/v1"
	DefaultAPIVersion = "2025-06-01"

	UserAgent = "qiskit-ibm-runtime-go/0.1.0"

	defaultTargetCacheSize = 32
	maxErrorBody           = 64 << 10
)

type Options struct {
	// Account overrides AccountFile and AccountName when set.
	Account     *Account
	AccountFile string
	AccountName string

	IAMURL     string
	SearchURL  string
	APIURL     string
	APIVersion string

	HTTPClient *http.Client
	Logger     *zap.Logger
	Registerer prometheus.Registerer

	TargetCacheSize int
}

func (o Options) withDefaults() Options {
	if o.IAMURL == "" {
		o.IAMURL = DefaultIAMURL
	}
	if o.SearchURL == "" {
		o.SearchURL = DefaultSearchURL
	}
	if o.APIURL == "" {
		o.APIURL = DefaultAPIURL
	}
	if o.APIVersion == "" {
		o.APIVersion = DefaultAPIVersion
	}
	if o.HTTPClient == nil {
		o.HTTPClient = &http.Client{Timeout: 60 * time.Second}
	}
	if o.Logger == nil {
		o.Logger = NewLoggerFromEnv()
	}
	if o.TargetCacheSize <= 0 {
		o.TargetCacheSize = defaultTargetCacheSize
	}
	o.IAMURL = strings.TrimRight(o.IAMURL, "/")
	o.SearchURL = strings.TrimRight(o.SearchURL, "/")
	o.APIURL = strings.TrimRight(o.APIURL, "/")
	return o
}

// Service is an authenticated session with the platform. It is safe for
// concurrent use.
type Service struct {
	opts    Options
	account *Account
	client  *http.Client
	log     *zap.Logger
	metrics *Metrics
	targets *lru.Cache[string, *target.Target]
	now     func() time.Time

	mu        sync.Mutex
	token     string
	expiry    time.Time
	instances []Instance
}

// NewService loads the account and prepares a client. No request is sent
// until the first call that needs one.
func NewService(opts Options) (*Service, error) {
	opts = opts.withDefaults()
	account := opts.Account
	if account == nil {
		var err error
		if account, err = LoadAccount(opts.AccountFile, opts.AccountName); err != nil {
			return nil, err
		}
	}
	if account == nil || account.Token == "" {
		return nil, errors.Wrap(ErrBadArgument, "account has no api key")
	}
	targets, err := lru.New[string, *target.Target](opts.TargetCacheSize)
	if err != nil {
		return nil, errors.Wrap(err, "target cache")
	}
	return &Service{
		opts:    opts,
		account: account,
		client:  opts.HTTPClient,
		log:     opts.Logger,
		metrics: NewMetrics(opts.Registerer),
		targets: targets,
		now:     time.Now,
	}, nil
}

func (s *Service) Account() *Account {
	return s.account
}

type request struct {
	api     API
	method  string
	url     string
	header  http.Header
	body    io.Reader
	noToken bool
}

// do sends req and decodes a JSON response into out when out is non-nil.
func (s *Service) do(ctx context.Context, req request, out any) error {
	hreq, err := http.NewRequestWithContext(ctx, req.method, req.url, req.body)
	if err != nil {
		return &ServiceError{API: req.api, Err: err}
	}
	for k, v := range req.header {
		hreq.Header[k] = v
	}
	hreq.Header.Set("User-Agent", UserAgent)
	hreq.Header.Set("Accept", "application/json")
	requestID := uuid.NewString()
	hreq.Header.Set("X-Request-Id", requestID)
	if !req.noToken {
		token, err := s.accessToken(ctx)
		if err != nil {
			return err
		}
		hreq.Header.Set("Authorization", "Bearer "+token)
	}

	log := s.log.With(
		zap.Stringer("api", req.api),
		zap.String("method", req.method),
		zap.String("url", req.url),
		zap.String("request_id", requestID),
	)
	log.Debug("sending request")

	start := s.now()
	resp, err := s.client.Do(hreq)
	s.metrics.latency.WithLabelValues(req.api.String()).Observe(s.now().Sub(start).Seconds())
	if err != nil {
		s.metrics.requests.WithLabelValues(req.api.String(), "error").Inc()
		log.Warn("request failed", zap.Error(err))
		return &ServiceError{API: req.api, Err: err}
	}
	defer resp.Body.Close()
	s.metrics.requests.WithLabelValues(req.api.String(), strconv.Itoa(resp.StatusCode)).Inc()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		se := &ServiceError{API: req.api, StatusCode: resp.StatusCode, Message: errorMessage(body)}
		log.Info("request rejected", zap.Int("status", resp.StatusCode), zap.String("message", se.Message))
		return se
	}
	log.Debug("request done", zap.Int("status", resp.StatusCode))
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &ServiceError{API: req.api, Err: errors.Wrap(err, "decode response")}
	}
	return nil
}

func (s *Service) jsonRequest(api API, method, url string, body any) (request, error) {
	req := request{api: api, method: method, url: url, header: http.Header{}}
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return req, errors.Wrap(err, "encode request")
		}
		req.body = bytes.NewReader(data)
		req.header.Set("Content-Type", "application/json")
	}
	return req, nil
}

// quantumRequest prepares a request to the quantum API scoped to crn.
func (s *Service) quantumRequest(method, path, crn string, body any) (request, error) {
	req, err := s.jsonRequest(QuantumAPI, method, s.opts.APIURL+path, body)
	if err != nil {
		return req, err
	}
	req.header.Set("IBM-API-Version", s.opts.APIVersion)
	if crn != "" {
		req.header.Set("Service-CRN", crn)
	}
	return req, nil
}

// errorMessage extracts a readable message from the error bodies the three
// APIs return.
func errorMessage(body []byte) string {
	var doc struct {
		Message      string `json:"message"`
		ErrorMessage string `json:"errorMessage"`
		Errors       []struct {
			Message string `json:"message"`
		} `json:"errors"`
	}
	if json.Unmarshal(body, &doc) == nil {
		switch {
		case len(doc.Errors) > 0 && doc.Errors[0].Message != "":
			return doc.Errors[0].Message
		case doc.Message != "":
			return doc.Message
		case doc.ErrorMessage != "":
			return doc.ErrorMessage
		}
	}
	return strings.TrimSpace(string(body))
}
