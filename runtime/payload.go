package runtime

import (
	"bytes"
	"compress/zlib"
	"encoding/base64"
	"encoding/json"
	"io"

	"github.com/pkg/errors"

	"github.com/Qiskit/qiskit-ibm-runtime-go/circuit"
	"github.com/Qiskit/qiskit-ibm-runtime-go/qpy"
	"github.com/Qiskit/qiskit-ibm-runtime-go/target"
)

const (
	samplerProgram         = "sampler"
	samplerVersion         = 2
	circuitTypeTag         = "QuantumCircuit"
	maxDecompressedCircuit = 1 << 30
)

// EncodedCircuit is a circuit in the runtime JSON encoding: zlib compressed
// QPY in standard base64.
type EncodedCircuit struct {
	Type  string `json:"__type__"`
	Value string `json:"__value__"`
}

type SamplerParams struct {
	// Pubs holds one entry per primitive unified bloc: the circuit followed
	// by its parameter values.
	Pubs          [][]any `json:"pubs"`
	Shots         int     `json:"shots,omitempty"`
	Version       int     `json:"version"`
	SupportQiskit bool    `json:"support_qiskit"`
}

// JobRequest is the body of a job creation call.
type JobRequest struct {
	ProgramID string        `json:"program_id"`
	Backend   string        `json:"backend"`
	Runtime   string        `json:"runtime,omitempty"`
	Tags      []string      `json:"tags,omitempty"`
	SessionID string        `json:"session_id,omitempty"`
	Params    SamplerParams `json:"params"`
}

type SamplerOptions struct {
	Backend string
	Runtime string
	Tags    []string
	Shots   int
	// SkipISACheck allows operations outside the ISA gate set.
	SkipISACheck bool
}

// EncodeCircuit serializes c to QPY and wraps it in the runtime encoding.
func EncodeCircuit(c *circuit.Circuit) (*EncodedCircuit, error) {
	data, err := qpy.Serialize(qpy.DumpOptions{}, c)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	zw := zlib.NewWriter(&buf)
	if _, err := zw.Write(data); err != nil {
		return nil, errors.Wrap(err, "compress circuit")
	}
	if err := zw.Close(); err != nil {
		return nil, errors.Wrap(err, "compress circuit")
	}
	return &EncodedCircuit{
		Type:  circuitTypeTag,
		Value: base64.StdEncoding.EncodeToString(buf.Bytes()),
	}, nil
}

// Decode reverses EncodeCircuit.
func (e *EncodedCircuit) Decode() ([]*circuit.Circuit, error) {
	if e.Type != circuitTypeTag {
		return nil, errors.Errorf("unexpected encoded type %q", e.Type)
	}
	compressed, err := base64.StdEncoding.DecodeString(e.Value)
	if err != nil {
		return nil, errors.Wrap(err, "decode base64 circuit")
	}
	zr, err := zlib.NewReader(bytes.NewReader(compressed))
	if err != nil {
		return nil, errors.Wrap(err, "decompress circuit")
	}
	defer zr.Close()
	data, err := io.ReadAll(io.LimitReader(zr, maxDecompressedCircuit))
	if err != nil {
		return nil, errors.Wrap(err, "decompress circuit")
	}
	return qpy.Deserialize(data)
}

// NewSamplerJob builds a single pub sampler job for c.
func NewSamplerJob(c *circuit.Circuit, opts SamplerOptions) (*JobRequest, error) {
	if opts.Backend == "" {
		return nil, errors.Wrap(ErrBadArgument, "empty backend name")
	}
	if opts.Shots < 0 {
		return nil, errors.Wrapf(ErrBadArgument, "negative shots %d", opts.Shots)
	}
	if !opts.SkipISACheck {
		if err := target.CheckStaticISA(c); err != nil {
			return nil, errors.Wrap(ErrBadArgument, err.Error())
		}
	}
	enc, err := EncodeCircuit(c)
	if err != nil {
		return nil, err
	}
	return &JobRequest{
		ProgramID: samplerProgram,
		Backend:   opts.Backend,
		Runtime:   opts.Runtime,
		Tags:      opts.Tags,
		Params: SamplerParams{
			Pubs:          [][]any{{enc, nil}},
			Shots:         opts.Shots,
			Version:       samplerVersion,
			SupportQiskit: true,
		},
	}, nil
}

// WriteSamplerPayload writes the job request for c as indented JSON.
func WriteSamplerPayload(w io.Writer, c *circuit.Circuit, opts SamplerOptions) error {
	job, err := NewSamplerJob(c, opts)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return errors.Wrap(enc.Encode(job), "write payload")
}

// DecodeSamplerPayload reads a job request and returns the circuit of each
// pub.
func DecodeSamplerPayload(r io.Reader) (*JobRequest, []*circuit.Circuit, error) {
	var raw struct {
		JobRequest
		Params struct {
			SamplerParams
			Pubs [][]json.RawMessage `json:"pubs"`
		} `json:"params"`
	}
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return nil, nil, errors.Wrap(err, "parse payload")
	}
	job := raw.JobRequest
	job.Params = raw.Params.SamplerParams
	var circuits []*circuit.Circuit
	for i, pub := range raw.Params.Pubs {
		if len(pub) == 0 {
			return nil, nil, errors.Errorf("pub %d is empty", i)
		}
		enc := &EncodedCircuit{}
		if err := json.Unmarshal(pub[0], enc); err != nil {
			return nil, nil, errors.Wrapf(err, "pub %d", i)
		}
		cs, err := enc.Decode()
		if err != nil {
			return nil, nil, errors.Wrapf(err, "pub %d", i)
		}
		circuits = append(circuits, cs...)
		job.Params.Pubs = append(job.Params.Pubs, []any{enc})
	}
	return &job, circuits, nil
}
