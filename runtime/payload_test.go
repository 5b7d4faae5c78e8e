package runtime

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"

	"github.com/Qiskit/qiskit-ibm-runtime-go/circuit"
	"github.com/Qiskit/qiskit-ibm-runtime-go/target"
)

func TestEncodeCircuit(t *testing.T) {
	c := ghz(t, 4)
	enc, err := EncodeCircuit(c)
	require.NoError(t, err)
	require.Equal(t, "QuantumCircuit", enc.Type)

	circuits, err := enc.Decode()
	require.NoError(t, err)
	require.Len(t, circuits, 1)
	require.Equal(t, c.Instructions, circuits[0].Instructions)
	require.Equal(t, c.Registers, circuits[0].Registers)

	_, err = (&EncodedCircuit{Type: "ndarray", Value: enc.Value}).Decode()
	require.ErrorContains(t, err, "ndarray")
	_, err = (&EncodedCircuit{Type: circuitTypeTag, Value: "%%%"}).Decode()
	require.Error(t, err)
	_, err = (&EncodedCircuit{Type: circuitTypeTag, Value: "AAAA"}).Decode()
	require.Error(t, err)
}

func TestSamplerPayloadShape(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteSamplerPayload(&buf, ghz(t, 2), SamplerOptions{
		Backend: "ibm_torino",
		Shots:   1024,
		Runtime: "qiskit-2.1",
	}))

	var doc map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &doc))
	require.Equal(t, "sampler", doc["program_id"])
	require.Equal(t, "ibm_torino", doc["backend"])
	require.Equal(t, "qiskit-2.1", doc["runtime"])
	require.NotContains(t, doc, "tags")
	require.NotContains(t, doc, "session_id")

	params := doc["params"].(map[string]any)
	require.Equal(t, 1024.0, params["shots"])
	require.Equal(t, 2.0, params["version"])
	require.Equal(t, true, params["support_qiskit"])
	pubs := params["pubs"].([]any)
	require.Len(t, pubs, 1)
	pub := pubs[0].([]any)
	require.Len(t, pub, 2)
	require.Nil(t, pub[1])
	require.Equal(t, "QuantumCircuit", pub[0].(map[string]any)["__type__"])
	require.True(t, strings.HasPrefix(buf.String(), "{\n  \"program_id\""))
}

func TestDecodeSamplerPayload(t *testing.T) {
	c := ghz(t, 3)
	var buf bytes.Buffer
	require.NoError(t, WriteSamplerPayload(&buf, c, SamplerOptions{Backend: "ibm_fez", Tags: []string{"a", "b"}}))

	job, circuits, err := DecodeSamplerPayload(&buf)
	require.NoError(t, err)
	require.Equal(t, "ibm_fez", job.Backend)
	require.Equal(t, []string{"a", "b"}, job.Tags)
	require.Zero(t, job.Params.Shots)
	require.Equal(t, samplerVersion, job.Params.Version)
	require.Len(t, circuits, 1)
	require.Equal(t, c.Instructions, circuits[0].Instructions)

	_, _, err = DecodeSamplerPayload(strings.NewReader(`{"params": {"pubs": [[]]}}`))
	require.ErrorContains(t, err, "pub 0 is empty")
	_, _, err = DecodeSamplerPayload(strings.NewReader(`{`))
	require.Error(t, err)
}

func TestNewSamplerJobValidation(t *testing.T) {
	c := ghz(t, 2)
	_, err := NewSamplerJob(c, SamplerOptions{})
	require.True(t, errors.Is(err, ErrBadArgument))
	_, err = NewSamplerJob(c, SamplerOptions{Backend: "ibm_fez", Shots: -1})
	require.True(t, errors.Is(err, ErrBadArgument))

	h := circuit.New(1, 1)
	require.NoError(t, h.Gate("h", []uint32{0}))
	_, err = NewSamplerJob(h, SamplerOptions{Backend: "ibm_fez"})
	require.True(t, errors.Is(err, ErrBadArgument))
	require.ErrorContains(t, err, target.ErrNotISA.Error())

	job, err := NewSamplerJob(h, SamplerOptions{Backend: "ibm_fez", SkipISACheck: true})
	require.NoError(t, err)
	require.Equal(t, "ibm_fez", job.Backend)
}
