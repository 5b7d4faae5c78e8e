package qpy

import (
	"fmt"

	"github.com/pkg/errors"
)

var (
	ErrInvalidPreface      = errors.New("input is not a valid QPY file")
	ErrUnsupportedVersion  = errors.New("unsupported QPY version")
	ErrUnsupportedProgram  = errors.New("unsupported program type")
	ErrUnsupportedEncoding = errors.New("unsupported symbolic encoding")
	ErrUnsupportedType     = errors.New("unsupported value type")
	ErrUnsupportedFeature  = errors.New("unsupported QPY feature")
	ErrUnknownOperation    = errors.New("unknown operation class")
	ErrTrailingData        = errors.New("trailing data after last program")
	ErrInvalidValue        = errors.New("invalid value payload")
	ErrCountExceedsPayload = errors.New("element count exceeds payload size")
)

// FormatError locates a decoding failure inside a QPY payload.
type FormatError struct {
	Section Section
	// Index of the program the failure belongs to, -1 for the file header.
	Program int
	Offset  int
	Err     error
}

type Section int

const (
	SectionFileHeader Section = iota
	SectionCircuitHeader
	SectionRegisters
	SectionVars
	SectionCustomOperations
	SectionInstructions
	SectionCalibrations
	SectionLayout
)

var sectionName = map[Section]string{
	SectionFileHeader:       "file header",
	SectionCircuitHeader:    "circuit header",
	SectionRegisters:        "registers",
	SectionVars:             "vars",
	SectionCustomOperations: "custom operations",
	SectionInstructions:     "instructions",
	SectionCalibrations:     "calibrations",
	SectionLayout:           "layout",
}

func (s Section) String() string {
	return sectionName[s]
}

func (e *FormatError) Error() string {
	msg := fmt.Sprintf("QPY error [%s]: %v, offset %d", e.Section, e.Err, e.Offset)
	if e.Program >= 0 {
		msg += fmt.Sprintf(", program %d", e.Program)
	}
	return msg
}

func (e *FormatError) Unwrap() error {
	return e.Err
}
