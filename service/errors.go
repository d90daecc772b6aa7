package service

import (
	"errors"
	"strings"
)

// Terminal pipeline failures. Everything else is absorbed and logged.
var (
	ErrValidation   = errors.New("validation error")
	ErrStorageFetch = errors.New("storage fetch error")
	ErrExtraction   = errors.New("extraction error")
)

var (
	// ErrNotConfigured is returned by a collaborator client whose endpoint is unset.
	ErrNotConfigured = errors.New("service not configured")
	// ErrContractNotFound is returned when no contract matches the (id, owner) scope.
	ErrContractNotFound = errors.New("contract not found")
)

// PipelineError is a terminal failure together with the state the pipeline
// had reached when it stopped.
type PipelineError struct {
	Kind  error
	State State
	Err   error
}

func (e *PipelineError) Error() string {
	var b strings.Builder
	b.WriteString(e.Kind.Error())
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *PipelineError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}
