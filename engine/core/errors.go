package core

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound          = errors.New("file not found")
	ErrReadFailure       = errors.New("failed to read file")
	ErrUnsupportedFormat = errors.New("unsupported image format")
	ErrDecodeFailure     = errors.New("failed to decode image")
	ErrInvalidDimensions = errors.New("image dimensions are not aligned to the texture format block size")
	ErrAllocationFailure = errors.New("failed to allocate texture")

	ErrOwnerDestroyed    = errors.New("owner has been destroyed")
	ErrPromiseAlreadySet = errors.New("promise value already set")
	ErrJobSystemShutdown = errors.New("job system is shut down")
	ErrUnknown           = errors.New("unknown")
)

// Stage identifies the pipeline step that produced a LoadError.
type Stage uint8

const (
	StageExists Stage = iota
	StageRead
	StageDetect
	StageDecode
	StageValidate
	StageAllocate
	StageCount
)

var stageNames = [StageCount]string{"exists", "read", "detect", "decode", "validate", "allocate"}

var stageErrors = [StageCount]error{
	ErrNotFound,
	ErrReadFailure,
	ErrUnsupportedFormat,
	ErrDecodeFailure,
	ErrInvalidDimensions,
	ErrAllocationFailure,
}

func (s Stage) String() string {
	if s >= StageCount {
		return fmt.Sprintf("stage(%d)", s)
	}
	return stageNames[s]
}

// Sentinel returns the error class reported for failures of this stage.
func (s Stage) Sentinel() error {
	if s >= StageCount {
		return ErrUnknown
	}
	return stageErrors[s]
}

// LoadError describes a failed image load. errors.Is matches both the
// stage sentinel (ErrNotFound, ErrDecodeFailure, ...) and the cause.
type LoadError struct {
	Stage Stage
	Path  string
	Err   error
}

func NewLoadError(stage Stage, path string, err error) *LoadError {
	return &LoadError{Stage: stage, Path: path, Err: err}
}

func (e *LoadError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s stage failed for '%s': %s", e.Stage, e.Path, e.Stage.Sentinel())
	}
	return fmt.Sprintf("%s stage failed for '%s': %s: %s", e.Stage, e.Path, e.Stage.Sentinel(), e.Err)
}

func (e *LoadError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Stage.Sentinel()}
	}
	return []error{e.Stage.Sentinel(), e.Err}
}
