package domain

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrMissingFile      = errors.New("file field is required")
	ErrMalformedUpload  = errors.New("malformed multipart upload")
	ErrFileTooLarge     = errors.New("file exceeds maximum allowed size")
	ErrUnknownTemplate  = errors.New("unknown template")
	ErrOriginNotAllowed = errors.New("origin not allowed")
	ErrGenerationFailed = errors.New("failed to generate image")
	ErrArtifactMissing  = errors.New("generated artifact not found")
	ErrDeliveryFailed   = errors.New("failed to send generated artifact")

	ErrEmptyGeneratorOutput = errors.New("generator produced no output")
	ErrInvalidArtifactName  = errors.New("generator reported an invalid artifact name")
	ErrGeneratorTimeout     = errors.New("generator timed out")
)

// OriginError reports a cross-origin request from an origin outside the allowlist.
type OriginError struct {
	Origin string
}

func (e *OriginError) Error() string {
	return fmt.Sprintf("origin %s is not allowed", e.Origin)
}

func (e *OriginError) Is(target error) bool {
	return target == ErrOriginNotAllowed
}

// GeneratorError describes a failed run of the external generator. It matches
// ErrGenerationFailed with errors.Is and unwraps to the underlying cause.
type GeneratorError struct {
	ExitCode    int
	Diagnostics string
	Timeout     time.Duration
	Err         error
}

func (e *GeneratorError) Error() string {
	if e.Diagnostics != "" {
		return fmt.Sprintf("generator failed (exit %d): %v: %s", e.ExitCode, e.Err, e.Diagnostics)
	}
	return fmt.Sprintf("generator failed (exit %d): %v", e.ExitCode, e.Err)
}

func (e *GeneratorError) Unwrap() error {
	return e.Err
}

// Is reports ErrGenerationFailed as a match so callers need not know the concrete type.
func (e *GeneratorError) Is(target error) bool {
	return target == ErrGenerationFailed
}

// Details returns the captured diagnostics, or a generic description of the
// failure when the generator wrote nothing to stderr.
func (e *GeneratorError) Details() string {
	if e.Diagnostics != "" {
		return e.Diagnostics
	}
	switch {
	case errors.Is(e.Err, ErrGeneratorTimeout):
		return fmt.Sprintf("generator timed out after %s", e.Timeout)
	case errors.Is(e.Err, ErrEmptyGeneratorOutput), errors.Is(e.Err, ErrInvalidArtifactName):
		return e.Err.Error()
	case e.ExitCode > 0:
		return fmt.Sprintf("generator exited with status %d", e.ExitCode)
	default:
		return "generator failed to run"
	}
}
