package port

import (
	"context"
	"io"

	"idcardgen/internal/domain"
)

// SaveInput encapsulates the parameters needed to persist an upload.
type SaveInput struct {
	OriginalName string
	Body         io.Reader
}

// ScratchStorage abstracts the scratch directories shared with the generator:
// one for incoming uploads and one the generator writes artifacts into.
type ScratchStorage interface {
	// Prepare creates the scratch directories if they do not exist.
	Prepare() error
	// Check reports whether both directories exist and are writable.
	Check(ctx context.Context) error
	SaveUpload(ctx context.Context, input SaveInput) (*domain.UploadedDocument, error)
	// ResolveArtifact returns the artifact the generator wrote under name,
	// or domain.ErrArtifactMissing.
	ResolveArtifact(ctx context.Context, name string) (*domain.GeneratedArtifact, error)
	// Remove deletes path. A missing file is not an error.
	Remove(ctx context.Context, path string) error
}
