package port

import "context"

// GenerateRequest carries the three positional arguments handed to the generator.
type GenerateRequest struct {
	UploadPath   string
	OriginalName string
	Template     string
}

// GenerateResult holds what the generator reported on a successful run.
type GenerateResult struct {
	ArtifactName string
	Diagnostics  string
}

// ArtifactGenerator runs the external document-to-image generator.
type ArtifactGenerator interface {
	Generate(ctx context.Context, req GenerateRequest) (*GenerateResult, error)
	// Check reports whether the generator can be launched.
	Check(ctx context.Context) error
}
