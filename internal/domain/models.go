package domain

import "strings"

// DefaultTemplate is used when the request names no template.
const DefaultTemplate = "Template 1"

// UploadedDocument is a client upload persisted to the scratch area for the
// lifetime of a single request.
type UploadedDocument struct {
	Path         string
	OriginalName string
	Size         int64
}

// GeneratedArtifact is the image produced by the generator for one upload.
type GeneratedArtifact struct {
	Name        string
	Path        string
	ContentType string
	Size        int64
	Template    string
}

// IsBareFileName reports whether name is a plain file name with no directory
// parts. Artifact names reported by the generator must satisfy it.
func IsBareFileName(name string) bool {
	if name == "" || name == "." || name == ".." {
		return false
	}
	return !strings.ContainsAny(name, `/\`) && !strings.ContainsRune(name, 0)
}
