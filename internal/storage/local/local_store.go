package local

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"os"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"

	"idcardgen/internal/config"
	"idcardgen/internal/domain"
	"idcardgen/internal/port"
)

const maxExtLen = 10

type localStore struct {
	uploadDir string
	outputDir string
}

// NewStore creates a filesystem-backed ScratchStorage. Directories are
// resolved to absolute paths so the generator may run from another working
// directory.
func NewStore(cfg *config.StorageConfig) (port.ScratchStorage, error) {
	uploadDir, err := filepath.Abs(cfg.UploadDir)
	if err != nil {
		return nil, fmt.Errorf("resolving upload dir: %w", err)
	}
	outputDir, err := filepath.Abs(cfg.OutputDir)
	if err != nil {
		return nil, fmt.Errorf("resolving output dir: %w", err)
	}
	return &localStore{uploadDir: uploadDir, outputDir: outputDir}, nil
}

func (s *localStore) Prepare() error {
	for _, dir := range []string{s.uploadDir, s.outputDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating directory %s: %w", dir, err)
		}
	}
	return nil
}

func (s *localStore) Check(ctx context.Context) error {
	for _, dir := range []string{s.uploadDir, s.outputDir} {
		if err := ctx.Err(); err != nil {
			return err
		}
		info, err := os.Stat(dir)
		if err != nil {
			return fmt.Errorf("stat %s: %w", dir, err)
		}
		if !info.IsDir() {
			return fmt.Errorf("%s is not a directory", dir)
		}
		probe, err := os.CreateTemp(dir, ".probe-*")
		if err != nil {
			return fmt.Errorf("%s is not writable: %w", dir, err)
		}
		_ = probe.Close()
		_ = os.Remove(probe.Name())
	}
	return nil
}

func (s *localStore) SaveUpload(ctx context.Context, input port.SaveInput) (*domain.UploadedDocument, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	name := BaseName(input.OriginalName)
	path := filepath.Join(s.uploadDir, uuid.NewString()+safeExt(name))

	// O_EXCL guarantees two requests never share a temp file.
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o600)
	if err != nil {
		return nil, fmt.Errorf("creating upload file: %w", err)
	}

	n, err := io.Copy(f, input.Body)
	if err != nil {
		_ = f.Close()
		_ = os.Remove(path)
		return nil, fmt.Errorf("writing upload file: %w", err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(path)
		return nil, fmt.Errorf("closing upload file: %w", err)
	}

	return &domain.UploadedDocument{
		Path:         path,
		OriginalName: name,
		Size:         n,
	}, nil
}

func (s *localStore) ResolveArtifact(_ context.Context, name string) (*domain.GeneratedArtifact, error) {
	if !domain.IsBareFileName(name) {
		return nil, fmt.Errorf("%w: %q", domain.ErrArtifactMissing, name)
	}

	path := filepath.Join(s.outputDir, name)
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", domain.ErrArtifactMissing, path)
		}
		return nil, fmt.Errorf("stat artifact: %w", err)
	}
	if !info.Mode().IsRegular() {
		return nil, fmt.Errorf("%w: %s is not a regular file", domain.ErrArtifactMissing, path)
	}

	return &domain.GeneratedArtifact{
		Name:        name,
		Path:        path,
		ContentType: detectContentType(path),
		Size:        info.Size(),
	}, nil
}

func (s *localStore) Remove(_ context.Context, path string) error {
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("removing %s: %w", path, err)
	}
	return nil
}

// BaseName strips any client-side directory components, including Windows
// style separators, from an uploaded filename.
func BaseName(name string) string {
	if i := strings.LastIndexAny(name, `/\`); i >= 0 {
		name = name[i+1:]
	}
	name = strings.TrimSpace(name)
	if name == "" || name == "." || name == ".." {
		return "upload"
	}
	return name
}

func safeExt(name string) string {
	ext := strings.ToLower(filepath.Ext(name))
	if len(ext) < 2 || len(ext) > maxExtLen {
		return ""
	}
	for _, r := range ext[1:] {
		if (r < 'a' || r > 'z') && (r < '0' || r > '9') {
			return ""
		}
	}
	return ext
}

func detectContentType(path string) string {
	mt, err := mimetype.DetectFile(path)
	if err == nil && mt.String() != "application/octet-stream" {
		return mt.String()
	}
	if byExt := mime.TypeByExtension(filepath.Ext(path)); byExt != "" {
		return byExt
	}
	return "application/octet-stream"
}
