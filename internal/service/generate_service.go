package service

import (
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"slices"
	"strings"

	"github.com/rs/zerolog"

	"idcardgen/internal/config"
	"idcardgen/internal/domain"
	"idcardgen/internal/port"
)

// GenerateInput is the DTO for ID card generation requests.
type GenerateInput struct {
	File     multipart.File
	Header   *multipart.FileHeader
	Template string
}

// GenerateService defines the ID card generation contract.
type GenerateService interface {
	// Generate persists the upload, runs the generator and returns the
	// artifact it produced. The upload is always removed before returning.
	Generate(ctx context.Context, input GenerateInput) (*domain.GeneratedArtifact, error)
	// Discard removes an artifact once it has been delivered or abandoned.
	Discard(ctx context.Context, artifact *domain.GeneratedArtifact)
	// ResolveTemplate returns the template to use for the requested name.
	ResolveTemplate(name string) (string, error)
}

type generateService struct {
	storage   port.ScratchStorage
	generator port.ArtifactGenerator
	uploadCfg *config.UploadConfig
	templates *config.TemplateConfig
}

// NewGenerateService creates a new GenerateService implementation.
func NewGenerateService(
	storage port.ScratchStorage,
	generator port.ArtifactGenerator,
	uploadCfg *config.UploadConfig,
	templates *config.TemplateConfig,
) GenerateService {
	return &generateService{
		storage:   storage,
		generator: generator,
		uploadCfg: uploadCfg,
		templates: templates,
	}
}

func (s *generateService) Generate(ctx context.Context, input GenerateInput) (*domain.GeneratedArtifact, error) {
	if input.File == nil || input.Header == nil {
		return nil, domain.ErrMissingFile
	}

	maxBytes := s.uploadCfg.MaxBytes()
	if input.Header.Size > maxBytes {
		return nil, s.tooLarge()
	}

	template, err := s.ResolveTemplate(input.Template)
	if err != nil {
		return nil, err
	}

	logger := zerolog.Ctx(ctx)

	// Read one byte past the limit so an understated part size is still caught.
	doc, err := s.storage.SaveUpload(ctx, port.SaveInput{
		OriginalName: input.Header.Filename,
		Body:         io.LimitReader(input.File, maxBytes+1),
	})
	if err != nil {
		return nil, fmt.Errorf("saving upload: %w", err)
	}
	defer s.remove(ctx, doc.Path, "upload")

	if doc.Size > maxBytes {
		return nil, s.tooLarge()
	}

	logger.Info().
		Str("file", doc.OriginalName).
		Int64("size", doc.Size).
		Str("template", template).
		Msg("generateService.Generate: invoking generator")

	result, err := s.generator.Generate(ctx, port.GenerateRequest{
		UploadPath:   doc.Path,
		OriginalName: doc.OriginalName,
		Template:     template,
	})
	if err != nil {
		return nil, err
	}

	artifact, err := s.storage.ResolveArtifact(ctx, result.ArtifactName)
	if err != nil {
		logger.Error().
			Err(err).
			Str("artifact", result.ArtifactName).
			Msg("generateService.Generate: generator reported an artifact that cannot be used")
		return nil, err
	}
	artifact.Template = template

	return artifact, nil
}

func (s *generateService) Discard(ctx context.Context, artifact *domain.GeneratedArtifact) {
	if artifact == nil {
		return
	}
	s.remove(ctx, artifact.Path, "artifact")
}

func (s *generateService) ResolveTemplate(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return s.templates.Default, nil
	}
	if len(s.templates.Allowed) > 0 && !slices.Contains(s.templates.Allowed, name) {
		return "", fmt.Errorf("%w: %q", domain.ErrUnknownTemplate, name)
	}
	return name, nil
}

func (s *generateService) tooLarge() error {
	return fmt.Errorf("%w: limit is %d MB", domain.ErrFileTooLarge, s.uploadCfg.MaxFileSizeMB)
}

// remove deletes a scratch file. Failures are logged and never returned: the
// response to the client has already been decided by the time this runs.
func (s *generateService) remove(ctx context.Context, path, kind string) {
	if err := s.storage.Remove(context.WithoutCancel(ctx), path); err != nil {
		zerolog.Ctx(ctx).Warn().
			Err(err).
			Str("kind", kind).
			Str("path", path).
			Msg("generateService: failed to remove scratch file")
	}
}
