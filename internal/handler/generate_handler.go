package handler

import (
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"os"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"idcardgen/internal/config"
	"idcardgen/internal/domain"
	"idcardgen/internal/service"
)

const (
	// multipartOverhead is allowed on top of the file cap for boundaries,
	// part headers and the template field.
	multipartOverhead = 1 << 20
	// formMemory is how much of a multipart body is buffered in memory
	// before parts spill to temporary files.
	formMemory = 8 << 20
)

// GenerateHandler handles ID card generation.
type GenerateHandler struct {
	generateService service.GenerateService
	uploadCfg       *config.UploadConfig
}

// NewGenerateHandler creates a new GenerateHandler.
func NewGenerateHandler(generateService service.GenerateService, uploadCfg *config.UploadConfig) *GenerateHandler {
	return &GenerateHandler{generateService: generateService, uploadCfg: uploadCfg}
}

// GenerateID handles POST /generate-id
// @Summary Generate an ID card
// @Description Upload a document and receive the generated ID card image. Temporary files are removed once the response completes.
// @Tags generate
// @Accept multipart/form-data
// @Produce image/png
// @Produce json
// @Param file formData file true "Document to render"
// @Param template formData string false "Template name" default(Template 1)
// @Success 200 {file} binary "Generated image"
// @Failure 400 {object} ErrorResponse "Missing, malformed or oversized upload"
// @Failure 403 {object} ErrorResponse "Origin not allowed"
// @Failure 500 {object} ErrorResponse "Generation or delivery failed"
// @Router /generate-id [post]
func (h *GenerateHandler) GenerateID(c *gin.Context) {
	if c.Request.Body != nil {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.uploadCfg.MaxBytes()+multipartOverhead)
	}

	if err := c.Request.ParseMultipartForm(formMemory); err != nil {
		HandleError(c, h.classifyFormError(err))
		return
	}
	defer func() { _ = c.Request.MultipartForm.RemoveAll() }()

	file, header, err := c.Request.FormFile("file")
	if err != nil {
		HandleError(c, h.classifyFormError(err))
		return
	}
	defer func() { _ = file.Close() }()

	input := service.GenerateInput{
		File:     file,
		Header:   header,
		Template: c.Request.FormValue("template"),
	}

	artifact, err := h.generateService.Generate(c.Request.Context(), input)
	if err != nil {
		HandleError(c, err)
		return
	}
	defer h.generateService.Discard(c.Request.Context(), artifact)

	h.send(c, artifact)
}

// send streams the artifact as the response body.
func (h *GenerateHandler) send(c *gin.Context, artifact *domain.GeneratedArtifact) {
	logger := zerolog.Ctx(c.Request.Context())

	f, err := os.Open(artifact.Path)
	if err != nil {
		HandleError(c, fmt.Errorf("%w: %w", domain.ErrDeliveryFailed, err))
		return
	}
	defer func() { _ = f.Close() }()

	info, err := f.Stat()
	if err != nil {
		HandleError(c, fmt.Errorf("%w: %w", domain.ErrDeliveryFailed, err))
		return
	}

	c.Header("Content-Type", artifact.ContentType)
	c.Header("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": artifact.Name}))
	c.Header("Content-Length", strconv.FormatInt(info.Size(), 10))
	c.Status(http.StatusOK)

	n, err := io.Copy(c.Writer, f)
	if err != nil {
		if !c.Writer.Written() {
			// gin keeps an existing Content-Type, so the artifact headers go before the JSON error.
			c.Writer.Header().Del("Content-Type")
			c.Writer.Header().Del("Content-Disposition")
			c.Writer.Header().Del("Content-Length")
			HandleError(c, fmt.Errorf("%w: %w", domain.ErrDeliveryFailed, err))
			return
		}
		logger.Warn().
			Err(err).
			Str("artifact", artifact.Name).
			Int64("bytes_sent", n).
			Msg("generateHandler.send: client stream interrupted")
		return
	}

	logger.Info().
		Str("artifact", artifact.Name).
		Str("content_type", artifact.ContentType).
		Int64("bytes_sent", n).
		Msg("generateHandler.send: artifact delivered")
}

func (h *GenerateHandler) classifyFormError(err error) error {
	var maxBytesErr *http.MaxBytesError
	switch {
	case errors.As(err, &maxBytesErr):
		return fmt.Errorf("%w: limit is %d MB", domain.ErrFileTooLarge, h.uploadCfg.MaxFileSizeMB)
	case errors.Is(err, http.ErrMissingFile), errors.Is(err, http.ErrNotMultipart):
		return domain.ErrMissingFile
	default:
		return fmt.Errorf("%w: %w", domain.ErrMalformedUpload, err)
	}
}
