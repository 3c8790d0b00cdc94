// Package process runs the ID card generator as an external program.
//
// The generator is launched as
//
//	<command> [args...] <uploadPath> <originalName> <template>
//
// and reports the artifact file name on stdout. Anything on stderr is treated
// as diagnostics; a non-zero exit status is a failure.
package process

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"idcardgen/internal/config"
	"idcardgen/internal/domain"
	"idcardgen/internal/port"
)

// waitDelay bounds how long Wait blocks on inherited stdout/stderr pipes
// after the process was killed.
const waitDelay = 5 * time.Second

type processGenerator struct {
	command string
	args    []string
	dir     string
	timeout time.Duration
}

// NewGenerator creates an ArtifactGenerator backed by an external program.
func NewGenerator(cfg *config.GeneratorConfig) port.ArtifactGenerator {
	args := make([]string, len(cfg.Args))
	copy(args, cfg.Args)
	return &processGenerator{
		command: cfg.Command,
		args:    args,
		dir:     cfg.Dir,
		timeout: cfg.Timeout,
	}
}

func (g *processGenerator) Generate(ctx context.Context, req port.GenerateRequest) (*port.GenerateResult, error) {
	parent := ctx
	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	args := make([]string, 0, len(g.args)+3)
	args = append(args, g.args...)
	args = append(args, req.UploadPath, req.OriginalName, req.Template)

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, g.command, args...)
	cmd.Dir = g.dir
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	cmd.WaitDelay = waitDelay

	logger := zerolog.Ctx(ctx)
	logger.Debug().
		Str("command", g.command).
		Strs("args", args).
		Msg("processGenerator.Generate: starting generator")

	start := time.Now()
	runErr := cmd.Run()
	elapsed := time.Since(start)
	diagnostics := strings.TrimSpace(stderr.String())

	if runErr != nil {
		genErr := &domain.GeneratorError{
			ExitCode:    -1,
			Diagnostics: diagnostics,
			Err:         runErr,
		}
		var exitErr *exec.ExitError
		if errors.As(runErr, &exitErr) {
			genErr.ExitCode = exitErr.ExitCode()
		}
		if g.timeout > 0 && parent.Err() == nil && errors.Is(ctx.Err(), context.DeadlineExceeded) {
			genErr.Err = fmt.Errorf("%w: %w", domain.ErrGeneratorTimeout, runErr)
			genErr.Timeout = g.timeout
		}
		logger.Error().
			Err(runErr).
			Int("exit_code", genErr.ExitCode).
			Str("stderr", diagnostics).
			Dur("elapsed", elapsed).
			Msg("processGenerator.Generate: generator failed")
		return nil, genErr
	}

	name := strings.TrimSpace(stdout.String())
	if name == "" {
		return nil, &domain.GeneratorError{Diagnostics: diagnostics, Err: domain.ErrEmptyGeneratorOutput}
	}
	if !domain.IsBareFileName(name) {
		return nil, &domain.GeneratorError{
			Diagnostics: diagnostics,
			Err:         fmt.Errorf("%w: %q", domain.ErrInvalidArtifactName, name),
		}
	}

	if diagnostics != "" {
		logger.Warn().
			Str("stderr", diagnostics).
			Msg("processGenerator.Generate: generator wrote to stderr")
	}
	logger.Info().
		Str("artifact", name).
		Dur("elapsed", elapsed).
		Msg("processGenerator.Generate: generator finished")

	return &port.GenerateResult{ArtifactName: name, Diagnostics: diagnostics}, nil
}

func (g *processGenerator) Check(_ context.Context) error {
	if _, err := exec.LookPath(g.command); err != nil {
		return fmt.Errorf("generator command %q: %w", g.command, err)
	}
	return nil
}
