package analysis

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	domain "github.com/bryanwahyu/sentinel-ai/internal/domain/analysis"
	"github.com/bryanwahyu/sentinel-ai/internal/infra/ai/prompt"
)

// Service relays analysis requests to the external model and validates
// what comes back. It keeps no per-request state and is safe for
// concurrent use.
type Service struct {
	model  domain.Model
	logger *slog.Logger
}

// NewService wires the service. A nil model is allowed: every analysis then
// fails with ErrNotConfigured.
func NewService(model domain.Model, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{model: model, logger: logger}
}

// Configured reports whether an external model client is available.
func (s *Service) Configured() bool {
	return s.model != nil
}

func (s *Service) AnalyzeText(ctx context.Context, message string) (*domain.Result, error) {
	if !s.Configured() {
		return nil, domain.ErrNotConfigured
	}
	if strings.TrimSpace(message) == "" {
		return nil, fmt.Errorf("%w: message must not be empty", domain.ErrInvalidInput)
	}
	return s.run(ctx, prompt.ForText(message))
}

// AnalyzeImage rejects non-image uploads before calling the model.
func (s *Service) AnalyzeImage(ctx context.Context, img domain.Image) (*domain.Result, error) {
	if !s.Configured() {
		return nil, domain.ErrNotConfigured
	}
	if !img.IsImage() {
		return nil, fmt.Errorf("%w: file provided is not an image", domain.ErrInvalidInput)
	}
	if len(img.Data) == 0 {
		return nil, fmt.Errorf("%w: uploaded file is empty", domain.ErrInvalidInput)
	}
	return s.run(ctx, prompt.ForImage(img))
}

func (s *Service) AnalyzeURL(ctx context.Context, url string) (*domain.Result, error) {
	if !s.Configured() {
		return nil, domain.ErrNotConfigured
	}
	url = strings.TrimSpace(url)
	if url == "" {
		return nil, fmt.Errorf("%w: url must not be empty", domain.ErrInvalidInput)
	}
	return s.run(ctx, prompt.ForURL(url))
}

func (s *Service) run(ctx context.Context, p domain.Prompt) (*domain.Result, error) {
	raw, err := s.model.Complete(ctx, p)
	if err != nil {
		s.logger.ErrorContext(ctx, "model call failed", "kind", p.Kind, "error", err)
		return nil, &domain.UpstreamError{Kind: p.Kind, Err: err}
	}

	res, err := domain.ParseResult(raw)
	if err != nil {
		s.logger.ErrorContext(ctx, "model output rejected", "kind", p.Kind, "error", err)
		return nil, &domain.UpstreamError{Kind: p.Kind, Err: err}
	}

	s.logger.DebugContext(ctx, "analysis complete",
		"kind", p.Kind,
		"risk_score", res.RiskScore,
		"classification", res.Classification,
	)
	return res, nil
}
