// Package compare implements the price-comparison query service: it
// turns a product name into one provider request and normalizes the
// reply into a ComparisonResult. Failures surface as one of four
// taxonomy kinds (CONFIG_MISSING, CONFIG_INVALID, TRANSIENT_FAILURE,
// MALFORMED_RESPONSE), never as a raw provider error.
package compare

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"quickprice/pkg/gemini"
	"quickprice/pkg/metrics"
	"quickprice/pkg/models"
)

const thinkingBudget = 32768

// Generator is the provider transport the service drives. Satisfied by
// *gemini.Client.
type Generator interface {
	Generate(ctx context.Context, req gemini.GenerateRequest) (*gemini.GenerateResult, error)
}

type Service struct {
	apiKey    string
	generator Generator
	metrics   *metrics.Metrics
	logger    *slog.Logger
}

func NewService(apiKey string, generator Generator, m *metrics.Metrics, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		apiKey:    apiKey,
		generator: generator,
		metrics:   m,
		logger:    logger,
	}
}

// Compare issues exactly one provider call for the given product name
// and returns the normalized result. No internal retries; the caller
// owns retry policy. A nil location falls back to the generic regional
// context in the prompt.
func (s *Service) Compare(ctx context.Context, productName string, loc *models.Location) (*models.ComparisonResult, error) {
	name := strings.TrimSpace(productName)
	if name == "" {
		return nil, ErrEmptyQuery
	}
	if s.apiKey == "" {
		return nil, ErrConfigMissing{Err: errors.New("no provider API key configured")}
	}

	req := gemini.GenerateRequest{
		Prompt:          buildPrompt(name, loc),
		ResponseSchema:  responseSchema(),
		UseGoogleSearch: true,
		ThinkingBudget:  thinkingBudget,
	}

	start := time.Now()
	reply, err := s.generator.Generate(ctx, req)
	s.metrics.ObserveProviderDuration(time.Since(start))
	if err != nil {
		classified := classifyProviderError(err)
		s.metrics.IncProviderError(KindLabel(classified))
		s.logger.Error("provider call failed",
			slog.String("query", name),
			slog.String("kind", KindLabel(classified)),
			slog.Any("error", err),
		)
		return nil, classified
	}

	p, err := normalizePayload(reply.Text)
	if err != nil {
		s.metrics.IncProviderError("MALFORMED_RESPONSE")
		s.logger.Error("unparseable provider payload",
			slog.String("query", name),
			slog.Any("error", err),
		)
		return nil, ErrMalformedResponse{Err: err}
	}
	fillLinkFallbacks(p.Items, name)

	result := &models.ComparisonResult{
		Items:   p.Items,
		Sources: normalizeSources(reply.Sources),
		Summary: p.Summary,
	}
	s.logger.Info("comparison complete",
		slog.String("query", name),
		slog.Int("items", len(result.Items)),
		slog.Int("sources", len(result.Sources)),
		slog.Duration("duration", time.Since(start)),
	)
	return result, nil
}
