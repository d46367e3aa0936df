package services

import (
	"context"
	"errors"
	"strings"

	"github.com/GregMSThompson/regexflow/internal/dto"
	"github.com/GregMSThompson/regexflow/internal/errs"
	"github.com/GregMSThompson/regexflow/internal/extract"
	"github.com/GregMSThompson/regexflow/internal/metrics"
	"github.com/GregMSThompson/regexflow/pkg/logger"
)

type patternEngine interface {
	Test(pattern, text string) (extract.Result, error)
}

type patternService struct {
	engine  patternEngine
	metrics *metrics.Metrics
}

func NewPatternService(engine patternEngine, m *metrics.Metrics) *patternService {
	return &patternService{engine: engine, metrics: m}
}

// Test runs pattern against sample with no persisted side effects. Execution faults are
// reported inside the result, never as a match.
func (s *patternService) Test(ctx context.Context, req dto.PatternTestRequest) (dto.PatternTestResult, error) {
	if strings.TrimSpace(req.Pattern) == "" {
		return dto.PatternTestResult{}, errs.NewValidationError("Regex pattern cannot be empty")
	}
	if strings.TrimSpace(req.SampleSms) == "" {
		return dto.PatternTestResult{}, errs.NewValidationError("Sample SMS cannot be empty")
	}

	res, err := s.engine.Test(req.Pattern, req.SampleSms)
	out := dto.PatternTestResult{ExecutionTimeMs: res.Elapsed.Milliseconds()}

	outcome := "not_matched"
	switch {
	case err != nil:
		outcome = "error"
		out.ErrorMessage = err.Error()
		var pe *extract.PatternError
		if !errors.As(err, &pe) && !errors.Is(err, extract.ErrEmptyPattern) {
			out.ErrorMessage = "Error testing pattern: " + err.Error()
		}
	case res.Matched:
		outcome = "matched"
		out.Matched = true
		out.ExtractedFields = res.Fields
	}

	s.metrics.PatternTests.WithLabelValues(outcome).Inc()
	s.metrics.PatternTestDuration.WithLabelValues(outcome).Observe(res.Elapsed.Seconds())
	logger.FromContext(ctx).Debug("pattern tested", "outcome", outcome, "elapsed_ms", out.ExecutionTimeMs)
	return out, nil
}
