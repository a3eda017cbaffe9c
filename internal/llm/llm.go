package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"governance-backend/internal/governance"
)

// ErrNotImplemented is returned by the placeholder rating source.
var ErrNotImplemented = errors.New("rating source not configured")

// Provider names accepted by RATING_PROVIDER.
const (
	ProviderOpenAI = "openai"
	ProviderVertex = "vertex"
	ProviderNone   = "none"
)

// Placeholder is the no-op rating source. Every call fails, so every question falls
// back to the lowest maturity.
type Placeholder struct{}

// Rate returns ErrNotImplemented.
func (Placeholder) Rate(ctx context.Context, input governance.RateInput) ([]governance.AnswerRating, error) {
	_ = ctx
	_ = input
	return nil, ErrNotImplemented
}

// NormalizeProvider maps config values onto a known provider name.
func NormalizeProvider(raw string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", ProviderOpenAI:
		return ProviderOpenAI, nil
	case ProviderVertex, "gemini", "vertexai":
		return ProviderVertex, nil
	case ProviderNone, "stub", "placeholder":
		return ProviderNone, nil
	default:
		return "", fmt.Errorf("unknown rating provider %q", raw)
	}
}

var _ governance.RatingSource = Placeholder{}
