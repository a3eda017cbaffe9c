package governance

import (
	"context"
	"errors"
	"strings"
	"time"

	"governance-backend/internal/shared/metrics"
	"governance-backend/internal/shared/telemetry"
)

// FallbackRationale is recorded when a question could not be rated.
const FallbackRationale = "scoring failed"

// DefaultRatingTimeout bounds a single Rating Source call.
const DefaultRatingTimeout = 60 * time.Second

// ErrNoRatings is returned when a Rating Source answers with zero candidates.
var ErrNoRatings = errors.New("rating source returned no ratings")

// RateInput is what a Rating Source sees for one question.
type RateInput struct {
	PolicyContext string
	QuestionID    string
	QuestionText  string
	Fragments     []string
}

// RatingSource rates the maturity of an answer against a question.
type RatingSource interface {
	Rate(ctx context.Context, input RateInput) ([]AnswerRating, error)
}

// RatingSourceFunc adapts a function to RatingSource.
type RatingSourceFunc func(ctx context.Context, input RateInput) ([]AnswerRating, error)

// Rate calls f.
func (f RatingSourceFunc) Rate(ctx context.Context, input RateInput) ([]AnswerRating, error) {
	return f(ctx, input)
}

// SplitFragments breaks an answer into sentence fragments. An answer with no
// usable text yields a single empty fragment.
func SplitFragments(raw string) []string {
	flat := strings.ReplaceAll(raw, "\n", " ")
	parts := strings.Split(flat, ".")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	if len(out) == 0 {
		return []string{""}
	}
	return out
}

// Scorer turns free-text answers into maturity ratings.
type Scorer struct {
	Source  RatingSource
	Timeout time.Duration
}

// NewScorer returns a scorer; a non-positive timeout uses DefaultRatingTimeout.
func NewScorer(source RatingSource, timeout time.Duration) *Scorer {
	if timeout <= 0 {
		timeout = DefaultRatingTimeout
	}
	return &Scorer{Source: source, Timeout: timeout}
}

// Score rates one answer. It never fails: any provider problem yields the fallback rating.
func (s *Scorer) Score(ctx context.Context, q Question, rawAnswer, policyContext string) AnswerRating {
	input := RateInput{
		PolicyContext: policyContext,
		QuestionID:    q.ID,
		QuestionText:  q.Text,
		Fragments:     SplitFragments(strings.TrimSpace(rawAnswer)),
	}

	ratings, err := s.rate(ctx, input)
	if err == nil && len(ratings) == 0 {
		err = ErrNoRatings
	}
	if err != nil {
		metrics.IncRatingFailure()
		telemetry.Error("rating.failed", map[string]any{
			"questionId": q.ID,
			"fragments":  len(input.Fragments),
			"error":      err.Error(),
		})
		return AnswerRating{QuestionID: q.ID, Maturity: 0, Rationale: FallbackRationale}
	}

	best := ratings[0]
	best.Maturity = ClampMaturity(best.Maturity)
	for _, r := range ratings[1:] {
		if m := ClampMaturity(r.Maturity); m > best.Maturity {
			best = r
			best.Maturity = m
		}
	}
	best.QuestionID = q.ID
	return best
}

func (s *Scorer) rate(ctx context.Context, input RateInput) ([]AnswerRating, error) {
	if s.Source == nil {
		return nil, errors.New("rating source not configured")
	}
	timeout := s.Timeout
	if timeout <= 0 {
		timeout = DefaultRatingTimeout
	}
	callCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	type result struct {
		ratings []AnswerRating
		err     error
	}
	done := make(chan result, 1)
	go func() {
		ratings, err := s.Source.Rate(callCtx, input)
		done <- result{ratings: ratings, err: err}
	}()

	select {
	case res := <-done:
		return res.ratings, res.err
	case <-callCtx.Done():
		return nil, callCtx.Err()
	}
}

// ScoreAll rates every question in order. Missing answers are rated as empty text.
func (s *Scorer) ScoreAll(ctx context.Context, questions []Question, answers map[string]string, policyContext string) []AnswerRating {
	out := make([]AnswerRating, 0, len(questions))
	for _, q := range questions {
		out = append(out, s.Score(ctx, q, answers[q.ID], policyContext))
	}
	return out
}
