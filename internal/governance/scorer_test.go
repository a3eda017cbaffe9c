package governance

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"
)

func TestSplitFragments(t *testing.T) {
	cases := []struct {
		name string
		raw  string
		want []string
	}{
		{name: "sentences", raw: "We classify risk. Owners sign off.", want: []string{"We classify risk", "Owners sign off"}},
		{name: "newlines", raw: "Line one\nstill one. Two", want: []string{"Line one still one", "Two"}},
		{name: "empty", raw: "", want: []string{""}},
		{name: "only_dots", raw: " . .. ", want: []string{""}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := SplitFragments(tc.raw)
			if !reflect.DeepEqual(got, tc.want) {
				t.Fatalf("expected %q, got %q", tc.want, got)
			}
		})
	}
}

func TestScorePicksMaxFirstSeen(t *testing.T) {
	var seen RateInput
	src := RatingSourceFunc(func(ctx context.Context, in RateInput) ([]AnswerRating, error) {
		seen = in
		return []AnswerRating{
			{Maturity: 1, Rationale: "low"},
			{Maturity: 3, Rationale: "first three"},
			{Maturity: 3, Rationale: "second three"},
			{Maturity: 2, Rationale: "two"},
		}, nil
	})
	s := NewScorer(src, time.Second)

	got := s.Score(context.Background(), Question{ID: "q1", Text: "Do you classify risk?"}, "Yes. Quarterly.", "policy")

	if got.Maturity != 3 || got.Rationale != "first three" || got.QuestionID != "q1" {
		t.Fatalf("unexpected rating %+v", got)
	}
	if seen.PolicyContext != "policy" || seen.QuestionText != "Do you classify risk?" {
		t.Fatalf("unexpected input %+v", seen)
	}
	if !reflect.DeepEqual(seen.Fragments, []string{"Yes", "Quarterly"}) {
		t.Fatalf("unexpected fragments %q", seen.Fragments)
	}
}

func TestScoreClampsMaturity(t *testing.T) {
	src := RatingSourceFunc(func(ctx context.Context, in RateInput) ([]AnswerRating, error) {
		return []AnswerRating{{Maturity: -3, Rationale: "neg"}, {Maturity: 9, Rationale: "big"}}, nil
	})
	got := NewScorer(src, time.Second).Score(context.Background(), Question{ID: "q"}, "a", "")
	if got.Maturity != 4 || got.Rationale != "big" {
		t.Fatalf("expected clamped 4, got %+v", got)
	}
}

func TestScoreFallbacks(t *testing.T) {
	cases := []struct {
		name string
		src  RatingSource
	}{
		{name: "error", src: RatingSourceFunc(func(ctx context.Context, in RateInput) ([]AnswerRating, error) {
			return nil, errors.New("boom")
		})},
		{name: "empty", src: RatingSourceFunc(func(ctx context.Context, in RateInput) ([]AnswerRating, error) {
			return nil, nil
		})},
		{name: "nil_source", src: nil},
		{name: "timeout", src: RatingSourceFunc(func(ctx context.Context, in RateInput) ([]AnswerRating, error) {
			time.Sleep(200 * time.Millisecond)
			return []AnswerRating{{Maturity: 4}}, nil
		})},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s := &Scorer{Source: tc.src, Timeout: 20 * time.Millisecond}
			got := s.Score(context.Background(), Question{ID: "Q2"}, "anything", "")
			want := AnswerRating{QuestionID: "Q2", Maturity: 0, Rationale: FallbackRationale}
			if got != want {
				t.Fatalf("expected fallback %+v, got %+v", want, got)
			}
		})
	}
}

func TestScoreAllOnePerQuestion(t *testing.T) {
	calls := 0
	src := RatingSourceFunc(func(ctx context.Context, in RateInput) ([]AnswerRating, error) {
		calls++
		if in.QuestionID == "q2" {
			return nil, errors.New("provider down")
		}
		return []AnswerRating{{Maturity: 2, Rationale: "ok"}}, nil
	})
	questions := []Question{{ID: "q1"}, {ID: "q2"}, {ID: "q3"}}
	got := NewScorer(src, time.Second).ScoreAll(context.Background(), questions, map[string]string{"q1": "yes"}, "")

	if calls != 3 {
		t.Fatalf("expected 3 calls, got %d", calls)
	}
	if len(got) != 3 {
		t.Fatalf("expected 3 ratings, got %d", len(got))
	}
	if got[1].Maturity != 0 || got[1].Rationale != FallbackRationale {
		t.Fatalf("expected fallback for q2, got %+v", got[1])
	}
	if got[2].QuestionID != "q3" || got[2].Maturity != 2 {
		t.Fatalf("expected q3 rated, got %+v", got[2])
	}
}
