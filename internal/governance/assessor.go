package governance

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"governance-backend/internal/shared/metrics"
	"governance-backend/internal/shared/telemetry"
)

// ErrInvalidInput marks a request the caller must fix.
var ErrInvalidInput = errors.New("invalid assessment input")

// BaselinePolicy is the policy context used when no documents are available.
const BaselinePolicy = `**AI Governance Policy - Document #1**
1.  **Scope and Purpose:** This policy applies to all AI systems developed and deployed by our organization.
2.  **Accountability:** The AI Governance Officer (AIGO) is responsible for oversight.
3.  **Risk Management:** All AI projects must undergo a formal risk assessment, classified as per the EU AI Act.
4.  **Human Oversight:** High-risk systems must include Human-in-the-Loop (HITL) mechanisms with clear escalation paths.
5.  **Transparency:** Model cards and data sheets are mandatory for all production models.`

// PolicyProvider supplies the reference text passed to the Rating Source.
type PolicyProvider interface {
	PolicyContext(ctx context.Context) (string, error)
}

// Request is one assessment.
type Request struct {
	Questions []Question `json:"questions"`
	Answers   Answers    `json:"answers"`
	Controls  ControlSet `json:"controls"`
}

// Report is the compiled assessment with scores rounded to two decimals.
type Report struct {
	Scores              map[Framework]float64           `json:"scores"`
	Overall             float64                         `json:"overall"`
	PerQuestion         map[string]int                  `json:"perQuestion"`
	Rationales          map[string]string               `json:"rationales"`
	Controls            ControlSet                      `json:"controls"`
	Recommendations     []string                        `json:"recommendations"`
	DetailedAnalysis    map[Framework]FrameworkAnalysis `json:"detailedAnalysis"`
	ImplementedControls int                             `json:"implementedControls"`
	TotalControls       int                             `json:"totalControls"`

	Result AssessmentResult `json:"-"`
}

// Assessor runs the scoring pipeline. It holds no per-request state.
type Assessor struct {
	Scorer     *Scorer
	Policy     PolicyProvider
	Citations  Citations
	Frameworks []Framework
}

// NewAssessor wires an assessor over the default framework order.
func NewAssessor(scorer *Scorer, policy PolicyProvider, citations Citations) *Assessor {
	return &Assessor{
		Scorer:     scorer,
		Policy:     policy,
		Citations:  citations,
		Frameworks: DefaultFrameworks,
	}
}

// Validate checks identifiers and weights.
func (r Request) Validate() error {
	seen := make(map[string]struct{}, len(r.Questions))
	for i, q := range r.Questions {
		id := strings.TrimSpace(q.ID)
		if id == "" {
			return fmt.Errorf("%w: questions[%d].id is required", ErrInvalidInput, i)
		}
		if _, dup := seen[id]; dup {
			return fmt.Errorf("%w: duplicate question id %q", ErrInvalidInput, id)
		}
		seen[id] = struct{}{}
		if err := checkWeights(q.Weights); err != nil {
			return fmt.Errorf("%w: question %q: %v", ErrInvalidInput, id, err)
		}
	}
	keys := make(map[string]struct{}, len(r.Controls))
	for _, ctrl := range r.Controls {
		if strings.TrimSpace(ctrl.Key) == "" {
			return fmt.Errorf("%w: control key is required", ErrInvalidInput)
		}
		if _, dup := keys[ctrl.Key]; dup {
			return fmt.Errorf("%w: duplicate control %q", ErrInvalidInput, ctrl.Key)
		}
		keys[ctrl.Key] = struct{}{}
		if err := checkWeights(ctrl.Weights); err != nil {
			return fmt.Errorf("%w: control %q: %v", ErrInvalidInput, ctrl.Key, err)
		}
	}
	return nil
}

// MaxWeight bounds a single weight so framework sums stay finite.
const MaxWeight = 1e6

func checkWeights(w Weights) error {
	for f, v := range w {
		if v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("weight for %s must be a non-negative number", f)
		}
		if v > MaxWeight {
			return fmt.Errorf("weight for %s exceeds %g", f, MaxWeight)
		}
	}
	return nil
}

// Assess scores the answers and compiles the report.
func (a *Assessor) Assess(ctx context.Context, req Request) (Report, error) {
	if err := req.Validate(); err != nil {
		return Report{}, err
	}
	if a.Scorer == nil {
		return Report{}, errors.New("assessor: scorer not configured")
	}
	start := time.Now()
	defer func() {
		metrics.ObserveAssessmentDuration(time.Since(start).Seconds())
	}()

	frameworks := a.Frameworks
	if len(frameworks) == 0 {
		frameworks = DefaultFrameworks
	}

	policyText := a.policyContext(ctx)
	ratings := a.Scorer.ScoreAll(ctx, req.Questions, req.Answers, policyText)

	perQuestion := make(map[string]int, len(ratings))
	rationales := make(map[string]string, len(ratings))
	for _, r := range ratings {
		perQuestion[r.QuestionID] = r.Maturity
		rationales[r.QuestionID] = r.Rationale
	}

	scores := Aggregate(frameworks, req.Questions, req.Controls, perQuestion)
	result := AssessmentResult{
		FrameworkScores:   scores,
		OverallScore:      Overall(scores, frameworks),
		PerQuestionScores: perQuestion,
		Rationales:        rationales,
		Recommendations:   Recommend(frameworks, scores, req.Controls),
		DetailedAnalysis:  Analyze(frameworks, req.Questions, req.Controls, perQuestion, a.Citations),
	}

	return compileReport(frameworks, req.Controls, result), nil
}

func (a *Assessor) policyContext(ctx context.Context) string {
	if a.Policy == nil {
		return BaselinePolicy
	}
	text, err := a.Policy.PolicyContext(ctx)
	if err != nil {
		telemetry.Error("policy.load_failed", map[string]any{"error": err.Error()})
		return BaselinePolicy
	}
	if strings.TrimSpace(text) == "" {
		return BaselinePolicy
	}
	return text
}

func compileReport(frameworks []Framework, controls ControlSet, result AssessmentResult) Report {
	rounded := make(map[Framework]float64, len(frameworks))
	for _, f := range frameworks {
		rounded[f] = Round2(result.FrameworkScores[f])
	}
	if controls == nil {
		controls = ControlSet{}
	}
	return Report{
		Scores:              rounded,
		Overall:             Round2(result.OverallScore),
		PerQuestion:         result.PerQuestionScores,
		Rationales:          result.Rationales,
		Controls:            controls,
		Recommendations:     result.Recommendations,
		DetailedAnalysis:    result.DetailedAnalysis,
		ImplementedControls: controls.ImplementedCount(),
		TotalControls:       len(controls),
		Result:              result,
	}
}

// Round2 rounds to two decimal places.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}
