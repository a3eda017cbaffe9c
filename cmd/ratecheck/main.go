package main

// Rate one answer against one question with the configured rating source:
//   go run ./cmd/ratecheck -question "Is there a risk register?" -answer "Yes. Reviewed quarterly."

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"governance-backend/internal/bootstrap"
	"governance-backend/internal/extract"
	"governance-backend/internal/governance"
	"governance-backend/internal/shared/config"
)

type output struct {
	Provider  string   `json:"provider"`
	Model     string   `json:"model"`
	Question  string   `json:"question"`
	Fragments []string `json:"fragments"`
	Maturity  int      `json:"maturity"`
	Rationale string   `json:"rationale"`
	Elapsed   string   `json:"elapsed"`
}

func main() {
	cfg := config.Load()

	question := flag.String("question", "", "Question text")
	answer := flag.String("answer", "", "Answer text")
	answerFile := flag.String("answer-file", "", "Read the answer from a file instead")
	policyFile := flag.String("policy", "", "Policy document (pdf, docx, txt, md); defaults to the baseline policy")
	provider := flag.String("provider", cfg.RatingProvider, "Rating provider (openai, vertex, none)")
	model := flag.String("model", cfg.LLMModel, "Model name")
	flag.Parse()

	if strings.TrimSpace(*question) == "" {
		exitErr("question is required")
	}
	answerText := *answer
	if strings.TrimSpace(*answerFile) != "" {
		data, err := os.ReadFile(*answerFile)
		if err != nil {
			exitErr(fmt.Sprintf("read answer: %v", err))
		}
		answerText = string(data)
	}

	ctx := context.Background()
	policyText := governance.BaselinePolicy
	if strings.TrimSpace(*policyFile) != "" {
		text, err := readPolicy(ctx, *policyFile)
		if err != nil {
			exitErr(err.Error())
		}
		policyText = text
	}

	cfg.RatingProvider = *provider
	cfg.LLMModel = *model
	source, err := bootstrap.BuildRatingSource(ctx, cfg)
	if err != nil {
		exitErr(err.Error())
	}

	scorer := governance.NewScorer(source, cfg.RatingTimeout)
	q := governance.Question{ID: "ratecheck", Text: *question}
	start := time.Now()
	rating := scorer.Score(ctx, q, answerText, policyText)

	out := output{
		Provider:  cfg.RatingProvider,
		Model:     cfg.LLMModel,
		Question:  *question,
		Fragments: governance.SplitFragments(answerText),
		Maturity:  rating.Maturity,
		Rationale: rating.Rationale,
		Elapsed:   time.Since(start).Round(time.Millisecond).String(),
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		exitErr(fmt.Sprintf("encode output: %v", err))
	}
}

func readPolicy(ctx context.Context, path string) (string, error) {
	name := filepath.Base(path)
	if !extract.Supported(name) {
		return "", fmt.Errorf("unsupported policy file %s", name)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read policy: %w", err)
	}
	text, err := extract.ExtractTextFromBytes(ctx, data, extract.MimeFromName(name), name)
	if err != nil {
		return "", fmt.Errorf("extract policy text: %w", err)
	}
	return text, nil
}

func exitErr(msg string) {
	fmt.Fprintln(os.Stderr, msg)
	os.Exit(1)
}
