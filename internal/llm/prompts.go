package llm

import (
	_ "embed"
	"encoding/json"

	"governance-backend/internal/governance"
)

//go:embed prompts/rating_v1.txt
var ratingInstructionsV1 string

// RatingPromptVersion identifies the instruction block sent to providers.
const RatingPromptVersion = "rating_v1"

// RatingInstructions returns the fixed system instruction block.
func RatingInstructions() string {
	return ratingInstructionsV1
}

type ratingPayload struct {
	PolicyDocuments string   `json:"policy_documents"`
	Question        string   `json:"question"`
	Answers         []string `json:"answers"`
}

// RatingUserMessage renders the user turn for one question.
func RatingUserMessage(input governance.RateInput) (string, error) {
	answers := input.Fragments
	if answers == nil {
		answers = []string{}
	}
	data, err := json.Marshal(ratingPayload{
		PolicyDocuments: input.PolicyContext,
		Question:        input.QuestionText,
		Answers:         answers,
	})
	if err != nil {
		return "", err
	}
	return string(data), nil
}
