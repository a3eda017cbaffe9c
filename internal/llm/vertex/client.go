package vertex

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"governance-backend/internal/governance"
	"governance-backend/internal/llm"
)

const cloudPlatformScope = "https://www.googleapis.com/auth/cloud-platform"

// Options configures the Vertex AI rating source.
type Options struct {
	Project         string
	Location        string
	Model           string
	CredentialsFile string
	Timeout         time.Duration

	// Endpoint and HTTPClient override the defaults; used by tests.
	Endpoint   string
	HTTPClient *http.Client
}

// Rater implements governance.RatingSource using Gemini on Vertex AI.
type Rater struct {
	endpoint   string
	model      string
	httpClient *http.Client
}

// NewRater builds an authenticated rater. Credentials come from the service account
// file when set, otherwise from application default credentials.
func NewRater(ctx context.Context, opts Options) (*Rater, error) {
	if strings.TrimSpace(opts.Model) == "" {
		return nil, fmt.Errorf("LLM_MODEL is required for Vertex AI")
	}
	location := strings.TrimSpace(opts.Location)
	if location == "" {
		location = "us-central1"
	}
	endpoint := opts.Endpoint
	if endpoint == "" {
		if strings.TrimSpace(opts.Project) == "" {
			return nil, fmt.Errorf("VERTEX_PROJECT is required for Vertex AI")
		}
		endpoint = fmt.Sprintf("https://%s-aiplatform.googleapis.com/v1/projects/%s/locations/%s/publishers/google/models/%s:generateContent",
			location, opts.Project, location, opts.Model)
	}

	client := opts.HTTPClient
	if client == nil {
		ts, err := tokenSource(ctx, opts.CredentialsFile)
		if err != nil {
			return nil, err
		}
		client = oauth2.NewClient(ctx, ts)
		client.Timeout = opts.Timeout
		if client.Timeout <= 0 {
			client.Timeout = 120 * time.Second
		}
	}

	return &Rater{endpoint: endpoint, model: opts.Model, httpClient: client}, nil
}

func tokenSource(ctx context.Context, credentialsFile string) (oauth2.TokenSource, error) {
	if path := strings.TrimSpace(credentialsFile); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read vertex credentials: %w", err)
		}
		creds, err := google.CredentialsFromJSON(ctx, data, cloudPlatformScope)
		if err != nil {
			return nil, fmt.Errorf("parse vertex credentials: %w", err)
		}
		return creds.TokenSource, nil
	}
	creds, err := google.FindDefaultCredentials(ctx, cloudPlatformScope)
	if err != nil {
		return nil, fmt.Errorf("vertex default credentials: %w", err)
	}
	return creds.TokenSource, nil
}

type part struct {
	Text string `json:"text"`
}

type content struct {
	Role  string `json:"role,omitempty"`
	Parts []part `json:"parts"`
}

type generationConfig struct {
	Temperature      float32 `json:"temperature"`
	MaxOutputTokens  int     `json:"maxOutputTokens"`
	ResponseMimeType string  `json:"responseMimeType,omitempty"`
}

type generateRequest struct {
	SystemInstruction *content         `json:"systemInstruction,omitempty"`
	Contents          []content        `json:"contents"`
	GenerationConfig  generationConfig `json:"generationConfig"`
}

type generateResponse struct {
	Candidates []struct {
		Content content `json:"content"`
	} `json:"candidates"`
	UsageMetadata *struct {
		PromptTokenCount     int `json:"promptTokenCount"`
		CandidatesTokenCount int `json:"candidatesTokenCount"`
		TotalTokenCount      int `json:"totalTokenCount"`
	} `json:"usageMetadata,omitempty"`
	Error *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error,omitempty"`
}

// Rate sends one question with its answer fragments and parses the ratings.
func (r *Rater) Rate(ctx context.Context, input governance.RateInput) ([]governance.AnswerRating, error) {
	user, err := llm.RatingUserMessage(input)
	if err != nil {
		return nil, err
	}
	reqBody := generateRequest{
		SystemInstruction: &content{Parts: []part{{Text: llm.RatingInstructions()}}},
		Contents:          []content{{Role: "user", Parts: []part{{Text: user}}}},
		GenerationConfig: generationConfig{
			Temperature:      0,
			MaxOutputTokens:  512,
			ResponseMimeType: "application/json",
		},
	}
	payload, err := json.Marshal(reqBody)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("vertex request: %w", err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	var parsed generateResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("vertex response parse (status %d): %w", resp.StatusCode, err)
	}
	if parsed.Error != nil {
		return nil, fmt.Errorf("vertex error: %s (%s)", parsed.Error.Message, parsed.Error.Status)
	}
	if resp.StatusCode >= 300 {
		return nil, fmt.Errorf("vertex status %d", resp.StatusCode)
	}
	if len(parsed.Candidates) == 0 || len(parsed.Candidates[0].Content.Parts) == 0 {
		return nil, fmt.Errorf("vertex response missing candidates")
	}
	if u := parsed.UsageMetadata; u != nil {
		log.Printf("llm response model=%s prompt_version=%s prompt_tokens=%d completion_tokens=%d total_tokens=%d",
			r.model, llm.RatingPromptVersion, u.PromptTokenCount, u.CandidatesTokenCount, u.TotalTokenCount)
	}
	return llm.ParseRatings(parsed.Candidates[0].Content.Parts[0].Text)
}

var _ governance.RatingSource = (*Rater)(nil)
