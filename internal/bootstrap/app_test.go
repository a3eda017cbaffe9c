package bootstrap

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"governance-backend/internal/llm"
	"governance-backend/internal/shared/config"
	"governance-backend/internal/shared/telemetry"
)

func memoryConfig(t *testing.T) config.Config {
	return config.Config{
		Env:            "dev",
		LocalStoreDir:  t.TempDir(),
		PolicyPrefix:   "policies",
		RatingProvider: "none",
		RatingTimeout:  time.Second,
		SessionTTL:     time.Hour,
	}
}

func TestBuildInMemory(t *testing.T) {
	restore := telemetry.SetOutput(io.Discard)
	defer restore()

	app, err := Build(memoryConfig(t))
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	defer app.Close()

	if app.DB != nil {
		t.Fatalf("expected no database")
	}
	if _, ok := app.RatingSource.(llm.Placeholder); !ok {
		t.Fatalf("expected placeholder rating source, got %T", app.RatingSource)
	}

	resp := httptest.NewRecorder()
	app.Router.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/api/v1/health", nil))
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
}

func TestBuildRequiresDatabaseInProduction(t *testing.T) {
	cfg := memoryConfig(t)
	cfg.Env = "production"
	if _, err := Build(cfg); err == nil {
		t.Fatalf("expected error without DATABASE_URL in production")
	}
}

func TestBuildRatingSourceSelection(t *testing.T) {
	cases := []struct {
		name     string
		provider string
		model    string
		key      string
		wantErr  bool
	}{
		{name: "openai", provider: "openai", model: "gpt-4o-mini", key: "sk-test"},
		{name: "openai_missing_key", provider: "openai", model: "gpt-4o-mini", wantErr: true},
		{name: "vertex_missing_project", provider: "vertex", model: "gemini-1.5-pro", wantErr: true},
		{name: "none", provider: "none"},
		{name: "unknown", provider: "bard", wantErr: true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := BuildRatingSource(context.Background(), config.Config{
				RatingProvider: tc.provider,
				LLMModel:       tc.model,
				OpenAIAPIKey:   tc.key,
			})
			if (err != nil) != tc.wantErr {
				t.Fatalf("expected error=%v, got %v", tc.wantErr, err)
			}
		})
	}
}
