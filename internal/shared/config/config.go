package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds application configuration.
type Config struct {
	Port            string
	CORSAllowOrigin []string
	ObjectStoreType string
	LocalStoreDir   string
	AWSRegion       string
	S3Bucket        string
	S3Prefix        string
	SSEKMSKeyID     string
	DatabaseURL     string
	Env             string

	PolicyPrefix string
	PolicyWatch  bool

	RatingProvider string
	LLMModel       string
	OpenAIAPIKey   string
	RatingTimeout  time.Duration

	VertexProject         string
	VertexLocation        string
	VertexCredentialsFile string

	CatalogDir         string
	CitationsFile      string
	QuestionLabelsFile string

	NATSURL    string
	SessionTTL time.Duration

	// Requests per minute per caller.
	RateLimitPerMinute       int
	AssessRateLimitPerMinute int
}

// Load reads configuration from environment variables with sensible defaults.
func Load() Config {
	// Best-effort load of local env files for dev convenience.
	loadEnvFiles(".env", "cmd/.env")

	env := normalizeEnv(getEnv("ENV", "dev"))
	dbURL := os.Getenv("DATABASE_URL")

	if env == "production" && dbURL == "" {
		log.Printf("DATABASE_URL is required in production")
	}

	return Config{
		Port:            getEnv("PORT", "8080"),
		CORSAllowOrigin: splitAndTrim(getEnv("CORS_ALLOW_ORIGINS", "http://localhost:5173")),
		ObjectStoreType: normalizeStoreType(getEnv("OBJECT_STORE", "local")),
		LocalStoreDir:   getEnv("LOCAL_STORE_DIR", "./data"),
		AWSRegion:       getEnv("AWS_REGION", ""),
		S3Bucket:        getEnv("S3_BUCKET", ""),
		S3Prefix:        getEnv("S3_PREFIX", ""),
		SSEKMSKeyID:     getEnv("SSE_KMS_KEY_ID", ""),
		DatabaseURL:     dbURL,
		Env:             env,

		PolicyPrefix: strings.Trim(getEnv("POLICY_PREFIX", "policies"), "/"),
		PolicyWatch:  getBool("POLICY_WATCH", false),

		RatingProvider: strings.ToLower(strings.TrimSpace(getEnv("RATING_PROVIDER", "openai"))),
		LLMModel:       getEnv("LLM_MODEL", ""),
		OpenAIAPIKey:   os.Getenv("OPENAI_API_KEY"),
		RatingTimeout:  time.Duration(getInt("RATING_TIMEOUT_SECONDS", 60)) * time.Second,

		VertexProject:         getEnv("VERTEX_PROJECT", ""),
		VertexLocation:        getEnv("VERTEX_LOCATION", "us-central1"),
		VertexCredentialsFile: getEnv("VERTEX_CREDENTIALS_FILE", ""),

		CatalogDir:         getEnv("CATALOG_DIR", ""),
		CitationsFile:      getEnv("CITATIONS_FILE", ""),
		QuestionLabelsFile: getEnv("QUESTION_LABELS_FILE", ""),

		NATSURL:    getEnv("NATS_URL", ""),
		SessionTTL: time.Duration(getInt("SESSION_TTL_MINUTES", 120)) * time.Minute,

		RateLimitPerMinute:       getInt("RATE_LIMIT_PER_MINUTE", 600),
		AssessRateLimitPerMinute: getInt("ASSESS_RATE_LIMIT_PER_MINUTE", 30),
	}
}

func getEnv(key, def string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return def
}

func getInt(key string, def int) int {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		log.Printf("config %s invalid positive int %q, using %d", key, raw, def)
		return def
	}
	return n
}

func getBool(key string, def bool) bool {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	b, err := strconv.ParseBool(raw)
	if err != nil {
		log.Printf("config %s invalid bool %q, using %t", key, raw, def)
		return def
	}
	return b
}

func splitAndTrim(raw string) []string {
	parts := strings.Split(raw, ",")
	var out []string
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func normalizeEnv(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "production", "prod":
		return "production"
	case "staging":
		return "staging"
	case "local":
		return "local"
	case "development", "dev":
		return "dev"
	default:
		return "dev"
	}
}

func normalizeStoreType(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "s3":
		return "s3"
	default:
		return "local"
	}
}
