package policy

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	localstore "governance-backend/internal/shared/storage/object/local"
	"governance-backend/internal/shared/telemetry"
)

func multipartBody(t *testing.T, name, content string) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	fw, err := writer.CreateFormFile("file", name)
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	if _, err := fw.Write([]byte(content)); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	return body, writer.FormDataContentType()
}

func TestPolicyUploadListAndContext(t *testing.T) {
	gin.SetMode(gin.TestMode)
	restore := telemetry.SetOutput(io.Discard)
	defer restore()

	r := gin.New()
	NewHandler(NewStoreProvider(localstore.New(t.TempDir()), "policies")).RegisterRoutes(r.Group("/api/v1"))

	body, ct := multipartBody(t, "charter.md", "All models have an accountable owner.")
	req := httptest.NewRequest(http.MethodPost, "/api/v1/policies", body)
	req.Header.Set("Content-Type", ct)
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)
	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", resp.Code, resp.Body.String())
	}

	resp = httptest.NewRecorder()
	r.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/api/v1/policies", nil))
	var list struct {
		Items []struct {
			Key       string `json:"key"`
			SizeBytes int64  `json:"sizeBytes"`
		} `json:"items"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &list); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if len(list.Items) != 1 || list.Items[0].SizeBytes != int64(len("All models have an accountable owner.")) {
		t.Fatalf("unexpected list %+v", list)
	}

	resp = httptest.NewRecorder()
	r.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/api/v1/policies/context", nil))
	var stats Stats
	if err := json.Unmarshal(resp.Body.Bytes(), &stats); err != nil {
		t.Fatalf("decode stats: %v", err)
	}
	if stats.Documents != 1 || stats.Baseline || !stats.Cached {
		t.Fatalf("unexpected stats %+v", stats)
	}
}

func TestPolicyUploadValidation(t *testing.T) {
	gin.SetMode(gin.TestMode)
	restore := telemetry.SetOutput(io.Discard)
	defer restore()

	r := gin.New()
	NewHandler(NewStoreProvider(localstore.New(t.TempDir()), "policies")).RegisterRoutes(r.Group("/api/v1"))

	body, ct := multipartBody(t, "data.xlsx", "x")
	req := httptest.NewRequest(http.MethodPost, "/api/v1/policies", body)
	req.Header.Set("Content-Type", ct)
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for xlsx, got %d", resp.Code)
	}

	resp = httptest.NewRecorder()
	r.ServeHTTP(resp, httptest.NewRequest(http.MethodPost, "/api/v1/policies", nil))
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 without file, got %d", resp.Code)
	}
}
