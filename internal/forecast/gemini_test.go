package forecast

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

// TestNewGeminiClient_RequiresAPIKey verifies construction fails fast when no
// API key is configured.
func TestNewGeminiClient_RequiresAPIKey(t *testing.T) {
	_, err := NewGeminiClient("", "https://example.invalid/v1beta", "gemma-3-27b-it", time.Second)
	if !errors.Is(err, ErrMissingAPIKey) {
		t.Fatalf("NewGeminiClient() error = %v, want ErrMissingAPIKey", err)
	}
}

// TestGeminiClient_Generate_Success verifies the request shape and that the
// candidate's parts are concatenated into the returned text.
func TestGeminiClient_Generate_Success(t *testing.T) {
	var gotPath, gotKey string
	var gotBody generateContentRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotKey = r.Header.Get("x-goog-api-key")
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Errorf("decode request body: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"candidates":[{"content":{"parts":[{"text":"Week overview: "},{"text":"clean swell."}]}}]}`))
	}))
	defer srv.Close()

	c, err := NewGeminiClient("test-key", srv.URL, "gemma-3-27b-it", 2*time.Second)
	if err != nil {
		t.Fatalf("NewGeminiClient() error = %v", err)
	}

	text, err := c.Generate(context.Background(), "surf report please")
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if text != "Week overview: clean swell." {
		t.Errorf("Generate() = %q, want concatenated parts", text)
	}
	if gotPath != "/models/gemma-3-27b-it:generateContent" {
		t.Errorf("request path = %q, want generateContent for configured model", gotPath)
	}
	if gotKey != "test-key" {
		t.Errorf("x-goog-api-key = %q, want test-key", gotKey)
	}
	if len(gotBody.Contents) != 1 || len(gotBody.Contents[0].Parts) != 1 || gotBody.Contents[0].Parts[0].Text != "surf report please" {
		t.Errorf("request contents = %+v, want single part with prompt", gotBody.Contents)
	}
}

// TestGeminiClient_Generate_EmptyCandidates verifies that a response with no
// candidates yields empty text, not an error.
func TestGeminiClient_Generate_EmptyCandidates(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"candidates":[]}`))
	}))
	defer srv.Close()

	c, err := NewGeminiClient("test-key", srv.URL, "gemma-3-27b-it", 2*time.Second)
	if err != nil {
		t.Fatalf("NewGeminiClient() error = %v", err)
	}
	text, err := c.Generate(context.Background(), "prompt")
	if err != nil {
		t.Fatalf("Generate() error = %v, want nil for empty candidates", err)
	}
	if text != "" {
		t.Errorf("Generate() = %q, want empty text", text)
	}
}

// TestGeminiClient_Generate_HTTPError verifies non-2xx responses surface as
// errors.
func TestGeminiClient_Generate_HTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":{"message":"quota exceeded"}}`, http.StatusTooManyRequests)
	}))
	defer srv.Close()

	c, err := NewGeminiClient("test-key", srv.URL, "gemma-3-27b-it", 2*time.Second)
	if err != nil {
		t.Fatalf("NewGeminiClient() error = %v", err)
	}
	if _, err := c.Generate(context.Background(), "prompt"); err == nil {
		t.Fatal("Generate() error = nil, want error for HTTP 429")
	}
}

// TestGeminiClient_Generate_Timeout verifies a slow backend fails within the
// configured timeout.
func TestGeminiClient_Generate_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(500 * time.Millisecond)
		_, _ = w.Write([]byte(`{"candidates":[]}`))
	}))
	defer srv.Close()

	c, err := NewGeminiClient("test-key", srv.URL, "gemma-3-27b-it", 50*time.Millisecond)
	if err != nil {
		t.Fatalf("NewGeminiClient() error = %v", err)
	}
	if _, err := c.Generate(context.Background(), "prompt"); err == nil {
		t.Fatal("Generate() error = nil, want timeout error")
	}
}
