package classifier_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/modwarden/warden-api/internal/pkg/classifier"
)

func completionResponse(content string) string {
	resp := map[string]any{
		"choices": []map[string]any{
			{"message": map[string]any{"content": content}},
		},
	}
	b, _ := json.Marshal(resp)
	return string(b)
}

func newTestClient(baseURL string, maxRetries int) *classifier.Client {
	return classifier.NewClient(classifier.Config{
		BaseURL:    baseURL,
		APIKey:     "test-key",
		Model:      "test-model",
		Timeout:    5 * time.Second,
		MaxRetries: maxRetries,
	})
}

func TestClassifyViolation(t *testing.T) {
	var gotAuth string
	var gotBody []byte
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotBody, _ = io.ReadAll(r.Body)

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(completionResponse(`{"violation_detected": true, "level_name": "Orange", "explanation": "targeted insult"}`)))
	}))
	t.Cleanup(server.Close)

	c := newTestClient(server.URL, 3)
	v, err := c.Classify(context.Background(), "grade this", []string{"Yellow", "Orange", "Red"}, "you are an idiot", []string{"bob: hi"})
	if err != nil {
		t.Fatalf("classify failed: %v", err)
	}
	if !v.ViolationDetected || v.LevelName != "Orange" {
		t.Fatalf("wrong verdict: %+v", v)
	}

	if gotAuth != "Bearer test-key" {
		t.Fatalf("wrong auth header: %q", gotAuth)
	}
	body := string(gotBody)
	for _, want := range []string{"Yellow, Orange, Red", "you are an idiot", "bob: hi"} {
		if !strings.Contains(body, want) {
			t.Fatalf("request body missing %q: %s", want, body)
		}
	}
}

func TestClassifyCodeFencedVerdict(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(completionResponse("```json\n{\"violation_detected\": false}\n```")))
	}))
	t.Cleanup(server.Close)

	v, err := newTestClient(server.URL, 1).Classify(context.Background(), "p", []string{"Yellow"}, "hi", nil)
	if err != nil {
		t.Fatalf("classify failed: %v", err)
	}
	if v.ViolationDetected {
		t.Fatalf("expected no violation, got %+v", v)
	}
}

func TestClassifyRetriesServerErrors(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte(completionResponse(`{"violation_detected": false}`)))
	}))
	t.Cleanup(server.Close)

	_, err := newTestClient(server.URL, 3).Classify(context.Background(), "p", []string{"Yellow"}, "hi", nil)
	if err != nil {
		t.Fatalf("expected success after retries, got %v", err)
	}
	if got := atomic.LoadInt32(&calls); got != 3 {
		t.Fatalf("expected 3 attempts, got %d", got)
	}
}

func TestClassifyRetriesExhausted(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	t.Cleanup(server.Close)

	_, err := newTestClient(server.URL, 2).Classify(context.Background(), "p", []string{"Yellow"}, "hi", nil)
	if err == nil {
		t.Fatal("expected error after exhausting retries")
	}
	if got := atomic.LoadInt32(&calls); got != 2 {
		t.Fatalf("expected exactly 2 attempts, got %d", got)
	}
}

func TestClassifyClientErrorNotRetried(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusUnauthorized)
	}))
	t.Cleanup(server.Close)

	_, err := newTestClient(server.URL, 3).Classify(context.Background(), "p", []string{"Yellow"}, "hi", nil)
	if err == nil {
		t.Fatal("expected error on 401")
	}
	if got := atomic.LoadInt32(&calls); got != 1 {
		t.Fatalf("4xx must not be retried, got %d attempts", got)
	}
}

func TestClassifyMalformedVerdict(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(completionResponse("I think this message is fine.")))
	}))
	t.Cleanup(server.Close)

	_, err := newTestClient(server.URL, 1).Classify(context.Background(), "p", []string{"Yellow"}, "hi", nil)
	if err == nil {
		t.Fatal("expected decode error for non-JSON verdict")
	}
}
