package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestClient_ChatCompletion(t *testing.T) {
	ctx := context.Background()

	t.Run("Given a healthy provider When called Then content and token counts come back", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/chat/completions" {
				t.Errorf("unexpected path: %s", r.URL.Path)
			}
			if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
				t.Errorf("unexpected auth header: %s", got)
			}
			fmt.Fprint(w, `{"choices":[{"message":{"content":"hi"}}],"usage":{"prompt_tokens":7,"completion_tokens":2}}`)
		}))
		defer srv.Close()

		c := NewClient("test-key", srv.URL, 5*time.Second)
		content, in, out, err := c.ChatCompletion(ctx, chatRequest{Model: "gpt-4o"})
		if err != nil {
			t.Fatalf("ChatCompletion failed: %v", err)
		}
		if content != "hi" || in != 7 || out != 2 {
			t.Errorf("unexpected result: %q, %d, %d", content, in, out)
		}
	})

	t.Run("Given a rate limit When called Then the error is typed and transient", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusTooManyRequests)
			fmt.Fprint(w, `{"error":{"message":"rate limited","type":"rate_limit_error"}}`)
		}))
		defer srv.Close()

		c := NewClient("test-key", srv.URL, 5*time.Second)
		_, _, _, err := c.ChatCompletion(ctx, chatRequest{Model: "gpt-4o"})

		var pe *ProviderError
		if !errors.As(err, &pe) {
			t.Fatalf("expected ProviderError, got: %v", err)
		}
		if pe.StatusCode != 429 || !pe.Transient() {
			t.Errorf("expected transient 429, got %d", pe.StatusCode)
		}
		if pe.Message != "rate limited" {
			t.Errorf("expected structured message, got %q", pe.Message)
		}
	})

	t.Run("Given a bad request When called Then the error is not transient", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadRequest)
			fmt.Fprint(w, `{"error":{"message":"unknown model"}}`)
		}))
		defer srv.Close()

		c := NewClient("test-key", srv.URL, 5*time.Second)
		_, _, _, err := c.ChatCompletion(ctx, chatRequest{Model: "nope"})

		var pe *ProviderError
		if !errors.As(err, &pe) || pe.Transient() {
			t.Errorf("expected non-transient ProviderError, got: %v", err)
		}
	})
}

func TestClient_ChatStream(t *testing.T) {
	ctx := context.Background()

	t.Run("Given SSE data lines When streamed Then deltas arrive until DONE", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "text/event-stream")
			fmt.Fprint(w, "data: {\"choices\":[{\"delta\":{\"content\":\"hel\"}}]}\n\n")
			fmt.Fprint(w, "data: {\"choices\":[{\"delta\":{\"content\":\"lo\"}}]}\n\n")
			fmt.Fprint(w, "data: [DONE]\n\n")
		}))
		defer srv.Close()

		c := NewClient("test-key", srv.URL, 5*time.Second)
		ch, err := c.ChatStream(ctx, chatRequest{Model: "gpt-4o"})
		if err != nil {
			t.Fatalf("ChatStream failed: %v", err)
		}

		var got string
		for frag := range ch {
			if frag.Err != nil {
				t.Fatalf("unexpected fragment error: %v", frag.Err)
			}
			got += frag.Content
		}
		if got != "hello" {
			t.Errorf("expected hello, got %q", got)
		}
	})
}

func TestClient_Embeddings(t *testing.T) {
	ctx := context.Background()

	t.Run("Given out-of-order indexed data When embedded Then vectors land in input order", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, `{"data":[{"embedding":[0.2],"index":1},{"embedding":[0.1],"index":0}],"usage":{"total_tokens":12}}`)
		}))
		defer srv.Close()

		c := NewClient("test-key", srv.URL, 5*time.Second)
		vectors, tokens, err := c.Embeddings(ctx, "text-embedding-3-large", []string{"a", "b"})
		if err != nil {
			t.Fatalf("Embeddings failed: %v", err)
		}
		if tokens != 12 {
			t.Errorf("expected 12 tokens, got %d", tokens)
		}
		if vectors[0][0] != 0.1 || vectors[1][0] != 0.2 {
			t.Errorf("vectors not reordered by index: %v", vectors)
		}
	})

	t.Run("Given a count mismatch When embedded Then an error is returned", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, `{"data":[{"embedding":[0.1],"index":0}]}`)
		}))
		defer srv.Close()

		c := NewClient("test-key", srv.URL, 5*time.Second)
		if _, _, err := c.Embeddings(ctx, "text-embedding-3-large", []string{"a", "b"}); err == nil {
			t.Error("expected mismatch error")
		}
	})
}
