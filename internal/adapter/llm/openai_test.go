package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func newChatServer(t *testing.T, handler http.HandlerFunc) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return srv
}

func TestGenerate(t *testing.T) {
	srv := newChatServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if auth := r.Header.Get("Authorization"); auth != "Bearer chat-key" {
			t.Errorf("unexpected auth header: %s", auth)
		}

		var req chatRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("bad request body: %v", err)
		}
		if len(req.Messages) != 1 || req.Messages[0].Role != "user" {
			t.Errorf("unexpected messages: %+v", req.Messages)
		}

		json.NewEncoder(w).Encode(chatResponse{
			Choices: []chatChoice{{Message: chatMessage{Role: "assistant", Content: "Because it fits."}}},
		})
	})

	t.Setenv("TEST_CHAT_KEY", "chat-key")
	client, err := NewOpenAIChat("TEST_CHAT_KEY", WithBaseURL(srv.URL), WithModel("test-model"))
	if err != nil {
		t.Fatalf("failed to create client: %v", err)
	}

	text, err := client.Generate(context.Background(), "why this course?")
	if err != nil {
		t.Fatalf("generate failed: %v", err)
	}
	if text != "Because it fits." {
		t.Errorf("unexpected response: %q", text)
	}
}

func TestGenerate_APIError(t *testing.T) {
	srv := newChatServer(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(chatResponse{
			Error: &apiError{Message: "invalid api key", Type: "auth"},
		})
	})

	t.Setenv("TEST_CHAT_KEY", "chat-key")
	client, err := NewOpenAIChat("TEST_CHAT_KEY", WithBaseURL(srv.URL))
	if err != nil {
		t.Fatal(err)
	}

	if _, err := client.Generate(context.Background(), "prompt"); err == nil {
		t.Error("expected error from API error response")
	}
}

func TestGenerate_EmptyChoices(t *testing.T) {
	srv := newChatServer(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(chatResponse{})
	})

	t.Setenv("TEST_CHAT_KEY", "chat-key")
	client, err := NewOpenAIChat("TEST_CHAT_KEY", WithBaseURL(srv.URL))
	if err != nil {
		t.Fatal(err)
	}

	if _, err := client.Generate(context.Background(), "prompt"); err == nil {
		t.Error("expected error for empty choices")
	}
}

func TestGenerate_ContextCancelled(t *testing.T) {
	srv := newChatServer(t, func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		json.NewEncoder(w).Encode(chatResponse{
			Choices: []chatChoice{{Message: chatMessage{Content: "late"}}},
		})
	})

	t.Setenv("TEST_CHAT_KEY", "chat-key")
	client, err := NewOpenAIChat("TEST_CHAT_KEY", WithBaseURL(srv.URL))
	if err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	if _, err := client.Generate(ctx, "prompt"); err == nil {
		t.Error("expected error when context expires")
	}
}

func TestNewOpenAIChat_MissingKey(t *testing.T) {
	t.Setenv("TEST_CHAT_MISSING", "")
	if _, err := NewOpenAIChat("TEST_CHAT_MISSING"); err == nil {
		t.Error("expected error for missing API key")
	}
}

func TestNewOpenAIChat_Defaults(t *testing.T) {
	t.Setenv("TEST_CHAT_KEY", "chat-key")
	client, err := NewOpenAIChat("TEST_CHAT_KEY")
	if err != nil {
		t.Fatal(err)
	}

	if client.baseURL != DefaultBaseURL {
		t.Errorf("baseURL = %s, want %s", client.baseURL, DefaultBaseURL)
	}
	if client.ModelName() != DefaultModel {
		t.Errorf("model = %s, want %s", client.ModelName(), DefaultModel)
	}
	if client.client.Timeout != DefaultTimeout {
		t.Errorf("timeout = %v, want %v", client.client.Timeout, DefaultTimeout)
	}
}
