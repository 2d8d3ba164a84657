package adapter

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestNew_ValidProviders(t *testing.T) {
	tests := []struct {
		provider string
	}{
		{ProviderClaude},
		{ProviderOpenAI},
		{ProviderOllama},
	}

	for _, tt := range tests {
		t.Run(tt.provider, func(t *testing.T) {
			a, err := New(tt.provider, "test-key", "")
			if err != nil {
				t.Fatalf("New(%q) error: %v", tt.provider, err)
			}
			if a == nil {
				t.Fatalf("New(%q) returned nil adapter", tt.provider)
			}
			info := a.Info()
			if info.Provider != tt.provider {
				t.Errorf("Info().Provider = %q, want %q", info.Provider, tt.provider)
			}
		})
	}
}

func TestNew_InvalidProvider(t *testing.T) {
	_, err := New("invalid", "key", "")
	if err == nil {
		t.Error("expected error for invalid provider")
	}
}

func TestOllamaComplete(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/chat" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"message":{"role":"assistant","content":"A short title"},"done":true}`)
	}))
	defer server.Close()

	a := NewOllama(server.URL)
	got, err := a.Complete(context.Background(), CompletionRequest{
		UserMessage: "Summarize this",
	})
	if err != nil {
		t.Fatalf("Complete error: %v", err)
	}
	if got != "A short title" {
		t.Errorf("got %q, want %q", got, "A short title")
	}
}

func TestOllamaComplete_APIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	a := NewOllama(server.URL)
	_, err := a.Complete(context.Background(), CompletionRequest{UserMessage: "hello"})
	if err == nil {
		t.Fatal("expected error for 500 response")
	}
	if !strings.Contains(err.Error(), "500") {
		t.Errorf("error should mention status code 500: %v", err)
	}
}
