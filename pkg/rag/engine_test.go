package rag

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/sashabaranov/go-openai"
	"github.com/schardosin/docqa/pkg/document"
	"github.com/schardosin/docqa/pkg/knowledge"
)

type fakeCompleter struct {
	reply string
	err   error
	calls []openai.ChatCompletionRequest
}

func (f *fakeCompleter) CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
	f.calls = append(f.calls, req)
	if f.err != nil {
		return openai.ChatCompletionResponse{}, f.err
	}
	if f.reply == "" {
		return openai.ChatCompletionResponse{}, nil
	}
	return openai.ChatCompletionResponse{
		Choices: []openai.ChatCompletionChoice{
			{Message: openai.ChatCompletionMessage{Role: openai.ChatMessageRoleAssistant, Content: "  " + f.reply + "\n"}},
		},
	}, nil
}

func testBase() *knowledge.Base {
	return knowledge.NewBase("zoo.txt", []document.Chunk{
		{ID: 0, Text: "The zoo opens at nine"},
		{ID: 1, Text: "Lions sleep most of the day at the zoo"},
		{ID: 2, Text: "Penguins swim"},
		{ID: 3, Text: "the zoo gift shop sells lions plush toys"},
	})
}

func TestRetrieve(t *testing.T) {
	tests := []struct {
		name        string
		query       string
		topK        int
		expectedIDs []int
	}{
		{
			name:        "ranks by distinct shared words",
			query:       "when do lions sleep at the zoo",
			topK:        3,
			expectedIDs: []int{1, 0, 3},
		},
		{
			name:        "case insensitive",
			query:       "PENGUINS",
			topK:        3,
			expectedIDs: []int{2},
		},
		{
			name:        "topK limits results",
			query:       "zoo",
			topK:        2,
			expectedIDs: []int{0, 1},
		},
		{
			name:        "no overlap returns nothing",
			query:       "giraffes",
			topK:        3,
			expectedIDs: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Retrieve(tt.query, testBase(), tt.topK)
			if len(got) != len(tt.expectedIDs) {
				t.Fatalf("got %d chunks, expected %d", len(got), len(tt.expectedIDs))
			}
			for i, c := range got {
				if c.ID != tt.expectedIDs[i] {
					t.Errorf("result %d = chunk %d, expected %d", i, c.ID, tt.expectedIDs[i])
				}
			}
		})
	}
}

func TestGenerateResponseWithoutMatchSkipsModel(t *testing.T) {
	llm := &fakeCompleter{reply: "should not be used"}
	answer, err := NewEngine(llm, "m").GenerateResponse(context.Background(), "giraffes", testBase())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if answer != NoInformationAnswer {
		t.Errorf("answer = %q", answer)
	}
	if len(llm.calls) != 0 {
		t.Error("model should not be called without context")
	}
}

func TestGenerateResponseBuildsPrompt(t *testing.T) {
	llm := &fakeCompleter{reply: "At nine."}
	engine := NewEngine(llm, "test-model", WithTopK(1))

	answer, err := engine.GenerateResponse(context.Background(), "when does the zoo open", testBase())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if answer != "At nine." {
		t.Errorf("answer = %q, expected trimmed reply", answer)
	}

	if len(llm.calls) != 1 {
		t.Fatalf("calls = %d", len(llm.calls))
	}
	req := llm.calls[0]
	if req.Model != "test-model" || req.MaxTokens != 500 || req.Temperature != 0.1 {
		t.Errorf("request settings = %s/%d/%v", req.Model, req.MaxTokens, req.Temperature)
	}
	if len(req.Messages) != 2 || req.Messages[0].Role != openai.ChatMessageRoleSystem {
		t.Fatalf("messages = %+v", req.Messages)
	}
	user := req.Messages[1].Content
	if !strings.Contains(user, "Question: when does the zoo open") {
		t.Errorf("user prompt missing question: %q", user)
	}
	if !strings.Contains(user, "The zoo opens at nine") {
		t.Errorf("user prompt missing context: %q", user)
	}
}

func TestGenerateResponseErrors(t *testing.T) {
	_, err := NewEngine(&fakeCompleter{err: errors.New("rate limited")}, "m").
		GenerateResponse(context.Background(), "zoo", testBase())
	if err == nil || !strings.Contains(err.Error(), "rate limited") {
		t.Errorf("err = %v", err)
	}

	_, err = NewEngine(&fakeCompleter{}, "m").GenerateResponse(context.Background(), "zoo", testBase())
	if err == nil {
		t.Error("expected error for empty choices")
	}
}

// TestGenerateResponseOverHTTP drives a real go-openai client against a fake endpoint
func TestGenerateResponseOverHTTP(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			http.NotFound(w, r)
			return
		}
		if auth := r.Header.Get("Authorization"); auth != "Bearer sk-test" {
			t.Errorf("Authorization = %q", auth)
		}
		var req openai.ChatCompletionRequest
		json.NewDecoder(r.Body).Decode(&req)
		if req.Model != "meta-llama/llama-3.2-3b-instruct:free" {
			t.Errorf("model = %q", req.Model)
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(openai.ChatCompletionResponse{
			ID:    "chatcmpl-1",
			Model: req.Model,
			Choices: []openai.ChatCompletionChoice{
				{Index: 0, Message: openai.ChatCompletionMessage{Role: "assistant", Content: "Penguins swim."}},
			},
		})
	}))
	defer srv.Close()

	cfg := openai.DefaultConfig("sk-test")
	cfg.BaseURL = srv.URL
	engine := NewEngine(openai.NewClientWithConfig(cfg), "meta-llama/llama-3.2-3b-instruct:free")

	answer, err := engine.GenerateResponse(context.Background(), "what do penguins do", testBase())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if answer != "Penguins swim." {
		t.Errorf("answer = %q", answer)
	}
}
