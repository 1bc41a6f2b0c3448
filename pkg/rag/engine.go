// Package rag answers questions from the chunks of the active document.
package rag

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/sashabaranov/go-openai"
	"github.com/schardosin/docqa/pkg/document"
	"github.com/schardosin/docqa/pkg/knowledge"
)

// NoInformationAnswer is returned when nothing in the document matches the question
const NoInformationAnswer = "I don't have enough information in the provided data to answer that."

const systemPrompt = `You are a helpful assistant that answers questions strictly based on the provided document content.

CRITICAL RULES:
1. Answer ONLY using information from the context provided below
2. If the answer is not in the context, you MUST respond with: "` + NoInformationAnswer + `"
3. Do NOT use any external knowledge
4. Do NOT make assumptions or inferences beyond what is explicitly stated
5. Be concise and accurate
6. If you're unsure, say you don't have enough information`

// ChatCompleter is the part of the go-openai client the engine uses
type ChatCompleter interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

type Engine struct {
	llm         ChatCompleter
	model       string
	topK        int
	temperature float32
	maxTokens   int
}

type Option func(*Engine)

func WithTopK(k int) Option {
	return func(e *Engine) {
		if k > 0 {
			e.topK = k
		}
	}
}

func WithSampling(temperature float32, maxTokens int) Option {
	return func(e *Engine) {
		e.temperature = temperature
		e.maxTokens = maxTokens
	}
}

func NewEngine(llm ChatCompleter, model string, opts ...Option) *Engine {
	e := &Engine{
		llm:         llm,
		model:       model,
		topK:        3,
		temperature: 0.1,
		maxTokens:   500,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Retrieve ranks chunks by how many distinct lowercase words they share with the
// query and returns the best topK with at least one shared word.
func Retrieve(query string, kb *knowledge.Base, topK int) []document.Chunk {
	queryWords := wordSet(query)

	type scored struct {
		chunk document.Chunk
		score int
	}
	var ranked []scored
	for _, chunk := range kb.Chunks {
		chunkWords := wordSet(chunk.Text)
		overlap := 0
		for w := range queryWords {
			if _, ok := chunkWords[w]; ok {
				overlap++
			}
		}
		if overlap > 0 {
			ranked = append(ranked, scored{chunk: chunk, score: overlap})
		}
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].score > ranked[j].score
	})

	if len(ranked) > topK {
		ranked = ranked[:topK]
	}
	out := make([]document.Chunk, len(ranked))
	for i, r := range ranked {
		out[i] = r.chunk
	}
	return out
}

func wordSet(text string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, w := range strings.Fields(strings.ToLower(text)) {
		set[w] = struct{}{}
	}
	return set
}

// GenerateResponse answers query from kb. The model is not called when no
// chunk matches.
func (e *Engine) GenerateResponse(ctx context.Context, query string, kb *knowledge.Base) (string, error) {
	relevant := Retrieve(query, kb, e.topK)
	if len(relevant) == 0 {
		return NoInformationAnswer, nil
	}

	texts := make([]string, len(relevant))
	for i, c := range relevant {
		texts[i] = c.Text
	}

	resp, err := e.llm.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: e.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: userPrompt(strings.Join(texts, "\n\n"), query)},
		},
		Temperature: e.temperature,
		MaxTokens:   e.maxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("error communicating with the model API: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("unable to generate response from the API")
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

func userPrompt(context, query string) string {
	return fmt.Sprintf(`Context from the document:
%s

Question: %s

Answer based ONLY on the context above. If the information is not in the context, respond with: "%s" `, context, query, NoInformationAnswer)
}
