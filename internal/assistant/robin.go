package assistant

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"google.golang.org/genai"
)

// SenderRobin marks history entries authored by the assistant itself.
const SenderRobin = "robin"

const systemPrompt = `You are Robin, the scheduling assistant for LocalDink, a pickleball
meetup app. Players describe the game they want in plain language. Answer
with a short, friendly confirmation of what you understood: who plays,
singles or doubles, where and when. Ask one clarifying question when a
detail is missing. Never invent player names or courts.`

// fallbackReply is returned whenever the model is unavailable, so the chat
// surface degrades to a fixed answer instead of an error page.
const fallbackReply = "Sorry, I can't help with scheduling right now. " +
	"You can still create a game directly from the sessions page."

// Message is one chat turn, either from the player or from Robin.
type Message struct {
	Sender string `json:"sender"`
	Text   string `json:"text"`
}

type generator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// Robin answers scheduling chat messages. When no API key is configured the
// zero-value client stays nil and every reply is the deterministic fallback.
type Robin struct {
	logger *slog.Logger
	model  string
	gen    generator
}

// New builds the assistant. An empty API key yields a working assistant
// that only ever answers with the fallback.
func New(ctx context.Context, logger *slog.Logger, apiKey, model string) (*Robin, error) {
	if model == "" {
		model = "gemini-2.0-flash"
	}

	robin := &Robin{logger: logger, model: model}
	if apiKey == "" {
		return robin, nil
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey: apiKey,
	})
	if err != nil {
		return nil, fmt.Errorf("assistant: failed to create client: %w", err)
	}

	robin.gen = client.Models
	return robin, nil
}

// Reply answers a chat message given the prior turns. It never returns an
// error to the caller; model failures are logged and answered with the
// fallback text.
func (r *Robin) Reply(ctx context.Context, message string, history []Message) string {
	if r.gen == nil {
		return fallbackReply
	}

	contents := make([]*genai.Content, 0, len(history)+1)
	for _, turn := range history {
		role := genai.Role(genai.RoleUser)
		if turn.Sender == SenderRobin {
			role = genai.RoleModel
		}
		contents = append(contents, genai.NewContentFromText(turn.Text, role))
	}
	contents = append(contents, genai.NewContentFromText(message, genai.RoleUser))

	result, err := r.gen.GenerateContent(ctx, r.model, contents, &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(systemPrompt, genai.RoleUser),
	})
	if err != nil {
		r.logger.Error("Assistant generation failed", "error", err)
		return fallbackReply
	}

	reply := strings.TrimSpace(result.Text())
	if reply == "" {
		return fallbackReply
	}
	return reply
}
