package assistant

import (
	"context"
	"errors"
	"io"
	"testing"

	"localdink/internal/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"
)

type fakeGenerator struct {
	reply    string
	err      error
	contents []*genai.Content
}

func (g *fakeGenerator) GenerateContent(_ context.Context, _ string, contents []*genai.Content, _ *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	g.contents = contents
	if g.err != nil {
		return nil, g.err
	}
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{
			{Content: genai.NewContentFromText(g.reply, genai.RoleModel)},
		},
	}, nil
}

func TestReplyFallsBackWhenUnconfigured(t *testing.T) {
	robin, err := New(context.Background(), logger.Silence(io.Discard), "", "")
	require.NoError(t, err)

	reply := robin.Reply(context.Background(), "doubles on saturday?", nil)
	assert.Equal(t, fallbackReply, reply)
}

func TestReplyMapsHistoryRoles(t *testing.T) {
	gen := &fakeGenerator{reply: "Got it, doubles on Saturday at Riverside Park."}
	robin := &Robin{logger: logger.Silence(io.Discard), model: "gemini-2.0-flash", gen: gen}

	history := []Message{
		{Sender: "player", Text: "I want to play this weekend"},
		{Sender: SenderRobin, Text: "Singles or doubles?"},
	}
	reply := robin.Reply(context.Background(), "doubles, saturday morning", history)

	assert.Equal(t, "Got it, doubles on Saturday at Riverside Park.", reply)
	require.Len(t, gen.contents, 3)
	assert.Equal(t, string(genai.RoleUser), string(gen.contents[0].Role))
	assert.Equal(t, string(genai.RoleModel), string(gen.contents[1].Role))
	assert.Equal(t, string(genai.RoleUser), string(gen.contents[2].Role))
}

func TestReplyFallsBackOnModelFailure(t *testing.T) {
	gen := &fakeGenerator{err: errors.New("quota exceeded")}
	robin := &Robin{logger: logger.Silence(io.Discard), model: "gemini-2.0-flash", gen: gen}

	reply := robin.Reply(context.Background(), "anyone up for singles?", nil)
	assert.Equal(t, fallbackReply, reply)
}

func TestReplyFallsBackOnEmptyAnswer(t *testing.T) {
	gen := &fakeGenerator{reply: "   "}
	robin := &Robin{logger: logger.Silence(io.Discard), model: "gemini-2.0-flash", gen: gen}

	reply := robin.Reply(context.Background(), "anyone up for singles?", nil)
	assert.Equal(t, fallbackReply, reply)
}
