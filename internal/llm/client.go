package llm

import (
	"context"
	"fmt"
	"time"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
	"github.com/wersching/riddlegate/internal/models"
)

// Client talks to an OpenAI-compatible chat-completions backend. It is
// the only place that knows about the vendor message representation;
// the rest of the system deals in models.Message.
type Client struct {
	llm     llms.Model
	timeout time.Duration
}

func New(baseURL, token, model string, timeout time.Duration) (*Client, error) {
	llm, err := openai.New(
		openai.WithToken(token),
		openai.WithBaseURL(baseURL),
		openai.WithModel(model),
	)
	if err != nil {
		return nil, err
	}
	return &Client{llm: llm, timeout: timeout}, nil
}

// Complete sends the transcript to the backend and returns its single
// reply. The call is bounded by the configured timeout.
func (c *Client) Complete(ctx context.Context, history []models.Message) (string, error) {
	content := make([]llms.MessageContent, 0, len(history))
	for _, msg := range history {
		content = append(content, llms.TextParts(chatMessageType(msg.Role), msg.Content))
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	resp, err := c.llm.GenerateContent(ctx, content)
	if err != nil {
		return "", fmt.Errorf("failed to generate completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("backend returned no choices")
	}
	return resp.Choices[0].Content, nil
}

func chatMessageType(role models.Role) llms.ChatMessageType {
	switch role {
	case models.RoleSystem:
		return llms.ChatMessageTypeSystem
	case models.RoleAssistant:
		return llms.ChatMessageTypeAI
	default:
		return llms.ChatMessageTypeHuman
	}
}
