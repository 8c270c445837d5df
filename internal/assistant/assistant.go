// Package assistant talks to a third-party chat completion API. The core
// treats it as an opaque request/response service returning plain text;
// whatever goes wrong upstream surfaces as ErrNoResponse.
package assistant

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"
)

var ErrNoResponse = errors.New("failed to get a response")

const systemPrompt = `You are the Company Plus assistant. You help business owners manage ` +
	`their stores, review orders and sales data, and draft customer responses. ` +
	`You are professional, concise, and helpful.`

type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Chat is one running conversation. Not safe for concurrent use; each chat
// surface owns its own instance.
type Chat struct {
	endpoint string
	apiKey   string
	model    string
	http     *http.Client
	history  []Message
}

func NewChat(endpoint, apiKey, model string) *Chat {
	return &Chat{
		endpoint: endpoint,
		apiKey:   apiKey,
		model:    model,
		http:     &http.Client{Timeout: 30 * time.Second},
		history:  []Message{{Role: "system", Content: systemPrompt}},
	}
}

// Send posts the user message with the running history and returns the
// assistant's reply, appending both to the conversation.
func (c *Chat) Send(ctx context.Context, message string) (string, error) {
	messages := append(append([]Message(nil), c.history...), Message{Role: "user", Content: message})

	payload, err := json.Marshal(map[string]interface{}{
		"model":    c.model,
		"messages": messages,
	})
	if err != nil {
		log.Printf("ERROR: assistant request encoding failed: %v", err)
		return "", ErrNoResponse
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return "", ErrNoResponse
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.http.Do(req)
	if err != nil {
		log.Printf("ERROR: assistant request failed: %v", err)
		return "", ErrNoResponse
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		log.Printf("ERROR: assistant returned status %d", resp.StatusCode)
		return "", ErrNoResponse
	}

	var completion struct {
		Choices []struct {
			Message Message `json:"message"`
		} `json:"choices"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&completion); err != nil || len(completion.Choices) == 0 {
		return "", ErrNoResponse
	}

	reply := completion.Choices[0].Message.Content
	if reply == "" {
		return "", ErrNoResponse
	}

	c.history = append(c.history, Message{Role: "user", Content: message}, Message{Role: "assistant", Content: reply})
	return reply, nil
}
