package provider

import (
	"encoding/json"
	"fmt"
)

// messagesEvent is the subset of Messages API stream events we use. Bedrock
// wraps the same payloads in its chunk events.
type messagesEvent struct {
	Type  string `json:"type"`
	Delta struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"delta"`
	Error struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}

// decodeEvent returns the text delta of one stream event and whether the
// stream is finished.
func decodeEvent(data []byte) (text string, done bool, err error) {
	var ev messagesEvent
	if err := json.Unmarshal(data, &ev); err != nil {
		return "", false, fmt.Errorf("decode stream event: %w", err)
	}
	switch ev.Type {
	case "content_block_delta":
		if ev.Delta.Type == "text_delta" {
			return ev.Delta.Text, false, nil
		}
	case "message_stop":
		return "", true, nil
	case "error":
		return "", false, fmt.Errorf("provider: stream error %s: %s", ev.Error.Type, ev.Error.Message)
	}
	return "", false, nil
}
