package monitor

import (
	"encoding/json"
	"strings"
)

// message is one role-tagged text block recovered from the session log
type message struct {
	role    string
	content string
}

// rawLine covers the transcript shapes seen in the wild: a flat
// {role, content} object, a {role, text} object, or an envelope with a
// nested message object. Content is either a plain string or a list of
// typed blocks.
type rawLine struct {
	Role    string          `json:"role"`
	Content json.RawMessage `json:"content"`
	Text    string          `json:"text"`
	Message *struct {
		Role    string          `json:"role"`
		Content json.RawMessage `json:"content"`
	} `json:"message"`
}

type contentBlock struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// parseTranscript extracts messages from a chunk of log lines.
// Lines that are not JSON objects are treated as plain assistant text.
func parseTranscript(chunk string) []message {
	var out []message
	for _, line := range strings.Split(chunk, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if msg, ok := parseLine(line); ok {
			out = append(out, msg)
			continue
		}
		out = append(out, message{role: "assistant", content: line})
	}
	return out
}

func parseLine(line string) (message, bool) {
	if !strings.HasPrefix(line, "{") {
		return message{}, false
	}

	var raw rawLine
	if err := json.Unmarshal([]byte(line), &raw); err != nil {
		return message{}, false
	}

	role := raw.Role
	content := raw.Content
	if raw.Message != nil {
		if raw.Message.Role != "" {
			role = raw.Message.Role
		}
		if len(raw.Message.Content) > 0 {
			content = raw.Message.Content
		}
	}
	if role == "" {
		role = "assistant"
	}

	text := contentText(content)
	if text == "" {
		text = raw.Text
	}
	if text == "" {
		return message{}, false
	}
	return message{role: role, content: text}, true
}

// contentText flattens a content field that is either a string or a
// list of {type, text} blocks
func contentText(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}

	var blocks []contentBlock
	if err := json.Unmarshal(raw, &blocks); err != nil {
		return ""
	}
	var parts []string
	for _, b := range blocks {
		if b.Type != "" && b.Type != "text" {
			continue
		}
		if b.Text != "" {
			parts = append(parts, b.Text)
		}
	}
	return strings.Join(parts, "\n")
}
