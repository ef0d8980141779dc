package chatgpt

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
)

// MessagesJSON renders the message sequence as a JSON array of
// {role, content} objects. Configuration is never part of the dump.
func (c *Conversation) MessagesJSON() ([]byte, error) {
	msgs := c.messages
	if msgs == nil {
		msgs = []Message{}
	}
	out, err := json.Marshal(msgs)
	if err != nil {
		return nil, &Error{Code: CodeJSONParse, Message: "failed to encode messages", Cause: err}
	}
	return out, nil
}

// Save writes the conversation's messages to path as JSON. Only messages are
// persisted; settings travel with the Conversation value, not the file.
func (c *Conversation) Save(path string) error {
	if path == "" {
		return invalidArgument("empty path")
	}
	data, err := c.MessagesJSON()
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return &Error{Code: CodeHTTP, Message: "failed to write conversation file: " + err.Error(), Cause: err}
	}
	return nil
}

// Load replaces the entire message sequence with the array stored at path.
// Array entries missing a string role or content are skipped silently.
func (c *Conversation) Load(path string) error {
	if path == "" {
		return invalidArgument("empty path")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return &Error{Code: CodeHTTP, Message: "failed to read conversation file: " + err.Error(), Cause: err}
	}

	var entries []json.RawMessage
	if err := json.Unmarshal(data, &entries); err != nil {
		return &Error{Code: CodeJSONParse, Message: "conversation file is not a JSON message array", Cause: err}
	}

	c.Clear()
	for _, e := range entries {
		var m struct {
			Role    *string `json:"role"`
			Content *string `json:"content"`
		}
		// Entries that aren't objects, or whose role/content is missing
		// or not a string, are skipped rather than failing the load.
		if json.Unmarshal(e, &m) != nil || m.Role == nil || m.Content == nil {
			continue
		}
		c.messages = append(c.messages, Message{Role: *m.Role, Content: *m.Content})
	}
	return nil
}

// WriteMessages prints the sequence to w, one "role: content" line per
// message. Debug helper; the format is not stable.
func (c *Conversation) WriteMessages(w io.Writer) {
	for _, m := range c.messages {
		fmt.Fprintf(w, "%s: %s\n", m.Role, m.Content)
	}
}
