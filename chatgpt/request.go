package chatgpt

// windowedMessages returns the slice of messages the next request carries:
// the last contextMessages entries, or just the most recent one when the
// window is 0. Order is preserved.
func (c *Conversation) windowedMessages() []Message {
	n := len(c.messages)
	if n == 0 {
		return nil
	}
	w := c.contextMessages
	if w == 0 {
		w = 1
	}
	if w > n {
		w = n
	}
	return c.messages[n-w:]
}

// buildRequestBody serializes the conversation state into the wire request.
// It is a pure function of the current settings and messages.
//
// temperature and top_p are always present; the penalties only when
// non-zero, max_tokens only when positive, and stream only when the
// streaming exchange is requested.
func (c *Conversation) buildRequestBody(stream bool) map[string]any {
	window := c.windowedMessages()
	msgs := make([]Message, len(window))
	copy(msgs, window)

	body := map[string]any{
		"model":       c.model,
		"messages":    msgs,
		"temperature": c.temperature,
		"top_p":       c.topP,
	}
	if c.presencePenalty != 0 {
		body["presence_penalty"] = c.presencePenalty
	}
	if c.frequencyPenalty != 0 {
		body["frequency_penalty"] = c.frequencyPenalty
	}
	if c.maxTokens > 0 {
		body["max_tokens"] = c.maxTokens
	}
	if stream {
		body["stream"] = true
	}
	return body
}
