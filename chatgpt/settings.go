package chatgpt

import "time"

// Setters validate their range and leave the previous value intact on
// failure. None of them touch the conversation's error state.

func (c *Conversation) SetModel(model string) error {
	if model == "" {
		return invalidArgument("empty model")
	}
	c.model = model
	return nil
}

// SetTemperature accepts 0..2.
func (c *Conversation) SetTemperature(t float64) error {
	if t < 0 || t > 2 {
		return invalidArgument("temperature out of range [0, 2]")
	}
	c.temperature = t
	return nil
}

// SetTopP accepts (0, 1].
func (c *Conversation) SetTopP(p float64) error {
	if p <= 0 || p > 1 {
		return invalidArgument("top_p out of range (0, 1]")
	}
	c.topP = p
	return nil
}

// SetMaxTokens accepts n >= 0; 0 means no limit is sent.
func (c *Conversation) SetMaxTokens(n int) error {
	if n < 0 {
		return invalidArgument("max_tokens must be >= 0")
	}
	c.maxTokens = n
	return nil
}

// SetPresencePenalty accepts -2..2.
func (c *Conversation) SetPresencePenalty(p float64) error {
	if p < -2 || p > 2 {
		return invalidArgument("presence_penalty out of range [-2, 2]")
	}
	c.presencePenalty = p
	return nil
}

// SetFrequencyPenalty accepts -2..2.
func (c *Conversation) SetFrequencyPenalty(p float64) error {
	if p < -2 || p > 2 {
		return invalidArgument("frequency_penalty out of range [-2, 2]")
	}
	c.frequencyPenalty = p
	return nil
}

func (c *Conversation) SetBaseURL(baseURL string) error {
	if baseURL == "" {
		return invalidArgument("empty base url")
	}
	c.baseURL = baseURL
	return nil
}

// SetStreaming toggles whether Send uses the incremental exchange.
func (c *Conversation) SetStreaming(on bool) {
	c.useStreaming = on
}

// SetContextMessages sets the request window: the last n messages are sent,
// or only the most recent one when n is 0.
func (c *Conversation) SetContextMessages(n int) error {
	if n < 0 {
		return invalidArgument("context_messages must be >= 0")
	}
	c.contextMessages = n
	return nil
}

// SetRetryPolicy configures up to maxRetries additional attempts with a
// fixed delay between them.
func (c *Conversation) SetRetryPolicy(maxRetries int, delay time.Duration) error {
	if maxRetries < 0 || delay < 0 {
		return invalidArgument("retry policy must be non-negative")
	}
	c.maxRetries = maxRetries
	c.retryDelay = delay
	return nil
}

func (c *Conversation) Model() string           { return c.model }
func (c *Conversation) BaseURL() string         { return c.baseURL }
func (c *Conversation) Temperature() float64    { return c.temperature }
func (c *Conversation) TopP() float64           { return c.topP }
func (c *Conversation) MaxTokens() int          { return c.maxTokens }
func (c *Conversation) PresencePenalty() float64  { return c.presencePenalty }
func (c *Conversation) FrequencyPenalty() float64 { return c.frequencyPenalty }
func (c *Conversation) Streaming() bool         { return c.useStreaming }
func (c *Conversation) ContextMessages() int    { return c.contextMessages }

// LastError returns the failure recorded by the most recent completion
// attempt, or nil when it succeeded (or none ran since ClearError).
func (c *Conversation) LastError() *Error {
	if c.lastCode == CodeOK {
		return nil
	}
	return &Error{Code: c.lastCode, Message: c.lastErrMessage, HTTPStatus: c.lastHTTPStatus}
}

func (c *Conversation) LastCode() ErrorCode  { return c.lastCode }
func (c *Conversation) LastErrorMessage() string { return c.lastErrMessage }
func (c *Conversation) LastHTTPStatus() int  { return c.lastHTTPStatus }

// ClearError resets the recorded failure to the OK state. Completion calls
// do this automatically before starting.
func (c *Conversation) ClearError() {
	c.lastCode = CodeOK
	c.lastErrMessage = ""
	c.lastHTTPStatus = 0
}

// setError overwrites the recorded failure; only the most recent one is
// kept.
func (c *Conversation) setError(e *Error) *Error {
	c.lastCode = e.Code
	c.lastErrMessage = e.Message
	c.lastHTTPStatus = e.HTTPStatus
	return e
}
