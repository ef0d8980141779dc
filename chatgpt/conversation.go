package chatgpt

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"
)

const (
	DefaultModel   = "gpt-4o-mini"
	DefaultBaseURL = "https://api.openai.com"
)

// Conversation is the mutable aggregate this package is built around:
// configuration, the ordered message sequence, and the cached result and
// error of the most recent exchange.
//
// A Conversation is not internally synchronized. Use one per goroutine or
// serialize access externally.
type Conversation struct {
	apiKey  string
	model   string
	baseURL string

	temperature      float64
	topP             float64
	maxTokens        int
	presencePenalty  float64
	frequencyPenalty float64

	useStreaming    bool
	contextMessages int

	maxRetries int
	retryDelay time.Duration

	httpClient *http.Client
	logger     *slog.Logger

	messages []Message

	lastReply string
	lastUsage Usage

	lastCode       ErrorCode
	lastErrMessage string
	lastHTTPStatus int
}

type Option func(*Conversation) error

// WithAPIKey sets an explicit API key, overriding the process-wide fallback.
func WithAPIKey(key string) Option {
	return func(c *Conversation) error {
		c.apiKey = key
		return nil
	}
}

func WithModel(model string) Option {
	return func(c *Conversation) error {
		if model == "" {
			return invalidArgument("empty model")
		}
		c.model = model
		return nil
	}
}

func WithBaseURL(baseURL string) Option {
	return func(c *Conversation) error {
		if baseURL == "" {
			return invalidArgument("empty base url")
		}
		c.baseURL = baseURL
		return nil
	}
}

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Conversation) error {
		c.httpClient = hc
		return nil
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(c *Conversation) error {
		if logger != nil {
			c.logger = logger
		}
		return nil
	}
}

// New creates a Conversation with the library defaults. The API key comes
// from WithAPIKey or, failing that, the process-wide key installed via
// SetDefaultAPIKey; construction fails when neither is available.
func New(opts ...Option) (*Conversation, error) {
	c := &Conversation{
		model:           DefaultModel,
		baseURL:         DefaultBaseURL,
		temperature:     0.7,
		topP:            1.0,
		useStreaming:    true,
		contextMessages: 5,
		maxRetries:      3,
		retryDelay:      time.Second,
	}

	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(c); err != nil {
			return nil, err
		}
	}

	if c.apiKey == "" {
		c.apiKey = DefaultAPIKey()
	}
	if c.apiKey == "" {
		return nil, invalidArgument("no API key: pass WithAPIKey or call SetDefaultAPIKey")
	}

	return c, nil
}

// Add appends one message. The role is stored as given, not validated.
func (c *Conversation) Add(role, content string) error {
	c.messages = append(c.messages, Message{Role: role, Content: content})
	return nil
}

func (c *Conversation) AddUser(content string) error {
	return c.Add(RoleUser, content)
}

func (c *Conversation) AddSystem(content string) error {
	return c.Add(RoleSystem, content)
}

func (c *Conversation) AddAssistant(content string) error {
	return c.Add(RoleAssistant, content)
}

// AddUserWithFile appends a user message describing an attachment. This is a
// placeholder rendering: the file is referenced by path, not uploaded.
func (c *Conversation) AddUserWithFile(content, filePath, fileType string) error {
	if filePath == "" || fileType == "" {
		return invalidArgument("file path and type required")
	}
	if content == "" {
		content = "File attachment"
	}
	return c.AddUser(fmt.Sprintf("%s [File attached: %s (%s)]", content, filePath, fileType))
}

func (c *Conversation) MessageCount() int {
	return len(c.messages)
}

// Messages returns a copy of the message sequence in turn order.
func (c *Conversation) Messages() []Message {
	out := make([]Message, len(c.messages))
	copy(out, c.messages)
	return out
}

// RemoveAt deletes the message at a 0-based index, shifting later messages
// down by one.
func (c *Conversation) RemoveAt(index int) error {
	if index < 0 || index >= len(c.messages) {
		return invalidArgument(fmt.Sprintf("message index %d out of range", index))
	}
	c.messages = append(c.messages[:index], c.messages[index+1:]...)
	return nil
}

// PopLast removes the most recent message.
func (c *Conversation) PopLast() error {
	if len(c.messages) == 0 {
		return invalidArgument("no messages to pop")
	}
	c.messages = c.messages[:len(c.messages)-1]
	return nil
}

// ReplaceLastOfRole swaps the content of the most recent message with the
// given role. It fails with CodeState when no such message exists, leaving
// the sequence untouched.
func (c *Conversation) ReplaceLastOfRole(role, content string) error {
	for i := len(c.messages) - 1; i >= 0; i-- {
		if c.messages[i].Role == role {
			c.messages[i].Content = content
			return nil
		}
	}
	return stateError("no " + role + " message to replace")
}

// AppendToLastOfRole concatenates extra onto the most recent message with the
// given role, byte for byte with no separator.
func (c *Conversation) AppendToLastOfRole(role, extra string) error {
	for i := len(c.messages) - 1; i >= 0; i-- {
		if c.messages[i].Role == role {
			c.messages[i].Content += extra
			return nil
		}
	}
	return stateError("no " + role + " message to append to")
}

func (c *Conversation) ReplaceLastUser(content string) error {
	return c.ReplaceLastOfRole(RoleUser, content)
}

func (c *Conversation) AppendToLastAssistant(extra string) error {
	return c.AppendToLastOfRole(RoleAssistant, extra)
}

// Clear drops all messages. Capacity is retained so clear/reuse cycles don't
// churn allocations.
func (c *Conversation) Clear() {
	c.messages = c.messages[:0]
}

// Reset clears messages, the cached reply and usage, and the error state,
// keeping all configuration.
func (c *Conversation) Reset() {
	c.Clear()
	c.lastReply = ""
	c.lastUsage = Usage{}
	c.ClearError()
}

// CopySettings copies every configuration field from src, leaving messages
// and cached results alone.
func (c *Conversation) CopySettings(src *Conversation) error {
	if src == nil {
		return invalidArgument("nil source conversation")
	}
	c.model = src.model
	c.baseURL = src.baseURL
	c.temperature = src.temperature
	c.topP = src.topP
	c.maxTokens = src.maxTokens
	c.presencePenalty = src.presencePenalty
	c.frequencyPenalty = src.frequencyPenalty
	c.useStreaming = src.useStreaming
	c.contextMessages = src.contextMessages
	c.maxRetries = src.maxRetries
	c.retryDelay = src.retryDelay
	return nil
}

// LastReply returns the assistant text cached by the most recent successful
// completion, or "".
func (c *Conversation) LastReply() string {
	return c.lastReply
}

// LastUsage returns the token counts reported by the most recent completion
// that carried usage data.
func (c *Conversation) LastUsage() Usage {
	return c.lastUsage
}
