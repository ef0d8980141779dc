// Package kitconfig loads conversation defaults from a config file and the
// CHATGPT_* environment, with hot reload on file changes.
package kitconfig

import (
	"reflect"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"

	"github.com/lgc202/chatgpt-kit/chatgpt"
)

// Settings mirrors the tunables a Conversation carries. Zero values mean
// "keep the library default" except where a default is registered below.
type Settings struct {
	APIKey  string `mapstructure:"api_key"`
	BaseURL string `mapstructure:"base_url"`
	Model   string `mapstructure:"model"`

	Temperature      float64 `mapstructure:"temperature"`
	TopP             float64 `mapstructure:"top_p"`
	MaxTokens        int     `mapstructure:"max_tokens"`
	PresencePenalty  float64 `mapstructure:"presence_penalty"`
	FrequencyPenalty float64 `mapstructure:"frequency_penalty"`

	Streaming       bool `mapstructure:"streaming"`
	ContextMessages int  `mapstructure:"context_messages"`

	MaxRetries   int `mapstructure:"max_retries"`
	RetryDelayMS int `mapstructure:"retry_delay_ms"`
}

// Config watches a settings file and serves the current snapshot.
type Config struct {
	v        *viper.Viper
	mu       sync.RWMutex
	value    Settings
	watchers []func(old, new Settings)
}

// Load reads the file at path, overlays CHATGPT_* environment variables, and
// starts watching for changes.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)

	v.SetEnvPrefix("CHATGPT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("base_url", chatgpt.DefaultBaseURL)
	v.SetDefault("model", chatgpt.DefaultModel)
	v.SetDefault("temperature", 0.7)
	v.SetDefault("top_p", 1.0)
	v.SetDefault("streaming", true)
	v.SetDefault("context_messages", 5)
	v.SetDefault("max_retries", 3)
	v.SetDefault("retry_delay_ms", 1000)

	c := &Config{v: v}

	if err := v.ReadInConfig(); err != nil {
		return nil, err
	}
	if err := v.Unmarshal(&c.value); err != nil {
		return nil, err
	}

	c.watch()
	return c, nil
}

// Get returns the current settings snapshot.
func (c *Config) Get() Settings {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.value
}

// OnChange registers a callback invoked after the file changes and the new
// snapshot differs from the old one.
func (c *Config) OnChange(callback func(old, new Settings)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.watchers = append(c.watchers, callback)
}

func (c *Config) watch() {
	var (
		debounceTimer *time.Timer
		debounceMu    sync.Mutex
	)

	// Editors fire several fsnotify events per save; coalesce them.
	c.v.OnConfigChange(func(_ fsnotify.Event) {
		debounceMu.Lock()
		if debounceTimer != nil {
			debounceTimer.Stop()
		}
		debounceTimer = time.AfterFunc(100*time.Millisecond, c.handleChange)
		debounceMu.Unlock()
	})

	c.v.WatchConfig()
}

func (c *Config) handleChange() {
	old := c.Get()

	c.mu.Lock()
	if err := c.v.ReadInConfig(); err != nil {
		c.mu.Unlock()
		return
	}
	var val Settings
	if err := c.v.Unmarshal(&val); err != nil {
		c.mu.Unlock()
		return
	}
	c.value = val
	watchers := make([]func(old, new Settings), len(c.watchers))
	copy(watchers, c.watchers)
	c.mu.Unlock()

	if reflect.DeepEqual(old, val) {
		return
	}
	for _, cb := range watchers {
		func() {
			defer func() { _ = recover() }()
			cb(old, val)
		}()
	}
}

// Options converts the snapshot into construction options for chatgpt.New.
func (s Settings) Options() []chatgpt.Option {
	opts := []chatgpt.Option{}
	if s.APIKey != "" {
		opts = append(opts, chatgpt.WithAPIKey(s.APIKey))
	}
	if s.Model != "" {
		opts = append(opts, chatgpt.WithModel(s.Model))
	}
	if s.BaseURL != "" {
		opts = append(opts, chatgpt.WithBaseURL(s.BaseURL))
	}
	return opts
}

// Apply pushes the tunables onto an existing conversation through its
// validated setters, stopping at the first rejected value.
func (s Settings) Apply(conv *chatgpt.Conversation) error {
	if err := conv.SetTemperature(s.Temperature); err != nil {
		return err
	}
	if err := conv.SetTopP(s.TopP); err != nil {
		return err
	}
	if err := conv.SetMaxTokens(s.MaxTokens); err != nil {
		return err
	}
	if err := conv.SetPresencePenalty(s.PresencePenalty); err != nil {
		return err
	}
	if err := conv.SetFrequencyPenalty(s.FrequencyPenalty); err != nil {
		return err
	}
	if err := conv.SetContextMessages(s.ContextMessages); err != nil {
		return err
	}
	if err := conv.SetRetryPolicy(s.MaxRetries, time.Duration(s.RetryDelayMS)*time.Millisecond); err != nil {
		return err
	}
	conv.SetStreaming(s.Streaming)
	return nil
}
