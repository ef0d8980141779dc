package chatgpt

import "sync"

// The process-wide fallback key is explicit shared state: it is only ever
// consulted at construction time, and access is serialized here so setting it
// from an init path while conversations are created elsewhere stays safe.
var defaultKey struct {
	mu  sync.RWMutex
	key string
}

// SetDefaultAPIKey installs a fallback API key used by New when no explicit
// key is given. An empty key clears the fallback.
func SetDefaultAPIKey(key string) {
	defaultKey.mu.Lock()
	defaultKey.key = key
	defaultKey.mu.Unlock()
}

// DefaultAPIKey returns the currently installed fallback key, or "".
func DefaultAPIKey() string {
	defaultKey.mu.RLock()
	defer defaultKey.mu.RUnlock()
	return defaultKey.key
}
