// Package chatgpt manages multi-turn conversations with an OpenAI-compatible
// chat completions service.
//
// A Conversation owns an ordered message sequence plus the knobs sent on the
// wire (model, sampling parameters, context window, retry policy). Complete
// performs a single blocking exchange; CompleteStream/CompleteStreaming
// deliver the reply incrementally as text deltas decoded from the service's
// event-stream body. The most recent reply, token usage, and failure are
// cached on the conversation. Conversations are not safe for concurrent use.
package chatgpt
