package chatgpt

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"strings"
)

var doneMarker = []byte("[DONE]")

// Stream is the incremental half of a streaming completion: a finite,
// non-restartable sequence of assistant text deltas.
//
// Recv returns each delta in arrival order and io.EOF once the service sends
// its end marker (or closes the body). After a clean end the accumulated text
// is cached as the conversation's last reply; on a mid-stream failure nothing
// is committed.
type Stream struct {
	conv *Conversation
	body io.ReadCloser
	dec  *sseDecoder

	acc strings.Builder

	done      bool
	failed    bool
	closed    bool
	committed bool
}

func newStream(conv *Conversation, body io.ReadCloser) *Stream {
	return &Stream{
		conv: conv,
		body: body,
		dec:  newSSEDecoder(body),
	}
}

// Recv returns the next text delta. Event-stream lines that are not
// well-formed delta payloads are skipped, not surfaced.
func (s *Stream) Recv() (string, error) {
	if s.closed {
		return "", stateError("stream already closed")
	}
	if s.done {
		return "", io.EOF
	}

	for {
		payload, err := s.dec.next()
		if err != nil {
			if errors.Is(err, io.EOF) {
				// Body ended without [DONE]; treat as a normal finish.
				s.finish()
				return "", io.EOF
			}
			s.failed = true
			return "", s.conv.setError(&Error{
				Code:    CodeStream,
				Message: "stream read failed: " + err.Error(),
				Cause:   err,
			})
		}

		if bytes.Equal(payload, doneMarker) {
			s.finish()
			return "", io.EOF
		}

		var chunk streamChunk
		if err := json.Unmarshal(payload, &chunk); err != nil {
			continue
		}
		delta, ok := chunkDelta(chunk)
		if !ok {
			continue
		}

		s.acc.WriteString(delta)
		return delta, nil
	}
}

// Text returns the text accumulated so far; after the stream has ended it is
// the complete assistant reply.
func (s *Stream) Text() string {
	return s.acc.String()
}

func (s *Stream) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	return s.body.Close()
}

// finish marks the stream done and commits the accumulated text, once, as
// the conversation's cached reply. Failed streams never commit.
func (s *Stream) finish() {
	s.done = true
	if s.failed || s.committed {
		return
	}
	s.committed = true
	s.conv.lastReply = s.acc.String()
}

func chunkDelta(chunk streamChunk) (string, bool) {
	if len(chunk.Choices) == 0 {
		return "", false
	}
	raw := chunk.Choices[0].Delta.Content
	if len(raw) == 0 {
		return "", false
	}
	var delta string
	if err := json.Unmarshal(raw, &delta); err != nil {
		return "", false
	}
	return delta, true
}
