package chatgpt

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/lgc202/chatgpt-kit/chatgpt/internal/transport"
	"github.com/lgc202/chatgpt-kit/version"
)

const (
	completionsPath = "/v1/chat/completions"
	modelsPath      = "/v1/models"
	imagesPath      = "/v1/images/generations"
)

func userAgent() string {
	return "chatgpt-kit/" + version.Get().ShortString()
}

func (c *Conversation) transport() (*transport.Client, *Error) {
	tr, err := transport.New(c.baseURL, c.httpClient)
	if err != nil {
		return nil, invalidArgument("invalid base url: " + err.Error())
	}
	tr.UserAgent = userAgent()
	tr.Retry = transport.RetryPolicy{MaxRetries: c.maxRetries, Delay: c.retryDelay}
	if c.logger != nil {
		tr.Logger = c.logger
	}
	return tr, nil
}

func (c *Conversation) authHeaders() http.Header {
	h := make(http.Header)
	h.Set("Content-Type", "application/json")
	h.Set("Authorization", "Bearer "+c.apiKey)
	return h
}

// Complete sends the windowed conversation in a single blocking exchange and
// returns the assistant reply. The reply is also cached as LastReply, and
// reported usage replaces LastUsage.
//
// Any failure is recorded on the conversation (LastError and friends) as
// well as returned; the conversation stays valid and reusable.
func (c *Conversation) Complete(ctx context.Context) (string, error) {
	c.ClearError()

	tr, cerr := c.transport()
	if cerr != nil {
		return "", c.setError(cerr)
	}

	raw, err := tr.DoJSON(ctx, http.MethodPost, completionsPath, c.authHeaders(), c.buildRequestBody(false))
	if err != nil {
		var se *transport.HTTPStatusError
		if errors.As(err, &se) {
			// The service answered; decode its body like any other so
			// structured error payloads surface as API errors.
			_, derr := c.decodeCompletion(se.Body, se.StatusCode)
			return "", c.setError(derr)
		}
		return "", c.setError(&Error{Code: CodeHTTP, Message: "request failed: " + err.Error(), Cause: err})
	}

	reply, derr := c.decodeCompletion(raw, 0)
	if derr != nil {
		return "", c.setError(derr)
	}
	return reply, nil
}

// decodeCompletion parses a buffered response body. On success it caches the
// extracted content and any usage; on failure the conversation's cache is
// left untouched.
func (c *Conversation) decodeCompletion(raw []byte, httpStatus int) (string, *Error) {
	var resp completionResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return "", &Error{Code: CodeJSONParse, Message: "failed to parse response JSON", HTTPStatus: httpStatus, Cause: err}
	}

	// A structured error wins even when a choices array is also present.
	if resp.Error != nil {
		msg := resp.Error.Message
		if msg == "" {
			msg = "API returned error"
		}
		return "", &Error{Code: CodeAPI, Message: msg, HTTPStatus: httpStatus}
	}

	if httpStatus != 0 {
		// Non-2xx body without a structured error payload.
		return "", &Error{Code: CodeJSONParse, Message: "unexpected response body", HTTPStatus: httpStatus}
	}

	if len(resp.Choices) == 0 {
		return "", &Error{Code: CodeJSONParse, Message: "no choices in response"}
	}

	var content string
	if raw := resp.Choices[0].Message.Content; len(raw) == 0 || json.Unmarshal(raw, &content) != nil {
		return "", &Error{Code: CodeJSONParse, Message: "no content in response message"}
	}

	if resp.Usage != nil {
		c.lastUsage = *resp.Usage
	}
	c.lastReply = content
	return content, nil
}

// CompleteStream starts a streaming exchange and returns the pull side of
// it. The caller owns the stream and must drain or close it.
func (c *Conversation) CompleteStream(ctx context.Context) (*Stream, error) {
	c.ClearError()

	tr, cerr := c.transport()
	if cerr != nil {
		return nil, c.setError(cerr)
	}

	resp, err := tr.DoStream(ctx, http.MethodPost, completionsPath, c.authHeaders(), c.buildRequestBody(true))
	if err != nil {
		var se *transport.HTTPStatusError
		if errors.As(err, &se) {
			_, derr := c.decodeCompletion(se.Body, se.StatusCode)
			return nil, c.setError(derr)
		}
		return nil, c.setError(&Error{Code: CodeStream, Message: "stream request failed: " + err.Error(), Cause: err})
	}

	return newStream(c, resp.Body), nil
}

// CompleteStreaming is the push-based form of CompleteStream: sink is
// invoked synchronously, once per delta, in arrival order. It returns the
// full accumulated reply once the stream ends.
//
// On a mid-stream failure the partial text is discarded, not returned.
func (c *Conversation) CompleteStreaming(ctx context.Context, sink func(delta string)) (string, error) {
	stream, err := c.CompleteStream(ctx)
	if err != nil {
		return "", err
	}
	defer stream.Close()

	for {
		delta, err := stream.Recv()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return stream.Text(), nil
			}
			return "", err
		}
		if sink != nil {
			sink(delta)
		}
	}
}

// Send dispatches on the streaming toggle: a streaming exchange (with sink
// receiving each delta) when enabled, a single buffered exchange otherwise.
// The sink is not used in buffered mode.
func (c *Conversation) Send(ctx context.Context, sink func(delta string)) (string, error) {
	if c.useStreaming {
		return c.CompleteStreaming(ctx, sink)
	}
	return c.Complete(ctx)
}
