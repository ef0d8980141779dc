package chatgpt

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/lgc202/chatgpt-kit/chatgpt/internal/transport"
)

// Collaborator endpoints sharing the completions transport: model listing,
// the derived availability check, and image generation.

type serviceConfig struct {
	baseURL    string
	httpClient *http.Client
}

// ServiceOption adjusts a single collaborator-endpoint call.
type ServiceOption func(*serviceConfig)

func WithServiceBaseURL(baseURL string) ServiceOption {
	return func(sc *serviceConfig) { sc.baseURL = baseURL }
}

func WithServiceHTTPClient(hc *http.Client) ServiceOption {
	return func(sc *serviceConfig) { sc.httpClient = hc }
}

func resolveKey(apiKey string) (string, *Error) {
	if apiKey == "" {
		apiKey = DefaultAPIKey()
	}
	if apiKey == "" {
		return "", invalidArgument("no API key")
	}
	return apiKey, nil
}

func serviceTransport(opts []ServiceOption) (*transport.Client, *Error) {
	sc := serviceConfig{baseURL: DefaultBaseURL}
	for _, opt := range opts {
		if opt != nil {
			opt(&sc)
		}
	}
	tr, err := transport.New(sc.baseURL, sc.httpClient)
	if err != nil {
		return nil, &Error{Code: CodeHTTP, Message: err.Error(), Cause: err}
	}
	tr.UserAgent = userAgent()
	return tr, nil
}

func bearerHeaders(apiKey string) http.Header {
	h := make(http.Header)
	h.Set("Content-Type", "application/json")
	h.Set("Authorization", "Bearer "+apiKey)
	return h
}

// Query is a one-shot convenience: a throwaway conversation, one user
// message, one buffered completion.
func Query(ctx context.Context, apiKey, prompt string) (string, error) {
	conv, err := New(WithAPIKey(apiKey))
	if err != nil {
		return "", err
	}
	if err := conv.AddUser(prompt); err != nil {
		return "", err
	}
	return conv.Complete(ctx)
}

// AvailableModels fetches the raw model-listing body. The caller gets the
// bytes as served; no shape is imposed on them.
func AvailableModels(ctx context.Context, apiKey string, opts ...ServiceOption) ([]byte, error) {
	key, cerr := resolveKey(apiKey)
	if cerr != nil {
		return nil, cerr
	}
	tr, cerr := serviceTransport(opts)
	if cerr != nil {
		return nil, cerr
	}

	raw, err := tr.DoJSON(ctx, http.MethodGet, modelsPath, bearerHeaders(key), nil)
	if err != nil {
		return nil, wrapTransportErr(err, "model listing failed")
	}
	return raw, nil
}

// IsModelAvailable checks the listing for the model name by substring
// containment on the raw body.
func IsModelAvailable(ctx context.Context, apiKey, model string, opts ...ServiceOption) (bool, error) {
	if model == "" {
		return false, invalidArgument("empty model")
	}
	raw, err := AvailableModels(ctx, apiKey, opts...)
	if err != nil {
		return false, err
	}
	return bytes.Contains(raw, []byte(model)), nil
}

// GenerateImage asks the image endpoint for a single image of the given
// size and returns its URL.
func GenerateImage(ctx context.Context, apiKey, prompt, size string, opts ...ServiceOption) (string, error) {
	if prompt == "" || size == "" {
		return "", invalidArgument("prompt and size required")
	}
	key, cerr := resolveKey(apiKey)
	if cerr != nil {
		return "", cerr
	}
	tr, cerr := serviceTransport(opts)
	if cerr != nil {
		return "", cerr
	}

	body := map[string]any{
		"prompt": prompt,
		"n":      1,
		"size":   size,
	}
	raw, err := tr.DoJSON(ctx, http.MethodPost, imagesPath, bearerHeaders(key), body)
	if err != nil {
		return "", wrapTransportErr(err, "image generation failed")
	}

	var resp imageResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return "", &Error{Code: CodeJSONParse, Message: "failed to parse image response", Cause: err}
	}
	if resp.Error != nil {
		msg := resp.Error.Message
		if msg == "" {
			msg = "API returned error"
		}
		return "", &Error{Code: CodeAPI, Message: msg}
	}
	if len(resp.Data) == 0 || resp.Data[0].URL == "" {
		return "", &Error{Code: CodeJSONParse, Message: "no image url in response"}
	}
	return resp.Data[0].URL, nil
}

func wrapTransportErr(err error, msg string) *Error {
	var se *transport.HTTPStatusError
	if errors.As(err, &se) {
		var env struct {
			Error *apiError `json:"error"`
		}
		if json.Unmarshal(se.Body, &env) == nil && env.Error != nil && env.Error.Message != "" {
			return &Error{Code: CodeAPI, Message: env.Error.Message, HTTPStatus: se.StatusCode}
		}
		return &Error{Code: CodeHTTP, Message: msg, HTTPStatus: se.StatusCode, Cause: err}
	}
	return &Error{Code: CodeHTTP, Message: msg + ": " + err.Error(), Cause: err}
}
