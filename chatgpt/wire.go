package chatgpt

import "encoding/json"

// Wire shapes for the completions, models, and image endpoints. Content is
// decoded as json.RawMessage where the contract requires distinguishing
// "absent" from "present but not a string".

type completionResponse struct {
	Error   *apiError          `json:"error"`
	Choices []completionChoice `json:"choices"`
	Usage   *Usage             `json:"usage"`
}

type completionChoice struct {
	Message struct {
		Content json.RawMessage `json:"content"`
	} `json:"message"`
}

type apiError struct {
	Message string `json:"message"`
	Type    string `json:"type"`
	Code    any    `json:"code"`
}

type streamChunk struct {
	Choices []struct {
		Delta struct {
			Content json.RawMessage `json:"content"`
		} `json:"delta"`
	} `json:"choices"`
}

type imageResponse struct {
	Error *apiError `json:"error"`
	Data  []struct {
		URL string `json:"url"`
	} `json:"data"`
}
