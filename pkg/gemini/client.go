// Package gemini is a thin transport for the generateContent endpoint
// of the Google generative language API. It sends one request, asks for
// schema-constrained JSON plus search grounding, and hands the raw text
// and grounding citations back to the caller. Interpretation of the
// payload belongs to the compare package.
package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

// ErrNoCandidates is returned when the provider answers 200 but the
// reply carries no candidates to read text from.
var ErrNoCandidates = errors.New("no candidates in provider response")

// APIError is a non-2xx reply from the provider.
type APIError struct {
	StatusCode int
	Status     string
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("provider error (status %d, %s): %s", e.StatusCode, e.Status, e.Message)
}

// Schema is the subset of the provider's response-schema language the
// service declares (objects, arrays, scalars).
type Schema struct {
	Type       string             `json:"type"`
	Properties map[string]*Schema `json:"properties,omitempty"`
	Items      *Schema            `json:"items,omitempty"`
	Required   []string           `json:"required,omitempty"`
}

// GenerateRequest describes one generateContent call.
type GenerateRequest struct {
	Prompt          string
	ResponseSchema  *Schema
	UseGoogleSearch bool
	ThinkingBudget  int
}

// WebSource is one grounding citation attached to a reply.
type WebSource struct {
	Title string `json:"title"`
	URI   string `json:"uri"`
}

// GenerateResult is the raw outcome of a call: the concatenated text of
// the first candidate plus whatever web citations the provider attached.
type GenerateResult struct {
	Text    string
	Sources []WebSource
}

type Client struct {
	apiKey  string
	baseURL string
	model   string
	client  *http.Client
}

func NewClient(baseURL, model, apiKey string, timeout time.Duration) *Client {
	return &Client{
		apiKey:  apiKey,
		baseURL: baseURL,
		model:   model,
		client:  &http.Client{Timeout: timeout},
	}
}

// WithTransport swaps the underlying round tripper. Used by tests.
func (c *Client) WithTransport(rt http.RoundTripper) {
	c.client.Transport = rt
}

// wire types for the generateContent request/response

type wireRequest struct {
	Contents         []wireContent  `json:"contents"`
	Tools            []wireTool     `json:"tools,omitempty"`
	GenerationConfig *wireGenConfig `json:"generationConfig,omitempty"`
}

type wireContent struct {
	Parts []wirePart `json:"parts"`
}

type wirePart struct {
	Text string `json:"text"`
}

type wireTool struct {
	GoogleSearch *struct{} `json:"google_search,omitempty"`
}

type wireGenConfig struct {
	ResponseMIMEType string              `json:"responseMimeType,omitempty"`
	ResponseSchema   *Schema             `json:"responseSchema,omitempty"`
	ThinkingConfig   *wireThinkingConfig `json:"thinkingConfig,omitempty"`
}

type wireThinkingConfig struct {
	ThinkingBudget int `json:"thinkingBudget"`
}

type wireResponse struct {
	Candidates []struct {
		Content struct {
			Parts []wirePart `json:"parts"`
		} `json:"content"`
		GroundingMetadata *struct {
			GroundingChunks []struct {
				Web *WebSource `json:"web"`
			} `json:"groundingChunks"`
		} `json:"groundingMetadata"`
	} `json:"candidates"`
}

type wireError struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error"`
}

// Generate issues exactly one generateContent call. Retry policy, if
// any, belongs to the caller.
func (c *Client) Generate(ctx context.Context, req GenerateRequest) (*GenerateResult, error) {
	body := wireRequest{
		Contents: []wireContent{{Parts: []wirePart{{Text: req.Prompt}}}},
	}
	if req.UseGoogleSearch {
		body.Tools = []wireTool{{GoogleSearch: &struct{}{}}}
	}
	if req.ResponseSchema != nil || req.ThinkingBudget > 0 {
		gc := &wireGenConfig{}
		if req.ResponseSchema != nil {
			gc.ResponseMIMEType = "application/json"
			gc.ResponseSchema = req.ResponseSchema
		}
		if req.ThinkingBudget > 0 {
			gc.ThinkingConfig = &wireThinkingConfig{ThinkingBudget: req.ThinkingBudget}
		}
		body.GenerationConfig = gc
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/v1beta/models/%s:generateContent", c.baseURL, c.model)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-goog-api-key", c.apiKey)

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		apiErr := &APIError{StatusCode: resp.StatusCode, Message: string(raw)}
		var we wireError
		if err := json.Unmarshal(raw, &we); err == nil && we.Error.Message != "" {
			apiErr.Status = we.Error.Status
			apiErr.Message = we.Error.Message
		}
		return nil, apiErr
	}

	var wr wireResponse
	if err := json.Unmarshal(raw, &wr); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}
	if len(wr.Candidates) == 0 {
		return nil, ErrNoCandidates
	}

	result := &GenerateResult{}
	for _, part := range wr.Candidates[0].Content.Parts {
		result.Text += part.Text
	}
	if gm := wr.Candidates[0].GroundingMetadata; gm != nil {
		for _, chunk := range gm.GroundingChunks {
			if chunk.Web != nil {
				result.Sources = append(result.Sources, *chunk.Web)
			}
		}
	}
	return result, nil
}
