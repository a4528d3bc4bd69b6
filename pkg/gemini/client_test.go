package gemini

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"testing"
	"time"

	"github.com/jarcoal/httpmock"
)

const endpoint = "https://provider.test/v1beta/models/test-model:generateContent"

func newTestClient() *Client {
	c := NewClient("https://provider.test", "test-model", "secret-key", 5*time.Second)
	return c
}

func TestGenerateRequestShape(t *testing.T) {
	transport := httpmock.NewMockTransport()

	var captured map[string]any
	var apiKey string
	transport.RegisterResponder("POST", endpoint,
		func(req *http.Request) (*http.Response, error) {
			apiKey = req.Header.Get("x-goog-api-key")
			body, _ := io.ReadAll(req.Body)
			if err := json.Unmarshal(body, &captured); err != nil {
				t.Fatalf("request body is not JSON: %v", err)
			}
			return httpmock.NewStringResponse(http.StatusOK,
				`{"candidates":[{"content":{"parts":[{"text":"{}"}]}}]}`), nil
		})

	c := newTestClient()
	c.WithTransport(transport)

	_, err := c.Generate(context.Background(), GenerateRequest{
		Prompt:          "compare prices",
		ResponseSchema:  &Schema{Type: "OBJECT"},
		UseGoogleSearch: true,
		ThinkingBudget:  1024,
	})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	if apiKey != "secret-key" {
		t.Errorf("x-goog-api-key = %q", apiKey)
	}
	if _, ok := captured["tools"]; !ok {
		t.Errorf("google_search tool missing from request")
	}
	gc, ok := captured["generationConfig"].(map[string]any)
	if !ok {
		t.Fatalf("generationConfig missing from request")
	}
	if gc["responseMimeType"] != "application/json" {
		t.Errorf("responseMimeType = %v", gc["responseMimeType"])
	}
	if _, ok := gc["responseSchema"]; !ok {
		t.Errorf("responseSchema missing from request")
	}
}

func TestGenerateParsesTextAndGrounding(t *testing.T) {
	transport := httpmock.NewMockTransport()
	transport.RegisterResponder("POST", endpoint,
		httpmock.NewStringResponder(http.StatusOK, `{
			"candidates": [{
				"content": {"parts": [{"text": "{\"items\":"}, {"text": "[]}"}]},
				"groundingMetadata": {
					"groundingChunks": [
						{"web": {"title": "Blinkit", "uri": "https://blinkit.com"}},
						{"retrievedContext": {"uri": "ignored"}},
						{"web": {"uri": "https://zepto.com"}}
					]
				}
			}]
		}`))

	c := newTestClient()
	c.WithTransport(transport)

	result, err := c.Generate(context.Background(), GenerateRequest{Prompt: "x"})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if result.Text != `{"items":[]}` {
		t.Errorf("text parts not concatenated, got %q", result.Text)
	}
	if len(result.Sources) != 2 {
		t.Fatalf("sources = %+v, want 2 web chunks", result.Sources)
	}
	if result.Sources[1].Title != "" || result.Sources[1].URI != "https://zepto.com" {
		t.Errorf("second source = %+v", result.Sources[1])
	}
}

func TestGenerateErrorEnvelope(t *testing.T) {
	transport := httpmock.NewMockTransport()
	transport.RegisterResponder("POST", endpoint,
		httpmock.NewStringResponder(http.StatusForbidden,
			`{"error":{"code":403,"message":"API key not valid. Please pass a valid API key.","status":"PERMISSION_DENIED"}}`))

	c := newTestClient()
	c.WithTransport(transport)

	_, err := c.Generate(context.Background(), GenerateRequest{Prompt: "x"})

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("error = %v, want *APIError", err)
	}
	if apiErr.StatusCode != http.StatusForbidden {
		t.Errorf("status code = %d", apiErr.StatusCode)
	}
	if apiErr.Status != "PERMISSION_DENIED" {
		t.Errorf("status = %q", apiErr.Status)
	}
	if apiErr.Message != "API key not valid. Please pass a valid API key." {
		t.Errorf("message = %q", apiErr.Message)
	}
}

func TestGenerateNonJSONError(t *testing.T) {
	transport := httpmock.NewMockTransport()
	transport.RegisterResponder("POST", endpoint,
		httpmock.NewStringResponder(http.StatusBadGateway, "upstream exploded"))

	c := newTestClient()
	c.WithTransport(transport)

	_, err := c.Generate(context.Background(), GenerateRequest{Prompt: "x"})

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("error = %v, want *APIError", err)
	}
	if apiErr.StatusCode != http.StatusBadGateway || apiErr.Message != "upstream exploded" {
		t.Errorf("apiErr = %+v", apiErr)
	}
}

func TestGenerateNoCandidates(t *testing.T) {
	transport := httpmock.NewMockTransport()
	transport.RegisterResponder("POST", endpoint,
		httpmock.NewStringResponder(http.StatusOK, `{"candidates":[]}`))

	c := newTestClient()
	c.WithTransport(transport)

	if _, err := c.Generate(context.Background(), GenerateRequest{Prompt: "x"}); !errors.Is(err, ErrNoCandidates) {
		t.Fatalf("error = %v, want ErrNoCandidates", err)
	}
}
