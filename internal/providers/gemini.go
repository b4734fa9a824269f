package providers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const defaultGeminiAPIURL = "https://generativelanguage.googleapis.com/v1beta/models"

// Gemini implements the Generator interface for Google's Gemini API.
type Gemini struct {
	apiKey  string
	model   string
	baseURL string
	client  *http.Client
}

// NewGemini creates a new Gemini provider with an explicit API key.
func NewGemini(apiKey, model string) (*Gemini, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini API key is empty")
	}
	return &Gemini{
		apiKey:  apiKey,
		model:   model,
		baseURL: defaultGeminiAPIURL,
		client:  &http.Client{Timeout: 120 * time.Second},
	}, nil
}

func (g *Gemini) Name() string { return "gemini" }

func (g *Gemini) Generate(ctx context.Context, req Request) (Response, error) {
	url := fmt.Sprintf("%s/%s:generateContent?key=%s", g.baseURL, g.model, g.apiKey)

	body := geminiRequest{
		Contents: []geminiContent{
			{
				Role:  "user",
				Parts: []geminiPart{{Text: req.Prompt}},
			},
		},
		GenerationConfig: &geminiGenConfig{
			MaxOutputTokens: req.MaxTokens,
		},
	}
	if req.System != "" {
		body.SystemInstruction = &geminiContent{
			Parts: []geminiPart{{Text: req.System}},
		}
	}
	if body.GenerationConfig.MaxOutputTokens == 0 {
		body.GenerationConfig.MaxOutputTokens = 4000
	}
	if req.Temperature > 0 {
		body.GenerationConfig.Temperature = &req.Temperature
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return Response{}, &fatalError{message: fmt.Sprintf("marshaling request: %v", err)}
	}

	httpReq, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewReader(payload))
	if err != nil {
		return Response{}, &fatalError{message: fmt.Sprintf("creating request: %v", err)}
	}
	httpReq.Header.Set("Content-Type", "application/json")

	httpResp, err := g.client.Do(httpReq)
	if err != nil {
		return Response{}, &transientError{message: "sending request", cause: err}
	}
	defer httpResp.Body.Close()

	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return Response{}, &transientError{message: "reading response", cause: err}
	}

	if err := classifyStatus(httpResp.StatusCode, respBody); err != nil {
		return Response{}, err
	}

	var result geminiResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		return Response{}, &transientError{message: fmt.Sprintf("parsing response: %v", err)}
	}

	if len(result.Candidates) == 0 || len(result.Candidates[0].Content.Parts) == 0 {
		return Response{}, &transientError{message: "no content in response"}
	}

	var content string
	for _, part := range result.Candidates[0].Content.Parts {
		content += part.Text
	}

	return Response{
		Content:    content,
		TokensUsed: result.UsageMetadata.TotalTokenCount,
	}, nil
}

// classifyStatus maps an HTTP status onto the provider error taxonomy.
// Shared by all vendors: 429 means quota, 400/401/403 mean the request
// itself is broken, anything else non-200 is worth trying another model.
func classifyStatus(status int, body []byte) error {
	switch {
	case status == 200:
		return nil
	case status == 429:
		return &quotaError{message: string(body)}
	case status == 400 || status == 401 || status == 403:
		return &fatalError{message: fmt.Sprintf("API rejected request (status %d): %s", status, string(body))}
	default:
		return &transientError{message: fmt.Sprintf("API error (status %d): %s", status, string(body))}
	}
}

type geminiRequest struct {
	SystemInstruction *geminiContent   `json:"systemInstruction,omitempty"`
	Contents          []geminiContent  `json:"contents"`
	GenerationConfig  *geminiGenConfig `json:"generationConfig,omitempty"`
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiGenConfig struct {
	MaxOutputTokens int      `json:"maxOutputTokens,omitempty"`
	Temperature     *float64 `json:"temperature,omitempty"`
}

type geminiResponse struct {
	Candidates    []geminiCandidate `json:"candidates"`
	UsageMetadata geminiUsage       `json:"usageMetadata"`
}

type geminiCandidate struct {
	Content geminiContent `json:"content"`
}

type geminiUsage struct {
	TotalTokenCount int `json:"totalTokenCount"`
}
