package generator

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

const defaultBaseURL = "https://api.openai.com/v1"

// HTTPOption configures the HTTP generator.
type HTTPOption func(*HTTPGenerator)

// WithBaseURL sets a custom base URL.
func WithBaseURL(baseURL string) HTTPOption {
	return func(g *HTTPGenerator) {
		g.baseURL = strings.TrimSuffix(baseURL, "/")
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(httpClient *http.Client) HTTPOption {
	return func(g *HTTPGenerator) {
		g.httpClient = httpClient
	}
}

// WithMaxInputTokens bounds the prompt size; longest field values are
// truncated first.
func WithMaxInputTokens(max int) HTTPOption {
	return func(g *HTTPGenerator) {
		g.maxInputTokens = max
	}
}

// WithLogger sets the logger for the generator.
func WithLogger(logger *slog.Logger) HTTPOption {
	return func(g *HTTPGenerator) {
		g.logger = logger
	}
}

// HTTPGenerator calls an OpenAI-style chat completions endpoint.
type HTTPGenerator struct {
	apiKey         string
	model          string
	baseURL        string
	httpClient     *http.Client
	maxInputTokens int
	logger         *slog.Logger
}

// NewHTTP creates an HTTP-backed generator.
func NewHTTP(apiKey, model string, opts ...HTTPOption) *HTTPGenerator {
	g := &HTTPGenerator{
		apiKey:         apiKey,
		model:          model,
		baseURL:        defaultBaseURL,
		httpClient:     &http.Client{Timeout: 60 * time.Second},
		maxInputTokens: 3000,
		logger:         slog.Default(),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

func (g *HTTPGenerator) Generate(ctx context.Context, in Input) (string, error) {
	in = g.trimToBudget(in)

	req := chatRequest{
		Model:       g.model,
		Temperature: 0.8,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt(in.Simplified)},
			{Role: "user", Content: userPrompt(in)},
		},
	}
	if in.Simplified {
		req.MaxTokens = 600
	}

	body, err := json.Marshal(req)
	if err != nil {
		return "", fmt.Errorf("marshal generation request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create generation request: %w", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+g.apiKey)
	httpReq.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := g.httpClient.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("generation request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read generation response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("generation API error (status %d): %s", resp.StatusCode, string(respBody))
	}

	var result chatResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		return "", fmt.Errorf("unmarshal generation response: %w", err)
	}
	if result.Error != nil {
		return "", fmt.Errorf("generation API error: %s", result.Error.Message)
	}
	if len(result.Choices) == 0 || strings.TrimSpace(result.Choices[0].Message.Content) == "" {
		return "", fmt.Errorf("generation returned no content")
	}

	g.logger.Info("artifact generated",
		slog.String("session_id", in.SessionID),
		slog.Bool("simplified", in.Simplified),
		slog.Duration("duration", time.Since(start)),
	)

	return strings.TrimSpace(result.Choices[0].Message.Content), nil
}

func systemPrompt(simplified bool) string {
	if simplified {
		return "Você é a Consciênc.IA. Escreva uma carta curta e encorajadora, " +
			"em português, usando apenas os dados fornecidos."
	}
	return "Você é a Consciênc.IA, uma mentora de negócios empática. Escreva uma " +
		"Carta de Consciência personalizada, em português, com reflexões práticas " +
		"sobre o desafio descrito, dividida em parágrafos curtos."
}

func userPrompt(in Input) string {
	var b strings.Builder
	for _, f := range in.Fields {
		fmt.Fprintf(&b, "%s: %s\n", f.Name, f.Value)
	}
	return b.String()
}
