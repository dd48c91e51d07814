// Package channel is the outbound messaging channel client (WhatsApp
// Cloud-style Graph API). It classifies failures into the error taxonomy
// the dispatcher's retry policy understands.
package channel

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/RenatoFloreon/consciencia-ia-sub000/internal/domain"
)

const defaultBaseURL = "https://graph.facebook.com/v19.0"

// ClientOption configures the client.
type ClientOption func(*Client)

// WithBaseURL sets a custom base URL.
func WithBaseURL(baseURL string) ClientOption {
	return func(c *Client) {
		c.baseURL = strings.TrimSuffix(baseURL, "/")
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(httpClient *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// Client posts text messages through the channel's Graph-style HTTP API.
// It is a process-wide singleton shared by all conversations.
type Client struct {
	token      string
	phoneID    string
	baseURL    string
	httpClient *http.Client
}

// New creates a channel client for the given sender phone id.
func New(token, phoneID string, opts ...ClientOption) *Client {
	c := &Client{
		token:      token,
		phoneID:    phoneID,
		baseURL:    defaultBaseURL,
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type textPayload struct {
	Body string `json:"body"`
}

type messageRequest struct {
	MessagingProduct string      `json:"messaging_product"`
	To               string      `json:"to"`
	Type             string      `json:"type"`
	Text             textPayload `json:"text"`
}

type errorResponse struct {
	Error struct {
		Message string `json:"message"`
		Code    int    `json:"code"`
	} `json:"error"`
}

// recipient error codes the Graph API reports inside an HTTP 400.
var invalidRecipientCodes = map[int]bool{
	131026: true, // message undeliverable
	131030: true, // recipient not in allowed list
	100:    true, // invalid parameter (malformed phone number)
}

// Post sends one text segment to the recipient. Errors are returned as
// *domain.ChannelError so the dispatcher can decide whether to retry.
func (c *Client) Post(ctx context.Context, recipient, segment string) error {
	body, err := json.Marshal(messageRequest{
		MessagingProduct: "whatsapp",
		To:               recipient,
		Type:             "text",
		Text:             textPayload{Body: segment},
	})
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}

	url := fmt.Sprintf("%s/%s/messages", c.baseURL, c.phoneID)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+c.token)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return domain.NewChannelError(domain.ErrorKindTransient, err.Error())
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusOK || resp.StatusCode == http.StatusCreated {
		return nil
	}

	respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	return classify(resp.StatusCode, respBody)
}

// classify maps a channel HTTP failure to the canonical error taxonomy.
func classify(status int, body []byte) *domain.ChannelError {
	message := strings.TrimSpace(string(body))
	code := 0

	var errResp errorResponse
	if err := json.Unmarshal(body, &errResp); err == nil && errResp.Error.Message != "" {
		message = errResp.Error.Message
		code = errResp.Error.Code
	}

	kind := domain.ClassifyStatus(status)
	if status == http.StatusBadRequest && !invalidRecipientCodes[code] {
		// A 400 that is not about the recipient is a malformed request on
		// our side; retrying cannot help.
		kind = domain.ErrorKindPermanent
	}

	return domain.NewChannelError(kind, message).WithStatusCode(status)
}
