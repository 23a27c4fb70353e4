// Package api is the client's single path to the backend. Every call
// injects the current bearer token, decodes the response envelope and
// classifies failures. The client never stores or mutates credentials;
// a 401 is reported to the caller, who decides what dies with it.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"path/filepath"
	"strings"
	"time"

	"github.com/raseedhq/raseed/internal/receipt"
	"github.com/raseedhq/raseed/internal/session"
)

// TokenSource supplies the bearer token attached to authenticated
// requests.
type TokenSource interface {
	Token() (string, bool)
}

// Error is a response the backend answered but refused: a non-2xx
// status, or a 2xx envelope carrying status "error".
type Error struct {
	Status  int
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s (status %d)", e.Message, e.Status)
}

// IsSessionExpired reports whether err is a 401 from the backend, the
// one failure that invalidates the whole session.
func IsSessionExpired(err error) bool {
	var apiErr *Error
	return errors.As(err, &apiErr) && apiErr.Status == http.StatusUnauthorized
}

// Client talks to the receipt backend.
type Client struct {
	baseURL string
	http    *http.Client
	tokens  TokenSource
}

func NewClient(baseURL string, timeout time.Duration, tokens TokenSource) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
		tokens:  tokens,
	}
}

type wireProfile struct {
	Sub     string `json:"sub"`
	ID      string `json:"id"`
	Email   string `json:"email"`
	Name    string `json:"name"`
	Picture string `json:"picture"`
}

// toProfile maps the backend's user object onto the session profile.
// Older backend builds sent id where current ones send sub.
func (p wireProfile) toProfile() session.Profile {
	id := p.Sub
	if id == "" {
		id = p.ID
	}

	return session.Profile{ID: id, Email: p.Email, Name: p.Name, Picture: p.Picture}
}

type signInRequest struct {
	Credential string `json:"credential"`
}

type signInResponse struct {
	Status  string      `json:"status"`
	Message string      `json:"message"`
	Token   string      `json:"token"`
	User    wireProfile `json:"user"`
}

// SignIn exchanges an identity-provider credential for a backend token
// and the profile it belongs to.
func (c *Client) SignIn(ctx context.Context, credential string) (string, session.Profile, error) {
	var resp signInResponse
	if err := c.postJSON(ctx, "/auth/google", signInRequest{Credential: credential}, &resp); err != nil {
		return "", session.Profile{}, err
	}

	if err := envelopeError(resp.Status, resp.Message); err != nil {
		return "", session.Profile{}, err
	}

	if resp.Token == "" {
		return "", session.Profile{}, &Error{Status: http.StatusOK, Message: "sign-in response carried no token"}
	}

	return resp.Token, resp.User.toProfile(), nil
}

type meResponse struct {
	Status  string      `json:"status"`
	Message string      `json:"message"`
	User    wireProfile `json:"user"`
}

// CurrentUser fetches the profile belonging to the held token.
func (c *Client) CurrentUser(ctx context.Context) (session.Profile, error) {
	var resp meResponse
	if err := c.getJSON(ctx, "/auth/me", &resp); err != nil {
		return session.Profile{}, err
	}

	if err := envelopeError(resp.Status, resp.Message); err != nil {
		return session.Profile{}, err
	}

	return resp.User.toProfile(), nil
}

type extractResponse struct {
	Status  string                `json:"status"`
	Message string                `json:"message"`
	Data    receipt.RawExtraction `json:"data"`
}

// ExtractReceipt uploads a receipt image and returns the uncorrected
// extraction result.
func (c *Client) ExtractReceipt(ctx context.Context, filename string, image io.Reader) (receipt.RawExtraction, error) {
	var buf bytes.Buffer

	mw := multipart.NewWriter(&buf)

	part, err := mw.CreateFormFile("file", filepath.Base(filename))
	if err != nil {
		return receipt.RawExtraction{}, fmt.Errorf("failed to build upload: %w", err)
	}

	if _, err := io.Copy(part, image); err != nil {
		return receipt.RawExtraction{}, fmt.Errorf("failed to read image: %w", err)
	}

	if err := mw.Close(); err != nil {
		return receipt.RawExtraction{}, fmt.Errorf("failed to finish upload: %w", err)
	}

	req, err := c.newRequest(ctx, http.MethodPost, "/extract-receipt", mw.FormDataContentType(), &buf)
	if err != nil {
		return receipt.RawExtraction{}, err
	}

	var resp extractResponse
	if err := c.do(req, &resp); err != nil {
		return receipt.RawExtraction{}, err
	}

	if err := envelopeError(resp.Status, resp.Message); err != nil {
		return receipt.RawExtraction{}, err
	}

	return resp.Data, nil
}

type saveResponse struct {
	Status    string `json:"status"`
	Message   string `json:"message"`
	ReceiptID string `json:"receipt_id"`
}

// SaveReceipt persists a finished draft and returns the id the backend
// assigned.
func (c *Client) SaveReceipt(ctx context.Context, payload receipt.SavePayload) (string, error) {
	var resp saveResponse
	if err := c.postJSON(ctx, "/save-receipt", payload, &resp); err != nil {
		return "", err
	}

	if err := envelopeError(resp.Status, resp.Message); err != nil {
		return "", err
	}

	return resp.ReceiptID, nil
}

type listResponse struct {
	Status  string            `json:"status"`
	Message string            `json:"message"`
	Data    []receipt.Receipt `json:"data"`
}

// ListReceipts fetches every stored receipt for the signed-in user,
// newest first.
func (c *Client) ListReceipts(ctx context.Context) ([]receipt.Receipt, error) {
	var resp listResponse
	if err := c.getJSON(ctx, "/receipts", &resp); err != nil {
		return nil, err
	}

	if err := envelopeError(resp.Status, resp.Message); err != nil {
		return nil, err
	}

	if resp.Data == nil {
		resp.Data = []receipt.Receipt{}
	}

	return resp.Data, nil
}

type walletResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	SaveURL string `json:"saveUrl"`
}

// SaveToWallet asks the backend for a Google Wallet link for one
// receipt.
func (c *Client) SaveToWallet(ctx context.Context, id string) (string, error) {
	var resp walletResponse
	if err := c.postJSON(ctx, "/save-to-wallet/"+url.PathEscape(id), nil, &resp); err != nil {
		return "", err
	}

	if err := envelopeError(resp.Status, resp.Message); err != nil {
		return "", err
	}

	return resp.SaveURL, nil
}

type assistantRequest struct {
	Prompt string `json:"prompt"`
}

type assistantResponse struct {
	Reply string `json:"reply"`
}

// AskAssistant sends one prompt and returns the assistant's reply. The
// backend answers 200 even for model-side failures, encoding them in
// the reply text, so any decoded reply comes back as-is.
func (c *Client) AskAssistant(ctx context.Context, prompt string) (string, error) {
	var resp assistantResponse
	if err := c.postJSON(ctx, "/llm-receipt", assistantRequest{Prompt: prompt}, &resp); err != nil {
		return "", err
	}

	return resp.Reply, nil
}

func (c *Client) newRequest(ctx context.Context, method, path, contentType string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	if token, ok := c.tokens.Token(); ok {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	return req, nil
}

func (c *Client) postJSON(ctx context.Context, path string, in, out any) error {
	var (
		body        io.Reader
		contentType string
	)

	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}

		body = bytes.NewReader(payload)
		contentType = "application/json"
	}

	req, err := c.newRequest(ctx, http.MethodPost, path, contentType, body)
	if err != nil {
		return err
	}

	return c.do(req, out)
}

func (c *Client) getJSON(ctx context.Context, path string, out any) error {
	req, err := c.newRequest(ctx, http.MethodGet, path, "", nil)
	if err != nil {
		return err
	}

	return c.do(req, out)
}

// do sends the request and decodes the response into out. Transport
// problems come back as plain wrapped errors; anything the server
// answered with a failure status becomes an *Error.
func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("failed to call %s: %w", req.URL.Path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response from %s: %w", req.URL.Path, err)
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode > 299 {
		return &Error{Status: resp.StatusCode, Message: failureMessage(body, resp.StatusCode)}
	}

	if out == nil {
		return nil
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to decode response from %s: %w", req.URL.Path, err)
	}

	return nil
}

// envelopeError classifies the 2xx-with-error envelopes some backend
// routes emit.
func envelopeError(status, message string) error {
	if status != "error" {
		return nil
	}

	if message == "" {
		message = "request failed"
	}

	return &Error{Status: http.StatusOK, Message: message}
}

// failureMessage digs a human-readable explanation out of an error
// body. The backend has produced {"message"}, {"detail"} and plain
// text bodies at various points, so all three decode.
func failureMessage(body []byte, status int) string {
	var envelope struct {
		Message string `json:"message"`
		Detail  string `json:"detail"`
	}

	if err := json.Unmarshal(body, &envelope); err == nil {
		if envelope.Message != "" {
			return envelope.Message
		}

		if envelope.Detail != "" {
			return envelope.Detail
		}
	}

	if text := strings.TrimSpace(string(body)); text != "" && !strings.HasPrefix(text, "{") {
		return text
	}

	return fmt.Sprintf("request failed with status %d", status)
}
